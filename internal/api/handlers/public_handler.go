package handlers

import (
	"errors"
	"mime"
	"net/http"

	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/service"
	"github.com/KillerBee88/star-burger/internal/validation"
)

type PublicHandler struct {
	catalog   *service.CatalogService
	orders    *service.OrderService
	validator *validation.Validator
	log       *logger.Logger
}

func NewPublicHandler(catalog *service.CatalogService, orders *service.OrderService, validator *validation.Validator, log *logger.Logger) *PublicHandler {
	return &PublicHandler{
		catalog:   catalog,
		orders:    orders,
		validator: validator,
		log:       log.WithComponent("public_api"),
	}
}

type categoryResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type restaurantRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type productResponse struct {
	ID            int               `json:"id"`
	Name          string            `json:"name"`
	Price         string            `json:"price"`
	SpecialStatus bool              `json:"special_status"`
	Description   string            `json:"description"`
	Category      *categoryResponse `json:"category"`
	Image         string            `json:"image"`
	Restaurant    restaurantRef     `json:"restaurant"`
}

func newProductResponse(p models.AvailableProduct) productResponse {
	resp := productResponse{
		ID:            p.ProductID,
		Name:          p.Name,
		Price:         p.Price.StringFixed(2),
		SpecialStatus: p.SpecialStatus,
		Description:   p.Description,
		Image:         p.Image,
		Restaurant:    restaurantRef{ID: p.Restaurant.RestaurantID, Name: p.Restaurant.Name},
	}
	if p.Category != nil {
		resp.Category = &categoryResponse{ID: p.Category.CategoryID, Name: p.Category.Name}
	}
	return resp
}

type orderCreatedResponse struct {
	Message string `json:"message"`
	OrderID int    `json:"order_id"`
}

type orderErrorResponse struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func (h *PublicHandler) Banners(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Banners())
}

func (h *PublicHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListAvailableProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to get products", nil)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, newProductResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *PublicHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	log := h.log.FromContext(r.Context())

	if mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err != nil || mediaType != "application/json" {
		writeJSON(w, http.StatusUnsupportedMediaType, orderErrorResponse{Error: "content type must be application/json"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	req, err := validation.DecodeOrder(r.Body)
	if err != nil {
		h.writeValidationError(w, err)
		return
	}

	validated, err := h.validator.ValidateOrder(r.Context(), req)
	if err != nil {
		if _, ok := validation.AsErrors(err); ok {
			h.writeValidationError(w, err)
			return
		}
		log.Error("order validation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, orderErrorResponse{Error: service.ErrOrderCreation.Error()})
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), validated)
	if err != nil {
		if !errors.Is(err, service.ErrOrderCreation) {
			log.Error("unexpected order error", "error", err)
		}
		writeJSON(w, http.StatusInternalServerError, orderErrorResponse{Error: service.ErrOrderCreation.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, orderCreatedResponse{
		Message: "Order created successfully",
		OrderID: order.OrderID,
	})
}

func (h *PublicHandler) writeValidationError(w http.ResponseWriter, err error) {
	errs, _ := validation.AsErrors(err)
	writeJSON(w, http.StatusBadRequest, orderErrorResponse{
		Error:   errs.First(),
		Details: errs,
	})
}
