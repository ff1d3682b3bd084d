package handlers

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository"
	"github.com/KillerBee88/star-burger/internal/service"
)

type ProductHandler struct {
	admin *service.AdminService
	log   *logger.Logger
}

func NewProductHandler(admin *service.AdminService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{admin: admin, log: log.WithComponent("admin_products")}
}

type ProductRequest struct {
	Name          string          `json:"name"`
	CategoryID    *int            `json:"category_id"`
	Price         decimal.Decimal `json:"price"`
	Image         string          `json:"image"`
	SpecialStatus bool            `json:"special_status"`
	Description   string          `json:"description"`
}

func (req ProductRequest) product(id int) models.Product {
	return models.Product{
		ProductID:     id,
		Name:          req.Name,
		CategoryID:    req.CategoryID,
		Price:         req.Price,
		Image:         req.Image,
		SpecialStatus: req.SpecialStatus,
		Description:   req.Description,
	}
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.admin.GetProduct(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, h.log, err, "product")
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// GetAll supports ?category_id= and ?search= filters.
func (h *ProductHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ProductFilter{Search: q.Get("search")}

	if raw := q.Get("category_id"); raw != "" {
		categoryID, err := strconv.Atoi(raw)
		if err != nil || categoryID <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_id", "invalid category id", nil)
			return
		}
		filter.CategoryID = &categoryID
	}

	products, err := h.admin.ListProducts(r.Context(), filter)
	if err != nil {
		writeRepoError(w, r, h.log, err, "products")
		return
	}

	writeJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	p := req.product(0)
	if err := h.admin.CreateProduct(r.Context(), &p); err != nil {
		writeRepoError(w, r, h.log, err, "product")
		return
	}

	w.Header().Set("Location", "/admin/products/"+strconv.Itoa(p.ProductID))
	writeJSON(w, http.StatusCreated, p)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "product")
	if !ok {
		return
	}

	var req ProductRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	p := req.product(id)
	if err := h.admin.UpdateProduct(r.Context(), &p); err != nil {
		writeRepoError(w, r, h.log, err, "product")
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.admin.DeleteProduct(r.Context(), id); err != nil {
		writeRepoError(w, r, h.log, err, "product")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
