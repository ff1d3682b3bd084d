package handlers

import (
	"net/http"

	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/service"
)

// RestaurantHandler serves restaurants, their menus and product categories.
type RestaurantHandler struct {
	admin *service.AdminService
	log   *logger.Logger
}

func NewRestaurantHandler(admin *service.AdminService, log *logger.Logger) *RestaurantHandler {
	return &RestaurantHandler{admin: admin, log: log.WithComponent("admin_restaurants")}
}

type restaurantRequest struct {
	Name         string `json:"name"`
	Address      string `json:"address"`
	ContactPhone string `json:"contact_phone"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type menuItemRequest struct {
	ProductID    int  `json:"product_id"`
	Availability bool `json:"availability"`
}

func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.admin.ListRestaurants(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		writeRepoError(w, r, h.log, err, "restaurants")
		return
	}

	writeJSON(w, http.StatusOK, restaurants)
}

func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	restaurant, err := h.admin.GetRestaurant(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, h.log, err, "restaurant")
		return
	}

	writeJSON(w, http.StatusOK, restaurant)
}

func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req restaurantRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	restaurant := models.Restaurant{
		Name:         req.Name,
		Address:      req.Address,
		ContactPhone: req.ContactPhone,
	}
	if err := h.admin.CreateRestaurant(r.Context(), &restaurant); err != nil {
		writeRepoError(w, r, h.log, err, "restaurant")
		return
	}

	writeJSON(w, http.StatusCreated, restaurant)
}

func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	var req restaurantRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	restaurant := models.Restaurant{
		RestaurantID: id,
		Name:         req.Name,
		Address:      req.Address,
		ContactPhone: req.ContactPhone,
	}
	if err := h.admin.UpdateRestaurant(r.Context(), &restaurant); err != nil {
		writeRepoError(w, r, h.log, err, "restaurant")
		return
	}

	writeJSON(w, http.StatusOK, restaurant)
}

func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	if err := h.admin.DeleteRestaurant(r.Context(), id); err != nil {
		writeRepoError(w, r, h.log, err, "restaurant")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (h *RestaurantHandler) Menu(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	items, err := h.admin.ListMenu(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, h.log, err, "restaurant")
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// SetMenuItem creates or replaces the availability of one product.
func (h *RestaurantHandler) SetMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "restaurant")
	if !ok {
		return
	}

	var req menuItemRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	item := models.RestaurantMenuItem{
		RestaurantID: id,
		ProductID:    req.ProductID,
		Availability: req.Availability,
	}
	if err := h.admin.SetMenuItem(r.Context(), &item); err != nil {
		writeRepoError(w, r, h.log, err, "menu item")
		return
	}

	writeJSON(w, http.StatusOK, item)
}

func (h *RestaurantHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "restaurant")
	if !ok {
		return
	}
	productID, ok := urlID(w, r, "productID", "product")
	if !ok {
		return
	}

	if err := h.admin.DeleteMenuItem(r.Context(), id, productID); err != nil {
		writeRepoError(w, r, h.log, err, "menu item")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (h *RestaurantHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.admin.ListCategories(r.Context())
	if err != nil {
		writeRepoError(w, r, h.log, err, "categories")
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (h *RestaurantHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	category := models.ProductCategory{Name: req.Name}
	if err := h.admin.CreateCategory(r.Context(), &category); err != nil {
		writeRepoError(w, r, h.log, err, "category")
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (h *RestaurantHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "category")
	if !ok {
		return
	}

	var req categoryRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	category := models.ProductCategory{CategoryID: id, Name: req.Name}
	if err := h.admin.UpdateCategory(r.Context(), &category); err != nil {
		writeRepoError(w, r, h.log, err, "category")
		return
	}

	writeJSON(w, http.StatusOK, category)
}

func (h *RestaurantHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "category")
	if !ok {
		return
	}

	if err := h.admin.DeleteCategory(r.Context(), id); err != nil {
		writeRepoError(w, r, h.log, err, "category")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}
