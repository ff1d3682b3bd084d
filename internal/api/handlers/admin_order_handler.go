package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository"
	"github.com/KillerBee88/star-burger/internal/service"
)

type AdminOrderHandler struct {
	admin *service.AdminService
	log   *logger.Logger
}

func NewAdminOrderHandler(admin *service.AdminService, log *logger.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{admin: admin, log: log.WithComponent("admin_orders")}
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type totalResponse struct {
	OrderID         int             `json:"order_id"`
	FixedTotalPrice decimal.Decimal `json:"fixed_total_price"`
}

func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.OrderFilter{
		Status:        models.OrderStatus(q.Get("status")),
		PaymentMethod: models.PaymentMethod(q.Get("payment_method")),
		Search:        q.Get("search"),
	}

	orders, err := h.admin.ListOrders(r.Context(), filter)
	if err != nil {
		writeRepoError(w, r, h.log, err, "orders")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

func (h *AdminOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.admin.GetOrder(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, h.log, err, "order")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *AdminOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}

	var req service.OrderUpdate
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	order, err := h.admin.UpdateOrder(r.Context(), id, req)
	if err != nil {
		writeRepoError(w, r, h.log, err, "order")
		return
	}

	writeJSON(w, http.StatusOK, order)
}

func (h *AdminOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}

	if err := h.admin.DeleteOrder(r.Context(), id); err != nil {
		writeRepoError(w, r, h.log, err, "order")
		return
	}

	writeJSON(w, http.StatusNoContent, nil)
}

func (h *AdminOrderHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}

	var draft service.OrderItemDraft
	if ok := decodeJSON(w, r, &draft); !ok {
		return
	}

	if _, err := h.admin.Orders().AddLineItem(r.Context(), id, draft); err != nil {
		writeRepoError(w, r, h.log, err, "order item")
		return
	}

	h.writeOrder(w, r, id, http.StatusCreated)
}

func (h *AdminOrderHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}
	itemID, ok := urlID(w, r, "itemID", "item")
	if !ok {
		return
	}

	var req quantityRequest
	if ok := decodeJSON(w, r, &req); !ok {
		return
	}

	if err := h.admin.Orders().UpdateLineItemQuantity(r.Context(), id, itemID, req.Quantity); err != nil {
		writeRepoError(w, r, h.log, err, "order item")
		return
	}

	h.writeOrder(w, r, id, http.StatusOK)
}

func (h *AdminOrderHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}
	itemID, ok := urlID(w, r, "itemID", "item")
	if !ok {
		return
	}

	if err := h.admin.Orders().RemoveLineItem(r.Context(), id, itemID); err != nil {
		writeRepoError(w, r, h.log, err, "order item")
		return
	}

	h.writeOrder(w, r, id, http.StatusOK)
}

func (h *AdminOrderHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id", "order")
	if !ok {
		return
	}

	total, err := h.admin.Orders().Recalculate(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, h.log, err, "order")
		return
	}

	writeJSON(w, http.StatusOK, totalResponse{OrderID: id, FixedTotalPrice: total})
}

func (h *AdminOrderHandler) writeOrder(w http.ResponseWriter, r *http.Request, id, status int) {
	order, err := h.admin.GetOrder(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, h.log, err, "order")
		return
	}
	writeJSON(w, status, order)
}
