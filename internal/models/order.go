package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	StatusAccepted   OrderStatus = "accepted"
	StatusInProcess  OrderStatus = "in_process"
	StatusInDelivery OrderStatus = "in_delivery"
	StatusReceived   OrderStatus = "received"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusAccepted, StatusInProcess, StatusInDelivery, StatusReceived:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
)

func (p PaymentMethod) Valid() bool {
	return p == PaymentCash || p == PaymentCard
}

type Order struct {
	OrderID         int             `json:"id"`
	FirstName       string          `json:"firstname"`
	LastName        string          `json:"lastname"`
	PhoneNumber     string          `json:"phonenumber"`
	Address         string          `json:"address"`
	FixedTotalPrice decimal.Decimal `json:"fixed_total_price"`
	Status          OrderStatus     `json:"status"`
	Comments        string          `json:"comments"`
	RestaurantID    *int            `json:"restaurant_id"`
	PaymentMethod   *PaymentMethod  `json:"payment_method"`
	CreatedAt       time.Time       `json:"created_at"`
	CalledAt        *time.Time      `json:"called_at"`
	DeliveredAt     *time.Time      `json:"delivered_at"`
	Items           []OrderItem     `json:"items,omitempty"`
}

// OrderItem is one line of an order. FixedPrice freezes the unit price at
// creation so later catalog edits do not reach historical orders.
type OrderItem struct {
	OrderItemID int             `json:"id"`
	OrderID     int             `json:"order_id"`
	ProductID   *int            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	FixedPrice  decimal.Decimal `json:"fixed_price"`
}

// FreezePrice copies Price into FixedPrice unless a fixed price was given.
func (i *OrderItem) FreezePrice() {
	if i.FixedPrice.IsZero() {
		i.FixedPrice = i.Price
	}
}

func (i OrderItem) Subtotal() decimal.Decimal {
	return i.FixedPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalPrice sums fixed_price * quantity over items; zero for no items.
func TotalPrice(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total.Round(2)
}
