package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestTotalPrice(t *testing.T) {
	tests := []struct {
		name  string
		items []OrderItem
		want  string
	}{
		{name: "no items", items: nil, want: "0"},
		{
			name:  "single item",
			items: []OrderItem{{Quantity: 2, FixedPrice: d("350.00")}},
			want:  "700",
		},
		{
			name: "several items use fixed price not live price",
			items: []OrderItem{
				{Quantity: 3, Price: d("999.99"), FixedPrice: d("0.10")},
				{Quantity: 1, Price: d("1.00"), FixedPrice: d("0.20")},
			},
			want: "0.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TotalPrice(tt.items)
			assert.True(t, got.Equal(d(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestOrderItem_FreezePrice(t *testing.T) {
	item := OrderItem{Price: d("250.50")}
	item.FreezePrice()
	assert.True(t, item.FixedPrice.Equal(d("250.50")))

	item.Price = d("300.00")
	item.FreezePrice()
	assert.True(t, item.FixedPrice.Equal(d("250.50")), "already fixed price must not move")

	explicit := OrderItem{Price: d("100"), FixedPrice: d("90")}
	explicit.FreezePrice()
	assert.True(t, explicit.FixedPrice.Equal(d("90")))
}

func TestStatusAndPaymentValidity(t *testing.T) {
	for _, s := range []OrderStatus{StatusAccepted, StatusInProcess, StatusInDelivery, StatusReceived} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("cooking").Valid())

	assert.True(t, PaymentCash.Valid())
	assert.True(t, PaymentCard.Valid())
	assert.False(t, PaymentMethod("crypto").Valid())
}
