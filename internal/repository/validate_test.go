package repository

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KillerBee88/star-burger/internal/models"
)

func TestValidateProduct(t *testing.T) {
	zero := 0

	tests := []struct {
		name    string
		product models.Product
		wantErr string
	}{
		{
			name:    "valid",
			product: models.Product{Name: "Cheeseburger", Price: decimal.RequireFromString("199.00")},
		},
		{
			name:    "blank name",
			product: models.Product{Name: "   ", Price: decimal.RequireFromString("1")},
			wantErr: "product name required",
		},
		{
			name:    "long name",
			product: models.Product{Name: strings.Repeat("x", 51)},
			wantErr: "product name must be at most 50 characters",
		},
		{
			name:    "long description",
			product: models.Product{Name: "Fries", Description: strings.Repeat("x", 201)},
			wantErr: "product description must be at most 200 characters",
		},
		{
			name:    "negative price",
			product: models.Product{Name: "Fries", Price: decimal.RequireFromString("-1")},
			wantErr: "product price cannot be negative",
		},
		{
			name:    "zero category id",
			product: models.Product{Name: "Fries", CategoryID: &zero},
			wantErr: "product category_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.product
			err := validateProduct(&p)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateRestaurantTrimsName(t *testing.T) {
	r := models.Restaurant{Name: "  Star Burger  "}
	require.NoError(t, validateRestaurant(&r))
	assert.Equal(t, "Star Burger", r.Name)

	err := validateRestaurant(&models.Restaurant{Name: "Star", Address: strings.Repeat("a", 101)})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "restaurant address")
}

func TestValidateCategory(t *testing.T) {
	assert.ErrorIs(t, validateCategory(&models.ProductCategory{Name: ""}), ErrInvalidInput)
	assert.ErrorIs(t, validateCategory(nil), ErrInvalidInput)
	assert.NoError(t, validateCategory(&models.ProductCategory{Name: "Burgers"}))
}
