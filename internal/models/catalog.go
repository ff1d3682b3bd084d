package models

import "github.com/shopspring/decimal"

type Restaurant struct {
	RestaurantID int    `json:"id"`
	Name         string `json:"name" validate:"required,max=50"`
	Address      string `json:"address" validate:"max=100"`
	ContactPhone string `json:"contact_phone" validate:"max=50"`
}

type ProductCategory struct {
	CategoryID int    `json:"id"`
	Name       string `json:"name" validate:"required,max=50"`
}

type Product struct {
	ProductID     int              `json:"id"`
	Name          string           `json:"name" validate:"required,max=50"`
	CategoryID    *int             `json:"category_id" validate:"omitempty,gt=0"`
	Category      *ProductCategory `json:"category,omitempty" validate:"-"`
	Price         decimal.Decimal  `json:"price"`
	Image         string           `json:"image" validate:"max=255"`
	SpecialStatus bool             `json:"special_status"`
	Description   string           `json:"description" validate:"max=200"`
}

// RestaurantMenuItem says whether a restaurant currently sells a product.
// (RestaurantID, ProductID) is unique.
type RestaurantMenuItem struct {
	MenuItemID   int    `json:"id"`
	RestaurantID int    `json:"restaurant_id"`
	ProductID    int    `json:"product_id"`
	ProductName  string `json:"product_name,omitempty"`
	Availability bool   `json:"availability"`
}

// AvailableProduct is a product with at least one available menu entry,
// together with the first restaurant that offers it.
type AvailableProduct struct {
	Product
	Restaurant Restaurant `json:"restaurant"`
}

type Banner struct {
	Title string `json:"title"`
	Src   string `json:"src"`
	Text  string `json:"text"`
}
