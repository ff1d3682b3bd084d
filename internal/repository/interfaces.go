package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/KillerBee88/star-burger/internal/models"
)

type ProductFilter struct {
	CategoryID *int
	Search     string
}

type OrderFilter struct {
	Status        models.OrderStatus
	PaymentMethod models.PaymentMethod
	Search        string
}

type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *models.Restaurant) error
	GetByID(ctx context.Context, id int) (*models.Restaurant, error)
	GetAll(ctx context.Context, search string) ([]models.Restaurant, error)
	Update(ctx context.Context, restaurant *models.Restaurant) error
	// Delete removes the restaurant's menu entries and unassigns its orders first.
	Delete(ctx context.Context, id int) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *models.ProductCategory) error
	GetByID(ctx context.Context, id int) (*models.ProductCategory, error)
	GetAll(ctx context.Context) ([]models.ProductCategory, error)
	Update(ctx context.Context, category *models.ProductCategory) error
	// Delete leaves the category's products uncategorized.
	Delete(ctx context.Context, id int) error
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id int) (*models.Product, error)
	GetAll(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	// Delete drops menu entries and detaches historical order items.
	Delete(ctx context.Context, id int) error

	GetByIDs(ctx context.Context, ids []int) (map[int]models.Product, error)
	ListAvailable(ctx context.Context) ([]models.AvailableProduct, error)
}

type MenuRepository interface {
	ListByRestaurant(ctx context.Context, restaurantID int) ([]models.RestaurantMenuItem, error)
	Upsert(ctx context.Context, item *models.RestaurantMenuItem) error
	Delete(ctx context.Context, restaurantID, productID int) error
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id int) (*models.Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	SetTotal(ctx context.Context, id int, total decimal.Decimal) error
	Delete(ctx context.Context, id int) error
}

type OrderItemRepository interface {
	Create(ctx context.Context, item *models.OrderItem) error
	GetByID(ctx context.Context, orderID, itemID int) (*models.OrderItem, error)
	ListByOrder(ctx context.Context, orderID int) ([]models.OrderItem, error)
	UpdateQuantity(ctx context.Context, orderID, itemID, quantity int) error
	Delete(ctx context.Context, orderID, itemID int) error
}
