package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/KillerBee88/star-burger/internal/database"
)

// Repositories groups the per-entity repositories bound to one connection
// or one transaction.
type Repositories struct {
	Restaurants RestaurantRepository
	Categories  CategoryRepository
	Products    ProductRepository
	Menu        MenuRepository
	Orders      OrderRepository
	OrderItems  OrderItemRepository
}

func New(db database.DBTX) Repositories {
	return Repositories{
		Restaurants: NewRestaurantRepository(db),
		Categories:  NewCategoryRepository(db),
		Products:    NewProductRepository(db),
		Menu:        NewMenuRepository(db),
		Orders:      NewOrderRepository(db),
		OrderItems:  NewOrderItemRepository(db),
	}
}

// TxRunner executes fn with repositories that share a single transaction.
type TxRunner interface {
	InTx(ctx context.Context, fn func(repos Repositories) error) error
}

type pgTxRunner struct {
	db database.TxBeginner
}

func NewTxRunner(db database.TxBeginner) TxRunner {
	return &pgTxRunner{db: db}
}

func (r *pgTxRunner) InTx(ctx context.Context, fn func(repos Repositories) error) error {
	return database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(New(tx))
	})
}
