package repository

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/KillerBee88/star-burger/internal/database"
	"github.com/KillerBee88/star-burger/internal/models"
)

type orderItemRepo struct {
	db database.DBTX
}

func NewOrderItemRepository(db database.DBTX) OrderItemRepository {
	return &orderItemRepo{db: db}
}

const orderItemColumns = `
	order_item_id,
	order_id,
	product_id,
	product_name,
	quantity,
	price,
	fixed_price`

func scanOrderItem(row pgx.Row) (models.OrderItem, error) {
	var (
		item      models.OrderItem
		productID pgtype.Int4
	)

	err := row.Scan(
		&item.OrderItemID,
		&item.OrderID,
		&productID,
		&item.ProductName,
		&item.Quantity,
		&item.Price,
		&item.FixedPrice,
	)
	if err != nil {
		return item, err
	}

	item.ProductID = intPtr(productID)
	return item, nil
}

// Create freezes the unit price before inserting the line.
func (r *orderItemRepo) Create(ctx context.Context, item *models.OrderItem) error {
	if item == nil {
		return fmt.Errorf("%w: item cannot be nil", ErrInvalidInput)
	}
	if item.OrderID <= 0 {
		return fmt.Errorf("%w: order ID cannot be empty", ErrInvalidInput)
	}
	if item.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if item.Quantity > math.MaxInt32 {
		return fmt.Errorf("%w: quantity must be at most %d", ErrInvalidInput, math.MaxInt32)
	}
	if item.Price.IsNegative() || item.FixedPrice.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", ErrInvalidInput)
	}

	item.FreezePrice()

	sql := `INSERT INTO order_items (order_id, product_id, product_name, quantity, price, fixed_price)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING order_item_id
	`

	err := r.db.QueryRow(ctx, sql,
		item.OrderID,
		item.ProductID,
		item.ProductName,
		item.Quantity,
		item.Price,
		item.FixedPrice,
	).Scan(&item.OrderItemID)
	if err != nil {
		return wrapPgError(err, "failed to create item for order %d", item.OrderID)
	}

	return nil
}

func (r *orderItemRepo) GetByID(ctx context.Context, orderID, itemID int) (*models.OrderItem, error) {
	if orderID <= 0 || itemID <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + orderItemColumns + ` FROM order_items WHERE order_id = $1 AND order_item_id = $2`

	item, err := scanOrderItem(r.db.QueryRow(ctx, sql, orderID, itemID))
	if err != nil {
		return nil, wrapPgError(err, "failed to get item %d of order %d", itemID, orderID)
	}

	return &item, nil
}

func (r *orderItemRepo) ListByOrder(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	if orderID <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + orderItemColumns + ` FROM order_items WHERE order_id = $1 ORDER BY order_item_id`

	rows, err := r.db.Query(ctx, sql, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get items of order %d: %w", orderID, err)
	}

	defer rows.Close()

	items := []models.OrderItem{}

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order items: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return items, nil
}

func (r *orderItemRepo) UpdateQuantity(ctx context.Context, orderID, itemID, quantity int) error {
	if orderID <= 0 || itemID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if quantity > math.MaxInt32 {
		return fmt.Errorf("%w: quantity must be at most %d", ErrInvalidInput, math.MaxInt32)
	}

	result, err := r.db.Exec(ctx,
		`UPDATE order_items SET quantity = $1 WHERE order_id = $2 AND order_item_id = $3`,
		quantity, orderID, itemID)
	if err != nil {
		return wrapPgError(err, "failed to update item %d of order %d", itemID, orderID)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *orderItemRepo) Delete(ctx context.Context, orderID, itemID int) error {
	if orderID <= 0 || itemID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx,
		`DELETE FROM order_items WHERE order_id = $1 AND order_item_id = $2`, orderID, itemID)
	if err != nil {
		return wrapPgError(err, "failed to delete item %d of order %d", itemID, orderID)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
