package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/KillerBee88/star-burger/internal/database"
	"github.com/KillerBee88/star-burger/internal/models"
)

type orderRepo struct {
	db database.DBTX
}

func NewOrderRepository(db database.DBTX) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `
	order_id,
	firstname,
	lastname,
	phonenumber,
	address,
	fixed_total_price,
	status,
	comments,
	restaurant_id,
	payment_method,
	created_at,
	called_at,
	delivered_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var (
		o             models.Order
		status        string
		restaurantID  pgtype.Int4
		paymentMethod pgtype.Text
		calledAt      pgtype.Timestamptz
		deliveredAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&o.OrderID,
		&o.FirstName,
		&o.LastName,
		&o.PhoneNumber,
		&o.Address,
		&o.FixedTotalPrice,
		&status,
		&o.Comments,
		&restaurantID,
		&paymentMethod,
		&o.CreatedAt,
		&calledAt,
		&deliveredAt,
	)
	if err != nil {
		return o, err
	}

	o.Status = models.OrderStatus(status)
	o.RestaurantID = intPtr(restaurantID)
	if paymentMethod.Valid {
		pm := models.PaymentMethod(paymentMethod.String)
		o.PaymentMethod = &pm
	}
	o.CalledAt = timePtr(calledAt)
	o.DeliveredAt = timePtr(deliveredAt)

	return o, nil
}

func paymentMethodArg(pm *models.PaymentMethod) *string {
	if pm == nil {
		return nil
	}
	s := string(*pm)
	return &s
}

func validateOrder(o *models.Order) error {
	if o == nil {
		return fmt.Errorf("%w: order cannot be nil", ErrInvalidInput)
	}
	if strings.TrimSpace(o.FirstName) == "" || strings.TrimSpace(o.LastName) == "" {
		return fmt.Errorf("%w: customer name required", ErrInvalidInput)
	}
	if strings.TrimSpace(o.PhoneNumber) == "" {
		return fmt.Errorf("%w: phone number required", ErrInvalidInput)
	}
	if strings.TrimSpace(o.Address) == "" {
		return fmt.Errorf("%w: address required", ErrInvalidInput)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: unknown order status %q", ErrInvalidInput, o.Status)
	}
	if o.PaymentMethod != nil && !o.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, *o.PaymentMethod)
	}
	if o.FixedTotalPrice.IsNegative() {
		return fmt.Errorf("%w: total cannot be negative", ErrInvalidInput)
	}
	return nil
}

// Create inserts the order header. Status defaults to accepted and
// created_at to now when unset.
func (r *orderRepo) Create(ctx context.Context, o *models.Order) error {
	if o != nil && o.Status == "" {
		o.Status = models.StatusAccepted
	}
	if err := validateOrder(o); err != nil {
		return err
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}

	sql := `INSERT INTO orders (
	firstname,
	lastname,
	phonenumber,
	address,
	fixed_total_price,
	status,
	comments,
	restaurant_id,
	payment_method,
	created_at,
	called_at,
	delivered_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	RETURNING order_id
	`

	err := r.db.QueryRow(ctx, sql,
		o.FirstName,
		o.LastName,
		o.PhoneNumber,
		o.Address,
		o.FixedTotalPrice,
		string(o.Status),
		o.Comments,
		o.RestaurantID,
		paymentMethodArg(o.PaymentMethod),
		o.CreatedAt,
		o.CalledAt,
		o.DeliveredAt,
	).Scan(&o.OrderID)
	if err != nil {
		return wrapPgError(err, "failed to create order")
	}

	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int) (*models.Order, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + orderColumns + ` FROM orders WHERE order_id = $1`

	order, err := scanOrder(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, wrapPgError(err, "failed to get order by id %d", id)
	}

	return &order, nil
}

func (r *orderRepo) GetAll(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	var where whereBuilder
	if filter.Status != "" {
		where.add("status = $%d", string(filter.Status))
	}
	if filter.PaymentMethod != "" {
		where.add("payment_method = $%d", string(filter.PaymentMethod))
	}
	if filter.Search != "" {
		where.add(`(firstname ILIKE $%[1]d OR lastname ILIKE $%[1]d OR phonenumber ILIKE $%[1]d
		OR address ILIKE $%[1]d OR comments ILIKE $%[1]d)`, likePattern(filter.Search))
	}

	sql := `SELECT` + orderColumns + ` FROM orders ` + where.sql() + ` ORDER BY order_id DESC`

	rows, err := r.db.Query(ctx, sql, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}

	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan orders: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return orders, nil
}

// Update writes every header column except the total and created_at.
func (r *orderRepo) Update(ctx context.Context, o *models.Order) error {
	if err := validateOrder(o); err != nil {
		return err
	}
	if o.OrderID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `
	UPDATE orders
	SET
		firstname = $1,
		lastname = $2,
		phonenumber = $3,
		address = $4,
		status = $5,
		comments = $6,
		restaurant_id = $7,
		payment_method = $8,
		called_at = $9,
		delivered_at = $10
	WHERE order_id = $11
	`

	result, err := r.db.Exec(ctx, sql,
		o.FirstName,
		o.LastName,
		o.PhoneNumber,
		o.Address,
		string(o.Status),
		o.Comments,
		o.RestaurantID,
		paymentMethodArg(o.PaymentMethod),
		o.CalledAt,
		o.DeliveredAt,
		o.OrderID,
	)
	if err != nil {
		return wrapPgError(err, "failed to update order %d", o.OrderID)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *orderRepo) SetTotal(ctx context.Context, id int, total decimal.Decimal) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}
	if total.IsNegative() {
		return fmt.Errorf("%w: total cannot be negative", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx, `UPDATE orders SET fixed_total_price = $1 WHERE order_id = $2`, total, id)
	if err != nil {
		return wrapPgError(err, "failed to set total of order %d", id)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *orderRepo) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete items of order %d: %w", id, err)
	}

	result, err := r.db.Exec(ctx, `DELETE FROM orders WHERE order_id = $1`, id)
	if err != nil {
		return wrapPgError(err, "failed to delete order %d", id)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
