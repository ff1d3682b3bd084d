package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/KillerBee88/star-burger/internal/database"
	"github.com/KillerBee88/star-burger/internal/models"
)

type productRepo struct {
	db database.DBTX
}

func NewProductRepository(db database.DBTX) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `
	p.product_id,
	p.name,
	p.category_id,
	c.name,
	p.price,
	p.image,
	p.special_status,
	p.description`

const productFrom = `
	FROM products p
	LEFT JOIN product_categories c ON c.category_id = p.category_id`

func validateProduct(p *models.Product) error {
	if p == nil {
		return fmt.Errorf("%w: product cannot be nil", ErrInvalidInput)
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := validateStruct("product", p); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: product price cannot be negative", ErrInvalidInput)
	}
	return nil
}

func scanProduct(row pgx.Row, extra ...any) (models.Product, error) {
	var (
		p            models.Product
		categoryID   pgtype.Int4
		categoryName pgtype.Text
	)

	dest := append([]any{
		&p.ProductID,
		&p.Name,
		&categoryID,
		&categoryName,
		&p.Price,
		&p.Image,
		&p.SpecialStatus,
		&p.Description,
	}, extra...)

	if err := row.Scan(dest...); err != nil {
		return p, err
	}

	p.CategoryID = intPtr(categoryID)
	if categoryID.Valid {
		p.Category = &models.ProductCategory{
			CategoryID: int(categoryID.Int32),
			Name:       categoryName.String,
		}
	}

	return p, nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	sql := `
		INSERT INTO products (
			name,
			category_id,
			price,
			image,
			special_status,
			description
	) VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING product_id
	`

	err := r.db.QueryRow(ctx, sql,
		p.Name,
		p.CategoryID,
		p.Price,
		p.Image,
		p.SpecialStatus,
		p.Description,
	).Scan(&p.ProductID)
	if err != nil {
		return wrapPgError(err, "failed to create product")
	}

	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int) (*models.Product, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT` + productColumns + productFrom + ` WHERE p.product_id = $1`

	product, err := scanProduct(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, wrapPgError(err, "failed to get product by id %d", id)
	}

	return &product, nil
}

func (r *productRepo) GetAll(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var where whereBuilder
	if filter.CategoryID != nil {
		where.add("p.category_id = $%d", *filter.CategoryID)
	}
	if filter.Search != "" {
		where.add("(p.name ILIKE $%[1]d OR c.name ILIKE $%[1]d)", likePattern(filter.Search))
	}

	sql := `SELECT` + productColumns + productFrom + " " + where.sql() + ` ORDER BY p.product_id`

	rows, err := r.db.Query(ctx, sql, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}

	defer rows.Close()

	products := []models.Product{}

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan products: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	if p.ProductID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}
	if err := validateProduct(p); err != nil {
		return err
	}

	sql := `
	UPDATE products
	SET
		name = $1,
		category_id = $2,
		price = $3,
		image = $4,
		special_status = $5,
		description = $6
	WHERE product_id = $7
	`

	result, err := r.db.Exec(ctx, sql,
		p.Name,
		p.CategoryID,
		p.Price,
		p.Image,
		p.SpecialStatus,
		p.Description,
		p.ProductID,
	)
	if err != nil {
		return wrapPgError(err, "failed to update product %d", p.ProductID)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM restaurant_menu_items WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete menu items of product %d: %w", id, err)
	}

	if _, err := r.db.Exec(ctx, `UPDATE order_items SET product_id = NULL WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("failed to detach order items of product %d: %w", id, err)
	}

	result, err := r.db.Exec(ctx, `DELETE FROM products WHERE product_id = $1`, id)
	if err != nil {
		return wrapPgError(err, "failed to delete product %d", id)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []int) (map[int]models.Product, error) {
	products := make(map[int]models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	sql := `SELECT` + productColumns + productFrom + ` WHERE p.product_id = ANY($1::int[])`

	rows, err := r.db.Query(ctx, sql, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get products information: %w", err)
	}

	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product data: %w", err)
		}
		products[p.ProductID] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}

// ListAvailable returns products with at least one available menu entry,
// each paired with the lowest-id restaurant that sells it.
func (r *productRepo) ListAvailable(ctx context.Context) ([]models.AvailableProduct, error) {
	sql := `SELECT` + productColumns + `,
		r.restaurant_id,
		r.name` + productFrom + `
	JOIN LATERAL (
		SELECT rs.restaurant_id, rs.name
		FROM restaurant_menu_items m
		JOIN restaurants rs ON rs.restaurant_id = m.restaurant_id
		WHERE m.product_id = p.product_id AND m.availability
		ORDER BY rs.restaurant_id
		LIMIT 1
	) r ON TRUE
	ORDER BY p.product_id`

	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to get available products: %w", err)
	}

	defer rows.Close()

	products := []models.AvailableProduct{}

	for rows.Next() {
		var restaurant models.Restaurant
		p, err := scanProduct(rows, &restaurant.RestaurantID, &restaurant.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to scan available product: %w", err)
		}
		products = append(products, models.AvailableProduct{Product: p, Restaurant: restaurant})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return products, nil
}
