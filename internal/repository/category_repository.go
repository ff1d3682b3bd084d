package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/KillerBee88/star-burger/internal/database"
	"github.com/KillerBee88/star-burger/internal/models"
)

type categoryRepo struct {
	db database.DBTX
}

func NewCategoryRepository(db database.DBTX) CategoryRepository {
	return &categoryRepo{db: db}
}

func validateCategory(c *models.ProductCategory) error {
	if c == nil {
		return fmt.Errorf("%w: category cannot be nil", ErrInvalidInput)
	}
	c.Name = strings.TrimSpace(c.Name)
	return validateStruct("category", c)
}

func (r *categoryRepo) Create(ctx context.Context, category *models.ProductCategory) error {
	if err := validateCategory(category); err != nil {
		return err
	}

	err := r.db.QueryRow(ctx,
		`INSERT INTO product_categories (name) VALUES ($1) RETURNING category_id`,
		category.Name,
	).Scan(&category.CategoryID)
	if err != nil {
		return wrapPgError(err, "failed to create category")
	}

	return nil
}

func (r *categoryRepo) GetByID(ctx context.Context, id int) (*models.ProductCategory, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	var c models.ProductCategory
	err := r.db.QueryRow(ctx,
		`SELECT category_id, name FROM product_categories WHERE category_id = $1`, id,
	).Scan(&c.CategoryID, &c.Name)
	if err != nil {
		return nil, wrapPgError(err, "failed to get category by id %d", id)
	}

	return &c, nil
}

func (r *categoryRepo) GetAll(ctx context.Context) ([]models.ProductCategory, error) {
	rows, err := r.db.Query(ctx, `SELECT category_id, name FROM product_categories ORDER BY category_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}

	defer rows.Close()

	categories := []models.ProductCategory{}

	for rows.Next() {
		var c models.ProductCategory
		if err := rows.Scan(&c.CategoryID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan categories: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return categories, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.ProductCategory) error {
	if err := validateCategory(category); err != nil {
		return err
	}
	if category.CategoryID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx,
		`UPDATE product_categories SET name = $1 WHERE category_id = $2`,
		category.Name, category.CategoryID)
	if err != nil {
		return wrapPgError(err, "failed to update category %d", category.CategoryID)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	if _, err := r.db.Exec(ctx, `UPDATE products SET category_id = NULL WHERE category_id = $1`, id); err != nil {
		return fmt.Errorf("failed to uncategorize products of category %d: %w", id, err)
	}

	result, err := r.db.Exec(ctx, `DELETE FROM product_categories WHERE category_id = $1`, id)
	if err != nil {
		return wrapPgError(err, "failed to delete category %d", id)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
