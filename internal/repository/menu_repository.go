package repository

import (
	"context"
	"fmt"

	"github.com/KillerBee88/star-burger/internal/database"
	"github.com/KillerBee88/star-burger/internal/models"
)

type menuRepo struct {
	db database.DBTX
}

func NewMenuRepository(db database.DBTX) MenuRepository {
	return &menuRepo{db: db}
}

func (r *menuRepo) ListByRestaurant(ctx context.Context, restaurantID int) ([]models.RestaurantMenuItem, error) {
	if restaurantID <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT
		m.menu_item_id,
		m.restaurant_id,
		m.product_id,
		p.name,
		m.availability
	FROM restaurant_menu_items m
	JOIN products p ON p.product_id = m.product_id
	WHERE m.restaurant_id = $1
	ORDER BY m.product_id
	`

	rows, err := r.db.Query(ctx, sql, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu of restaurant %d: %w", restaurantID, err)
	}

	defer rows.Close()

	items := []models.RestaurantMenuItem{}

	for rows.Next() {
		var item models.RestaurantMenuItem
		err := rows.Scan(
			&item.MenuItemID,
			&item.RestaurantID,
			&item.ProductID,
			&item.ProductName,
			&item.Availability,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu items: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return items, nil
}

// Upsert sets availability for the (restaurant, product) pair, creating the
// entry when it does not exist yet.
func (r *menuRepo) Upsert(ctx context.Context, item *models.RestaurantMenuItem) error {
	if item == nil {
		return fmt.Errorf("%w: menu item cannot be nil", ErrInvalidInput)
	}
	if item.RestaurantID <= 0 || item.ProductID <= 0 {
		return fmt.Errorf("%w: restaurant and product are required", ErrInvalidInput)
	}

	sql := `INSERT INTO restaurant_menu_items (restaurant_id, product_id, availability)
	VALUES ($1, $2, $3)
	ON CONFLICT ON CONSTRAINT restaurant_menu_items_restaurant_product_key
	DO UPDATE SET availability = EXCLUDED.availability
	RETURNING menu_item_id
	`

	err := r.db.QueryRow(ctx, sql, item.RestaurantID, item.ProductID, item.Availability).Scan(&item.MenuItemID)
	if err != nil {
		return wrapPgError(err, "failed to save menu item for restaurant %d", item.RestaurantID)
	}

	return nil
}

func (r *menuRepo) Delete(ctx context.Context, restaurantID, productID int) error {
	if restaurantID <= 0 || productID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	result, err := r.db.Exec(ctx,
		`DELETE FROM restaurant_menu_items WHERE restaurant_id = $1 AND product_id = $2`,
		restaurantID, productID)
	if err != nil {
		return wrapPgError(err, "failed to delete menu item")
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
