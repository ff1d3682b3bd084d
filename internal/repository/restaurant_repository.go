package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/KillerBee88/star-burger/internal/database"
	"github.com/KillerBee88/star-burger/internal/models"
)

type restaurantRepo struct {
	db database.DBTX
}

func NewRestaurantRepository(db database.DBTX) RestaurantRepository {
	return &restaurantRepo{db: db}
}

func validateRestaurant(r *models.Restaurant) error {
	if r == nil {
		return fmt.Errorf("%w: restaurant cannot be nil", ErrInvalidInput)
	}
	r.Name = strings.TrimSpace(r.Name)
	return validateStruct("restaurant", r)
}

func scanRestaurant(row pgx.Row) (models.Restaurant, error) {
	var r models.Restaurant
	err := row.Scan(&r.RestaurantID, &r.Name, &r.Address, &r.ContactPhone)
	return r, err
}

func (r *restaurantRepo) Create(ctx context.Context, restaurant *models.Restaurant) error {
	if err := validateRestaurant(restaurant); err != nil {
		return err
	}

	sql := `INSERT INTO restaurants (name, address, contact_phone)
	VALUES ($1, $2, $3)
	RETURNING restaurant_id
	`

	err := r.db.QueryRow(ctx, sql,
		restaurant.Name,
		restaurant.Address,
		restaurant.ContactPhone,
	).Scan(&restaurant.RestaurantID)
	if err != nil {
		return wrapPgError(err, "failed to create restaurant")
	}

	return nil
}

func (r *restaurantRepo) GetByID(ctx context.Context, id int) (*models.Restaurant, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `SELECT restaurant_id, name, address, contact_phone FROM restaurants WHERE restaurant_id = $1`

	restaurant, err := scanRestaurant(r.db.QueryRow(ctx, sql, id))
	if err != nil {
		return nil, wrapPgError(err, "failed to get restaurant by id %d", id)
	}

	return &restaurant, nil
}

func (r *restaurantRepo) GetAll(ctx context.Context, search string) ([]models.Restaurant, error) {
	var where whereBuilder
	if search != "" {
		where.add("(name ILIKE $%[1]d OR address ILIKE $%[1]d OR contact_phone ILIKE $%[1]d)", likePattern(search))
	}

	sql := `SELECT restaurant_id, name, address, contact_phone FROM restaurants ` +
		where.sql() + ` ORDER BY restaurant_id`

	rows, err := r.db.Query(ctx, sql, where.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get all restaurants: %w", err)
	}

	defer rows.Close()

	restaurants := []models.Restaurant{}

	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan restaurants: %w", err)
		}
		restaurants = append(restaurants, restaurant)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to complete row iteration: %w", err)
	}

	return restaurants, nil
}

func (r *restaurantRepo) Update(ctx context.Context, restaurant *models.Restaurant) error {
	if err := validateRestaurant(restaurant); err != nil {
		return err
	}
	if restaurant.RestaurantID <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	sql := `
	UPDATE restaurants
	SET
		name = $1,
		address = $2,
		contact_phone = $3
	WHERE restaurant_id = $4
	`

	result, err := r.db.Exec(ctx, sql,
		restaurant.Name,
		restaurant.Address,
		restaurant.ContactPhone,
		restaurant.RestaurantID,
	)
	if err != nil {
		return wrapPgError(err, "failed to update restaurant %d", restaurant.RestaurantID)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *restaurantRepo) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return fmt.Errorf("%w: ID cannot be empty", ErrInvalidInput)
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM restaurant_menu_items WHERE restaurant_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete menu of restaurant %d: %w", id, err)
	}

	if _, err := r.db.Exec(ctx, `UPDATE orders SET restaurant_id = NULL WHERE restaurant_id = $1`, id); err != nil {
		return fmt.Errorf("failed to unassign orders of restaurant %d: %w", id, err)
	}

	result, err := r.db.Exec(ctx, `DELETE FROM restaurants WHERE restaurant_id = $1`, id)
	if err != nil {
		return wrapPgError(err, "failed to delete restaurant %d", id)
	}

	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}
