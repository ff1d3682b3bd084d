package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository"
)

const menuKeyPattern = "menu:restaurant:*"

func menuKey(restaurantID int) string {
	return fmt.Sprintf("menu:restaurant:%d", restaurantID)
}

// CachedMenuRepository caches restaurant menus. Any menu change also drops
// the available products listing, since availability drives it.
type CachedMenuRepository struct {
	realRepo repository.MenuRepository
	redis    *redis.Client
	ttl      time.Duration
	log      *logger.Logger
}

func NewCachedMenuRepository(realRepo repository.MenuRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedMenuRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedMenuRepository{
		realRepo: realRepo,
		redis:    rdb,
		ttl:      ttl,
		log:      log.WithComponent("menu_cache"),
	}
}

func (c *CachedMenuRepository) ListByRestaurant(ctx context.Context, restaurantID int) ([]models.RestaurantMenuItem, error) {
	key := menuKey(restaurantID)

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var items []models.RestaurantMenuItem
		if err := json.Unmarshal(data, &items); err == nil {
			return items, nil
		}
		c.log.Warn("failed to unmarshal cached menu, continuing with DB", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("redis error, continuing with DB", "key", key, "error", err)
	}

	items, err := c.realRepo.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	if jsonData, err := json.Marshal(items); err == nil {
		if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
			c.log.Warn("failed to cache menu", "key", key, "error", err)
		}
	}

	return items, nil
}

func (c *CachedMenuRepository) Upsert(ctx context.Context, item *models.RestaurantMenuItem) error {
	err := c.realRepo.Upsert(ctx, item)
	c.InvalidateRestaurant(ctx, item.RestaurantID)
	return err
}

func (c *CachedMenuRepository) Delete(ctx context.Context, restaurantID, productID int) error {
	err := c.realRepo.Delete(ctx, restaurantID, productID)
	c.InvalidateRestaurant(ctx, restaurantID)
	return err
}

func (c *CachedMenuRepository) InvalidateRestaurant(ctx context.Context, restaurantID int) {
	if err := c.redis.Del(ctx, menuKey(restaurantID), availableProductsKey).Err(); err != nil {
		c.log.Warn("failed to delete menu cache", "restaurant_id", restaurantID, "error", err)
	}
}

// InvalidateAll drops every cached menu. Menu rows embed the product name,
// so a product edit or delete touches every restaurant that lists it.
func (c *CachedMenuRepository) InvalidateAll(ctx context.Context) {
	keys := []string{availableProductsKey}

	iter := c.redis.Scan(ctx, 0, menuKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("failed to scan menu cache", "error", err)
	}

	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("failed to delete menu cache", "error", err)
	}
}

// Catalog bundles the cached repositories for invalidation after writes
// made outside of them, such as transactional deletes.
type Catalog struct {
	Products *CachedProductRepository
	Menu     *CachedMenuRepository
}

func (c Catalog) InvalidateProduct(ctx context.Context, productID int) {
	c.Products.InvalidateProduct(ctx, productID)
	c.Menu.InvalidateAll(ctx)
}

func (c Catalog) InvalidateCatalog(ctx context.Context) {
	c.Products.InvalidateCatalog(ctx)
}

func (c Catalog) InvalidateRestaurant(ctx context.Context, restaurantID int) {
	c.Menu.InvalidateRestaurant(ctx, restaurantID)
}
