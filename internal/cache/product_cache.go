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

const (
	availableProductsKey = "products:available"
	productKeyPattern    = "product:*"
	notFoundMarker       = "notfound"
	notFoundTTL          = time.Minute
)

func productKey(id int) string {
	return fmt.Sprintf("product:%d", id)
}

// CachedProductRepository is a cache-aside decorator over a
// ProductRepository. Redis failures are logged and fall through to the
// underlying repository.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	ttl      time.Duration
	log      *logger.Logger
}

func NewCachedProductRepository(realRepo repository.ProductRepository, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedProductRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    rdb,
		ttl:      ttl,
		log:      log.WithComponent("product_cache"),
	}
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}

		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			c.log.Warn("failed to unmarshal cached product, continuing with DB", "key", key, "error", err)
			break
		}

		return &product, nil

	case errors.Is(err, redis.Nil):

	default:
		c.log.Warn("redis error, continuing with DB", "key", key, "error", err)
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if setErr := c.redis.Set(ctx, key, notFoundMarker, notFoundTTL).Err(); setErr != nil {
				c.log.Warn("failed to cache notfound", "key", key, "error", setErr)
			}
		}
		return nil, err
	}

	c.store(ctx, key, product)

	return product, nil
}

func (c *CachedProductRepository) ListAvailable(ctx context.Context) ([]models.AvailableProduct, error) {
	data, err := c.redis.Get(ctx, availableProductsKey).Bytes()

	switch {
	case err == nil:
		var products []models.AvailableProduct
		if err := json.Unmarshal(data, &products); err != nil {
			c.log.Warn("failed to unmarshal cached products, continuing with DB", "error", err)
			break
		}
		return products, nil

	case errors.Is(err, redis.Nil):

	default:
		c.log.Warn("redis error, continuing with DB", "key", availableProductsKey, "error", err)
	}

	products, err := c.realRepo.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, availableProductsKey, products)

	return products, nil
}

func (c *CachedProductRepository) GetAll(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	return c.realRepo.GetAll(ctx, filter)
}

// GetByIDs is never served from cache: order creation must see current prices.
func (c *CachedProductRepository) GetByIDs(ctx context.Context, ids []int) (map[int]models.Product, error) {
	return c.realRepo.GetByIDs(ctx, ids)
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.realRepo.Create(ctx, product); err != nil {
		return err
	}
	c.InvalidateProduct(ctx, product.ProductID)
	return nil
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	err := c.realRepo.Update(ctx, product)
	c.InvalidateProduct(ctx, product.ProductID)
	return err
}

func (c *CachedProductRepository) Delete(ctx context.Context, id int) error {
	err := c.realRepo.Delete(ctx, id)
	c.InvalidateProduct(ctx, id)
	return err
}

// InvalidateProduct drops the product entry and the available listing.
func (c *CachedProductRepository) InvalidateProduct(ctx context.Context, id int) {
	c.del(ctx, productKey(id), availableProductsKey)
}

// InvalidateCatalog drops the available listing and every cached product.
// Category and restaurant edits change data embedded in both.
func (c *CachedProductRepository) InvalidateCatalog(ctx context.Context) {
	keys := []string{availableProductsKey}

	iter := c.redis.Scan(ctx, 0, productKeyPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("failed to scan product cache", "error", err)
	}

	c.del(ctx, keys...)
}

func (c *CachedProductRepository) store(ctx context.Context, key string, v any) {
	jsonData, err := json.Marshal(v)
	if err != nil {
		c.log.Warn("failed to marshal cache entry", "key", key, "error", err)
		return
	}

	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache entry", "key", key, "error", err)
	}
}

func (c *CachedProductRepository) del(ctx context.Context, keys ...string) {
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("failed to delete cache keys", "keys", keys, "error", err)
	}
}
