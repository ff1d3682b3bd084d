package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/KillerBee88/star-burger/internal/events"
	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository"
	"github.com/KillerBee88/star-burger/internal/validation"
)

// CatalogCache is notified after catalog writes commit.
type CatalogCache interface {
	InvalidateProduct(ctx context.Context, productID int)
	InvalidateCatalog(ctx context.Context)
	InvalidateRestaurant(ctx context.Context, restaurantID int)
}

type nopCatalogCache struct{}

func (nopCatalogCache) InvalidateProduct(context.Context, int)    {}
func (nopCatalogCache) InvalidateCatalog(context.Context)         {}
func (nopCatalogCache) InvalidateRestaurant(context.Context, int) {}

// OrderUpdate is a partial edit of an order header. Absent fields are left
// untouched; nullable fields may be cleared with an explicit null.
type OrderUpdate struct {
	FirstName     *string                        `json:"firstname"`
	LastName      *string                        `json:"lastname"`
	PhoneNumber   *string                        `json:"phonenumber"`
	Address       *string                        `json:"address"`
	Status        *models.OrderStatus            `json:"status"`
	Comments      *string                        `json:"comments"`
	RestaurantID  Nullable[int]                  `json:"restaurant_id"`
	PaymentMethod Nullable[models.PaymentMethod] `json:"payment_method"`
	CalledAt      Nullable[time.Time]            `json:"called_at"`
	DeliveredAt   Nullable[time.Time]            `json:"delivered_at"`
}

// AdminService is the staff management API over the catalog and orders.
type AdminService struct {
	tx     repository.TxRunner
	repos  repository.Repositories
	orders *OrderService
	cache  CatalogCache
	log    *logger.Logger
}

func NewAdminService(
	tx repository.TxRunner,
	repos repository.Repositories,
	orders *OrderService,
	cache CatalogCache,
	log *logger.Logger,
) *AdminService {
	if cache == nil {
		cache = nopCatalogCache{}
	}
	return &AdminService{
		tx:     tx,
		repos:  repos,
		orders: orders,
		cache:  cache,
		log:    log.WithComponent("admin_service"),
	}
}

func (s *AdminService) Orders() *OrderService {
	return s.orders
}

func (s *AdminService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", repository.ErrInvalidInput, filter.Status)
	}
	if filter.PaymentMethod != "" && !filter.PaymentMethod.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", repository.ErrInvalidInput, filter.PaymentMethod)
	}
	return s.repos.Orders.GetAll(ctx, filter)
}

func (s *AdminService) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	return s.orders.GetOrder(ctx, id)
}

// UpdateOrder applies upd and recalculates the total in one transaction.
// Changing the assigned restaurant, including clearing it, moves the order to
// in_process, overriding any status in the same edit, unless the order was
// already received.
func (s *AdminService) UpdateOrder(ctx context.Context, id int, upd OrderUpdate) (*models.Order, error) {
	var (
		order     *models.Order
		oldStatus models.OrderStatus
	)

	err := s.tx.InTx(ctx, func(repos repository.Repositories) error {
		o, err := repos.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		oldStatus = o.Status
		oldRestaurant := o.RestaurantID

		if err := applyOrderUpdate(o, upd); err != nil {
			return err
		}

		if upd.RestaurantID.Set && restaurantChanged(oldRestaurant, o.RestaurantID) &&
			oldStatus != models.StatusReceived {
			o.Status = models.StatusInProcess
		}

		if o.RestaurantID != nil {
			if _, err := repos.Restaurants.GetByID(ctx, *o.RestaurantID); err != nil {
				return fmt.Errorf("restaurant %d: %w", *o.RestaurantID, err)
			}
		}

		if err := repos.Orders.Update(ctx, o); err != nil {
			return err
		}

		total, err := recalculate(ctx, repos, id)
		if err != nil {
			return err
		}
		o.FixedTotalPrice = total

		items, err := repos.OrderItems.ListByOrder(ctx, id)
		if err != nil {
			return err
		}
		o.Items = items

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if order.Status != oldStatus {
		s.log.FromContext(ctx).Info("order status changed",
			"order_id", id,
			"from", oldStatus,
			"to", order.Status,
		)
		s.orders.publish(ctx, events.OrderStatusChanged, order)
	}

	return order, nil
}

func applyOrderUpdate(o *models.Order, upd OrderUpdate) error {
	setString := func(dst *string, v *string, field string) error {
		if v == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			return fmt.Errorf("%w: %s cannot be blank", repository.ErrInvalidInput, field)
		}
		*dst = trimmed
		return nil
	}

	if err := setString(&o.FirstName, upd.FirstName, "firstname"); err != nil {
		return err
	}
	if err := setString(&o.LastName, upd.LastName, "lastname"); err != nil {
		return err
	}
	if err := setString(&o.Address, upd.Address, "address"); err != nil {
		return err
	}
	if upd.PhoneNumber != nil {
		phone := strings.TrimSpace(*upd.PhoneNumber)
		if !validation.ValidPhone(phone) {
			return fmt.Errorf("%w: invalid phone number %q", repository.ErrInvalidInput, phone)
		}
		o.PhoneNumber = phone
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return fmt.Errorf("%w: unknown status %q", repository.ErrInvalidInput, *upd.Status)
		}
		o.Status = *upd.Status
	}
	if upd.Comments != nil {
		o.Comments = *upd.Comments
	}
	if upd.RestaurantID.Set {
		o.RestaurantID = upd.RestaurantID.Value
	}
	if upd.PaymentMethod.Set {
		if pm := upd.PaymentMethod.Value; pm != nil && !pm.Valid() {
			return fmt.Errorf("%w: unknown payment method %q", repository.ErrInvalidInput, *pm)
		}
		o.PaymentMethod = upd.PaymentMethod.Value
	}
	if upd.CalledAt.Set {
		o.CalledAt = upd.CalledAt.Value
	}
	if upd.DeliveredAt.Set {
		o.DeliveredAt = upd.DeliveredAt.Value
	}

	return nil
}

func restaurantChanged(prev, next *int) bool {
	switch {
	case prev == nil && next == nil:
		return false
	case prev == nil || next == nil:
		return true
	default:
		return *prev != *next
	}
}

func (s *AdminService) DeleteOrder(ctx context.Context, id int) error {
	err := s.tx.InTx(ctx, func(repos repository.Repositories) error {
		return repos.Orders.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.FromContext(ctx).Info("order deleted", "order_id", id)
	return nil
}

func (s *AdminService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	return s.repos.Products.GetAll(ctx, filter)
}

func (s *AdminService) GetProduct(ctx context.Context, id int) (*models.Product, error) {
	return s.repos.Products.GetByID(ctx, id)
}

func (s *AdminService) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := s.repos.Products.Create(ctx, p); err != nil {
		return err
	}
	s.cache.InvalidateProduct(ctx, p.ProductID)
	return nil
}

// UpdateProduct changes the catalog only; line items already placed keep
// their fixed price.
func (s *AdminService) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := s.repos.Products.Update(ctx, p); err != nil {
		return err
	}
	s.cache.InvalidateProduct(ctx, p.ProductID)
	return nil
}

func (s *AdminService) DeleteProduct(ctx context.Context, id int) error {
	err := s.tx.InTx(ctx, func(repos repository.Repositories) error {
		return repos.Products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateProduct(ctx, id)
	return nil
}

func (s *AdminService) ListCategories(ctx context.Context) ([]models.ProductCategory, error) {
	return s.repos.Categories.GetAll(ctx)
}

func (s *AdminService) CreateCategory(ctx context.Context, c *models.ProductCategory) error {
	return s.repos.Categories.Create(ctx, c)
}

func (s *AdminService) UpdateCategory(ctx context.Context, c *models.ProductCategory) error {
	if err := s.repos.Categories.Update(ctx, c); err != nil {
		return err
	}
	s.cache.InvalidateCatalog(ctx)
	return nil
}

func (s *AdminService) DeleteCategory(ctx context.Context, id int) error {
	err := s.tx.InTx(ctx, func(repos repository.Repositories) error {
		return repos.Categories.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateCatalog(ctx)
	return nil
}

func (s *AdminService) ListRestaurants(ctx context.Context, search string) ([]models.Restaurant, error) {
	return s.repos.Restaurants.GetAll(ctx, search)
}

func (s *AdminService) GetRestaurant(ctx context.Context, id int) (*models.Restaurant, error) {
	return s.repos.Restaurants.GetByID(ctx, id)
}

func (s *AdminService) CreateRestaurant(ctx context.Context, r *models.Restaurant) error {
	return s.repos.Restaurants.Create(ctx, r)
}

func (s *AdminService) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	if err := s.repos.Restaurants.Update(ctx, r); err != nil {
		return err
	}
	s.cache.InvalidateCatalog(ctx)
	return nil
}

func (s *AdminService) DeleteRestaurant(ctx context.Context, id int) error {
	err := s.tx.InTx(ctx, func(repos repository.Repositories) error {
		return repos.Restaurants.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.cache.InvalidateRestaurant(ctx, id)
	return nil
}

func (s *AdminService) ListMenu(ctx context.Context, restaurantID int) ([]models.RestaurantMenuItem, error) {
	if _, err := s.repos.Restaurants.GetByID(ctx, restaurantID); err != nil {
		return nil, err
	}
	return s.repos.Menu.ListByRestaurant(ctx, restaurantID)
}

func (s *AdminService) SetMenuItem(ctx context.Context, item *models.RestaurantMenuItem) error {
	if _, err := s.repos.Restaurants.GetByID(ctx, item.RestaurantID); err != nil {
		return err
	}
	product, err := s.repos.Products.GetByID(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("product %d: %w", item.ProductID, err)
	}
	item.ProductName = product.Name

	if err := s.repos.Menu.Upsert(ctx, item); err != nil {
		return err
	}
	s.cache.InvalidateRestaurant(ctx, item.RestaurantID)
	return nil
}

func (s *AdminService) DeleteMenuItem(ctx context.Context, restaurantID, productID int) error {
	if err := s.repos.Menu.Delete(ctx, restaurantID, productID); err != nil {
		return err
	}
	s.cache.InvalidateRestaurant(ctx, restaurantID)
	return nil
}
