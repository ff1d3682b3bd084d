package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/KillerBee88/star-burger/internal/events"
	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository"
	"github.com/KillerBee88/star-burger/internal/validation"
)

// OrderItemDraft is a line item to add to an existing order. A nil
// FixedPrice means the product's current price is frozen.
type OrderItemDraft struct {
	ProductID  int              `json:"product"`
	Quantity   int              `json:"quantity"`
	FixedPrice *decimal.Decimal `json:"fixed_price,omitempty"`
}

// OrderService owns every mutation of an order's line items. Each one runs
// in a single transaction together with the total recalculation.
type OrderService struct {
	tx     repository.TxRunner
	repos  repository.Repositories
	events events.Publisher
	log    *logger.Logger
}

func NewOrderService(tx repository.TxRunner, repos repository.Repositories, publisher events.Publisher, log *logger.Logger) *OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &OrderService{
		tx:     tx,
		repos:  repos,
		events: publisher,
		log:    log.WithComponent("order_service"),
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, v *validation.ValidatedOrder) (*models.Order, error) {
	log := s.log.FromContext(ctx)

	var order *models.Order

	err := s.tx.InTx(ctx, func(repos repository.Repositories) error {
		products, err := repos.Products.GetByIDs(ctx, v.ProductIDs())
		if err != nil {
			return err
		}

		o := &models.Order{
			FirstName:   v.FirstName,
			LastName:    v.LastName,
			PhoneNumber: v.PhoneNumber,
			Address:     v.Address,
			Status:      models.StatusAccepted,
		}
		if err := repos.Orders.Create(ctx, o); err != nil {
			return err
		}

		for _, line := range v.Lines {
			product, ok := products[line.Product.ProductID]
			if !ok {
				return fmt.Errorf("product %d disappeared: %w", line.Product.ProductID, repository.ErrNotFound)
			}

			productID := product.ProductID
			item := models.OrderItem{
				OrderID:     o.OrderID,
				ProductID:   &productID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				Price:       product.Price,
			}
			item.FreezePrice()
			if err := repos.OrderItems.Create(ctx, &item); err != nil {
				return err
			}
			o.Items = append(o.Items, item)
		}

		o.FixedTotalPrice = models.TotalPrice(o.Items)
		if err := repos.Orders.SetTotal(ctx, o.OrderID, o.FixedTotalPrice); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		log.Error("failed to create order", "error", err, "lines", len(v.Lines))
		return nil, fmt.Errorf("%w: %w", ErrOrderCreation, err)
	}

	log.Info("order created",
		"order_id", order.OrderID,
		"items", len(order.Items),
		"total", order.FixedTotalPrice.StringFixed(2),
	)

	s.publish(ctx, events.OrderCreated, order)

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int) (*models.Order, error) {
	order, err := s.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.repos.OrderItems.ListByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

func (s *OrderService) AddLineItem(ctx context.Context, orderID int, draft OrderItemDraft) (*models.OrderItem, error) {
	if draft.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", repository.ErrInvalidInput)
	}
	if draft.FixedPrice != nil && draft.FixedPrice.IsNegative() {
		return nil, fmt.Errorf("%w: fixed price cannot be negative", repository.ErrInvalidInput)
	}

	var item models.OrderItem

	err := s.tx.InTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Orders.GetByID(ctx, orderID); err != nil {
			return err
		}

		product, err := repos.Products.GetByID(ctx, draft.ProductID)
		if err != nil {
			return fmt.Errorf("product %d: %w", draft.ProductID, err)
		}

		productID := product.ProductID
		item = models.OrderItem{
			OrderID:     orderID,
			ProductID:   &productID,
			ProductName: product.Name,
			Quantity:    draft.Quantity,
			Price:       product.Price,
		}
		if draft.FixedPrice != nil {
			item.FixedPrice = *draft.FixedPrice
		}
		item.FreezePrice()

		if err := repos.OrderItems.Create(ctx, &item); err != nil {
			return err
		}

		_, err = recalculate(ctx, repos, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.FromContext(ctx).Info("line item added", "order_id", orderID, "item_id", item.OrderItemID)

	return &item, nil
}

// UpdateLineItemQuantity changes quantity only; product and prices of an
// existing line are immutable.
func (s *OrderService) UpdateLineItemQuantity(ctx context.Context, orderID, itemID, quantity int) error {
	return s.tx.InTx(ctx, func(repos repository.Repositories) error {
		if err := repos.OrderItems.UpdateQuantity(ctx, orderID, itemID, quantity); err != nil {
			return err
		}
		_, err := recalculate(ctx, repos, orderID)
		return err
	})
}

func (s *OrderService) RemoveLineItem(ctx context.Context, orderID, itemID int) error {
	return s.tx.InTx(ctx, func(repos repository.Repositories) error {
		if err := repos.OrderItems.Delete(ctx, orderID, itemID); err != nil {
			return err
		}
		_, err := recalculate(ctx, repos, orderID)
		return err
	})
}

func (s *OrderService) Recalculate(ctx context.Context, orderID int) (decimal.Decimal, error) {
	var total decimal.Decimal

	err := s.tx.InTx(ctx, func(repos repository.Repositories) error {
		var err error
		total, err = recalculate(ctx, repos, orderID)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func recalculate(ctx context.Context, repos repository.Repositories, orderID int) (decimal.Decimal, error) {
	items, err := repos.OrderItems.ListByOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	total := models.TotalPrice(items)
	if err := repos.Orders.SetTotal(ctx, orderID, total); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if err := s.events.PublishOrderEvent(ctx, events.NewOrderEvent(eventType, order)); err != nil {
		s.log.FromContext(ctx).Warn("failed to publish order event",
			"event", eventType,
			"order_id", order.OrderID,
			"error", err,
		)
	}
}
