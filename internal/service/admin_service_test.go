package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KillerBee88/star-burger/internal/events"
	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository"
	"github.com/KillerBee88/star-burger/internal/repository/memrepo"
	"github.com/KillerBee88/star-burger/internal/validation"
)

type recordingCache struct {
	products    []int
	catalog     int
	restaurants []int
}

func (c *recordingCache) InvalidateProduct(_ context.Context, id int) {
	c.products = append(c.products, id)
}

func (c *recordingCache) InvalidateCatalog(context.Context) {
	c.catalog++
}

func (c *recordingCache) InvalidateRestaurant(_ context.Context, id int) {
	c.restaurants = append(c.restaurants, id)
}

type adminFixture struct {
	store *memrepo.Store
	svc   *AdminService
	pub   *recordingPublisher
	cache *recordingCache
	order *models.Order
}

func newAdminFixture(t *testing.T) adminFixture {
	t.Helper()
	store := memrepo.New()
	pub := &recordingPublisher{}
	cache := &recordingCache{}
	orders := NewOrderService(store, store.Repos(), pub, logger.Nop())
	svc := NewAdminService(store, store.Repos(), orders, cache, logger.Nop())

	burger := store.AddProduct("Cheeseburger", "199.00")
	order, err := orders.CreateOrder(context.Background(), &validation.ValidatedOrder{
		FirstName:   "Ann",
		LastName:    "Lee",
		PhoneNumber: "+79161234567",
		Address:     "Main St 1",
		Lines:       []validation.ValidatedLine{{Product: burger, Quantity: 1}},
	})
	require.NoError(t, err)
	pub.events = nil

	return adminFixture{store: store, svc: svc, pub: pub, cache: cache, order: order}
}

func ptr[T any](v T) *T { return &v }

func TestAdminService_AssigningRestaurantForcesInProcess(t *testing.T) {
	f := newAdminFixture(t)
	r := f.store.AddRestaurant("Star Burger Arbat")

	got, err := f.svc.UpdateOrder(context.Background(), f.order.OrderID, OrderUpdate{
		RestaurantID: Some(r.RestaurantID),
		Status:       ptr(models.StatusInDelivery),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusInProcess, got.Status)
	require.NotNil(t, got.RestaurantID)
	assert.Equal(t, r.RestaurantID, *got.RestaurantID)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, events.OrderStatusChanged, f.pub.events[0].Type)
	assert.Equal(t, models.StatusInProcess, f.pub.events[0].Status)
}

func TestAdminService_StatusEditWithoutRestaurantChange(t *testing.T) {
	f := newAdminFixture(t)
	r := f.store.AddRestaurant("Star Burger Arbat")
	ctx := context.Background()

	_, err := f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{RestaurantID: Some(r.RestaurantID)})
	require.NoError(t, err)

	got, err := f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{
		RestaurantID: Some(r.RestaurantID),
		Status:       ptr(models.StatusInDelivery),
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInDelivery, got.Status)
}

func TestAdminService_ReceivedOrderIsNotReopened(t *testing.T) {
	f := newAdminFixture(t)
	r := f.store.AddRestaurant("Star Burger Arbat")
	ctx := context.Background()

	_, err := f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{Status: ptr(models.StatusReceived)})
	require.NoError(t, err)

	got, err := f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{RestaurantID: Some(r.RestaurantID)})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, got.Status)
}

func TestAdminService_UnassigningRestaurantMovesToInProcess(t *testing.T) {
	f := newAdminFixture(t)
	r := f.store.AddRestaurant("Star Burger Arbat")
	ctx := context.Background()

	_, err := f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{RestaurantID: Some(r.RestaurantID)})
	require.NoError(t, err)
	_, err = f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{Status: ptr(models.StatusInDelivery)})
	require.NoError(t, err)

	got, err := f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{RestaurantID: Null[int]()})
	require.NoError(t, err)
	assert.Nil(t, got.RestaurantID)
	assert.Equal(t, models.StatusInProcess, got.Status)
}

func TestAdminService_UpdateOrderValidation(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		upd  OrderUpdate
	}{
		{"bad phone", OrderUpdate{PhoneNumber: ptr("12345")}},
		{"blank name", OrderUpdate{FirstName: ptr("  ")}},
		{"bad status", OrderUpdate{Status: ptr(models.OrderStatus("cooking"))}},
		{"bad payment", OrderUpdate{PaymentMethod: Some(models.PaymentMethod("crypto"))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateOrder(ctx, f.order.OrderID, tt.upd)
			assert.ErrorIs(t, err, repository.ErrInvalidInput)
		})
	}

	_, err := f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{RestaurantID: Some(404)})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.UpdateOrder(ctx, 999, OrderUpdate{})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := f.svc.GetOrder(ctx, f.order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, got.Status)
	assert.Equal(t, "+79161234567", got.PhoneNumber)
}

func TestAdminService_UpdateOrderFields(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	called := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{
		Comments:      ptr("ring twice"),
		PaymentMethod: Some(models.PaymentCard),
		CalledAt:      Some(called),
		Address:       ptr(" Tverskaya 7 "),
	})
	require.NoError(t, err)

	assert.Equal(t, "ring twice", got.Comments)
	assert.Equal(t, "Tverskaya 7", got.Address)
	require.NotNil(t, got.PaymentMethod)
	assert.Equal(t, models.PaymentCard, *got.PaymentMethod)
	require.NotNil(t, got.CalledAt)
	assert.True(t, got.CalledAt.Equal(called))
	assert.Equal(t, "199.00", got.FixedTotalPrice.StringFixed(2))
	assert.Len(t, got.Items, 1)
	assert.Empty(t, f.pub.events)
}

func TestOrderUpdate_UnmarshalJSON(t *testing.T) {
	var upd OrderUpdate
	require.NoError(t, json.Unmarshal([]byte(`{"restaurant_id": null, "status": "in_delivery"}`), &upd))
	assert.True(t, upd.RestaurantID.Set)
	assert.Nil(t, upd.RestaurantID.Value)
	assert.False(t, upd.PaymentMethod.Set)
	require.NotNil(t, upd.Status)
	assert.Equal(t, models.StatusInDelivery, *upd.Status)

	upd = OrderUpdate{}
	require.NoError(t, json.Unmarshal([]byte(`{"restaurant_id": 3, "payment_method": "cash"}`), &upd))
	require.NotNil(t, upd.RestaurantID.Value)
	assert.Equal(t, 3, *upd.RestaurantID.Value)
	require.NotNil(t, upd.PaymentMethod.Value)
	assert.Equal(t, models.PaymentCash, *upd.PaymentMethod.Value)
}

func TestAdminService_DeleteOrder(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteOrder(ctx, f.order.OrderID))
	assert.Equal(t, 0, f.store.OrderCount())
	assert.Zero(t, f.store.ItemCount())
	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, f.order.OrderID), repository.ErrNotFound)
}

func TestAdminService_DeleteProductDetachesOrderItems(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()
	productID := *f.order.Items[0].ProductID

	require.NoError(t, f.svc.DeleteProduct(ctx, productID))
	assert.Equal(t, []int{productID}, f.cache.products)

	got, err := f.svc.GetOrder(ctx, f.order.OrderID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Nil(t, got.Items[0].ProductID)
	assert.Equal(t, "Cheeseburger", got.Items[0].ProductName)
	assert.Equal(t, "199.00", got.FixedTotalPrice.StringFixed(2))
}

func TestAdminService_DeleteCategoryUncategorizesProducts(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	category := &models.ProductCategory{Name: "Burgers"}
	require.NoError(t, f.svc.CreateCategory(ctx, category))

	product := &models.Product{Name: "Double", CategoryID: &category.CategoryID}
	require.NoError(t, f.svc.CreateProduct(ctx, product))

	require.NoError(t, f.svc.DeleteCategory(ctx, category.CategoryID))
	assert.Equal(t, 1, f.cache.catalog)

	got, err := f.svc.GetProduct(ctx, product.ProductID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)
}

func TestAdminService_RestaurantLifecycle(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	r := &models.Restaurant{Name: "Star Burger Arbat", Address: "Arbat 1"}
	require.NoError(t, f.svc.CreateRestaurant(ctx, r))

	productID := *f.order.Items[0].ProductID
	item := &models.RestaurantMenuItem{RestaurantID: r.RestaurantID, ProductID: productID, Availability: true}
	require.NoError(t, f.svc.SetMenuItem(ctx, item))
	assert.Equal(t, "Cheeseburger", item.ProductName)

	item.Availability = false
	require.NoError(t, f.svc.SetMenuItem(ctx, item))

	menu, err := f.svc.ListMenu(ctx, r.RestaurantID)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.False(t, menu[0].Availability)

	err = f.svc.SetMenuItem(ctx, &models.RestaurantMenuItem{RestaurantID: r.RestaurantID, ProductID: 999})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = f.svc.UpdateOrder(ctx, f.order.OrderID, OrderUpdate{RestaurantID: Some(r.RestaurantID)})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRestaurant(ctx, r.RestaurantID))
	assert.Contains(t, f.cache.restaurants, r.RestaurantID)

	got, err := f.svc.GetOrder(ctx, f.order.OrderID)
	require.NoError(t, err)
	assert.Nil(t, got.RestaurantID)

	_, err = f.svc.ListMenu(ctx, r.RestaurantID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Zero(t, f.store.MenuCount())
}

func TestAdminService_ListOrdersRejectsUnknownFilter(t *testing.T) {
	f := newAdminFixture(t)

	_, err := f.svc.ListOrders(context.Background(), repository.OrderFilter{Status: "lost"})
	assert.ErrorIs(t, err, repository.ErrInvalidInput)

	orders, err := f.svc.ListOrders(context.Background(), repository.OrderFilter{Status: models.StatusAccepted})
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}
