// Package memrepo is an in-memory implementation of the repositories for
// tests. Transactions run against a copy of the state that replaces it on
// success.
package memrepo

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository"
)

// ErrInjected is returned by OrderItems.Create once FailItemCreateAfter is hit.
var ErrInjected = errors.New("injected failure")

// memState is the whole database; transactions work on a copy of it.
type memState struct {
	restaurants map[int]models.Restaurant
	categories  map[int]models.ProductCategory
	products    map[int]models.Product
	menu        map[int]models.RestaurantMenuItem
	orders      map[int]models.Order
	items       map[int]models.OrderItem
	nextID      int
}

func (s *memState) clone() *memState {
	c := &memState{
		restaurants: make(map[int]models.Restaurant, len(s.restaurants)),
		categories:  make(map[int]models.ProductCategory, len(s.categories)),
		products:    make(map[int]models.Product, len(s.products)),
		menu:        make(map[int]models.RestaurantMenuItem, len(s.menu)),
		orders:      make(map[int]models.Order, len(s.orders)),
		items:       make(map[int]models.OrderItem, len(s.items)),
		nextID:      s.nextID,
	}
	for k, v := range s.restaurants {
		c.restaurants[k] = v
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.menu {
		c.menu[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	return c
}

func (s *memState) id() int {
	s.nextID++
	return s.nextID
}

type Store struct {
	state *memState

	// FailItemCreateAfter makes the n-th OrderItems.Create (1-based) fail.
	FailItemCreateAfter int
	itemCreates         int
}

func New() *Store {
	return &Store{state: (&memState{}).clone()}
}

func (m *Store) Repos() repository.Repositories {
	return m.reposFor(func() *memState { return m.state })
}

func (m *Store) reposFor(state func() *memState) repository.Repositories {
	return repository.Repositories{
		Restaurants: &memRestaurants{state},
		Categories:  &memCategories{state},
		Products:    &memProducts{state},
		Menu:        &memMenu{state},
		Orders:      &memOrders{state},
		OrderItems:  &memItems{store: m, state: state},
	}
}

func (m *Store) InTx(_ context.Context, fn func(repository.Repositories) error) error {
	tx := m.state.clone()
	if err := fn(m.reposFor(func() *memState { return tx })); err != nil {
		return err
	}
	m.state = tx
	return nil
}

func (m *Store) AddProduct(name, price string) models.Product {
	p := models.Product{ProductID: m.state.id(), Name: name, Price: decimal.RequireFromString(price)}
	m.state.products[p.ProductID] = p
	return p
}

func (m *Store) AddRestaurant(name string) models.Restaurant {
	r := models.Restaurant{RestaurantID: m.state.id(), Name: name}
	m.state.restaurants[r.RestaurantID] = r
	return r
}

func (m *Store) OrderCount() int {
	return len(m.state.orders)
}

func (m *Store) ItemCount() int {
	return len(m.state.items)
}

func (m *Store) MenuCount() int {
	return len(m.state.menu)
}

type memRestaurants struct{ state func() *memState }

func (r *memRestaurants) Create(_ context.Context, x *models.Restaurant) error {
	s := r.state()
	x.RestaurantID = s.id()
	s.restaurants[x.RestaurantID] = *x
	return nil
}

func (r *memRestaurants) GetByID(_ context.Context, id int) (*models.Restaurant, error) {
	x, ok := r.state().restaurants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &x, nil
}

func (r *memRestaurants) GetAll(_ context.Context, search string) ([]models.Restaurant, error) {
	out := []models.Restaurant{}
	for _, x := range r.state().restaurants {
		if search == "" || strings.Contains(strings.ToLower(x.Name), strings.ToLower(search)) {
			out = append(out, x)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RestaurantID < out[j].RestaurantID })
	return out, nil
}

func (r *memRestaurants) Update(_ context.Context, x *models.Restaurant) error {
	s := r.state()
	if _, ok := s.restaurants[x.RestaurantID]; !ok {
		return repository.ErrNotFound
	}
	s.restaurants[x.RestaurantID] = *x
	return nil
}

func (r *memRestaurants) Delete(_ context.Context, id int) error {
	s := r.state()
	if _, ok := s.restaurants[id]; !ok {
		return repository.ErrNotFound
	}
	for k, m := range s.menu {
		if m.RestaurantID == id {
			delete(s.menu, k)
		}
	}
	for k, o := range s.orders {
		if o.RestaurantID != nil && *o.RestaurantID == id {
			o.RestaurantID = nil
			s.orders[k] = o
		}
	}
	delete(s.restaurants, id)
	return nil
}

type memCategories struct{ state func() *memState }

func (r *memCategories) Create(_ context.Context, c *models.ProductCategory) error {
	s := r.state()
	c.CategoryID = s.id()
	s.categories[c.CategoryID] = *c
	return nil
}

func (r *memCategories) GetByID(_ context.Context, id int) (*models.ProductCategory, error) {
	c, ok := r.state().categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *memCategories) GetAll(context.Context) ([]models.ProductCategory, error) {
	out := []models.ProductCategory{}
	for _, c := range r.state().categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (r *memCategories) Update(_ context.Context, c *models.ProductCategory) error {
	s := r.state()
	if _, ok := s.categories[c.CategoryID]; !ok {
		return repository.ErrNotFound
	}
	s.categories[c.CategoryID] = *c
	return nil
}

func (r *memCategories) Delete(_ context.Context, id int) error {
	s := r.state()
	if _, ok := s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	for k, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			p.CategoryID = nil
			p.Category = nil
			s.products[k] = p
		}
	}
	delete(s.categories, id)
	return nil
}

type memProducts struct{ state func() *memState }

func (r *memProducts) Create(_ context.Context, p *models.Product) error {
	s := r.state()
	p.ProductID = s.id()
	s.products[p.ProductID] = *p
	return nil
}

func (r *memProducts) GetByID(_ context.Context, id int) (*models.Product, error) {
	p, ok := r.state().products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *memProducts) GetAll(_ context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range r.state().products {
		if filter.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *filter.CategoryID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *memProducts) Update(_ context.Context, p *models.Product) error {
	s := r.state()
	if _, ok := s.products[p.ProductID]; !ok {
		return repository.ErrNotFound
	}
	s.products[p.ProductID] = *p
	return nil
}

func (r *memProducts) Delete(_ context.Context, id int) error {
	s := r.state()
	if _, ok := s.products[id]; !ok {
		return repository.ErrNotFound
	}
	for k, m := range s.menu {
		if m.ProductID == id {
			delete(s.menu, k)
		}
	}
	for k, item := range s.items {
		if item.ProductID != nil && *item.ProductID == id {
			item.ProductID = nil
			s.items[k] = item
		}
	}
	delete(s.products, id)
	return nil
}

func (r *memProducts) GetByIDs(_ context.Context, ids []int) (map[int]models.Product, error) {
	out := map[int]models.Product{}
	for _, id := range ids {
		if p, ok := r.state().products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (r *memProducts) ListAvailable(context.Context) ([]models.AvailableProduct, error) {
	s := r.state()
	first := map[int]int{}
	for _, m := range s.menu {
		if !m.Availability {
			continue
		}
		if cur, ok := first[m.ProductID]; !ok || m.RestaurantID < cur {
			first[m.ProductID] = m.RestaurantID
		}
	}
	out := []models.AvailableProduct{}
	for productID, restaurantID := range first {
		out = append(out, models.AvailableProduct{Product: s.products[productID], Restaurant: s.restaurants[restaurantID]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

type memMenu struct{ state func() *memState }

func (r *memMenu) ListByRestaurant(_ context.Context, restaurantID int) ([]models.RestaurantMenuItem, error) {
	s := r.state()
	out := []models.RestaurantMenuItem{}
	for _, m := range s.menu {
		if m.RestaurantID == restaurantID {
			m.ProductName = s.products[m.ProductID].Name
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (r *memMenu) Upsert(_ context.Context, item *models.RestaurantMenuItem) error {
	s := r.state()
	for k, m := range s.menu {
		if m.RestaurantID == item.RestaurantID && m.ProductID == item.ProductID {
			m.Availability = item.Availability
			s.menu[k] = m
			item.MenuItemID = k
			return nil
		}
	}
	item.MenuItemID = s.id()
	s.menu[item.MenuItemID] = *item
	return nil
}

func (r *memMenu) Delete(_ context.Context, restaurantID, productID int) error {
	s := r.state()
	for k, m := range s.menu {
		if m.RestaurantID == restaurantID && m.ProductID == productID {
			delete(s.menu, k)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memOrders struct{ state func() *memState }

func (r *memOrders) Create(_ context.Context, o *models.Order) error {
	s := r.state()
	o.OrderID = s.id()
	s.orders[o.OrderID] = *o
	return nil
}

func (r *memOrders) GetByID(_ context.Context, id int) (*models.Order, error) {
	o, ok := r.state().orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.Items = nil
	return &o, nil
}

func (r *memOrders) GetAll(_ context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	out := []models.Order{}
	for _, o := range r.state().orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.PaymentMethod != "" && (o.PaymentMethod == nil || *o.PaymentMethod != filter.PaymentMethod) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID > out[j].OrderID })
	return out, nil
}

func (r *memOrders) Update(_ context.Context, o *models.Order) error {
	s := r.state()
	cur, ok := s.orders[o.OrderID]
	if !ok {
		return repository.ErrNotFound
	}
	next := *o
	next.FixedTotalPrice = cur.FixedTotalPrice
	next.CreatedAt = cur.CreatedAt
	next.Items = nil
	s.orders[o.OrderID] = next
	return nil
}

func (r *memOrders) SetTotal(_ context.Context, id int, total decimal.Decimal) error {
	s := r.state()
	o, ok := s.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.FixedTotalPrice = total
	s.orders[id] = o
	return nil
}

func (r *memOrders) Delete(_ context.Context, id int) error {
	s := r.state()
	if _, ok := s.orders[id]; !ok {
		return repository.ErrNotFound
	}
	for k, item := range s.items {
		if item.OrderID == id {
			delete(s.items, k)
		}
	}
	delete(s.orders, id)
	return nil
}

type memItems struct {
	store *Store
	state func() *memState
}

func (r *memItems) Create(_ context.Context, item *models.OrderItem) error {
	r.store.itemCreates++
	if r.store.FailItemCreateAfter > 0 && r.store.itemCreates >= r.store.FailItemCreateAfter {
		return ErrInjected
	}
	s := r.state()
	if _, ok := s.orders[item.OrderID]; !ok {
		return repository.ErrConflict
	}
	item.FreezePrice()
	item.OrderItemID = s.id()
	s.items[item.OrderItemID] = *item
	return nil
}

func (r *memItems) GetByID(_ context.Context, orderID, itemID int) (*models.OrderItem, error) {
	item, ok := r.state().items[itemID]
	if !ok || item.OrderID != orderID {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (r *memItems) ListByOrder(_ context.Context, orderID int) ([]models.OrderItem, error) {
	out := []models.OrderItem{}
	for _, item := range r.state().items {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderItemID < out[j].OrderItemID })
	return out, nil
}

func (r *memItems) UpdateQuantity(_ context.Context, orderID, itemID, quantity int) error {
	if quantity <= 0 {
		return repository.ErrInvalidInput
	}
	s := r.state()
	item, ok := s.items[itemID]
	if !ok || item.OrderID != orderID {
		return repository.ErrNotFound
	}
	item.Quantity = quantity
	s.items[itemID] = item
	return nil
}

func (r *memItems) Delete(_ context.Context, orderID, itemID int) error {
	s := r.state()
	item, ok := s.items[itemID]
	if !ok || item.OrderID != orderID {
		return repository.ErrNotFound
	}
	delete(s.items, itemID)
	return nil
}
