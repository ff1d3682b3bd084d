package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository/memrepo"
)

func TestCatalogService_ListAvailableProducts(t *testing.T) {
	ctx := context.Background()
	store := memrepo.New()

	burger := store.AddProduct("Cheeseburger", "199.00")
	burger.Image = "burger.png"
	require.NoError(t, store.Repos().Products.Update(ctx, &burger))
	fries := store.AddProduct("Fries", "89.50")
	hidden := store.AddProduct("Secret Menu", "999.00")

	first := store.AddRestaurant("Star Burger Arbat")
	second := store.AddRestaurant("Star Burger Tverskaya")

	menu := store.Repos().Menu
	require.NoError(t, menu.Upsert(ctx, &models.RestaurantMenuItem{RestaurantID: second.RestaurantID, ProductID: burger.ProductID, Availability: true}))
	require.NoError(t, menu.Upsert(ctx, &models.RestaurantMenuItem{RestaurantID: first.RestaurantID, ProductID: burger.ProductID, Availability: true}))
	require.NoError(t, menu.Upsert(ctx, &models.RestaurantMenuItem{RestaurantID: second.RestaurantID, ProductID: fries.ProductID, Availability: true}))
	require.NoError(t, menu.Upsert(ctx, &models.RestaurantMenuItem{RestaurantID: first.RestaurantID, ProductID: hidden.ProductID, Availability: false}))

	svc := NewCatalogService(store.Repos().Products, "/media/", "/static/", logger.Nop())

	products, err := svc.ListAvailableProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "Cheeseburger", products[0].Name)
	assert.Equal(t, "/media/burger.png", products[0].Image)
	assert.Equal(t, first.RestaurantID, products[0].Restaurant.RestaurantID)

	assert.Equal(t, "Fries", products[1].Name)
	assert.Equal(t, "", products[1].Image)
	assert.Equal(t, second.RestaurantID, products[1].Restaurant.RestaurantID)

	for _, p := range products {
		assert.NotEqual(t, hidden.ProductID, p.ProductID)
	}
}

func TestCatalogService_Banners(t *testing.T) {
	svc := NewCatalogService(nil, "/media/", "https://cdn.example.com/static", logger.Nop())

	banners := svc.Banners()
	require.Len(t, banners, 3)
	assert.Equal(t, models.Banner{
		Title: "Burger",
		Src:   "https://cdn.example.com/static/burger.jpg",
		Text:  "Tasty Burger at your door step",
	}, banners[0])
	assert.Equal(t, "New York", banners[2].Title)
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, name, want string
	}{
		{"/media/", "burger.png", "/media/burger.png"},
		{"/media", "burger.png", "/media/burger.png"},
		{"/media/", "", ""},
		{"/media/", "https://img.example.com/a.png", "https://img.example.com/a.png"},
		{"/media/", "/uploads/a.png", "/uploads/a.png"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinURL(tt.base, tt.name))
	}
}
