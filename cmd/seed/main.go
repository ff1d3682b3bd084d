package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/KillerBee88/star-burger/internal/config"
	"github.com/KillerBee88/star-burger/internal/database"
	"github.com/KillerBee88/star-burger/internal/events"
	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/models"
	"github.com/KillerBee88/star-burger/internal/repository"
	"github.com/KillerBee88/star-burger/internal/service"
	"github.com/KillerBee88/star-burger/internal/validation"
)

type seedProduct struct {
	name        string
	category    string
	price       string
	image       string
	special     bool
	description string
}

var (
	seedCategories = []string{"Burgers", "Sides", "Drinks"}

	seedProducts = []seedProduct{
		{"Cheeseburger", "Burgers", "199.00", "cheeseburger.png", false, "Beef patty, cheddar, pickles"},
		{"Double Star", "Burgers", "329.00", "double-star.png", true, "Two patties and our signature sauce"},
		{"Chicken Burger", "Burgers", "229.00", "chicken-burger.png", false, "Crispy chicken fillet, lettuce, mayo"},
		{"Fries", "Sides", "89.50", "fries.png", false, "Salted potato fries"},
		{"Onion Rings", "Sides", "119.00", "onion-rings.png", false, ""},
		{"Cola", "Drinks", "79.00", "cola.png", false, "0.5 l"},
	}

	seedRestaurants = []models.Restaurant{
		{Name: "Star Burger Arbat", Address: "Moscow, Arbat 10", ContactPhone: "+79150000001"},
		{Name: "Star Burger Tverskaya", Address: "Moscow, Tverskaya 7", ContactPhone: "+79150000002"},
	}
)

func main() {
	smoke := flag.Bool("smoke", false, "place a test order after seeding and verify its total")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "text", Service: "star-burger-seed"})
	ctx := context.Background()

	pool, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, log); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	tx := repository.NewTxRunner(pool)

	var products []models.Product
	err = tx.InTx(ctx, func(repos repository.Repositories) error {
		var err error
		products, err = seed(ctx, repos)
		return err
	})
	if err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	log.Info("catalog seeded", "products", len(products), "restaurants", len(seedRestaurants))

	if *smoke {
		if err := smokeOrder(ctx, tx, repository.New(pool), products, log); err != nil {
			log.Error("smoke order failed", "error", err)
			os.Exit(1)
		}
	}
}

// seed is idempotent: existing categories and products are looked up by
// name, menu entries are upserted.
func seed(ctx context.Context, repos repository.Repositories) ([]models.Product, error) {
	existingCategories, err := repos.Categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	categoryIDs := make(map[string]int, len(existingCategories))
	for _, c := range existingCategories {
		categoryIDs[c.Name] = c.CategoryID
	}
	for _, name := range seedCategories {
		if _, ok := categoryIDs[name]; ok {
			continue
		}
		c := models.ProductCategory{Name: name}
		if err := repos.Categories.Create(ctx, &c); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		categoryIDs[name] = c.CategoryID
	}

	existingProducts, err := repos.Products.GetAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, err
	}
	byName := make(map[string]models.Product, len(existingProducts))
	for _, p := range existingProducts {
		byName[p.Name] = p
	}

	products := make([]models.Product, 0, len(seedProducts))
	for _, sp := range seedProducts {
		if p, ok := byName[sp.name]; ok {
			products = append(products, p)
			continue
		}
		categoryID := categoryIDs[sp.category]
		p := models.Product{
			Name:          sp.name,
			CategoryID:    &categoryID,
			Price:         decimal.RequireFromString(sp.price),
			Image:         sp.image,
			SpecialStatus: sp.special,
			Description:   sp.description,
		}
		if err := repos.Products.Create(ctx, &p); err != nil {
			return nil, fmt.Errorf("product %q: %w", sp.name, err)
		}
		products = append(products, p)
	}

	existingRestaurants, err := repos.Restaurants.GetAll(ctx, "")
	if err != nil {
		return nil, err
	}
	restaurantIDs := make(map[string]int, len(existingRestaurants))
	for _, r := range existingRestaurants {
		restaurantIDs[r.Name] = r.RestaurantID
	}

	for i, r := range seedRestaurants {
		id, ok := restaurantIDs[r.Name]
		if !ok {
			restaurant := r
			if err := repos.Restaurants.Create(ctx, &restaurant); err != nil {
				return nil, fmt.Errorf("restaurant %q: %w", r.Name, err)
			}
			id = restaurant.RestaurantID
		}

		// The second restaurant does not sell drinks.
		for _, p := range products {
			item := models.RestaurantMenuItem{
				RestaurantID: id,
				ProductID:    p.ProductID,
				Availability: !(i == 1 && p.CategoryID != nil && *p.CategoryID == categoryIDs["Drinks"]),
			}
			if err := repos.Menu.Upsert(ctx, &item); err != nil {
				return nil, fmt.Errorf("menu %q/%q: %w", r.Name, p.Name, err)
			}
		}
	}

	return products, nil
}

func smokeOrder(ctx context.Context, tx repository.TxRunner, repos repository.Repositories, products []models.Product, log *logger.Logger) error {
	if len(products) < 2 {
		return errors.New("not enough products to place an order")
	}

	validator := validation.New(repos.Products)
	orders := service.NewOrderService(tx, repos, events.NopPublisher{}, log)

	validated, err := validator.ValidateOrder(ctx, validation.OrderRequest{
		FirstName:   "Smoke",
		LastName:    "Test",
		PhoneNumber: "+79990000000",
		Address:     "Moscow, Red Square 1",
		Products: []validation.ProductLine{
			{Product: products[0].ProductID, Quantity: 2},
			{Product: products[1].ProductID, Quantity: 1},
		},
	})
	if err != nil {
		return err
	}

	order, err := orders.CreateOrder(ctx, validated)
	if err != nil {
		return err
	}

	want := products[0].Price.Mul(decimal.NewFromInt(2)).Add(products[1].Price)
	if !order.FixedTotalPrice.Equal(want) {
		return fmt.Errorf("order %d total %s, want %s", order.OrderID, order.FixedTotalPrice.StringFixed(2), want.StringFixed(2))
	}

	stored, err := orders.GetOrder(ctx, order.OrderID)
	if err != nil {
		return err
	}
	if !stored.FixedTotalPrice.Equal(want) || len(stored.Items) != 2 {
		return fmt.Errorf("stored order %d does not match: total %s, %d items",
			stored.OrderID, stored.FixedTotalPrice.StringFixed(2), len(stored.Items))
	}

	log.Info("smoke order placed", "order_id", order.OrderID, "total", order.FixedTotalPrice.StringFixed(2))
	return nil
}
