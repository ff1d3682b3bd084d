package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KillerBee88/star-burger/internal/api"
	"github.com/KillerBee88/star-burger/internal/cache"
	"github.com/KillerBee88/star-burger/internal/config"
	"github.com/KillerBee88/star-burger/internal/database"
	"github.com/KillerBee88/star-burger/internal/events"
	"github.com/KillerBee88/star-burger/internal/logger"
	"github.com/KillerBee88/star-burger/internal/repository"
	"github.com/KillerBee88/star-burger/internal/service"
	"github.com/KillerBee88/star-burger/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Service:   "star-burger",
		AddCaller: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	pool, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, log); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	repos := repository.New(pool)
	health := map[string]api.HealthCheck{"postgres": pool.Ping}

	var catalogCache service.CatalogCache
	if cfg.CacheEnabled() {
		rdb, err := cache.ConnectRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer rdb.Close()

		products := cache.NewCachedProductRepository(repos.Products, rdb, cfg.CacheTTL, log)
		menu := cache.NewCachedMenuRepository(repos.Menu, rdb, cfg.CacheTTL, log)
		repos.Products = products
		repos.Menu = menu
		catalogCache = cache.Catalog{Products: products, Menu: menu}
		health["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }

		log.Info("redis cache enabled", "ttl", cfg.CacheTTL.String())
	}

	// GetByIDs passes through the cache, so order lines are always priced
	// from Postgres.
	validator := validation.New(repos.Products)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.EventsEnabled() {
		amqpPublisher, err := events.NewAMQPPublisher(cfg, log)
		if err != nil {
			return err
		}
		publisher = amqpPublisher
		log.Info("order events enabled", "exchange", cfg.AMQPExchange)
	}
	defer publisher.Close()

	if !cfg.AdminEnabled() {
		log.Warn("ADMIN_TOKEN is not set, admin API will reject every request")
	}

	tx := repository.NewTxRunner(pool)
	orders := service.NewOrderService(tx, repos, publisher, log)
	admin := service.NewAdminService(tx, repos, orders, catalogCache, log)

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.RouterConfig{
			Catalog:     service.NewCatalogService(repos.Products, cfg.MediaURL, cfg.StaticURL, log),
			Orders:      orders,
			Admin:       admin,
			Validator:   validator,
			Log:         log,
			AdminToken:  cfg.AdminToken,
			CORSOrigins: cfg.CORSOrigins,
			Health:      health,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
