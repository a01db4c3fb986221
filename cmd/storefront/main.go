package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/cache"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/cart"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/catalog"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/checkout"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/db"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/events"
	httpserver "github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/http"
	"github.com/Kubgxy/Project-Benjaphan-V2-sub000/internal/order"
)

func main() {
	port := getEnv("PORT", "8080")

	logger := log.New(os.Stdout, "[storefront] ", log.LstdFlags|log.Lshortfile)

	dsn := db.GetDSN()
	if err := db.RunMigrations(dsn, logger); err != nil {
		logger.Fatalf("run migrations: %v", err)
	}

	database := db.MustOpen(dsn)
	defer database.Close()

	rabbitConn := events.MustDialRabbit()
	defer rabbitConn.Close()

	publisher, err := events.NewPublisher(rabbitConn)
	if err != nil {
		logger.Fatalf("create publisher: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "redis:6379"),
	})
	cartCache := cache.NewRedisCartCache(redisClient)

	catalogClient := catalog.NewClient(getEnv("CATALOG_URL", "http://catalog-service:8080"))

	cartRepo := cart.NewRepository(database)
	cartSvc := cart.NewService(cartRepo, catalogClient, cartCache, logger)

	orderRepo := order.NewRepository(database)

	shippingFee := checkout.DefaultShippingFee
	if v := os.Getenv("SHIPPING_FEE"); v != "" {
		fee, err := strconv.ParseFloat(v, 64)
		if err != nil {
			logger.Fatalf("invalid SHIPPING_FEE %q: %v", v, err)
		}
		shippingFee = fee
	}
	builder := checkout.NewBuilder(cartRepo, orderRepo, publisher, shippingFee, logger)

	mux := httpserver.NewRouter(
		httpserver.NewCartHandler(cartSvc),
		httpserver.NewCheckoutHandler(builder, cartSvc, logger),
		httpserver.NewOrderHandler(orderRepo, publisher, logger),
	)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("storefront listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("shutdown signal received")
	case err := <-errCh:
		logger.Fatalf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown error: %v", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Printf("publisher close error: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		logger.Printf("redis close error: %v", err)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
