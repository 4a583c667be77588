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

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/customer"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/db"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/dedup"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/payment"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/sequence"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).WithField("service", "checkout-service")

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Fatal("checkout-service stopped")
	}
}

func run(cfg config.Config, logger logrus.FieldLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB
	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			return err
		}
	}
	database, err := db.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer database.Close()

	pool, err := db.OpenPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	var carts cart.Repository = cart.NewPostgresRepository(pool)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		carts = cart.NewCachedRepository(carts, rdb, logger)
		logger.WithField("addr", cfg.RedisAddr).Info("cart cache enabled")
	}

	// RabbitMQ
	rabbitConn, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer rabbitConn.Close()

	publisher, err := events.NewPublisher(rabbitConn, sequence.NewRepository(database), logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	deliveryFee, err := money.New(cfg.DeliveryFee)
	if err != nil {
		return fmt.Errorf("DELIVERY_FEE: %w", err)
	}
	freeThreshold, err := money.New(cfg.FreeDeliveryThreshold)
	if err != nil {
		return fmt.Errorf("FREE_DELIVERY_THRESHOLD: %w", err)
	}

	svc := checkout.NewService(checkout.Dependencies{
		Customers:     customer.NewClient(cfg.CustomerServiceURL, cfg.CustomerTimeout, logger),
		Orders:        order.NewRepository(database),
		Carts:         carts,
		Gateway:       payment.WithCircuitBreaker(payment.NewSandbox(cfg.PaymentSandboxURL), logger),
		Notifications: dedup.NewRepository(database),
		Events:        publisher,
		Logger:        logger,
	}, checkout.Options{
		Shipping:        checkout.ShippingPolicy{DeliveryFee: deliveryFee, FreeThreshold: freeThreshold},
		Currency:        cfg.Currency,
		Locale:          cfg.Locale,
		NotificationURL: cfg.NotificationURL,
	})

	// HTTP
	handler := httpapi.NewHandler(svc, cart.NewService(carts), logger)
	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(handler, logger, httpapi.RouterOptions{
			RequestTimeout:   cfg.RequestTimeout,
			WebhookRateLimit: cfg.WebhookRateLimit,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("checkout-service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
