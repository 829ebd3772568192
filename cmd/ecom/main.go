package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ecom/internal/backend"
	"ecom/internal/cli"
	"ecom/internal/core"
	apphttp "ecom/internal/http"
	applog "ecom/internal/log"
	"ecom/internal/payment"
	"ecom/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentHTTP)
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	var payments payment.Provider
	if cfg.PaymentsEnabled() {
		payments = payment.NewStripe(cfg.StripeKey, cfg.PaymentCurrency, nil)
		logger.Info("Payments enabled", "currency", cfg.PaymentCurrency)
	} else {
		logger.Info("Payments disabled - no STRIPE_KEY provided")
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		Store:          result.Store,
		Orders:         result.Orders,
		Payments:       payments,
		Logger:         logger,
		UploadDir:      cfg.UploadDir,
		ProductPerPage: cfg.ProductPerPage,
		RatePerMinute:  cfg.RatePerMinute,
	})
	if err := srv.EnsureUploadDir(); err != nil {
		logger.Error("Failed to create upload directory", applog.FieldError, err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	// Orders whose stock was never reduced (publish lost, crash mid-request)
	// are picked up here.
	st := result.Store
	stock := services.NewStockProcessor(st, func(ctx context.Context, o core.Order) error {
		_, err := services.ReduceStock(ctx, st, o)
		return err
	}, services.StockProcessorConfig{
		PollInterval: cfg.StockInterval,
		BatchSize:    cfg.StockBatchSize,
		Grace:        2 * cfg.StockInterval,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		if err := stock.Stop(shutdownCtx); err != nil {
			logger.Warn("Stock processor stop error", applog.FieldError, err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", applog.FieldError, err)
			}
		}
	})

	if err := stock.Start(ctx); err != nil {
		logger.Error("Failed to start stock processor", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting ecom server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
