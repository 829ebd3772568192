package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ecom/internal/amqp"
	"ecom/internal/backend"
	"ecom/internal/cli"
	"ecom/internal/ledger"
	"ecom/internal/ledger/google"
	applog "ecom/internal/log"
	"ecom/internal/services"
	"ecom/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting ecom-worker")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	// The worker only consumes; it needs the store, not a publisher.
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", applog.FieldError, err)
		}
	}()

	var orderLedger ledger.Writer
	if cfg.LedgerEnabled() {
		client, err := google.New(context.Background(), google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
			CredentialsFile: cfg.GoogleServiceAccountFile,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets ledger", applog.FieldError, err)
			os.Exit(1)
		}
		orderLedger = client
		logger.Info("Order ledger enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Order ledger disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	orderWorker := worker.NewOrderWorker(result.Store, orderLedger)
	stock := services.NewStockProcessor(result.Store, orderWorker.Fulfil, services.StockProcessorConfig{
		PollInterval: cfg.StockInterval,
		BatchSize:    cfg.StockBatchSize,
		Grace:        2 * cfg.StockInterval,
	})

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		logger.Info("Shutting down worker...")
		if err := stock.Stop(shutdownCtx); err != nil {
			logger.Warn("Stock processor stop error", applog.FieldError, err)
		}
	})

	// Orders placed while the worker was down are fulfilled first.
	if n := stock.ProcessBatch(ctx); n > 0 {
		logger.Info("Startup stock check applied pending orders", "count", n)
	}
	if err := stock.Start(ctx); err != nil {
		logger.Error("Failed to start stock processor", applog.FieldError, err)
		os.Exit(1)
	}

	if err := amqpClient.ConsumeOrderPlaced(ctx, orderWorker.HandleOrderPlaced); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
