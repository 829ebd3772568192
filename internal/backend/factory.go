package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ecom/internal/amqp"
	"ecom/internal/services"
	"ecom/internal/storage"
	"ecom/internal/store"
	"ecom/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend opens the configured record store and binds an order
// service to it. AMQP is optional: when the broker cannot be reached the
// service reduces stock inline.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	st, closeStore, err := f.openStore(ctx, config)
	if err != nil {
		return nil, err
	}

	var publisher services.Publisher
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, reducing stock inline", "error", err)
		} else {
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			publisher = client
		}
	}

	orders := services.NewOrderService(st, publisher)

	f.logger.Info("Initialized backend",
		"type", config.Type,
		"amqp_enabled", publisher != nil)

	return &BackendResult{
		Store:  st,
		Orders: orders,
		Cleanup: func() error {
			return errors.Join(orders.Close(), closeStore())
		},
	}, nil
}

func (f *DefaultFactory) openStore(ctx context.Context, config Config) (store.Store, CleanupFunc, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", config.SQLiteDBPath)
		return repo, repo.Close, nil

	case PostgresBackend:
		repo, err := storage.NewPostgresRepository(ctx, config.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Postgres repository: %w", err)
		}
		f.logger.Info("Initialized Postgres store")
		return repo, repo.Close, nil

	case MemoryBackend:
		st := memory.New()
		if config.SeedFile != "" {
			var err error
			st, err = memory.NewFromFile(config.SeedFile)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to seed memory store: %w", err)
			}
		}
		f.logger.Info("Initialized memory store", "seed_file", config.SeedFile)
		return st, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}
