package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ecom/internal/core"
)

// StockProcessorConfig holds configuration for the stock processor
type StockProcessorConfig struct {
	// PollInterval is how often to look for pending orders (default: 30s)
	PollInterval time.Duration

	// BatchSize is the max number of orders handled per poll cycle (default: 10)
	BatchSize int

	// Grace is how old an order must be before the processor picks it up,
	// leaving the AMQP consumer time to handle it first (default: 1m)
	Grace time.Duration
}

// DefaultStockProcessorConfig returns sensible defaults
func DefaultStockProcessorConfig() StockProcessorConfig {
	return StockProcessorConfig{
		PollInterval: 30 * time.Second,
		BatchSize:    10,
		Grace:        time.Minute,
	}
}

// PendingLister lists orders whose stock has not been applied yet.
type PendingLister interface {
	PendingStock(ctx context.Context, cutoff time.Time, limit int) ([]core.Order, error)
}

// ApplyFunc fulfils one pending order.
type ApplyFunc func(ctx context.Context, o core.Order) error

// StockProcessor recovers orders whose placed message was lost: it polls the
// store for orders that still hold their stock and applies them.
type StockProcessor struct {
	pending PendingLister
	apply   ApplyFunc
	config  StockProcessorConfig
	now     func() time.Time

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewStockProcessor(pending PendingLister, apply ApplyFunc, config StockProcessorConfig) *StockProcessor {
	def := DefaultStockProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = def.BatchSize
	}
	if config.Grace < 0 {
		config.Grace = 0
	}
	return &StockProcessor{
		pending: pending,
		apply:   apply,
		config:  config,
		now:     time.Now,
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *StockProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("stock processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	slog.InfoContext(ctx, "Stock processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize,
		"grace", p.config.Grace)

	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *StockProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		slog.InfoContext(ctx, "Stock processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Stock processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

func (p *StockProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *StockProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Process immediately on startup
	p.ProcessBatch(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.ProcessBatch(ctx)
		}
	}
}

// ProcessBatch applies one batch of pending orders and returns how many were
// applied without error.
func (p *StockProcessor) ProcessBatch(ctx context.Context) int {
	orders, err := p.pending.PendingStock(ctx, p.now().Add(-p.config.Grace), p.config.BatchSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list pending stock", "error", err)
		return 0
	}
	if len(orders) == 0 {
		return 0
	}

	slog.DebugContext(ctx, "Processing pending stock", "count", len(orders))

	applied := 0
	for _, o := range orders {
		if ctx.Err() != nil {
			break
		}
		if err := p.apply(ctx, o); err != nil {
			slog.ErrorContext(ctx, "Failed to apply pending order", "order_id", o.ID, "error", err)
			continue
		}
		applied++
	}

	slog.InfoContext(ctx, "Pending stock batch completed",
		"total", len(orders),
		"applied", applied,
		"errors", len(orders)-applied)

	return applied
}
