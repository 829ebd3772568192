package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ecom/internal/amqp"
	"ecom/internal/core"
	"ecom/internal/ledger"
	"ecom/internal/services"
	"ecom/internal/store"
)

// OrderWorker fulfils placed orders: it takes their items out of stock and
// exports them to the order ledger.
type OrderWorker struct {
	store  store.Store
	ledger ledger.Writer
}

// NewOrderWorker returns a worker. l may be nil when no ledger is configured.
func NewOrderWorker(s store.Store, l ledger.Writer) *OrderWorker {
	return &OrderWorker{
		store:  s,
		ledger: l,
	}
}

// HandleOrderPlaced processes a single order placed message from AMQP.
// A returned error requeues the message.
func (w *OrderWorker) HandleOrderPlaced(ctx context.Context, msg *amqp.OrderPlacedMessage) error {
	slog.InfoContext(ctx, "Processing order placed message",
		"order_id", msg.OrderID,
		"timestamp", msg.Timestamp)

	o, err := w.store.GetOrder(ctx, msg.OrderID)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before the worker got to it.
		slog.WarnContext(ctx, "Order not found, dropping message", "order_id", msg.OrderID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get order from store: %w", err)
	}

	return w.Fulfil(ctx, o)
}

// Fulfil reduces stock for o and, the first time it does so, appends o to
// the ledger. Ledger failures are logged and not retried.
func (w *OrderWorker) Fulfil(ctx context.Context, o core.Order) error {
	applied, err := services.ReduceStock(ctx, w.store, o)
	if err != nil {
		return err
	}
	if !applied {
		slog.InfoContext(ctx, "Order already fulfilled, skipping", "order_id", o.ID)
		return nil
	}

	if w.ledger == nil {
		return nil
	}
	ref, err := w.ledger.AppendOrder(ctx, o)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to append order to ledger", "order_id", o.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Order appended to ledger",
		"order_id", o.ID,
		"ledger_ref", ref,
		"total", o.Total)
	return nil
}
