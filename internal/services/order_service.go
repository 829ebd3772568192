package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ecom/internal/core"
	"ecom/internal/store"
)

// Publisher announces placed orders to the worker.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, orderID string) error
	Close() error
}

// OrderService orchestrates order operations across the store and AMQP
type OrderService struct {
	store     store.Store
	publisher Publisher
}

// NewOrderService returns a service that publishes placed orders through p.
// A nil publisher makes stock reduction run inline.
func NewOrderService(s store.Store, p Publisher) *OrderService {
	return &OrderService{
		store:     s,
		publisher: p,
	}
}

// PlaceOrder validates and saves an order, then hands stock reduction to the
// worker. If the event cannot be published the stock is reduced in-request.
func (s *OrderService) PlaceOrder(ctx context.Context, o core.Order) (core.Order, error) {
	if err := o.Validate(); err != nil {
		return core.Order{}, err
	}

	saved, err := s.store.CreateOrder(ctx, o)
	if err != nil {
		return core.Order{}, fmt.Errorf("save order: %w", err)
	}

	if s.publisher != nil {
		err := s.publisher.PublishOrderPlaced(ctx, saved.ID)
		if err == nil {
			return saved, nil
		}
		slog.ErrorContext(ctx, "Failed to publish order placed message, reducing stock inline",
			"order_id", saved.ID, "error", err)
	}

	// The order is persisted; a failed reduction is retried by the
	// pending-stock processor.
	if _, err := ReduceStock(ctx, s.store, saved); err != nil {
		slog.ErrorContext(ctx, "Inline stock reduction failed", "order_id", saved.ID, "error", err)
	}
	return saved, nil
}

// ProcessOrder advances the order to its next status.
func (s *OrderService) ProcessOrder(ctx context.Context, id string) (core.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return core.Order{}, err
	}
	updated, err := s.store.UpdateOrderStatus(ctx, id, o.Status.Next())
	if err != nil {
		return core.Order{}, err
	}
	slog.InfoContext(ctx, "Order processed", "order_id", id, "from", o.Status, "to", updated.Status)
	return updated, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Order deleted", "order_id", id)
	return nil
}

// Close closes the publisher connection.
func (s *OrderService) Close() error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Close(); err != nil {
		return fmt.Errorf("close order service: %w", err)
	}
	return nil
}

// StockStore is the subset of store.Store stock reduction needs.
type StockStore interface {
	ClaimStock(ctx context.Context, orderID string) (bool, error)
	AdjustStock(ctx context.Context, productID string, delta int) error
}

// ReduceStock takes the order's items out of stock. It reports false when
// the order's stock was already applied by an earlier call. Items whose
// product no longer exists are skipped.
func ReduceStock(ctx context.Context, s StockStore, o core.Order) (bool, error) {
	claimed, err := s.ClaimStock(ctx, o.ID)
	if err != nil {
		return false, fmt.Errorf("claim stock for order %s: %w", o.ID, err)
	}
	if !claimed {
		slog.DebugContext(ctx, "Stock already applied", "order_id", o.ID)
		return false, nil
	}

	for _, item := range o.OrderItems {
		err := s.AdjustStock(ctx, item.ProductID, -item.Quantity)
		switch {
		case errors.Is(err, core.ErrNotFound):
			slog.WarnContext(ctx, "Product not found, skipping stock reduction",
				"order_id", o.ID, "product_id", item.ProductID)
		case err != nil:
			return true, fmt.Errorf("reduce stock of product %s: %w", item.ProductID, err)
		}
	}

	slog.InfoContext(ctx, "Stock reduced", "order_id", o.ID, "items", o.ItemCount())
	return true, nil
}
