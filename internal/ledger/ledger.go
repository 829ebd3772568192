package ledger

import (
	"context"
	"fmt"
	"sync"

	"ecom/internal/core"
)

// Writer appends placed orders to an external bookkeeping ledger.
type Writer interface {
	AppendOrder(ctx context.Context, o core.Order) (rowRef string, err error)
}

// Memory is an in-process Writer for development and tests.
type Memory struct {
	mu     sync.Mutex
	orders []core.Order
}

func (m *Memory) AppendOrder(_ context.Context, o core.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
	return fmt.Sprintf("mem:%d", len(m.orders)), nil
}

func (m *Memory) Orders() []core.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Order(nil), m.orders...)
}
