package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"ecom/internal/core"
	"ecom/internal/store"
)

// Store is an in-process store.Store used for development and tests.
type Store struct {
	mu       sync.Mutex
	products map[string]core.Product
	users    map[string]core.User
	orders   map[string]core.Order
	coupons  map[string]core.Coupon
	applied  map[string]bool

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		products: map[string]core.Product{},
		users:    map[string]core.User{},
		orders:   map[string]core.Order{},
		coupons:  map[string]core.Coupon{},
		applied:  map[string]bool{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewFromFile returns a store seeded from a YAML fixture. A missing file
// yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	f, err := store.LoadFixture(path)
	if err != nil {
		return nil, err
	}
	if _, err := f.Apply(context.Background(), s); err != nil {
		return nil, err
	}
	return s, nil
}

// WithClock overrides the clock used for created/updated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateProduct(_ context.Context, p core.Product) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return core.Product{}, core.ErrNotFound
	}
	return p, nil
}

func (s *Store) UpdateProduct(_ context.Context, p core.Product) (core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.products[p.ID]
	if !ok {
		return core.Product{}, core.ErrNotFound
	}
	p.CreatedAt = old.CreatedAt
	p.UpdatedAt = s.now()
	s.products[p.ID] = p
	return p, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) ListProducts(_ context.Context, f core.ProductFilter) ([]core.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := matching(s.products, f.Match)
	switch {
	case f.Sort == core.SortPriceAsc:
		slices.SortStableFunc(out, func(a, b core.Product) int { return cmp.Compare(a.Price, b.Price) })
	case f.Sort == core.SortPriceDesc:
		slices.SortStableFunc(out, func(a, b core.Product) int { return cmp.Compare(b.Price, a.Price) })
	case f.Newest:
		slices.Reverse(out)
	}
	return paginate(out, f.Limit, f.Offset), nil
}

func (s *Store) CountProducts(_ context.Context, f core.ProductFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(matching(s.products, f.Match)), nil
}

func (s *Store) ProductCategories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, p := range matching(s.products, func(core.Product) bool { return true }) {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out, nil
}

func (s *Store) AdjustStock(_ context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return core.ErrNotFound
	}
	p.Stock += delta
	p.UpdatedAt = s.now()
	s.products[id] = p
	return nil
}

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return core.User{}, fmt.Errorf("user %s: %w", u.ID, core.ErrConflict)
	}
	if u.Role == "" {
		u.Role = core.RoleUser
	}
	now := s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *Store) ListUsers(_ context.Context, f core.UserFilter) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return matching(s.users, f.Match), nil
}

func (s *Store) CountUsers(_ context.Context, f core.UserFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(matching(s.users, f.Match)), nil
}

func (s *Store) CreateOrder(_ context.Context, o core.Order) (core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = core.StatusProcessing
	}
	now := s.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	o.OrderItems = slices.Clone(o.OrderItems)
	s.orders[o.ID] = o
	return o, nil
}

func (s *Store) GetOrder(_ context.Context, id string) (core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return core.Order{}, core.ErrNotFound
	}
	o.OrderItems = slices.Clone(o.OrderItems)
	return o, nil
}

func (s *Store) UpdateOrderStatus(_ context.Context, id string, st core.OrderStatus) (core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return core.Order{}, core.ErrNotFound
	}
	o.Status = st
	o.UpdatedAt = s.now()
	s.orders[id] = o
	o.OrderItems = slices.Clone(o.OrderItems)
	return o, nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.orders, id)
	delete(s.applied, id)
	return nil
}

func (s *Store) ListOrders(_ context.Context, f core.OrderFilter) ([]core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := matching(s.orders, f.Match)
	if f.Newest {
		slices.Reverse(out)
	}
	for i := range out {
		out[i].OrderItems = slices.Clone(out[i].OrderItems)
	}
	return paginate(out, f.Limit, 0), nil
}

func (s *Store) CountOrders(_ context.Context, f core.OrderFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(matching(s.orders, f.Match)), nil
}

func (s *Store) ClaimStock(_ context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; !ok {
		return false, core.ErrNotFound
	}
	if s.applied[orderID] {
		return false, nil
	}
	s.applied[orderID] = true
	return true, nil
}

func (s *Store) PendingStock(_ context.Context, cutoff time.Time, limit int) ([]core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := matching(s.orders, func(o core.Order) bool {
		return !s.applied[o.ID] && o.CreatedAt.Before(cutoff)
	})
	return paginate(out, limit, 0), nil
}

func (s *Store) CreateCoupon(_ context.Context, c core.Coupon) (core.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.coupons {
		if existing.Code == c.Code {
			return core.Coupon{}, core.ErrConflict
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.coupons[c.ID] = c
	return c, nil
}

func (s *Store) FindCoupon(_ context.Context, code string) (core.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.coupons {
		if c.Code == code {
			return c, nil
		}
	}
	return core.Coupon{}, core.ErrNotFound
}

func (s *Store) ListCoupons(_ context.Context) ([]core.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Coupon, 0, len(s.coupons))
	for _, c := range s.coupons {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b core.Coupon) int { return cmp.Compare(a.Code, b.Code) })
	return out, nil
}

func (s *Store) DeleteCoupon(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.coupons[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.coupons, id)
	return nil
}

type record interface {
	core.Product | core.User | core.Order
	Timestamp() time.Time
}

// matching returns the records accepted by keep, oldest first with id as
// tie-breaker, the same order the SQL repository uses.
func matching[R record](m map[string]R, keep func(R) bool) []R {
	type entry struct {
		id string
		r  R
	}
	entries := make([]entry, 0, len(m))
	for id, r := range m {
		if keep(r) {
			entries = append(entries, entry{id, r})
		}
	}
	slices.SortFunc(entries, func(a, b entry) int {
		if c := a.r.Timestamp().Compare(b.r.Timestamp()); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	out := make([]R, len(entries))
	for i, e := range entries {
		out[i] = e.r
	}
	return out
}

func paginate[T any](in []T, limit, offset int) []T {
	if limit <= 0 {
		return in
	}
	if offset >= len(in) {
		return nil
	}
	in = in[offset:]
	if len(in) > limit {
		in = in[:limit]
	}
	return in
}
