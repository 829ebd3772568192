package memory

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"ecom/internal/core"
)

func TestNewFromFileSeeds(t *testing.T) {
	ctx := context.Background()
	s, err := NewFromFile(filepath.Join("testdata", "seed.yaml"))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	p, err := s.GetProduct(ctx, "p1")
	if err != nil {
		t.Fatalf("get p1: %v", err)
	}
	if p.Category != "laptop" {
		t.Fatalf("category not normalized: %q", p.Category)
	}
	if !p.CreatedAt.Equal(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected created_at: %v", p.CreatedAt)
	}

	u, err := s.GetUser(ctx, "admin")
	if err != nil || u.Role != core.RoleAdmin || u.DOB.Year() != 1985 {
		t.Fatalf("unexpected admin: %+v err=%v", u, err)
	}

	o, err := s.GetOrder(ctx, "o1")
	if err != nil || o.Status != core.StatusProcessing || o.ShippingInfo.PinCode != "411001" {
		t.Fatalf("unexpected order: %+v err=%v", o, err)
	}

	if _, err := s.FindCoupon(ctx, "WELCOME"); err != nil {
		t.Fatalf("coupon: %v", err)
	}
}

func TestNewFromFileMissing(t *testing.T) {
	s, err := NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected empty store, got %v", err)
	}
	n, _ := s.CountProducts(context.Background(), core.ProductFilter{})
	if n != 0 {
		t.Fatalf("expected no products, got %d", n)
	}
}

func TestListProductsPagingAndSort(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, price := range []float64{30, 10, 20, 50, 40} {
		_, _ = s.CreateProduct(ctx, core.Product{
			Name: "item", Price: price, Category: "c", CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}

	got, _ := s.ListProducts(ctx, core.ProductFilter{Sort: core.SortPriceAsc, Limit: 2, Offset: 2})
	if len(got) != 2 || got[0].Price != 30 || got[1].Price != 40 {
		t.Fatalf("unexpected page: %+v", got)
	}

	got, _ = s.ListProducts(ctx, core.ProductFilter{Newest: true, Limit: 1})
	if len(got) != 1 || got[0].Price != 40 {
		t.Fatalf("unexpected newest: %+v", got)
	}

	got, _ = s.ListProducts(ctx, core.ProductFilter{Limit: 2, Offset: 10})
	if len(got) != 0 {
		t.Fatalf("expected empty page, got %d", len(got))
	}
}

func TestStockAndStatus(t *testing.T) {
	ctx := context.Background()
	s := New()
	p, _ := s.CreateProduct(ctx, core.Product{Name: "x", Price: 1, Stock: 5, Category: "c"})
	if err := s.AdjustStock(ctx, p.ID, -3); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	p, _ = s.GetProduct(ctx, p.ID)
	if p.Stock != 2 {
		t.Fatalf("stock = %d", p.Stock)
	}
	if err := s.AdjustStock(ctx, "missing", 1); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	o, _ := s.CreateOrder(ctx, core.Order{UserID: "u"})
	o, err := s.UpdateOrderStatus(ctx, o.ID, o.Status.Next())
	if err != nil || o.Status != core.StatusShipped {
		t.Fatalf("unexpected status: %v err=%v", o.Status, err)
	}
	if err := s.DeleteOrder(ctx, o.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetOrder(ctx, o.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoriesFirstSeenOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range []string{"b", "a", "b", "c"} {
		_, _ = s.CreateProduct(ctx, core.Product{Name: "x", Price: 1, Category: c, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
	}
	cats, _ := s.ProductCategories(ctx)
	if len(cats) != 3 || cats[0] != "b" || cats[1] != "a" || cats[2] != "c" {
		t.Fatalf("unexpected categories: %v", cats)
	}
}
