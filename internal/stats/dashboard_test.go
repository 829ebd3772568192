package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecom/internal/core"
	"ecom/internal/store/memory"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()

	products := []core.Product{
		{Name: "a", Price: 1, Stock: 0, Category: "laptop", CreatedAt: now.AddDate(0, 0, -1)},
		{Name: "b", Price: 1, Stock: 2, Category: "laptop", CreatedAt: time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)},
		{Name: "c", Price: 1, Stock: 2, Category: "phone", CreatedAt: now.AddDate(0, -3, 0)},
		{Name: "d", Price: 1, Stock: 2, Category: "camera", CreatedAt: now.AddDate(-1, 0, 0)},
	}
	for _, p := range products {
		if _, err := s.CreateProduct(ctx, p); err != nil {
			t.Fatalf("seed product: %v", err)
		}
	}

	users := []core.User{
		{ID: "u1", Role: core.RoleAdmin, Gender: core.GenderMale, DOB: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "u2", Role: core.RoleUser, Gender: core.GenderFemale, DOB: time.Date(2005, 6, 15, 0, 0, 0, 0, time.UTC), CreatedAt: now.AddDate(0, -1, 0)},
		{ID: "u3", Role: core.RoleUser, Gender: core.GenderFemale, DOB: time.Date(1985, 6, 16, 0, 0, 0, 0, time.UTC), CreatedAt: now.AddDate(0, -2, 0)},
	}
	for _, u := range users {
		if _, err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	item := []core.OrderItem{{Name: "x", Price: 1, Quantity: 1, ProductID: "p"}}
	orders := []core.Order{
		{Total: 100, Discount: 10, Tax: 5, ShippingCharges: 5, Status: core.StatusProcessing, OrderItems: item, CreatedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{Total: 200, Discount: 20, Tax: 5, ShippingCharges: 5, Status: core.StatusShipped, OrderItems: item, CreatedAt: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)},
		{Total: 300, Discount: 30, Tax: 5, ShippingCharges: 5, Status: core.StatusDelivered, OrderItems: append(item, item...), CreatedAt: time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)},
		{Total: 50, Status: core.StatusDelivered, OrderItems: item, CreatedAt: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)},
		{Total: 50, Status: core.StatusDelivered, OrderItems: item, CreatedAt: time.Date(2025, 5, 31, 22, 0, 0, 0, time.UTC)},
		{Total: 70, Status: core.StatusDelivered, OrderItems: item, CreatedAt: now.AddDate(0, -5, 0)},
		{Total: 80, Status: core.StatusDelivered, OrderItems: item, CreatedAt: now.AddDate(0, -6, 0)},
	}
	for _, o := range orders {
		if _, err := s.CreateOrder(ctx, o); err != nil {
			t.Fatalf("seed order: %v", err)
		}
	}
	return s
}

func TestSummaryStats(t *testing.T) {
	d := NewDashboard(seededStore(t))
	s, err := d.SummaryStats(context.Background(), now)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if s.ChangePercent.Revenue != 500 {
		t.Fatalf("revenue change = %v, want 500", s.ChangePercent.Revenue)
	}
	// 3 orders this month against 2 last month.
	if s.ChangePercent.Order != 50 {
		t.Fatalf("order change = %v, want 50", s.ChangePercent.Order)
	}
	// 1 product this month against 1 last month (the one created on May 31).
	if s.ChangePercent.Product != 0 {
		t.Fatalf("product change = %v, want 0", s.ChangePercent.Product)
	}
	// 1 user this month against 1 last month.
	if s.ChangePercent.User != 0 {
		t.Fatalf("user change = %v, want 0", s.ChangePercent.User)
	}

	if s.Count != (Totals{Revenue: 850, User: 3, Product: 4, Order: 7}) {
		t.Fatalf("unexpected totals: %+v", s.Count)
	}
	if s.UserRatio != (UserRatio{Male: 1, Female: 2}) {
		t.Fatalf("unexpected ratio: %+v", s.UserRatio)
	}

	wantOrders := Series{1, 0, 0, 0, 2, 3}
	wantRevenue := Series{70, 0, 0, 0, 100, 600}
	for i := range wantOrders {
		if s.Chart.Order[i] != wantOrders[i] || s.Chart.Revenue[i] != wantRevenue[i] {
			t.Fatalf("chart = %+v, want orders %v revenue %v", s.Chart, wantOrders, wantRevenue)
		}
	}

	if len(s.LatestTransactions) != 4 {
		t.Fatalf("latest = %d, want 4", len(s.LatestTransactions))
	}
	first := s.LatestTransactions[0]
	if first.Amount != 300 || first.ItemCount != 2 || first.Discount != 30 || first.Status != core.StatusDelivered {
		t.Fatalf("unexpected latest transaction: %+v", first)
	}

	if s.CategoryCount.Percent("laptop") != 50 || s.CategoryCount.Percent("phone") != 25 {
		t.Fatalf("unexpected categories: %+v", s.CategoryCount)
	}
}

func TestPieCharts(t *testing.T) {
	d := NewDashboard(seededStore(t))
	p, err := d.PieCharts(context.Background(), now)
	if err != nil {
		t.Fatalf("pie: %v", err)
	}
	if p.OrderFulfillment != (Fulfillment{Processing: 1, Shipped: 1, Delivered: 5}) {
		t.Fatalf("unexpected fulfillment: %+v", p.OrderFulfillment)
	}
	if p.StockAvailability != (StockAvailability{InStock: 3, OutOfStock: 1}) {
		t.Fatalf("unexpected stock: %+v", p.StockAvailability)
	}
	// u2 turns 20 today, u3 is still 39, u1 is 45.
	if p.UsersAgeGroup != (AgeGroups{Teen: 1, Adult: 1, Old: 1}) {
		t.Fatalf("unexpected age groups: %+v", p.UsersAgeGroup)
	}
	if p.AdminCustomer != (AdminCustomer{Admin: 1, Customer: 2}) {
		t.Fatalf("unexpected admin/customer: %+v", p.AdminCustomer)
	}
	rd := p.RevenueDistribution
	if rd.GrossIncome != 850 || rd.MarketingCost != 255 || rd.NetMargin != 850-60-15-15-255 {
		t.Fatalf("unexpected revenue distribution: %+v", rd)
	}
	if len(p.ProductCategories) != 3 {
		t.Fatalf("unexpected categories: %+v", p.ProductCategories)
	}
}

func TestBarAndLineCharts(t *testing.T) {
	d := NewDashboard(seededStore(t))
	ctx := context.Background()

	bar, err := d.BarCharts(ctx, now)
	if err != nil {
		t.Fatalf("bar: %v", err)
	}
	if len(bar.Products) != 6 || len(bar.Users) != 6 || len(bar.Orders) != 12 {
		t.Fatalf("unexpected lengths: %d %d %d", len(bar.Products), len(bar.Users), len(bar.Orders))
	}
	// Product d was created a year ago and is outside both windows.
	if bar.Products.Sum() != 3 {
		t.Fatalf("products = %v", bar.Products)
	}
	// The December order is inside the 12-month window.
	if bar.Orders.Sum() != 7 || bar.Orders[5] != 1 {
		t.Fatalf("orders = %v", bar.Orders)
	}

	line, err := d.LineCharts(ctx, now)
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	if line.Revenue[11] != 600 || line.Discount[11] != 60 {
		t.Fatalf("unexpected current month line: %+v", line)
	}
	if line.Products.Sum() != 3 || line.Users.Sum() != 3 {
		t.Fatalf("unexpected line counts: %+v", line)
	}
}

func TestTrendSeries(t *testing.T) {
	d := NewDashboard(seededStore(t))
	tr, err := d.Trend(context.Background(), now, 6, Count, core.FieldTotal)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	orders := tr[Orders]
	// Exactly six months back is excluded; five months back lands in slot 0.
	if orders[Count][0] != 1 || orders[core.FieldTotal][0] != 70 || orders[Count].Sum() != 6 {
		t.Fatalf("unexpected order trend: %+v", orders)
	}
	if tr[Users][core.FieldTotal].Sum() != 0 {
		t.Fatalf("users have no totals: %+v", tr[Users])
	}
}

type failingStore struct {
	*memory.Store
	err error
}

func (f failingStore) ListOrders(context.Context, core.OrderFilter) ([]core.Order, error) {
	return nil, f.err
}

func TestDashboardPropagatesReadErrors(t *testing.T) {
	boom := errors.New("store down")
	d := NewDashboard(failingStore{Store: memory.New(), err: boom})
	ctx := context.Background()

	if _, err := d.SummaryStats(ctx, now); !errors.Is(err, boom) {
		t.Fatalf("summary: expected store error, got %v", err)
	}
	if _, err := d.PieCharts(ctx, now); !errors.Is(err, boom) {
		t.Fatalf("pie: expected store error, got %v", err)
	}
	if _, err := d.BarCharts(ctx, now); !errors.Is(err, boom) {
		t.Fatalf("bar: expected store error, got %v", err)
	}
	if _, err := d.LineCharts(ctx, now); !errors.Is(err, boom) {
		t.Fatalf("line: expected store error, got %v", err)
	}
}
