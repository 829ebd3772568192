package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"ecom/internal/core"
)

const latestTransactionCount = 4

// Reader is the subset of the record store the dashboard reads from.
type Reader interface {
	CountProducts(ctx context.Context, f core.ProductFilter) (int, error)
	ListProducts(ctx context.Context, f core.ProductFilter) ([]core.Product, error)
	ProductCategories(ctx context.Context) ([]string, error)
	CountUsers(ctx context.Context, f core.UserFilter) (int, error)
	ListUsers(ctx context.Context, f core.UserFilter) ([]core.User, error)
	CountOrders(ctx context.Context, f core.OrderFilter) (int, error)
	ListOrders(ctx context.Context, f core.OrderFilter) ([]core.Order, error)
}

// Dashboard assembles the admin analytics responses. Every call reads
// afresh; independent reads run concurrently and the first failure aborts
// the whole response.
type Dashboard struct {
	store Reader
}

func NewDashboard(r Reader) *Dashboard {
	return &Dashboard{store: r}
}

type (
	ChangePercent struct {
		Revenue float64 `json:"revenue"`
		Product float64 `json:"product"`
		User    float64 `json:"user"`
		Order   float64 `json:"order"`
	}

	Totals struct {
		Revenue float64 `json:"revenue"`
		User    int     `json:"user"`
		Product int     `json:"product"`
		Order   int     `json:"order"`
	}

	UserRatio struct {
		Male   int `json:"male"`
		Female int `json:"female"`
	}

	Transaction struct {
		ID        string           `json:"_id"`
		Discount  float64          `json:"discount"`
		Amount    float64          `json:"amount"`
		ItemCount int              `json:"quantity"`
		Status    core.OrderStatus `json:"status"`
	}

	SummaryChart struct {
		Order   Series `json:"order"`
		Revenue Series `json:"revenue"`
	}

	Summary struct {
		CategoryCount      Shares        `json:"categoryCount"`
		UserRatio          UserRatio     `json:"userRatio"`
		ChangePercent      ChangePercent `json:"changePercent"`
		Count              Totals        `json:"count"`
		Chart              SummaryChart  `json:"chart"`
		LatestTransactions []Transaction `json:"latestTransactions"`
	}
)

// SummaryStats compares this month against last month and reports totals,
// a six-month order chart, category shares and the latest transactions.
func (d *Dashboard) SummaryStats(ctx context.Context, now time.Time) (Summary, error) {
	this, last := ThisMonth(now), LastMonth(now)
	six := Trailing(now, 6)

	var (
		thisProducts, lastProducts int
		thisUsers, lastUsers       int
		thisOrders, lastOrders     []core.Order
		sixMonthOrders, allOrders  []core.Order
		latest                     []core.Order
		productCount, userCount    int
		femaleCount                int
		categories                 []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		thisProducts, err = d.store.CountProducts(gctx, core.ProductFilter{Created: this.Range()})
		return wrap("count this month products", err)
	})
	g.Go(func() (err error) {
		lastProducts, err = d.store.CountProducts(gctx, core.ProductFilter{Created: last.Range()})
		return wrap("count last month products", err)
	})
	g.Go(func() (err error) {
		thisUsers, err = d.store.CountUsers(gctx, core.UserFilter{Created: this.Range()})
		return wrap("count this month users", err)
	})
	g.Go(func() (err error) {
		lastUsers, err = d.store.CountUsers(gctx, core.UserFilter{Created: last.Range()})
		return wrap("count last month users", err)
	})
	g.Go(func() (err error) {
		thisOrders, err = d.store.ListOrders(gctx, core.OrderFilter{Created: this.Range()})
		return wrap("list this month orders", err)
	})
	g.Go(func() (err error) {
		lastOrders, err = d.store.ListOrders(gctx, core.OrderFilter{Created: last.Range()})
		return wrap("list last month orders", err)
	})
	g.Go(func() (err error) {
		sixMonthOrders, err = d.store.ListOrders(gctx, core.OrderFilter{Created: six.Range()})
		return wrap("list six month orders", err)
	})
	g.Go(func() (err error) {
		latest, err = d.store.ListOrders(gctx, core.OrderFilter{Newest: true, Limit: latestTransactionCount})
		return wrap("list latest orders", err)
	})
	g.Go(func() (err error) {
		productCount, err = d.store.CountProducts(gctx, core.ProductFilter{})
		return wrap("count products", err)
	})
	g.Go(func() (err error) {
		userCount, err = d.store.CountUsers(gctx, core.UserFilter{})
		return wrap("count users", err)
	})
	g.Go(func() (err error) {
		allOrders, err = d.store.ListOrders(gctx, core.OrderFilter{})
		return wrap("list orders", err)
	})
	g.Go(func() (err error) {
		categories, err = d.store.ProductCategories(gctx)
		return wrap("list categories", err)
	})
	g.Go(func() (err error) {
		femaleCount, err = d.store.CountUsers(gctx, core.UserFilter{Gender: core.Ptr(core.GenderFemale)})
		return wrap("count female users", err)
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	shares, err := CategoryShares(ctx, categories, productCount, d.countCategory)
	if err != nil {
		return Summary{}, err
	}

	thisRevenue, lastRevenue := revenue(thisOrders), revenue(lastOrders)

	s := Summary{
		CategoryCount: shares,
		UserRatio:     UserRatio{Male: userCount - femaleCount, Female: femaleCount},
		ChangePercent: ChangePercent{
			Revenue: roundPercent(PercentChange(thisRevenue, lastRevenue)),
			Product: roundPercent(PercentChange(float64(thisProducts), float64(lastProducts))),
			User:    roundPercent(PercentChange(float64(thisUsers), float64(lastUsers))),
			Order:   roundPercent(PercentChange(float64(len(thisOrders)), float64(len(lastOrders)))),
		},
		Count: Totals{
			Revenue: revenue(allOrders),
			User:    userCount,
			Product: productCount,
			Order:   len(allOrders),
		},
		Chart: SummaryChart{
			Order:   Bucket(sixMonthOrders, 6, now, Count),
			Revenue: Bucket(sixMonthOrders, 6, now, core.FieldTotal),
		},
		LatestTransactions: make([]Transaction, 0, len(latest)),
	}
	for _, o := range latest {
		s.LatestTransactions = append(s.LatestTransactions, Transaction{
			ID:        o.ID,
			Discount:  o.Discount,
			Amount:    o.Total,
			ItemCount: o.ItemCount(),
			Status:    o.Status,
		})
	}
	return s, nil
}

type (
	Fulfillment struct {
		Processing int `json:"processing"`
		Shipped    int `json:"shipped"`
		Delivered  int `json:"delivered"`
	}

	StockAvailability struct {
		InStock    int `json:"inStock"`
		OutOfStock int `json:"outOfStock"`
	}

	AgeGroups struct {
		Teen  int `json:"teen"`
		Adult int `json:"adult"`
		Old   int `json:"old"`
	}

	AdminCustomer struct {
		Admin    int `json:"admin"`
		Customer int `json:"customer"`
	}

	Pie struct {
		OrderFulfillment    Fulfillment         `json:"orderFullFillment"`
		ProductCategories   Shares              `json:"productCategories"`
		StockAvailability   StockAvailability   `json:"stockAvailability"`
		RevenueDistribution RevenueDistribution `json:"revenueDistribution"`
		UsersAgeGroup       AgeGroups           `json:"usersAgeGroup"`
		AdminCustomer       AdminCustomer       `json:"adminCustomer"`
	}
)

// PieCharts reports order fulfillment, category and stock split, revenue
// distribution, user age groups and the admin/customer split. now is the
// reference instant for user ages.
func (d *Dashboard) PieCharts(ctx context.Context, now time.Time) (Pie, error) {
	var (
		p                   Pie
		categories          []string
		productCount, outOf int
		orders              []core.Order
		users               []core.User
	)

	g, gctx := errgroup.WithContext(ctx)
	statusCount := func(s core.OrderStatus, dst *int) {
		g.Go(func() (err error) {
			*dst, err = d.store.CountOrders(gctx, core.OrderFilter{Status: core.Ptr(s)})
			return wrap("count "+string(s)+" orders", err)
		})
	}
	statusCount(core.StatusProcessing, &p.OrderFulfillment.Processing)
	statusCount(core.StatusShipped, &p.OrderFulfillment.Shipped)
	statusCount(core.StatusDelivered, &p.OrderFulfillment.Delivered)

	roleCount := func(r core.Role, dst *int) {
		g.Go(func() (err error) {
			*dst, err = d.store.CountUsers(gctx, core.UserFilter{Role: core.Ptr(r)})
			return wrap("count "+string(r)+" users", err)
		})
	}
	roleCount(core.RoleAdmin, &p.AdminCustomer.Admin)
	roleCount(core.RoleUser, &p.AdminCustomer.Customer)

	g.Go(func() (err error) {
		categories, err = d.store.ProductCategories(gctx)
		return wrap("list categories", err)
	})
	g.Go(func() (err error) {
		productCount, err = d.store.CountProducts(gctx, core.ProductFilter{})
		return wrap("count products", err)
	})
	g.Go(func() (err error) {
		outOf, err = d.store.CountProducts(gctx, core.ProductFilter{Stock: core.Ptr(0)})
		return wrap("count out of stock products", err)
	})
	g.Go(func() (err error) {
		orders, err = d.store.ListOrders(gctx, core.OrderFilter{})
		return wrap("list orders", err)
	})
	g.Go(func() (err error) {
		users, err = d.store.ListUsers(gctx, core.UserFilter{})
		return wrap("list users", err)
	})
	if err := g.Wait(); err != nil {
		return Pie{}, err
	}

	shares, err := CategoryShares(ctx, categories, productCount, d.countCategory)
	if err != nil {
		return Pie{}, err
	}

	p.ProductCategories = shares
	p.StockAvailability = StockAvailability{InStock: productCount - outOf, OutOfStock: outOf}
	p.RevenueDistribution = Distribute(orders)
	p.UsersAgeGroup = ageGroups(users, now)
	return p, nil
}

// Entity selects which record set a trend series is built from.
type Entity string

const (
	Products Entity = "products"
	Users    Entity = "users"
	Orders   Entity = "orders"
)

// TrendSeries holds one series per entity and requested field.
type TrendSeries map[Entity]map[Field]Series

// Trend fetches products, users and orders created in the trailing window
// and buckets each of them once per field. Fields other than Count only
// carry values for entities that have that numeric field.
func (d *Dashboard) Trend(ctx context.Context, now time.Time, months int, fields ...Field) (TrendSeries, error) {
	entities := []Entity{Products, Users, Orders}
	results := make([]map[Field]Series, len(entities))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range entities {
		g.Go(func() (err error) {
			results[i], err = d.series(gctx, now, e, months, fields)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(TrendSeries, len(entities))
	for i, e := range entities {
		out[e] = results[i]
	}
	return out, nil
}

type Bar struct {
	Users    Series `json:"users"`
	Products Series `json:"products"`
	Orders   Series `json:"orders"`
}

// BarCharts counts products and users over six months and orders over
// twelve.
func (d *Dashboard) BarCharts(ctx context.Context, now time.Time) (Bar, error) {
	var products, users, orders map[Field]Series
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = d.series(gctx, now, Products, 6, nil)
		return err
	})
	g.Go(func() (err error) {
		users, err = d.series(gctx, now, Users, 6, nil)
		return err
	})
	g.Go(func() (err error) {
		orders, err = d.series(gctx, now, Orders, 12, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return Bar{}, err
	}
	return Bar{Users: users[Count], Products: products[Count], Orders: orders[Count]}, nil
}

type Line struct {
	Users    Series `json:"users"`
	Products Series `json:"products"`
	Discount Series `json:"discount"`
	Revenue  Series `json:"revenue"`
}

// LineCharts reports twelve-month product and user counts plus order
// discount and revenue sums.
func (d *Dashboard) LineCharts(ctx context.Context, now time.Time) (Line, error) {
	t, err := d.Trend(ctx, now, 12, Count, core.FieldDiscount, core.FieldTotal)
	if err != nil {
		return Line{}, err
	}
	return Line{
		Users:    t[Users][Count],
		Products: t[Products][Count],
		Discount: t[Orders][core.FieldDiscount],
		Revenue:  t[Orders][core.FieldTotal],
	}, nil
}

func (d *Dashboard) series(ctx context.Context, now time.Time, e Entity, months int, fields []Field) (map[Field]Series, error) {
	rng := Trailing(now, months).Range()
	switch e {
	case Products:
		recs, err := d.store.ListProducts(ctx, core.ProductFilter{Created: rng})
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		return bucketFields(recs, months, now, fields), nil
	case Users:
		recs, err := d.store.ListUsers(ctx, core.UserFilter{Created: rng})
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		return bucketFields(recs, months, now, fields), nil
	case Orders:
		recs, err := d.store.ListOrders(ctx, core.OrderFilter{Created: rng})
		if err != nil {
			return nil, fmt.Errorf("list orders: %w", err)
		}
		return bucketFields(recs, months, now, fields), nil
	}
	return nil, fmt.Errorf("unknown entity %q", e)
}

func bucketFields[R Record](recs []R, months int, now time.Time, fields []Field) map[Field]Series {
	if len(fields) == 0 {
		fields = []Field{Count}
	}
	out := make(map[Field]Series, len(fields))
	for _, f := range fields {
		out[f] = Bucket(recs, months, now, f)
	}
	return out
}

func (d *Dashboard) countCategory(ctx context.Context, category string) (int, error) {
	return d.store.CountProducts(ctx, core.ProductFilter{Category: category})
}

func revenue(orders []core.Order) float64 {
	var total float64
	for _, o := range orders {
		total += o.Total
	}
	return total
}

func ageGroups(users []core.User, now time.Time) AgeGroups {
	var g AgeGroups
	for _, u := range users {
		switch age := u.Age(now); {
		case age <= 20:
			g.Teen++
		case age <= 40:
			g.Adult++
		default:
			g.Old++
		}
	}
	return g
}

// roundPercent rounds a change to whole percent for display.
func roundPercent(v float64) float64 {
	return math.Round(v)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
