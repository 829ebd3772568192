package store

import (
	"context"
	"time"

	"ecom/internal/core"
)

// Ports implemented by every record store backend. Get/Update/Delete return
// core.ErrNotFound for unknown ids.
type (
	ProductStore interface {
		CreateProduct(ctx context.Context, p core.Product) (core.Product, error)
		GetProduct(ctx context.Context, id string) (core.Product, error)
		UpdateProduct(ctx context.Context, p core.Product) (core.Product, error)
		DeleteProduct(ctx context.Context, id string) error
		ListProducts(ctx context.Context, f core.ProductFilter) ([]core.Product, error)
		// CountProducts ignores the filter's Limit and Offset.
		CountProducts(ctx context.Context, f core.ProductFilter) (int, error)
		// ProductCategories returns the distinct categories in first-seen order.
		ProductCategories(ctx context.Context) ([]string, error)
		// AdjustStock adds delta to the product's stock.
		AdjustStock(ctx context.Context, id string, delta int) error
	}

	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id string) (core.User, error)
		DeleteUser(ctx context.Context, id string) error
		ListUsers(ctx context.Context, f core.UserFilter) ([]core.User, error)
		CountUsers(ctx context.Context, f core.UserFilter) (int, error)
	}

	OrderStore interface {
		CreateOrder(ctx context.Context, o core.Order) (core.Order, error)
		GetOrder(ctx context.Context, id string) (core.Order, error)
		UpdateOrderStatus(ctx context.Context, id string, s core.OrderStatus) (core.Order, error)
		DeleteOrder(ctx context.Context, id string) error
		ListOrders(ctx context.Context, f core.OrderFilter) ([]core.Order, error)
		CountOrders(ctx context.Context, f core.OrderFilter) (int, error)
	}

	CouponStore interface {
		CreateCoupon(ctx context.Context, c core.Coupon) (core.Coupon, error)
		// FindCoupon looks a coupon up by its code.
		FindCoupon(ctx context.Context, code string) (core.Coupon, error)
		ListCoupons(ctx context.Context) ([]core.Coupon, error)
		DeleteCoupon(ctx context.Context, id string) error
	}

	// StockQueue tracks which orders have had their items taken out of
	// stock, so a redelivered event never reduces stock twice.
	StockQueue interface {
		// ClaimStock marks the order's stock as applied and reports whether
		// this call made the change. Unknown orders return core.ErrNotFound.
		ClaimStock(ctx context.Context, orderID string) (bool, error)
		// PendingStock lists orders created before cutoff whose stock has not
		// been applied, oldest first.
		PendingStock(ctx context.Context, cutoff time.Time, limit int) ([]core.Order, error)
	}

	Store interface {
		ProductStore
		UserStore
		OrderStore
		CouponStore
		StockQueue
	}
)
