package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ecom/internal/core"
)

const orderColumns = "id, user_id, shipping_info, order_items, subtotal, tax, shipping_charges, discount, total, status, created_at, updated_at"

func (r *Repository) CreateOrder(ctx context.Context, o core.Order) (core.Order, error) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = core.StatusProcessing
	}
	now := r.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	shipping, err := json.Marshal(o.ShippingInfo)
	if err != nil {
		return core.Order{}, fmt.Errorf("encode shipping info: %w", err)
	}
	items, err := json.Marshal(o.OrderItems)
	if err != nil {
		return core.Order{}, fmt.Errorf("encode order items: %w", err)
	}

	_, err = r.exec(ctx,
		"INSERT INTO orders ("+orderColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		o.ID, o.UserID, string(shipping), string(items),
		o.Subtotal, o.Tax, o.ShippingCharges, o.Discount, o.Total,
		string(o.Status), toMillis(o.CreatedAt), toMillis(o.UpdatedAt))
	if err != nil {
		return core.Order{}, fmt.Errorf("insert order: %w", err)
	}

	slog.InfoContext(ctx, "Order saved", "id", o.ID, "user", o.UserID, "total", o.Total, "items", o.ItemCount())
	return o, nil
}

func (r *Repository) GetOrder(ctx context.Context, id string) (core.Order, error) {
	o, err := scanOrder(r.queryRow(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Order{}, core.ErrNotFound
	}
	if err != nil {
		return core.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}

func (r *Repository) UpdateOrderStatus(ctx context.Context, id string, s core.OrderStatus) (core.Order, error) {
	res, err := r.exec(ctx, "UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		string(s), toMillis(r.now()), id)
	if err != nil {
		return core.Order{}, fmt.Errorf("update order %s: %w", id, err)
	}
	if err := affected(res, core.ErrNotFound); err != nil {
		return core.Order{}, err
	}
	return r.GetOrder(ctx, id)
}

func (r *Repository) DeleteOrder(ctx context.Context, id string) error {
	res, err := r.exec(ctx, "DELETE FROM orders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return affected(res, core.ErrNotFound)
}

func (r *Repository) ListOrders(ctx context.Context, f core.OrderFilter) ([]core.Order, error) {
	w := orderWhere(f)
	order := " ORDER BY created_at ASC, id ASC"
	if f.Newest {
		order = " ORDER BY created_at DESC, id DESC"
	}
	rows, err := r.query(ctx, "SELECT "+orderColumns+" FROM orders"+w.String()+order+page(f.Limit, 0), w.args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []core.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) CountOrders(ctx context.Context, f core.OrderFilter) (int, error) {
	return r.count(ctx, "orders", orderWhere(f))
}

func (r *Repository) ClaimStock(ctx context.Context, orderID string) (bool, error) {
	res, err := r.exec(ctx, "UPDATE orders SET stock_applied = 1 WHERE id = ? AND stock_applied = 0", orderID)
	if err != nil {
		return false, fmt.Errorf("claim stock for order %s: %w", orderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}
	// Distinguish "already applied" from "no such order".
	if _, err := r.GetOrder(ctx, orderID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *Repository) PendingStock(ctx context.Context, cutoff time.Time, limit int) ([]core.Order, error) {
	rows, err := r.query(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE stock_applied = 0 AND created_at < ? ORDER BY created_at ASC, id ASC"+page(limit, 0),
		toMillis(cutoff))
	if err != nil {
		return nil, fmt.Errorf("list pending stock: %w", err)
	}
	defer rows.Close()

	var out []core.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(s scanner) (core.Order, error) {
	var (
		o                core.Order
		shipping, items  string
		status           string
		created, updated int64
	)
	err := s.Scan(&o.ID, &o.UserID, &shipping, &items,
		&o.Subtotal, &o.Tax, &o.ShippingCharges, &o.Discount, &o.Total,
		&status, &created, &updated)
	if err != nil {
		return core.Order{}, err
	}
	if err := json.Unmarshal([]byte(shipping), &o.ShippingInfo); err != nil {
		return core.Order{}, fmt.Errorf("decode shipping info: %w", err)
	}
	if err := json.Unmarshal([]byte(items), &o.OrderItems); err != nil {
		return core.Order{}, fmt.Errorf("decode order items: %w", err)
	}
	o.Status = core.OrderStatus(status)
	o.CreatedAt = fromMillis(created)
	o.UpdatedAt = fromMillis(updated)
	return o, nil
}
