package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ecom/internal/core"
)

func (r *Repository) CreateCoupon(ctx context.Context, c core.Coupon) (core.Coupon, error) {
	if _, err := r.FindCoupon(ctx, c.Code); err == nil {
		return core.Coupon{}, core.ErrConflict
	} else if !errors.Is(err, core.ErrNotFound) {
		return core.Coupon{}, err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if _, err := r.exec(ctx, "INSERT INTO coupons (id, code, amount) VALUES (?, ?, ?)", c.ID, c.Code, c.Amount); err != nil {
		return core.Coupon{}, fmt.Errorf("insert coupon: %w", err)
	}
	return c, nil
}

func (r *Repository) FindCoupon(ctx context.Context, code string) (core.Coupon, error) {
	var c core.Coupon
	err := r.queryRow(ctx, "SELECT id, code, amount FROM coupons WHERE code = ?", code).Scan(&c.ID, &c.Code, &c.Amount)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Coupon{}, core.ErrNotFound
	}
	if err != nil {
		return core.Coupon{}, fmt.Errorf("find coupon: %w", err)
	}
	return c, nil
}

func (r *Repository) ListCoupons(ctx context.Context) ([]core.Coupon, error) {
	rows, err := r.query(ctx, "SELECT id, code, amount FROM coupons ORDER BY code")
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var out []core.Coupon
	for rows.Next() {
		var c core.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.Amount); err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) DeleteCoupon(ctx context.Context, id string) error {
	res, err := r.exec(ctx, "DELETE FROM coupons WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete coupon %s: %w", id, err)
	}
	return affected(res, core.ErrNotFound)
}
