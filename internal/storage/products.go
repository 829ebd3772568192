package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ecom/internal/core"
)

const productColumns = "id, name, photo, price, stock, category, created_at, updated_at"

func (r *Repository) CreateProduct(ctx context.Context, p core.Product) (core.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := r.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err := r.exec(ctx,
		"INSERT INTO products ("+productColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.Photo, p.Price, p.Stock, p.Category, toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
	if err != nil {
		return core.Product{}, fmt.Errorf("insert product: %w", err)
	}

	slog.InfoContext(ctx, "Product saved", "id", p.ID, "name", p.Name, "category", p.Category)
	return p, nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (core.Product, error) {
	row := r.queryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = ?", id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Product{}, core.ErrNotFound
	}
	if err != nil {
		return core.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p core.Product) (core.Product, error) {
	p.UpdatedAt = r.now()
	res, err := r.exec(ctx,
		"UPDATE products SET name = ?, photo = ?, price = ?, stock = ?, category = ?, updated_at = ? WHERE id = ?",
		p.Name, p.Photo, p.Price, p.Stock, p.Category, toMillis(p.UpdatedAt), p.ID)
	if err != nil {
		return core.Product{}, fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if err := affected(res, core.ErrNotFound); err != nil {
		return core.Product{}, err
	}
	return r.GetProduct(ctx, p.ID)
}

func (r *Repository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.exec(ctx, "DELETE FROM products WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return affected(res, core.ErrNotFound)
}

func (r *Repository) ListProducts(ctx context.Context, f core.ProductFilter) ([]core.Product, error) {
	w := productWhere(f)
	rows, err := r.query(ctx,
		"SELECT "+productColumns+" FROM products"+w.String()+productOrder(f)+page(f.Limit, f.Offset),
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []core.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) CountProducts(ctx context.Context, f core.ProductFilter) (int, error) {
	return r.count(ctx, "products", productWhere(f))
}

func (r *Repository) ProductCategories(ctx context.Context) ([]string, error) {
	rows, err := r.query(ctx, "SELECT category FROM products GROUP BY category ORDER BY MIN(created_at), category")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) AdjustStock(ctx context.Context, id string, delta int) error {
	res, err := r.exec(ctx, "UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?",
		delta, toMillis(r.now()), id)
	if err != nil {
		return fmt.Errorf("adjust stock %s: %w", id, err)
	}
	return affected(res, core.ErrNotFound)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(s scanner) (core.Product, error) {
	var (
		p                core.Product
		created, updated int64
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Photo, &p.Price, &p.Stock, &p.Category, &created, &updated); err != nil {
		return core.Product{}, err
	}
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return p, nil
}
