package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ecom/internal/core"
)

const (
	userColumns = "id, name, email, photo, role, gender, dob, created_at, updated_at"
	dobLayout   = "2006-01-02"
)

func (r *Repository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.Role == "" {
		u.Role = core.RoleUser
	}
	now := r.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	_, err := r.exec(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.Photo, string(u.Role), string(u.Gender),
		u.DOB.UTC().Format(dobLayout), toMillis(u.CreatedAt), toMillis(u.UpdatedAt))
	if err != nil {
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}

	slog.InfoContext(ctx, "User saved", "id", u.ID, "role", u.Role)
	return u, nil
}

func (r *Repository) GetUser(ctx context.Context, id string) (core.User, error) {
	u, err := scanUser(r.queryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id string) error {
	res, err := r.exec(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return affected(res, core.ErrNotFound)
}

func (r *Repository) ListUsers(ctx context.Context, f core.UserFilter) ([]core.User, error) {
	w := userWhere(f)
	rows, err := r.query(ctx, "SELECT "+userColumns+" FROM users"+w.String()+" ORDER BY created_at ASC, id ASC", w.args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repository) CountUsers(ctx context.Context, f core.UserFilter) (int, error) {
	return r.count(ctx, "users", userWhere(f))
}

func scanUser(s scanner) (core.User, error) {
	var (
		u                core.User
		role, gender     string
		dob              string
		created, updated int64
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Photo, &role, &gender, &dob, &created, &updated); err != nil {
		return core.User{}, err
	}
	t, err := time.Parse(dobLayout, dob)
	if err != nil {
		return core.User{}, fmt.Errorf("parse dob %q: %w", dob, err)
	}
	u.Role = core.Role(role)
	u.Gender = core.Gender(gender)
	u.DOB = t
	u.CreatedAt = fromMillis(created)
	u.UpdatedAt = fromMillis(updated)
	return u, nil
}
