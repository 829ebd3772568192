package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"ecom/internal/core"
)

// Fixture is a YAML document of records used to seed a store.
type Fixture struct {
	Products []core.Product `yaml:"products"`
	Users    []core.User    `yaml:"users"`
	Orders   []core.Order   `yaml:"orders"`
	Coupons  []core.Coupon  `yaml:"coupons"`
}

// LoadFixture reads a fixture file. A missing file yields an empty fixture.
func LoadFixture(path string) (Fixture, error) {
	var f Fixture
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("read fixture: %w", err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return f, nil
}

// Apply writes every fixture record into s and returns the number written.
func (f Fixture) Apply(ctx context.Context, s Store) (int, error) {
	n := 0
	for _, p := range f.Products {
		p.Category = core.NormalizeCategory(p.Category)
		if _, err := s.CreateProduct(ctx, p); err != nil {
			return n, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
		n++
	}
	for _, u := range f.Users {
		if _, err := s.CreateUser(ctx, u); err != nil {
			return n, fmt.Errorf("seed user %q: %w", u.ID, err)
		}
		n++
	}
	for _, o := range f.Orders {
		if _, err := s.CreateOrder(ctx, o); err != nil {
			return n, fmt.Errorf("seed order for %q: %w", o.UserID, err)
		}
		n++
	}
	for _, c := range f.Coupons {
		if _, err := s.CreateCoupon(ctx, c); err != nil {
			return n, fmt.Errorf("seed coupon %q: %w", c.Code, err)
		}
		n++
	}
	return n, nil
}
