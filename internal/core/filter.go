package core

import (
	"strings"
	"time"
)

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "asc"
	SortPriceDesc SortOrder = "dsc"
)

// ParseSortOrder maps the "sort" query parameter; anything other than "asc"
// that is non-empty sorts descending.
func ParseSortOrder(s string) SortOrder {
	switch strings.TrimSpace(s) {
	case "":
		return SortNone
	case "asc":
		return SortPriceAsc
	default:
		return SortPriceDesc
	}
}

// TimeRange is an inclusive [From, To] creation-time range.
type TimeRange struct {
	From time.Time
	To   time.Time
}

func (r *TimeRange) Contains(t time.Time) bool {
	if r == nil {
		return true
	}
	return !t.Before(r.From) && !t.After(r.To)
}

// ProductFilter holds the optional product predicates. Zero values mean
// "no constraint"; all present predicates are combined with AND.
type ProductFilter struct {
	Search   string
	Category string
	MaxPrice *float64
	Stock    *int
	Created  *TimeRange

	Sort   SortOrder
	Newest bool
	Limit  int
	Offset int
}

func (f ProductFilter) Match(p Product) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Stock != nil && p.Stock != *f.Stock {
		return false
	}
	return f.Created.Contains(p.CreatedAt)
}

type UserFilter struct {
	Role    *Role
	Gender  *Gender
	Created *TimeRange
}

func (f UserFilter) Match(u User) bool {
	if f.Role != nil && u.Role != *f.Role {
		return false
	}
	if f.Gender != nil && u.Gender != *f.Gender {
		return false
	}
	return f.Created.Contains(u.CreatedAt)
}

type OrderFilter struct {
	UserID  string
	Status  *OrderStatus
	Created *TimeRange

	Newest bool
	Limit  int
}

func (f OrderFilter) Match(o Order) bool {
	if f.UserID != "" && o.UserID != f.UserID {
		return false
	}
	if f.Status != nil && o.Status != *f.Status {
		return false
	}
	return f.Created.Contains(o.CreatedAt)
}

// Ptr returns a pointer to v, for filling optional filter fields.
func Ptr[T any](v T) *T {
	return &v
}
