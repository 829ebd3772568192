package storage

import (
	"strconv"
	"strings"

	"ecom/internal/core"
)

// where accumulates AND-ed predicates with positional '?' arguments.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) created(r *core.TimeRange) {
	if r == nil {
		return
	}
	w.add("created_at >= ? AND created_at <= ?", toMillis(r.From), toMillis(r.To))
}

func (w where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func productWhere(f core.ProductFilter) where {
	var w where
	if f.Search != "" {
		w.add(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Search))+"%")
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.MaxPrice != nil {
		w.add("price <= ?", *f.MaxPrice)
	}
	if f.Stock != nil {
		w.add("stock = ?", *f.Stock)
	}
	w.created(f.Created)
	return w
}

func productOrder(f core.ProductFilter) string {
	switch {
	case f.Sort == core.SortPriceAsc:
		return " ORDER BY price ASC, created_at ASC, id ASC"
	case f.Sort == core.SortPriceDesc:
		return " ORDER BY price DESC, created_at ASC, id ASC"
	case f.Newest:
		return " ORDER BY created_at DESC, id DESC"
	}
	return " ORDER BY created_at ASC, id ASC"
}

func userWhere(f core.UserFilter) where {
	var w where
	if f.Role != nil {
		w.add("role = ?", string(*f.Role))
	}
	if f.Gender != nil {
		w.add("gender = ?", string(*f.Gender))
	}
	w.created(f.Created)
	return w
}

func orderWhere(f core.OrderFilter) where {
	var w where
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.Status != nil {
		w.add("status = ?", string(*f.Status))
	}
	w.created(f.Created)
	return w
}

// page renders LIMIT/OFFSET. Offset is ignored without a limit.
func page(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	s := " LIMIT " + strconv.Itoa(limit)
	if offset > 0 {
		s += " OFFSET " + strconv.Itoa(offset)
	}
	return s
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// rebind rewrites '?' placeholders to $1..$n for postgres. Queries in this
// package never contain a literal '?' inside string constants.
func rebind(d Dialect, q string) string {
	if d != DialectPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}
