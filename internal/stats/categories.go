package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// CountFunc returns the number of products in a category.
type CountFunc func(ctx context.Context, category string) (int, error)

type Share struct {
	Category string
	Percent  int
}

// Shares keeps categories in lookup order. It encodes as a list of
// single-key objects, e.g. [{"laptop":40},{"phone":60}].
type Shares []Share

func (s Shares) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i, sh := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := json.Marshal(sh.Category)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "{%s:%d}", k, sh.Percent)
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// Percent returns the share of category, or 0 when it is absent.
func (s Shares) Percent(category string) int {
	for _, sh := range s {
		if sh.Category == category {
			return sh.Percent
		}
	}
	return 0
}

// CategoryShares looks up every category count concurrently and converts
// each to a rounded percentage of total. A zero total yields 0 for every
// category. The first failed lookup cancels the rest and is returned.
func CategoryShares(ctx context.Context, categories []string, total int, count CountFunc) (Shares, error) {
	out := make(Shares, len(categories))
	g, ctx := errgroup.WithContext(ctx)
	for i, c := range categories {
		g.Go(func() error {
			n, err := count(ctx, c)
			if err != nil {
				return fmt.Errorf("count category %q: %w", c, err)
			}
			out[i] = Share{Category: c, Percent: sharePercent(n, total)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func sharePercent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
