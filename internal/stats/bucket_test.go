package stats

import (
	"testing"
	"time"

	"ecom/internal/core"
)

func order(t time.Time, total float64) core.Order {
	return core.Order{CreatedAt: t, Total: total, Discount: total / 10}
}

func TestBucketLengthAndEmpty(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	for _, n := range []int{1, 6, 12} {
		s := Bucket([]core.Order(nil), n, ref, Count)
		if len(s) != n {
			t.Fatalf("len = %d, want %d", len(s), n)
		}
		if s.Sum() != 0 {
			t.Fatalf("expected all zero, got %v", s)
		}
	}
	if s := Bucket([]core.Order{order(ref, 1)}, 0, ref, Count); len(s) != 0 {
		t.Fatalf("expected empty series for n=0, got %v", s)
	}
}

func TestBucketPlacement(t *testing.T) {
	ref := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	orders := []core.Order{
		order(ref, 10),                  // current month, last slot
		order(ref.AddDate(0, -1, 0), 20), // May
		order(ref.AddDate(0, -5, 0), 30), // January, first slot
		order(ref.AddDate(0, -6, 0), 40), // December, dropped
		order(ref.AddDate(0, -8, 0), 50), // October, dropped
	}

	counts := Bucket(orders, 6, ref, Count)
	want := Series{1, 0, 0, 0, 1, 1}
	for i := range want {
		if counts[i] != want[i] {
			t.Fatalf("counts = %v, want %v", counts, want)
		}
	}

	totals := Bucket(orders, 6, ref, core.FieldTotal)
	wantTotals := Series{30, 0, 0, 0, 20, 10}
	for i := range wantTotals {
		if totals[i] != wantTotals[i] {
			t.Fatalf("totals = %v, want %v", totals, wantTotals)
		}
	}
}

func TestBucketYearWrap(t *testing.T) {
	ref := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	orders := []core.Order{
		order(time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC), 5),
		order(time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), 7),
	}
	s := Bucket(orders, 12, ref, core.FieldTotal)
	if s[9] != 5 || s[10] != 7 || s[11] != 0 {
		t.Fatalf("unexpected wrap placement: %v", s)
	}
}

func TestBucketUnknownFieldIsZero(t *testing.T) {
	ref := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	users := []core.User{{CreatedAt: ref}, {CreatedAt: ref}}
	if s := Bucket(users, 6, ref, core.FieldTotal); s.Sum() != 0 {
		t.Fatalf("expected zero sums, got %v", s)
	}
	if s := Bucket(users, 6, ref, Count); s[5] != 2 {
		t.Fatalf("expected count 2, got %v", s)
	}
}

func TestPercentChange(t *testing.T) {
	cases := []struct {
		cur, prev, want float64
	}{
		{0, 0, 0},
		{50, 0, 5000},
		{150, 100, 50},
		{50, 100, -50},
		{-10, 10, -200},
		{600, 100, 500},
	}
	for _, tc := range cases {
		if got := PercentChange(tc.cur, tc.prev); got != tc.want {
			t.Fatalf("PercentChange(%v, %v) = %v, want %v", tc.cur, tc.prev, got, tc.want)
		}
	}
}

func TestWindows(t *testing.T) {
	now := time.Date(2025, 3, 31, 18, 30, 0, 0, time.UTC)

	this := ThisMonth(now)
	if !this.Start.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) || !this.End.Equal(now) {
		t.Fatalf("unexpected this month: %+v", this)
	}

	last := LastMonth(now)
	if !last.Start.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last month start: %v", last.Start)
	}
	lastDay := time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC)
	if !last.Range().Contains(lastDay) {
		t.Fatalf("last month should include its final day")
	}
	if last.Range().Contains(this.Start) {
		t.Fatalf("last month must not overlap this month")
	}

	six := Trailing(now, 6)
	if !six.Start.Equal(time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected six month start: %v", six.Start)
	}
}
