package stats

import (
	"time"
)

// Record is anything with a creation time and named numeric fields.
type Record interface {
	Timestamp() time.Time
	Numeric(field string) float64
}

// Field names the numeric value a series accumulates. Count adds one per
// record.
type Field string

const Count Field = ""

// Series holds one value per month, oldest first; the last slot is the
// reference month.
type Series []float64

// Bucket accumulates records into an n-month series ending at ref's month.
// Months are compared modulo 12 in ref's location, and records whose month
// distance is n or more are dropped.
func Bucket[R Record](records []R, n int, ref time.Time, field Field) Series {
	if n <= 0 {
		return Series{}
	}
	out := make(Series, n)
	refMonth := int(ref.Month())
	for _, r := range records {
		month := int(r.Timestamp().In(ref.Location()).Month())
		diff := (refMonth - month + 12) % 12
		if diff >= n {
			continue
		}
		if field == Count {
			out[n-diff-1]++
		} else {
			out[n-diff-1] += r.Numeric(string(field))
		}
	}
	return out
}

// Sum returns the total over all months.
func (s Series) Sum() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}
