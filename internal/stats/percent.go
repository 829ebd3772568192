package stats

// PercentChange is the relative change from previous to current, in percent.
// With a zero baseline it returns current*100, so (0, 0) is 0 and (50, 0)
// is 5000. The result is not rounded.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return current * 100
	}
	return (current - previous) / previous * 100
}
