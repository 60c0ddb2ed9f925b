package valuation

import "stocklens/pkg/core/timeseries"

// Percentile ranks a current value against its own positive history: the
// share of positive historical observations at or below the current value,
// as a percentage. Undefined (nil) without a current value or any positive
// history.
func Percentile(current *float64, history timeseries.Series) *float64 {
	if current == nil {
		return nil
	}
	var positive, atOrBelow int
	for _, value := range history.Values() {
		if value <= 0 {
			continue
		}
		positive++
		if value <= *current {
			atOrBelow++
		}
	}
	if positive == 0 {
		return nil
	}
	rank := float64(atOrBelow) / float64(positive) * 100
	return &rank
}
