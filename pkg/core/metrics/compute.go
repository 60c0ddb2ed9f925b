// Package metrics derives per-share values, TTM aggregates, ratios and growth
// figures from extracted time series, and assembles the analysis payload.
// Every computation is pure: missing inputs yield empty outputs, never errors.
package metrics

import (
	"math"

	"stocklens/pkg/core/timeseries"
)

// PerShare divides a statement aggregate by a share-count series, inner-joined
// by date. Used for EPS, sales/share, EBITDA/share and FCF/share.
func PerShare(numerator, shares timeseries.Series) timeseries.Series {
	return numerator.Divide(shares)
}

// TTMSum computes a trailing-twelve-month rolling sum over a quarterly
// series: each output date carries the sum of its own and the three prior
// quarters. The first three dates have no TTM value and are omitted; this is
// a strict four-quarter rule, not a partial-window approximation.
func TTMSum(s timeseries.Series) timeseries.Series {
	rows := s.Rows()
	if len(rows) < 4 {
		return timeseries.Series{}
	}
	points := make([]timeseries.Point, 0, len(rows)-3)
	for i := 3; i < len(rows); i++ {
		sum := rows[i-3].Value + rows[i-2].Value + rows[i-1].Value + rows[i].Value
		points = append(points, timeseries.Point{Date: rows[i].Date, Value: sum})
	}
	return timeseries.New(points)
}

// AverageBalance computes a trailing two-point rolling mean, used to average
// beginning and ending balances for ROE/ROA denominators. Requires at least
// two points.
func AverageBalance(s timeseries.Series) timeseries.Series {
	rows := s.Rows()
	if len(rows) < 2 {
		return timeseries.Series{}
	}
	points := make([]timeseries.Point, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		points = append(points, timeseries.Point{
			Date:  rows[i].Date,
			Value: (rows[i-1].Value + rows[i].Value) / 2,
		})
	}
	return timeseries.New(points)
}

// TTMRatio divides a TTM numerator by an average-balance denominator with a
// date-aligned inner join. Used for ROE(TTM) and ROA(TTM).
func TTMRatio(ttmNumerator, averageDenominator timeseries.Series) timeseries.Series {
	return ttmNumerator.Divide(averageDenominator)
}

// YoY computes period-over-period growth, keyed by the later period's ISO
// date. Periods whose prior value is zero are skipped, not reported as
// infinite.
func YoY(s timeseries.Series) map[string]float64 {
	rows := s.Rows()
	out := map[string]float64{}
	for i := 1; i < len(rows); i++ {
		prev := rows[i-1].Value
		if prev == 0 {
			continue
		}
		out[rows[i].Date.Format("2006-01-02")] = rows[i].Value/prev - 1
	}
	return out
}

// CAGR computes the compound growth rate over the full span of the series,
// with years = max(pointCount-1, 1). Undefined (nil) for fewer than two
// points, a zero start value, or a non-positive end/start ratio that has no
// real root.
func CAGR(s timeseries.Series) *float64 {
	rows := s.Rows()
	if len(rows) < 2 {
		return nil
	}
	start := rows[0].Value
	end := rows[len(rows)-1].Value
	if start == 0 {
		return nil
	}
	ratio := end / start
	if ratio <= 0 {
		return nil
	}
	years := len(rows) - 1
	if years < 1 {
		years = 1
	}
	cagr := math.Pow(ratio, 1/float64(years)) - 1
	return &cagr
}
