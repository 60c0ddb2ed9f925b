package metrics

import (
	"math"
	"testing"
	"time"

	"stocklens/pkg/core/timeseries"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func series(pairs ...interface{}) timeseries.Series {
	points := make([]timeseries.Point, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		points = append(points, timeseries.Point{
			Date:  date(pairs[i].(string)),
			Value: pairs[i+1].(float64),
		})
	}
	return timeseries.New(points)
}

// =============================================================================
// TTM SUM
// =============================================================================

func TestTTMSumStrictFourQuarterWindow(t *testing.T) {
	quarterly := series(
		"2023-03-31", 10.0,
		"2023-06-30", 20.0,
		"2023-09-30", 30.0,
		"2023-12-31", 40.0,
	)

	ttm := TTMSum(quarterly)
	if ttm.Len() != 1 {
		t.Fatalf("4-point input must yield exactly 1 TTM point, got %d", ttm.Len())
	}
	rows := ttm.Rows()
	if rows[0].Value != 100 {
		t.Errorf("TTM value = %v, want 100", rows[0].Value)
	}
	if !rows[0].Date.Equal(date("2023-12-31")) {
		t.Errorf("TTM point must carry the window's last date, got %v", rows[0].Date)
	}
}

func TestTTMSumInsufficientData(t *testing.T) {
	quarterly := series("2023-06-30", 20.0, "2023-09-30", 30.0, "2023-12-31", 40.0)
	if ttm := TTMSum(quarterly); !ttm.IsEmpty() {
		t.Errorf("3-point input must yield an empty series, got %d points", ttm.Len())
	}
}

func TestTTMSumRollingWindow(t *testing.T) {
	quarterly := series(
		"2023-03-31", 10.0,
		"2023-06-30", 20.0,
		"2023-09-30", 30.0,
		"2023-12-31", 40.0,
		"2024-03-31", 50.0,
	)

	ttm := TTMSum(quarterly)
	rows := ttm.Rows()
	if len(rows) != 2 {
		t.Fatalf("5-point input must yield 2 TTM points, got %d", len(rows))
	}
	if rows[0].Value != 100 || rows[1].Value != 140 {
		t.Errorf("rolling sums = [%v, %v], want [100, 140]", rows[0].Value, rows[1].Value)
	}
}

// =============================================================================
// AVERAGE BALANCE
// =============================================================================

func TestAverageBalance(t *testing.T) {
	equity := series("2023-09-30", 60000.0, "2023-12-31", 62000.0, "2024-03-31", 64000.0)

	avg := AverageBalance(equity)
	rows := avg.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 averaged points, got %d", len(rows))
	}
	if rows[0].Value != 61000 || rows[1].Value != 63000 {
		t.Errorf("averages = [%v, %v], want [61000, 63000]", rows[0].Value, rows[1].Value)
	}
}

func TestAverageBalanceSinglePoint(t *testing.T) {
	if avg := AverageBalance(series("2023-12-31", 60000.0)); !avg.IsEmpty() {
		t.Error("single point has no trailing average")
	}
}

// =============================================================================
// YOY AND CAGR
// =============================================================================

func TestYoYSkipsZeroPrior(t *testing.T) {
	annual := series(
		"2021-12-31", 100.0,
		"2022-12-31", 0.0,
		"2023-12-31", 120.0,
	)

	growth := YoY(annual)
	if len(growth) != 1 {
		t.Fatalf("expected 1 growth entry (zero prior skipped), got %d: %v", len(growth), growth)
	}
	if math.Abs(growth["2022-12-31"]-(-1.0)) > 1e-9 {
		t.Errorf("2022 yoy = %v, want -1.0", growth["2022-12-31"])
	}
	if _, ok := growth["2023-12-31"]; ok {
		t.Error("growth from a zero base must be skipped, not reported as infinite")
	}
}

func TestCAGR(t *testing.T) {
	tests := []struct {
		name   string
		series timeseries.Series
		want   *float64
	}{
		{"Flat over one interval", series("2022-12-31", 100.0, "2023-12-31", 100.0), fp(0)},
		{"21% over one year", series("2022-12-31", 100.0, "2023-12-31", 121.0), fp(0.21)},
		{"Zero start undefined", series("2022-12-31", 0.0, "2023-12-31", 100.0), nil},
		{"Zero end undefined", series("2022-12-31", 100.0, "2023-12-31", 0.0), nil},
		{"Single point undefined", series("2023-12-31", 100.0), nil},
		{"10% over two years", series("2021-12-31", 100.0, "2022-12-31", 110.0, "2023-12-31", 121.0), fp(0.1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CAGR(tt.series)
			if tt.want == nil {
				if got != nil {
					t.Errorf("CAGR = %v, want undefined", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("CAGR undefined, want %v", *tt.want)
			}
			if math.Abs(*got-*tt.want) > 1e-9 {
				t.Errorf("CAGR = %v, want %v", *got, *tt.want)
			}
		})
	}
}

func fp(v float64) *float64 { return &v }

// =============================================================================
// RATIOS
// =============================================================================

func TestRatios(t *testing.T) {
	m := map[string]timeseries.Series{
		"revenue":           series("2022-12-31", 394328.0, "2023-12-31", 383285.0),
		"net_income":        series("2022-12-31", 99803.0, "2023-12-31", 96995.0),
		"gross_profit":      series("2022-12-31", 170782.0, "2023-12-31", 169148.0),
		"operating_income":  series("2022-12-31", 119437.0, "2023-12-31", 114301.0),
		"total_assets":      series("2022-12-31", 352755.0, "2023-12-31", 352583.0),
		"total_liabilities": series("2022-12-31", 302083.0, "2023-12-31", 290437.0),
		"total_equity":      series("2022-12-31", 50672.0, "2023-12-31", 62146.0),
	}

	ratios := Ratios(m)

	gross, _ := ratios["gross_margin"].Latest()
	if math.Abs(gross-169148.0/383285.0) > 1e-9 {
		t.Errorf("gross margin = %v", gross)
	}
	roe, _ := ratios["roe"].Latest()
	if math.Abs(roe-96995.0/62146.0) > 1e-9 {
		t.Errorf("roe = %v", roe)
	}
	dte, _ := ratios["debt_to_equity"].Latest()
	if math.Abs(dte-290437.0/62146.0) > 1e-9 {
		t.Errorf("debt_to_equity = %v", dte)
	}
	t.Logf("gross margin %.1f%%, ROE %.1f%%, D/E %.2f", gross*100, roe*100, dte)
}

func TestRatiosMissingInputYieldsEmptyRatio(t *testing.T) {
	m := map[string]timeseries.Series{
		"revenue":    series("2023-12-31", 383285.0),
		"net_income": series("2023-12-31", 96995.0),
		// gross_profit absent entirely
	}

	ratios := Ratios(m)
	if !ratios["gross_margin"].IsEmpty() {
		t.Error("gross margin must be entirely absent when gross profit is missing")
	}
	if ratios["net_margin"].IsEmpty() {
		t.Error("net margin should still be computed from its own inputs")
	}
}
