package quality

import (
	"math"
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// =============================================================================
// BALANCE SHEET EQUATION
// =============================================================================

func TestBalanceSheetEquation(t *testing.T) {
	tests := []struct {
		name        string
		assets      *float64
		liabilities *float64
		equity      *float64
		wantPassed  bool
	}{
		{"Balanced", fp(100), fp(60), fp(40), true},
		{"Within 1% tolerance", fp(100), fp(60), fp(39.5), true},
		{"Mismatch", fp(100), fp(60), fp(30), false},
		{"Missing assets", nil, fp(60), fp(40), true},
		{"Zero assets skipped", fp(0), fp(60), fp(40), true},
		{"Zero liabilities and equity skipped", fp(100), fp(0), fp(0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(nil)
			result := v.CheckBalanceSheetEquation(tt.assets, tt.liabilities, tt.equity, 0.01)
			if result.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v (%s)", result.Passed, tt.wantPassed, result.Message)
			}
		})
	}
}

func TestBalanceSheetEquationReportsRelativeDifference(t *testing.T) {
	v := NewValidator(nil)
	result := v.CheckBalanceSheetEquation(fp(100), fp(60), fp(30), 0.01)
	if result.Passed {
		t.Fatal("expected failure for 10% gap")
	}
	relative, ok := result.Details["relative_difference"].(float64)
	if !ok {
		t.Fatal("details should carry the relative difference")
	}
	if math.Abs(relative-0.10) > 1e-9 {
		t.Errorf("relative difference = %v, want 0.10", relative)
	}
	if result.Severity != SeverityWarning {
		t.Errorf("failures must be warnings, got %q", result.Severity)
	}
}

// =============================================================================
// MARGIN ORDERING
// =============================================================================

func TestMarginOrdering(t *testing.T) {
	tests := []struct {
		name       string
		gross      *float64
		operating  *float64
		net        *float64
		wantPassed bool
	}{
		{"Proper ordering", fp(0.45), fp(0.30), fp(0.25), true},
		{"Net above gross", fp(0.20), nil, fp(0.25), false},
		{"Operating above gross", fp(0.20), fp(0.30), fp(0.10), false},
		{"Only one margin available", fp(0.45), nil, nil, true},
		{"None available", nil, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(nil)
			result := v.CheckMarginOrdering(tt.gross, tt.operating, tt.net)
			if result.Passed != tt.wantPassed {
				t.Errorf("passed = %v, want %v (%s)", result.Passed, tt.wantPassed, result.Message)
			}
		})
	}
}

// =============================================================================
// STATEMENT CADENCE
// =============================================================================

func TestCadenceQuarterlyRegular(t *testing.T) {
	v := NewValidator(nil)
	dates := []time.Time{
		date("2023-03-31"), date("2023-06-30"), date("2023-09-30"), date("2023-12-31"),
	}
	result, err := v.CheckCadence(dates, Quarterly, 10)
	if err != nil {
		t.Fatalf("CheckCadence failed: %v", err)
	}
	if !result.Passed {
		t.Errorf("regular quarterly dates should pass: %s", result.Message)
	}
}

func TestCadenceReportsEachGap(t *testing.T) {
	v := NewValidator(nil)
	// Missing Q2: the Q1->Q3 gap of ~183 days is out of band.
	dates := []time.Time{
		date("2023-03-31"), date("2023-09-30"), date("2023-12-31"),
	}
	result, err := v.CheckCadence(dates, Quarterly, 10)
	if err != nil {
		t.Fatalf("CheckCadence failed: %v", err)
	}
	if result.Passed {
		t.Fatal("a missing quarter should fail the cadence check")
	}
	irregular, ok := result.Details["irregular_intervals"].([]map[string]interface{})
	if !ok || len(irregular) != 1 {
		t.Fatalf("expected exactly 1 irregular interval reported, got %v", result.Details["irregular_intervals"])
	}
	if irregular[0]["from"] != "2023-03-31" || irregular[0]["to"] != "2023-09-30" {
		t.Errorf("wrong gap reported: %v", irregular[0])
	}
}

func TestCadenceAnnual(t *testing.T) {
	v := NewValidator(nil)
	dates := []time.Time{date("2021-12-31"), date("2022-12-31"), date("2023-12-31")}
	result, err := v.CheckCadence(dates, Annual, 10)
	if err != nil {
		t.Fatalf("CheckCadence failed: %v", err)
	}
	if !result.Passed {
		t.Errorf("regular annual dates should pass: %s", result.Message)
	}
}

func TestCadenceUnknownFrequencyIsCallerError(t *testing.T) {
	v := NewValidator(nil)
	if _, err := v.CheckCadence([]time.Time{date("2023-03-31")}, Frequency("weekly"), 10); err == nil {
		t.Error("unknown frequency must return an error")
	}
}

func TestCadenceInsufficientDataSkips(t *testing.T) {
	v := NewValidator(nil)
	result, err := v.CheckCadence([]time.Time{date("2023-03-31")}, Quarterly, 10)
	if err != nil {
		t.Fatalf("CheckCadence failed: %v", err)
	}
	if !result.Passed || result.Severity != SeverityInfo {
		t.Errorf("single date should skip as info, got %+v", result)
	}
}

// =============================================================================
// RANGE AND OUTLIERS
// =============================================================================

func TestCheckRange(t *testing.T) {
	v := NewValidator(nil)
	if r := v.CheckRange("gross_margin", fp(0.45), fp(-1), fp(1)); !r.Passed {
		t.Errorf("0.45 in [-1,1] should pass: %s", r.Message)
	}
	if r := v.CheckRange("gross_margin", fp(1.8), fp(-1), fp(1)); r.Passed {
		t.Error("1.8 above max should fail")
	}
	if r := v.CheckRange("gross_margin", nil, fp(-1), fp(1)); !r.Passed {
		t.Error("missing value should skip as pass")
	}
}

func TestCheckOutlier(t *testing.T) {
	v := NewValidator(nil)
	if r := v.CheckOutlier("revenue", 0, 5000, 200); r.Passed {
		t.Error("drop to zero from non-zero prior should be flagged")
	}
	if r := v.CheckOutlier("revenue", 400, 100, 200); r.Passed {
		t.Error("300% change should exceed a 200% threshold")
	}
	if r := v.CheckOutlier("revenue", 110, 100, 200); !r.Passed {
		t.Errorf("10%% change should pass: %s", r.Message)
	}
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestSummaryCounts(t *testing.T) {
	v := NewValidator(nil)
	v.CheckBalanceSheetEquation(fp(100), fp(60), fp(40), 0.01) // pass
	v.CheckBalanceSheetEquation(fp(100), fp(60), fp(30), 0.01) // fail
	v.CheckMarginOrdering(fp(0.2), nil, fp(0.4))               // fail

	summary := v.Summary()
	if summary.Total != 3 || summary.Passed != 1 || summary.Failed != 2 {
		t.Errorf("summary counts wrong: %+v", summary)
	}
	if summary.BySeverity[SeverityWarning] != 2 {
		t.Errorf("expected 2 warnings, got %d", summary.BySeverity[SeverityWarning])
	}
	if len(summary.Results) != 3 {
		t.Errorf("expected 3 results, got %d", len(summary.Results))
	}

	v.Reset()
	if v.Summary().Total != 0 {
		t.Error("Reset should clear results")
	}
}
