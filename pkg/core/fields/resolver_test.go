package fields

import (
	"math"
	"testing"
)

func newTestResolver() *Resolver {
	return NewResolver(nil)
}

func TestMatchExactWins(t *testing.T) {
	r := newTestResolver()
	keys := []string{"total revenue", "Total Revenue", "Revenue"}

	// "Revenue" matches exactly even though "Total Revenue" (higher priority
	// candidate) would also hit case-insensitively via "total revenue".
	got, ok := r.Match(keys, []string{"Total Revenue", "Revenue"}, nil)
	if !ok || got != "Total Revenue" {
		t.Fatalf("expected exact match 'Total Revenue', got %q (ok=%v)", got, ok)
	}
}

func TestMatchTierOrdering(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		candidates []string
		want       string
	}{
		{
			"Exact beats case-insensitive",
			[]string{"NET INCOME", "Net Income"},
			[]string{"Net Income"},
			"Net Income",
		},
		{
			"Case-insensitive beats normalized",
			[]string{"total-revenue", "TOTAL REVENUE"},
			[]string{"Total Revenue"},
			"TOTAL REVENUE",
		},
		{
			"Normalized as last resort",
			[]string{"Total_Revenue "},
			[]string{"Total Revenue"},
			"Total_Revenue ",
		},
		{
			"Chinese label exact",
			[]string{"营业总收入", "营业收入"},
			[]string{"Total Revenue", "营业总收入"},
			"营业总收入",
		},
	}

	r := newTestResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.keys, tt.candidates, nil)
			if !ok {
				t.Fatalf("expected a match for %v", tt.candidates)
			}
			if got != tt.want {
				t.Errorf("Match = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMatchRecordsFuzzyTelemetry(t *testing.T) {
	r := newTestResolver()
	tracker := NewTracker()

	got, ok := r.Match([]string{"total-revenue"}, []string{"Total Revenue"}, tracker)
	if !ok || got != "total-revenue" {
		t.Fatalf("expected fuzzy match, got %q (ok=%v)", got, ok)
	}

	summary := tracker.Summary()
	if summary.FuzzyMatches != 1 {
		t.Fatalf("expected 1 fuzzy match recorded, got %d", summary.FuzzyMatches)
	}
	fuzzy := summary.Fuzzy[0]
	if fuzzy.Field != "Total Revenue" || fuzzy.Matched != "total-revenue" {
		t.Errorf("unexpected fuzzy record %+v", fuzzy)
	}
	// normalized "totalrevenue" is 12 runes, longer raw side is 13 runes.
	want := 12.0 / 13.0
	if math.Abs(fuzzy.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v", fuzzy.Confidence, want)
	}
}

func TestMatchRecordsMissingField(t *testing.T) {
	r := newTestResolver()
	tracker := NewTracker()

	_, ok := r.Match([]string{"Cost Of Revenue"}, []string{"EBITDA", "Normalized EBITDA"}, tracker)
	if ok {
		t.Fatal("expected no match")
	}

	summary := tracker.Summary()
	if summary.MissingFields != 1 {
		t.Fatalf("expected 1 missing field recorded, got %d", summary.MissingFields)
	}
	if summary.Missing[0].Field != "EBITDA" {
		t.Errorf("missing field should name the first candidate, got %q", summary.Missing[0].Field)
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Total Revenue", "totalrevenue"},
		{"Net-Income (Common)", "netincomecommon"},
		{"营业总收入", "营业总收入"},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCatalog(t *testing.T) {
	candidates, ok := Candidates("revenue")
	if !ok {
		t.Fatal("catalog should define revenue")
	}
	if candidates[0] != "Total Revenue" {
		t.Errorf("revenue candidates should start with the most specific label, got %q", candidates[0])
	}

	if _, ok := Candidates("no_such_metric"); ok {
		t.Error("unknown metric should not resolve")
	}

	if len(Metrics()) < 10 {
		t.Errorf("catalog unexpectedly small: %d metrics", len(Metrics()))
	}
}
