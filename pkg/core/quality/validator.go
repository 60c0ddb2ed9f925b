// Package quality runs independent data-quality checks against extracted
// financial data. Every failure is a warning, never fatal: the validator
// annotates the analysis, it does not gate it.
package quality

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Severity levels for validation results.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Frequency of a statement series for cadence checks.
type Frequency string

const (
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
)

// Result is the outcome of a single check.
type Result struct {
	Passed   bool                   `json:"passed"`
	Message  string                 `json:"message"`
	Severity string                 `json:"severity"`
	Details  map[string]interface{} `json:"details,omitempty"`
}

// Summary aggregates all results of a run.
type Summary struct {
	Total      int            `json:"total_checks"`
	Passed     int            `json:"passed"`
	Failed     int            `json:"failed"`
	BySeverity map[string]int `json:"by_severity"`
	Results    []Result       `json:"results"`
}

// Validator accumulates check results for one analysis run. It is not safe
// for concurrent use; create one per run.
type Validator struct {
	log     *logrus.Logger
	results []Result
}

// NewValidator creates a validator reporting failed checks to log.
func NewValidator(log *logrus.Logger) *Validator {
	return &Validator{log: log}
}

func (v *Validator) record(r Result) Result {
	v.results = append(v.results, r)
	if v.log != nil && !r.Passed {
		v.log.WithField("severity", r.Severity).Warn(r.Message)
	}
	return r
}

// CheckBalanceSheetEquation validates Assets = Liabilities + Equity within a
// relative tolerance. Missing or zero inputs usually signal incomplete data
// rather than a real violation, so the check is skipped as an info result.
func (v *Validator) CheckBalanceSheetEquation(assets, liabilities, equity *float64, tolerance float64) Result {
	if assets == nil || liabilities == nil || equity == nil {
		return v.record(Result{
			Passed:   true,
			Message:  "balance sheet equation check skipped (missing data)",
			Severity: SeverityInfo,
		})
	}
	if *assets == 0 || (*liabilities == 0 && *equity == 0) {
		return v.record(Result{
			Passed:   true,
			Message:  "balance sheet equation check skipped (zero values)",
			Severity: SeverityInfo,
		})
	}

	expected := *liabilities + *equity
	difference := math.Abs(*assets - expected)
	relative := difference / math.Abs(*assets)

	details := map[string]interface{}{
		"assets":              *assets,
		"liabilities":         *liabilities,
		"equity":              *equity,
		"difference":          difference,
		"relative_difference": relative,
		"tolerance":           tolerance,
	}

	if relative <= tolerance {
		return v.record(Result{
			Passed:   true,
			Message:  fmt.Sprintf("balance sheet equation validated (diff: %.2f%%)", relative*100),
			Severity: SeverityInfo,
			Details:  details,
		})
	}
	return v.record(Result{
		Passed: false,
		Message: fmt.Sprintf(
			"balance sheet equation mismatch: assets (%.0f) != liabilities (%.0f) + equity (%.0f), diff %.0f (%.2f%%)",
			*assets, *liabilities, *equity, difference, relative*100),
		Severity: SeverityWarning,
		Details:  details,
	})
}

// CheckMarginOrdering validates gross >= operating >= net, reporting each
// available pairwise comparison. Skipped when fewer than two margins are
// available.
func (v *Validator) CheckMarginOrdering(gross, operating, net *float64) Result {
	available := 0
	for _, m := range []*float64{gross, operating, net} {
		if m != nil {
			available++
		}
	}
	if available < 2 {
		return v.record(Result{
			Passed:   true,
			Message:  "margin ordering check skipped (insufficient data)",
			Severity: SeverityInfo,
		})
	}

	var issues []string
	if gross != nil && operating != nil && *gross < *operating {
		issues = append(issues, fmt.Sprintf("gross margin (%.2f%%) < operating margin (%.2f%%)", *gross*100, *operating*100))
	}
	if operating != nil && net != nil && *operating < *net {
		issues = append(issues, fmt.Sprintf("operating margin (%.2f%%) < net margin (%.2f%%)", *operating*100, *net*100))
	}
	if gross != nil && net != nil && *gross < *net {
		issues = append(issues, fmt.Sprintf("gross margin (%.2f%%) < net margin (%.2f%%)", *gross*100, *net*100))
	}

	details := map[string]interface{}{}
	if gross != nil {
		details["gross"] = *gross
	}
	if operating != nil {
		details["operating"] = *operating
	}
	if net != nil {
		details["net"] = *net
	}

	if len(issues) == 0 {
		return v.record(Result{
			Passed:   true,
			Message:  "margin ordering validated",
			Severity: SeverityInfo,
			Details:  details,
		})
	}
	message := "margin ordering issues: " + issues[0]
	for _, issue := range issues[1:] {
		message += "; " + issue
	}
	return v.record(Result{
		Passed:   false,
		Message:  message,
		Severity: SeverityWarning,
		Details:  details,
	})
}

// CheckCadence validates that consecutive statement dates fall within the
// expected interval for the frequency. Every out-of-band gap is reported
// individually in the details. An unknown frequency is a caller error.
func (v *Validator) CheckCadence(dates []time.Time, freq Frequency, toleranceDays int) (Result, error) {
	var minDays, maxDays int
	switch freq {
	case Quarterly:
		minDays, maxDays = 85-toleranceDays, 95+toleranceDays
	case Annual:
		minDays, maxDays = 360-toleranceDays, 370+toleranceDays
	default:
		return Result{}, fmt.Errorf("unknown frequency: %q", freq)
	}

	if len(dates) < 2 {
		return v.record(Result{
			Passed:   true,
			Message:  "statement cadence check skipped (insufficient data points)",
			Severity: SeverityInfo,
		}), nil
	}

	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	var totalDays int
	var irregular []map[string]interface{}
	for i := 1; i < len(sorted); i++ {
		days := int(sorted[i].Sub(sorted[i-1]).Hours() / 24)
		totalDays += days
		if days < minDays || days > maxDays {
			irregular = append(irregular, map[string]interface{}{
				"from": sorted[i-1].Format("2006-01-02"),
				"to":   sorted[i].Format("2006-01-02"),
				"days": days,
			})
		}
	}
	average := float64(totalDays) / float64(len(sorted)-1)

	if len(irregular) == 0 {
		return v.record(Result{
			Passed:   true,
			Message:  fmt.Sprintf("statement cadence is regular (%s, avg %.0f days)", freq, average),
			Severity: SeverityInfo,
			Details: map[string]interface{}{
				"expected_frequency":    string(freq),
				"average_interval_days": average,
			},
		}), nil
	}
	return v.record(Result{
		Passed: false,
		Message: fmt.Sprintf("%d irregular statement intervals detected (expected %s: %d-%d days)",
			len(irregular), freq, minDays, maxDays),
		Severity: SeverityWarning,
		Details: map[string]interface{}{
			"expected_frequency":    string(freq),
			"average_interval_days": average,
			"irregular_intervals":   irregular,
		},
	}), nil
}

// CheckRange validates that a value stays within the given bounds. Either
// bound may be nil for an open interval.
func (v *Validator) CheckRange(field string, value, minValue, maxValue *float64) Result {
	if value == nil {
		return v.record(Result{
			Passed:   true,
			Message:  fmt.Sprintf("range check skipped for %s (no value)", field),
			Severity: SeverityInfo,
		})
	}

	var issues []string
	if minValue != nil && *value < *minValue {
		issues = append(issues, fmt.Sprintf("%s (%v) < minimum (%v)", field, *value, *minValue))
	}
	if maxValue != nil && *value > *maxValue {
		issues = append(issues, fmt.Sprintf("%s (%v) > maximum (%v)", field, *value, *maxValue))
	}

	details := map[string]interface{}{"value": *value}
	if minValue != nil {
		details["min"] = *minValue
	}
	if maxValue != nil {
		details["max"] = *maxValue
	}

	if len(issues) == 0 {
		return v.record(Result{
			Passed:   true,
			Message:  fmt.Sprintf("%s is within valid range", field),
			Severity: SeverityInfo,
			Details:  details,
		})
	}
	message := "range validation failed: " + issues[0]
	if len(issues) > 1 {
		message += "; " + issues[1]
	}
	return v.record(Result{
		Passed:   false,
		Message:  message,
		Severity: SeverityWarning,
		Details:  details,
	})
}

// CheckOutlier flags suspicious period-over-period changes: a drop to zero
// from a non-zero prior (usually an extraction defect) or a change beyond
// thresholdPct percent.
func (v *Validator) CheckOutlier(item string, current, prior, thresholdPct float64) Result {
	details := map[string]interface{}{
		"item":      item,
		"value":     current,
		"prior":     prior,
		"threshold": thresholdPct,
	}

	if current == 0 && prior > 0 {
		return v.record(Result{
			Passed:   false,
			Message:  fmt.Sprintf("%s dropped to zero from %.0f (likely extraction error)", item, prior),
			Severity: SeverityWarning,
			Details:  details,
		})
	}

	if prior != 0 {
		changePct := (current - prior) / math.Abs(prior) * 100
		details["change_pct"] = changePct
		if math.Abs(changePct) > thresholdPct {
			return v.record(Result{
				Passed:   false,
				Message:  fmt.Sprintf("%s changed %.1f%%, beyond threshold %.1f%%", item, changePct, thresholdPct),
				Severity: SeverityWarning,
				Details:  details,
			})
		}
	}

	return v.record(Result{
		Passed:   true,
		Message:  fmt.Sprintf("%s change is within bounds", item),
		Severity: SeverityInfo,
		Details:  details,
	})
}

// Summary returns the run-level roll-up of all recorded checks.
func (v *Validator) Summary() Summary {
	bySeverity := map[string]int{
		SeverityInfo:    0,
		SeverityWarning: 0,
		SeverityError:   0,
	}
	passed := 0
	for _, r := range v.results {
		bySeverity[r.Severity]++
		if r.Passed {
			passed++
		}
	}
	return Summary{
		Total:      len(v.results),
		Passed:     passed,
		Failed:     len(v.results) - passed,
		BySeverity: bySeverity,
		Results:    append([]Result(nil), v.results...),
	}
}

// Reset clears all recorded results.
func (v *Validator) Reset() {
	v.results = nil
}
