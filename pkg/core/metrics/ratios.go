package metrics

import "stocklens/pkg/core/timeseries"

// Ratios computes the standard ratio set from canonical annual series. Each
// ratio is a date-aligned divide between two series; when either input is
// entirely absent the ratio comes back as an empty series, never a partial
// one built from mismatched periods.
func Ratios(m map[string]timeseries.Series) map[string]timeseries.Series {
	revenue := m["revenue"]
	netIncome := m["net_income"]
	grossProfit := m["gross_profit"]
	operatingIncome := m["operating_income"]
	totalAssets := m["total_assets"]
	totalEquity := m["total_equity"]
	totalLiabilities := m["total_liabilities"]

	return map[string]timeseries.Series{
		"gross_margin":     grossProfit.Divide(revenue),
		"operating_margin": operatingIncome.Divide(revenue),
		"net_margin":       netIncome.Divide(revenue),
		"roe":              netIncome.Divide(totalEquity),
		"roa":              netIncome.Divide(totalAssets),
		"debt_to_equity":   totalLiabilities.Divide(totalEquity),
	}
}
