package valuation

import (
	"math"

	"stocklens/pkg/core/config"
)

// Assumptions echoes the inputs of a DCF computation back into the output so
// downstream consumers can label the result.
type Assumptions struct {
	DiscountRate   float64 `json:"discount_rate"`
	GrowthRate     float64 `json:"growth_rate"`
	TerminalGrowth float64 `json:"terminal_growth"`
	Years          int     `json:"years"`
}

// DCFResult holds the valuation outputs.
type DCFResult struct {
	Assumptions     Assumptions `json:"assumptions"`
	EnterpriseValue float64     `json:"enterprise_value"`
	EquityValue     float64     `json:"equity_value"`
	PerShare        float64     `json:"per_share"`
	PVCashFlows     float64     `json:"pv_cash_flows"`
	PVTerminal      float64     `json:"pv_terminal"`
}

// ComputeDCF discounts forecast years of cash flow grown at the assumed rate,
// adds a Gordon-growth terminal value discounted back over the forecast span,
// subtracts net debt for equity value and divides by the share count.
//
// Returns nil for a non-positive cash-flow base or a missing share count:
// the model has no meaning on negative cash flow, so no partial result is
// produced. A discount rate at or below terminal growth has no finite
// terminal value and is likewise rejected.
func ComputeDCF(freeCashFlow, netDebt, sharesOutstanding float64, cfg config.DCFConfig) *DCFResult {
	if freeCashFlow <= 0 || sharesOutstanding <= 0 {
		return nil
	}
	if cfg.DiscountRate <= cfg.TerminalGrowth {
		return nil
	}

	var pvCashFlows float64
	for year := 1; year <= cfg.ForecastYears; year++ {
		grown := freeCashFlow * math.Pow(1+cfg.GrowthRate, float64(year))
		pvCashFlows += grown / math.Pow(1+cfg.DiscountRate, float64(year))
	}

	terminal := freeCashFlow * math.Pow(1+cfg.GrowthRate, float64(cfg.ForecastYears)) *
		(1 + cfg.TerminalGrowth) / (cfg.DiscountRate - cfg.TerminalGrowth)
	pvTerminal := terminal / math.Pow(1+cfg.DiscountRate, float64(cfg.ForecastYears))

	enterpriseValue := pvCashFlows + pvTerminal
	equityValue := enterpriseValue - netDebt

	return &DCFResult{
		Assumptions: Assumptions{
			DiscountRate:   cfg.DiscountRate,
			GrowthRate:     cfg.GrowthRate,
			TerminalGrowth: cfg.TerminalGrowth,
			Years:          cfg.ForecastYears,
		},
		EnterpriseValue: enterpriseValue,
		EquityValue:     equityValue,
		PerShare:        equityValue / sharesOutstanding,
		PVCashFlows:     pvCashFlows,
		PVTerminal:      pvTerminal,
	}
}
