package metrics

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"stocklens/pkg/core/config"
	"stocklens/pkg/core/fields"
	"stocklens/pkg/core/payload"
	"stocklens/pkg/core/quality"
	"stocklens/pkg/core/statement"
	"stocklens/pkg/core/timeseries"
)

// Company is the metadata block carried into the analysis output.
type Company struct {
	Name     string `json:"name,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
	Currency string `json:"currency,omitempty"`
	Summary  string `json:"summary,omitempty"`
	Country  string `json:"country,omitempty"`
	Website  string `json:"website,omitempty"`
}

// GrowthBlock carries year-over-year and compound growth figures.
type GrowthBlock struct {
	RevenueYoY    map[string]float64 `json:"revenue_yoy"`
	NetIncomeYoY  map[string]float64 `json:"net_income_yoy"`
	RevenueCAGR   *float64           `json:"revenue_cagr"`
	NetIncomeCAGR *float64           `json:"net_income_cagr"`
}

// PriceBlock carries the daily close history and its latest value.
type PriceBlock struct {
	History map[string]float64 `json:"history"`
	Latest  *float64           `json:"latest"`
}

// DataQuality bundles the validation summary with field-matching telemetry.
type DataQuality struct {
	Validation    quality.Summary `json:"validation"`
	FieldMatching fields.Summary  `json:"field_matching"`
}

// Analysis is the full analysis output for one symbol. All series are
// serialized as ISO-date-keyed maps.
type Analysis struct {
	RunID               string                        `json:"run_id"`
	Symbol              string                        `json:"symbol"`
	Market              string                        `json:"market,omitempty"`
	DataFetchedAt       string                        `json:"data_fetched_at,omitempty"`
	Company             Company                       `json:"company"`
	GeneratedAt         string                        `json:"generated_at"`
	Financials          map[string]map[string]float64 `json:"financials"`
	FinancialsQuarterly map[string]map[string]float64 `json:"financials_quarterly"`
	FinancialsTTM       map[string]map[string]float64 `json:"financials_ttm"`
	PerShareQuarterly   map[string]map[string]float64 `json:"per_share_quarterly"`
	PerShareTTM         map[string]map[string]float64 `json:"per_share_ttm"`
	BalanceQuarterly    map[string]map[string]float64 `json:"balance_quarterly"`
	Ratios              map[string]map[string]float64 `json:"ratios"`
	RatiosTTM           map[string]map[string]float64 `json:"ratios_ttm"`
	Growth              GrowthBlock                   `json:"growth"`
	Price               PriceBlock                    `json:"price"`
	DataQuality         DataQuality                   `json:"data_quality"`
}

// Snapshot carries the intermediate series the valuation engine consumes, so
// it never has to re-parse the serialized analysis.
type Snapshot struct {
	Price             timeseries.Series
	EPSTTM            timeseries.Series
	SalesPerShareTTM  timeseries.Series
	EBITDAPerShareTTM timeseries.Series
	FCFPerShareTTM    timeseries.Series
	BookPerShare      timeseries.Series
	NetDebtPerShare   timeseries.Series
	FreeCashFlowTTM   timeseries.Series
	NetDebt           timeseries.Series
	SharesOutstanding timeseries.Series
}

// Engine assembles the analysis output from a fetched-data payload.
type Engine struct {
	log       *logrus.Logger
	cfg       config.Config
	extractor *statement.Extractor
}

// NewEngine creates a metrics engine with the given configuration.
func NewEngine(cfg config.Config, log *logrus.Logger) *Engine {
	return &Engine{log: log, cfg: cfg, extractor: statement.NewExtractor(log)}
}

var annualMetricNames = []string{
	"revenue", "net_income", "gross_profit", "operating_income", "ebitda",
}

var quarterlyIncomeNames = []string{
	"revenue", "net_income", "gross_profit", "operating_income", "ebitda",
	"diluted_avg_shares", "basic_avg_shares",
}

var quarterlyBalanceNames = []string{
	"total_assets", "total_liabilities", "total_equity",
	"shares_outstanding", "total_debt", "net_debt", "cash",
}

// BuildAnalysis extracts every canonical metric from the payload, derives
// per-share, TTM, ratio and growth figures, runs the quality checks and
// returns the assembled analysis together with the valuation snapshot.
// Missing upstream data degrades to empty blocks, never to an error.
func (e *Engine) BuildAnalysis(p payload.Payload) (*Analysis, *Snapshot) {
	symbol := p.String("symbol")
	if e.log != nil {
		e.log.WithField("symbol", symbol).Info("building analysis")
	}

	tracker := fields.NewTracker()
	validator := quality.NewValidator(e.log)
	info := p.Info()

	income := p.Statement("financials", "income_statement")
	balance := p.Statement("financials", "balance_sheet")
	cashflow := p.Statement("financials", "cashflow")

	incomeQ := p.Statement("financials_quarterly", "income_statement")
	balanceQ := p.Statement("financials_quarterly", "balance_sheet")
	cashflowQ := p.Statement("financials_quarterly", "cashflow")

	annual := map[string]timeseries.Series{}
	for _, name := range annualMetricNames {
		annual[name] = e.extractor.Metric(income, name, tracker)
	}
	for _, name := range []string{"total_assets", "total_liabilities", "total_equity"} {
		annual[name] = e.extractor.Metric(balance, name, tracker)
	}
	annual["free_cash_flow"] = e.extractor.Metric(cashflow, "free_cash_flow", tracker)

	quarterly := map[string]timeseries.Series{}
	for _, name := range quarterlyIncomeNames {
		quarterly[name] = e.extractor.Metric(incomeQ, name, tracker)
	}
	for _, name := range quarterlyBalanceNames {
		quarterly[name] = e.extractor.Metric(balanceQ, name, tracker)
	}
	quarterly["free_cash_flow"] = e.extractor.Metric(cashflowQ, "free_cash_flow", tracker)

	price := e.extractor.Price(p.PriceHistory(), tracker)

	revenueQ := quarterly["revenue"]
	netIncomeQ := quarterly["net_income"]
	ebitdaQ := quarterly["ebitda"]
	fcfQ := quarterly["free_cash_flow"]
	dilutedSharesQ := quarterly["diluted_avg_shares"]

	epsQ := PerShare(netIncomeQ, dilutedSharesQ)
	epsTTM := TTMSum(epsQ)
	salesPerShareQ := PerShare(revenueQ, dilutedSharesQ)
	salesPerShareTTM := TTMSum(salesPerShareQ)
	ebitdaPerShareQ := PerShare(ebitdaQ, dilutedSharesQ)
	ebitdaPerShareTTM := TTMSum(ebitdaPerShareQ)
	fcfPerShareQ := PerShare(fcfQ, dilutedSharesQ)
	fcfPerShareTTM := TTMSum(fcfPerShareQ)

	revenueTTM := TTMSum(revenueQ)
	netIncomeTTM := TTMSum(netIncomeQ)
	ebitdaTTM := TTMSum(ebitdaQ)
	fcfTTM := TTMSum(fcfQ)

	totalEquityQ := quarterly["total_equity"]
	totalAssetsQ := quarterly["total_assets"]
	netDebtQ := quarterly["net_debt"]
	sharesOutstandingQ := quarterly["shares_outstanding"]

	bookPerShareQ := PerShare(totalEquityQ, sharesOutstandingQ)
	netDebtPerShareQ := PerShare(netDebtQ, sharesOutstandingQ)

	roeTTM := TTMRatio(netIncomeTTM, AverageBalance(totalEquityQ))
	roaTTM := TTMRatio(netIncomeTTM, AverageBalance(totalAssetsQ))

	ratios := Ratios(annual)

	e.validate(validator, quarterly, annual, ratios)

	latestPrice := latestPtr(price)

	analysis := &Analysis{
		RunID:         uuid.NewString(),
		Symbol:        symbol,
		Market:        p.String("market"),
		DataFetchedAt: p.String("fetched_at"),
		Company: Company{
			Name:     info.FirstString("longName", "shortName"),
			Sector:   info.String("sector"),
			Industry: info.String("industry"),
			Currency: info.String("currency"),
			Summary:  info.FirstString("longBusinessSummary", "shortBusinessSummary"),
			Country:  info.String("country"),
			Website:  info.String("website"),
		},
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Financials:  toDicts(annual),
		FinancialsQuarterly: toDicts(map[string]timeseries.Series{
			"revenue":            revenueQ,
			"net_income":         netIncomeQ,
			"ebitda":             ebitdaQ,
			"free_cash_flow":     fcfQ,
			"diluted_avg_shares": dilutedSharesQ,
		}),
		FinancialsTTM: toDicts(map[string]timeseries.Series{
			"revenue":        revenueTTM,
			"net_income":     netIncomeTTM,
			"ebitda":         ebitdaTTM,
			"free_cash_flow": fcfTTM,
		}),
		PerShareQuarterly: toDicts(map[string]timeseries.Series{
			"eps":            epsQ,
			"sales":          salesPerShareQ,
			"ebitda":         ebitdaPerShareQ,
			"free_cash_flow": fcfPerShareQ,
		}),
		PerShareTTM: toDicts(map[string]timeseries.Series{
			"eps":            epsTTM,
			"sales":          salesPerShareTTM,
			"ebitda":         ebitdaPerShareTTM,
			"free_cash_flow": fcfPerShareTTM,
		}),
		BalanceQuarterly: toDicts(map[string]timeseries.Series{
			"total_equity":       totalEquityQ,
			"shares_outstanding": sharesOutstandingQ,
			"book_per_share":     bookPerShareQ,
			"net_debt":           netDebtQ,
			"total_debt":         quarterly["total_debt"],
			"cash":               quarterly["cash"],
			"net_debt_per_share": netDebtPerShareQ,
		}),
		Ratios: toDicts(ratios),
		RatiosTTM: toDicts(map[string]timeseries.Series{
			"roe": roeTTM,
			"roa": roaTTM,
		}),
		Growth: GrowthBlock{
			RevenueYoY:    YoY(annual["revenue"]),
			NetIncomeYoY:  YoY(annual["net_income"]),
			RevenueCAGR:   CAGR(annual["revenue"]),
			NetIncomeCAGR: CAGR(annual["net_income"]),
		},
		Price: PriceBlock{
			History: price.ToDict(),
			Latest:  latestPrice,
		},
		DataQuality: DataQuality{
			Validation:    validator.Summary(),
			FieldMatching: tracker.Summary(),
		},
	}

	snapshot := &Snapshot{
		Price:             price,
		EPSTTM:            epsTTM,
		SalesPerShareTTM:  salesPerShareTTM,
		EBITDAPerShareTTM: ebitdaPerShareTTM,
		FCFPerShareTTM:    fcfPerShareTTM,
		BookPerShare:      bookPerShareQ,
		NetDebtPerShare:   netDebtPerShareQ,
		FreeCashFlowTTM:   fcfTTM,
		NetDebt:           netDebtQ,
		SharesOutstanding: sharesOutstandingQ,
	}

	if e.log != nil {
		summary := analysis.DataQuality.Validation
		e.log.WithFields(logrus.Fields{
			"symbol": symbol,
			"passed": summary.Passed,
			"total":  summary.Total,
		}).Info("validation complete")
	}

	return analysis, snapshot
}

// validate runs the quality checks over the freshest extracted figures.
func (e *Engine) validate(v *quality.Validator, quarterly, annual map[string]timeseries.Series, ratios map[string]timeseries.Series) {
	v.CheckBalanceSheetEquation(
		latestPtr(quarterly["total_assets"]),
		latestPtr(quarterly["total_liabilities"]),
		latestPtr(quarterly["total_equity"]),
		e.cfg.BalanceSheetTolerance,
	)

	gross := latestPtr(ratios["gross_margin"])
	operating := latestPtr(ratios["operating_margin"])
	net := latestPtr(ratios["net_margin"])
	v.CheckMarginOrdering(gross, operating, net)

	lo, hi := -1.0, 1.0
	v.CheckRange("gross_margin", gross, &lo, &hi)
	v.CheckRange("operating_margin", operating, &lo, &hi)
	v.CheckRange("net_margin", net, &lo, &hi)

	if dates := quarterly["revenue"].Dates(); len(dates) >= 2 {
		v.CheckCadence(dates, quality.Quarterly, e.cfg.QuarterlyToleranceDays)
	}
	if dates := annual["revenue"].Dates(); len(dates) >= 2 {
		v.CheckCadence(dates, quality.Annual, e.cfg.QuarterlyToleranceDays)
	}

	for _, name := range []string{"revenue", "net_income"} {
		rows := annual[name].Rows()
		if len(rows) >= 2 {
			v.CheckOutlier(name, rows[len(rows)-1].Value, rows[len(rows)-2].Value, e.cfg.OutlierThresholdPct)
		}
	}
}

func toDicts(m map[string]timeseries.Series) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(m))
	for name, s := range m {
		out[name] = s.ToDict()
	}
	return out
}

func latestPtr(s timeseries.Series) *float64 {
	value, ok := s.Latest()
	if !ok {
		return nil
	}
	return &value
}
