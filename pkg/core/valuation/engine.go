package valuation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"stocklens/pkg/core/config"
	"stocklens/pkg/core/metrics"
	"stocklens/pkg/core/payload"
	"stocklens/pkg/core/timeseries"
)

// Currency describes the market/reporting currency relationship of one run.
// Converted stays false when the currencies already agree or when the rate
// fetch failed and the engine fell back to unconverted values.
type Currency struct {
	Market    string  `json:"market"`
	Financial string  `json:"financial"`
	FXRate    float64 `json:"fx_rate"`
	Converted bool    `json:"converted"`
}

// Current holds the latest market observations.
type Current struct {
	Price     *float64 `json:"price"`
	MarketCap *float64 `json:"market_cap"`
}

// Valuation is the full valuation output for one symbol.
type Valuation struct {
	RunID       string                        `json:"run_id"`
	Symbol      string                        `json:"symbol"`
	GeneratedAt string                        `json:"generated_at"`
	Current     Current                       `json:"current"`
	Metrics     map[string]*float64           `json:"metrics"`
	History     map[string]map[string]float64 `json:"history"`
	Percentiles map[string]*float64           `json:"percentiles"`
	Currency    Currency                      `json:"currency"`
	DCF         *DCFResult                    `json:"dcf,omitempty"`
}

// Engine computes the valuation payload. Its single blocking dependency is
// the FX rate fetch; everything else is pure computation over the analysis
// snapshot.
type Engine struct {
	log     *logrus.Logger
	cfg     config.Config
	fetcher RateFetcher
}

// NewEngine creates a valuation engine. A nil fetcher disables currency
// conversion entirely.
func NewEngine(cfg config.Config, fetcher RateFetcher, log *logrus.Logger) *Engine {
	return &Engine{log: log, cfg: cfg, fetcher: fetcher}
}

// BuildValuation derives daily multiples, percentile ranks, currency metadata
// and a DCF valuation from the fetched payload and the analysis snapshot.
// The output is always produced; degraded inputs degrade individual blocks,
// never the whole payload.
func (e *Engine) BuildValuation(ctx context.Context, p payload.Payload, analysis *metrics.Analysis, snap *metrics.Snapshot) *Valuation {
	info := p.Info()
	currency := e.resolveCurrency(ctx, info)

	convert := func(s timeseries.Series) timeseries.Series {
		if currency.Converted {
			return s.Scale(currency.FXRate)
		}
		return s
	}

	price := snap.Price

	// The market only knows the last reported fundamentals until the next
	// filing, so each snapshot is backward-filled onto the daily price index.
	eps := convert(snap.EPSTTM).AlignAsOf(price)
	sales := convert(snap.SalesPerShareTTM).AlignAsOf(price)
	ebitda := convert(snap.EBITDAPerShareTTM).AlignAsOf(price)
	book := convert(snap.BookPerShare).AlignAsOf(price)
	netDebt := convert(snap.NetDebtPerShare).AlignAsOf(price)

	pe := price.DividePositive(eps)
	ps := price.Divide(sales)
	pb := price.Divide(book)

	// Without a net-debt series the enterprise value degrades to price alone
	// rather than losing the multiple entirely.
	evBase := price
	if !netDebt.IsEmpty() {
		evBase = price.Add(netDebt)
	}
	evToEbitda := evBase.DividePositive(ebitda)

	currentPE := latest(pe)
	currentPS := latest(ps)
	currentPB := latest(pb)
	currentEV := latest(evToEbitda)

	valuation := &Valuation{
		RunID:       analysis.RunID,
		Symbol:      analysis.Symbol,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Current: Current{
			Price:     latest(price),
			MarketCap: infoFloat(info, "marketCap"),
		},
		Metrics: map[string]*float64{
			"pe":           currentPE,
			"forward_pe":   infoFloat(info, "forwardPE"),
			"ps":           currentPS,
			"pb":           currentPB,
			"ev_to_ebitda": currentEV,
			"peg":          infoFloat(info, "pegRatio"),
		},
		History: map[string]map[string]float64{
			"pe":           pe.ToDict(),
			"ps":           ps.ToDict(),
			"pb":           pb.ToDict(),
			"ev_to_ebitda": evToEbitda.ToDict(),
		},
		Percentiles: map[string]*float64{
			"pe":           Percentile(currentPE, pe),
			"ps":           Percentile(currentPS, ps),
			"pb":           Percentile(currentPB, pb),
			"ev_to_ebitda": Percentile(currentEV, evToEbitda),
		},
		Currency: currency,
		DCF:      e.dcf(snap, info),
	}

	if e.log != nil {
		e.log.WithFields(logrus.Fields{
			"symbol":    valuation.Symbol,
			"converted": currency.Converted,
		}).Info("valuation complete")
	}
	return valuation
}

// resolveCurrency determines the market/reporting currency pair and fetches
// an FX rate when they differ. Fetch failure falls back to rate 1.0 with
// conversion disabled; a missing rate must never fail the whole valuation.
func (e *Engine) resolveCurrency(ctx context.Context, info payload.Info) Currency {
	currency := Currency{
		Market:    info.String("currency"),
		Financial: info.String("financialCurrency"),
		FXRate:    1.0,
	}
	if currency.Market == "" || currency.Financial == "" || currency.Market == currency.Financial {
		return currency
	}
	if e.fetcher == nil {
		return currency
	}

	for attempt := 1; attempt <= e.cfg.CurrencyFetchRetries; attempt++ {
		rate, err := e.fetcher.Rate(ctx, currency.Financial, currency.Market)
		if err == nil {
			currency.FXRate = rate
			currency.Converted = true
			return currency
		}
		if e.log != nil {
			e.log.WithError(err).Warnf("FX rate fetch attempt %d/%d failed (%s/%s)",
				attempt, e.cfg.CurrencyFetchRetries, currency.Financial, currency.Market)
		}
		if attempt < e.cfg.CurrencyFetchRetries {
			select {
			case <-ctx.Done():
				return currency
			case <-time.After(e.cfg.CurrencyRetryDelay):
			}
		}
	}

	if e.log != nil {
		e.log.Warnf("FX rate unavailable for %s/%s, reporting unconverted values",
			currency.Financial, currency.Market)
	}
	return currency
}

// dcf runs the DCF model on the TTM free-cash-flow base in reporting
// currency. Share count prefers the extracted balance-sheet series and falls
// back to company metadata.
func (e *Engine) dcf(snap *metrics.Snapshot, info payload.Info) *DCFResult {
	fcf, ok := snap.FreeCashFlowTTM.Latest()
	if !ok {
		return nil
	}

	var netDebt float64
	if value, ok := snap.NetDebt.Latest(); ok {
		netDebt = value
	}

	shares, ok := snap.SharesOutstanding.Latest()
	if !ok {
		if value, okInfo := info.Float("sharesOutstanding"); okInfo {
			shares = value
		} else {
			return nil
		}
	}

	return ComputeDCF(fcf, netDebt, shares, e.cfg.DCF)
}

func latest(s timeseries.Series) *float64 {
	value, ok := s.Latest()
	if !ok {
		return nil
	}
	return &value
}

func infoFloat(info payload.Info, key string) *float64 {
	value, ok := info.Float(key)
	if !ok {
		return nil
	}
	return &value
}
