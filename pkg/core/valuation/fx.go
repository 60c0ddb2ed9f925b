// Package valuation aligns quarterly fundamentals onto the daily price index,
// computes daily multiples with historical percentile ranks, converts between
// market and reporting currencies, and produces a DCF equity valuation.
package valuation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// RateFetcher resolves a spot FX rate from one ISO currency code to another.
// Implementations perform the single blocking network call of the engine.
type RateFetcher interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

const defaultRateURL = "https://open.er-api.com/v6/latest"

// HTTPRateFetcher fetches spot rates from an exchange-rate HTTP API.
type HTTPRateFetcher struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewHTTPRateFetcher initializes a rate fetcher against the default endpoint.
func NewHTTPRateFetcher(log *logrus.Logger) *HTTPRateFetcher {
	return &HTTPRateFetcher{
		url: defaultRateURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

type rateResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// Rate fetches the from->to conversion rate.
func (f *HTTPRateFetcher) Rate(ctx context.Context, from, to string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url+"/"+from, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed rateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, fmt.Errorf("failed to parse rate response: %w", err)
	}

	rate, ok := parsed.Rates[to]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("no rate for %s/%s in response", from, to)
	}

	if f.log != nil {
		f.log.Debugf("fetched FX rate %s/%s: %.4f", from, to, rate)
	}
	return rate, nil
}
