package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stocklens/pkg/core/metrics"
	"stocklens/pkg/core/valuation"
)

// RunRepo handles the storage of finished analysis runs, one row per symbol.
type RunRepo struct{}

// NewRunRepo creates a new repository instance.
func NewRunRepo() *RunRepo {
	return &RunRepo{}
}

// Schema assumption (managed elsewhere, e.g. migrations):
//
//	CREATE TABLE IF NOT EXISTS analysis_runs (
//	  symbol TEXT PRIMARY KEY,
//	  run_id TEXT,
//	  run_json JSONB,
//	  updated_at TIMESTAMPTZ
//	);

type runDocument struct {
	Analysis  *metrics.Analysis    `json:"analysis"`
	Valuation *valuation.Valuation `json:"valuation"`
}

// Save persists an analysis and its valuation under the symbol, replacing any
// previous run for it.
func (r *RunRepo) Save(ctx context.Context, analysis *metrics.Analysis, val *valuation.Valuation) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(runDocument{Analysis: analysis, Valuation: val})
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	query := `
		INSERT INTO analysis_runs (symbol, run_id, run_json, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol)
		DO UPDATE SET
			run_id = EXCLUDED.run_id,
			run_json = EXCLUDED.run_json,
			updated_at = EXCLUDED.updated_at;
	`

	if _, err := pool.Exec(ctx, query, analysis.Symbol, analysis.RunID, jsonData, time.Now()); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// Load retrieves the last persisted run for a symbol.
func (r *RunRepo) Load(ctx context.Context, symbol string) (*metrics.Analysis, *valuation.Valuation, error) {
	pool := GetPool()
	if pool == nil {
		return nil, nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT run_json FROM analysis_runs WHERE symbol = $1`

	var jsonData []byte
	if err := pool.QueryRow(ctx, query, symbol).Scan(&jsonData); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, fmt.Errorf("no run found for symbol %s", symbol)
		}
		return nil, nil, fmt.Errorf("failed to load run: %w", err)
	}

	var doc runDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to unmarshal run: %w", err)
	}
	return doc.Analysis, doc.Valuation, nil
}
