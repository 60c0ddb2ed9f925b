// Package pipeline wires decoding, analysis, valuation and persistence into
// one run per symbol.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"stocklens/pkg/core/config"
	"stocklens/pkg/core/metrics"
	"stocklens/pkg/core/payload"
	"stocklens/pkg/core/valuation"
)

// RunRepository persists finished runs. Implementations may be backed by
// Postgres or by a test double.
type RunRepository interface {
	Save(ctx context.Context, analysis *metrics.Analysis, val *valuation.Valuation) error
}

// Result bundles the two output payloads of one run.
type Result struct {
	Analysis  *metrics.Analysis
	Valuation *valuation.Valuation
}

// Orchestrator manages the end-to-end flow: decode payload -> build analysis
// -> build valuation -> optionally persist.
type Orchestrator struct {
	log       *logrus.Logger
	metrics   *metrics.Engine
	valuation *valuation.Engine
	repo      RunRepository
}

// NewOrchestrator creates an orchestrator with all engines configured. A nil
// rate fetcher disables currency conversion; a nil repository disables
// persistence.
func NewOrchestrator(cfg config.Config, fetcher valuation.RateFetcher, log *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		log:       log,
		metrics:   metrics.NewEngine(cfg, log),
		valuation: valuation.NewEngine(cfg, fetcher, log),
	}
}

// SetRepository injects a run repository. Without one, runs are not persisted.
func (o *Orchestrator) SetRepository(repo RunRepository) {
	o.repo = repo
}

// Run decodes a raw fetched-data document and executes a full analysis run.
func (o *Orchestrator) Run(ctx context.Context, raw []byte) (*Result, error) {
	doc, err := payload.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return o.RunPayload(ctx, doc)
}

// RunPayload executes a full analysis run over an already-decoded payload.
func (o *Orchestrator) RunPayload(ctx context.Context, doc payload.Payload) (*Result, error) {
	start := time.Now()

	analysis, snapshot := o.metrics.BuildAnalysis(doc)
	val := o.valuation.BuildValuation(ctx, doc, analysis, snapshot)

	if o.repo != nil {
		if err := o.repo.Save(ctx, analysis, val); err != nil {
			return nil, fmt.Errorf("failed to persist run: %w", err)
		}
	}

	if o.log != nil {
		o.log.WithFields(logrus.Fields{
			"symbol":   analysis.Symbol,
			"run_id":   analysis.RunID,
			"duration": time.Since(start).Round(time.Millisecond).String(),
		}).Info("run complete")
	}
	return &Result{Analysis: analysis, Valuation: val}, nil
}
