// Package fields maps the labels a statement payload actually uses onto the
// engine's canonical metric names. Resolution is a tiered match (exact,
// case-insensitive, normalized) with per-run telemetry so that fuzzy and
// missing matches surface in the data-quality report instead of silently
// shaping results.
package fields

import (
	_ "embed"
	"fmt"

	yaml "gopkg.in/yaml.v2"
)

//go:embed catalog.yaml
var catalogYAML []byte

// catalog is loaded once at init; the file is part of the build, so a parse
// failure is a programming error, not a data condition.
var catalog map[string][]string

func init() {
	parsed, err := parseCatalog(catalogYAML)
	if err != nil {
		panic(fmt.Sprintf("fields: embedded catalog is invalid: %v", err))
	}
	catalog = parsed
}

func parseCatalog(data []byte) (map[string][]string, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for metric, candidates := range raw {
		if len(candidates) == 0 {
			return nil, fmt.Errorf("metric %q has no candidate labels", metric)
		}
	}
	return raw, nil
}

// Candidates returns the ordered candidate labels for a canonical metric name.
func Candidates(metric string) ([]string, bool) {
	candidates, ok := catalog[metric]
	if !ok {
		return nil, false
	}
	out := make([]string, len(candidates))
	copy(out, candidates)
	return out, true
}

// Metrics returns all canonical metric names in the catalog.
func Metrics() []string {
	out := make([]string, 0, len(catalog))
	for metric := range catalog {
		out = append(out, metric)
	}
	return out
}
