package fields

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// Resolver matches candidate labels against the keys present in a statement.
// It is stateless across runs; per-run telemetry goes into the Tracker passed
// to Match.
type Resolver struct {
	log *logrus.Logger
}

// NewResolver creates a resolver that reports fuzzy and missing matches to log.
func NewResolver(log *logrus.Logger) *Resolver {
	return &Resolver{log: log}
}

// Match finds the best present key for an ordered candidate list. Tiers are
// tried in order and the first hit wins:
//  1. Exact match (case-sensitive)
//  2. Case-insensitive exact match
//  3. Normalized match (non-alphanumerics stripped, lowercased), recorded as
//     a fuzzy match with a confidence score.
//
// A miss through all tiers is recorded as a missing field and reported as
// ("", false); callers treat that as "metric unavailable", never as an error.
func (r *Resolver) Match(keys []string, candidates []string, tracker *Tracker) (string, bool) {
	if len(keys) == 0 || len(candidates) == 0 {
		r.logMissing(candidates, keys, tracker)
		return "", false
	}

	// Tier 1: exact.
	present := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		present[key] = struct{}{}
	}
	for _, candidate := range candidates {
		if _, ok := present[candidate]; ok {
			return candidate, true
		}
	}

	// Tier 2: case-insensitive. First present key wins for a given folding.
	lower := make(map[string]string, len(keys))
	for _, key := range keys {
		folded := strings.ToLower(key)
		if _, ok := lower[folded]; !ok {
			lower[folded] = key
		}
	}
	for _, candidate := range candidates {
		if matched, ok := lower[strings.ToLower(candidate)]; ok {
			return matched, true
		}
	}

	// Tier 3: normalized (fuzzy).
	normalized := make(map[string]string, len(keys))
	for _, key := range keys {
		folded := NormalizeLabel(key)
		if folded == "" {
			continue
		}
		if _, ok := normalized[folded]; !ok {
			normalized[folded] = key
		}
	}
	for _, candidate := range candidates {
		folded := NormalizeLabel(candidate)
		if folded == "" {
			continue
		}
		matched, ok := normalized[folded]
		if !ok {
			continue
		}
		confidence := float64(utf8.RuneCountInString(folded)) /
			float64(max(utf8.RuneCountInString(candidate), utf8.RuneCountInString(matched)))
		if tracker != nil {
			tracker.LogFuzzyMatch(candidate, matched, confidence)
		}
		if r.log != nil {
			r.log.WithFields(logrus.Fields{
				"candidate":  candidate,
				"matched":    matched,
				"confidence": confidence,
			}).Warn("fuzzy field match")
		}
		return matched, true
	}

	r.logMissing(candidates, keys, tracker)
	return "", false
}

func (r *Resolver) logMissing(candidates, keys []string, tracker *Tracker) {
	field := "unknown"
	if len(candidates) > 0 {
		field = candidates[0]
	}
	sample := keys
	if len(sample) > 5 {
		sample = sample[:5]
	}
	context := "available keys: " + strings.Join(sample, ", ")
	if tracker != nil {
		tracker.LogMissingField(field, context)
	}
	if r.log != nil {
		r.log.WithField("field", field).Debug("no matching statement key")
	}
}

// NormalizeLabel strips all non-alphanumeric runes and lowercases the rest,
// the folding used by the fuzzy tier.
func NormalizeLabel(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
