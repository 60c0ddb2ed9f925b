package fields

// FuzzyMatch records a field resolved only through the normalized tier.
type FuzzyMatch struct {
	Field      string  `json:"field"`
	Matched    string  `json:"matched"`
	Confidence float64 `json:"confidence"`
}

// MissingField records a field that no candidate label could resolve.
type MissingField struct {
	Field   string `json:"field"`
	Context string `json:"context"`
}

// Tracker accumulates field-matching telemetry for a single analysis run. It
// is passed explicitly through the extraction path instead of living in a
// global, so concurrent runs never share state.
type Tracker struct {
	fuzzyMatches  []FuzzyMatch
	missingFields []MissingField
}

// NewTracker creates an empty per-run tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// LogFuzzyMatch records a normalized-tier hit with its confidence score.
func (t *Tracker) LogFuzzyMatch(field, matched string, confidence float64) {
	t.fuzzyMatches = append(t.fuzzyMatches, FuzzyMatch{
		Field:      field,
		Matched:    matched,
		Confidence: confidence,
	})
}

// LogMissingField records a field no candidate could resolve.
func (t *Tracker) LogMissingField(field, context string) {
	t.missingFields = append(t.missingFields, MissingField{Field: field, Context: context})
}

// Summary is the field-matching block of the data-quality report.
type Summary struct {
	FuzzyMatches  int            `json:"fuzzy_matches"`
	MissingFields int            `json:"missing_fields"`
	Fuzzy         []FuzzyMatch   `json:"fuzzy"`
	Missing       []MissingField `json:"missing"`
}

// Summary returns the accumulated telemetry in report form.
func (t *Tracker) Summary() Summary {
	return Summary{
		FuzzyMatches:  len(t.fuzzyMatches),
		MissingFields: len(t.missingFields),
		Fuzzy:         append([]FuzzyMatch(nil), t.fuzzyMatches...),
		Missing:       append([]MissingField(nil), t.missingFields...),
	}
}
