// Package payload models the loosely-typed nested data handed over by the
// fetch collaborator. Field names are a convention, not a schema: every
// accessor degrades to an empty value when the payload does not conform.
package payload

// Payload is the root fetched-data document for one symbol.
type Payload map[string]interface{}

// Statement is one financial statement: a mapping from column key (period
// label or date index) to a mapping from row key (line-item label) to a raw
// scalar. Both known physical orientations share this shape.
type Statement map[string]interface{}

// Info is the company metadata block (currency, shares outstanding, trailing
// multiples and similar).
type Info map[string]interface{}

// String returns the payload's own string field, or "".
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Info returns the company metadata block.
func (p Payload) Info() Info {
	return Info(asMap(p["info"]))
}

// Statement returns one statement from a statement group, e.g.
// Statement("financials_quarterly", "income_statement"). Missing levels yield
// an empty statement.
func (p Payload) Statement(group, name string) Statement {
	return Statement(asMap(asMap(p[group])[name]))
}

// PriceHistory returns the raw price payload.
func (p Payload) PriceHistory() Statement {
	return Statement(asMap(p["price_history"]))
}

// String returns a string field from the info block, or "".
func (i Info) String(key string) string {
	s, _ := i[key].(string)
	return s
}

// Float returns a numeric field from the info block. JSON numbers arrive as
// float64; integers and numeric strings are accepted too.
func (i Info) Float(key string) (float64, bool) {
	switch v := i[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return parseFloat(v)
	}
	return 0, false
}

// FirstString returns the first non-empty string among keys.
func (i Info) FirstString(keys ...string) string {
	for _, key := range keys {
		if s := i.String(key); s != "" {
			return s
		}
	}
	return ""
}

// Keys returns the statement's column keys in unspecified order.
func (s Statement) Keys() []string {
	out := make([]string, 0, len(s))
	for key := range s {
		out = append(out, key)
	}
	return out
}

// Column returns one top-level column as a map, or nil when absent or not a
// mapping.
func (s Statement) Column(key string) map[string]interface{} {
	return asMap(s[key])
}

func asMap(value interface{}) map[string]interface{} {
	m, _ := value.(map[string]interface{})
	return m
}
