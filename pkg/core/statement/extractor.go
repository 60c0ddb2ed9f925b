// Package statement materializes single line items out of semi-structured
// financial statement payloads as time series. It owns all orientation
// sniffing: the two known physical layouts (row-major and date-column) are
// detected and normalized here and nowhere else.
package statement

import (
	"sort"

	"github.com/sirupsen/logrus"

	"stocklens/pkg/core/fields"
	"stocklens/pkg/core/payload"
	"stocklens/pkg/core/timeseries"
)

// Date-index keys that mark the date-column orientation, where one top-level
// key holds the date index and every line item is a sibling column.
var dateIndexKeys = []string{"报告日期", "日期", "date", "Date"}

// Close-like labels for price payloads, most specific first.
var priceValueKeys = []string{"Close", "Adj Close", "收盘", "close", "close_price"}

// Extractor pulls named line items out of statement payloads using the field
// resolver. A failed resolution yields an empty series, never an error: one
// missing line item must not block the rest of the report.
type Extractor struct {
	resolver *fields.Resolver
}

// NewExtractor creates an extractor around the given resolver.
func NewExtractor(log *logrus.Logger) *Extractor {
	return &Extractor{resolver: fields.NewResolver(log)}
}

// Line extracts one line item, identified by its ordered candidate labels,
// from a statement of either orientation.
func (e *Extractor) Line(stmt payload.Statement, candidates []string, tracker *fields.Tracker) timeseries.Series {
	if dateKey, ok := e.dateIndexKey(stmt); ok {
		keys := make([]string, 0, len(stmt))
		for _, key := range sortedKeys(stmt) {
			if key != dateKey {
				keys = append(keys, key)
			}
		}
		metricKey, ok := e.resolver.Match(keys, candidates, tracker)
		if !ok {
			return timeseries.Series{}
		}
		return timeseries.FromRows(rowsFromPayload(stmt, dateKey), dateKey, metricKey)
	}

	metricKey, ok := e.resolver.Match(rowKeys(stmt), candidates, tracker)
	if !ok {
		return timeseries.Series{}
	}
	mapping := make(map[string]interface{}, len(stmt))
	for dateKey := range stmt {
		if column := stmt.Column(dateKey); column != nil {
			mapping[dateKey] = column[metricKey]
		}
	}
	return timeseries.FromMapping(mapping)
}

// Metric extracts a catalog metric by canonical name. Unknown metric names
// are a caller error and yield an empty series with a missing-field record.
func (e *Extractor) Metric(stmt payload.Statement, metric string, tracker *fields.Tracker) timeseries.Series {
	candidates, ok := fields.Candidates(metric)
	if !ok {
		if tracker != nil {
			tracker.LogMissingField(metric, "metric not in catalog")
		}
		return timeseries.Series{}
	}
	return e.Line(stmt, candidates, tracker)
}

// Price extracts the daily close series from a price payload. Price payloads
// come in the same two orientations as statements but with their own
// vocabulary for the date index and the close column.
func (e *Extractor) Price(price payload.Statement, tracker *fields.Tracker) timeseries.Series {
	if len(price) == 0 {
		return timeseries.Series{}
	}

	if dateKey, ok := e.dateIndexKey(price); ok {
		keys := make([]string, 0, len(price))
		for _, key := range sortedKeys(price) {
			if key != dateKey {
				keys = append(keys, key)
			}
		}
		valueKey, ok := e.resolver.Match(keys, priceValueKeys, tracker)
		if !ok {
			return timeseries.Series{}
		}
		return timeseries.FromRows(rowsFromPayload(price, dateKey), dateKey, valueKey)
	}

	for _, candidate := range priceValueKeys {
		if column := price.Column(candidate); column != nil {
			return timeseries.FromMapping(column)
		}
	}
	return timeseries.Series{}
}

// dateIndexKey reports the date-column orientation by probing for a known
// date-index key whose value is itself a column mapping.
func (e *Extractor) dateIndexKey(stmt payload.Statement) (string, bool) {
	for _, key := range dateIndexKeys {
		if stmt.Column(key) != nil {
			return key, true
		}
	}
	return "", false
}

// rowKeys collects the distinct line-item labels visible across all period
// columns of a row-major statement.
func rowKeys(stmt payload.Statement) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, dateKey := range sortedKeys(stmt) {
		column := stmt.Column(dateKey)
		for _, rowKey := range sortedKeys(payload.Statement(column)) {
			if _, ok := seen[rowKey]; ok {
				continue
			}
			seen[rowKey] = struct{}{}
			keys = append(keys, rowKey)
		}
	}
	return keys
}

// rowsFromPayload transposes a date-column payload into row records, one per
// entry of the date index, so attribution between period and value survives
// the reshaping.
func rowsFromPayload(stmt payload.Statement, dateKey string) []map[string]interface{} {
	index := stmt.Column(dateKey)
	if index == nil {
		return nil
	}
	rowIDs := sortedKeys(payload.Statement(index))

	rows := make([]map[string]interface{}, 0, len(rowIDs))
	for _, rowID := range rowIDs {
		row := make(map[string]interface{}, len(stmt))
		for column := range stmt {
			if columnMap := stmt.Column(column); columnMap != nil {
				row[column] = columnMap[rowID]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func sortedKeys(m payload.Statement) []string {
	keys := m.Keys()
	sort.Strings(keys)
	return keys
}
