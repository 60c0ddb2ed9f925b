// Package timeseries provides the sparse, date-keyed numeric series that the
// extraction, metrics and valuation layers are built on. A Series is immutable
// after construction: every operation returns a new value.
package timeseries

import (
	"math"
	"sort"
	"time"
)

// Point is a single (date, value) observation.
type Point struct {
	Date  time.Time
	Value float64
}

// Series is an ordered sequence of observations. Invariants maintained by all
// constructors: dates strictly increasing, no duplicates (last write wins),
// values always finite. The zero value is a valid empty series.
type Series struct {
	points []Point
}

// New builds a series from raw points, sorting, deduplicating (last write
// wins) and dropping non-finite values.
func New(points []Point) Series {
	if len(points) == 0 {
		return Series{}
	}

	byDate := make(map[time.Time]float64, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		byDate[p.Date] = p.Value
	}
	if len(byDate) == 0 {
		return Series{}
	}

	out := make([]Point, 0, len(byDate))
	for date, value := range byDate {
		out = append(out, Point{Date: date, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return Series{points: out}
}

// FromMapping builds a series from a dateKey -> rawValue mapping. Keys that do
// not parse as dates and values that do not parse as finite numbers are
// skipped, never errored.
func FromMapping(mapping map[string]interface{}) Series {
	if len(mapping) == 0 {
		return Series{}
	}
	points := make([]Point, 0, len(mapping))
	for key, raw := range mapping {
		date, ok := ParseTime(key)
		if !ok {
			continue
		}
		value, ok := ParseValue(raw)
		if !ok {
			continue
		}
		points = append(points, Point{Date: date, Value: value})
	}
	return New(points)
}

// FromRows builds a series from row records, reading the date from dateField
// and the value from valueField of each row.
func FromRows(rows []map[string]interface{}, dateField, valueField string) Series {
	if len(rows) == 0 {
		return Series{}
	}
	points := make([]Point, 0, len(rows))
	for _, row := range rows {
		date, ok := ParseTime(row[dateField])
		if !ok {
			continue
		}
		value, ok := ParseValue(row[valueField])
		if !ok {
			continue
		}
		points = append(points, Point{Date: date, Value: value})
	}
	return New(points)
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.points) }

// IsEmpty reports whether the series has no observations.
func (s Series) IsEmpty() bool { return len(s.points) == 0 }

// Rows returns a copy of the observations in chronological order.
func (s Series) Rows() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Dates returns the observation dates in chronological order.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s.points))
	for i, p := range s.points {
		out[i] = p.Date
	}
	return out
}

// Values returns the observation values in chronological order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.points))
	for i, p := range s.points {
		out[i] = p.Value
	}
	return out
}

// Latest returns the most recent value, or false for an empty series.
func (s Series) Latest() (float64, bool) {
	if len(s.points) == 0 {
		return 0, false
	}
	return s.points[len(s.points)-1].Value, true
}

// At returns the value recorded exactly on date.
func (s Series) At(date time.Time) (float64, bool) {
	idx := sort.Search(len(s.points), func(i int) bool { return !s.points[i].Date.Before(date) })
	if idx < len(s.points) && s.points[idx].Date.Equal(date) {
		return s.points[idx].Value, true
	}
	return 0, false
}

// ToDict serializes the series as an ISO-date-keyed mapping, the wire shape
// used by the analysis and valuation payloads.
func (s Series) ToDict() map[string]float64 {
	if len(s.points) == 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(s.points))
	for _, p := range s.points {
		out[p.Date.Format("2006-01-02")] = p.Value
	}
	return out
}

// Scale multiplies every value by factor, used for currency conversion.
func (s Series) Scale(factor float64) Series {
	if len(s.points) == 0 {
		return Series{}
	}
	points := make([]Point, len(s.points))
	for i, p := range s.points {
		points[i] = Point{Date: p.Date, Value: p.Value * factor}
	}
	return New(points)
}
