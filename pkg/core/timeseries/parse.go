package timeseries

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Accepted timestamp layouts, tried after RFC 3339. Upstream payloads mix ISO
// dates, slashed dates and datetimes depending on the market.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTime converts a raw payload timestamp into a naive UTC time. Inputs
// carrying an offset are converted to UTC first so that dates from different
// sources compare cleanly.
func ParseTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		raw := strings.TrimSpace(v)
		if raw == "" {
			return time.Time{}, false
		}
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			return parsed.UTC(), true
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// ParseValue converts a raw payload scalar into a finite float64. Strings are
// stripped of thousands separators before parsing. Unparsable and non-finite
// inputs report false; they are dropped by the constructors, never stored.
func ParseValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v, ",", ""))
		if cleaned == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return finite(parsed)
	}
	return 0, false
}

func finite(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
