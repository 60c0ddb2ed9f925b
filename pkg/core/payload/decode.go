package payload

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// Decode parses a fetched-data document, trying progressively more lenient
// strategies:
//  1. Standard JSON
//  2. JSON repair (trailing commas, single quotes, unclosed brackets)
//  3. Hjson (most lenient: comments, unquoted keys)
//
// Upstream providers occasionally emit sloppy JSON; a recoverable document
// should not abort a whole analysis run.
func Decode(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err == nil {
		return p, nil
	}

	if repaired, err := jsonrepair.RepairJSON(string(data)); err == nil {
		if err := json.Unmarshal([]byte(repaired), &p); err == nil {
			return p, nil
		}
	}

	var loose map[string]interface{}
	if err := hjson.Unmarshal(data, &loose); err == nil {
		// hjson yields its own map flavor; round-trip through JSON to get
		// the plain map[string]interface{} shape the accessors expect.
		canonical, err := json.Marshal(loose)
		if err == nil {
			if err := json.Unmarshal(canonical, &p); err == nil {
				return p, nil
			}
		}
	}

	return nil, fmt.Errorf("payload is not parseable as JSON, repaired JSON, or hjson")
}

func parseFloat(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if cleaned == "" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
