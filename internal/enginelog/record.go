// Package enginelog decodes the progress stream the external engine emits
// when invoked with --log-format json: one JSON object per line, with
// numeric fields that may be encoded as numbers or as strings depending on
// the engine version. Lines that are not JSON (startup banners, warnings)
// are passed through undecoded.
package enginelog

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one decoded training progress line.
type Record struct {
	Epoch      int     `json:"epoch"`
	NumUpdates int     `json:"num_updates"`
	Loss       float64 `json:"loss"`
	LR         float64 `json:"lr"`
	GradNorm   float64 `json:"gnorm"`
	WPS        float64 `json:"wps"`
}

// ParseLine decodes one engine output line. The second return value is
// false for lines that are not JSON progress records.
func ParseLine(line string) (Record, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Record{}, false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Record{}, false
	}

	// Progress records always carry num_updates; other JSON lines
	// (config dumps, validation summaries) do not.
	if _, ok := raw["num_updates"]; !ok {
		return Record{}, false
	}

	return Record{
		Epoch:      intField(raw, "epoch"),
		NumUpdates: intField(raw, "num_updates"),
		Loss:       floatField(raw, "loss"),
		LR:         floatField(raw, "lr"),
		GradNorm:   floatField(raw, "gnorm"),
		WPS:        floatField(raw, "wps"),
	}, true
}

// floatField reads a numeric field encoded either as number or string.
func floatField(raw map[string]any, key string) float64 {
	switch v := raw[key].(type) {
	case float64:
		return v
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// intField reads an integer field encoded either as number or string.
func intField(raw map[string]any, key string) int {
	return int(floatField(raw, key))
}
