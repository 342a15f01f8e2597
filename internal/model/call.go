// Package model defines the domain types shared across the ingestion pipeline.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Call is a call discovered on the call-recording platform. Only the ID is
// ever persisted (by the ledger); the rest lives for one pass.
type Call struct {
	ID           string         `json:"id"`
	DiscoveredAt time.Time      `json:"discovered_at"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// CallID normalizes an upstream identifier (string, JSON number or float)
// to its canonical string form. Returns "" for empty or unsupported values.
func CallID(v any) string {
	switch id := v.(type) {
	case string:
		return strings.TrimSpace(id)
	case json.Number:
		return id.String()
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	case int64:
		return strconv.FormatInt(id, 10)
	default:
		return ""
	}
}
