package transform

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// cleanJSON strips markdown code fences and any prose around the outermost
// JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

// decodeObject parses a completion into T. The text must hold a JSON object
// carrying at least one of keys, and every present field must match T.
func decodeObject[T any](text string, keys []string) (T, error) {
	var zero T
	cleaned := cleanJSON(text)
	if cleaned == "" {
		return zero, eris.New("empty completion")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return zero, eris.Wrap(err, "completion is not a JSON object")
	}

	found := false
	for _, k := range keys {
		if _, ok := fields[k]; ok {
			found = true
			break
		}
	}
	if !found {
		return zero, eris.Errorf("completion has none of the expected keys %v", keys)
	}

	var out T
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return zero, eris.Wrap(err, "completion has the wrong shape")
	}
	return out, nil
}
