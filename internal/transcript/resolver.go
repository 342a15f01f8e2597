// Package transcript extracts plain-text transcripts from call-detail
// payloads whose shape varies between API versions.
package transcript

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultScanDepth bounds the recursive fallback scan.
	DefaultScanDepth = 3
	// DefaultScanMinLen is the rune count a scanned value must exceed.
	DefaultScanMinLen = 50
)

// scanKeywords are the key-name substrings that mark transcript-like fields.
var scanKeywords = []string{"transcript", "text", "phrase", "speech"}

// Extractor pulls a transcript out of one known payload shape.
type Extractor func(payload map[string]any) (string, bool)

// DefaultExtractors lists the known payload shapes in priority order.
var DefaultExtractors = []Extractor{
	Path("transcript"),
	Path("transcription", "text"),
	Path("transcription"),
	Path("speech_analytics", "transcript"),
	Path("phrases"),
	Path("call_details", "transcript"),
	Path("result", "transcript"),
	Path("result", "text"),
	Path("transcription", "chunks"),
	Path("result", "chunks"),
}

// Path returns an Extractor that follows the given keys through nested
// objects. The value at the end may be a string or a list of segments.
func Path(keys ...string) Extractor {
	return func(payload map[string]any) (string, bool) {
		var cur any = payload
		for _, k := range keys {
			m, ok := cur.(map[string]any)
			if !ok {
				return "", false
			}
			cur, ok = m[k]
			if !ok {
				return "", false
			}
		}
		return textValue(cur)
	}
}

// textValue converts a string or a segment list to text.
func textValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return "", false
		}
		return val, true
	case []any:
		return JoinSegments(val)
	default:
		return "", false
	}
}

// JoinSegments concatenates the text of timed speech segments in order,
// separated by one space. Segments are objects with a "text" field or plain
// strings; empty ones are skipped.
func JoinSegments(segments []any) (string, bool) {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		var text string
		switch s := seg.(type) {
		case map[string]any:
			text, _ = s["text"].(string)
		case string:
			text = s
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

// ScanText walks the payload depth-first looking for long string values
// under transcript-like keys and concatenates every match. Object keys are
// visited in sorted order. Recursion stops below maxDepth.
func ScanText(data any, maxDepth, minLen int) string {
	return scan(data, 0, maxDepth, minLen)
}

func scan(data any, depth, maxDepth, minLen int) string {
	if depth > maxDepth {
		return ""
	}

	var parts []string
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			switch child := v[k].(type) {
			case string:
				if utf8.RuneCountInString(child) > minLen && transcriptKey(k) {
					parts = append(parts, child)
				}
			case map[string]any, []any:
				if found := scan(child, depth+1, maxDepth, minLen); found != "" {
					parts = append(parts, found)
				}
			}
		}
	case []any:
		for _, item := range v {
			if found := scan(item, depth+1, maxDepth, minLen); found != "" {
				parts = append(parts, found)
			}
		}
	}

	return strings.Join(parts, " ")
}

func transcriptKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range scanKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Resolver applies the extractor chain and then the fallback scan.
type Resolver struct {
	extractors []Extractor
	scanDepth  int
	scanMinLen int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithExtractors replaces the extractor chain.
func WithExtractors(ex ...Extractor) Option {
	return func(r *Resolver) {
		r.extractors = ex
	}
}

// WithScanLimits overrides the fallback scan depth and minimum value length.
func WithScanLimits(depth, minLen int) Option {
	return func(r *Resolver) {
		r.scanDepth = depth
		r.scanMinLen = minLen
	}
}

// NewResolver creates a Resolver with the default extractor chain.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		extractors: DefaultExtractors,
		scanDepth:  DefaultScanDepth,
		scanMinLen: DefaultScanMinLen,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the transcript contained in payload, or false when none of
// the known shapes nor the fallback scan yields text.
func (r *Resolver) Resolve(payload map[string]any) (string, bool) {
	if payload == nil {
		return "", false
	}
	for _, ex := range r.extractors {
		if text, ok := ex(payload); ok {
			return text, true
		}
	}
	text := ScanText(payload, r.scanDepth, r.scanMinLen)
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}
