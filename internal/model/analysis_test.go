package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallID(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", " abc-1 ", "abc-1"},
		{"json number", json.Number("9007199254740993"), "9007199254740993"},
		{"float", float64(42), "42"},
		{"int", 7, "7"},
		{"int64", int64(8), "8"},
		{"nil", nil, ""},
		{"bool", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CallID(tt.in))
		})
	}
}

func TestParseVariant(t *testing.T) {
	v, ok := ParseVariant("Insights")
	require.True(t, ok)
	assert.Equal(t, VariantInsights, v)

	v, ok = ParseVariant("creatives")
	require.True(t, ok)
	assert.Equal(t, VariantCreatives, v)

	_, ok = ParseVariant("banners")
	assert.False(t, ok)
}

func TestAnalysisNormalize_SerializesEmptyLists(t *testing.T) {
	a := Analysis{MainProblem: "billing error"}
	a.Normalize()

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"original_phrases":[]`)
	assert.Contains(t, string(data), `"tags":[]`)
}

func TestProductInsightsColumns(t *testing.T) {
	p := ProductInsights{
		ProductInsights:    []string{"a", "b"},
		FeatureSuggestions: []string{"c"},
		PriorityLevel:      "high",
	}
	assert.Equal(t, []string{"a | b", "c", "", "high"}, p.Columns())
	assert.Equal(t, VariantInsights, p.Variant())
}

func TestCreativesColumns(t *testing.T) {
	c := Creatives{Headlines: []string{"h1", "h2"}, AdTexts: []string{"t1"}}
	assert.Equal(t, []string{"h1 | h2", "t1"}, c.Columns())
	assert.Equal(t, VariantCreatives, c.Variant())
}
