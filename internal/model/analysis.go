package model

import "strings"

// ListDelimiter joins list-valued fields into a single sink cell.
const ListDelimiter = " | "

// Analysis is the structured result of the first transform stage.
type Analysis struct {
	MainProblem     string   `json:"main_problem"`
	KeyFear         string   `json:"key_fear"`
	ResultSolution  string   `json:"result_solution"`
	OriginalPhrases []string `json:"original_phrases"`
	Tags            []string `json:"tags"`
}

// Normalize replaces nil lists with empty ones so every field is present
// when the analysis is serialized.
func (a *Analysis) Normalize() {
	if a.OriginalPhrases == nil {
		a.OriginalPhrases = []string{}
	}
	if a.Tags == nil {
		a.Tags = []string{}
	}
}

// Variant selects which derived artifact a deployment produces.
type Variant string

const (
	// VariantInsights derives product insights for the product team.
	VariantInsights Variant = "insights"
	// VariantCreatives derives ad headlines and texts.
	VariantCreatives Variant = "creatives"
)

// ParseVariant converts a config string to a Variant.
func ParseVariant(s string) (Variant, bool) {
	switch Variant(strings.ToLower(strings.TrimSpace(s))) {
	case VariantInsights:
		return VariantInsights, true
	case VariantCreatives:
		return VariantCreatives, true
	default:
		return "", false
	}
}

// Derived is the second-stage output. Exactly one implementation is used per
// deployment.
type Derived interface {
	Variant() Variant
	// Columns returns the variant-specific sink cells in layout order.
	Columns() []string
}

// ProductInsights is the product-insight variant of Derived.
type ProductInsights struct {
	ProductInsights    []string `json:"product_insights"`
	FeatureSuggestions []string `json:"feature_suggestions"`
	UXImprovements     []string `json:"ux_improvements"`
	PriorityLevel      string   `json:"priority_level"`
}

// Variant implements Derived.
func (p ProductInsights) Variant() Variant { return VariantInsights }

// Columns implements Derived.
func (p ProductInsights) Columns() []string {
	return []string{
		strings.Join(p.ProductInsights, ListDelimiter),
		strings.Join(p.FeatureSuggestions, ListDelimiter),
		strings.Join(p.UXImprovements, ListDelimiter),
		p.PriorityLevel,
	}
}

// Normalize replaces nil lists with empty ones.
func (p *ProductInsights) Normalize() {
	if p.ProductInsights == nil {
		p.ProductInsights = []string{}
	}
	if p.FeatureSuggestions == nil {
		p.FeatureSuggestions = []string{}
	}
	if p.UXImprovements == nil {
		p.UXImprovements = []string{}
	}
}

// Creatives is the ad-creative variant of Derived.
type Creatives struct {
	Headlines []string `json:"headlines"`
	AdTexts   []string `json:"ad_texts"`
}

// Variant implements Derived.
func (c Creatives) Variant() Variant { return VariantCreatives }

// Columns implements Derived.
func (c Creatives) Columns() []string {
	return []string{
		strings.Join(c.Headlines, ListDelimiter),
		strings.Join(c.AdTexts, ListDelimiter),
	}
}

// Normalize replaces nil lists with empty ones.
func (c *Creatives) Normalize() {
	if c.Headlines == nil {
		c.Headlines = []string{}
	}
	if c.AdTexts == nil {
		c.AdTexts = []string{}
	}
}
