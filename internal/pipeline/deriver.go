package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/internal/transform"
)

// Analyzer is the first transform stage.
type Analyzer interface {
	Analyze(ctx context.Context, transcript string) transform.Result[model.Analysis]
}

// Deriver is the second transform stage. One implementation is chosen per
// deployment. The result is always populated; degraded reports whether it is
// the fallback substitute.
type Deriver interface {
	Variant() model.Variant
	Derive(ctx context.Context, a model.Analysis) (d model.Derived, degraded bool)
}

// InsightDeriver derives product insights.
type InsightDeriver struct {
	Stage *transform.Stage
}

// Variant implements Deriver.
func (InsightDeriver) Variant() model.Variant { return model.VariantInsights }

// Derive implements Deriver.
func (d InsightDeriver) Derive(ctx context.Context, a model.Analysis) (model.Derived, bool) {
	r := d.Stage.DeriveInsights(ctx, a)
	return r.Value, r.Degraded
}

// CreativeDeriver derives ad headlines and texts.
type CreativeDeriver struct {
	Stage *transform.Stage
}

// Variant implements Deriver.
func (CreativeDeriver) Variant() model.Variant { return model.VariantCreatives }

// Derive implements Deriver.
func (d CreativeDeriver) Derive(ctx context.Context, a model.Analysis) (model.Derived, bool) {
	r := d.Stage.DeriveCreatives(ctx, a)
	return r.Value, r.Degraded
}

// NewDeriver selects the Deriver for a variant.
func NewDeriver(v model.Variant, stage *transform.Stage) (Deriver, error) {
	switch v {
	case model.VariantInsights:
		return InsightDeriver{Stage: stage}, nil
	case model.VariantCreatives:
		return CreativeDeriver{Stage: stage}, nil
	default:
		return nil, eris.Errorf("pipeline: unknown variant %q", v)
	}
}
