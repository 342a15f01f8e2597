// Package transform runs the two model-backed stages of the pipeline:
// analysis of a transcript, then derivation of insights or creatives from
// that analysis. Every failure is absorbed into a degraded Result.
package transform

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/call-insights/internal/llm"
	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/internal/resilience"
)

var (
	analysisKeys  = []string{"main_problem", "key_fear", "result_solution", "original_phrases", "tags"}
	insightKeys   = []string{"product_insights", "feature_suggestions", "ux_improvements", "priority_level"}
	creativesKeys = []string{"headlines", "ad_texts"}
)

// Settings are the model parameters applied to each request.
type Settings struct {
	Temperature       float64
	DeriveTemperature float64
	MaxTokens         int
	// Timeout bounds one completion. Zero means no stage-level timeout.
	Timeout time.Duration
}

// DefaultSettings mirrors the config defaults.
func DefaultSettings() Settings {
	return Settings{
		Temperature:       0.3,
		DeriveTemperature: 0.7,
		MaxTokens:         2000,
		Timeout:           30 * time.Second,
	}
}

// Stage turns transcripts into analyses and analyses into derived output.
type Stage struct {
	completer llm.Completer
	prompts   *Prompts
	settings  Settings
}

// Option configures a Stage.
type Option func(*Stage)

// WithPrompts replaces the built-in prompts.
func WithPrompts(p *Prompts) Option {
	return func(s *Stage) {
		if p != nil {
			s.prompts = p
		}
	}
}

// WithSettings overrides the model parameters.
func WithSettings(settings Settings) Option {
	return func(s *Stage) {
		s.settings = settings
	}
}

// NewStage creates a Stage over the given completer.
func NewStage(completer llm.Completer, opts ...Option) *Stage {
	s := &Stage{
		completer: completer,
		prompts:   DefaultPrompts(),
		settings:  DefaultSettings(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Analyze extracts the problem, fear, desired result, quotes and tags from a
// transcript.
func (s *Stage) Analyze(ctx context.Context, transcript string) Result[model.Analysis] {
	r := run(ctx, s, KindAnalysis, promptData{Transcript: transcript}, s.settings.Temperature, analysisKeys,
		DegradedAnalysis)
	r.Value.Normalize()
	return r
}

// DeriveInsights produces product insights from an analysis.
func (s *Stage) DeriveInsights(ctx context.Context, a model.Analysis) Result[model.ProductInsights] {
	r := run(ctx, s, KindInsights, promptData{Analysis: a}, s.settings.DeriveTemperature, insightKeys,
		func() model.ProductInsights { return DegradedInsights(a) })
	r.Value.Normalize()
	return r
}

// DeriveCreatives produces ad headlines and texts from an analysis.
func (s *Stage) DeriveCreatives(ctx context.Context, a model.Analysis) Result[model.Creatives] {
	r := run(ctx, s, KindCreatives, promptData{Analysis: a}, s.settings.DeriveTemperature, creativesKeys,
		func() model.Creatives { return DegradedCreatives(a) })
	r.Value.Normalize()
	return r
}

func run[T any](
	ctx context.Context,
	s *Stage,
	kind Kind,
	data promptData,
	temperature float64,
	keys []string,
	fallback func() T,
) Result[T] {
	log := zap.L().With(zap.String("kind", string(kind)))

	system, text, err := s.prompts.Render(kind, data)
	if err != nil {
		log.Error("transform: render prompt failed, using degraded output", zap.Error(err))
		return degraded(fallback(), "render: "+err.Error())
	}

	callCtx := ctx
	if s.settings.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := s.completer.Complete(callCtx, llm.Request{
		Phase:       string(kind),
		System:      system,
		Prompt:      text,
		Temperature: temperature,
		MaxTokens:   s.settings.MaxTokens,
	})
	if err != nil {
		log.Warn("transform: completion failed, using degraded output",
			zap.String("error_kind", resilience.ClassifyError(err)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return degraded(fallback(), "completion: "+err.Error())
	}

	v, err := decodeObject[T](resp.Text, keys)
	if err != nil {
		log.Warn("transform: unparseable completion, using degraded output",
			zap.String("completion", truncate(resp.Text, 500)),
			zap.Error(err),
		)
		return degraded(fallback(), "parse: "+err.Error())
	}

	log.Debug("transform: completed",
		zap.String("model", resp.Model),
		zap.Duration("elapsed", time.Since(start)),
	)
	return parsed(v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
