package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/call-insights/internal/callsource"
	"github.com/sells-group/call-insights/internal/ledger"
	"github.com/sells-group/call-insights/internal/llm"
	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/internal/monitoring"
	"github.com/sells-group/call-insights/internal/pipeline"
	"github.com/sells-group/call-insights/internal/sink"
	"github.com/sells-group/call-insights/internal/transform"
	"github.com/sells-group/call-insights/pkg/exolve"
)

// pipelineEnv holds the collaborators shared by the poll and serve commands.
type pipelineEnv struct {
	Source  *callsource.Source
	Stage   *transform.Stage
	Deriver pipeline.Deriver
	Sink    sink.Sink
	Ledger  ledger.Ledger // nil unless withLedger
}

// Close releases resources held by the environment.
func (pe *pipelineEnv) Close() {
	if pe.Ledger != nil {
		if err := pe.Ledger.Close(); err != nil {
			zap.L().Warn("close ledger", zap.Error(err))
		}
	}
}

// initPipeline validates cfg for mode and builds every collaborator.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string, withLedger bool) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	variant, err := configuredVariant()
	if err != nil {
		return nil, err
	}

	stage, err := initStage()
	if err != nil {
		return nil, err
	}
	deriver, err := pipeline.NewDeriver(variant, stage)
	if err != nil {
		return nil, err
	}

	s, err := sink.New(ctx, cfg.Sink, variant)
	if err != nil {
		return nil, err
	}

	env := &pipelineEnv{
		Source:  initSource(),
		Stage:   stage,
		Deriver: deriver,
		Sink:    s,
	}

	if withLedger {
		l, err := ledger.New(ctx, cfg.Ledger)
		if err != nil {
			return nil, err
		}
		env.Ledger = l
		zap.L().Info("ledger loaded", zap.String("driver", cfg.Ledger.Driver), zap.Int("ids", l.Len()))
	}

	zap.L().Info("pipeline initialized",
		zap.String("variant", string(variant)),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("sink", cfg.Sink.Driver),
	)
	return env, nil
}

func configuredVariant() (model.Variant, error) {
	v, ok := model.ParseVariant(cfg.Pipeline.Variant)
	if !ok {
		return "", eris.Errorf("unknown pipeline.variant %q", cfg.Pipeline.Variant)
	}
	return v, nil
}

func initSource() *callsource.Source {
	opts := []exolve.Option{}
	if cfg.Exolve.BaseURL != "" {
		opts = append(opts, exolve.WithBaseURL(cfg.Exolve.BaseURL))
	}
	if cfg.Exolve.TimeoutSecs > 0 {
		opts = append(opts, exolve.WithTimeout(time.Duration(cfg.Exolve.TimeoutSecs)*time.Second))
	}
	client := exolve.NewClient(cfg.Exolve.Key, opts...)
	return callsource.New(client, nil, callsource.WithPageLimit(cfg.Exolve.PageLimit))
}

func initStage() (*transform.Stage, error) {
	completer, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}

	opts := []transform.Option{
		transform.WithSettings(transform.Settings{
			Temperature:       cfg.LLM.Temperature,
			DeriveTemperature: cfg.LLM.DeriveTemperature,
			MaxTokens:         cfg.LLM.MaxTokens,
			Timeout:           time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		}),
	}
	if cfg.LLM.PromptsFile != "" {
		prompts, err := transform.LoadPrompts(cfg.LLM.PromptsFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, transform.WithPrompts(prompts))
	}
	return transform.NewStage(completer, opts...), nil
}

// newOrchestrator builds the orchestrator with the monitoring checker as its
// per-pass hook. The returned collector backs /api/status.
func newOrchestrator(env *pipelineEnv) (*pipeline.Orchestrator, *monitoring.Collector) {
	collector := monitoring.NewCollector(cfg.Monitoring.LookbackWindowHours)
	checker := monitoring.NewChecker(collector, monitoring.NewAlerter(cfg.Monitoring), cfg.Monitoring)

	orch := pipeline.New(env.Source, env.Stage, env.Deriver, env.Sink, env.Ledger, pipeline.Options{
		Window:           cfg.Exolve.Lookback(),
		MinTranscriptLen: cfg.Pipeline.MinTranscriptLen,
		MaxAttempts:      cfg.Pipeline.MaxAttempts,
		OnPass:           checker.Observe,
	})
	return orch, collector
}
