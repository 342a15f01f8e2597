// Package pipeline drives calls through resolve, analyze, derive, sink and
// commit. The timed loop uses the durable ledger; the event path keeps its
// own in-memory set.
package pipeline

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/call-insights/internal/ledger"
	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/internal/resilience"
	"github.com/sells-group/call-insights/internal/sink"
)

// CallSource lists calls and resolves transcripts. Failures are reported as
// empty results, never as errors.
type CallSource interface {
	ListRecent(ctx context.Context, window time.Duration) []model.Call
	Transcript(ctx context.Context, callID string) (string, bool)
}

// Options tune an Orchestrator.
type Options struct {
	// Window is how far back each pass lists calls.
	Window time.Duration
	// MinTranscriptLen is the shortest transcript, in characters, worth
	// analyzing.
	MinTranscriptLen int
	// MaxAttempts caps how many passes may fail on one call. Zero means
	// unlimited.
	MaxAttempts int
	// OnPass, if set, receives every finished pass report.
	OnPass func(ctx context.Context, report PassReport)
	// Now defaults to time.Now.
	Now func() time.Time
}

// Orchestrator runs passes over recent calls.
type Orchestrator struct {
	source   CallSource
	analyzer Analyzer
	deriver  Deriver
	sink     sink.Sink
	ledger   ledger.Ledger
	attempts *resilience.AttemptTracker
	opts     Options
}

// New creates an Orchestrator. Every collaborator is owned by the caller.
func New(source CallSource, analyzer Analyzer, deriver Deriver, s sink.Sink, l ledger.Ledger, opts Options) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Window <= 0 {
		opts.Window = time.Hour
	}
	return &Orchestrator{
		source:   source,
		analyzer: analyzer,
		deriver:  deriver,
		sink:     s,
		ledger:   l,
		attempts: resilience.NewAttemptTracker(opts.MaxAttempts),
		opts:     opts,
	}
}

// Variant returns the deriver's variant.
func (o *Orchestrator) Variant() model.Variant {
	return o.deriver.Variant()
}

// RunPass processes every recently listed call once, sequentially, then
// persists the ledger if anything was committed.
func (o *Orchestrator) RunPass(ctx context.Context) PassReport {
	report := PassReport{
		PassID:   uuid.New().String(),
		Started:  o.opts.Now(),
		Outcomes: make(map[Outcome]int),
	}
	log := zap.L().With(zap.String("pass_id", report.PassID))

	calls := o.source.ListRecent(ctx, o.opts.Window)
	report.Listed = len(calls)
	log.Info("pipeline: pass started", zap.Int("listed", len(calls)))

	for _, c := range calls {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}
		res := o.processCall(ctx, c.ID, o.opts.MinTranscriptLen, log)
		report.Outcomes[res.outcome]++
		if res.outcome.Committed() && res.degraded {
			report.Degraded++
		}
	}

	if report.Count(OutcomeCommitted) > 0 {
		// A canceled pass still records what it committed.
		if err := o.ledger.Persist(context.WithoutCancel(ctx)); err != nil {
			report.PersistErr = err.Error()
			log.Error("pipeline: persist ledger failed", zap.Error(err))
		} else {
			report.Persisted = true
		}
	}

	report.Duration = time.Since(report.Started)
	log.Info("pipeline: pass finished",
		zap.Int("committed", report.Count(OutcomeCommitted)),
		zap.Int("skipped_known", report.Count(OutcomeKnown)),
		zap.Int("degraded", report.Degraded),
		zap.Bool("persisted", report.Persisted),
		zap.Duration("duration", report.Duration),
	)
	if o.opts.OnPass != nil {
		o.opts.OnPass(ctx, report)
	}
	return report
}

// ProcessCall runs one call through the pipeline against the durable ledger.
// The ledger is marked on commit but not persisted.
func (o *Orchestrator) ProcessCall(ctx context.Context, callID string, minLen int) Outcome {
	return o.processCall(ctx, callID, minLen, zap.L()).outcome
}

// Run executes a pass immediately and then every interval until ctx is
// canceled.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) error {
	zap.L().Info("pipeline: loop started", zap.Duration("interval", interval))

	o.RunPass(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := o.ledger.Persist(context.WithoutCancel(ctx)); err != nil {
				zap.L().Error("pipeline: persist ledger on shutdown failed", zap.Error(err))
			}
			zap.L().Info("pipeline: loop stopped")
			return nil
		case <-ticker.C:
			o.RunPass(ctx)
		}
	}
}

type callResult struct {
	outcome  Outcome
	degraded bool
}

func (o *Orchestrator) processCall(ctx context.Context, callID string, minLen int, log *zap.Logger) callResult {
	log = log.With(zap.String("call_id", callID))

	if o.ledger.Contains(callID) {
		log.Debug("pipeline: call already committed")
		return callResult{outcome: OutcomeKnown}
	}
	if o.attempts.Exhausted(callID) {
		log.Debug("pipeline: call dropped after repeated failures", zap.Int("attempts", o.attempts.Count(callID)))
		return callResult{outcome: OutcomeDropped}
	}

	res := runCall(ctx, o.source, o.analyzer, o.deriver, o.sink, o.opts.Now, callID, minLen)

	if res.outcome.Committed() {
		o.ledger.Mark(callID)
		o.attempts.Clear(callID)
	} else {
		n := o.attempts.Fail(callID)
		log = log.With(zap.Int("attempts", n))
	}
	logOutcome(log, res)
	return res
}

// runCall is the shared resolve, analyze, derive, sink sequence. It does no
// dedup bookkeeping.
func runCall(
	ctx context.Context,
	source CallSource,
	analyzer Analyzer,
	deriver Deriver,
	s sink.Sink,
	now func() time.Time,
	callID string,
	minLen int,
) callResult {
	text, ok := source.Transcript(ctx, callID)
	if !ok {
		return callResult{outcome: OutcomeNoTranscript}
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minLen {
		return callResult{outcome: OutcomeShort}
	}

	analysis := analyzer.Analyze(ctx, text)
	if ctx.Err() != nil {
		return callResult{outcome: OutcomeFailedAnalyze}
	}

	derived, derivedDegraded := deriver.Derive(ctx, analysis.Value)
	if derived == nil || ctx.Err() != nil {
		return callResult{outcome: OutcomeFailedDerive}
	}

	row := sink.BuildRow(now(), analysis.Value, derived)
	if err := s.Append(ctx, row); err != nil {
		zap.L().Warn("pipeline: sink append failed", zap.String("call_id", callID), zap.Error(err))
		return callResult{outcome: OutcomeFailedSink}
	}

	return callResult{
		outcome:  OutcomeCommitted,
		degraded: analysis.Degraded || derivedDegraded,
	}
}

func logOutcome(log *zap.Logger, res callResult) {
	fields := []zap.Field{zap.String("outcome", string(res.outcome))}
	switch {
	case res.outcome.Committed():
		log.Info("pipeline: call committed", append(fields, zap.Bool("degraded", res.degraded))...)
	case res.outcome.Failed():
		log.Warn("pipeline: call not committed", append(fields, zap.Bool("retry_next_pass", res.outcome.Retryable()))...)
	default:
		log.Info("pipeline: call skipped", append(fields, zap.Bool("retry_next_pass", res.outcome.Retryable()))...)
	}
}
