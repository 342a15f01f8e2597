package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/call-insights/internal/ledger"
	"github.com/sells-group/call-insights/internal/llm"
	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/internal/transform"
)

type harness struct {
	source *mockCallSource
	sink   *memSink
	ledger *ledger.FileLedger
	path   string
	llm    *scripted
	orch   *Orchestrator
}

func newHarness(t *testing.T, completer llm.Completer, opts Options) *harness {
	t.Helper()
	h := &harness{
		source: &mockCallSource{},
		sink:   &memSink{},
		path:   filepath.Join(t.TempDir(), "processed_calls.txt"),
	}
	if completer == nil {
		h.llm = newScripted(billingJSON, insightJSON)
		completer = h.llm
	}
	h.ledger = ledger.NewFile(h.path)
	require.NoError(t, h.ledger.Load(context.Background()))

	stage := transform.NewStage(completer)
	if opts.MinTranscriptLen == 0 {
		opts.MinTranscriptLen = 100
	}
	h.orch = New(h.source, stage, InsightDeriver{Stage: stage}, h.sink, h.ledger, opts)
	t.Cleanup(func() { h.source.AssertExpectations(t) })
	return h
}

func (h *harness) persisted(t *testing.T) []string {
	t.Helper()
	l := ledger.NewFile(h.path)
	require.NoError(t, l.Load(context.Background()))
	return l.IDs()
}

func TestRunPass_CommitsNewCall(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.source.On("ListRecent", mock.Anything, time.Hour).
		Return([]model.Call{{ID: "42"}}).Once()
	h.source.On("Transcript", mock.Anything, "42").
		Return(transcriptOf(250), true).Once()

	report := h.orch.RunPass(context.Background())

	assert.NotEmpty(t, report.PassID)
	assert.Equal(t, 1, report.Listed)
	assert.Equal(t, 1, report.Count(OutcomeCommitted))
	assert.Zero(t, report.Degraded)
	assert.True(t, report.Persisted)

	require.Equal(t, 1, h.sink.count())
	assert.Equal(t, "billing error", h.sink.rows[0][1])
	assert.Equal(t, "flag duplicate charges", h.sink.rows[0][6])
	assert.Equal(t, []string{"42"}, h.persisted(t))
}

func TestRunPass_TimeoutStillCommitsDegradedRow(t *testing.T) {
	hang := llm.CompleterFunc(func(ctx context.Context, _ llm.Request) (*llm.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	source := &mockCallSource{}
	s := &memSink{}
	l := ledger.NewFile(filepath.Join(t.TempDir(), "ledger.txt"))
	stage := transform.NewStage(hang, transform.WithSettings(transform.Settings{
		MaxTokens: 100,
		Timeout:   20 * time.Millisecond,
	}))
	orch := New(source, stage, InsightDeriver{Stage: stage}, s, l, Options{MinTranscriptLen: 100})

	source.On("ListRecent", mock.Anything, mock.Anything).Return([]model.Call{{ID: "42"}}).Once()
	source.On("Transcript", mock.Anything, "42").Return(transcriptOf(250), true).Once()

	report := orch.RunPass(context.Background())

	assert.Equal(t, 1, report.Count(OutcomeCommitted))
	assert.Equal(t, 1, report.Degraded)
	require.Equal(t, 1, s.count())
	assert.Equal(t, transform.UnknownProblem, s.rows[0][1])
	assert.True(t, l.Contains("42"))
	source.AssertExpectations(t)
}

func TestRunPass_LedgerHitSkipsResolver(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.ledger.Mark("42")

	h.source.On("ListRecent", mock.Anything, mock.Anything).
		Return([]model.Call{{ID: "42"}}).Once()

	report := h.orch.RunPass(context.Background())

	assert.Equal(t, 1, report.Count(OutcomeKnown))
	assert.False(t, report.Persisted)
	assert.Zero(t, h.sink.count())
	assert.Zero(t, h.llm.total())
	h.source.AssertNotCalled(t, "Transcript", mock.Anything, mock.Anything)
}

func TestRunPass_Idempotent(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.source.On("ListRecent", mock.Anything, mock.Anything).
		Return([]model.Call{{ID: "42"}, {ID: "43"}}).Twice()
	h.source.On("Transcript", mock.Anything, "42").Return(transcriptOf(150), true).Once()
	h.source.On("Transcript", mock.Anything, "43").Return(transcriptOf(150), true).Once()

	first := h.orch.RunPass(context.Background())
	second := h.orch.RunPass(context.Background())

	assert.Equal(t, 2, first.Count(OutcomeCommitted))
	assert.Equal(t, 2, second.Count(OutcomeKnown))
	assert.Equal(t, 2, h.sink.count())
	assert.Equal(t, 4, h.llm.total())
}

func TestRunPass_ShortTranscriptSkipped(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.source.On("ListRecent", mock.Anything, mock.Anything).
		Return([]model.Call{{ID: "7"}}).Once()
	h.source.On("Transcript", mock.Anything, "7").Return(transcriptOf(99), true).Once()

	report := h.orch.RunPass(context.Background())

	assert.Equal(t, 1, report.Count(OutcomeShort))
	assert.Zero(t, h.sink.count())
	assert.Zero(t, h.llm.total())
	assert.False(t, h.ledger.Contains("7"))
}

func TestProcessCall_MinLengthCountsCharacters(t *testing.T) {
	h := newHarness(t, nil, Options{})
	// 100 Cyrillic letters are 200 bytes.
	h.source.On("Transcript", mock.Anything, "8").Return(" "+repeatRune('я', 100)+" ", true).Once()

	assert.Equal(t, OutcomeCommitted, h.orch.ProcessCall(context.Background(), "8", 100))
}

func TestRunPass_NoTranscriptRetriedNextPass(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.source.On("ListRecent", mock.Anything, mock.Anything).
		Return([]model.Call{{ID: "9"}}).Twice()
	h.source.On("Transcript", mock.Anything, "9").Return("", false).Once()
	h.source.On("Transcript", mock.Anything, "9").Return(transcriptOf(200), true).Once()

	first := h.orch.RunPass(context.Background())
	second := h.orch.RunPass(context.Background())

	assert.Equal(t, 1, first.Count(OutcomeNoTranscript))
	assert.Equal(t, 1, second.Count(OutcomeCommitted))
}

func TestRunPass_SinkFailureNotCommitted(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.sink.err = errors.New("quota exceeded")
	h.source.On("ListRecent", mock.Anything, mock.Anything).
		Return([]model.Call{{ID: "1"}, {ID: "2"}}).Once()
	h.source.On("Transcript", mock.Anything, mock.Anything).Return(transcriptOf(150), true).Twice()

	report := h.orch.RunPass(context.Background())

	assert.Equal(t, 2, report.Count(OutcomeFailedSink))
	assert.False(t, report.Persisted)
	assert.Zero(t, h.ledger.Len())
	assert.Empty(t, h.persisted(t))
}

func TestRunPass_ListingFailureIsEmptyPass(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.source.On("ListRecent", mock.Anything, mock.Anything).Return(nil).Once()

	report := h.orch.RunPass(context.Background())
	assert.Zero(t, report.Listed)
	assert.Empty(t, report.Outcomes)
}

func TestRunPass_AttemptCapDropsCall(t *testing.T) {
	h := newHarness(t, nil, Options{MaxAttempts: 2})
	h.source.On("ListRecent", mock.Anything, mock.Anything).
		Return([]model.Call{{ID: "5"}}).Times(3)
	h.source.On("Transcript", mock.Anything, "5").Return("", false).Twice()

	h.orch.RunPass(context.Background())
	h.orch.RunPass(context.Background())
	third := h.orch.RunPass(context.Background())

	assert.Equal(t, 1, third.Count(OutcomeDropped))
}

func TestProcessCall_CanceledDuringAnalysisFails(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := llm.CompleterFunc(func(_ context.Context, _ llm.Request) (*llm.Response, error) {
		cancel()
		return nil, context.Canceled
	})
	h := newHarness(t, c, Options{})
	h.source.On("Transcript", mock.Anything, "3").Return(transcriptOf(150), true).Once()

	assert.Equal(t, OutcomeFailedAnalyze, h.orch.ProcessCall(ctx, "3", 100))
	assert.Zero(t, h.sink.count())
	assert.False(t, h.ledger.Contains("3"))
}

func TestRunPass_CanceledStopsAndPersistsCommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := newHarness(t, nil, Options{})
	h.source.On("ListRecent", mock.Anything, mock.Anything).
		Return([]model.Call{{ID: "1"}, {ID: "2"}}).Once()
	h.source.On("Transcript", mock.Anything, "1").
		Return(transcriptOf(150), true).Once()

	s := &cancelOnAppend{memSink: h.sink, cancel: cancel}
	h.orch.sink = s

	report := h.orch.RunPass(ctx)

	assert.True(t, report.Interrupted)
	assert.Equal(t, 1, report.Count(OutcomeCommitted))
	assert.True(t, report.Persisted)
	assert.Equal(t, []string{"1"}, h.persisted(t))
}

type cancelOnAppend struct {
	*memSink
	cancel context.CancelFunc
}

func (c *cancelOnAppend) Append(ctx context.Context, row []string) error {
	err := c.memSink.Append(ctx, row)
	c.cancel()
	return err
}

func TestRun_StopsOnCancel(t *testing.T) {
	h := newHarness(t, nil, Options{})
	h.source.On("ListRecent", mock.Anything, mock.Anything).Return([]model.Call{}).Maybe()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- h.orch.Run(ctx, 10*time.Millisecond) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	h.source.AssertCalled(t, "ListRecent", mock.Anything, mock.Anything)
}

func TestNewDeriver(t *testing.T) {
	stage := transform.NewStage(newScripted(billingJSON, `{"headlines":["h"],"ad_texts":["t"]}`))

	d, err := NewDeriver(model.VariantCreatives, stage)
	require.NoError(t, err)
	assert.Equal(t, model.VariantCreatives, d.Variant())

	out, degraded := d.Derive(context.Background(), model.Analysis{})
	assert.False(t, degraded)
	assert.Equal(t, model.Creatives{Headlines: []string{"h"}, AdTexts: []string{"t"}}, out)

	d, err = NewDeriver(model.VariantInsights, stage)
	require.NoError(t, err)
	assert.Equal(t, model.VariantInsights, d.Variant())

	_, err = NewDeriver("memes", stage)
	assert.Error(t, err)
}

func repeatRune(r rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}

func TestRunPass_OnPassHook(t *testing.T) {
	var got []PassReport
	h := newHarness(t, nil, Options{OnPass: func(_ context.Context, r PassReport) { got = append(got, r) }})
	h.source.On("ListRecent", mock.Anything, mock.Anything).Return([]model.Call{}).Once()

	report := h.orch.RunPass(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, report.PassID, got[0].PassID)
}

func TestOutcomeClassification(t *testing.T) {
	for _, o := range []Outcome{OutcomeFailedAnalyze, OutcomeFailedDerive, OutcomeFailedSink} {
		assert.True(t, o.Failed(), o)
		assert.True(t, o.Retryable(), o)
	}
	for _, o := range []Outcome{OutcomeKnown, OutcomeDropped, OutcomeCommitted} {
		assert.False(t, o.Retryable(), o)
	}
	assert.False(t, OutcomeShort.Failed())
	assert.True(t, OutcomeShort.Retryable())
}
