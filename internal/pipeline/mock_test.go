package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/call-insights/internal/llm"
	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/internal/transform"
)

// --- CallSource Mock ---

type mockCallSource struct {
	mock.Mock
}

func (m *mockCallSource) ListRecent(ctx context.Context, window time.Duration) []model.Call {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]model.Call)
}

func (m *mockCallSource) Transcript(ctx context.Context, callID string) (string, bool) {
	args := m.Called(ctx, callID)
	return args.String(0), args.Bool(1)
}

// --- Sink Fake ---

type memSink struct {
	mu   sync.Mutex
	rows [][]string
	err  error
}

func (s *memSink) Append(_ context.Context, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.rows = append(s.rows, row)
	return nil
}

func (s *memSink) Rows(context.Context) ([]map[string]string, error) {
	return nil, errors.New("not implemented")
}

func (s *memSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// --- Completer Fakes ---

const (
	billingJSON = `{"main_problem":"billing error","key_fear":"losing money","result_solution":"refund","original_phrases":["it charged me twice"],"tags":["billing"]}`
	insightJSON = `{"product_insights":["flag duplicate charges"],"feature_suggestions":[],"ux_improvements":[],"priority_level":"high"}`
)

// scripted answers analysis and derivation prompts by phase and counts calls.
type scripted struct {
	mu      sync.Mutex
	replies map[string]string
	calls   map[string]int
}

func newScripted(analysis, derive string) *scripted {
	return &scripted{
		replies: map[string]string{
			string(transform.KindAnalysis):  analysis,
			string(transform.KindInsights):  derive,
			string(transform.KindCreatives): derive,
		},
		calls: make(map[string]int),
	}
}

func (s *scripted) Complete(_ context.Context, req llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[req.Phase]++
	return &llm.Response{Text: s.replies[req.Phase], Model: "test"}, nil
}

func (s *scripted) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func transcriptOf(n int) string {
	return strings.Repeat("a", n)
}

func stringsReader(s string) *strings.Reader {
	return strings.NewReader(s)
}
