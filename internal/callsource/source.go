// Package callsource lists recent calls and resolves their transcripts. Every
// upstream failure is logged and degrades to "no data" so a pass never
// aborts because the call platform is unavailable.
package callsource

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/internal/transcript"
	"github.com/sells-group/call-insights/pkg/exolve"
)

// DefaultPageLimit caps one listing request. Only the first page is read.
const DefaultPageLimit = 50

// Source adapts the call platform to the pipeline.
type Source struct {
	client    exolve.Client
	resolver  *transcript.Resolver
	pageLimit int
	now       func() time.Time
}

// Option configures a Source.
type Option func(*Source)

// WithPageLimit overrides the listing page size.
func WithPageLimit(n int) Option {
	return func(s *Source) {
		if n > 0 {
			s.pageLimit = n
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		s.now = now
	}
}

// New creates a Source. A nil resolver uses the default extractor chain.
func New(client exolve.Client, resolver *transcript.Resolver, opts ...Option) *Source {
	if resolver == nil {
		resolver = transcript.NewResolver()
	}
	s := &Source{
		client:    client,
		resolver:  resolver,
		pageLimit: DefaultPageLimit,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ListRecent returns calls that ended within window of now. Listing failures
// yield an empty slice. Calls more than one page deep are not returned.
func (s *Source) ListRecent(ctx context.Context, window time.Duration) []model.Call {
	end := s.now()
	start := end.Add(-window)

	resp, err := s.client.ListCalls(ctx, exolve.ListCallsRequest{
		Start: start,
		End:   end,
		Limit: s.pageLimit,
	})
	if err != nil {
		zap.L().Error("callsource: list calls failed",
			zap.Time("start", start),
			zap.Time("end", end),
			zap.Error(err),
		)
		return nil
	}

	calls := make([]model.Call, 0, len(resp.Calls))
	for _, raw := range resp.Calls {
		id := model.CallID(raw["uid"])
		if id == "" {
			id = model.CallID(raw["id"])
		}
		if id == "" {
			zap.L().Debug("callsource: skipping call without identifier", zap.Strings("keys", keys(raw)))
			continue
		}
		calls = append(calls, model.Call{
			ID:           id,
			DiscoveredAt: end,
			Metadata:     raw,
		})
	}

	if len(resp.Calls) >= s.pageLimit {
		zap.L().Warn("callsource: listing hit page limit, later calls are not fetched this pass",
			zap.Int("limit", s.pageLimit),
		)
	}

	return calls
}

// Transcript fetches call details and extracts the transcript. Fetch errors
// and unrecognized payloads both return false.
func (s *Source) Transcript(ctx context.Context, callID string) (string, bool) {
	payload, err := s.client.GetCall(ctx, callID)
	if err != nil {
		zap.L().Error("callsource: get call details failed",
			zap.String("call_id", callID),
			zap.Error(err),
		)
		return "", false
	}

	text, ok := s.resolver.Resolve(payload)
	if !ok {
		zap.L().Warn("callsource: no transcript in call details",
			zap.String("call_id", callID),
			zap.Strings("keys", keys(payload)),
		)
		return "", false
	}
	return text, true
}

// Details returns the raw call-detail payload, for debugging.
func (s *Source) Details(ctx context.Context, callID string) (map[string]any, error) {
	return s.client.GetCall(ctx, callID)
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
