package pipeline

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/internal/sink"
)

// EventCallFinished is the only event type that triggers processing.
const EventCallFinished = "call_finished"

var (
	// ErrMissingEventType is returned for an event without an event type.
	ErrMissingEventType = eris.New("pipeline: event has no event type")
	// ErrInvalidEvent is returned for a processable event without a call id.
	ErrInvalidEvent = eris.New("pipeline: event has no call id")
)

// Event is an inbound notification from the call platform.
type Event struct {
	EventType string `json:"event_type"`
	// CallID may arrive as a string or a number.
	CallID any `json:"call_id"`
}

// EventStatus is the handling result reported to the caller.
type EventStatus string

const (
	EventSuccess EventStatus = "success"
	EventIgnored EventStatus = "ignored"
)

// EventResult describes a handled event.
type EventResult struct {
	CallID  string      `json:"call_id,omitempty"`
	Status  EventStatus `json:"status"`
	Outcome Outcome     `json:"outcome,omitempty"`
	Reason  string      `json:"reason,omitempty"`
}

// EventProcessor handles one event at a time per call id. It remembers
// committed calls for the life of the process only.
type EventProcessor struct {
	source   CallSource
	analyzer Analyzer
	deriver  Deriver
	sink     sink.Sink
	minLen   int
	now      func() time.Time

	mu       sync.Mutex
	seen     map[string]struct{}
	inflight map[string]struct{}
}

// NewEventProcessor creates an EventProcessor. minLen is the shortest
// transcript accepted from the event path.
func NewEventProcessor(source CallSource, analyzer Analyzer, deriver Deriver, s sink.Sink, minLen int) *EventProcessor {
	return &EventProcessor{
		source:   source,
		analyzer: analyzer,
		deriver:  deriver,
		sink:     s,
		minLen:   minLen,
		now:      time.Now,
		seen:     make(map[string]struct{}),
		inflight: make(map[string]struct{}),
	}
}

// Handle processes ev synchronously. A non-nil error means the call was
// not committed; ErrMissingEventType and ErrInvalidEvent mark a malformed
// event. Only a present event type other than call_finished is ignored.
func (p *EventProcessor) Handle(ctx context.Context, ev Event) (EventResult, error) {
	if strings.TrimSpace(ev.EventType) == "" {
		return EventResult{}, ErrMissingEventType
	}
	if ev.EventType != EventCallFinished {
		return EventResult{Status: EventIgnored, Reason: "event type " + ev.EventType}, nil
	}
	id := model.CallID(ev.CallID)
	if id == "" {
		return EventResult{}, ErrInvalidEvent
	}
	log := zap.L().With(zap.String("call_id", id), zap.String("event_type", ev.EventType))

	if !p.claim(id) {
		log.Info("pipeline: duplicate event ignored")
		return EventResult{CallID: id, Status: EventIgnored, Reason: "duplicate"}, nil
	}

	res := runCall(ctx, p.source, p.analyzer, p.deriver, p.sink, p.now, id, p.minLen)
	p.release(id, res.outcome.Committed())
	logOutcome(log, res)

	if !res.outcome.Committed() {
		return EventResult{CallID: id, Outcome: res.outcome},
			eris.Errorf("pipeline: call %s not committed: %s", id, res.outcome)
	}
	return EventResult{CallID: id, Status: EventSuccess, Outcome: res.outcome}, nil
}

// Seen reports whether id was committed by this processor.
func (p *EventProcessor) Seen(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.seen[id]
	return ok
}

func (p *EventProcessor) claim(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.seen[id]; ok {
		return false
	}
	if _, ok := p.inflight[id]; ok {
		return false
	}
	p.inflight[id] = struct{}{}
	return true
}

func (p *EventProcessor) release(id string, committed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inflight, id)
	if committed {
		p.seen[id] = struct{}{}
	}
}
