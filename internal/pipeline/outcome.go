package pipeline

import (
	"strings"
	"time"
)

// Outcome is the terminal state of one call within a pass.
type Outcome string

const (
	OutcomeCommitted     Outcome = "committed"
	OutcomeKnown         Outcome = "skipped_known"
	OutcomeNoTranscript  Outcome = "skipped_no_transcript"
	OutcomeShort         Outcome = "skipped_short"
	OutcomeFailedAnalyze Outcome = "failed_analysis"
	OutcomeFailedDerive  Outcome = "failed_derive"
	OutcomeFailedSink    Outcome = "failed_sink"
	// OutcomeDropped marks a call that exhausted its attempt budget.
	OutcomeDropped Outcome = "dropped"
)

// Committed reports whether the call reached the ledger.
func (o Outcome) Committed() bool { return o == OutcomeCommitted }

// Failed reports whether processing started but did not reach the sink.
func (o Outcome) Failed() bool { return strings.HasPrefix(string(o), "failed_") }

// Retryable reports whether a later pass will look at the call again.
func (o Outcome) Retryable() bool {
	switch o {
	case OutcomeCommitted, OutcomeKnown, OutcomeDropped:
		return false
	default:
		return true
	}
}

// PassReport summarizes one pass.
type PassReport struct {
	PassID   string          `json:"pass_id"`
	Started  time.Time       `json:"started"`
	Duration time.Duration   `json:"duration"`
	Listed   int             `json:"listed"`
	Outcomes map[Outcome]int `json:"outcomes"`
	// Degraded counts committed calls with at least one degraded stage.
	Degraded int `json:"degraded"`
	// Persisted is false when nothing was committed or the write failed.
	Persisted  bool   `json:"persisted"`
	PersistErr string `json:"persist_error,omitempty"`
	// Interrupted is set when the pass stopped early on cancellation.
	Interrupted bool `json:"interrupted,omitempty"`
}

// Count returns the number of calls that ended in o.
func (r PassReport) Count(o Outcome) int {
	return r.Outcomes[o]
}
