// Package monitoring aggregates pass reports into rolling metrics and raises
// alerts when failure or degradation rates cross configured thresholds.
package monitoring

import (
	"sync"
	"time"

	"github.com/sells-group/call-insights/internal/pipeline"
)

// MetricsSnapshot holds a point-in-time view of pipeline health.
type MetricsSnapshot struct {
	Passes    int `json:"passes"`
	Listed    int `json:"listed"`
	Committed int `json:"committed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Dropped   int `json:"dropped"`
	Degraded  int `json:"degraded"`

	// FailRate is failed / (committed + failed).
	FailRate float64 `json:"fail_rate"`
	// DegradedRate is degraded / committed.
	DegradedRate float64 `json:"degraded_rate"`

	PersistFailures int `json:"persist_failures"`

	LastPass *pipeline.PassReport `json:"last_pass,omitempty"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Finished is the number of calls that reached a commit or failure.
func (s MetricsSnapshot) Finished() int {
	return s.Committed + s.Failed
}

// Collector keeps the pass reports inside the lookback window.
type Collector struct {
	lookback time.Duration
	now      func() time.Time

	mu      sync.Mutex
	reports []pipeline.PassReport
}

// NewCollector creates a collector. A non-positive lookback keeps 24 hours.
func NewCollector(lookbackHours int) *Collector {
	if lookbackHours <= 0 {
		lookbackHours = 24
	}
	return &Collector{
		lookback: time.Duration(lookbackHours) * time.Hour,
		now:      time.Now,
	}
}

// Record adds a finished pass and evicts reports older than the window.
func (c *Collector) Record(r pipeline.PassReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports = append(c.reports, r)
	c.evict()
}

// Snapshot summarizes the reports inside the window.
func (c *Collector) Snapshot() MetricsSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evict()

	snap := MetricsSnapshot{
		LookbackHours: int(c.lookback / time.Hour),
		CollectedAt:   c.now().UTC(),
		Passes:        len(c.reports),
	}

	for _, r := range c.reports {
		snap.Listed += r.Listed
		snap.Degraded += r.Degraded
		if r.PersistErr != "" {
			snap.PersistFailures++
		}
		for o, n := range r.Outcomes {
			switch {
			case o.Committed():
				snap.Committed += n
			case o == pipeline.OutcomeDropped:
				snap.Dropped += n
			case o.Failed():
				snap.Failed += n
			default:
				snap.Skipped += n
			}
		}
	}

	if finished := snap.Finished(); finished > 0 {
		snap.FailRate = float64(snap.Failed) / float64(finished)
	}
	if snap.Committed > 0 {
		snap.DegradedRate = float64(snap.Degraded) / float64(snap.Committed)
	}
	if n := len(c.reports); n > 0 {
		last := c.reports[n-1]
		snap.LastPass = &last
	}
	return snap
}

func (c *Collector) evict() {
	cutoff := c.now().Add(-c.lookback)
	i := 0
	for i < len(c.reports) && c.reports[i].Started.Before(cutoff) {
		i++
	}
	if i > 0 {
		c.reports = append(c.reports[:0], c.reports[i:]...)
	}
}
