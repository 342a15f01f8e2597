package monitoring

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/call-insights/internal/config"
	"github.com/sells-group/call-insights/internal/pipeline"
)

// Checker records each pass and evaluates alerts after it. An alert type is
// sent at most once per cooldown.
type Checker struct {
	collector *Collector
	alerter   *Alerter
	cooldown  time.Duration

	mu       sync.Mutex
	lastSent map[AlertType]time.Time
	now      func() time.Time
}

// NewChecker creates a checker. The cooldown equals the lookback window.
func NewChecker(collector *Collector, alerter *Alerter, cfg config.MonitoringConfig) *Checker {
	cooldown := time.Duration(cfg.LookbackWindowHours) * time.Hour
	if cooldown <= 0 {
		cooldown = time.Hour
	}
	return &Checker{
		collector: collector,
		alerter:   alerter,
		cooldown:  cooldown,
		lastSent:  make(map[AlertType]time.Time),
		now:       time.Now,
	}
}

// Observe is the orchestrator's per-pass hook.
func (c *Checker) Observe(ctx context.Context, report pipeline.PassReport) {
	c.collector.Record(report)

	alerts := c.due(c.alerter.Evaluate(c.collector.Snapshot()))
	if len(alerts) == 0 {
		zap.L().Debug("monitoring: no alerts triggered", zap.String("pass_id", report.PassID))
		return
	}

	sent := c.alerter.SendAlerts(context.WithoutCancel(ctx), alerts)
	zap.L().Info("monitoring: alert check complete",
		zap.String("pass_id", report.PassID),
		zap.Int("alerts_triggered", len(alerts)),
		zap.Int("alerts_sent", sent),
	)
}

// due filters out alert types still inside their cooldown and stamps the
// rest.
func (c *Checker) due(alerts []Alert) []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	out := alerts[:0]
	for _, a := range alerts {
		if last, ok := c.lastSent[a.Type]; ok && now.Sub(last) < c.cooldown {
			continue
		}
		c.lastSent[a.Type] = now
		out = append(out, a)
	}
	return out
}
