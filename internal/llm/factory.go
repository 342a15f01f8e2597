package llm

import (
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/call-insights/internal/config"
	"github.com/sells-group/call-insights/internal/resilience"
	"github.com/sells-group/call-insights/pkg/anthropic"
	"github.com/sells-group/call-insights/pkg/yandexgpt"
)

// New builds the configured provider and wraps it with the rate limiter
// (when requests_per_second > 0) and the circuit breaker.
func New(cfg *config.Config) (Completer, error) {
	var c Completer
	switch cfg.LLM.Provider {
	case "yandex":
		c = NewYandex(yandexgpt.NewClient(cfg.Yandex.Key, cfg.Yandex.FolderID,
			yandexgpt.WithBaseURL(cfg.Yandex.BaseURL),
			yandexgpt.WithModel(cfg.Yandex.Model),
		), cfg.Yandex.Model)
	case "anthropic":
		c = NewAnthropic(anthropic.NewClient(cfg.Anthropic.Key,
			anthropic.WithBaseURL(cfg.Anthropic.BaseURL),
			anthropic.WithHTTPClient(&http.Client{Timeout: 2 * time.Minute}),
		), cfg.Anthropic.Model)
	default:
		return nil, eris.Errorf("llm: unknown provider %q", cfg.LLM.Provider)
	}

	if rps := cfg.LLM.RequestsPerSecond; rps > 0 {
		c = WithRateLimit(c, rate.NewLimiter(rate.Limit(rps), max(int(rps), 1)))
	}

	breakerCfg := resilience.FromCircuitConfig(cfg.Circuit.FailureThreshold, cfg.Circuit.ResetTimeoutSecs)
	breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
		zap.L().Warn("llm: circuit breaker state change",
			zap.String("provider", cfg.LLM.Provider),
			zap.Stringer("from", from),
			zap.Stringer("to", to),
		)
	}
	return WithCircuitBreaker(c, resilience.NewCircuitBreaker(breakerCfg)), nil
}
