package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/call-insights/internal/resilience"
)

// WithCircuitBreaker rejects completions with resilience.ErrCircuitOpen while
// the breaker is open.
func WithCircuitBreaker(next Completer, cb *resilience.CircuitBreaker) Completer {
	return CompleterFunc(func(ctx context.Context, req Request) (*Response, error) {
		return resilience.ExecuteVal(ctx, cb, func(ctx context.Context) (*Response, error) {
			return next.Complete(ctx, req)
		})
	})
}

// WithRateLimit waits for the limiter before each completion. The wait
// honors ctx.
func WithRateLimit(next Completer, limiter *rate.Limiter) Completer {
	return CompleterFunc(func(ctx context.Context, req Request) (*Response, error) {
		if err := limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "llm: rate limit")
		}
		return next.Complete(ctx, req)
	})
}
