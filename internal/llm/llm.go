// Package llm abstracts the text-completion endpoint behind a single
// Completer interface and provides the guards applied around it.
package llm

import (
	"context"
)

// Completer produces a free-text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a provider-independent completion request.
type Request struct {
	// Phase names the calling stage for cost attribution ("analysis", "insights", ...).
	Phase       string
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Response is a provider-independent completion.
type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Usage reports token consumption.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (*Response, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
