package llm

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/call-insights/pkg/anthropic"
)

type anthropicCompleter struct {
	client anthropic.Client
	model  string
}

// NewAnthropic returns a Completer backed by the Anthropic Messages API.
func NewAnthropic(client anthropic.Client, model string) Completer {
	return &anthropicCompleter{client: client, model: model}
}

func (c *anthropicCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	temp := req.Temperature
	resp, err := c.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       c.model,
		MaxTokens:   int64(req.MaxTokens),
		System:      req.System,
		Messages:    []anthropic.Message{{Role: "user", Content: req.Prompt}},
		Temperature: &temp,
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: anthropic completion")
	}

	resp.Usage.LogCost(c.model, req.Phase)

	return &Response{
		Text:  resp.Text(),
		Model: resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
