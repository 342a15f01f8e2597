package llm

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/call-insights/pkg/yandexgpt"
)

type yandexCompleter struct {
	client yandexgpt.Client
	model  string
}

// NewYandex returns a Completer backed by YandexGPT.
func NewYandex(client yandexgpt.Client, model string) Completer {
	return &yandexCompleter{client: client, model: model}
}

func (c *yandexCompleter) Complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.client.Complete(ctx, yandexgpt.CompletionRequest{
		CompletionOptions: yandexgpt.CompletionOptions{
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		},
		Messages: []yandexgpt.Message{
			{Role: "system", Text: req.System},
			{Role: "user", Text: req.Prompt},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "llm: yandex completion")
	}

	text, err := resp.Text()
	if err != nil {
		return nil, eris.Wrap(err, "llm: yandex completion")
	}

	in, _ := resp.Result.Usage.InputTextTokens.Int64()
	out, _ := resp.Result.Usage.CompletionTokens.Int64()
	zap.L().Debug("llm: yandex usage",
		zap.String("model", c.model),
		zap.String("phase", req.Phase),
		zap.Int64("input_tokens", in),
		zap.Int64("output_tokens", out),
	)

	return &Response{
		Text:  text,
		Model: c.model,
		Usage: Usage{InputTokens: in, OutputTokens: out},
	}, nil
}
