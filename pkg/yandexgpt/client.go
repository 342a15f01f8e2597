// Package yandexgpt wraps the YandexGPT foundation-models completion API.
package yandexgpt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const (
	defaultBaseURL = "https://llm.api.cloud.yandex.net"
	defaultModel   = "yandexgpt-lite"
	completionPath = "/foundationModels/v1/completion"
)

// Client performs completions against YandexGPT.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is the request body for the completion endpoint.
// ModelURI is filled from the folder and model when empty.
type CompletionRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions CompletionOptions `json:"completionOptions"`
	Messages          []Message         `json:"messages"`
}

// CompletionOptions holds sampling parameters.
type CompletionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// Message is a single message. Role is "system", "user" or "assistant".
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// CompletionResponse is the response from the completion endpoint.
type CompletionResponse struct {
	Result Result `json:"result"`
}

// Result wraps the alternatives and usage.
type Result struct {
	Alternatives []Alternative `json:"alternatives"`
	Usage        Usage         `json:"usage"`
	ModelVersion string        `json:"modelVersion"`
}

// Alternative is a single completion alternative.
type Alternative struct {
	Message Message `json:"message"`
	Status  string  `json:"status"`
}

// Usage reports token consumption. The API encodes counts as strings.
type Usage struct {
	InputTextTokens  json.Number `json:"inputTextTokens"`
	CompletionTokens json.Number `json:"completionTokens"`
	TotalTokens      json.Number `json:"totalTokens"`
}

// Text returns the first alternative's text.
func (r *CompletionResponse) Text() (string, error) {
	if len(r.Result.Alternatives) == 0 {
		return "", eris.New("yandexgpt: response has no alternatives")
	}
	return r.Result.Alternatives[0].Message.Text, nil
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *httpClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey   string
	folderID string
	baseURL  string
	model    string
	http     *http.Client
}

// NewClient creates a YandexGPT client for the given folder.
func NewClient(apiKey, folderID string, opts ...Option) Client {
	c := &httpClient{
		apiKey:   apiKey,
		folderID: folderID,
		baseURL:  defaultBaseURL,
		model:    defaultModel,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ModelURI builds the gpt:// URI for a folder and model.
func ModelURI(folderID, model string) string {
	return fmt.Sprintf("gpt://%s/%s", folderID, model)
}

func (c *httpClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if req.ModelURI == "" {
		req.ModelURI = ModelURI(c.folderID, c.model)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "yandexgpt: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+completionPath, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "yandexgpt: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Api-Key "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "yandexgpt: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "yandexgpt: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("yandexgpt: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result CompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "yandexgpt: unmarshal response")
	}

	return &result, nil
}
