// Package exolve wraps the Exolve call-statistics API.
package exolve

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://app.exolve.ru/api/v1"

// Client performs Exolve API operations. Payloads are returned as raw JSON
// objects because their shape is not stable across API versions.
type Client interface {
	ListCalls(ctx context.Context, req ListCallsRequest) (*ListCallsResponse, error)
	GetCall(ctx context.Context, callID string) (map[string]any, error)
}

// ListCallsRequest selects calls that ended inside [Start, End].
type ListCallsRequest struct {
	Start time.Time
	End   time.Time
	Limit int
}

// ListCallsResponse is the response from the call listing endpoint.
type ListCallsResponse struct {
	Calls []map[string]any `json:"calls"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an Exolve API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) ListCalls(ctx context.Context, req ListCallsRequest) (*ListCallsResponse, error) {
	q := url.Values{}
	q.Set("start_date", req.Start.Format(time.RFC3339))
	q.Set("end_date", req.End.Format(time.RFC3339))
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}

	body, err := c.get(ctx, "/statistics/calls?"+q.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "exolve: list calls")
	}

	var result ListCallsResponse
	if err := decode(body, &result); err != nil {
		return nil, eris.Wrap(err, "exolve: unmarshal calls")
	}
	return &result, nil
}

func (c *httpClient) GetCall(ctx context.Context, callID string) (map[string]any, error) {
	body, err := c.get(ctx, "/statistics/calls/"+url.PathEscape(callID))
	if err != nil {
		return nil, eris.Wrapf(err, "exolve: get call %s", callID)
	}

	var result map[string]any
	if err := decode(body, &result); err != nil {
		return nil, eris.Wrapf(err, "exolve: unmarshal call %s", callID)
	}
	return result, nil
}

func (c *httpClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// decode keeps numeric identifiers exact by decoding numbers as json.Number.
func decode(body []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	return dec.Decode(v)
}
