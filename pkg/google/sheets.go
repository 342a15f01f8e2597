// Package google wraps the Google Sheets v4 values API.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://sheets.googleapis.com/v4"

// SheetsClient appends and reads spreadsheet rows.
type SheetsClient interface {
	AppendRow(ctx context.Context, spreadsheetID, rng string, row []string) (*AppendResponse, error)
	GetValues(ctx context.Context, spreadsheetID, rng string) (*ValueRange, error)
}

// ValueRange is a block of cell values.
type ValueRange struct {
	Range          string     `json:"range,omitempty"`
	MajorDimension string     `json:"majorDimension,omitempty"`
	Values         [][]string `json:"values"`
}

// AppendResponse is the response from values:append.
type AppendResponse struct {
	SpreadsheetID string        `json:"spreadsheetId"`
	TableRange    string        `json:"tableRange"`
	Updates       UpdatedValues `json:"updates"`
}

// UpdatedValues summarizes what an append changed.
type UpdatedValues struct {
	UpdatedRange string `json:"updatedRange"`
	UpdatedRows  int    `json:"updatedRows"`
	UpdatedCells int    `json:"updatedCells"`
}

var (
	spreadsheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	bareIDPattern        = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// SpreadsheetID extracts the id from a spreadsheet URL. A bare id is
// returned unchanged.
func SpreadsheetID(raw string) (string, error) {
	if m := spreadsheetIDPattern.FindStringSubmatch(raw); m != nil {
		return m[1], nil
	}
	if raw != "" && bareIDPattern.MatchString(raw) {
		return raw, nil
	}
	return "", eris.Errorf("google: cannot find spreadsheet id in %q", raw)
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

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	accessToken string
	baseURL     string
	http        *http.Client
}

// NewSheetsClient creates a Sheets client. A non-empty accessToken is sent
// as a static bearer header; leave it empty when the http.Client from
// WithHTTPClient authorizes requests itself (ServiceAccountHTTPClient).
func NewSheetsClient(accessToken string, opts ...Option) SheetsClient {
	c := &httpClient{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) AppendRow(ctx context.Context, spreadsheetID, rng string, row []string) (*AppendResponse, error) {
	q := url.Values{}
	q.Set("valueInputOption", "RAW")
	q.Set("insertDataOption", "INSERT_ROWS")
	path := "/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(rng) + ":append?" + q.Encode()

	body, err := json.Marshal(ValueRange{MajorDimension: "ROWS", Values: [][]string{row}})
	if err != nil {
		return nil, eris.Wrap(err, "google: marshal append")
	}

	respBody, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, eris.Wrap(err, "google: append row")
	}

	var result AppendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal append response")
	}
	return &result, nil
}

func (c *httpClient) GetValues(ctx context.Context, spreadsheetID, rng string) (*ValueRange, error) {
	path := "/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(rng)

	respBody, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, eris.Wrap(err, "google: get values")
	}

	var result ValueRange
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "google: unmarshal values")
	}
	return &result, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, eris.Wrap(err, "create request")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

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
