// Package sink writes one row per committed call to a tabular store and
// reads the rows back for display.
package sink

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/call-insights/internal/config"
	"github.com/sells-group/call-insights/internal/model"
	"github.com/sells-group/call-insights/pkg/google"
	"github.com/sells-group/call-insights/pkg/notion"
)

// Sink is an append-only tabular store.
type Sink interface {
	// Append writes one row. A nil error means the row is stored.
	Append(ctx context.Context, row []string) error
	// Rows returns every data row keyed by column header.
	Rows(ctx context.Context) ([]map[string]string, error)
}

// New builds the sink selected by cfg.Driver. ctx scopes background token
// refreshes for the sheets driver and should live as long as the sink.
func New(ctx context.Context, cfg config.SinkConfig, variant model.Variant) (Sink, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	header := Header(variant)

	var s Sink
	switch cfg.Driver {
	case "", "sheets":
		id, err := google.SpreadsheetID(cfg.Sheets.URL)
		if err != nil {
			return nil, eris.Wrap(err, "sink: sheets")
		}
		opts := []google.Option{google.WithBaseURL(cfg.Sheets.BaseURL)}
		token := cfg.Sheets.AccessToken
		switch {
		case cfg.Sheets.CredentialsFile != "":
			hc, err := google.ServiceAccountHTTPClientFromFile(context.WithoutCancel(ctx), cfg.Sheets.CredentialsFile, timeout)
			if err != nil {
				return nil, eris.Wrap(err, "sink: sheets")
			}
			opts = append(opts, google.WithHTTPClient(hc))
			token = ""
		case timeout > 0:
			opts = append(opts, google.WithHTTPClient(&http.Client{Timeout: timeout}))
		}
		client := google.NewSheetsClient(token, opts...)
		s = NewSheets(client, id, cfg.Sheets.Range, header)
	case "xlsx":
		s = NewXLSX(cfg.XLSX.Path, cfg.XLSX.Sheet, header)
	case "notion":
		s = NewNotion(notion.NewClient(cfg.Notion.Token, notion.WithRateLimit(cfg.Notion.RequestsPerSecond)),
			cfg.Notion.DatabaseID, header)
	default:
		return nil, eris.Errorf("sink: unknown driver %q", cfg.Driver)
	}

	if timeout > 0 {
		s = WithTimeout(s, timeout)
	}
	return s, nil
}

type timeoutSink struct {
	next    Sink
	timeout time.Duration
}

// WithTimeout bounds every call on next by d.
func WithTimeout(next Sink, d time.Duration) Sink {
	return &timeoutSink{next: next, timeout: d}
}

func (t *timeoutSink) Append(ctx context.Context, row []string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Append(ctx, row)
}

func (t *timeoutSink) Rows(ctx context.Context) ([]map[string]string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Rows(ctx)
}
