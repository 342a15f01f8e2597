package sink

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/call-insights/pkg/google"
)

// Sheets appends rows to a Google spreadsheet.
type Sheets struct {
	client        google.SheetsClient
	spreadsheetID string
	rng           string
	header        []string

	mu            sync.Mutex
	headerChecked bool
}

// NewSheets creates a spreadsheet sink. rng names the target sheet
// (e.g. "Sheet1").
func NewSheets(client google.SheetsClient, spreadsheetID, rng string, header []string) *Sheets {
	if rng == "" {
		rng = "Sheet1"
	}
	return &Sheets{
		client:        client,
		spreadsheetID: spreadsheetID,
		rng:           rng,
		header:        header,
	}
}

// Append writes the header first if the sheet is empty, then the row.
func (s *Sheets) Append(ctx context.Context, row []string) error {
	if err := s.ensureHeader(ctx); err != nil {
		return err
	}
	resp, err := s.client.AppendRow(ctx, s.spreadsheetID, s.rng, row)
	if err != nil {
		return eris.Wrap(err, "sink: sheets append")
	}
	zap.L().Debug("sink: row appended",
		zap.String("driver", "sheets"),
		zap.String("range", resp.Updates.UpdatedRange),
	)
	return nil
}

func (s *Sheets) ensureHeader(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headerChecked {
		return nil
	}

	first, err := s.client.GetValues(ctx, s.spreadsheetID, s.rng+"!1:1")
	if err != nil {
		return eris.Wrap(err, "sink: sheets read header")
	}
	if len(first.Values) == 0 || isBlank(first.Values[0]) {
		if _, err := s.client.AppendRow(ctx, s.spreadsheetID, s.rng, s.header); err != nil {
			return eris.Wrap(err, "sink: sheets write header")
		}
	}
	s.headerChecked = true
	return nil
}

// Rows reads the whole sheet and maps rows by its first row.
func (s *Sheets) Rows(ctx context.Context) ([]map[string]string, error) {
	vr, err := s.client.GetValues(ctx, s.spreadsheetID, s.rng)
	if err != nil {
		return nil, eris.Wrap(err, "sink: sheets rows")
	}
	return recordsFromValues(vr.Values), nil
}
