package sink

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"

	"github.com/sells-group/call-insights/pkg/notion"
)

// Notion stores each row as a page in a Notion database whose property
// names match the header.
type Notion struct {
	client     notion.Client
	databaseID string
	header     []string
}

// NewNotion creates a Notion database sink.
func NewNotion(client notion.Client, databaseID string, header []string) *Notion {
	return &Notion{client: client, databaseID: databaseID, header: header}
}

// Append creates one page for row.
func (n *Notion) Append(ctx context.Context, row []string) error {
	if _, err := notion.AppendRow(ctx, n.client, n.databaseID, n.header, row); err != nil {
		return eris.Wrap(err, "sink: notion append")
	}
	return nil
}

// Rows returns every page ordered by the first column, which holds the
// row timestamp.
func (n *Notion) Rows(ctx context.Context) ([]map[string]string, error) {
	var sorts []notionapi.SortObject
	if len(n.header) > 0 {
		sorts = []notionapi.SortObject{{Property: n.header[0], Direction: notionapi.SortOrderASC}}
	}
	pages, err := notion.QueryAll(ctx, n.client, n.databaseID, sorts)
	if err != nil {
		return nil, eris.Wrap(err, "sink: notion rows")
	}
	out := make([]map[string]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, notion.PageRow(p, n.header))
	}
	return out, nil
}
