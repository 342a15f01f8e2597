package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll follows the cursor until every page of the database is read.
// sorts may be nil.
func QueryAll(ctx context.Context, c Client, dbID string, sorts []notionapi.SortObject) ([]notionapi.Page, error) {
	var (
		all    []notionapi.Page
		cursor notionapi.Cursor
	)
	for {
		resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
			Sorts:       sorts,
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all")
		}
		all = append(all, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			return all, nil
		}
		cursor = resp.NextCursor
	}
}

// AppendRow creates one page whose properties hold the row values, keyed by
// the matching header. The first column becomes the title.
func AppendRow(ctx context.Context, c Client, dbID string, header, row []string) (*notionapi.Page, error) {
	page, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: RowProperties(header, row),
	})
	if err != nil {
		return nil, eris.Wrap(err, "notion: append row")
	}
	return page, nil
}
