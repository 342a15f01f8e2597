package notion_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/call-insights/pkg/notion"
	"github.com/sells-group/call-insights/pkg/notion/mocks"
)

func TestQueryAll_Paginates(t *testing.T) {
	mc := mocks.NewMockClient(t)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-1", mock.MatchedBy(func(r *notionapi.DatabaseQueryRequest) bool {
		return r.StartCursor == ""
	})).Return(&notionapi.DatabaseQueryResponse{
		Results:    []notionapi.Page{{ID: "p1"}, {ID: "p2"}},
		HasMore:    true,
		NextCursor: "c2",
	}, nil).Once()
	mc.On("QueryDatabase", ctx, "db-1", mock.MatchedBy(func(r *notionapi.DatabaseQueryRequest) bool {
		return r.StartCursor == "c2"
	})).Return(&notionapi.DatabaseQueryResponse{
		Results: []notionapi.Page{{ID: "p3"}},
	}, nil).Once()

	pages, err := notion.QueryAll(ctx, mc, "db-1", nil)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	assert.Equal(t, notionapi.ObjectID("p3"), pages[2].ID)
}

func TestQueryAll_Error(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("QueryDatabase", mock.Anything, "db-1", mock.Anything).
		Return(nil, errors.New("boom")).Once()

	_, err := notion.QueryAll(context.Background(), mc, "db-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query all")
}

func TestAppendRow(t *testing.T) {
	mc := mocks.NewMockClient(t)
	header := []string{"Дата", "Проблема"}

	mc.On("CreatePage", mock.Anything, mock.MatchedBy(func(r *notionapi.PageCreateRequest) bool {
		return r.Parent.DatabaseID == "db-1" &&
			notion.PlainText(r.Properties["Дата"]) == "2026-10-18 09:00" &&
			notion.PlainText(r.Properties["Проблема"]) == "доставка"
	})).Return(&notionapi.Page{ID: "new"}, nil).Once()

	page, err := notion.AppendRow(context.Background(), mc, "db-1", header, []string{"2026-10-18 09:00", "доставка"})
	require.NoError(t, err)
	assert.Equal(t, notionapi.ObjectID("new"), page.ID)
}
