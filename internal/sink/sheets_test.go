package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/call-insights/pkg/google"
	"github.com/sells-group/call-insights/pkg/google/mocks"
)

func TestSheets_AppendWritesHeaderOnce(t *testing.T) {
	mc := mocks.NewMockSheetsClient(t)
	header := []string{"timestamp", "main_problem"}
	s := NewSheets(mc, "sheet-id", "", header)
	ctx := context.Background()

	mc.On("GetValues", ctx, "sheet-id", "Sheet1!1:1").
		Return(&google.ValueRange{}, nil).Once()
	mc.On("AppendRow", ctx, "sheet-id", "Sheet1", header).
		Return(&google.AppendResponse{}, nil).Once()
	mc.On("AppendRow", ctx, "sheet-id", "Sheet1", []string{"t1", "p1"}).
		Return(&google.AppendResponse{}, nil).Once()
	mc.On("AppendRow", ctx, "sheet-id", "Sheet1", []string{"t2", "p2"}).
		Return(&google.AppendResponse{}, nil).Once()

	require.NoError(t, s.Append(ctx, []string{"t1", "p1"}))
	require.NoError(t, s.Append(ctx, []string{"t2", "p2"}))
}

func TestSheets_AppendSkipsExistingHeader(t *testing.T) {
	mc := mocks.NewMockSheetsClient(t)
	s := NewSheets(mc, "id", "Calls", []string{"a"})

	mc.On("GetValues", mock.Anything, "id", "Calls!1:1").
		Return(&google.ValueRange{Values: [][]string{{"a"}}}, nil).Once()
	mc.On("AppendRow", mock.Anything, "id", "Calls", []string{"1"}).
		Return(&google.AppendResponse{}, nil).Once()

	require.NoError(t, s.Append(context.Background(), []string{"1"}))
}

func TestSheets_AppendError(t *testing.T) {
	mc := mocks.NewMockSheetsClient(t)
	s := NewSheets(mc, "id", "Calls", []string{"a"})

	mc.On("GetValues", mock.Anything, "id", "Calls!1:1").
		Return(&google.ValueRange{Values: [][]string{{"a"}}}, nil).Once()
	mc.On("AppendRow", mock.Anything, "id", "Calls", mock.Anything).
		Return(nil, errors.New("quota exceeded")).Once()

	err := s.Append(context.Background(), []string{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets append")
}

func TestSheets_HeaderCheckRetriedAfterFailure(t *testing.T) {
	mc := mocks.NewMockSheetsClient(t)
	s := NewSheets(mc, "id", "Calls", []string{"a"})

	mc.On("GetValues", mock.Anything, "id", "Calls!1:1").
		Return(nil, errors.New("503")).Once()
	require.Error(t, s.Append(context.Background(), []string{"1"}))

	mc.On("GetValues", mock.Anything, "id", "Calls!1:1").
		Return(&google.ValueRange{Values: [][]string{{"a"}}}, nil).Once()
	mc.On("AppendRow", mock.Anything, "id", "Calls", []string{"1"}).
		Return(&google.AppendResponse{}, nil).Once()
	require.NoError(t, s.Append(context.Background(), []string{"1"}))
}

func TestSheets_Rows(t *testing.T) {
	mc := mocks.NewMockSheetsClient(t)
	s := NewSheets(mc, "id", "Calls", nil)

	mc.On("GetValues", mock.Anything, "id", "Calls").
		Return(&google.ValueRange{Values: [][]string{
			{"timestamp", "main_problem"},
			{"2026-10-18 09:00:00", "billing error"},
		}}, nil).Once()

	rows, err := s.Rows(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{{"timestamp": "2026-10-18 09:00:00", "main_problem": "billing error"}}, rows)
}
