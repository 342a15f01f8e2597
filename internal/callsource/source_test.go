package callsource

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/call-insights/pkg/exolve"
	"github.com/sells-group/call-insights/pkg/exolve/mocks"
)

var fixedNow = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func TestListRecent_WindowAndIDs(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("ListCalls", mock.Anything, exolve.ListCallsRequest{
		Start: fixedNow.Add(-time.Hour),
		End:   fixedNow,
		Limit: 50,
	}).Return(&exolve.ListCallsResponse{Calls: []map[string]any{
		{"uid": json.Number("42")},
		{"id": "abc"},
		{"uid": json.Number("43"), "id": "ignored"},
		{"status": "no id"},
	}}, nil)

	src := New(mc, nil, WithClock(clock))
	calls := src.ListRecent(context.Background(), time.Hour)

	require.Len(t, calls, 3)
	assert.Equal(t, "42", calls[0].ID)
	assert.Equal(t, "abc", calls[1].ID)
	assert.Equal(t, "43", calls[2].ID)
	assert.Equal(t, fixedNow, calls[0].DiscoveredAt)
}

func TestListRecent_ErrorYieldsEmpty(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("ListCalls", mock.Anything, mock.Anything).Return(nil, errors.New("unexpected status 502"))

	src := New(mc, nil, WithClock(clock))
	assert.Empty(t, src.ListRecent(context.Background(), time.Hour))
}

func TestListRecent_PageLimit(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("ListCalls", mock.Anything, mock.MatchedBy(func(r exolve.ListCallsRequest) bool {
		return r.Limit == 2
	})).Return(&exolve.ListCallsResponse{Calls: []map[string]any{
		{"uid": json.Number("1")},
		{"uid": json.Number("2")},
	}}, nil)

	src := New(mc, nil, WithClock(clock), WithPageLimit(2))
	assert.Len(t, src.ListRecent(context.Background(), time.Hour), 2)
}

func TestTranscript_Resolved(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("GetCall", mock.Anything, "42").Return(map[string]any{
		"phrases": []any{
			map[string]any{"text": "здравствуйте"},
			map[string]any{"text": "у меня проблема"},
		},
	}, nil)

	src := New(mc, nil)
	text, ok := src.Transcript(context.Background(), "42")
	require.True(t, ok)
	assert.Equal(t, "здравствуйте у меня проблема", text)
}

func TestTranscript_FetchErrorIsAbsent(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("GetCall", mock.Anything, "42").Return(nil, errors.New("connection refused"))

	src := New(mc, nil)
	text, ok := src.Transcript(context.Background(), "42")
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestTranscript_UnknownShapeIsAbsent(t *testing.T) {
	mc := mocks.NewMockClient(t)
	mc.On("GetCall", mock.Anything, "42").Return(map[string]any{"duration": json.Number("12")}, nil)

	src := New(mc, nil)
	_, ok := src.Transcript(context.Background(), "42")
	assert.False(t, ok)
}
