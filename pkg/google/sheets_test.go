package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpreadsheetID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://docs.google.com/spreadsheets/d/1AbC-d_EF/edit#gid=0", "1AbC-d_EF", false},
		{"1AbC-d_EF", "1AbC-d_EF", false},
		{"", "", true},
		{"https://example.com/not a sheet", "", true},
	}
	for _, tt := range tests {
		got, err := SpreadsheetID(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestAppendRow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/spreadsheets/sheet123/values/Sheet1:append", r.URL.Path)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body ValueRange
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, [][]string{{"2026-10-18 12:00:00", "billing error"}}, body.Values)

		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet123","updates":{"updatedRange":"Sheet1!A5:B5","updatedRows":1,"updatedCells":2}}`))
	}))
	defer srv.Close()

	c := NewSheetsClient("tok", WithBaseURL(srv.URL))
	resp, err := c.AppendRow(context.Background(), "sheet123", "Sheet1", []string{"2026-10-18 12:00:00", "billing error"})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Updates.UpdatedRows)
}

func TestAppendRow_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"message":"The caller does not have permission"}}`))
	}))
	defer srv.Close()

	c := NewSheetsClient("tok", WithBaseURL(srv.URL))
	_, err := c.AppendRow(context.Background(), "sheet123", "Sheet1", []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 403")
}

func TestGetValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/spreadsheets/sheet123/values/Sheet1", r.URL.Path)
		_, _ = w.Write([]byte(`{"range":"Sheet1!A1:C3","majorDimension":"ROWS","values":[["a","b"],["1","2"]]}`))
	}))
	defer srv.Close()

	c := NewSheetsClient("tok", WithBaseURL(srv.URL))
	vr, err := c.GetValues(context.Background(), "sheet123", "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, vr.Values)
}

func TestGetValues_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"values": "nope"}`))
	}))
	defer srv.Close()

	_, err := NewSheetsClient("tok", WithBaseURL(srv.URL)).GetValues(context.Background(), "s", "r")
	assert.Error(t, err)
}
