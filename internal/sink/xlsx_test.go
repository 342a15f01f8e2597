package sink

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func TestXLSX_AppendCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.xlsx")
	s := NewXLSX(path, "", []string{"timestamp", "main_problem"})
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, []string{"2026-10-18 09:00:00", "доставка"}))
	require.NoError(t, s.Append(ctx, []string{"2026-10-18 09:05:00", "цена"}))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	sheet, ok := f.Sheet["Calls"]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, []string{"timestamp", "main_problem"}, rowToStrings(sheet.Rows[0]))

	rows, err := s.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{
		{"timestamp": "2026-10-18 09:00:00", "main_problem": "доставка"},
		{"timestamp": "2026-10-18 09:05:00", "main_problem": "цена"},
	}, rows)
}

func TestXLSX_RowsMissingFile(t *testing.T) {
	s := NewXLSX(filepath.Join(t.TempDir(), "none.xlsx"), "Calls", []string{"a"})
	rows, err := s.Rows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestXLSX_AddsSheetToExistingWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	f := xlsx.NewFile()
	other, err := f.AddSheet("Other")
	require.NoError(t, err)
	other.AddRow().AddCell().SetString("keep")
	require.NoError(t, f.Save(path))

	s := NewXLSX(path, "Calls", []string{"a"})
	require.NoError(t, s.Append(context.Background(), []string{"1"}))

	f, err = xlsx.OpenFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Sheets, 2)
	assert.Equal(t, "keep", f.Sheet["Other"].Rows[0].Cells[0].String())
}

func TestXLSX_CanceledContext(t *testing.T) {
	s := NewXLSX(filepath.Join(t.TempDir(), "c.xlsx"), "", []string{"a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, s.Append(ctx, []string{"1"}))
}
