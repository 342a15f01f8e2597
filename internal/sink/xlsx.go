package sink

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSX appends rows to a local workbook, creating it with a header row on
// first use. The whole file is rewritten on every append.
type XLSX struct {
	path      string
	sheetName string
	header    []string

	mu sync.Mutex
}

// NewXLSX creates a workbook sink.
func NewXLSX(path, sheetName string, header []string) *XLSX {
	if sheetName == "" {
		sheetName = "Calls"
	}
	return &XLSX{path: path, sheetName: sheetName, header: header}
}

// Append adds row to the sheet and saves the workbook.
func (x *XLSX) Append(ctx context.Context, row []string) error {
	if err := ctx.Err(); err != nil {
		return eris.Wrap(err, "sink: xlsx append")
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	f, err := x.open()
	if err != nil {
		return err
	}

	sheet, ok := f.Sheet[x.sheetName]
	if !ok {
		sheet, err = f.AddSheet(x.sheetName)
		if err != nil {
			return eris.Wrapf(err, "sink: xlsx add sheet %q", x.sheetName)
		}
	}
	if len(sheet.Rows) == 0 {
		writeRow(sheet, x.header)
	}
	writeRow(sheet, row)

	if err := f.Save(x.path); err != nil {
		return eris.Wrap(err, "sink: xlsx save")
	}
	return nil
}

// Rows reads the sheet and maps rows by its first row. A missing workbook
// has no rows.
func (x *XLSX) Rows(ctx context.Context) ([]map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "sink: xlsx rows")
	}
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, err := os.Stat(x.path); errors.Is(err, os.ErrNotExist) {
		return []map[string]string{}, nil
	}
	f, err := x.open()
	if err != nil {
		return nil, err
	}
	sheet, ok := f.Sheet[x.sheetName]
	if !ok {
		return []map[string]string{}, nil
	}

	values := make([][]string, 0, len(sheet.Rows))
	for _, r := range sheet.Rows {
		values = append(values, rowToStrings(r))
	}
	return recordsFromValues(values), nil
}

func (x *XLSX) open() (*xlsx.File, error) {
	_, err := os.Stat(x.path)
	if errors.Is(err, os.ErrNotExist) {
		return xlsx.NewFile(), nil
	}
	f, err := xlsx.OpenFile(x.path)
	if err != nil {
		return nil, eris.Wrap(err, "sink: xlsx open file")
	}
	return f, nil
}

func writeRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, v := range cells {
		row.AddCell().SetString(v)
	}
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
