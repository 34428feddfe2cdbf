package excel

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// Workbook is a read-only view over a spreadsheet file. Rows returns raw
// cell values, without number formatting, indexed [row-1][col-1].
type Workbook interface {
	SheetNames() []string
	Rows(sheet string) ([][]string, error)
	Close() error
}

// IsSupported reports whether path has a spreadsheet extension we can read.
func IsSupported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		return true
	}
	return false
}

// Open picks a reader from the file extension.
func Open(path string) (Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		return &xlsxWorkbook{file: f}, nil
	case ".xls":
		return openXLS(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

type xlsxWorkbook struct {
	file *excelize.File
}

func (w *xlsxWorkbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *xlsxWorkbook) Rows(sheet string) ([][]string, error) {
	if idx, err := w.file.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (w *xlsxWorkbook) Close() error {
	return w.file.Close()
}

// xlsWorkbook holds a BIFF workbook fully loaded in memory; the reader
// library has no streaming access and nothing to close.
type xlsWorkbook struct {
	names []string
	rows  map[string][][]string
}

func openXLS(path string) (*xlsWorkbook, error) {
	wb, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xls workbook: %w", err)
	}

	out := &xlsWorkbook{rows: make(map[string][][]string)}
	for i := 0; i < wb.GetNumberSheets(); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil || sheet == nil {
			continue
		}

		name := sheet.GetName()
		var rows [][]string
		for r := 0; r <= int(sheet.GetNumberRows()); r++ {
			row, err := sheet.GetRow(r)
			if err != nil || row == nil {
				rows = append(rows, nil)
				continue
			}
			var cells []string
			for _, col := range row.GetCols() {
				if col == nil {
					cells = append(cells, "")
					continue
				}
				cells = append(cells, col.GetString())
			}
			rows = append(rows, cells)
		}

		out.names = append(out.names, name)
		out.rows[name] = trimTrailingEmpty(rows)
	}
	return out, nil
}

func (w *xlsWorkbook) SheetNames() []string {
	return append([]string(nil), w.names...)
}

func (w *xlsWorkbook) Rows(sheet string) ([][]string, error) {
	rows, ok := w.rows[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	return rows, nil
}

func (w *xlsWorkbook) Close() error {
	return nil
}

func trimTrailingEmpty(rows [][]string) [][]string {
	last := len(rows)
	for last > 0 && isBlankRow(rows[last-1]) {
		last--
	}
	return rows[:last]
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
