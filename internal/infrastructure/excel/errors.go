package excel

import "errors"

var (
	// ErrUnsupportedFormat is returned for anything but .xlsx, .xlsm and .xls
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

	// ErrSheetNotFound is returned when a sheet name is not in the workbook
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrEmptyWorkbook is returned when a workbook has no sheet at all
	ErrEmptyWorkbook = errors.New("workbook has no sheets")
)

// SheetError is a problem tied to one worksheet (and possibly one cell).
// It never aborts the processing of the other sheets.
type SheetError struct {
	Sheet   string `json:"sheet"`
	Cell    string `json:"cell,omitempty"`
	Message string `json:"message"`
}

func (e SheetError) Error() string {
	if e.Cell != "" {
		return e.Sheet + "!" + e.Cell + ": " + e.Message
	}
	return e.Sheet + ": " + e.Message
}
