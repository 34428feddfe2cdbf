package excel

import (
	"fmt"

	"go.uber.org/zap"
)

// Client import layout: one client every third row starting at row 16,
// values spread over every other column.
const (
	ClientHeaderRow   = 15
	ClientFirstRow    = 16
	ClientRowInterval = 3
)

var (
	colClientCode     = columnNumber("A")
	colClientNcc      = columnNumber("B")
	colClientName     = columnNumber("E")
	colClientEmail    = columnNumber("G")
	colClientPhone    = columnNumber("I")
	colClientPayment  = columnNumber("K")
	colClientTemplate = columnNumber("M")
	colClientCurrency = columnNumber("O")
	colClientAddress  = columnNumber("Q")
)

// ClientRow is one client as read from the sheet
type ClientRow struct {
	Row          int
	Code         string
	NCC          string
	Name         string
	Email        string
	Phone        string
	PaymentText  string
	TemplateText string
	Currency     string
	Address      string
}

// ClientParseResult is the content of a client import workbook
type ClientParseResult struct {
	Sheet string
	Rows  []ClientRow
}

// ClientSheetParser reads the client import layout from the first sheet
type ClientSheetParser struct {
	logger *zap.Logger
}

// NewClientSheetParser creates a new client sheet parser
func NewClientSheetParser(logger *zap.Logger) *ClientSheetParser {
	return &ClientSheetParser{logger: logger}
}

// Parse reads the first sheet of wb
func (p *ClientSheetParser) Parse(wb Workbook) (*ClientParseResult, error) {
	names := wb.SheetNames()
	if len(names) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := wb.Rows(names[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read client sheet: %w", err)
	}

	result := p.ParseRows(names[0], rows)
	p.logger.Info("Client sheet parsed",
		zap.String("sheet", names[0]),
		zap.Int("rows", len(result.Rows)))
	return result, nil
}

// ParseRows extracts clients from raw rows. A row without code and name is
// not a client and is not reported.
func (p *ClientSheetParser) ParseRows(sheet string, rows [][]string) *ClientParseResult {
	g := sheetGrid{rows: rows}
	result := &ClientParseResult{Sheet: sheet}

	last := g.lastRow()
	for r := ClientFirstRow; r <= last; r += ClientRowInterval {
		row := ClientRow{
			Row:          r,
			Code:         g.value(colClientCode, r),
			NCC:          g.value(colClientNcc, r),
			Name:         g.value(colClientName, r),
			Email:        g.value(colClientEmail, r),
			Phone:        g.value(colClientPhone, r),
			PaymentText:  g.value(colClientPayment, r),
			TemplateText: g.value(colClientTemplate, r),
			Currency:     g.value(colClientCurrency, r),
			Address:      g.value(colClientAddress, r),
		}
		if row.Code == "" && row.Name == "" {
			continue
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}
