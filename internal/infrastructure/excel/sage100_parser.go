package excel

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Fixed cell layout of a Sage 100 invoice export, one invoice per sheet.
const (
	cellInvoiceNumber = "A3"
	cellClientCode    = "A5"
	cellClientNcc     = "A6"
	cellInvoiceDate   = "A8"
	cellPointOfSale   = "A10"
	cellClientTitle   = "A11"
	cellWalkInName    = "A13"
	cellWalkInNcc     = "A15"
	cellCreditNoteRef = "A17"
	cellPaymentMethod = "A18"

	// FirstItemRow is the first product line
	FirstItemRow = 20
)

// product line columns
var (
	colProductCode = columnNumber("B")
	colDescription = columnNumber("C")
	colUnitPrice   = columnNumber("D")
	colQuantity    = columnNumber("E")
	colUnit        = columnNumber("F")
	colVatCode     = columnNumber("G")
	colAmountHT    = columnNumber("H")
)

// ParsedItem is one product row as read from the sheet
type ParsedItem struct {
	Row         int
	ProductCode string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
	Unit        string
	VatText     string
	AmountHT    decimal.Decimal
}

// ParsedInvoice is the raw content of one invoice sheet. Nothing here is
// validated beyond cell syntax; Problems lists cells that could not be read.
type ParsedInvoice struct {
	Sheet               string
	InvoiceNumber       string
	ClientCode          string
	ClientNcc           string
	DateText            string
	Date                *time.Time
	PointOfSale         string
	ClientTitle         string
	WalkInName          string
	WalkInNcc           string
	CreditNoteReference string
	PaymentText         string
	Items               []ParsedItem
	Problems            []SheetError
}

// ParseResult gathers every sheet of a workbook
type ParseResult struct {
	Invoices    []*ParsedInvoice
	SheetErrors []SheetError
	SheetCount  int
}

// Sage100Parser reads Sage 100 invoice workbooks
type Sage100Parser struct {
	logger *zap.Logger
}

// NewSage100Parser creates a new parser
func NewSage100Parser(logger *zap.Logger) *Sage100Parser {
	return &Sage100Parser{logger: logger}
}

// ParseWorkbook parses every non-empty sheet. A sheet that cannot be read is
// reported in SheetErrors and the next sheet is processed.
func (p *Sage100Parser) ParseWorkbook(wb Workbook) *ParseResult {
	result := &ParseResult{}

	for _, name := range wb.SheetNames() {
		result.SheetCount++

		inv, err := p.parseSheetSafe(wb, name)
		if err != nil {
			p.logger.Warn("Failed to parse sheet",
				zap.String("sheet", name),
				zap.Error(err))
			result.SheetErrors = append(result.SheetErrors, SheetError{Sheet: name, Message: err.Error()})
			continue
		}
		if inv == nil {
			p.logger.Debug("Skipping empty sheet", zap.String("sheet", name))
			continue
		}
		result.Invoices = append(result.Invoices, inv)
	}

	p.logger.Info("Workbook parsed",
		zap.Int("sheets", result.SheetCount),
		zap.Int("invoices", len(result.Invoices)),
		zap.Int("sheet_errors", len(result.SheetErrors)))
	return result
}

func (p *Sage100Parser) parseSheetSafe(wb Workbook, name string) (inv *ParsedInvoice, err error) {
	defer func() {
		if r := recover(); r != nil {
			inv = nil
			err = fmt.Errorf("unexpected failure while reading sheet: %v", r)
		}
	}()

	rows, err := wb.Rows(name)
	if err != nil {
		return nil, err
	}
	return p.ParseSheet(name, rows), nil
}

// ParseSheet reads one invoice from the raw rows of a sheet. It returns nil
// for a sheet with no value at all.
func (p *Sage100Parser) ParseSheet(name string, rows [][]string) *ParsedInvoice {
	g := sheetGrid{rows: rows}
	if g.empty() {
		return nil
	}

	inv := &ParsedInvoice{
		Sheet:               name,
		InvoiceNumber:       g.cell(cellInvoiceNumber),
		ClientCode:          g.cell(cellClientCode),
		ClientNcc:           g.cell(cellClientNcc),
		DateText:            g.cell(cellInvoiceDate),
		PointOfSale:         g.cell(cellPointOfSale),
		ClientTitle:         g.cell(cellClientTitle),
		WalkInName:          g.cell(cellWalkInName),
		WalkInNcc:           g.cell(cellWalkInNcc),
		CreditNoteReference: g.cell(cellCreditNoteRef),
		PaymentText:         g.cell(cellPaymentMethod),
	}

	// an unreadable date leaves Date nil; the validator reports it
	if t, ok := ParseDate(inv.DateText); ok {
		inv.Date = &t
	}

	last := g.lastRow()
	for r := FirstItemRow; r <= last; r++ {
		code := g.value(colProductCode, r)
		if code == "" {
			continue
		}

		item := ParsedItem{
			Row:         r,
			ProductCode: code,
			Description: g.value(colDescription, r),
			Unit:        g.value(colUnit, r),
			VatText:     g.value(colVatCode, r),
		}
		item.UnitPrice = p.number(inv, g, colUnitPrice, r)
		item.Quantity = p.number(inv, g, colQuantity, r)
		item.AmountHT = p.number(inv, g, colAmountHT, r)

		inv.Items = append(inv.Items, item)
	}

	return inv
}

func (p *Sage100Parser) number(inv *ParsedInvoice, g sheetGrid, col, row int) decimal.Decimal {
	text := g.value(col, row)
	v, ok := ParseDecimal(text)
	if !ok {
		addr := cellName(col, row)
		p.logger.Warn("Unreadable number",
			zap.String("sheet", inv.Sheet),
			zap.String("cell", addr),
			zap.String("value", text))
		inv.Problems = append(inv.Problems, SheetError{
			Sheet:   inv.Sheet,
			Cell:    addr,
			Message: fmt.Sprintf("unreadable number %q", text),
		})
	}
	return v
}
