package excel

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpen_UnsupportedFormat(t *testing.T) {
	_, err := Open("ventes.csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, IsSupported("ventes.csv"))
	assert.True(t, IsSupported("VENTES.XLSX"))
	assert.True(t, IsSupported("ventes.xls"))
}

func TestSage100Parser_ReadsHeaderAndItems(t *testing.T) {
	path := writeWorkbook(t, "ventes.xlsx", invoiceSheet("Facture1", "FAC-001", "1999"))

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	result := NewSage100Parser(zap.NewNop()).ParseWorkbook(wb)
	assert.Equal(t, 1, result.SheetCount)
	assert.Empty(t, result.SheetErrors)
	require.Len(t, result.Invoices, 1)

	inv := result.Invoices[0]
	assert.Equal(t, "Facture1", inv.Sheet)
	assert.Equal(t, "FAC-001", inv.InvoiceNumber)
	assert.Equal(t, "1999", inv.ClientCode)
	assert.Equal(t, "PDV-01", inv.PointOfSale)
	assert.Equal(t, "CLIENT DIVERS", inv.ClientTitle)
	assert.Equal(t, "Kouadio Jean", inv.WalkInName)
	assert.Equal(t, "Espèces", inv.PaymentText)
	require.NotNil(t, inv.Date)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *inv.Date)
	assert.Empty(t, inv.Problems)

	// row 21 has no product code
	require.Len(t, inv.Items, 2)
	assert.Equal(t, 20, inv.Items[0].Row)
	assert.True(t, inv.Items[0].UnitPrice.Equal(decimal.NewFromInt(5000)))
	assert.True(t, inv.Items[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, "sac", inv.Items[0].Unit)
	assert.True(t, inv.Items[0].AmountHT.IsZero())

	assert.Equal(t, 22, inv.Items[1].Row)
	assert.True(t, inv.Items[1].UnitPrice.Equal(decimal.RequireFromString("1250.50")))
	assert.True(t, inv.Items[1].AmountHT.Equal(decimal.NewFromInt(5002)))
	assert.Equal(t, "TVAB", inv.Items[1].VatText)
}

func TestSage100Parser_ExcelSerialDate(t *testing.T) {
	sheet := invoiceSheet("F", "FAC-002", "C001")
	sheet.cells["A8"] = 45366
	path := writeWorkbook(t, "serial.xlsx", sheet)

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	result := NewSage100Parser(zap.NewNop()).ParseWorkbook(wb)
	require.Len(t, result.Invoices, 1)
	require.NotNil(t, result.Invoices[0].Date)
	assert.Equal(t, "2024-03-15", result.Invoices[0].Date.Format("2006-01-02"))
}

func TestSage100Parser_ProblemsAreRecordedPerCell(t *testing.T) {
	sheet := invoiceSheet("F", "FAC-003", "C001")
	sheet.cells["A8"] = "pas une date"
	sheet.cells["E20"] = "deux"
	path := writeWorkbook(t, "bad.xlsx", sheet)

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	result := NewSage100Parser(zap.NewNop()).ParseWorkbook(wb)
	require.Len(t, result.Invoices, 1)
	inv := result.Invoices[0]
	assert.Nil(t, inv.Date)
	assert.Equal(t, "pas une date", inv.DateText)
	require.Len(t, inv.Problems, 1)
	assert.Equal(t, "E20", inv.Problems[0].Cell)
	assert.Len(t, inv.Items, 2)
}

func TestSage100Parser_SkipsEmptySheets(t *testing.T) {
	path := writeWorkbook(t, "multi.xlsx",
		invoiceSheet("F1", "FAC-1", "1999"),
		sheetData{name: "Vide", cells: map[string]interface{}{}},
		invoiceSheet("F2", "FAC-2", ""),
	)

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	result := NewSage100Parser(zap.NewNop()).ParseWorkbook(wb)
	assert.Equal(t, 3, result.SheetCount)
	require.Len(t, result.Invoices, 2)
	assert.Equal(t, "F2", result.Invoices[1].Sheet)
	assert.Equal(t, "", result.Invoices[1].ClientCode)
}

type brokenWorkbook struct{}

func (brokenWorkbook) SheetNames() []string { return []string{"ok", "boom", "gone"} }
func (brokenWorkbook) Close() error         { return nil }
func (brokenWorkbook) Rows(sheet string) ([][]string, error) {
	switch sheet {
	case "boom":
		panic("corrupted record")
	case "gone":
		return nil, ErrSheetNotFound
	}
	return [][]string{{}, {}, {"FAC-9"}}, nil
}

func TestSage100Parser_SheetFailuresDoNotAbort(t *testing.T) {
	result := NewSage100Parser(zap.NewNop()).ParseWorkbook(brokenWorkbook{})

	require.Len(t, result.Invoices, 1)
	assert.Equal(t, "FAC-9", result.Invoices[0].InvoiceNumber)
	require.Len(t, result.SheetErrors, 2)
	assert.Equal(t, "boom", result.SheetErrors[0].Sheet)
	assert.Contains(t, result.SheetErrors[0].Message, "corrupted record")
	assert.Equal(t, "gone", result.SheetErrors[1].Sheet)
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"", "0", true},
		{"1234.5", "1234.5", true},
		{"1 234,50", "1234.5", true},
		{"1\u00a0234,50", "1234.5", true},
		{"1.234,50", "1234.5", true},
		{"1,234.50", "1234.5", true},
		{"1,234,567", "1234567", true},
		{"1.234.567", "1234567", true},
		{"-12,5", "-12.5", true},
		{"abc", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDecimal(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-15", "15/03/2024", "15-03-2024", "15.03.2024", "45366", "2024-03-15T00:00:00Z"} {
		got, ok := ParseDate(in)
		assert.True(t, ok, in)
		assert.True(t, got.Equal(want), "%s -> %s", in, got)
	}

	for _, in := range []string{"", "demain", "0", "-5"} {
		_, ok := ParseDate(in)
		assert.False(t, ok, in)
	}
}
