package excel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClientSheetParser_StepsThreeRows(t *testing.T) {
	path := writeWorkbook(t, "clients.xlsx", sheetData{
		name: "Clients",
		cells: map[string]interface{}{
			"A15": "Code client",
			"A16": "1999", "E16": "CLIENT DIVERS",
			"A17": "NOISE", "E17": "ignored, not on the grid",
			"A22": "C002", "B22": "9502363N", "E22": "SOCIETE ABC", "G22": "compta@abc.ci",
			"I22": "0707070707", "K22": "Virement", "M22": "B2B", "O22": "XOF", "Q22": "Plateau, Abidjan",
			"A25": "C003", "E25": "Acme Corp", "O25": "EUR", "Q25": "Paris",
		},
	})

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	result, err := NewClientSheetParser(zap.NewNop()).Parse(wb)
	require.NoError(t, err)
	assert.Equal(t, "Clients", result.Sheet)

	// row 19 is blank and is not counted
	require.Len(t, result.Rows, 3)
	assert.Equal(t, 16, result.Rows[0].Row)
	assert.Equal(t, "CLIENT DIVERS", result.Rows[0].Name)

	abc := result.Rows[1]
	assert.Equal(t, 22, abc.Row)
	assert.Equal(t, "C002", abc.Code)
	assert.Equal(t, "9502363N", abc.NCC)
	assert.Equal(t, "compta@abc.ci", abc.Email)
	assert.Equal(t, "0707070707", abc.Phone)
	assert.Equal(t, "Virement", abc.PaymentText)
	assert.Equal(t, "B2B", abc.TemplateText)
	assert.Equal(t, "Plateau, Abidjan", abc.Address)

	assert.Equal(t, "EUR", result.Rows[2].Currency)
}

func TestTemplateExporter_RoundTripIsEmpty(t *testing.T) {
	path := t.TempDir() + "/modele_clients.xlsx"
	require.NoError(t, NewTemplateExporter(zap.NewNop()).ExportClientTemplate(path))

	wb, err := Open(path)
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.Rows("Clients")
	require.NoError(t, err)
	assert.Equal(t, "Code client", sheetGrid{rows: rows}.cell("A15"))
	assert.Equal(t, "Adresse", sheetGrid{rows: rows}.cell("Q15"))

	result, err := NewClientSheetParser(zap.NewNop()).Parse(wb)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
}

func TestParseCache_ReparsesChangedFiles(t *testing.T) {
	path := writeWorkbook(t, "c.xlsx", invoiceSheet("F", "FAC-1", "1999"))
	cache := NewParseCache[*ParseResult]()
	parser := NewSage100Parser(zap.NewNop())

	calls := 0
	parse := func(p string) (*ParseResult, error) {
		calls++
		wb, err := Open(p)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		return parser.ParseWorkbook(wb), nil
	}

	first, err := cache.GetOrParse(path, parse)
	require.NoError(t, err)
	second, err := cache.GetOrParse(path, parse)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, cache.Len())

	cache.Invalidate(path)
	_, err = cache.GetOrParse(path, parse)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = cache.GetOrParse(path+".missing", parse)
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestParseCache_NilIsDisabled(t *testing.T) {
	var cache *ParseCache[*ParseResult]
	cache.Invalidate("anything.xlsx")
	assert.Equal(t, 0, cache.Len())
}
