package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetData struct {
	name  string
	cells map[string]interface{}
}

// writeWorkbook saves sheets, in order, to a new .xlsx in a temp dir
func writeWorkbook(t *testing.T, filename string, sheets ...sheetData) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for addr, v := range s.cells {
			require.NoError(t, f.SetCellValue(s.name, addr, v))
		}
	}

	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, f.SaveAs(path))
	return path
}

func invoiceSheet(name, number, clientCode string) sheetData {
	return sheetData{
		name: name,
		cells: map[string]interface{}{
			"A3":  number,
			"A5":  clientCode,
			"A8":  "15/03/2024",
			"A10": "PDV-01",
			"A11": "CLIENT DIVERS",
			"A13": "Kouadio Jean",
			"A18": "Espèces",
			"B20": "P001",
			"C20": "Ciment 50kg",
			"D20": 5000,
			"E20": 2,
			"F20": "sac",
			"G20": "TVA",
			"B22": "P002",
			"C22": "Fer à béton",
			"D22": "1 250,50",
			"E22": "4",
			"G22": "TVAB",
			"H22": "5002",
		},
	}
}
