package excel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/fnev4/fnev4/pkg/utils"
)

// sheetGrid gives address-based access to the rows of one sheet.
type sheetGrid struct {
	rows [][]string
}

// value returns the trimmed text at (col, row), both 1-based, or "" when
// the cell is outside the used range.
func (g sheetGrid) value(col, row int) string {
	if row < 1 || row > len(g.rows) {
		return ""
	}
	cells := g.rows[row-1]
	if col < 1 || col > len(cells) {
		return ""
	}
	return utils.SanitizeString(cells[col-1])
}

// cell returns the trimmed text at an A1 address. A malformed address
// reads as an empty cell.
func (g sheetGrid) cell(addr string) string {
	col, row, err := excelize.CellNameToCoordinates(addr)
	if err != nil {
		return ""
	}
	return g.value(col, row)
}

// lastRow is the number of the last row holding any value.
func (g sheetGrid) lastRow() int {
	return len(trimTrailingEmpty(g.rows))
}

func (g sheetGrid) empty() bool {
	return g.lastRow() == 0
}

func columnNumber(name string) int {
	n, err := excelize.ColumnNameToNumber(name)
	if err != nil {
		panic(fmt.Sprintf("bad column name %q", name))
	}
	return n
}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"02/01/06",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
}

// ParseDate accepts ISO or French (day first) date text, or an Excel serial
// number as produced by raw cell reads.
func ParseDate(text string) (time.Time, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}

	serial, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
	if err != nil || serial < 1 || serial > 2958465 {
		return time.Time{}, false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var numberReplacer = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "")

// ParseDecimal reads "1 234,50", "1.234,50", "1,234.50" or "1234.5".
// Blank text is zero. ok is false when the text is not a number.
func ParseDecimal(text string) (d decimal.Decimal, ok bool) {
	s := numberReplacer.Replace(strings.TrimSpace(text))
	if s == "" {
		return decimal.Zero, true
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case dot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return v, true
}

func cellName(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row, col)
	}
	return name
}
