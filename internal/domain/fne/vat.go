package fne

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VAT codes as defined by the DGI
const (
	VatTVA  = "TVA"  // normal rate 18%
	VatTVAB = "TVAB" // reduced rate 9%
	VatTVAC = "TVAC" // conventional exemption 0%
	VatTVAD = "TVAD" // legal exemption 0%
)

// DefaultVatCode applies to lines whose VAT cell is blank or unreadable.
const DefaultVatCode = VatTVA

var vatRates = map[string]decimal.Decimal{
	VatTVA:  decimal.NewFromInt(18),
	VatTVAB: decimal.NewFromInt(9),
	VatTVAC: decimal.Zero,
	VatTVAD: decimal.Zero,
}

var vatAliases = map[string]string{
	"TVA":   VatTVA,
	"TVAA":  VatTVA,
	"A":     VatTVA,
	"18":    VatTVA,
	"18%":   VatTVA,
	"TVA18": VatTVA,
	"TVAB":  VatTVAB,
	"B":     VatTVAB,
	"9":     VatTVAB,
	"9%":    VatTVAB,
	"TVA9":  VatTVAB,
	"TVAC":  VatTVAC,
	"C":     VatTVAC,
	"TVAD":  VatTVAD,
	"D":     VatTVAD,
}

// NormalizeVatCode maps a VAT cell to a DGI code. Blank or unknown input
// falls back to TVA (18%) with recognized=false.
func NormalizeVatCode(text string) (code string, recognized bool) {
	key := strings.ToUpper(strings.ReplaceAll(Fold(text), " ", ""))
	if key == "" {
		return DefaultVatCode, false
	}
	if c, ok := vatAliases[key]; ok {
		return c, true
	}
	return DefaultVatCode, false
}

// VatRate returns the rate in percent for a DGI code, 18 for unknown codes.
func VatRate(code string) decimal.Decimal {
	if r, ok := vatRates[code]; ok {
		return r
	}
	return vatRates[DefaultVatCode]
}
