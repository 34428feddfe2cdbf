package fne

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Line groups the three figures carried by a product line or an invoice.
type Line struct {
	HT  decimal.Decimal
	VAT decimal.Decimal
	TTC decimal.Decimal
}

// ComputeLine derives the amounts of one product line. amountHT wins when
// it is non-zero, otherwise HT is quantity × unit price. ratePercent is 18
// for 18%. Every figure is rounded to two places and TTC is always HT+VAT.
func ComputeLine(quantity, unitPrice, amountHT, ratePercent decimal.Decimal) Line {
	ht := amountHT
	if ht.IsZero() {
		ht = quantity.Mul(unitPrice)
	}
	ht = ht.Round(2)
	vat := ht.Mul(ratePercent).Div(hundred).Round(2)
	return Line{HT: ht, VAT: vat, TTC: ht.Add(vat)}
}

// SumTotals adds up line amounts into invoice totals.
func SumTotals(lines []Line) Line {
	total := Line{HT: decimal.Zero, VAT: decimal.Zero, TTC: decimal.Zero}
	for _, l := range lines {
		total.HT = total.HT.Add(l.HT)
		total.VAT = total.VAT.Add(l.VAT)
		total.TTC = total.TTC.Add(l.TTC)
	}
	return total
}

// Negate flips the sign of every figure, used for credit notes.
func (l Line) Negate() Line {
	return Line{HT: l.HT.Neg(), VAT: l.VAT.Neg(), TTC: l.TTC.Neg()}
}
