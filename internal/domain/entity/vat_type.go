package entity

import "github.com/shopspring/decimal"

// VatType is a row of the seeded VAT reference table.
type VatType struct {
	Code        string          `json:"code"`
	Rate        decimal.Decimal `json:"rate"`
	Description string          `json:"description"`
}
