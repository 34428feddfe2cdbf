package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FneInvoice is an invoice to be certified by the DGI FNE platform.
type FneInvoice struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoice_number"`
	InvoiceDate   time.Time `json:"invoice_date"`
	PointOfSale   string    `json:"point_of_sale,omitempty"`

	// Client snapshot. ClientID is nil for the walk-in customer.
	ClientID   *int64 `json:"client_id,omitempty"`
	ClientCode string `json:"client_code"`
	ClientName string `json:"client_name"`
	ClientNcc  string `json:"client_ncc,omitempty"`
	Template   string `json:"template"`

	PaymentMethod string `json:"payment_method"`
	InvoiceType   string `json:"invoice_type"`
	Status        string `json:"status"`

	TotalAmountHT  decimal.Decimal `json:"total_amount_ht"`
	TotalVatAmount decimal.Decimal `json:"total_vat_amount"`
	TotalAmountTTC decimal.Decimal `json:"total_amount_ttc"`

	// Credit note link
	ParentInvoiceID     *int64 `json:"parent_invoice_id,omitempty"`
	CreditNoteReference string `json:"credit_note_reference,omitempty"`

	ImportSessionID *int64 `json:"import_session_id,omitempty"`
	SourceSheet     string `json:"source_sheet,omitempty"`

	// Certification result
	FneReference      string     `json:"fne_reference,omitempty"`
	FneInvoiceID      string     `json:"fne_invoice_id,omitempty"`
	VerificationToken string     `json:"verification_token,omitempty"`
	StickerBalance    *int64     `json:"sticker_balance,omitempty"`
	LastError         string     `json:"last_error,omitempty"`
	CertifiedAt       *time.Time `json:"certified_at,omitempty"`

	IsDeleted bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []*FneInvoiceItem `json:"items,omitempty"`
}

// IsCreditNote reports whether the invoice is an avoir.
func (i *FneInvoice) IsCreditNote() bool {
	return i.InvoiceType == InvoiceTypeRefund
}

// FneInvoiceItem is one product line of an FneInvoice.
type FneInvoiceItem struct {
	ID            int64           `json:"id"`
	InvoiceID     int64           `json:"invoice_id"`
	LineNumber    int             `json:"line_number"`
	ProductCode   string          `json:"product_code"`
	Description   string          `json:"description"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Unit          string          `json:"unit,omitempty"`
	VatCode       string          `json:"vat_code"`
	VatRate       decimal.Decimal `json:"vat_rate"`
	LineAmountHT  decimal.Decimal `json:"line_amount_ht"`
	LineVatAmount decimal.Decimal `json:"line_vat_amount"`
	LineAmountTTC decimal.Decimal `json:"line_amount_ttc"`
	FneItemID     string          `json:"fne_item_id,omitempty"`
}
