package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// CertificationItem is one product line sent to the DGI
type CertificationItem struct {
	Reference   string
	Description string
	Quantity    decimal.Decimal
	Amount      decimal.Decimal
	Measurement string
	Taxes       []string
}

// CertificationRequest is the transport-neutral sign payload
type CertificationRequest struct {
	InvoiceType       string
	PaymentMethod     string
	Template          string
	IsRne             bool
	Rne               string
	ClientNcc         string
	ClientCompanyName string
	ClientPhone       string
	ClientEmail       string
	ClientSellerName  string
	PointOfSale       string
	Establishment     string
	CommercialMessage string
	Footer            string
	ForeignCurrency   string
	Items             []CertificationItem
}

// RefundItem identifies a certified line being refunded
type RefundItem struct {
	ID       string
	Quantity decimal.Decimal
}

// CertificationResponse is the normalized DGI answer. ItemIDs follow the
// order of the submitted items.
type CertificationResponse struct {
	Reference      string
	Token          string
	InvoiceID      string
	ItemIDs        []string
	StickerBalance *int64
	Warning        bool
}

// Exchange captures one HTTP round-trip for the audit log
type Exchange struct {
	Endpoint     string
	RequestBody  string
	ResponseBody string
	StatusCode   int
	Duration     time.Duration
}

// CertificationClient submits invoices to the DGI FNE API. Implementations
// return the Exchange even when err is non-nil so that it can be logged.
type CertificationClient interface {
	SignInvoice(ctx context.Context, req *CertificationRequest) (*CertificationResponse, *Exchange, error)
	RefundInvoice(ctx context.Context, fneInvoiceID string, items []RefundItem) (*CertificationResponse, *Exchange, error)
	VerificationURL(token string) string
}
