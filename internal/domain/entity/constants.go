package entity

// Invoice status constants for FneInvoice
const (
	InvoiceStatusDraft     = "DRAFT"
	InvoiceStatusCertified = "CERTIFIED"
	InvoiceStatusError     = "ERROR"
)

// Invoice type constants. A refund is an avoir (credit note) that points at
// the invoice it cancels.
const (
	InvoiceTypeSale   = "sale"
	InvoiceTypeRefund = "refund"
)

// DGI billing templates
const (
	TemplateB2B = "B2B" // business with NCC
	TemplateB2C = "B2C" // consumer, no NCC
	TemplateB2G = "B2G" // government body
	TemplateB2F = "B2F" // foreign customer
)

// Payment method constants
const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentMobileMoney  = "mobile-money"
	PaymentBankTransfer = "bank-transfer"
	PaymentCheck        = "check"
	PaymentCredit       = "credit"
)

// Import session status constants
const (
	ImportStatusRunning   = "RUNNING"
	ImportStatusCompleted = "COMPLETED"
	ImportStatusFailed    = "FAILED"
)

// Import session kinds
const (
	ImportKindInvoices = "invoices"
	ImportKindClients  = "clients"
)
