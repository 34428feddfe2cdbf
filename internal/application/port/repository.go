package port

import (
	"context"

	"github.com/fnev4/fnev4/internal/domain/entity"
)

// ClientRepository defines persistence operations for Client
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	Update(ctx context.Context, client *entity.Client) error
	// GetByCode returns nil, nil when no active client has the code
	GetByCode(ctx context.Context, code string) (*entity.Client, error)
	// FindByCode also returns inactive clients; nil, nil when absent
	FindByCode(ctx context.Context, code string) (*entity.Client, error)
	GetByID(ctx context.Context, id int64) (*entity.Client, error)
	List(ctx context.Context, limit, offset int, includeInactive bool) ([]*entity.Client, error)
	Deactivate(ctx context.Context, code string) error
}

// InvoiceFilter narrows an invoice listing. Zero values mean "any".
type InvoiceFilter struct {
	Status     string
	ClientCode string
	SessionID  int64
	Limit      int
	Offset     int
}

// CertificationUpdate carries the outcome of a DGI call. ItemIDs, when
// present, are the DGI identifiers of the items in line order.
type CertificationUpdate struct {
	Status            string
	FneReference      string
	FneInvoiceID      string
	VerificationToken string
	StickerBalance    *int64
	LastError         string
	ItemIDs           []string
}

// InvoiceRepository defines persistence operations for FneInvoice and its items
type InvoiceRepository interface {
	// Create inserts the invoice and all of its items
	Create(ctx context.Context, invoice *entity.FneInvoice) error
	// GetByID loads the invoice with its items; nil, nil when absent or deleted
	GetByID(ctx context.Context, id int64) (*entity.FneInvoice, error)
	GetByNumber(ctx context.Context, number string) (*entity.FneInvoice, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.FneInvoice, int, error)
	UpdateCertification(ctx context.Context, id int64, update CertificationUpdate) error
	UpdateStatus(ctx context.Context, id int64, status, lastError string) error
	UpdatePaymentMethod(ctx context.Context, id int64, method string) error
	SoftDelete(ctx context.Context, id int64) error
}

// ImportSessionRepository defines persistence operations for ImportSession
type ImportSessionRepository interface {
	Create(ctx context.Context, session *entity.ImportSession) error
	// Complete finalizes a RUNNING session; finished sessions are left untouched
	Complete(ctx context.Context, session *entity.ImportSession) error
	GetByID(ctx context.Context, id int64) (*entity.ImportSession, error)
	List(ctx context.Context, limit, offset int) ([]*entity.ImportSession, error)
}

// VatTypeRepository reads the seeded VAT lookup table
type VatTypeRepository interface {
	List(ctx context.Context) ([]*entity.VatType, error)
}

// ApiLogRepository is append-only
type ApiLogRepository interface {
	Append(ctx context.Context, log *entity.FneApiLog) error
	ListByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.FneApiLog, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
