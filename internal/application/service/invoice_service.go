package service

import (
	"context"
	"fmt"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/domain/fne"
	"github.com/fnev4/fnev4/internal/domain/workflow"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// InvoicePage is one page of an invoice listing
type InvoicePage struct {
	Invoices []*entity.FneInvoice `json:"invoices"`
	Total    int                  `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

// InvoiceService reads and edits stored invoices
type InvoiceService interface {
	List(ctx context.Context, filter port.InvoiceFilter) (*InvoicePage, error)
	Get(ctx context.Context, id int64) (*entity.FneInvoice, error)

	// Delete soft-deletes an invoice that is not certified
	Delete(ctx context.Context, id int64) error

	// ResetToDraft moves an invoice in ERROR back to DRAFT
	ResetToDraft(ctx context.Context, id int64) (*entity.FneInvoice, error)

	// UpdatePaymentMethod normalizes text and stores it on an uncertified invoice
	UpdatePaymentMethod(ctx context.Context, id int64, text string) (*entity.FneInvoice, error)

	APILogs(ctx context.Context, id int64) ([]*entity.FneApiLog, error)
}

type invoiceServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	apiLogRepo  port.ApiLogRepository
	logger      Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo port.InvoiceRepository,
	apiLogRepo port.ApiLogRepository,
	logger Logger,
) InvoiceService {
	return &invoiceServiceImpl{
		invoiceRepo: invoiceRepo,
		apiLogRepo:  apiLogRepo,
		logger:      logger,
	}
}

func (s *invoiceServiceImpl) List(ctx context.Context, filter port.InvoiceFilter) (*InvoicePage, error) {
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	if filter.Status != "" {
		if _, err := workflow.ParseState(filter.Status); err != nil {
			return nil, fmt.Errorf("%w: %q", err, filter.Status)
		}
	}

	invoices, total, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if invoices == nil {
		invoices = []*entity.FneInvoice{}
	}
	return &InvoicePage{Invoices: invoices, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *invoiceServiceImpl) Get(ctx context.Context, id int64) (*entity.FneInvoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: %d", ErrInvoiceNotFound, id)
	}
	return inv, nil
}

func (s *invoiceServiceImpl) Delete(ctx context.Context, id int64) error {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !workflow.IsEditable(inv.Status) {
		return fmt.Errorf("%w: %s", ErrAlreadyCertified, inv.InvoiceNumber)
	}
	if err := s.invoiceRepo.SoftDelete(ctx, id); err != nil {
		s.logger.Error("Failed to delete invoice", "error", err, "invoice_id", id)
		return fmt.Errorf("delete invoice: %w", err)
	}
	s.logger.Info("Invoice deleted", "invoice_id", id, "invoice_number", inv.InvoiceNumber)
	return nil
}

func (s *invoiceServiceImpl) ResetToDraft(ctx context.Context, id int64) (*entity.FneInvoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	machine, err := workflow.NewInvoiceMachine(inv.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, workflow.TriggerReset); err != nil {
		return nil, fmt.Errorf("%w: cannot reset a %s invoice", ErrInvalidStatus, inv.Status)
	}

	if err := s.invoiceRepo.UpdateStatus(ctx, id, machine.State().String(), ""); err != nil {
		return nil, fmt.Errorf("reset invoice: %w", err)
	}
	inv.Status = machine.State().String()
	inv.LastError = ""
	s.logger.Info("Invoice reset to draft", "invoice_id", id)
	return inv, nil
}

func (s *invoiceServiceImpl) UpdatePaymentMethod(ctx context.Context, id int64, text string) (*entity.FneInvoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !workflow.IsEditable(inv.Status) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyCertified, inv.InvoiceNumber)
	}

	method, ok := fne.NormalizePaymentMethod(text)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, text)
	}
	if err := s.invoiceRepo.UpdatePaymentMethod(ctx, id, method); err != nil {
		return nil, fmt.Errorf("update payment method: %w", err)
	}
	inv.PaymentMethod = method
	return inv, nil
}

func (s *invoiceServiceImpl) APILogs(ctx context.Context, id int64) ([]*entity.FneApiLog, error) {
	logs, err := s.apiLogRepo.ListByInvoiceID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list api logs: %w", err)
	}
	if logs == nil {
		logs = []*entity.FneApiLog{}
	}
	return logs, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
