package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/infrastructure/excel"
)

// InvoiceWorkbookReader parses a Sage 100 invoice workbook
type InvoiceWorkbookReader interface {
	ReadInvoices(path string) (*excel.ParseResult, error)
}

// InvoiceImportResult is the outcome of a preview or an import. Invoices
// only holds the valid (or, after Import, the saved) invoices.
type InvoiceImportResult struct {
	FileName   string                `json:"file_name"`
	SheetCount int                   `json:"sheet_count"`
	TotalCount int                   `json:"total_count"`
	Invoices   []*ValidatedInvoice   `json:"invoices"`
	Errors     []excel.SheetError    `json:"errors"`
	Warnings   []excel.SheetError    `json:"warnings"`
	Session    *entity.ImportSession `json:"session,omitempty"`
}

// InvoiceImportService turns Sage 100 workbooks into draft invoices
type InvoiceImportService interface {
	// Preview parses and validates without writing anything
	Preview(ctx context.Context, path string) (*InvoiceImportResult, error)

	// Import saves every valid invoice and records an import session
	Import(ctx context.Context, path string) (*InvoiceImportResult, error)
}

type invoiceImportServiceImpl struct {
	reader      InvoiceWorkbookReader
	validator   *InvoiceValidator
	invoiceRepo port.InvoiceRepository
	sessionRepo port.ImportSessionRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewInvoiceImportService creates a new InvoiceImportService
func NewInvoiceImportService(
	reader InvoiceWorkbookReader,
	validator *InvoiceValidator,
	invoiceRepo port.InvoiceRepository,
	sessionRepo port.ImportSessionRepository,
	txManager port.TransactionManager,
	logger Logger,
) InvoiceImportService {
	return &invoiceImportServiceImpl{
		reader:      reader,
		validator:   validator,
		invoiceRepo: invoiceRepo,
		sessionRepo: sessionRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Preview parses and validates the workbook at path
func (s *invoiceImportServiceImpl) Preview(ctx context.Context, path string) (*InvoiceImportResult, error) {
	return s.analyze(ctx, path)
}

// Import persists each valid invoice in its own transaction. A failed save
// is reported as a sheet error and the next invoice is processed.
func (s *invoiceImportServiceImpl) Import(ctx context.Context, path string) (*InvoiceImportResult, error) {
	result, err := s.analyze(ctx, path)
	if err != nil {
		return nil, err
	}

	session := &entity.ImportSession{
		Reference:  uuid.NewString(),
		Kind:       entity.ImportKindInvoices,
		FileName:   result.FileName,
		TotalCount: result.TotalCount,
		Status:     entity.ImportStatusRunning,
		StartedAt:  time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to create import session", "error", err, "file", result.FileName)
		return nil, fmt.Errorf("create import session: %w", err)
	}

	saved := make([]*ValidatedInvoice, 0, len(result.Invoices))
	for _, vi := range result.Invoices {
		vi.Invoice.ImportSessionID = &session.ID

		err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
			return s.invoiceRepo.Create(ctx, vi.Invoice)
		})
		if err != nil {
			s.logger.Error("Failed to save invoice",
				"error", err,
				"sheet", vi.Sheet,
				"invoice_number", vi.Invoice.InvoiceNumber)
			result.Errors = append(result.Errors, excel.SheetError{
				Sheet:   vi.Sheet,
				Message: fmt.Sprintf("failed to save invoice %s: %v", vi.Invoice.InvoiceNumber, err),
			})
			continue
		}
		saved = append(saved, vi)
	}
	result.Invoices = saved

	session.SuccessCount = len(saved)
	session.ErrorCount = session.TotalCount - session.SuccessCount
	session.Status = entity.ImportStatusCompleted
	if session.TotalCount > 0 && session.SuccessCount == 0 {
		session.Status = entity.ImportStatusFailed
	}
	session.Message = fmt.Sprintf("%d of %d invoices imported", session.SuccessCount, session.TotalCount)
	now := time.Now()
	session.CompletedAt = &now

	if err := s.sessionRepo.Complete(ctx, session); err != nil {
		s.logger.Error("Failed to complete import session", "error", err, "session_id", session.ID)
		return nil, fmt.Errorf("complete import session: %w", err)
	}
	result.Session = session

	s.logger.Info("Invoice import finished",
		"file", result.FileName,
		"session", session.Reference,
		"imported", session.SuccessCount,
		"errors", session.ErrorCount)
	return result, nil
}

func (s *invoiceImportServiceImpl) analyze(ctx context.Context, path string) (*InvoiceImportResult, error) {
	if err := checkImportFile(path); err != nil {
		return nil, err
	}

	parsed, err := s.reader.ReadInvoices(path)
	if err != nil {
		s.logger.Error("Failed to read invoice workbook", "error", err, "path", path)
		return nil, fmt.Errorf("read invoice workbook: %w", err)
	}

	result := &InvoiceImportResult{
		FileName:   filepath.Base(path),
		SheetCount: parsed.SheetCount,
		TotalCount: len(parsed.Invoices) + len(parsed.SheetErrors),
		Invoices:   []*ValidatedInvoice{},
		Errors:     append([]excel.SheetError{}, parsed.SheetErrors...),
		Warnings:   []excel.SheetError{},
	}

	seen := make(map[string]string, len(parsed.Invoices))
	for _, p := range parsed.Invoices {
		vi, err := s.validator.Validate(ctx, p)
		if err != nil {
			s.logger.Error("Failed to validate sheet", "error", err, "sheet", p.Sheet)
			return nil, fmt.Errorf("validate sheet %s: %w", p.Sheet, err)
		}

		if number := vi.Invoice.InvoiceNumber; number != "" {
			if other, dup := seen[number]; dup {
				vi.addError("A3", "invoice number %q also appears on sheet %q", number, other)
			} else {
				seen[number] = p.Sheet
			}
		}

		result.Warnings = append(result.Warnings, vi.Warnings...)
		if vi.Valid() {
			result.Invoices = append(result.Invoices, vi)
		} else {
			result.Errors = append(result.Errors, vi.Errors...)
		}
	}

	s.logger.Info("Invoice workbook analyzed",
		"file", result.FileName,
		"sheets", result.SheetCount,
		"valid", len(result.Invoices),
		"errors", len(result.Errors),
		"warnings", len(result.Warnings))
	return result, nil
}

// checkImportFile reports file-level problems before any parsing
func checkImportFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	if !excel.IsSupported(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return nil
}
