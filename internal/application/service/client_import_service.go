package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/infrastructure/excel"
)

// ClientWorkbookReader parses a client import workbook
type ClientWorkbookReader interface {
	ReadClients(path string) (*excel.ClientParseResult, error)
}

// ClientTemplateWriter writes the blank client import workbook
type ClientTemplateWriter interface {
	ExportClientTemplate(path string) error
}

// Row actions reported after an import
const (
	RowActionCreated = "created"
	RowActionUpdated = "updated"
)

// RowResult is the outcome of one client row
type RowResult struct {
	Row              int            `json:"row"`
	Client           *entity.Client `json:"client"`
	InferredTemplate bool           `json:"inferred_template"`
	Errors           []string       `json:"errors,omitempty"`
	Warnings         []string       `json:"warnings,omitempty"`
	Action           string         `json:"action,omitempty"`
}

// Valid reports whether the row can be saved
func (r *RowResult) Valid() bool {
	return len(r.Errors) == 0
}

// ClientImportResult summarizes a client workbook
type ClientImportResult struct {
	FileName      string                `json:"file_name"`
	Sheet         string                `json:"sheet"`
	ProcessedRows int                   `json:"processed_rows"`
	ValidRows     int                   `json:"valid_rows"`
	ErrorRows     int                   `json:"error_rows"`
	Rows          []*RowResult          `json:"rows"`
	Session       *entity.ImportSession `json:"session,omitempty"`
}

// ClientImportService imports clients from the one-row-per-client layout
type ClientImportService interface {
	Preview(ctx context.Context, path string) (*ClientImportResult, error)
	Import(ctx context.Context, path string) (*ClientImportResult, error)
	ExportTemplate(ctx context.Context, path string) error
}

type clientImportServiceImpl struct {
	reader      ClientWorkbookReader
	writer      ClientTemplateWriter
	clientRepo  port.ClientRepository
	sessionRepo port.ImportSessionRepository
	txManager   port.TransactionManager
	logger      Logger
}

// NewClientImportService creates a new ClientImportService
func NewClientImportService(
	reader ClientWorkbookReader,
	writer ClientTemplateWriter,
	clientRepo port.ClientRepository,
	sessionRepo port.ImportSessionRepository,
	txManager port.TransactionManager,
	logger Logger,
) ClientImportService {
	return &clientImportServiceImpl{
		reader:      reader,
		writer:      writer,
		clientRepo:  clientRepo,
		sessionRepo: sessionRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Preview validates every row without saving
func (s *clientImportServiceImpl) Preview(ctx context.Context, path string) (*ClientImportResult, error) {
	return s.analyze(path)
}

// Import creates new clients and updates existing ones, matched by code
func (s *clientImportServiceImpl) Import(ctx context.Context, path string) (*ClientImportResult, error) {
	result, err := s.analyze(path)
	if err != nil {
		return nil, err
	}

	session := &entity.ImportSession{
		Reference:  uuid.NewString(),
		Kind:       entity.ImportKindClients,
		FileName:   result.FileName,
		TotalCount: result.ProcessedRows,
		Status:     entity.ImportStatusRunning,
		StartedAt:  time.Now(),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		s.logger.Error("Failed to create import session", "error", err, "file", result.FileName)
		return nil, fmt.Errorf("create import session: %w", err)
	}

	saved := 0
	for _, row := range result.Rows {
		if !row.Valid() {
			continue
		}
		action, err := s.upsert(ctx, row.Client)
		if err != nil {
			s.logger.Error("Failed to save client",
				"error", err,
				"row", row.Row,
				"code", row.Client.Code)
			row.Errors = append(row.Errors, fmt.Sprintf("failed to save client: %v", err))
			result.ValidRows--
			result.ErrorRows++
			continue
		}
		row.Action = action
		saved++
	}

	session.SuccessCount = saved
	session.ErrorCount = result.ErrorRows
	session.Status = entity.ImportStatusCompleted
	if session.TotalCount > 0 && saved == 0 {
		session.Status = entity.ImportStatusFailed
	}
	session.Message = fmt.Sprintf("%d of %d clients imported", saved, session.TotalCount)
	now := time.Now()
	session.CompletedAt = &now

	if err := s.sessionRepo.Complete(ctx, session); err != nil {
		s.logger.Error("Failed to complete import session", "error", err, "session_id", session.ID)
		return nil, fmt.Errorf("complete import session: %w", err)
	}
	result.Session = session

	s.logger.Info("Client import finished",
		"file", result.FileName,
		"session", session.Reference,
		"imported", saved,
		"errors", result.ErrorRows)
	return result, nil
}

// upsert reactivates a deactivated client with the same code
func (s *clientImportServiceImpl) upsert(ctx context.Context, c *entity.Client) (string, error) {
	action := RowActionCreated
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.clientRepo.FindByCode(ctx, c.Code)
		if err != nil {
			return err
		}
		if existing == nil {
			return s.clientRepo.Create(ctx, c)
		}
		action = RowActionUpdated
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		return s.clientRepo.Update(ctx, c)
	})
	return action, err
}

// ExportTemplate writes a blank client import workbook to path
func (s *clientImportServiceImpl) ExportTemplate(ctx context.Context, path string) error {
	if filepath.Ext(path) != ".xlsx" {
		return fmt.Errorf("%w: template must be .xlsx", ErrUnsupportedFormat)
	}
	if err := s.writer.ExportClientTemplate(path); err != nil {
		s.logger.Error("Failed to export client template", "error", err, "path", path)
		return fmt.Errorf("export client template: %w", err)
	}
	s.logger.Info("Client template exported", "path", path)
	return nil
}

func (s *clientImportServiceImpl) analyze(path string) (*ClientImportResult, error) {
	if err := checkImportFile(path); err != nil {
		return nil, err
	}

	parsed, err := s.reader.ReadClients(path)
	if err != nil {
		s.logger.Error("Failed to read client workbook", "error", err, "path", path)
		return nil, fmt.Errorf("read client workbook: %w", err)
	}

	result := &ClientImportResult{
		FileName: filepath.Base(path),
		Sheet:    parsed.Sheet,
		Rows:     make([]*RowResult, 0, len(parsed.Rows)),
	}

	seen := make(map[string]int, len(parsed.Rows))
	for _, r := range parsed.Rows {
		prepared := prepareClient(ClientInput{
			Code:          r.Code,
			Name:          r.Name,
			NCC:           r.NCC,
			Email:         r.Email,
			Phone:         r.Phone,
			PaymentMethod: r.PaymentText,
			Template:      r.TemplateText,
			Currency:      r.Currency,
			Address:       r.Address,
		})
		row := &RowResult{
			Row:              r.Row,
			Client:           prepared.Client,
			InferredTemplate: prepared.InferredTemplate,
			Errors:           prepared.Errors,
			Warnings:         prepared.Warnings,
		}

		if code := row.Client.Code; code != "" {
			if first, dup := seen[code]; dup {
				row.Errors = append(row.Errors, fmt.Sprintf("client code %q already appears on row %d", code, first))
			} else {
				seen[code] = r.Row
			}
		}

		result.ProcessedRows++
		if row.Valid() {
			result.ValidRows++
		} else {
			result.ErrorRows++
		}
		result.Rows = append(result.Rows, row)
	}

	s.logger.Info("Client workbook analyzed",
		"file", result.FileName,
		"processed", result.ProcessedRows,
		"valid", result.ValidRows,
		"errors", result.ErrorRows)
	return result, nil
}
