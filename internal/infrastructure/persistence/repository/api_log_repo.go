package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// ApiLogRepository implements port.ApiLogRepository. There is no update
// or delete on purpose.
type ApiLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewApiLogRepository creates a new API log repository
func NewApiLogRepository(db *sql.DB, logger *zap.Logger) port.ApiLogRepository {
	return &ApiLogRepository{db: db, logger: logger}
}

// Append records one DGI call
func (r *ApiLogRepository) Append(ctx context.Context, log *entity.FneApiLog) error {
	query := `
		INSERT INTO fne_api_logs (
			invoice_id, endpoint, request_body, response_body, status_code,
			success, error_message, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		log.InvoiceID,
		log.Endpoint,
		log.RequestBody,
		log.ResponseBody,
		log.StatusCode,
		log.Success,
		log.ErrorMessage,
		log.DurationMs,
		log.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append API log", zap.Int64("invoice_id", log.InvoiceID), zap.Error(err))
		return fmt.Errorf("failed to append api log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	log.ID = id
	return nil
}

// ListByInvoiceID returns the calls made for an invoice, oldest first
func (r *ApiLogRepository) ListByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.FneApiLog, error) {
	query := `
		SELECT id, invoice_id, endpoint, request_body, response_body, status_code,
			success, error_message, duration_ms, created_at
		FROM fne_api_logs
		WHERE invoice_id = ?
		ORDER BY id
	`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to list API logs", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to list api logs: %w", err)
	}
	defer rows.Close()

	var logs []*entity.FneApiLog
	for rows.Next() {
		var l entity.FneApiLog
		err := rows.Scan(
			&l.ID,
			&l.InvoiceID,
			&l.Endpoint,
			&l.RequestBody,
			&l.ResponseBody,
			&l.StatusCode,
			&l.Success,
			&l.ErrorMessage,
			&l.DurationMs,
			&l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api log: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}

var _ port.ApiLogRepository = (*ApiLogRepository)(nil)
