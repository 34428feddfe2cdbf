package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const sessionColumns = `
	id, reference, kind, file_name, total_count, success_count, error_count,
	status, message, started_at, completed_at`

// ImportSessionRepository implements port.ImportSessionRepository
type ImportSessionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewImportSessionRepository creates a new import session repository
func NewImportSessionRepository(db *sql.DB, logger *zap.Logger) port.ImportSessionRepository {
	return &ImportSessionRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a RUNNING session
func (r *ImportSessionRepository) Create(ctx context.Context, session *entity.ImportSession) error {
	query := `
		INSERT INTO import_sessions (reference, kind, file_name, status, started_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	session.Status = entity.ImportStatusRunning

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		session.Reference,
		session.Kind,
		session.FileName,
		session.Status,
		session.StartedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create import session", zap.String("reference", session.Reference), zap.Error(err))
		return fmt.Errorf("failed to create import session: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	session.ID = id
	return nil
}

// Complete writes the final counts. A session that is no longer RUNNING is
// left as it is and ErrNotFound is returned.
func (r *ImportSessionRepository) Complete(ctx context.Context, session *entity.ImportSession) error {
	query := `
		UPDATE import_sessions SET
			total_count = ?, success_count = ?, error_count = ?, status = ?,
			message = ?, completed_at = ?
		WHERE id = ? AND status = ?
	`

	if session.Status == "" || session.Status == entity.ImportStatusRunning {
		session.Status = entity.ImportStatusCompleted
	}
	now := time.Now().UTC()

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		session.TotalCount,
		session.SuccessCount,
		session.ErrorCount,
		session.Status,
		session.Message,
		now,
		session.ID,
		entity.ImportStatusRunning,
	)
	if err != nil {
		r.logger.Error("Failed to complete import session", zap.Int64("id", session.ID), zap.Error(err))
		return fmt.Errorf("failed to complete import session: %w", err)
	}
	if err := expectOne(result, "running import session", session.ID); err != nil {
		return err
	}
	session.CompletedAt = &now
	return nil
}

// GetByID returns a session or nil
func (r *ImportSessionRepository) GetByID(ctx context.Context, id int64) (*entity.ImportSession, error) {
	query := `SELECT` + sessionColumns + ` FROM import_sessions WHERE id = ?`

	session, err := scanSession(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get import session", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get import session: %w", err)
	}
	return session, nil
}

// List returns sessions, most recent first
func (r *ImportSessionRepository) List(ctx context.Context, limit, offset int) ([]*entity.ImportSession, error) {
	query := `SELECT` + sessionColumns + ` FROM import_sessions ORDER BY started_at DESC, id DESC LIMIT ? OFFSET ?`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list import sessions", zap.Error(err))
		return nil, fmt.Errorf("failed to list import sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*entity.ImportSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*entity.ImportSession, error) {
	var s entity.ImportSession
	var completedAt sql.NullTime
	err := row.Scan(
		&s.ID,
		&s.Reference,
		&s.Kind,
		&s.FileName,
		&s.TotalCount,
		&s.SuccessCount,
		&s.ErrorCount,
		&s.Status,
		&s.Message,
		&s.StartedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		s.CompletedAt = &completedAt.Time
	}
	return &s, nil
}

func (r *ImportSessionRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.ImportSessionRepository = (*ImportSessionRepository)(nil)
