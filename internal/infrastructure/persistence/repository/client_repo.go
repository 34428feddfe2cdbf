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

const clientColumns = `
	id, code, name, ncc, template, default_payment_method, default_currency,
	email, phone, address, is_active, created_at, updated_at`

// ClientRepository implements port.ClientRepository
type ClientRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *sql.DB, logger *zap.Logger) port.ClientRepository {
	return &ClientRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a client. The code must not exist yet, active or not.
func (r *ClientRepository) Create(ctx context.Context, client *entity.Client) error {
	query := `
		INSERT INTO clients (
			code, name, ncc, template, default_payment_method, default_currency,
			email, phone, address, is_active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		client.Code,
		client.Name,
		client.NCC,
		client.Template,
		client.DefaultPaymentMethod,
		client.DefaultCurrency,
		client.Email,
		client.Phone,
		client.Address,
		client.IsActive,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create client", zap.String("code", client.Code), zap.Error(err))
		return fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	client.ID = id
	client.CreatedAt = now
	client.UpdatedAt = now
	return nil
}

// Update overwrites every editable field of the client identified by ID
func (r *ClientRepository) Update(ctx context.Context, client *entity.Client) error {
	query := `
		UPDATE clients SET
			code = ?, name = ?, ncc = ?, template = ?, default_payment_method = ?,
			default_currency = ?, email = ?, phone = ?, address = ?, is_active = ?,
			updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()
	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		client.Code,
		client.Name,
		client.NCC,
		client.Template,
		client.DefaultPaymentMethod,
		client.DefaultCurrency,
		client.Email,
		client.Phone,
		client.Address,
		client.IsActive,
		now,
		client.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update client", zap.Int64("id", client.ID), zap.Error(err))
		return fmt.Errorf("failed to update client: %w", err)
	}

	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("client %d: %w", client.ID, ErrNotFound)
	}

	client.UpdatedAt = now
	return nil
}

// GetByCode returns the active client with the given code, or nil
func (r *ClientRepository) GetByCode(ctx context.Context, code string) (*entity.Client, error) {
	query := `SELECT` + clientColumns + ` FROM clients WHERE code = ? AND is_active = 1`

	client, err := scanClient(r.getExecutor(ctx).QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get client by code", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// FindByCode returns the client with the given code even when inactive, or nil
func (r *ClientRepository) FindByCode(ctx context.Context, code string) (*entity.Client, error) {
	query := `SELECT` + clientColumns + ` FROM clients WHERE code = ?`

	client, err := scanClient(r.getExecutor(ctx).QueryRowContext(ctx, query, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to find client by code", zap.String("code", code), zap.Error(err))
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return client, nil
}

// GetByID returns the client with the given ID, active or not
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	query := `SELECT` + clientColumns + ` FROM clients WHERE id = ?`

	client, err := scanClient(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get client by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// List returns clients ordered by code
func (r *ClientRepository) List(ctx context.Context, limit, offset int, includeInactive bool) ([]*entity.Client, error) {
	query := `SELECT` + clientColumns + ` FROM clients`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY code LIMIT ? OFFSET ?`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list clients", zap.Error(err))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []*entity.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// Deactivate hides the client from lookups without deleting it
func (r *ClientRepository) Deactivate(ctx context.Context, code string) error {
	query := `UPDATE clients SET is_active = 0, updated_at = ? WHERE code = ? AND is_active = 1`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, time.Now().UTC(), code)
	if err != nil {
		r.logger.Error("Failed to deactivate client", zap.String("code", code), zap.Error(err))
		return fmt.Errorf("failed to deactivate client: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("client %q: %w", code, ErrNotFound)
	}
	return nil
}

func scanClient(row rowScanner) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(
		&c.ID,
		&c.Code,
		&c.Name,
		&c.NCC,
		&c.Template,
		&c.DefaultPaymentMethod,
		&c.DefaultCurrency,
		&c.Email,
		&c.Phone,
		&c.Address,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.ClientRepository = (*ClientRepository)(nil)
