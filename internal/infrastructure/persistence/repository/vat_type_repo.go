package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// VatTypeRepository implements port.VatTypeRepository
type VatTypeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVatTypeRepository creates a new VAT type repository
func NewVatTypeRepository(db *sql.DB, logger *zap.Logger) port.VatTypeRepository {
	return &VatTypeRepository{db: db, logger: logger}
}

// List returns the seeded VAT codes
func (r *VatTypeRepository) List(ctx context.Context) ([]*entity.VatType, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx,
		`SELECT code, rate, description FROM vat_types ORDER BY code`)
	if err != nil {
		r.logger.Error("Failed to list VAT types", zap.Error(err))
		return nil, fmt.Errorf("failed to list vat types: %w", err)
	}
	defer rows.Close()

	var types []*entity.VatType
	for rows.Next() {
		var v entity.VatType
		if err := rows.Scan(&v.Code, &v.Rate, &v.Description); err != nil {
			return nil, fmt.Errorf("failed to scan vat type: %w", err)
		}
		types = append(types, &v)
	}
	return types, rows.Err()
}

var _ port.VatTypeRepository = (*VatTypeRepository)(nil)
