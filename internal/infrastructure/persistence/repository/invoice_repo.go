package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fnev4/fnev4/internal/application/port"
	"github.com/fnev4/fnev4/internal/domain/entity"
	"github.com/fnev4/fnev4/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const invoiceColumns = `
	id, invoice_number, invoice_date, point_of_sale, client_id, client_code,
	client_name, client_ncc, template, payment_method, invoice_type, status,
	total_amount_ht, total_vat_amount, total_amount_ttc, parent_invoice_id,
	credit_note_reference, import_session_id, source_sheet, fne_reference,
	fne_invoice_id, verification_token, sticker_balance, last_error,
	certified_at, is_deleted, created_at, updated_at`

const itemColumns = `
	id, invoice_id, line_number, product_code, description, quantity,
	unit_price, unit, vat_code, vat_rate, line_amount_ht, line_vat_amount,
	line_amount_ttc, fne_item_id`

// InvoiceRepository implements port.InvoiceRepository
type InvoiceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sql.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the invoice header then its items. Callers wrap it in a
// transaction so that a failing item leaves nothing behind.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.FneInvoice) error {
	query := `
		INSERT INTO fne_invoices (
			invoice_number, invoice_date, point_of_sale, client_id, client_code,
			client_name, client_ncc, template, payment_method, invoice_type, status,
			total_amount_ht, total_vat_amount, total_amount_ttc, parent_invoice_id,
			credit_note_reference, import_session_id, source_sheet,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if invoice.Status == "" {
		invoice.Status = entity.InvoiceStatusDraft
	}
	if invoice.InvoiceType == "" {
		invoice.InvoiceType = entity.InvoiceTypeSale
	}

	now := time.Now().UTC()
	exec := r.getExecutor(ctx)
	result, err := exec.ExecContext(ctx, query,
		invoice.InvoiceNumber,
		invoice.InvoiceDate,
		invoice.PointOfSale,
		nullInt64(invoice.ClientID),
		invoice.ClientCode,
		invoice.ClientName,
		invoice.ClientNcc,
		invoice.Template,
		invoice.PaymentMethod,
		invoice.InvoiceType,
		invoice.Status,
		invoice.TotalAmountHT,
		invoice.TotalVatAmount,
		invoice.TotalAmountTTC,
		nullInt64(invoice.ParentInvoiceID),
		invoice.CreditNoteReference,
		nullInt64(invoice.ImportSessionID),
		invoice.SourceSheet,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice %s: %w", invoice.InvoiceNumber, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	invoice.ID = id
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	itemQuery := `
		INSERT INTO fne_invoice_items (
			invoice_id, line_number, product_code, description, quantity,
			unit_price, unit, vat_code, vat_rate, line_amount_ht,
			line_vat_amount, line_amount_ttc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, item := range invoice.Items {
		if item.LineNumber == 0 {
			item.LineNumber = i + 1
		}
		res, err := exec.ExecContext(ctx, itemQuery,
			id,
			item.LineNumber,
			item.ProductCode,
			item.Description,
			item.Quantity,
			item.UnitPrice,
			item.Unit,
			item.VatCode,
			item.VatRate,
			item.LineAmountHT,
			item.LineVatAmount,
			item.LineAmountTTC,
		)
		if err != nil {
			r.logger.Error("Failed to create invoice item",
				zap.Int64("invoice_id", id),
				zap.Int("line", item.LineNumber),
				zap.Error(err))
			return fmt.Errorf("failed to create item %d of invoice %s: %w", item.LineNumber, invoice.InvoiceNumber, err)
		}
		itemID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		item.ID = itemID
		item.InvoiceID = id
	}

	return nil
}

// GetByID returns a live invoice with its items, or nil
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*entity.FneInvoice, error) {
	query := `SELECT` + invoiceColumns + ` FROM fne_invoices WHERE id = ? AND is_deleted = 0`
	return r.getOne(ctx, query, id)
}

// GetByNumber returns the live invoice carrying number, or nil
func (r *InvoiceRepository) GetByNumber(ctx context.Context, number string) (*entity.FneInvoice, error) {
	query := `SELECT` + invoiceColumns + ` FROM fne_invoices WHERE invoice_number = ? AND is_deleted = 0`
	return r.getOne(ctx, query, number)
}

func (r *InvoiceRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.FneInvoice, error) {
	invoice, err := scanInvoice(r.getExecutor(ctx).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice", zap.Any("key", arg), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	items, err := r.getItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.Items = items
	return invoice, nil
}

// ExistsByNumber reports whether a live invoice already uses number
func (r *InvoiceRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int
	err := r.getExecutor(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fne_invoices WHERE invoice_number = ? AND is_deleted = 0`,
		number,
	).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to check invoice number", zap.String("invoice_number", number), zap.Error(err))
		return false, fmt.Errorf("failed to check invoice number: %w", err)
	}
	return count > 0, nil
}

// List returns a page of live invoices, newest first, without items, along
// with the number of invoices matching the filter.
func (r *InvoiceRepository) List(ctx context.Context, filter port.InvoiceFilter) ([]*entity.FneInvoice, int, error) {
	conds := []string{"is_deleted = 0"}
	var args []interface{}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.ClientCode != "" {
		conds = append(conds, "client_code = ?")
		args = append(args, filter.ClientCode)
	}
	if filter.SessionID != 0 {
		conds = append(conds, "import_session_id = ?")
		args = append(args, filter.SessionID)
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	exec := r.getExecutor(ctx)

	var total int
	if err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM fne_invoices`+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count invoices", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT` + invoiceColumns + ` FROM fne_invoices` + where +
		` ORDER BY invoice_date DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := exec.QueryContext(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.FneInvoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, total, rows.Err()
}

// UpdateCertification stores the outcome of a DGI call. certified_at is set
// only when the new status is CERTIFIED.
func (r *InvoiceRepository) UpdateCertification(ctx context.Context, id int64, update port.CertificationUpdate) error {
	query := `
		UPDATE fne_invoices SET
			status = ?, fne_reference = ?, fne_invoice_id = ?, verification_token = ?,
			sticker_balance = ?, last_error = ?, certified_at = ?, updated_at = ?
		WHERE id = ? AND is_deleted = 0
	`

	now := time.Now().UTC()
	var certifiedAt interface{}
	if update.Status == entity.InvoiceStatusCertified {
		certifiedAt = now
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		update.Status,
		update.FneReference,
		update.FneInvoiceID,
		update.VerificationToken,
		nullInt64(update.StickerBalance),
		update.LastError,
		certifiedAt,
		now,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update certification", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update certification: %w", err)
	}
	if err := expectOne(result, "invoice", id); err != nil {
		return err
	}

	if len(update.ItemIDs) == 0 {
		return nil
	}
	items, err := r.getItems(ctx, id)
	if err != nil {
		return err
	}
	for i, item := range items {
		if i >= len(update.ItemIDs) {
			break
		}
		_, err := r.getExecutor(ctx).ExecContext(ctx,
			`UPDATE fne_invoice_items SET fne_item_id = ? WHERE id = ?`,
			update.ItemIDs[i], item.ID)
		if err != nil {
			r.logger.Error("Failed to store DGI item id", zap.Int64("item_id", item.ID), zap.Error(err))
			return fmt.Errorf("failed to store DGI item id: %w", err)
		}
	}
	return nil
}

// UpdateStatus changes the status and last error message
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status, lastError string) error {
	query := `UPDATE fne_invoices SET status = ?, last_error = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, status, lastError, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update invoice status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	return expectOne(result, "invoice", id)
}

// UpdatePaymentMethod changes the payment method of an invoice
func (r *InvoiceRepository) UpdatePaymentMethod(ctx context.Context, id int64, method string) error {
	query := `UPDATE fne_invoices SET payment_method = ?, updated_at = ? WHERE id = ? AND is_deleted = 0`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, method, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update payment method", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update payment method: %w", err)
	}
	return expectOne(result, "invoice", id)
}

// SoftDelete flags the invoice as deleted; its number becomes reusable
func (r *InvoiceRepository) SoftDelete(ctx context.Context, id int64) error {
	query := `UPDATE fne_invoices SET is_deleted = 1, updated_at = ? WHERE id = ? AND is_deleted = 0`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to delete invoice", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return expectOne(result, "invoice", id)
}

func (r *InvoiceRepository) getItems(ctx context.Context, invoiceID int64) ([]*entity.FneInvoiceItem, error) {
	query := `SELECT` + itemColumns + ` FROM fne_invoice_items WHERE invoice_id = ? ORDER BY line_number`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to get invoice items", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice items: %w", err)
	}
	defer rows.Close()

	var items []*entity.FneInvoiceItem
	for rows.Next() {
		var it entity.FneInvoiceItem
		err := rows.Scan(
			&it.ID,
			&it.InvoiceID,
			&it.LineNumber,
			&it.ProductCode,
			&it.Description,
			&it.Quantity,
			&it.UnitPrice,
			&it.Unit,
			&it.VatCode,
			&it.VatRate,
			&it.LineAmountHT,
			&it.LineVatAmount,
			&it.LineAmountTTC,
			&it.FneItemID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

func scanInvoice(row rowScanner) (*entity.FneInvoice, error) {
	var inv entity.FneInvoice
	var clientID, parentID, sessionID, sticker sql.NullInt64
	var certifiedAt sql.NullTime

	err := row.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.InvoiceDate,
		&inv.PointOfSale,
		&clientID,
		&inv.ClientCode,
		&inv.ClientName,
		&inv.ClientNcc,
		&inv.Template,
		&inv.PaymentMethod,
		&inv.InvoiceType,
		&inv.Status,
		&inv.TotalAmountHT,
		&inv.TotalVatAmount,
		&inv.TotalAmountTTC,
		&parentID,
		&inv.CreditNoteReference,
		&sessionID,
		&inv.SourceSheet,
		&inv.FneReference,
		&inv.FneInvoiceID,
		&inv.VerificationToken,
		&sticker,
		&inv.LastError,
		&certifiedAt,
		&inv.IsDeleted,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.ClientID = int64Ptr(clientID)
	inv.ParentInvoiceID = int64Ptr(parentID)
	inv.ImportSessionID = int64Ptr(sessionID)
	inv.StickerBalance = int64Ptr(sticker)
	if certifiedAt.Valid {
		inv.CertifiedAt = &certifiedAt.Time
	}
	return &inv, nil
}

func (r *InvoiceRepository) getExecutor(ctx context.Context) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, r.db)
}

// Verify interface compliance
var _ port.InvoiceRepository = (*InvoiceRepository)(nil)
