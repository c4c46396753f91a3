package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sousbill/sousbill/internal/application/port"
	"github.com/sousbill/sousbill/internal/domain/entity"
	"github.com/sousbill/sousbill/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// InvoiceRepository implements port.InvoiceRepository on SQLite.
type InvoiceRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *sqlite.DB, logger *zap.Logger) port.InvoiceRepository {
	return &InvoiceRepository{db: db, logger: logger}
}

// Create inserts a new invoice header and assigns its ID.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (user_id, vendor, date, total_amount, currency, image_url)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		invoice.UserID,
		invoice.Vendor,
		invoice.Date,
		invoice.TotalAmount,
		invoice.Currency,
		invoice.ImageURL,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice", zap.Error(err))
		return fmt.Errorf("failed to create invoice: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	invoice.ID = id
	return nil
}

// GetByID retrieves an invoice owned by userID, or nil if absent.
func (r *InvoiceRepository) GetByID(ctx context.Context, userID string, id int64) (*entity.Invoice, error) {
	query := `
		SELECT id, user_id, vendor, date, total_amount, currency, image_url, created_at
		FROM invoices
		WHERE id = ? AND user_id = ?
	`

	var invoice entity.Invoice
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, id, userID).Scan(
		&invoice.ID,
		&invoice.UserID,
		&invoice.Vendor,
		&invoice.Date,
		&invoice.TotalAmount,
		&invoice.Currency,
		&invoice.ImageURL,
		&invoice.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get invoice by ID", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	return &invoice, nil
}

// ListByUser retrieves all invoices for a user, most recent date first.
func (r *InvoiceRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Invoice, error) {
	query := `
		SELECT id, user_id, vendor, date, total_amount, currency, image_url, created_at
		FROM invoices
		WHERE user_id = ?
		ORDER BY date DESC, id DESC
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list invoices", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []*entity.Invoice
	for rows.Next() {
		var invoice entity.Invoice
		if err := rows.Scan(
			&invoice.ID,
			&invoice.UserID,
			&invoice.Vendor,
			&invoice.Date,
			&invoice.TotalAmount,
			&invoice.Currency,
			&invoice.ImageURL,
			&invoice.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, &invoice)
	}

	return invoices, rows.Err()
}

// UpdateHeader updates the editable header fields of an owned invoice.
func (r *InvoiceRepository) UpdateHeader(ctx context.Context, userID string, invoice *entity.Invoice) error {
	query := `
		UPDATE invoices
		SET vendor = ?, date = ?, total_amount = ?, currency = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		invoice.Vendor,
		invoice.Date,
		invoice.TotalAmount,
		invoice.Currency,
		invoice.ID,
		userID,
	)
	if err != nil {
		r.logger.Error("Failed to update invoice", zap.Int64("id", invoice.ID), zap.Error(err))
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %d not found", invoice.ID)
	}

	return nil
}

// Delete removes an owned invoice; the schema cascades to its items.
func (r *InvoiceRepository) Delete(ctx context.Context, userID string, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx,
		"DELETE FROM invoices WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		r.logger.Error("Failed to delete invoice", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("invoice %d not found", id)
	}

	return nil
}
