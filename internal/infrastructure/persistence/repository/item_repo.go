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

// ItemRepository implements port.ItemRepository on SQLite.
type ItemRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *sqlite.DB, logger *zap.Logger) port.ItemRepository {
	return &ItemRepository{db: db, logger: logger}
}

// Create inserts a new line item and assigns its ID.
func (r *ItemRepository) Create(ctx context.Context, item *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, total_price)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		item.InvoiceID,
		item.Description,
		item.Quantity,
		item.UnitPrice,
		item.TotalPrice,
	)
	if err != nil {
		r.logger.Error("Failed to create invoice item",
			zap.Int64("invoice_id", item.InvoiceID),
			zap.Error(err))
		return fmt.Errorf("failed to create invoice item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = id
	return nil
}

// GetByInvoiceID retrieves all items of one invoice in insertion order.
func (r *ItemRepository) GetByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, description, quantity, unit_price, total_price
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, invoiceID)
	if err != nil {
		r.logger.Error("Failed to get invoice items", zap.Int64("invoice_id", invoiceID), zap.Error(err))
		return nil, fmt.Errorf("failed to get invoice items: %w", err)
	}
	defer rows.Close()

	var items []*entity.InvoiceItem
	for rows.Next() {
		var item entity.InvoiceItem
		if err := rows.Scan(
			&item.ID,
			&item.InvoiceID,
			&item.Description,
			&item.Quantity,
			&item.UnitPrice,
			&item.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}

// LatestUnitPrice returns the unit price of the most recent purchase of
// exactly description by userID strictly before beforeDate. The date
// filter alone does not protect an item from comparing against itself
// when two purchases share a date; callers must resolve history before
// inserting the item's own row.
func (r *ItemRepository) LatestUnitPrice(ctx context.Context, userID, description, beforeDate string) (float64, bool, error) {
	query := `
		SELECT ii.unit_price
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.user_id = ?
		  AND ii.description = ?
		  AND i.date < ?
		ORDER BY i.date DESC
		LIMIT 1
	`

	var price float64
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, userID, description, beforeDate).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		r.logger.Error("Failed to resolve price history",
			zap.String("user_id", userID),
			zap.String("description", description),
			zap.Error(err))
		return 0, false, fmt.Errorf("failed to resolve price history: %w", err)
	}

	return price, true, nil
}
