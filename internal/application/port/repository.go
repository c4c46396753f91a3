package port

import (
	"context"

	"github.com/sousbill/sousbill/internal/domain/entity"
)

// InvoiceRepository defines persistence operations for Invoice headers.
// Every read is scoped by user id; a query without that filter would leak
// data across tenants.
type InvoiceRepository interface {
	// Create inserts a new invoice header and assigns its ID. Inside a
	// transaction the assigned ID is visible to subsequent item inserts.
	Create(ctx context.Context, invoice *entity.Invoice) error

	// GetByID retrieves an invoice owned by userID, or nil if absent.
	GetByID(ctx context.Context, userID string, id int64) (*entity.Invoice, error)

	// ListByUser retrieves all invoices for a user, most recent date first.
	ListByUser(ctx context.Context, userID string) ([]*entity.Invoice, error)

	// UpdateHeader updates vendor, date, total_amount and currency of an
	// invoice owned by userID.
	UpdateHeader(ctx context.Context, userID string, invoice *entity.Invoice) error

	// Delete removes an invoice owned by userID; items cascade.
	Delete(ctx context.Context, userID string, id int64) error
}

// ItemRepository defines persistence operations for InvoiceItem rows.
type ItemRepository interface {
	// Create inserts a new line item and assigns its ID.
	Create(ctx context.Context, item *entity.InvoiceItem) error

	// GetByInvoiceID retrieves all items of one invoice, insertion order.
	GetByInvoiceID(ctx context.Context, invoiceID int64) ([]*entity.InvoiceItem, error)

	// LatestUnitPrice resolves the price history for one product: the unit
	// price of the most recent purchase of exactly description by userID
	// strictly before beforeDate. The second result reports whether any
	// such purchase exists.
	LatestUnitPrice(ctx context.Context, userID, description, beforeDate string) (float64, bool, error)
}

// AnalyticsRepository serves the cost-analysis read models. All queries
// are user-scoped; from/to are inclusive ISO-8601 date bounds.
type AnalyticsRepository interface {
	SpendSummary(ctx context.Context, userID, from, to string) (*entity.SpendSummary, error)
	ProductStats(ctx context.Context, userID, from, to string) ([]*entity.ProductStat, error)
	PriceSeries(ctx context.Context, userID, description string) ([]*entity.PricePoint, error)
}

// TransactionManager executes a function within a database transaction.
// The transaction is committed if fn returns nil, rolled back otherwise.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
