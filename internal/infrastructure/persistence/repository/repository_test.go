package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/domain/entity"
	"github.com/sousbill/sousbill/internal/infrastructure/persistence/sqlite"
	"github.com/sousbill/sousbill/migrations"
	"github.com/sousbill/sousbill/pkg/database"
)

// newTestDB opens a throwaway SQLite database with the real schema.
func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	logger := zap.NewNop()
	sqlDB, err := database.Open(database.Config{
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.NewMigrator(sqlDB, logger).Run(migrations.FS))

	return sqlite.NewDB(sqlDB, logger)
}

// seedInvoice inserts a header with items and returns its id.
func seedInvoice(t *testing.T, db *sqlite.DB, userID, vendor, date string, items ...*entity.InvoiceItem) int64 {
	t.Helper()

	ctx := context.Background()
	logger := zap.NewNop()
	invoiceRepo := NewInvoiceRepository(db, logger)
	itemRepo := NewItemRepository(db, logger)

	var total float64
	for _, it := range items {
		total += it.TotalPrice
	}

	inv := &entity.Invoice{
		UserID:      userID,
		Vendor:      vendor,
		Date:        date,
		TotalAmount: total,
		Currency:    "EUR",
	}
	require.NoError(t, invoiceRepo.Create(ctx, inv))

	for _, it := range items {
		it.InvoiceID = inv.ID
		require.NoError(t, itemRepo.Create(ctx, it))
	}

	return inv.ID
}

func countRows(t *testing.T, db *sqlite.DB, table string) int {
	t.Helper()

	var n int
	err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n)
	require.NoError(t, err)
	return n
}
