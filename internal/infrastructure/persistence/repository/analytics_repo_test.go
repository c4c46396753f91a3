package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/domain/entity"
)

func TestAnalyticsRepository_SpendSummary(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db, zap.NewNop())
	ctx := context.Background()

	seedInvoice(t, db, "user-1", "Metro", "2024-01-10",
		&entity.InvoiceItem{Description: "Flour", Quantity: 2, UnitPrice: 2.0, TotalPrice: 4.0},
		&entity.InvoiceItem{Description: "Eggs", Quantity: 30, UnitPrice: 0.2, TotalPrice: 6.0})
	seedInvoice(t, db, "user-1", "Rungis", "2024-02-15",
		&entity.InvoiceItem{Description: "Flour", Quantity: 1, UnitPrice: 2.5, TotalPrice: 2.5})
	seedInvoice(t, db, "user-1", "Metro", "2024-06-01",
		&entity.InvoiceItem{Description: "Butter", Quantity: 4, UnitPrice: 3.0, TotalPrice: 12.0})
	seedInvoice(t, db, "user-2", "Other", "2024-01-15",
		&entity.InvoiceItem{Description: "Flour", Quantity: 10, UnitPrice: 9.0, TotalPrice: 90.0})

	summary, err := repo.SpendSummary(ctx, "user-1", "2024-01-01", "2024-03-31")
	require.NoError(t, err)

	assert.InDelta(t, 12.5, summary.TotalSpend, 1e-9)
	assert.Equal(t, 2, summary.InvoiceCount)
	assert.Equal(t, 2, summary.VendorCount)
	assert.Equal(t, "Flour", summary.TopProduct)
	assert.Equal(t, 2, summary.TopProductHits)
}

func TestAnalyticsRepository_SpendSummaryEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db, zap.NewNop())

	summary, err := repo.SpendSummary(context.Background(), "user-1", "2024-01-01", "2024-12-31")
	require.NoError(t, err)

	assert.Zero(t, summary.TotalSpend)
	assert.Zero(t, summary.InvoiceCount)
	assert.Empty(t, summary.TopProduct)
}

func TestAnalyticsRepository_ProductStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db, zap.NewNop())
	ctx := context.Background()

	seedInvoice(t, db, "user-1", "Metro", "2024-01-10",
		&entity.InvoiceItem{Description: "Flour", Quantity: 2, UnitPrice: 2.0, TotalPrice: 4.0})
	seedInvoice(t, db, "user-1", "Metro", "2024-02-10",
		&entity.InvoiceItem{Description: "Flour", Quantity: 2, UnitPrice: 3.0, TotalPrice: 6.0})
	seedInvoice(t, db, "user-1", "Rungis", "2024-02-20",
		&entity.InvoiceItem{Description: "Eggs", Quantity: 30, UnitPrice: 0.2, TotalPrice: 6.0},
		&entity.InvoiceItem{Description: "Butter", Quantity: 1, UnitPrice: 3.0, TotalPrice: 3.0})

	stats, err := repo.ProductStats(ctx, "user-1", "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	require.Len(t, stats, 3)

	// Ordered by total spend descending.
	flour := stats[0]
	assert.Equal(t, "Flour", flour.Description)
	assert.InDelta(t, 10.0, flour.TotalSpend, 1e-9)
	assert.InDelta(t, 4.0, flour.TotalQuantity, 1e-9)
	assert.InDelta(t, 2.5, flour.AvgUnitPrice, 1e-9)
	assert.Equal(t, "Metro", flour.TopVendor)

	assert.Equal(t, "Butter", stats[len(stats)-1].Description)
}

func TestAnalyticsRepository_PriceSeries(t *testing.T) {
	db := newTestDB(t)
	repo := NewAnalyticsRepository(db, zap.NewNop())
	ctx := context.Background()

	seedInvoice(t, db, "user-1", "Rungis", "2024-02-01",
		&entity.InvoiceItem{Description: "Flour", Quantity: 1, UnitPrice: 2.5, TotalPrice: 2.5})
	seedInvoice(t, db, "user-1", "Metro", "2024-01-01",
		&entity.InvoiceItem{Description: "Flour", Quantity: 1, UnitPrice: 2.0, TotalPrice: 2.0})
	seedInvoice(t, db, "user-2", "Other", "2024-01-15",
		&entity.InvoiceItem{Description: "Flour", Quantity: 1, UnitPrice: 9.0, TotalPrice: 9.0})

	points, err := repo.PriceSeries(ctx, "user-1", "Flour")
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2024-01-01", points[0].Date)
	assert.Equal(t, 2.0, points[0].UnitPrice)
	assert.Equal(t, "Metro", points[0].Vendor)
	assert.Equal(t, "2024-02-01", points[1].Date)
	assert.Equal(t, 2.5, points[1].UnitPrice)
}
