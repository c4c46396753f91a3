package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/domain/entity"
)

func TestItemRepository_GetByInvoiceID(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db, zap.NewNop())
	ctx := context.Background()

	id := seedInvoice(t, db, "user-1", "Metro", "2024-03-10",
		&entity.InvoiceItem{Description: "Flour", Quantity: 2, UnitPrice: 1.5, TotalPrice: 3.0},
		&entity.InvoiceItem{Description: "Eggs", Quantity: 30, UnitPrice: 0.2, TotalPrice: 6.0},
	)

	items, err := repo.GetByInvoiceID(ctx, id)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Flour", items[0].Description)
	assert.Equal(t, "Eggs", items[1].Description)
	assert.Equal(t, 6.0, items[1].TotalPrice)
}

func TestItemRepository_LatestUnitPrice(t *testing.T) {
	db := newTestDB(t)
	repo := NewItemRepository(db, zap.NewNop())
	ctx := context.Background()

	seedInvoice(t, db, "user-1", "Metro", "2024-01-01",
		&entity.InvoiceItem{Description: "Flour", Quantity: 1, UnitPrice: 2.0, TotalPrice: 2.0})
	seedInvoice(t, db, "user-1", "Rungis", "2024-02-01",
		&entity.InvoiceItem{Description: "Flour", Quantity: 1, UnitPrice: 2.5, TotalPrice: 2.5})

	t.Run("picks most recent prior purchase", func(t *testing.T) {
		price, found, err := repo.LatestUnitPrice(ctx, "user-1", "Flour", "2024-03-01")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 2.5, price)
	})

	t.Run("cutoff is strict", func(t *testing.T) {
		price, found, err := repo.LatestUnitPrice(ctx, "user-1", "Flour", "2024-02-01")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 2.0, price, "same-date purchase must be excluded")
	})

	t.Run("no purchase before cutoff", func(t *testing.T) {
		_, found, err := repo.LatestUnitPrice(ctx, "user-1", "Flour", "2024-01-01")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("description matches exactly", func(t *testing.T) {
		_, found, err := repo.LatestUnitPrice(ctx, "user-1", "flour", "2024-03-01")
		require.NoError(t, err)
		assert.False(t, found, "lookup is an exact string match")
	})

	t.Run("scoped to the user", func(t *testing.T) {
		_, found, err := repo.LatestUnitPrice(ctx, "user-2", "Flour", "2024-03-01")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, found, err := repo.LatestUnitPrice(ctx, "user-1", "Saffron", "2024-03-01")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
