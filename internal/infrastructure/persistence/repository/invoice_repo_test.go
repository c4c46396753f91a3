package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/domain/entity"
)

func TestInvoiceRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())
	ctx := context.Background()

	inv := &entity.Invoice{
		UserID:      "user-1",
		Vendor:      "Metro",
		Date:        "2024-03-10",
		TotalAmount: 41.50,
		Currency:    "EUR",
		ImageURL:    "uploads/abc.pdf",
	}
	require.NoError(t, repo.Create(ctx, inv))
	assert.NotZero(t, inv.ID)

	got, err := repo.GetByID(ctx, "user-1", inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Metro", got.Vendor)
	assert.Equal(t, "2024-03-10", got.Date)
	assert.Equal(t, 41.50, got.TotalAmount)
	assert.Equal(t, "uploads/abc.pdf", got.ImageURL)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestInvoiceRepository_TenantIsolation(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())
	ctx := context.Background()

	id := seedInvoice(t, db, "user-1", "Metro", "2024-03-10")

	got, err := repo.GetByID(ctx, "user-2", id)
	require.NoError(t, err)
	assert.Nil(t, got, "another user's invoice must be invisible")

	err = repo.UpdateHeader(ctx, "user-2", &entity.Invoice{ID: id, Vendor: "Hacked", Currency: "EUR"})
	assert.Error(t, err)

	err = repo.Delete(ctx, "user-2", id)
	assert.Error(t, err)

	// Still intact for the owner.
	got, err = repo.GetByID(ctx, "user-1", id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Metro", got.Vendor)
}

func TestInvoiceRepository_ListByUserOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())
	ctx := context.Background()

	seedInvoice(t, db, "user-1", "Metro", "2024-01-05")
	seedInvoice(t, db, "user-1", "Rungis", "2024-03-01")
	seedInvoice(t, db, "user-1", "Transgourmet", "2024-02-10")
	seedInvoice(t, db, "user-2", "Other", "2024-12-31")

	invoices, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, invoices, 3)

	assert.Equal(t, "Rungis", invoices[0].Vendor)
	assert.Equal(t, "Transgourmet", invoices[1].Vendor)
	assert.Equal(t, "Metro", invoices[2].Vendor)
}

func TestInvoiceRepository_UpdateHeader(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())
	ctx := context.Background()

	id := seedInvoice(t, db, "user-1", "Metr0", "2024-03-10")

	err := repo.UpdateHeader(ctx, "user-1", &entity.Invoice{
		ID:          id,
		Vendor:      "Metro",
		Date:        "2024-03-11",
		TotalAmount: 99.0,
		Currency:    "USD",
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, "Metro", got.Vendor)
	assert.Equal(t, "2024-03-11", got.Date)
	assert.Equal(t, 99.0, got.TotalAmount)
	assert.Equal(t, "USD", got.Currency)
}

func TestInvoiceRepository_DeleteCascadesToItems(t *testing.T) {
	db := newTestDB(t)
	repo := NewInvoiceRepository(db, zap.NewNop())
	ctx := context.Background()

	id := seedInvoice(t, db, "user-1", "Metro", "2024-03-10",
		&entity.InvoiceItem{Description: "Flour", Quantity: 2, UnitPrice: 1.5, TotalPrice: 3.0},
		&entity.InvoiceItem{Description: "Eggs", Quantity: 30, UnitPrice: 0.2, TotalPrice: 6.0},
		&entity.InvoiceItem{Description: "Milk", Quantity: 6, UnitPrice: 0.9, TotalPrice: 5.4},
	)
	require.Equal(t, 3, countRows(t, db, "invoice_items"))

	require.NoError(t, repo.Delete(ctx, "user-1", id))

	assert.Equal(t, 0, countRows(t, db, "invoices"))
	assert.Equal(t, 0, countRows(t, db, "invoice_items"), "items must not survive their invoice")
}
