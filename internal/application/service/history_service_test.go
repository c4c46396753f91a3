package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sousbill/sousbill/internal/domain/entity"
)

func TestHistoryService_GetLoadsItems(t *testing.T) {
	invoiceRepo := &mockInvoiceRepo{
		getByIDFunc: func(ctx context.Context, userID string, id int64) (*entity.Invoice, error) {
			return &entity.Invoice{ID: id, UserID: userID, Vendor: "Metro"}, nil
		},
	}
	itemRepo := &mockItemRepo{
		getByInvoiceIDFunc: func(ctx context.Context, invoiceID int64) ([]*entity.InvoiceItem, error) {
			return []*entity.InvoiceItem{
				{InvoiceID: invoiceID, Description: "Flour"},
			}, nil
		},
	}
	svc := NewHistoryService(invoiceRepo, itemRepo, zap.NewNop())

	inv, err := svc.Get(context.Background(), "user-1", 7)
	require.NoError(t, err)
	assert.Equal(t, "Metro", inv.Vendor)
	require.Len(t, inv.Items, 1)
	assert.Equal(t, "Flour", inv.Items[0].Description)
}

func TestHistoryService_GetUnknownInvoice(t *testing.T) {
	invoiceRepo := &mockInvoiceRepo{
		getByIDFunc: func(ctx context.Context, userID string, id int64) (*entity.Invoice, error) {
			return nil, nil
		},
	}
	svc := NewHistoryService(invoiceRepo, &mockItemRepo{}, zap.NewNop())

	_, err := svc.Get(context.Background(), "user-1", 7)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestHistoryService_UpdateHeaderValidation(t *testing.T) {
	svc := NewHistoryService(&mockInvoiceRepo{}, &mockItemRepo{}, zap.NewNop())

	err := svc.UpdateHeader(context.Background(), "user-1", &entity.Invoice{ID: 1, TotalAmount: -5})
	assert.Error(t, err)
}

func TestHistoryService_UpdateHeaderUnknownInvoice(t *testing.T) {
	invoiceRepo := &mockInvoiceRepo{
		getByIDFunc: func(ctx context.Context, userID string, id int64) (*entity.Invoice, error) {
			return nil, nil
		},
	}
	svc := NewHistoryService(invoiceRepo, &mockItemRepo{}, zap.NewNop())

	err := svc.UpdateHeader(context.Background(), "user-1", &entity.Invoice{ID: 1, TotalAmount: 5})
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestHistoryService_DeleteUnknownInvoice(t *testing.T) {
	invoiceRepo := &mockInvoiceRepo{
		getByIDFunc: func(ctx context.Context, userID string, id int64) (*entity.Invoice, error) {
			return nil, nil
		},
	}
	svc := NewHistoryService(invoiceRepo, &mockItemRepo{}, zap.NewNop())

	err := svc.Delete(context.Background(), "user-1", 9)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestHistoryService_ListWithItems(t *testing.T) {
	invoiceRepo := &mockInvoiceRepo{
		listByUserFunc: func(ctx context.Context, userID string) ([]*entity.Invoice, error) {
			return []*entity.Invoice{{ID: 1}, {ID: 2}}, nil
		},
	}
	itemRepo := &mockItemRepo{
		getByInvoiceIDFunc: func(ctx context.Context, invoiceID int64) ([]*entity.InvoiceItem, error) {
			return []*entity.InvoiceItem{{InvoiceID: invoiceID}}, nil
		},
	}
	svc := NewHistoryService(invoiceRepo, itemRepo, zap.NewNop())

	invoices, err := svc.ListWithItems(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	require.Len(t, invoices[0].Items, 1)
	assert.Equal(t, int64(2), invoices[1].Items[0].InvoiceID)
}
