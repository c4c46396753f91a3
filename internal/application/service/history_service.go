package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sousbill/sousbill/internal/application/port"
	"github.com/sousbill/sousbill/internal/domain/entity"
	"go.uber.org/zap"
)

// ErrInvoiceNotFound reports that an invoice does not exist or is owned
// by another user; the two cases are deliberately indistinguishable.
var ErrInvoiceNotFound = errors.New("invoice not found")

// HistoryService manages a user's saved invoices.
type HistoryService interface {
	List(ctx context.Context, userID string) ([]*entity.Invoice, error)
	ListWithItems(ctx context.Context, userID string) ([]*entity.Invoice, error)
	Get(ctx context.Context, userID string, id int64) (*entity.Invoice, error)
	UpdateHeader(ctx context.Context, userID string, inv *entity.Invoice) error
	Delete(ctx context.Context, userID string, id int64) error
}

type historyServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	itemRepo    port.ItemRepository
	logger      *zap.Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(
	invoiceRepo port.InvoiceRepository,
	itemRepo port.ItemRepository,
	logger *zap.Logger,
) HistoryService {
	return &historyServiceImpl{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		logger:      logger,
	}
}

// List returns the user's invoice headers, most recent date first.
func (s *historyServiceImpl) List(ctx context.Context, userID string) ([]*entity.Invoice, error) {
	return s.invoiceRepo.ListByUser(ctx, userID)
}

// ListWithItems returns the user's invoices with their line items loaded.
// Used by exports, where every row of every invoice is needed anyway.
func (s *historyServiceImpl) ListWithItems(ctx context.Context, userID string) ([]*entity.Invoice, error) {
	invoices, err := s.invoiceRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, inv := range invoices {
		items, err := s.itemRepo.GetByInvoiceID(ctx, inv.ID)
		if err != nil {
			return nil, err
		}
		inv.Items = items
	}

	return invoices, nil
}

// Get returns one owned invoice with its items.
func (s *historyServiceImpl) Get(ctx context.Context, userID string, id int64) (*entity.Invoice, error) {
	inv, err := s.invoiceRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInvoiceNotFound
	}

	items, err := s.itemRepo.GetByInvoiceID(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	return inv, nil
}

// UpdateHeader updates the editable header fields of an owned invoice.
func (s *historyServiceImpl) UpdateHeader(ctx context.Context, userID string, inv *entity.Invoice) error {
	if inv.TotalAmount < 0 {
		return fmt.Errorf("total_amount must not be negative")
	}

	existing, err := s.invoiceRepo.GetByID(ctx, userID, inv.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrInvoiceNotFound
	}

	if err := s.invoiceRepo.UpdateHeader(ctx, userID, inv); err != nil {
		return err
	}

	s.logger.Info("Invoice header updated",
		zap.Int64("invoice_id", inv.ID),
		zap.String("user_id", userID))
	return nil
}

// Delete removes an owned invoice and, through the schema, its items.
func (s *historyServiceImpl) Delete(ctx context.Context, userID string, id int64) error {
	existing, err := s.invoiceRepo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrInvoiceNotFound
	}

	if err := s.invoiceRepo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("Invoice deleted",
		zap.Int64("invoice_id", id),
		zap.String("user_id", userID))
	return nil
}
