package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sousbill/sousbill/internal/application/port"
	"github.com/sousbill/sousbill/internal/domain/entity"
	"go.uber.org/zap"
)

// ErrCouldNotSave is the generic persistence failure surfaced to callers.
// The underlying cause is logged, not leaked; retry is a manual re-submit.
var ErrCouldNotSave = errors.New("could not save invoice")

// IngestService coordinates the ingestion of one normalized invoice:
// persist the header, resolve price history and persist each item inside
// one transaction, then dispatch inflation alerts best-effort.
type IngestService interface {
	Ingest(ctx context.Context, userID, userEmail string, inv *entity.ExtractedInvoice) (int64, []entity.PriceAlert, error)
}

type ingestServiceImpl struct {
	invoiceRepo port.InvoiceRepository
	itemRepo    port.ItemRepository
	txManager   port.TransactionManager
	alertMailer port.AlertMailer
	logger      *zap.Logger
}

// NewIngestService creates a new IngestService
func NewIngestService(
	invoiceRepo port.InvoiceRepository,
	itemRepo port.ItemRepository,
	txManager port.TransactionManager,
	alertMailer port.AlertMailer,
	logger *zap.Logger,
) IngestService {
	return &ingestServiceImpl{
		invoiceRepo: invoiceRepo,
		itemRepo:    itemRepo,
		txManager:   txManager,
		alertMailer: alertMailer,
		logger:      logger,
	}
}

// Ingest persists the invoice and its items atomically and returns the
// assigned invoice id plus the detected price-increase alerts in item
// order. Alert dispatch happens after the commit and never fails the
// ingestion.
func (s *ingestServiceImpl) Ingest(ctx context.Context, userID, userEmail string, inv *entity.ExtractedInvoice) (int64, []entity.PriceAlert, error) {
	header := &entity.Invoice{
		UserID:      userID,
		Vendor:      inv.Vendor,
		Date:        inv.Date,
		TotalAmount: inv.TotalAmount,
		Currency:    inv.Currency,
		ImageURL:    inv.ImageURL,
	}

	var alerts []entity.PriceAlert

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.invoiceRepo.Create(txCtx, header); err != nil {
			return fmt.Errorf("create header: %w", err)
		}

		for _, it := range inv.Items {
			// History must be resolved before the item's own row exists,
			// otherwise a same-date purchase would compare against itself.
			prior, found, err := s.itemRepo.LatestUnitPrice(txCtx, userID, it.Description, inv.Date)
			if err != nil {
				return fmt.Errorf("resolve price history: %w", err)
			}
			if found && it.UnitPrice > prior {
				alerts = append(alerts, entity.PriceAlert{
					Product:       it.Description,
					PreviousPrice: prior,
					NewPrice:      it.UnitPrice,
				})
			}

			item := &entity.InvoiceItem{
				InvoiceID:   header.ID,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TotalPrice:  it.TotalPrice,
			}
			if err := s.itemRepo.Create(txCtx, item); err != nil {
				return fmt.Errorf("create item %q: %w", it.Description, err)
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error("Invoice ingestion rolled back",
			zap.String("user_id", userID),
			zap.String("vendor", inv.Vendor),
			zap.Error(err))
		return 0, nil, ErrCouldNotSave
	}

	s.logger.Info("Invoice ingested",
		zap.Int64("invoice_id", header.ID),
		zap.String("user_id", userID),
		zap.Int("item_count", len(inv.Items)),
		zap.Int("alert_count", len(alerts)))

	if len(alerts) > 0 {
		if err := s.alertMailer.SendPriceAlerts(ctx, userEmail, alerts); err != nil {
			// The invoice is already committed; a lost alert email is the
			// accepted cost of keeping dispatch out of the transaction.
			s.logger.Warn("Failed to dispatch price alerts",
				zap.Int64("invoice_id", header.ID),
				zap.String("to", userEmail),
				zap.Error(err))
		}
	}

	return header.ID, alerts, nil
}
