package service

import (
	"context"
	"fmt"

	"github.com/sousbill/sousbill/internal/application/port"
	"github.com/sousbill/sousbill/internal/domain/entity"
	"github.com/sousbill/sousbill/internal/invoice"
	"github.com/sousbill/sousbill/internal/storage"
	"go.uber.org/zap"
)

// ExtractionService runs one document through the extraction gateway and
// the normalizer. Nothing is persisted here: the canonical invoice is
// returned to the caller, who submits it for ingestion separately.
type ExtractionService interface {
	Analyze(ctx context.Context, document []byte, mimeType, filename string) (*entity.ExtractedInvoice, error)
}

type extractionServiceImpl struct {
	extractor  port.InvoiceExtractor
	normalizer *invoice.Normalizer
	documents  storage.DocumentStore
	logger     *zap.Logger
}

// NewExtractionService creates a new ExtractionService
func NewExtractionService(
	extractor port.InvoiceExtractor,
	normalizer *invoice.Normalizer,
	documents storage.DocumentStore,
	logger *zap.Logger,
) ExtractionService {
	return &extractionServiceImpl{
		extractor:  extractor,
		normalizer: normalizer,
		documents:  documents,
		logger:     logger,
	}
}

// Analyze stores the source document, extracts a candidate record from it
// and normalizes the result. A gateway failure aborts before any
// persistence is attempted.
func (s *extractionServiceImpl) Analyze(ctx context.Context, document []byte, mimeType, filename string) (*entity.ExtractedInvoice, error) {
	imageURL, err := s.documents.Save(filename, document)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	raw, err := s.extractor.Extract(ctx, document, mimeType)
	if err != nil {
		s.logger.Error("Extraction gateway failed",
			zap.String("mime_type", mimeType),
			zap.Error(err))
		return nil, &invoice.ExtractionError{Message: err.Error()}
	}

	inv, err := s.normalizer.Normalize(raw)
	if err != nil {
		return nil, err
	}

	inv.ImageURL = imageURL
	return inv, nil
}
