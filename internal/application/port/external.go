package port

import (
	"context"

	"github.com/sousbill/sousbill/internal/domain/entity"
)

// InvoiceExtractor turns a raw invoice document into a loosely structured
// candidate record. The result is untrusted: keys may be missing, values
// may have the wrong type, and a payload carrying an "error" key signals
// an extraction failure. Normalization handles all of that downstream.
type InvoiceExtractor interface {
	Extract(ctx context.Context, document []byte, mimeType string) (map[string]interface{}, error)
}

// EmailTransport sends a single HTML email. No retry contract; callers
// decide whether a failure matters.
type EmailTransport interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// AlertMailer formats and dispatches price-increase alerts to a user.
// Dispatch happens after the ingestion transaction has committed and is
// best-effort: a returned error is logged, never propagated to ingestion.
type AlertMailer interface {
	SendPriceAlerts(ctx context.Context, to string, alerts []entity.PriceAlert) error
}
