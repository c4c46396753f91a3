// Package resend implements the outbound email transport on the Resend
// API. No retry: the caller decides whether a lost email matters.
package resend

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/sousbill/sousbill/internal/application/port"
	"go.uber.org/zap"
)

// Transport implements port.EmailTransport.
type Transport struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewTransport creates a new Resend transport
func NewTransport(apiKey, from string, logger *zap.Logger) *Transport {
	return &Transport{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// Send sends a single HTML email.
func (t *Transport) Send(ctx context.Context, to, subject, htmlBody string) error {
	params := &resend.SendEmailRequest{
		From:    t.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := t.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send: %w", err)
	}

	t.logger.Debug("Email dispatched",
		zap.String("to", to),
		zap.String("message_id", sent.Id))
	return nil
}

var _ port.EmailTransport = (*Transport)(nil)
