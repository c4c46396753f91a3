// Package notification formats detected price increases into an alert
// email and hands it to the outbound transport. It runs after the
// ingestion transaction has committed and is never on the critical path
// of data durability.
package notification

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/sousbill/sousbill/internal/application/port"
	"github.com/sousbill/sousbill/internal/domain/entity"
	"go.uber.org/zap"
)

// PriceAlertNotifier implements port.AlertMailer.
type PriceAlertNotifier struct {
	transport port.EmailTransport
	logger    *zap.Logger
}

// NewPriceAlertNotifier creates a new price alert notifier
func NewPriceAlertNotifier(transport port.EmailTransport, logger *zap.Logger) *PriceAlertNotifier {
	return &PriceAlertNotifier{transport: transport, logger: logger}
}

// SendPriceAlerts renders one email listing every detected increase and
// dispatches it. Transport failure is returned to the caller, who logs
// and swallows it.
func (n *PriceAlertNotifier) SendPriceAlerts(ctx context.Context, to string, alerts []entity.PriceAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Price alert: %d products went up", len(alerts))
	body := buildAlertBody(alerts)

	if err := n.transport.Send(ctx, to, subject, body); err != nil {
		n.logger.Error("Failed to send price alert email",
			zap.String("to", to),
			zap.Int("alert_count", len(alerts)),
			zap.Error(err))
		return fmt.Errorf("send price alert email: %w", err)
	}

	n.logger.Info("Price alert email sent",
		zap.String("to", to),
		zap.Int("alert_count", len(alerts)))
	return nil
}

// buildAlertBody renders the HTML body listing product, previous price,
// new price and the absolute and percentage increase.
func buildAlertBody(alerts []entity.PriceAlert) string {
	var items strings.Builder
	for _, a := range alerts {
		items.WriteString(fmt.Sprintf(`
        <li style="margin-bottom: 10px; border-bottom: 1px solid #eee; padding-bottom: 5px;">
            <strong>%s</strong><br>
            Before: %.2f | Now: %.2f<br>
            <span style="color: red; font-weight: bold;">Increase: +%.1f%% (%.2f)</span>
        </li>`,
			html.EscapeString(a.Product),
			a.PreviousPrice,
			a.NewPrice,
			a.Percent(),
			a.Delta(),
		))
	}

	return fmt.Sprintf(`
    <h1>Price inflation detected</h1>
    <p>Some products on your latest invoice cost more than the last time you bought them:</p>
    <ul>%s
    </ul>
    <p>Consider reviewing your suppliers or adjusting your menu prices.</p>
    <br>
    <p><em>SousBill, your kitchen cost assistant</em></p>`, items.String())
}
