// Package notification delivers invoices to tenants.
package notification

import (
	"context"
	"fmt"
	"strings"

	appinvoicing "github.com/rentledger/backend/internal/application/invoicing"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"go.uber.org/zap"
)

// LogNotifier records deliveries in the log instead of sending them. It stands
// in for an email or WhatsApp gateway.
type LogNotifier struct {
	logger   *zap.Logger
	channels map[invoicing.Channel]bool
}

// NewLogNotifier creates a notifier accepting the given channels, or every
// channel when none are given
func NewLogNotifier(logger *zap.Logger, channels ...invoicing.Channel) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(channels) == 0 {
		channels = []invoicing.Channel{invoicing.ChannelEmail, invoicing.ChannelWhatsApp}
	}
	allowed := make(map[invoicing.Channel]bool, len(channels))
	for _, c := range channels {
		allowed[c] = true
	}
	return &LogNotifier{logger: logger.Named("notifier"), channels: allowed}
}

// Deliver logs the delivery
func (n *LogNotifier) Deliver(ctx context.Context, d appinvoicing.Delivery) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !n.channels[d.Channel] {
		return fmt.Errorf("channel %q is not enabled", d.Channel)
	}
	if strings.TrimSpace(d.Recipient) == "" {
		return fmt.Errorf("recipient is empty")
	}
	n.logger.Info("invoice delivered",
		zap.String("channel", d.Channel.String()),
		zap.String("recipient", maskRecipient(d.Recipient)),
		zap.String("invoice_number", d.Document.InvoiceNumber),
		zap.String("period", d.Document.Period),
		zap.String("balance", d.Document.Balance.StringFixed(2)),
	)
	return nil
}

// maskRecipient keeps the first two characters and the domain of an email,
// or the last three digits of a phone number
func maskRecipient(r string) string {
	if at := strings.LastIndex(r, "@"); at > 0 {
		local := r[:at]
		if len(local) > 2 {
			local = local[:2]
		}
		return local + "***" + r[at:]
	}
	if len(r) <= 3 {
		return "***"
	}
	return strings.Repeat("*", len(r)-3) + r[len(r)-3:]
}

var _ appinvoicing.Notifier = (*LogNotifier)(nil)
