package invoicing

import (
	"context"
	"time"

	"github.com/rentledger/backend/internal/domain/invoicing"
)

// Delivery is one invoice handed to a delivery channel
type Delivery struct {
	Channel   invoicing.Channel
	Recipient string
	Document  invoicing.Document
}

// Notifier sends invoices to tenants. The ledger only records the outcome.
type Notifier interface {
	Deliver(ctx context.Context, d Delivery) error
}

// DocumentRenderer turns an invoice document into a PDF
type DocumentRenderer interface {
	RenderInvoice(ctx context.Context, doc invoicing.Document) ([]byte, error)
}

// DocumentStore keeps rendered invoices and hands out time-limited links
type DocumentStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
