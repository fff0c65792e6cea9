package invoicing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
)

// InvoiceFilter narrows invoice listings within a property
type InvoiceFilter struct {
	shared.Filter
	Period   *valueobject.Period
	Status   *InvoiceStatus
	TenantID *uuid.UUID
}

// InvoiceRepository persists invoices. bill_id and (property_id, sequence) are unique.
type InvoiceRepository interface {
	FindByID(ctx context.Context, propertyID, id uuid.UUID) (*Invoice, error)
	FindByIDForUpdate(ctx context.Context, propertyID, id uuid.UUID) (*Invoice, error)
	// FindByBillForUpdate returns the invoice for a bill, or shared.ErrNotFound
	FindByBillForUpdate(ctx context.Context, billID uuid.UUID) (*Invoice, error)
	FindByBillIDs(ctx context.Context, billIDs []uuid.UUID) ([]Invoice, error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)
	CountByProperty(ctx context.Context, propertyID uuid.UUID, filter InvoiceFilter) (int64, error)
	// FindOverdueCandidates returns open, unpaid invoices whose due date is before now
	FindOverdueCandidates(ctx context.Context, now time.Time, limit int) ([]Invoice, error)
	Create(ctx context.Context, inv *Invoice) error
	SaveWithLock(ctx context.Context, inv *Invoice) error
}
