package payment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentFilter narrows payment listings within a property
type PaymentFilter struct {
	shared.Filter
	Period   *valueobject.Period
	TenantID *uuid.UUID
	Type     *PaymentType
	From     *time.Time
	To       *time.Time
}

// PaymentRepository persists payments. Payments are insert-only.
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID, filter PaymentFilter) ([]Payment, error)
	CountByProperty(ctx context.Context, propertyID uuid.UUID, filter PaymentFilter) (int64, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Payment, error)
	// SumByProperty totals payments of a type; From/To/Period in the filter apply
	SumByProperty(ctx context.Context, propertyID uuid.UUID, filter PaymentFilter) (decimal.Decimal, error)
	Create(ctx context.Context, p *Payment) error
}
