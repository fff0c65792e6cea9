package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
)

// BillRepository persists bills. (tenant, unit, period) is unique.
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	// FindForPeriodForUpdate loads the bill a payment applies to, holding a row lock
	FindForPeriodForUpdate(ctx context.Context, tenantID uuid.UUID, unitID string, period valueobject.Period) (*Bill, error)
	// FindLatestBefore returns the tenant's most recent bill with a period
	// earlier than period, ordered by period. Returns shared.ErrNotFound if none.
	FindLatestBefore(ctx context.Context, tenantID uuid.UUID, period valueobject.Period) (*Bill, error)
	FindByPropertyAndPeriod(ctx context.Context, propertyID uuid.UUID, period valueobject.Period) ([]Bill, error)
	// FindByTenant lists the tenant's bills in ledger order, oldest period first
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Bill, error)
	// FindLatestByProperty returns each tenant's most recent bill in the property
	FindLatestByProperty(ctx context.Context, propertyID uuid.UUID) ([]Bill, error)
	CountByPropertyAndPeriod(ctx context.Context, propertyID uuid.UUID, period valueobject.Period) (int64, error)
	// CreateBatch inserts new bills; a duplicate (tenant, unit, period) fails the whole batch
	CreateBatch(ctx context.Context, bills []*Bill) error
	SaveWithLock(ctx context.Context, b *Bill) error
}
