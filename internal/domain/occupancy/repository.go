package occupancy

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
)

// TenantFilter narrows tenant listings
type TenantFilter struct {
	shared.Filter
	PropertyID *uuid.UUID
	Status     *TenantStatus
}

// TenantRepository persists tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Tenant, error)
	// FindActiveByProperty returns active tenants ordered by unit code
	FindActiveByProperty(ctx context.Context, propertyID uuid.UUID) ([]Tenant, error)
	FindAll(ctx context.Context, filter TenantFilter) ([]Tenant, error)
	Count(ctx context.Context, filter TenantFilter) (int64, error)
	Save(ctx context.Context, t *Tenant) error
	SaveWithLock(ctx context.Context, t *Tenant) error
}
