package property

import (
	"context"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
)

// PropertyRepository persists Property aggregates
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	// FindByIDForUpdate loads the property holding a row lock until the
	// surrounding transaction ends. Used to serialize per-property work.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Property, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Property, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, p *Property) error
	// SaveWithLock saves with an optimistic version check
	SaveWithLock(ctx context.Context, p *Property) error
}

// UnitRepository persists units
type UnitRepository interface {
	FindByCode(ctx context.Context, propertyID uuid.UUID, code string) (*Unit, error)
	FindByCodeForUpdate(ctx context.Context, propertyID uuid.UUID, code string) (*Unit, error)
	// FindByProperty lists units ordered by code; a nil status returns all.
	FindByProperty(ctx context.Context, propertyID uuid.UUID, status *UnitStatus) ([]Unit, error)
	CountByStatus(ctx context.Context, propertyID uuid.UUID) (map[UnitStatus]int64, error)
	SaveBatch(ctx context.Context, units []*Unit) error
	SaveWithLock(ctx context.Context, u *Unit) error
}
