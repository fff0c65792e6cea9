package property

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// UnitStatus is the occupancy state of a unit
type UnitStatus string

const (
	UnitStatusVacant   UnitStatus = "vacant"
	UnitStatusOccupied UnitStatus = "occupied"
)

// IsValid checks if the status is known
func (s UnitStatus) IsValid() bool {
	return s == UnitStatusVacant || s == UnitStatusOccupied
}

// String returns the string representation of UnitStatus
func (s UnitStatus) String() string {
	return string(s)
}

// Unit is a rentable unit inside a property. Code is the unit identifier
// operators use ("A1", "B12") and is unique within the property.
type Unit struct {
	shared.BaseAggregateRoot
	PropertyID uuid.UUID
	Code       string
	UnitType   string
	Rent       decimal.Decimal
	Deposit    decimal.Decimal
	Status     UnitStatus
	TenantID   *uuid.UUID
}

// NewUnit creates a vacant unit of the given type
func NewUnit(propertyID uuid.UUID, code string, ut UnitType) *Unit {
	return &Unit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PropertyID:        propertyID,
		Code:              code,
		UnitType:          ut.Type,
		Rent:              ut.Rent,
		Deposit:           ut.Deposit,
		Status:            UnitStatusVacant,
	}
}

// IsVacant reports whether the unit can take a new tenant
func (u *Unit) IsVacant() bool {
	return u.Status == UnitStatusVacant
}

// Occupy binds the unit to a tenant
func (u *Unit) Occupy(tenantID uuid.UUID) error {
	if !u.IsVacant() {
		return UnitNotVacant(u.Code)
	}
	u.Status = UnitStatusOccupied
	u.TenantID = &tenantID
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return nil
}

// Release returns the unit to vacant. Releasing a vacant unit is a no-op.
func (u *Unit) Release() bool {
	if u.IsVacant() {
		return false
	}
	u.Status = UnitStatusVacant
	u.TenantID = nil
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
	return true
}

// UnitNotVacant builds the error for assigning into an occupied unit
func UnitNotVacant(code string) error {
	return shared.NewDomainError(shared.CodeUnitNotVacant, fmt.Sprintf("Unit %s is already occupied", code))
}

// UnitNotFound builds the error for an unknown unit code
func UnitNotFound(code string) error {
	return shared.NewDomainError(shared.CodeUnitNotFound, fmt.Sprintf("Unit %s not found in property", code))
}
