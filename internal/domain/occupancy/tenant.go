package occupancy

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TenantStatus is the lifecycle state of a tenancy
type TenantStatus string

const (
	TenantStatusActive  TenantStatus = "active"
	TenantStatusVacated TenantStatus = "vacated"
)

// IsValid checks if the status is known
func (s TenantStatus) IsValid() bool {
	return s == TenantStatusActive || s == TenantStatusVacated
}

// String returns the string representation of TenantStatus
func (s TenantStatus) String() string {
	return string(s)
}

// Tenant is a renter bound to one unit of one property at a time.
// Rent and Deposit are the agreed terms and may differ from the unit type.
type Tenant struct {
	shared.PropertyAggregateRoot
	UnitID     string
	Name       string
	Phone      string
	Email      string
	IDNumber   string
	LeaseStart time.Time
	Rent       decimal.Decimal
	Deposit    decimal.Decimal
	Status     TenantStatus
	VacatedAt  *time.Time
}

// AssignInput holds the renter details and optional term overrides
type AssignInput struct {
	Name            string
	Phone           string
	Email           string
	IDNumber        string
	LeaseStart      time.Time
	RentOverride    *decimal.Decimal
	DepositOverride *decimal.Decimal
}

// Assign creates a tenant in the given unit and marks the unit occupied.
// The unit must be vacant; on failure neither the unit nor a tenant is produced.
func Assign(unit *property.Unit, in AssignInput) (*Tenant, error) {
	if unit == nil {
		return nil, shared.ErrUnitNotFound
	}
	if !unit.IsVacant() {
		return nil, property.UnitNotVacant(unit.Code)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if in.LeaseStart.IsZero() {
		return nil, shared.NewDomainError("INVALID_LEASE_START", "Lease start date is required")
	}

	rent := unit.Rent
	if in.RentOverride != nil {
		rent = *in.RentOverride
	}
	deposit := unit.Deposit
	if in.DepositOverride != nil {
		deposit = *in.DepositOverride
	}
	if rent.IsNegative() || deposit.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidAmount, "Rent and deposit cannot be negative")
	}

	t := &Tenant{
		PropertyAggregateRoot: shared.NewPropertyAggregateRoot(unit.PropertyID),
		UnitID:                unit.Code,
		Name:                  name,
		Phone:                 strings.TrimSpace(in.Phone),
		Email:                 strings.TrimSpace(in.Email),
		IDNumber:              strings.TrimSpace(in.IDNumber),
		LeaseStart:            in.LeaseStart,
		Rent:                  rent,
		Deposit:               deposit,
		Status:                TenantStatusActive,
	}
	if err := unit.Occupy(t.ID); err != nil {
		return nil, err
	}

	t.AddDomainEvent(NewTenantAssignedEvent(t))
	return t, nil
}

// IsActive reports whether the tenancy is ongoing
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Vacate ends the tenancy and releases the unit. Outstanding balances are
// kept on the tenant's bills. Returns false if the tenant had already vacated.
func (t *Tenant) Vacate(unit *property.Unit, at time.Time) bool {
	if !t.IsActive() {
		return false
	}
	if unit != nil && unit.TenantID != nil && *unit.TenantID == t.ID {
		unit.Release()
	}
	t.Status = TenantStatusVacated
	t.VacatedAt = &at
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	t.AddDomainEvent(NewTenantVacatedEvent(t))
	return true
}

// Transfer moves an active tenant to another vacant unit of the same property.
// The tenant identity is kept so carried balances follow the renter.
func (t *Tenant) Transfer(from, to *property.Unit) error {
	if !t.IsActive() {
		return shared.NewDomainError("TENANT_NOT_ACTIVE", fmt.Sprintf("Tenant %s has vacated", t.ID))
	}
	if to == nil {
		return shared.ErrUnitNotFound
	}
	if to.PropertyID != t.PropertyID {
		return property.UnitNotFound(to.Code)
	}
	if to.Code == t.UnitID {
		return shared.NewDomainError("SAME_UNIT", "Tenant already occupies this unit")
	}
	if err := to.Occupy(t.ID); err != nil {
		return err
	}
	if from != nil && from.TenantID != nil && *from.TenantID == t.ID {
		from.Release()
	}
	previous := t.UnitID
	t.UnitID = to.Code
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	t.AddDomainEvent(NewTenantTransferredEvent(t, previous))
	return nil
}

// TenantNotFound builds the not-found error for a tenant id
func TenantNotFound(id uuid.UUID) error {
	return shared.NewDomainError(shared.CodeTenantNotFound, fmt.Sprintf("Tenant %s not found", id))
}

// OccupiedUnit pairs an occupied unit with its active tenant
type OccupiedUnit struct {
	Unit   property.Unit
	Tenant Tenant
}
