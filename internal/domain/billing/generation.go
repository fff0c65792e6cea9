package billing

import (
	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
)

// GenerationInput is the snapshot the engine bills from
type GenerationInput struct {
	Property *property.Property
	Period   valueobject.Period
	// Tenants are the property's active tenants
	Tenants []occupancy.Tenant
	// Readings holds each unit's readings oldest first, keyed by unit id
	Readings map[string][]metering.MeterReading
	// PriorBills holds each tenant's most recent bill before Period
	PriorBills map[uuid.UUID]*Bill
}

// GenerateBills builds one bill per tenant occupying a unit during the
// period. Tenants whose lease starts after the period are skipped; a lease
// starting mid-period is billed for the full period.
func GenerateBills(in GenerationInput) ([]*Bill, error) {
	bills := make([]*Bill, 0, len(in.Tenants))
	for i := range in.Tenants {
		t := &in.Tenants[i]
		if !t.IsActive() || t.LeaseStart.After(in.Period.End()) {
			continue
		}

		water := metering.BillableCharge(in.Property.Utilities, tenancyReadings(in.Readings[t.UnitID], t), in.Period)
		bill, err := NewBill(BillInput{
			PropertyID: in.Property.ID,
			TenantID:   t.ID,
			UnitID:     t.UnitID,
			Period:     in.Period,
			Rent:       t.Rent,
			Water:      water,
			GarbageFee: in.Property.Utilities.GarbageFee,
			Carry:      ResolveCarryForward(in.PriorBills[t.ID]),
		})
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

// tenancyReadings keeps the readings taken during this tenant's occupancy,
// so a previous occupant's consumption never lands on the new tenant.
func tenancyReadings(readings []metering.MeterReading, t *occupancy.Tenant) []metering.MeterReading {
	out := make([]metering.MeterReading, 0, len(readings))
	for _, r := range readings {
		if r.TenantID != nil && *r.TenantID == t.ID {
			out = append(out, r)
		}
	}
	return out
}
