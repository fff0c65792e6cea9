package property

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() NewPropertyInput {
	return NewPropertyInput{
		Name:         "Sunrise Apartments",
		Address:      "12 Ngong Road",
		PropertyType: "Residential",
		ServiceRate:  ServiceRate{Model: ServiceRatePercentage, Value: decimal.NewFromInt(10)},
		PaymentDetails: PaymentDetails{
			AccountName: "Sunrise Ltd", AccountNumber: "0011", Bank: "KCB", DeadlineDay: 5,
		},
		Utilities: Utilities{
			WaterMethod: WaterMethodMetered,
			WaterRate:   decimal.NewFromInt(250),
			GarbageFee:  decimal.NewFromInt(300),
		},
		UnitTypes: []UnitType{
			{Type: "1BR", Rent: decimal.NewFromInt(10000), Deposit: decimal.NewFromInt(10000), UnitIDs: []string{"A1", "A2"}},
			{Type: "2BR", Rent: decimal.NewFromInt(15000), Deposit: decimal.NewFromInt(15000), UnitIDs: []string{"B1"}},
		},
	}
}

// ==================== Creation ====================

func TestNewProperty(t *testing.T) {
	p, units, err := NewProperty(validInput())
	require.NoError(t, err)

	assert.Equal(t, "Sunrise Apartments", p.Name)
	assert.Equal(t, 1, p.Version)
	assert.Equal(t, int64(0), p.InvoiceSequence)
	require.Len(t, units, 3)
	for _, u := range units {
		assert.Equal(t, p.ID, u.PropertyID)
		assert.True(t, u.IsVacant())
	}
	assert.Equal(t, "B1", units[2].Code)
	assert.True(t, units[2].Rent.Equal(decimal.NewFromInt(15000)))
	require.Len(t, p.GetDomainEvents(), 1)
	assert.Equal(t, EventTypePropertyCreated, p.GetDomainEvents()[0].EventType())
}

func TestNewProperty_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *NewPropertyInput)
		code   string
	}{
		{"empty name", func(in *NewPropertyInput) { in.Name = "  " }, "INVALID_NAME"},
		{"bad water method", func(in *NewPropertyInput) { in.Utilities.WaterMethod = "Bucket" }, "INVALID_WATER_METHOD"},
		{"negative garbage", func(in *NewPropertyInput) { in.Utilities.GarbageFee = decimal.NewFromInt(-1) }, "INVALID_UTILITIES"},
		{"deadline out of range", func(in *NewPropertyInput) { in.PaymentDetails.DeadlineDay = 32 }, "INVALID_DEADLINE"},
		{"no unit types", func(in *NewPropertyInput) { in.UnitTypes = nil }, "INVALID_UNIT_TYPES"},
		{"duplicate unit", func(in *NewPropertyInput) { in.UnitTypes[1].UnitIDs = []string{"A1"} }, "DUPLICATE_UNIT"},
		{"bad service model", func(in *NewPropertyInput) { in.ServiceRate.Model = "tiered" }, "INVALID_SERVICE_RATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, _, err := NewProperty(in)
			require.Error(t, err)
			var de *shared.DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
		})
	}
}

// ==================== Settings ====================

func TestProperty_UpdateSettings(t *testing.T) {
	p, _, err := NewProperty(validInput())
	require.NoError(t, err)

	util := Utilities{WaterMethod: WaterMethodFixed, WaterRate: decimal.NewFromInt(500), GarbageFee: decimal.Zero}
	require.NoError(t, p.UpdateSettings(UpdateSettingsInput{Utilities: &util}))
	assert.False(t, p.IsMetered())
	assert.Equal(t, 2, p.Version)

	bad := PaymentDetails{DeadlineDay: -1}
	err = p.UpdateSettings(UpdateSettingsInput{PaymentDetails: &bad})
	assert.Error(t, err)
	assert.Equal(t, 5, p.PaymentDetails.DeadlineDay, "rejected update leaves settings untouched")
}

func TestProperty_NextInvoiceNumber(t *testing.T) {
	p, _, err := NewProperty(validInput())
	require.NoError(t, err)

	assert.Equal(t, int64(1), p.NextInvoiceNumber())
	assert.Equal(t, int64(2), p.NextInvoiceNumber())
	assert.Equal(t, int64(2), p.InvoiceSequence)
}

func TestProperty_AllocateInvoiceNumbers(t *testing.T) {
	p, _, err := NewProperty(validInput())
	require.NoError(t, err)
	p.InvoiceSequence = 41
	version := p.Version

	assert.Equal(t, []int64{42, 43, 44}, p.AllocateInvoiceNumbers(3))
	assert.Equal(t, version+1, p.Version, "a batch is one version bump")
	assert.Nil(t, p.AllocateInvoiceNumbers(0))
	assert.Equal(t, int64(44), p.InvoiceSequence)
}

func TestProperty_PaymentDeadline(t *testing.T) {
	p, _, err := NewProperty(validInput())
	require.NoError(t, err)

	deadline, ok := p.PaymentDeadline(valueobject.MustParsePeriod("2025-06"))
	require.True(t, ok)
	assert.Equal(t, 5, deadline.Day())

	p.PaymentDetails.DeadlineDay = 0
	_, ok = p.PaymentDeadline(valueobject.MustParsePeriod("2025-06"))
	assert.False(t, ok)
}

func TestServiceRate_FeeOn(t *testing.T) {
	pct := ServiceRate{Model: ServiceRatePercentage, Value: decimal.NewFromInt(10)}
	assert.True(t, pct.FeeOn(decimal.NewFromInt(25000)).Equal(decimal.NewFromInt(2500)))

	fixed := ServiceRate{Model: ServiceRateFixed, Value: decimal.NewFromInt(3000)}
	assert.True(t, fixed.FeeOn(decimal.NewFromInt(25000)).Equal(decimal.NewFromInt(3000)))

	assert.True(t, ServiceRate{}.FeeOn(decimal.NewFromInt(100)).IsZero())
}

// ==================== Units ====================

func TestUnit_OccupyAndRelease(t *testing.T) {
	u := NewUnit(uuid.New(), "A1", UnitType{Type: "1BR", Rent: decimal.NewFromInt(10000)})
	tenantID := uuid.New()

	require.NoError(t, u.Occupy(tenantID))
	assert.Equal(t, UnitStatusOccupied, u.Status)
	assert.Equal(t, tenantID, *u.TenantID)

	err := u.Occupy(uuid.New())
	assert.True(t, errors.Is(err, shared.ErrUnitNotVacant))

	assert.True(t, u.Release())
	assert.True(t, u.IsVacant())
	assert.Nil(t, u.TenantID)
	assert.False(t, u.Release(), "second release is a no-op")
}
