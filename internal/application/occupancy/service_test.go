package occupancy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence"
	"github.com/rentledger/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	svc      *TenantService
	pub      *recordingPublisher
	property *property.Property
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func setup(t *testing.T, method property.WaterMethod) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	p, units, err := property.NewProperty(property.NewPropertyInput{
		Name:      "Riverside Court",
		Utilities: property.Utilities{WaterMethod: method, WaterRate: dec(150), GarbageFee: dec(200)},
		UnitTypes: []property.UnitType{
			{Type: "1BR", Rent: dec(15000), Deposit: dec(15000), UnitIDs: []string{"A1", "A2", "A3"}},
		},
	})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, persistence.NewGormPropertyRepository(db).Save(ctx, p))
	require.NoError(t, persistence.NewGormUnitRepository(db).SaveBatch(ctx, units))

	pub := &recordingPublisher{}
	svc := NewTenantService(persistence.NewGormTransactionScope(db), persistence.NewGormRepositories(db), pub, zap.NewNop())
	return &fixture{db: db, svc: svc, pub: pub, property: p}
}

func (f *fixture) assign(t *testing.T, unit string, reading *decimal.Decimal) *TenantResponse {
	t.Helper()
	resp, err := f.svc.AssignTenant(context.Background(), AssignTenantRequest{
		PropertyID:          f.property.ID,
		UnitID:              unit,
		Name:                "Jane Wanjiru",
		Phone:               "0700000001",
		LeaseStart:          time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		InitialWaterReading: reading,
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) unit(t *testing.T, code string) *property.Unit {
	t.Helper()
	u, err := persistence.NewGormUnitRepository(f.db).FindByCode(context.Background(), f.property.ID, code)
	require.NoError(t, err)
	return u
}

func TestTenantService_AssignTenant(t *testing.T) {
	ctx := context.Background()

	t.Run("metered property stores baseline reading", func(t *testing.T) {
		f := setup(t, property.WaterMethodMetered)

		tenant := f.assign(t, "A1", decPtr(120))
		assert.Equal(t, "A1", tenant.UnitID)
		assert.True(t, tenant.Rent.Equal(dec(15000)))
		assert.Equal(t, "active", tenant.Status)

		u := f.unit(t, "A1")
		assert.Equal(t, property.UnitStatusOccupied, u.Status)
		require.NotNil(t, u.TenantID)
		assert.Equal(t, tenant.ID, *u.TenantID)

		latest, err := persistence.NewGormMeterReadingRepository(f.db).Latest(ctx, f.property.ID, "A1")
		require.NoError(t, err)
		assert.True(t, latest.Baseline)
		assert.True(t, latest.Value.Equal(dec(120)))
		require.NotNil(t, latest.TenantID)
		assert.Equal(t, tenant.ID, *latest.TenantID)

		assert.Equal(t, []string{occupancy.EventTypeTenantAssigned, metering.EventTypeMeterReadingRecorded}, f.pub.types())
	})

	t.Run("metered property requires initial reading", func(t *testing.T) {
		f := setup(t, property.WaterMethodMetered)
		_, err := f.svc.AssignTenant(ctx, AssignTenantRequest{
			PropertyID: f.property.ID,
			UnitID:     "A1",
			Name:       "Jane",
			LeaseStart: time.Now(),
		})
		assert.ErrorIs(t, err, ErrInitialReadingRequired)
		assert.True(t, f.unit(t, "A1").IsVacant())
	})

	t.Run("rent override", func(t *testing.T) {
		f := setup(t, property.WaterMethodFixed)
		resp, err := f.svc.AssignTenant(ctx, AssignTenantRequest{
			PropertyID: f.property.ID,
			UnitID:     "A2",
			Name:       "Otieno",
			LeaseStart: time.Now(),
			Rent:       decPtr(14000),
		})
		require.NoError(t, err)
		assert.True(t, resp.Rent.Equal(dec(14000)))
		assert.True(t, resp.Deposit.Equal(dec(15000)))
	})

	t.Run("occupied unit creates no tenant", func(t *testing.T) {
		f := setup(t, property.WaterMethodFixed)
		f.assign(t, "A1", nil)

		_, err := f.svc.AssignTenant(ctx, AssignTenantRequest{
			PropertyID: f.property.ID,
			UnitID:     "A1",
			Name:       "Second",
			LeaseStart: time.Now(),
		})
		assert.ErrorIs(t, err, shared.ErrUnitNotVacant)

		list, err := f.svc.ListTenants(ctx, ListTenantsRequest{PropertyID: &f.property.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), list.Total)
	})

	t.Run("unknown unit", func(t *testing.T) {
		f := setup(t, property.WaterMethodFixed)
		_, err := f.svc.AssignTenant(ctx, AssignTenantRequest{
			PropertyID: f.property.ID,
			UnitID:     "Z9",
			Name:       "Nobody",
			LeaseStart: time.Now(),
		})
		assert.ErrorIs(t, err, shared.ErrUnitNotFound)
	})

	t.Run("unknown property", func(t *testing.T) {
		f := setup(t, property.WaterMethodFixed)
		_, err := f.svc.AssignTenant(ctx, AssignTenantRequest{
			PropertyID: uuid.New(),
			UnitID:     "A1",
			Name:       "Nobody",
			LeaseStart: time.Now(),
		})
		assert.ErrorIs(t, err, shared.ErrPropertyNotFound)
	})
}

func TestTenantService_VacateTenant(t *testing.T) {
	f := setup(t, property.WaterMethodFixed)
	ctx := context.Background()
	tenant := f.assign(t, "A1", nil)

	vacated, err := f.svc.VacateTenant(ctx, tenant.ID, VacateTenantRequest{})
	require.NoError(t, err)
	assert.Equal(t, "vacated", vacated.Status)
	require.NotNil(t, vacated.VacatedAt)
	assert.True(t, f.unit(t, "A1").IsVacant())

	again, err := f.svc.VacateTenant(ctx, tenant.ID, VacateTenantRequest{})
	require.NoError(t, err, "vacating twice is a no-op")
	assert.Equal(t, vacated.Version, again.Version)

	// unit can take a new tenant
	f.assign(t, "A1", nil)

	_, err = f.svc.VacateTenant(ctx, uuid.New(), VacateTenantRequest{})
	assert.ErrorIs(t, err, shared.ErrTenantNotFound)
}

func TestTenantService_TransferTenant(t *testing.T) {
	ctx := context.Background()

	t.Run("moves tenant and keeps identity", func(t *testing.T) {
		f := setup(t, property.WaterMethodMetered)
		tenant := f.assign(t, "A1", decPtr(100))

		moved, err := f.svc.TransferTenant(ctx, tenant.ID, TransferTenantRequest{
			UnitID:              "A3",
			Date:                ptrTime(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)),
			InitialWaterReading: decPtr(40),
		})
		require.NoError(t, err)
		assert.Equal(t, tenant.ID, moved.ID)
		assert.Equal(t, "A3", moved.UnitID)

		assert.True(t, f.unit(t, "A1").IsVacant())
		assert.Equal(t, property.UnitStatusOccupied, f.unit(t, "A3").Status)

		latest, err := persistence.NewGormMeterReadingRepository(f.db).Latest(ctx, f.property.ID, "A3")
		require.NoError(t, err)
		assert.True(t, latest.Baseline)
	})

	t.Run("occupied target", func(t *testing.T) {
		f := setup(t, property.WaterMethodFixed)
		first := f.assign(t, "A1", nil)
		f.assign(t, "A2", nil)

		_, err := f.svc.TransferTenant(ctx, first.ID, TransferTenantRequest{UnitID: "A2"})
		assert.ErrorIs(t, err, shared.ErrUnitNotVacant)
		assert.Equal(t, property.UnitStatusOccupied, f.unit(t, "A1").Status)
	})

	t.Run("same unit", func(t *testing.T) {
		f := setup(t, property.WaterMethodFixed)
		tenant := f.assign(t, "A1", nil)

		_, err := f.svc.TransferTenant(ctx, tenant.ID, TransferTenantRequest{UnitID: "A1"})
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "SAME_UNIT", de.Code)
	})
}

func TestTenantService_UnitQueries(t *testing.T) {
	f := setup(t, property.WaterMethodFixed)
	ctx := context.Background()
	tenant := f.assign(t, "A2", nil)

	units, err := f.svc.ListUnits(ctx, f.property.ID, "")
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.Equal(t, "A2", units[1].Code)
	require.NotNil(t, units[1].Tenant)
	assert.Equal(t, tenant.ID, units[1].Tenant.ID)

	vacant, err := f.svc.ListUnits(ctx, f.property.ID, "vacant")
	require.NoError(t, err)
	assert.Len(t, vacant, 2)

	_, err = f.svc.ListUnits(ctx, f.property.ID, "demolished")
	assert.ErrorIs(t, err, shared.NewDomainError(shared.CodeInvalidStatus, ""))

	free, err := f.svc.VacantUnits(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Len(t, free, 2)

	occupied, err := f.svc.OccupiedUnits(ctx, f.property.ID)
	require.NoError(t, err)
	require.Len(t, occupied, 1)
	assert.Equal(t, "A2", occupied[0].Unit.Code)
	assert.Equal(t, tenant.ID, occupied[0].Tenant.ID)
}

func ptrTime(t time.Time) *time.Time { return &t }
