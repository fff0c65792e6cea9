package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	appbilling "github.com/rentledger/backend/internal/application/billing"
	appinvoicing "github.com/rentledger/backend/internal/application/invoicing"
	apppayment "github.com/rentledger/backend/internal/application/payment"
	"github.com/rentledger/backend/internal/domain/expense"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/infrastructure/persistence"
	"github.com/rentledger/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	svc      *ReportService
	property *property.Property
	tenants  map[string]*occupancy.Tenant
}

// setup: three units, two occupied, June billed at 10000 each.
// U1 pays 10000 rent and a 5000 deposit, U2 pays 4000. One 1500 expense in June.
func setup(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	p, units, err := property.NewProperty(property.NewPropertyInput{
		Name:        "Sunset Villas",
		ServiceRate: property.ServiceRate{Model: property.ServiceRatePercentage, Value: dec(10)},
		Utilities:   property.Utilities{WaterMethod: property.WaterMethodFixed, WaterRate: dec(600), GarbageFee: dec(400)},
		UnitTypes:   []property.UnitType{{Type: "1BR", Rent: dec(9000), Deposit: dec(9000), UnitIDs: []string{"U1", "U2", "U3"}}},
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormPropertyRepository(db).Save(ctx, p))

	f := &fixture{property: p, tenants: make(map[string]*occupancy.Tenant)}
	for _, u := range units[:2] {
		tenant, err := occupancy.Assign(u, occupancy.AssignInput{Name: "Tenant " + u.Code, LeaseStart: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)})
		require.NoError(t, err)
		require.NoError(t, persistence.NewGormTenantRepository(db).Save(ctx, tenant))
		f.tenants[u.Code] = tenant
	}
	require.NoError(t, persistence.NewGormUnitRepository(db).SaveBatch(ctx, units))

	scope := persistence.NewGormTransactionScope(db)
	repos := persistence.NewGormRepositories(db)
	invoices := appinvoicing.NewInvoiceService(scope, repos, nil, zap.NewNop(), appinvoicing.Config{})
	_, err = appbilling.NewBillingService(scope, repos, nil, zap.NewNop(), invoices, true).GenerateBills(ctx, p.ID, "2025-06", false)
	require.NoError(t, err)

	payments := apppayment.NewPaymentService(scope, repos, nil, zap.NewNop(), nil, 0)
	for _, req := range []apppayment.RecordPaymentRequest{
		{TenantID: f.tenants["U1"].ID, Period: "2025-06", Amount: dec(10000)},
		{TenantID: f.tenants["U1"].ID, Period: "2025-06", Amount: dec(5000), Type: "Deposit"},
		{TenantID: f.tenants["U2"].ID, Period: "2025-06", Amount: dec(4000)},
	} {
		_, err := payments.RecordPayment(ctx, p.ID, req, "")
		require.NoError(t, err)
	}

	e, err := expense.NewExpense(p.ID, dec(1500), "Gate repair", expense.CategoryMaintenance, time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repos.Expenses().Create(ctx, e))
	old, err := expense.NewExpense(p.ID, dec(700), "Paint", expense.CategoryMaintenance, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, repos.Expenses().Create(ctx, old))

	f.svc = NewReportService(repos, zap.NewNop())
	return f
}

func TestReportService_Occupancy(t *testing.T) {
	f := setup(t)

	r, err := f.svc.Occupancy(context.Background(), f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), r.Total)
	assert.Equal(t, int64(2), r.Occupied)
	assert.Equal(t, int64(1), r.Vacant)
	assert.Equal(t, "66.67", r.Rate.StringFixed(2))

	_, err = f.svc.Occupancy(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrPropertyNotFound)
}

func TestReportService_Balances(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	r, err := f.svc.Balances(ctx, f.property.ID, BalancesRequest{})
	require.NoError(t, err)
	require.Len(t, r.Items, 2)
	assert.Equal(t, "U1", r.Items[0].UnitID)
	assert.Equal(t, StandingSettled, r.Items[0].Standing)
	assert.Equal(t, StandingOwing, r.Items[1].Standing)
	assert.True(t, r.Items[1].Balance.Equal(dec(6000)))
	assert.Equal(t, "2025-06", r.Items[1].Period)
	assert.True(t, r.TotalOutstanding.Equal(dec(6000)))

	owing, err := f.svc.Balances(ctx, f.property.ID, BalancesRequest{Standing: StandingOwing})
	require.NoError(t, err)
	require.Len(t, owing.Items, 1)

	floor := dec(7000)
	none, err := f.svc.Balances(ctx, f.property.ID, BalancesRequest{MinBalance: &floor})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
}

func TestReportService_Financials(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	june, err := f.svc.Financials(ctx, f.property.ID, "2025-06")
	require.NoError(t, err)
	assert.True(t, june.RentCollected.Equal(dec(14000)))
	assert.True(t, june.DepositsCollected.Equal(dec(5000)))
	assert.True(t, june.Expenses.Equal(dec(1500)))
	assert.True(t, june.ServiceFee.Equal(dec(1400)), "ten percent of rent collected")
	assert.True(t, june.NetToLandlord.Equal(dec(14000-1500-1400)))

	all, err := f.svc.Financials(ctx, f.property.ID, "")
	require.NoError(t, err)
	assert.Empty(t, all.Period)
	assert.True(t, all.Expenses.Equal(dec(2200)))

	_, err = f.svc.Financials(ctx, f.property.ID, "2025-13")
	assert.ErrorIs(t, err, shared.NewDomainError(shared.CodeInvalidPeriod, ""))
}

func TestReportService_Utilities(t *testing.T) {
	f := setup(t)

	r, err := f.svc.Utilities(context.Background(), f.property.ID, "2025-06")
	require.NoError(t, err)
	assert.Equal(t, "Fixed", r.WaterMethod)
	require.Len(t, r.Units, 2)
	assert.Nil(t, r.Units[0].Consumption, "fixed billing has no meter detail")
	assert.True(t, r.TotalCharge.Equal(dec(1200)))
	assert.True(t, r.TotalConsumption.IsZero())
}

func TestReportService_BillingStats(t *testing.T) {
	f := setup(t)

	r, err := f.svc.BillingStats(context.Background(), f.property.ID, "2025-06")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Bills)
	assert.Equal(t, int64(1), r.InvoicesByStatus["Paid"])
	assert.Equal(t, int64(1), r.InvoicesByStatus["PartiallyPaid"])
	assert.Equal(t, int64(0), r.InvoicesByStatus["Overdue"])
	assert.True(t, r.TotalBilled.Equal(dec(20000)))
	assert.True(t, r.TotalCollected.Equal(dec(14000)))
	assert.True(t, r.TotalOutstanding.Equal(dec(6000)))
	assert.Equal(t, "70.00", r.CollectionRate.StringFixed(2))
}
