package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/expense"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/payment"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type ledgerFixture struct {
	db       *gorm.DB
	property *property.Property
	units    []*property.Unit
}

func setupLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	p, units, err := property.NewProperty(property.NewPropertyInput{
		Name:           "Riverside Court",
		PaymentDetails: property.PaymentDetails{DeadlineDay: 5},
		Utilities: property.Utilities{
			WaterMethod: property.WaterMethodMetered,
			WaterRate:   dec(150),
			GarbageFee:  dec(200),
		},
		UnitTypes: []property.UnitType{
			{Type: "1BR", Rent: dec(15000), Deposit: dec(15000), UnitIDs: []string{"A1", "A2"}},
		},
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, NewGormPropertyRepository(db).Save(ctx, p))
	require.NoError(t, NewGormUnitRepository(db).SaveBatch(ctx, units))
	return &ledgerFixture{db: db, property: p, units: units}
}

func (f *ledgerFixture) createBill(t *testing.T, tenantID uuid.UUID, unit, period string, carry billing.CarryForward) *billing.Bill {
	t.Helper()
	b, err := billing.NewBill(billing.BillInput{
		PropertyID: f.property.ID,
		TenantID:   tenantID,
		UnitID:     unit,
		Period:     valueobject.MustParsePeriod(period),
		Rent:       dec(15000),
		Water:      metering.WaterCharge{Amount: dec(300)},
		GarbageFee: dec(200),
		Carry:      carry,
	})
	require.NoError(t, err)
	require.NoError(t, NewGormBillRepository(f.db).CreateBatch(context.Background(), []*billing.Bill{b}))
	return b
}

func TestPropertyRepository_RoundTrip(t *testing.T) {
	f := setupLedgerFixture(t)
	repo := NewGormPropertyRepository(f.db)
	ctx := context.Background()

	found, err := repo.FindByID(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Riverside Court", found.Name)
	assert.Equal(t, property.WaterMethodMetered, found.Utilities.WaterMethod)
	assert.True(t, found.Utilities.WaterRate.Equal(dec(150)))
	require.Len(t, found.UnitTypes, 1)
	assert.Equal(t, []string{"A1", "A2"}, found.UnitTypes[0].UnitIDs)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrPropertyNotFound))

	total, err := repo.Count(ctx, shared.Filter{Search: "River"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestPropertyRepository_SaveWithLock(t *testing.T) {
	f := setupLedgerFixture(t)
	repo := NewGormPropertyRepository(f.db)
	ctx := context.Background()

	first, err := repo.FindByID(ctx, f.property.ID)
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, f.property.ID)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, first.AllocateInvoiceNumbers(2))
	require.NoError(t, repo.SaveWithLock(ctx, first))

	stale.NextInvoiceNumber()
	err = repo.SaveWithLock(ctx, stale)
	assert.True(t, errors.Is(err, shared.ErrOptimisticLock))

	reloaded, err := repo.FindByID(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), reloaded.InvoiceSequence)
}

func TestUnitRepository(t *testing.T) {
	f := setupLedgerFixture(t)
	repo := NewGormUnitRepository(f.db)
	ctx := context.Background()

	t.Run("find by code", func(t *testing.T) {
		unit, err := repo.FindByCode(ctx, f.property.ID, "A1")
		require.NoError(t, err)
		assert.True(t, unit.IsVacant())
		assert.True(t, unit.Rent.Equal(dec(15000)))

		_, err = repo.FindByCode(ctx, f.property.ID, "Z9")
		assert.True(t, errors.Is(err, shared.ErrUnitNotFound))
	})

	t.Run("occupy and count", func(t *testing.T) {
		unit, err := repo.FindByCodeForUpdate(ctx, f.property.ID, "A2")
		require.NoError(t, err)
		require.NoError(t, unit.Occupy(uuid.New()))
		require.NoError(t, repo.SaveWithLock(ctx, unit))

		counts, err := repo.CountByStatus(ctx, f.property.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[property.UnitStatusVacant])
		assert.Equal(t, int64(1), counts[property.UnitStatusOccupied])
	})

	t.Run("release clears tenant", func(t *testing.T) {
		unit, err := repo.FindByCode(ctx, f.property.ID, "A2")
		require.NoError(t, err)
		require.True(t, unit.Release())
		require.NoError(t, repo.SaveWithLock(ctx, unit))

		reloaded, err := repo.FindByCode(ctx, f.property.ID, "A2")
		require.NoError(t, err)
		assert.Nil(t, reloaded.TenantID)
		assert.True(t, reloaded.IsVacant())
	})

	t.Run("duplicate code rejected", func(t *testing.T) {
		dup := property.NewUnit(f.property.ID, "A1", f.property.UnitTypes[0])
		err := repo.SaveBatch(ctx, []*property.Unit{dup})
		require.Error(t, err)
	})
}

func TestTenantRepository(t *testing.T) {
	f := setupLedgerFixture(t)
	repo := NewGormTenantRepository(f.db)
	ctx := context.Background()

	tenant, err := occupancy.Assign(f.units[0], occupancy.AssignInput{
		Name:       "Jane Wanjiru",
		Phone:      "+254700000001",
		LeaseStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, tenant))

	active, err := repo.FindActiveByProperty(ctx, f.property.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "A1", active[0].UnitID)

	require.True(t, tenant.Vacate(nil, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, repo.SaveWithLock(ctx, tenant))

	active, err = repo.FindActiveByProperty(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	status := occupancy.TenantStatusVacated
	count, err := repo.Count(ctx, occupancy.TenantFilter{PropertyID: &f.property.ID, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.True(t, errors.Is(err, shared.ErrTenantNotFound))
}

func TestMeterReadingRepository(t *testing.T) {
	f := setupLedgerFixture(t)
	repo := NewGormMeterReadingRepository(f.db)
	ctx := context.Background()

	_, err := repo.Latest(ctx, f.property.ID, "A1")
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	var latest *metering.MeterReading
	for i, day := range []int{1, 15, 28} {
		r, err := metering.RecordReading(metering.NewReadingInput{
			PropertyID:  f.property.ID,
			UnitID:      "A1",
			ReadingDate: time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
			Value:       dec(int64(100 + i*10)),
		}, latest)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, r))
		latest = r
	}

	got, err := repo.Latest(ctx, f.property.ID, "A1")
	require.NoError(t, err)
	assert.True(t, got.Value.Equal(dec(120)))

	until := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	readings, err := repo.FindByUnit(ctx, f.property.ID, "A1", &until)
	require.NoError(t, err)
	require.Len(t, readings, 2)
	assert.True(t, readings[0].Value.Equal(dec(100)))

	unit := "A2"
	readings, err = repo.FindByProperty(ctx, f.property.ID, &unit)
	require.NoError(t, err)
	assert.Empty(t, readings)
}

func TestBillRepository_CreateBatchDuplicate(t *testing.T) {
	f := setupLedgerFixture(t)
	tenantID := uuid.New()
	f.createBill(t, tenantID, "A1", "2024-01", billing.CarryForward{})

	dup, err := billing.NewBill(billing.BillInput{
		PropertyID: f.property.ID,
		TenantID:   tenantID,
		UnitID:     "A1",
		Period:     valueobject.MustParsePeriod("2024-01"),
		Rent:       dec(1),
	})
	require.NoError(t, err)

	err = NewGormBillRepository(f.db).CreateBatch(context.Background(), []*billing.Bill{dup})
	assert.True(t, errors.Is(err, shared.ErrPeriodAlreadyBilled))
}

func TestBillRepository_Queries(t *testing.T) {
	f := setupLedgerFixture(t)
	repo := NewGormBillRepository(f.db)
	ctx := context.Background()

	jane, otto := uuid.New(), uuid.New()
	f.createBill(t, jane, "A1", "2024-01", billing.CarryForward{})
	feb := f.createBill(t, jane, "A1", "2024-02", billing.CarryForward{Balance: dec(500)})
	f.createBill(t, otto, "A2", "2024-01", billing.CarryForward{})

	t.Run("latest before", func(t *testing.T) {
		prior, err := repo.FindLatestBefore(ctx, jane, valueobject.MustParsePeriod("2024-03"))
		require.NoError(t, err)
		assert.Equal(t, feb.ID, prior.ID)
		assert.True(t, prior.CarriedBalance.Equal(dec(500)))

		_, err = repo.FindLatestBefore(ctx, jane, valueobject.MustParsePeriod("2024-01"))
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("latest per tenant", func(t *testing.T) {
		latest, err := repo.FindLatestByProperty(ctx, f.property.ID)
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.Equal(t, "2024-02", latest[0].Period.String())
		assert.Equal(t, "2024-01", latest[1].Period.String())
	})

	t.Run("tenant history oldest first", func(t *testing.T) {
		history, err := repo.FindByTenant(ctx, jane)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "2024-01", history[0].Period.String())
		assert.Equal(t, "2024-02", history[1].Period.String())
	})

	t.Run("period listing", func(t *testing.T) {
		count, err := repo.CountByPropertyAndPeriod(ctx, f.property.ID, valueobject.MustParsePeriod("2024-01"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		bills, err := repo.FindByPropertyAndPeriod(ctx, f.property.ID, valueobject.MustParsePeriod("2024-01"))
		require.NoError(t, err)
		require.Len(t, bills, 2)
		assert.Equal(t, "A1", bills[0].UnitID)
	})

	t.Run("payment updates balance", func(t *testing.T) {
		b, err := repo.FindForPeriodForUpdate(ctx, jane, "A1", valueobject.MustParsePeriod("2024-02"))
		require.NoError(t, err)
		require.NoError(t, b.ApplyPayment(dec(16500)))
		require.NoError(t, repo.SaveWithLock(ctx, b))

		reloaded, err := repo.FindByID(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, reloaded.Balance.IsZero())
		assert.True(t, reloaded.Overpayment.Equal(dec(500)))
		assert.Equal(t, b.Version, reloaded.Version)
	})

	t.Run("no bill for period", func(t *testing.T) {
		_, err := repo.FindForPeriodForUpdate(ctx, otto, "A2", valueobject.MustParsePeriod("2024-05"))
		assert.True(t, errors.Is(err, shared.ErrNoBillForPeriod))
	})
}

func TestBillRepository_WaterUsageRoundTrip(t *testing.T) {
	f := setupLedgerFixture(t)
	repo := NewGormBillRepository(f.db)
	ctx := context.Background()

	b, err := billing.NewBill(billing.BillInput{
		PropertyID: f.property.ID,
		TenantID:   uuid.New(),
		UnitID:     "A1",
		Period:     valueobject.MustParsePeriod("2024-01"),
		Rent:       dec(15000),
		Water: metering.WaterCharge{
			Amount: dec(1500),
			Usage:  &metering.WaterUsage{PreviousReading: dec(100), CurrentReading: dec(110), Rate: dec(150), Units: dec(10)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, repo.CreateBatch(ctx, []*billing.Bill{b}))

	reloaded, err := repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.WaterUsage)
	assert.True(t, reloaded.WaterUsage.Units.Equal(dec(10)))
	assert.True(t, reloaded.TotalDue.Equal(dec(16500)))
}

func TestInvoiceRepository(t *testing.T) {
	f := setupLedgerFixture(t)
	repo := NewGormInvoiceRepository(f.db)
	ctx := context.Background()

	b := f.createBill(t, uuid.New(), "A1", "2024-01", billing.CarryForward{})
	due := time.Date(2024, 1, 5, 23, 59, 59, 0, time.UTC)
	inv, err := invoicing.Issue(invoicing.IssueInput{Bill: b, Sequence: 1, Prefix: "INV", DueDate: &due})
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, inv))

	t.Run("one invoice per bill", func(t *testing.T) {
		again, err := invoicing.Issue(invoicing.IssueInput{Bill: b, Sequence: 2})
		require.NoError(t, err)
		err = repo.Create(ctx, again)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeAlreadyInvoiced, domainErr.Code)
	})

	t.Run("find by id is property scoped", func(t *testing.T) {
		found, err := repo.FindByID(ctx, f.property.ID, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-00001", found.InvoiceNumber)
		require.Len(t, found.LineItems, 3)

		_, err = repo.FindByID(ctx, uuid.New(), inv.ID)
		assert.True(t, errors.Is(err, shared.ErrInvoiceNotFound))
	})

	t.Run("overdue candidates", func(t *testing.T) {
		candidates, err := repo.FindOverdueCandidates(ctx, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 10)
		require.NoError(t, err)
		require.Len(t, candidates, 1)

		candidates, err = repo.FindOverdueCandidates(ctx, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), 10)
		require.NoError(t, err)
		assert.Empty(t, candidates)
	})

	t.Run("status filter and save", func(t *testing.T) {
		locked, err := repo.FindByBillForUpdate(ctx, b.ID)
		require.NoError(t, err)
		require.True(t, locked.MarkOverdue(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
		require.NoError(t, repo.SaveWithLock(ctx, locked))

		status := invoicing.InvoiceStatusOverdue
		count, err := repo.CountByProperty(ctx, f.property.ID, invoicing.InvoiceFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		byBill, err := repo.FindByBillIDs(ctx, []uuid.UUID{b.ID})
		require.NoError(t, err)
		require.Len(t, byBill, 1)
		assert.Equal(t, invoicing.InvoiceStatusOverdue, byBill[0].Status)
	})
}

func TestPaymentAndExpenseSums(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	payments := NewGormPaymentRepository(f.db)
	expenses := NewGormExpenseRepository(f.db)
	tenantID := uuid.New()

	for _, in := range []struct {
		amount int64
		typ    payment.PaymentType
	}{
		{10000, payment.PaymentTypeRent},
		{5000, payment.PaymentTypeRent},
		{15000, payment.PaymentTypeDeposit},
	} {
		p, err := payment.NewPayment(payment.RecordInput{
			PropertyID: f.property.ID,
			TenantID:   tenantID,
			UnitID:     "A1",
			Period:     valueobject.MustParsePeriod("2024-01"),
			Amount:     dec(in.amount),
			PaidAt:     time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
			Type:       in.typ,
		})
		require.NoError(t, err)
		require.NoError(t, payments.Create(ctx, p))
	}

	rent := payment.PaymentTypeRent
	total, err := payments.SumByProperty(ctx, f.property.ID, payment.PaymentFilter{Type: &rent})
	require.NoError(t, err)
	assert.True(t, total.Equal(dec(15000)), total.String())

	other := uuid.New()
	total, err = payments.SumByProperty(ctx, other, payment.PaymentFilter{Type: &rent})
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	byTenant, err := payments.FindByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, byTenant, 3)

	e, err := expense.NewExpense(f.property.ID, dec(2500), "Pump repair", expense.CategoryMaintenance, time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, expenses.Create(ctx, e))

	spent, err := expenses.SumByProperty(ctx, f.property.ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, spent.Equal(dec(2500)), spent.String())
}

func TestGormTransactionScope_RollsBack(t *testing.T) {
	f := setupLedgerFixture(t)
	scope := NewGormTransactionScope(f.db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repos txn.Repositories) error {
		p, err := repos.Properties().FindByIDForUpdate(ctx, f.property.ID)
		if err != nil {
			return err
		}
		p.NextInvoiceNumber()
		if err := repos.Properties().SaveWithLock(ctx, p); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := NewGormPropertyRepository(f.db).FindByID(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloaded.InvoiceSequence)
	assert.Equal(t, f.property.Version, reloaded.Version)
}
