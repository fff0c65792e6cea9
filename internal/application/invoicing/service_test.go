package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/rentledger/backend/internal/infrastructure/persistence"
	"github.com/rentledger/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
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

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Deliver(ctx context.Context, d Delivery) error {
	return m.Called(ctx, d).Error(0)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Upload(ctx context.Context, key string, body []byte, contentType string) error {
	return m.Called(ctx, key, body, contentType).Error(0)
}

func (m *mockStore) PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

type stubRenderer struct {
	docs []invoicing.Document
}

func (r *stubRenderer) RenderInvoice(_ context.Context, doc invoicing.Document) ([]byte, error) {
	r.docs = append(r.docs, doc)
	return []byte("%PDF-1.7 " + doc.InvoiceNumber), nil
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

type fixture struct {
	db       *gorm.DB
	svc      *InvoiceService
	pub      *recordingPublisher
	property *property.Property
	tenants  []*occupancy.Tenant
	now      time.Time
}

func setup(t *testing.T, deadlineDay int) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	p, units, err := property.NewProperty(property.NewPropertyInput{
		Name:           "Riverside Court",
		PaymentDetails: property.PaymentDetails{DeadlineDay: deadlineDay},
		Utilities:      property.Utilities{WaterMethod: property.WaterMethodFixed, WaterRate: dec(500), GarbageFee: dec(200)},
		UnitTypes: []property.UnitType{
			{Type: "1BR", Rent: dec(10000), Deposit: dec(10000), UnitIDs: []string{"A1", "A2"}},
		},
	})
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormPropertyRepository(db).Save(ctx, p))

	f := &fixture{db: db, property: p, now: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	for i, u := range units {
		tenant, err := occupancy.Assign(u, occupancy.AssignInput{
			Name:       []string{"Jane", "Otieno"}[i],
			Phone:      "07000000" + []string{"01", "02"}[i],
			Email:      []string{"jane@example.com", ""}[i],
			LeaseStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.NoError(t, persistence.NewGormTenantRepository(db).Save(ctx, tenant))
		f.tenants = append(f.tenants, tenant)
	}
	require.NoError(t, persistence.NewGormUnitRepository(db).SaveBatch(ctx, units))

	f.pub = &recordingPublisher{}
	f.svc = NewInvoiceService(persistence.NewGormTransactionScope(db), persistence.NewGormRepositories(db), f.pub, zap.NewNop(),
		Config{Prefix: "RC", OverdueBatch: 1})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) bill(t *testing.T, period string) {
	t.Helper()
	var bills []*billing.Bill
	for _, tenant := range f.tenants {
		b, err := billing.NewBill(billing.BillInput{
			PropertyID: f.property.ID,
			TenantID:   tenant.ID,
			UnitID:     tenant.UnitID,
			Period:     valueobject.MustParsePeriod(period),
			Rent:       tenant.Rent,
			Water:      metering.WaterCharge{Amount: dec(500)},
			GarbageFee: dec(200),
			Carry:      billing.ResolveCarryForward(nil),
		})
		require.NoError(t, err)
		bills = append(bills, b)
	}
	require.NoError(t, persistence.NewGormBillRepository(f.db).CreateBatch(context.Background(), bills))
}

func (f *fixture) issue(t *testing.T, period string) *IssueInvoicesResponse {
	t.Helper()
	resp, err := f.svc.IssueForPeriod(context.Background(), f.property.ID, period)
	require.NoError(t, err)
	return resp
}

func TestInvoiceService_IssueForPeriod(t *testing.T) {
	f := setup(t, 5)
	ctx := context.Background()
	f.bill(t, "2025-06")

	resp := f.issue(t, "2025-06")
	require.Equal(t, 2, resp.Issued)
	assert.Equal(t, "RC-00001", resp.Invoices[0].InvoiceNumber)
	assert.Equal(t, "RC-00002", resp.Invoices[1].InvoiceNumber)
	assert.Equal(t, "Unpaid", resp.Invoices[0].Status)
	assert.True(t, resp.Invoices[0].TotalDue.Equal(dec(10700)))
	require.NotNil(t, resp.Invoices[0].DueDate)
	assert.Equal(t, 5, resp.Invoices[0].DueDate.Day())
	require.Len(t, resp.Invoices[0].LineItems, 3)
	assert.Len(t, f.pub.events, 2)

	again := f.issue(t, "2025-06")
	assert.Equal(t, 0, again.Issued, "one invoice per bill")

	p, err := persistence.NewGormPropertyRepository(f.db).FindByID(ctx, f.property.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.InvoiceSequence)

	f.bill(t, "2025-07")
	july := f.issue(t, "2025-07")
	assert.Equal(t, "RC-00003", july.Invoices[0].InvoiceNumber, "numbers keep increasing across periods")

	_, err = f.svc.IssueForPeriod(ctx, f.property.ID, "2025/07")
	assert.ErrorIs(t, err, shared.NewDomainError(shared.CodeInvalidPeriod, ""))
}

func TestInvoiceService_ListAndGet(t *testing.T) {
	f := setup(t, 5)
	ctx := context.Background()
	f.bill(t, "2025-06")
	f.bill(t, "2025-07")
	f.issue(t, "2025-06")
	f.issue(t, "2025-07")

	all, err := f.svc.ListInvoices(ctx, f.property.ID, ListInvoicesRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)

	june, err := f.svc.ListInvoices(ctx, f.property.ID, ListInvoicesRequest{Period: "2025-06", Status: "Unpaid"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), june.Total)

	_, err = f.svc.ListInvoices(ctx, f.property.ID, ListInvoicesRequest{Status: "Lost"})
	assert.ErrorIs(t, err, shared.NewDomainError(shared.CodeInvalidStatus, ""))

	mine, err := f.svc.ListTenantInvoices(ctx, f.property.ID, f.tenants[0].ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "2025-06", mine[0].Period)

	got, err := f.svc.GetInvoice(ctx, f.property.ID, mine[1].ID)
	require.NoError(t, err)
	assert.Equal(t, mine[1].InvoiceNumber, got.InvoiceNumber)

	_, err = f.svc.GetInvoice(ctx, uuid.New(), mine[1].ID)
	assert.ErrorIs(t, err, shared.ErrInvoiceNotFound)
}

func TestInvoiceService_SetStatus(t *testing.T) {
	f := setup(t, 5)
	ctx := context.Background()
	f.bill(t, "2025-06")
	inv := f.issue(t, "2025-06").Invoices[0]

	same, err := f.svc.SetStatus(ctx, f.property.ID, inv.ID, SetStatusRequest{Status: "Unpaid"})
	require.NoError(t, err)
	assert.Equal(t, inv.Version, same.Version, "no-op change is not saved")

	cancelled, err := f.svc.SetStatus(ctx, f.property.ID, inv.ID, SetStatusRequest{Status: "Cancelled"})
	require.NoError(t, err)
	assert.Equal(t, "Cancelled", cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.SetStatus(ctx, f.property.ID, inv.ID, SetStatusRequest{Status: "Unpaid"})
	assert.ErrorIs(t, err, shared.ErrInvoiceTerminal)

	_, err = f.svc.SetStatus(ctx, f.property.ID, inv.ID, SetStatusRequest{Status: "Archived"})
	assert.ErrorIs(t, err, shared.NewDomainError(shared.CodeInvalidStatus, ""))
}

func TestInvoiceService_SendInvoice(t *testing.T) {
	f := setup(t, 5)
	ctx := context.Background()
	f.bill(t, "2025-06")
	issued := f.issue(t, "2025-06").Invoices

	_, err := f.svc.SendInvoice(ctx, f.property.ID, issued[0].ID, SendInvoiceRequest{Channel: "email"})
	assert.ErrorIs(t, err, ErrNotifierUnavailable)

	notifier := &mockNotifier{}
	notifier.On("Deliver", mock.Anything, mock.MatchedBy(func(d Delivery) bool {
		return d.Channel == invoicing.ChannelEmail && d.Recipient == "jane@example.com" &&
			d.Document.InvoiceNumber == "RC-00001" && d.Document.TenantName == "Jane"
	})).Return(nil).Once()
	f.svc.SetNotifier(notifier)

	sent, err := f.svc.SendInvoice(ctx, f.property.ID, issued[0].ID, SendInvoiceRequest{Channel: "email"})
	require.NoError(t, err)
	assert.True(t, sent.Sent.Email)
	assert.False(t, sent.Sent.WhatsApp)
	assert.Equal(t, "Unpaid", sent.Status, "delivery does not change status")
	notifier.AssertExpectations(t)

	// second tenant has no email on file
	_, err = f.svc.SendInvoice(ctx, f.property.ID, issued[1].ID, SendInvoiceRequest{Channel: "email"})
	assert.ErrorIs(t, err, ErrNoRecipient)

	failing := &mockNotifier{}
	failing.On("Deliver", mock.Anything, mock.Anything).Return(errors.New("gateway down"))
	f.svc.SetNotifier(failing)
	_, err = f.svc.SendInvoice(ctx, f.property.ID, issued[1].ID, SendInvoiceRequest{Channel: "whatsapp"})
	require.Error(t, err)

	got, err := f.svc.GetInvoice(ctx, f.property.ID, issued[1].ID)
	require.NoError(t, err)
	assert.False(t, got.Sent.WhatsApp, "failed delivery is not recorded")
}

func TestInvoiceService_MarkOverdue(t *testing.T) {
	t.Run("sweeps past-due invoices in batches", func(t *testing.T) {
		f := setup(t, 5)
		ctx := context.Background()
		f.bill(t, "2025-06")
		f.issue(t, "2025-06")

		marked, err := f.svc.MarkOverdue(ctx, time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 0, marked, "deadline day itself is not overdue")

		marked, err = f.svc.MarkOverdue(ctx, time.Date(2025, 6, 6, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 2, marked)

		overdue, err := f.svc.ListInvoices(ctx, f.property.ID, ListInvoicesRequest{Status: "Overdue"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), overdue.Total)

		marked, err = f.svc.MarkOverdue(ctx, time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 0, marked)
	})

	t.Run("no deadline never goes overdue", func(t *testing.T) {
		f := setup(t, 0)
		f.bill(t, "2025-06")
		f.issue(t, "2025-06")

		marked, err := f.svc.MarkOverdue(context.Background(), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 0, marked)
	})

	t.Run("per property", func(t *testing.T) {
		f := setup(t, 5)
		f.bill(t, "2025-06")
		issued := f.issue(t, "2025-06").Invoices
		_, err := f.svc.SetStatus(context.Background(), f.property.ID, issued[0].ID, SetStatusRequest{Status: "Cancelled"})
		require.NoError(t, err)

		resp, err := f.svc.MarkOverdueForProperty(context.Background(), f.property.ID, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Marked)
	})
}

func TestInvoiceService_RenderPDF(t *testing.T) {
	f := setup(t, 5)
	ctx := context.Background()
	f.bill(t, "2025-06")
	inv := f.issue(t, "2025-06").Invoices[0]

	_, err := f.svc.RenderPDF(ctx, f.property.ID, inv.ID)
	assert.ErrorIs(t, err, ErrRendererUnavailable)

	renderer := &stubRenderer{}
	f.svc.SetRenderer(renderer)

	inline, err := f.svc.RenderPDF(ctx, f.property.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "RC-00001.pdf", inline.Filename)
	assert.Empty(t, inline.URL)
	require.Len(t, renderer.docs, 1)
	assert.Equal(t, "Riverside Court", renderer.docs[0].PropertyName)
	assert.Equal(t, "A1", renderer.docs[0].UnitID)

	store := &mockStore{}
	key := "invoices/" + f.property.ID.String() + "/RC-00001.pdf"
	store.On("Upload", mock.Anything, key, mock.Anything, "application/pdf").Return(nil).Once()
	store.On("PresignURL", mock.Anything, key, 15*time.Minute).Return("https://files.example.com/"+key, nil).Once()
	f.svc.SetDocumentStore(store)

	stored, err := f.svc.RenderPDF(ctx, f.property.ID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, key, stored.StorageKey)
	assert.Contains(t, stored.URL, "RC-00001.pdf")
	store.AssertExpectations(t)
}
