package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type ledgerEvent struct {
	shared.BaseDomainEvent
}

func newLedgerEvent(eventType string) *ledgerEvent {
	return &ledgerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Bill", uuid.New(), uuid.New()),
	}
}

type recordingHandler struct {
	types []string
	err   error
	panic bool

	mu   sync.Mutex
	seen []shared.DomainEvent
}

func (h *recordingHandler) Handle(_ context.Context, evt shared.DomainEvent) error {
	h.mu.Lock()
	h.seen = append(h.seen, evt)
	h.mu.Unlock()
	if h.panic {
		panic("boom")
	}
	return h.err
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bills := &recordingHandler{types: []string{"BillGenerated"}}
	payments := &recordingHandler{types: []string{"PaymentRecorded"}}
	all := &recordingHandler{}
	bus.Subscribe(bills)
	bus.Subscribe(payments)
	bus.Subscribe(all)

	err := bus.Publish(context.Background(),
		newLedgerEvent("BillGenerated"),
		newLedgerEvent("BillGenerated"),
		newLedgerEvent("PaymentRecorded"),
	)

	require.NoError(t, err)
	assert.Equal(t, 2, bills.count())
	assert.Equal(t, 1, payments.count())
	assert.Equal(t, 3, all.count())

	delivered, failed := bus.Stats()
	assert.Equal(t, int64(6), delivered)
	assert.Zero(t, failed)
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandler(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &recordingHandler{types: []string{"BillGenerated"}}
	bus.Subscribe(h, "InvoiceIssued")

	_ = bus.Publish(context.Background(), newLedgerEvent("BillGenerated"), newLedgerEvent("InvoiceIssued"))

	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_FailingHandlerIsIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := &recordingHandler{types: []string{"InvoiceIssued"}, err: errors.New("mailer down")}
	panicking := &recordingHandler{types: []string{"InvoiceIssued"}, panic: true}
	healthy := &recordingHandler{types: []string{"InvoiceIssued"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), newLedgerEvent("InvoiceIssued"))

	require.NoError(t, err)
	assert.Equal(t, 1, healthy.count())
	_, failed := bus.Stats()
	assert.Equal(t, int64(2), failed)
	assert.Equal(t, 2, logs.FilterMessage("event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{types: []string{"TenantVacated"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	_ = bus.Publish(context.Background(), newLedgerEvent("TenantVacated"))

	assert.Zero(t, h.count())
}

func TestInMemoryEventBus_StopDropsEvents(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	h := &recordingHandler{}
	bus.Subscribe(h)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	_ = bus.Publish(context.Background(), newLedgerEvent("BillGenerated"))
	assert.Zero(t, h.count())

	require.NoError(t, bus.Start(context.Background()))
	_ = bus.Publish(context.Background(), newLedgerEvent("BillGenerated"))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_PublishNothing(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	assert.NoError(t, bus.Publish(context.Background()))
}
