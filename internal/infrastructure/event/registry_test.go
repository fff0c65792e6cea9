package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	r := NewHandlerRegistry()
	typed := &recordingHandler{}
	catchAll := &recordingHandler{}

	r.Register(typed, "BillGenerated", "InvoiceIssued")
	r.Register(catchAll)

	assert.Equal(t, 2, r.Len())
	assert.Len(t, r.HandlersFor("BillGenerated"), 2)
	assert.Len(t, r.HandlersFor("PaymentRecorded"), 1)

	got := r.HandlersFor("InvoiceIssued")
	assert.Same(t, typed, got[0], "typed handlers come before catch-all handlers")
	assert.Same(t, catchAll, got[1])

	r.Unregister(typed)
	assert.Equal(t, 1, r.Len())
	assert.Len(t, r.HandlersFor("BillGenerated"), 1)

	r.Unregister(catchAll)
	assert.Zero(t, r.Len())
	assert.Empty(t, r.HandlersFor("BillGenerated"))
}
