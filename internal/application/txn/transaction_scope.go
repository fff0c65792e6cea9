// Package txn defines the unit of work shared by the ledger application services.
package txn

import (
	"context"

	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/expense"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/payment"
	"github.com/rentledger/backend/internal/domain/property"
)

// TransactionScope defines the interface for executing operations within a transaction.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back; otherwise it is committed.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to all ledger repositories.
// Inside Execute every repository shares the same underlying transaction.
//
// Lock order for writers: property, then tenant or unit, then bill, then invoice.
type Repositories interface {
	Properties() property.PropertyRepository
	Units() property.UnitRepository
	Tenants() occupancy.TenantRepository
	Readings() metering.MeterReadingRepository
	Bills() billing.BillRepository
	Invoices() invoicing.InvoiceRepository
	Payments() payment.PaymentRepository
	Expenses() expense.ExpenseRepository
}
