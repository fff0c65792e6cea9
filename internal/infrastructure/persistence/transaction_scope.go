package persistence

import (
	"context"

	"github.com/rentledger/backend/internal/application/txn"
	"github.com/rentledger/backend/internal/domain/billing"
	"github.com/rentledger/backend/internal/domain/expense"
	"github.com/rentledger/backend/internal/domain/invoicing"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/rentledger/backend/internal/domain/occupancy"
	"github.com/rentledger/backend/internal/domain/payment"
	"github.com/rentledger/backend/internal/domain/property"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back; otherwise it is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txn.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories hands out repositories bound to one *gorm.DB, which is
// either the root connection or an open transaction.
type GormRepositories struct {
	db *gorm.DB
}

// NewGormRepositories creates repositories over db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

// Properties returns the property repository
func (r *GormRepositories) Properties() property.PropertyRepository {
	return NewGormPropertyRepository(r.db)
}

// Units returns the unit repository
func (r *GormRepositories) Units() property.UnitRepository {
	return NewGormUnitRepository(r.db)
}

// Tenants returns the tenant repository
func (r *GormRepositories) Tenants() occupancy.TenantRepository {
	return NewGormTenantRepository(r.db)
}

// Readings returns the meter reading repository
func (r *GormRepositories) Readings() metering.MeterReadingRepository {
	return NewGormMeterReadingRepository(r.db)
}

// Bills returns the bill repository
func (r *GormRepositories) Bills() billing.BillRepository {
	return NewGormBillRepository(r.db)
}

// Invoices returns the invoice repository
func (r *GormRepositories) Invoices() invoicing.InvoiceRepository {
	return NewGormInvoiceRepository(r.db)
}

// Payments returns the payment repository
func (r *GormRepositories) Payments() payment.PaymentRepository {
	return NewGormPaymentRepository(r.db)
}

// Expenses returns the expense repository
func (r *GormRepositories) Expenses() expense.ExpenseRepository {
	return NewGormExpenseRepository(r.db)
}

// Ensure GormTransactionScope implements TransactionScope
var _ txn.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements Repositories
var _ txn.Repositories = (*GormRepositories)(nil)
