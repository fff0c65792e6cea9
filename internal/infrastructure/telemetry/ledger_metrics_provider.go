package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLedgerSnapshotProvider implements LedgerSnapshotProvider with
// aggregate queries over the ledger tables.
type GormLedgerSnapshotProvider struct {
	db *gorm.DB
}

// NewGormLedgerSnapshotProvider creates a new GormLedgerSnapshotProvider.
func NewGormLedgerSnapshotProvider(db *gorm.DB) *GormLedgerSnapshotProvider {
	return &GormLedgerSnapshotProvider{db: db}
}

// GetPropertyIDs returns every property id.
func (p *GormLedgerSnapshotProvider) GetPropertyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("properties").
		Pluck("id", &ids).Error
	return ids, err
}

// GetSnapshot sums the balances of each tenant's latest bill and counts
// occupied units and overdue invoices.
func (p *GormLedgerSnapshotProvider) GetSnapshot(ctx context.Context, propertyID uuid.UUID) (LedgerSnapshot, error) {
	var snapshot LedgerSnapshot
	db := p.db.WithContext(ctx)

	latest := p.db.Table("bills AS b2").
		Select("MAX(b2.period)").
		Where("b2.tenant_id = bills.tenant_id AND b2.property_id = bills.property_id")
	var outstanding decimal.NullDecimal
	if err := db.Table("bills").
		Select("SUM(balance)").
		Where("property_id = ? AND period = (?)", propertyID, latest).
		Scan(&outstanding).Error; err != nil {
		return snapshot, err
	}
	if outstanding.Valid {
		snapshot.OutstandingMinor = ToMinorUnits(outstanding.Decimal)
	}

	if err := db.Table("units").
		Where("property_id = ? AND status = ?", propertyID, "occupied").
		Count(&snapshot.OccupiedUnits).Error; err != nil {
		return snapshot, err
	}

	if err := db.Table("invoices").
		Where("property_id = ? AND status = ?", propertyID, "Overdue").
		Count(&snapshot.OverdueInvoices).Error; err != nil {
		return snapshot, err
	}

	return snapshot, nil
}

var _ LedgerSnapshotProvider = (*GormLedgerSnapshotProvider)(nil)
