package metering

import (
	"time"

	"github.com/google/uuid"
	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/shopspring/decimal"
)

// UnitReadingDTO is one unit's meter value in a batch
type UnitReadingDTO struct {
	UnitID string          `json:"unit_id" binding:"required,max=50"`
	Value  decimal.Decimal `json:"value"`
}

// RecordReadingsRequest is a same-date submission for several units
type RecordReadingsRequest struct {
	Date     time.Time        `json:"date" binding:"required"`
	Readings []UnitReadingDTO `json:"readings" binding:"required,min=1,dive"`
}

// ReadingResult is the outcome for one unit of a batch
type ReadingResult struct {
	UnitID    string           `json:"unit_id"`
	Recorded  bool             `json:"recorded"`
	ReadingID *uuid.UUID       `json:"reading_id,omitempty"`
	ErrorCode string           `json:"error_code,omitempty"`
	Message   string           `json:"message,omitempty"`
	Reading   *ReadingResponse `json:"reading,omitempty"`
}

// RecordReadingsResponse summarizes a batch submission
type RecordReadingsResponse struct {
	Recorded int             `json:"recorded"`
	Failed   int             `json:"failed"`
	Results  []ReadingResult `json:"results"`
}

// ReadingResponse is a meter reading with the consumption since the previous one
type ReadingResponse struct {
	ID          uuid.UUID        `json:"id"`
	PropertyID  uuid.UUID        `json:"property_id"`
	UnitID      string           `json:"unit_id"`
	TenantID    *uuid.UUID       `json:"tenant_id,omitempty"`
	ReadingDate time.Time        `json:"reading_date"`
	Value       decimal.Decimal  `json:"value"`
	Baseline    bool             `json:"baseline"`
	Consumption *decimal.Decimal `json:"consumption"`
	CreatedAt   time.Time        `json:"created_at"`
}

// WaterChargeResponse is the water charge for one unit and period
type WaterChargeResponse struct {
	UnitID string               `json:"unit_id"`
	Period string               `json:"period"`
	Amount decimal.Decimal      `json:"amount"`
	Usage  *metering.WaterUsage `json:"usage,omitempty"`
}

// ToReadingResponse converts a reading to its response form
func ToReadingResponse(r *metering.MeterReading, consumption *decimal.Decimal) ReadingResponse {
	return ReadingResponse{
		ID:          r.ID,
		PropertyID:  r.PropertyID,
		UnitID:      r.UnitID,
		TenantID:    r.TenantID,
		ReadingDate: r.ReadingDate,
		Value:       r.Value,
		Baseline:    r.Baseline,
		Consumption: consumption,
		CreatedAt:   r.CreatedAt,
	}
}
