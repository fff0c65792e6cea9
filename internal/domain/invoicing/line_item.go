package invoicing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"github.com/rentledger/backend/internal/domain/metering"
	"github.com/shopspring/decimal"
)

// Line item labels
const (
	LabelRent               = "Rent"
	LabelWater              = "Water"
	LabelGarbage            = "Garbage"
	LabelCarriedBalance     = "Carried Forward Balance"
	LabelCarriedOverpayment = "Carried Overpayment"
)

// LineItem is one labeled charge (positive) or credit (negative) on an invoice
type LineItem struct {
	Label  string               `json:"label"`
	Amount decimal.Decimal      `json:"amount"`
	Usage  *metering.WaterUsage `json:"usage,omitempty"`
}

// LineItems is a slice of LineItem stored as JSON
type LineItems []LineItem

// Total sums the line item amounts
func (l LineItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range l {
		total = total.Add(item.Amount)
	}
	return total
}

// Value implements driver.Valuer interface for GORM to store as JSON
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface for GORM to read from JSON
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan LineItems: unsupported type")
	}

	if len(bytes) == 0 {
		*l = LineItems{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}
