package metering

import (
	"github.com/rentledger/backend/internal/domain/property"
	"github.com/rentledger/backend/internal/domain/shared"
	"github.com/rentledger/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// WaterUsage is the meter detail behind a metered water charge
type WaterUsage struct {
	PreviousReading decimal.Decimal `json:"previous_reading"`
	CurrentReading  decimal.Decimal `json:"current_reading"`
	Rate            decimal.Decimal `json:"rate"`
	Units           decimal.Decimal `json:"units"`
}

// WaterCharge is the water amount for one unit and period
type WaterCharge struct {
	Amount decimal.Decimal
	// Usage is set for metered charges only
	Usage *WaterUsage
}

// ChargeForPeriod computes the water charge for a period.
//
// Fixed billing returns the configured amount. Metered billing uses the two
// latest readings dated at or before the end of the period and fails with
// NoBaselineReading when fewer than two exist. readings must be ordered oldest first.
func ChargeForPeriod(util property.Utilities, readings []MeterReading, period valueobject.Period) (WaterCharge, error) {
	if util.WaterMethod != property.WaterMethodMetered {
		return WaterCharge{Amount: util.WaterRate}, nil
	}
	upTo := readingsUpTo(readings, period)
	if len(upTo) < 2 {
		return WaterCharge{}, shared.ErrNoBaselineReading
	}
	prev, cur := upTo[len(upTo)-2], upTo[len(upTo)-1]
	return meteredCharge(prev.Value, cur.Value, util.WaterRate), nil
}

// BillableCharge is the charge the billing engine puts on a bill.
//
// Units without a baseline, or without a reading taken during the period,
// are billed zero water so consumption is never charged twice.
func BillableCharge(util property.Utilities, readings []MeterReading, period valueobject.Period) WaterCharge {
	if util.WaterMethod != property.WaterMethodMetered {
		return WaterCharge{Amount: util.WaterRate}
	}
	upTo := readingsUpTo(readings, period)
	if len(upTo) == 0 {
		return WaterCharge{Amount: decimal.Zero}
	}
	last := upTo[len(upTo)-1]
	if len(upTo) == 1 || last.ReadingDate.Before(period.Start()) {
		return meteredCharge(last.Value, last.Value, util.WaterRate)
	}
	charge, _ := ChargeForPeriod(util, upTo, period)
	return charge
}

func meteredCharge(prev, cur, rate decimal.Decimal) WaterCharge {
	units := cur.Sub(prev)
	return WaterCharge{
		Amount: valueobject.RoundAmount(units.Mul(rate)),
		Usage: &WaterUsage{
			PreviousReading: prev,
			CurrentReading:  cur,
			Rate:            rate,
			Units:           units,
		},
	}
}

func readingsUpTo(readings []MeterReading, period valueobject.Period) []MeterReading {
	end := period.End()
	out := make([]MeterReading, 0, len(readings))
	for _, r := range readings {
		if !r.ReadingDate.After(end) {
			out = append(out, r)
		}
	}
	return out
}
