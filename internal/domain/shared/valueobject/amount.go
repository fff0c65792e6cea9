package valueobject

import (
	"github.com/shopspring/decimal"
)

// MinorUnits is the number of decimal places amounts are kept at
const MinorUnits int32 = 2

// RoundAmount rounds an amount to the currency's minor-unit precision
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnits)
}

// PositivePart returns max(d, 0)
func PositivePart(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// SumAmounts adds the given amounts
func SumAmounts(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
