package billing

import (
	"github.com/shopspring/decimal"
)

// CarryForward is the unsettled amount moved from one bill into the next.
// At most one of the two fields is non-zero.
type CarryForward struct {
	Balance     decimal.Decimal `json:"carried_balance"`
	Overpayment decimal.Decimal `json:"carried_overpayment"`
}

// ResolveCarryForward derives the carry from a tenant's most recent prior
// bill. A nil bill (new tenancy) carries nothing.
func ResolveCarryForward(prior *Bill) CarryForward {
	carry := CarryForward{Balance: decimal.Zero, Overpayment: decimal.Zero}
	if prior == nil {
		return carry
	}
	switch {
	case prior.Balance.IsPositive():
		carry.Balance = prior.Balance
	case prior.Overpayment.IsPositive():
		carry.Overpayment = prior.Overpayment
	}
	return carry
}
