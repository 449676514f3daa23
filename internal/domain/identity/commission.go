package identity

import (
	"github.com/shopspring/decimal"
)

// CommissionEngine computes sale commissions. The default rate comes
// from configuration and applies when neither the sale nor the user
// carries an explicit rate.
type CommissionEngine struct {
	defaultRate decimal.Decimal
}

// NewCommissionEngine creates a commission engine with the configured default rate
func NewCommissionEngine(defaultRate decimal.Decimal) *CommissionEngine {
	if defaultRate.IsNegative() {
		defaultRate = decimal.Zero
	}
	return &CommissionEngine{defaultRate: defaultRate}
}

// EffectiveRate resolves the commission rate for a sale: an explicit
// positive rate on the sale wins, then the user's own rate, then the
// configured default.
func (e *CommissionEngine) EffectiveRate(explicitRate decimal.Decimal, user *User) decimal.Decimal {
	if explicitRate.IsPositive() {
		return explicitRate
	}
	if user != nil && user.CommissionPercent.IsPositive() {
		return user.CommissionPercent
	}
	return e.defaultRate
}

// Amount computes the commission on a sale total at the given rate
func (e *CommissionEngine) Amount(grandTotal, rate decimal.Decimal) decimal.Decimal {
	if !grandTotal.IsPositive() || !rate.IsPositive() {
		return decimal.Zero
	}
	return grandTotal.Mul(rate).Div(decimal.NewFromInt(100))
}
