package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DualMoney is an amount native to one currency, optionally paired with the
// same amount in a second currency and the rate relating the two
// (primary ≈ secondary × rate). Producers keep that relation; it is not
// checked here.
type DualMoney struct {
	primary   Money
	secondary *Money
	rate      *decimal.Decimal
}

func SingleCurrency(m Money) DualMoney {
	return DualMoney{primary: m}
}

func NewDualMoney(primary Money, secondary *Money, rate *decimal.Decimal) (DualMoney, error) {
	if secondary == nil {
		if rate != nil {
			return DualMoney{}, fmt.Errorf("NewDualMoney: exchange rate given without secondary amount: %w", ErrInvalidMoneyOperation)
		}
		return DualMoney{primary: primary}, nil
	}
	if rate == nil {
		return DualMoney{}, fmt.Errorf("NewDualMoney: secondary amount requires an exchange rate: %w", ErrInvalidMoneyOperation)
	}
	if !rate.IsPositive() {
		return DualMoney{}, fmt.Errorf("NewDualMoney: exchange rate must be positive, got %s: %w", rate, ErrInvalidMoneyOperation)
	}
	if secondary.Currency() == primary.Currency() {
		return DualMoney{}, fmt.Errorf("NewDualMoney: secondary currency must differ from %s: %w", primary.Currency(), ErrInvalidMoneyOperation)
	}
	s := *secondary
	r := *rate
	return DualMoney{primary: primary, secondary: &s, rate: &r}, nil
}

func (d DualMoney) Primary() Money { return d.primary }

func (d DualMoney) Secondary() (Money, bool) {
	if d.secondary == nil {
		return Money{}, false
	}
	return *d.secondary, true
}

func (d DualMoney) Rate() (decimal.Decimal, bool) {
	if d.rate == nil {
		return decimal.Decimal{}, false
	}
	return *d.rate, true
}

func (d DualMoney) IsDualCurrency() bool {
	return d.secondary != nil
}

func (d DualMoney) InCurrency(c Currency) (Money, error) {
	if d.primary.Currency() == c {
		return d.primary, nil
	}
	if d.secondary != nil && d.secondary.Currency() == c {
		return *d.secondary, nil
	}
	return Money{}, fmt.Errorf("DualMoney.InCurrency: no %s amount: %w", c, ErrCurrencyMismatch)
}

// ForCard picks the side matching the card currency and falls back to
// primary when neither does, so it never fails.
func (d DualMoney) ForCard(cardCurrency Currency) Money {
	if m, err := d.InCurrency(cardCurrency); err == nil {
		return m
	}
	return d.primary
}
