package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Money is an immutable, currency-tagged exact amount. Arithmetic and
// comparisons between different currencies fail with ErrCurrencyMismatch.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if !currency.IsValid() {
		return Money{}, fmt.Errorf("NewMoney: %q: %w", currency, ErrInvalidCurrency)
	}
	return Money{amount: amount, currency: currency}, nil
}

func ParseMoney(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("ParseMoney: %q: %w", amount, ErrInvalidMoneyOperation)
	}
	return NewMoney(d, currency)
}

func ZeroMoney(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() Currency      { return m.currency }

func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("Money.Add: %s and %s: %w", m.currency, other.currency, ErrCurrencyMismatch)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("Money.Sub: %s and %s: %w", m.currency, other.currency, ErrCurrencyMismatch)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

func (m Money) MulFloat(factor float64) (Money, error) {
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Money{}, fmt.Errorf("Money.MulFloat: %v is not a number: %w", factor, ErrInvalidMoneyOperation)
	}
	return m.Mul(decimal.NewFromFloat(factor)), nil
}

func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, fmt.Errorf("Money.Div: %w", ErrDivisionByZero)
	}
	return Money{amount: m.amount.Div(divisor), currency: m.currency}, nil
}

func (m Money) Cmp(other Money) (int, error) {
	if m.currency != other.currency {
		return 0, fmt.Errorf("Money.Cmp: %s and %s: %w", m.currency, other.currency, ErrCurrencyMismatch)
	}
	return m.amount.Cmp(other.amount), nil
}

func (m Money) LessThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	if err != nil {
		return false, err
	}
	return c < 0, nil
}

func (m Money) GreaterThan(other Money) (bool, error) {
	c, err := m.Cmp(other)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

// Equal is structural: same currency and numerically equal amount.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// ConvertTo returns m unchanged when it is already in target, otherwise
// amount × rate tagged with target.
func (m Money) ConvertTo(target Currency, rate decimal.Decimal) Money {
	if m.currency == target {
		return m
	}
	return Money{amount: m.amount.Mul(rate), currency: target}
}

func (m Money) Round(places int32) (Money, error) {
	if places < 0 {
		return Money{}, fmt.Errorf("Money.Round: places must be >= 0, got %d: %w", places, ErrInvalidMoneyOperation)
	}
	return Money{amount: m.amount.Round(places), currency: m.currency}, nil
}

func (m Money) Abs() Money { return Money{amount: m.amount.Abs(), currency: m.currency} }
func (m Money) Neg() Money { return Money{amount: m.amount.Neg(), currency: m.currency} }

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// StringFixed renders the amount with two decimals, the persisted form.
func (m Money) StringFixed() string {
	return m.amount.StringFixed(2)
}

func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + string(m.currency)
}

// SumMoney adds values that must all be in currency. An empty input sums to zero.
func SumMoney(currency Currency, values ...Money) (Money, error) {
	total := ZeroMoney(currency)
	for _, v := range values {
		var err error
		total, err = total.Add(v)
		if err != nil {
			return Money{}, fmt.Errorf("SumMoney: %w", err)
		}
	}
	return total, nil
}
