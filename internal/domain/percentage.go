package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Percentage struct {
	value decimal.Decimal
}

type percentageValue interface {
	int | int64 | float64 | decimal.Decimal
}

// NewPercentage accepts integers, floats and decimals in [0, 100].
func NewPercentage[N percentageValue](v N) (Percentage, error) {
	var d decimal.Decimal
	switch x := any(v).(type) {
	case int:
		d = decimal.NewFromInt(int64(x))
	case int64:
		d = decimal.NewFromInt(x)
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return Percentage{}, fmt.Errorf("NewPercentage: %v is not a number: %w", x, ErrInvalidPercentage)
		}
		d = decimal.NewFromFloat(x)
	case decimal.Decimal:
		d = x
	}
	if d.IsNegative() || d.GreaterThan(hundred) {
		return Percentage{}, fmt.Errorf("NewPercentage: %s outside [0, 100]: %w", d, ErrInvalidPercentage)
	}
	return Percentage{value: d}, nil
}

// PercentageFromFraction turns a [0, 1] fraction into a percentage.
func PercentageFromFraction(f decimal.Decimal) (Percentage, error) {
	if f.IsNegative() || f.GreaterThan(decimal.NewFromInt(1)) {
		return Percentage{}, fmt.Errorf("PercentageFromFraction: %s outside [0, 1]: %w", f, ErrInvalidPercentage)
	}
	return Percentage{value: f.Mul(hundred)}, nil
}

func ZeroPercent() Percentage    { return Percentage{value: decimal.Zero} }
func HundredPercent() Percentage { return Percentage{value: hundred} }

func (p Percentage) Value() decimal.Decimal { return p.value }

func (p Percentage) Fraction() decimal.Decimal {
	return p.value.Div(hundred)
}

func (p Percentage) Add(other Percentage) (Percentage, error) {
	sum := p.value.Add(other.value)
	if sum.GreaterThan(hundred) {
		return Percentage{}, fmt.Errorf("Percentage.Add: %s + %s exceeds 100: %w", p.value, other.value, ErrInvalidPercentage)
	}
	return Percentage{value: sum}, nil
}

func (p Percentage) Sub(other Percentage) (Percentage, error) {
	diff := p.value.Sub(other.value)
	if diff.IsNegative() {
		return Percentage{}, fmt.Errorf("Percentage.Sub: %s - %s is negative: %w", p.value, other.value, ErrInvalidPercentage)
	}
	return Percentage{value: diff}, nil
}

// ApplyTo returns value% of m, rounded half-up to 2 decimals.
func (p Percentage) ApplyTo(m Money) Money {
	return Money{
		amount:   m.amount.Mul(p.value).Div(hundred).Round(2),
		currency: m.currency,
	}
}

func (p Percentage) Equal(other Percentage) bool {
	return p.value.Equal(other.value)
}

func (p Percentage) IsCloseTo(other Percentage, tolerance decimal.Decimal) bool {
	return p.value.Sub(other.value).Abs().LessThanOrEqual(tolerance)
}

func (p Percentage) String() string {
	return p.value.StringFixed(2) + "%"
}

// SumPercentages fails as soon as the running total exceeds 100.
func SumPercentages(ps ...Percentage) (Percentage, error) {
	total := ZeroPercent()
	for _, p := range ps {
		var err error
		total, err = total.Add(p)
		if err != nil {
			return Percentage{}, fmt.Errorf("SumPercentages: %w", err)
		}
	}
	return total, nil
}
