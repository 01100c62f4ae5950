package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RateType string

const (
	RateTypeOfficial RateType = "OFFICIAL"
	RateTypeBlue     RateType = "BLUE"
	RateTypeMEP      RateType = "MEP"
	RateTypeCCL      RateType = "CCL"
	RateTypeCustom   RateType = "CUSTOM"
	RateTypeInferred RateType = "INFERRED"
)

func (t RateType) IsValid() bool {
	switch t {
	case RateTypeOfficial, RateTypeBlue, RateTypeMEP, RateTypeCCL, RateTypeCustom, RateTypeInferred:
		return true
	}
	return false
}

func ParseRateType(s string) (RateType, error) {
	t := RateType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("ParseRateType: %q: %w", s, ErrInvalidRateType)
	}
	return t, nil
}

// ExchangeRate is immutable once stored. Rate is the amount of ToCurrency
// bought by one unit of FromCurrency.
type ExchangeRate struct {
	ID              uuid.UUID
	Date            time.Time
	FromCurrency    Currency
	ToCurrency      Currency
	Rate            decimal.Decimal
	RateType        RateType
	Source          *string
	Notes           *string
	CreatedByUserID *uuid.UUID
	CreatedAt       time.Time
}

func (r *ExchangeRate) Validate() error {
	if !r.FromCurrency.IsValid() || !r.ToCurrency.IsValid() {
		return fmt.Errorf("ExchangeRate: %s/%s: %w", r.FromCurrency, r.ToCurrency, ErrInvalidCurrency)
	}
	if r.FromCurrency == r.ToCurrency {
		return fmt.Errorf("ExchangeRate: from_currency and to_currency must be different: %w", ErrInvalidEntity)
	}
	if !r.Rate.IsPositive() {
		return fmt.Errorf("ExchangeRate: rate must be positive, got %s: %w", r.Rate, ErrInvalidEntity)
	}
	if !r.RateType.IsValid() {
		return fmt.Errorf("ExchangeRate: %q: %w", r.RateType, ErrInvalidRateType)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("ExchangeRate: date is required: %w", ErrInvalidEntity)
	}
	return nil
}

func (r *ExchangeRate) Covers(a, b Currency) bool {
	return (r.FromCurrency == a && r.ToCurrency == b) || (r.FromCurrency == b && r.ToCurrency == a)
}

// Factor returns the multiplier taking an amount in from to an amount in to,
// which is the reciprocal of Rate for the reverse direction.
func (r *ExchangeRate) Factor(from, to Currency) (decimal.Decimal, error) {
	switch {
	case from == r.FromCurrency && to == r.ToCurrency:
		return r.Rate, nil
	case from == r.ToCurrency && to == r.FromCurrency:
		return decimal.NewFromInt(1).Div(r.Rate), nil
	}
	return decimal.Decimal{}, fmt.Errorf("ExchangeRate.Factor: rate %s/%s cannot convert %s to %s: %w",
		r.FromCurrency, r.ToCurrency, from, to, ErrCurrencyMismatch)
}

// Convert multiplies amounts in FromCurrency and divides amounts in
// ToCurrency. The result is not rounded.
func (r *ExchangeRate) Convert(m Money) (Money, error) {
	switch m.Currency() {
	case r.FromCurrency:
		return Money{amount: m.amount.Mul(r.Rate), currency: r.ToCurrency}, nil
	case r.ToCurrency:
		return Money{amount: m.amount.Div(r.Rate), currency: r.FromCurrency}, nil
	}
	return Money{}, fmt.Errorf("ExchangeRate.Convert: rate %s/%s cannot convert %s: %w",
		r.FromCurrency, r.ToCurrency, m.Currency(), ErrCurrencyMismatch)
}
