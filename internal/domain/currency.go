package domain

import (
	"fmt"
	"strings"
)

type Currency string

const (
	CurrencyARS Currency = "ARS"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyARS, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("ParseCurrency: %q: %w", s, ErrInvalidCurrency)
	}
	return c, nil
}

// rank orders currencies for canonical exchange rate storage: a pair is
// always stored from the lower rank to the higher one.
func (c Currency) rank() int {
	switch c {
	case CurrencyUSD:
		return 0
	case CurrencyEUR:
		return 1
	case CurrencyARS:
		return 2
	}
	return 3
}

// CanonicalPair returns the two currencies in storage orientation.
func CanonicalPair(a, b Currency) (from, to Currency) {
	if a.rank() <= b.rank() {
		return a, b
	}
	return b, a
}
