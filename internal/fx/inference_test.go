package fx

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

func money(t *testing.T, amount string, c domain.Currency) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(amount, c)
	require.NoError(t, err)
	return m
}

func TestInferRate(t *testing.T) {
	tests := []struct {
		name      string
		original  domain.Money
		converted domain.Money
		wantFrom  domain.Currency
		wantTo    domain.Currency
		wantRate  string
	}{
		{
			name:      "usd purchase on ars card",
			original:  money(t, "100", domain.CurrencyUSD),
			converted: money(t, "135000", domain.CurrencyARS),
			wantFrom:  domain.CurrencyUSD,
			wantTo:    domain.CurrencyARS,
			wantRate:  "1350",
		},
		{
			name:      "ars purchase on usd card keeps canonical orientation",
			original:  money(t, "135000", domain.CurrencyARS),
			converted: money(t, "100", domain.CurrencyUSD),
			wantFrom:  domain.CurrencyUSD,
			wantTo:    domain.CurrencyARS,
			wantRate:  "1350",
		},
		{
			name:      "rounded to six places",
			original:  money(t, "3", domain.CurrencyUSD),
			converted: money(t, "1", domain.CurrencyEUR),
			wantFrom:  domain.CurrencyUSD,
			wantTo:    domain.CurrencyEUR,
			wantRate:  "0.333333",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			from, to, rate, err := InferRate(tc.original, tc.converted)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFrom, from)
			assert.Equal(t, tc.wantTo, to)
			assert.True(t, decimal.RequireFromString(tc.wantRate).Equal(rate), "got %s", rate)
		})
	}
}

func TestInferRate_Errors(t *testing.T) {
	tests := []struct {
		name      string
		original  domain.Money
		converted domain.Money
	}{
		{"same currency", money(t, "10", domain.CurrencyUSD), money(t, "10", domain.CurrencyUSD)},
		{"zero original", money(t, "0", domain.CurrencyUSD), money(t, "10", domain.CurrencyARS)},
		{"negative converted", money(t, "10", domain.CurrencyUSD), money(t, "-10", domain.CurrencyARS)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, err := InferRate(tc.original, tc.converted)
			require.ErrorIs(t, err, domain.ErrInvalidCalculation)
		})
	}
}

func TestNewInferredRate(t *testing.T) {
	userID := uuid.New()
	date := time.Date(2025, time.May, 3, 15, 4, 0, 0, time.UTC)

	r, err := NewInferredRate(date, money(t, "100", domain.CurrencyUSD), money(t, "135000", domain.CurrencyARS), userID, date)
	require.NoError(t, err)

	assert.Equal(t, domain.RateTypeInferred, r.RateType)
	assert.Equal(t, domain.Date(2025, time.May, 3), r.Date)
	require.NotNil(t, r.Source)
	assert.Equal(t, "calculated", *r.Source)
	require.NotNil(t, r.Notes)
	assert.Equal(t, "Inferred from purchase: 100.00 USD -> 135000.00 ARS", *r.Notes)
	require.NotNil(t, r.CreatedByUserID)
	assert.Equal(t, userID, *r.CreatedByUserID)
	assert.NotEqual(t, uuid.Nil, r.ID)
}
