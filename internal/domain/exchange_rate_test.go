package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRateType(t *testing.T) {
	for _, in := range []string{"official", "OFFICIAL", " Blue ", "mep", "CCL", "custom", "inferred"} {
		rt, err := ParseRateType(in)
		require.NoError(t, err, in)
		assert.True(t, rt.IsValid())
	}

	_, err := ParseRateType("tourist")
	require.ErrorIs(t, err, ErrInvalidRateType)
}

func TestExchangeRateValidate(t *testing.T) {
	valid := func() *ExchangeRate {
		return &ExchangeRate{
			ID:           uuid.New(),
			Date:         Date(2025, time.March, 1),
			FromCurrency: CurrencyUSD,
			ToCurrency:   CurrencyARS,
			Rate:         decimal.NewFromInt(1050),
			RateType:     RateTypeOfficial,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		modify  func(r *ExchangeRate)
		wantErr error
	}{
		{name: "zero rate", modify: func(r *ExchangeRate) { r.Rate = decimal.Zero }, wantErr: ErrInvalidEntity},
		{name: "negative rate", modify: func(r *ExchangeRate) { r.Rate = decimal.NewFromInt(-1) }, wantErr: ErrInvalidEntity},
		{name: "same currency", modify: func(r *ExchangeRate) { r.ToCurrency = CurrencyUSD }, wantErr: ErrInvalidEntity},
		{name: "unknown type", modify: func(r *ExchangeRate) { r.RateType = "TOURIST" }, wantErr: ErrInvalidRateType},
		{name: "unknown currency", modify: func(r *ExchangeRate) { r.FromCurrency = "BRL" }, wantErr: ErrInvalidCurrency},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := valid()
			tc.modify(r)
			require.ErrorIs(t, r.Validate(), tc.wantErr)
		})
	}
}

func TestExchangeRateConvert(t *testing.T) {
	r := &ExchangeRate{FromCurrency: CurrencyUSD, ToCurrency: CurrencyARS, Rate: decimal.NewFromInt(1000)}

	ars, err := r.Convert(mustMoney(t, "12.5", CurrencyUSD))
	require.NoError(t, err)
	assert.Equal(t, "12500.00 ARS", ars.String())

	usd, err := r.Convert(mustMoney(t, "2500", CurrencyARS))
	require.NoError(t, err)
	assert.Equal(t, "2.50 USD", usd.String())

	_, err = r.Convert(mustMoney(t, "1", CurrencyEUR))
	require.ErrorIs(t, err, ErrCurrencyMismatch)

	f, err := r.Factor(CurrencyARS, CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, f.Equal(decimal.RequireFromString("0.001")))
	assert.True(t, r.Covers(CurrencyARS, CurrencyUSD))
	assert.False(t, r.Covers(CurrencyARS, CurrencyEUR))
}

func TestCanonicalPair(t *testing.T) {
	from, to := CanonicalPair(CurrencyARS, CurrencyUSD)
	assert.Equal(t, CurrencyUSD, from)
	assert.Equal(t, CurrencyARS, to)

	from, to = CanonicalPair(CurrencyEUR, CurrencyUSD)
	assert.Equal(t, CurrencyUSD, from)
	assert.Equal(t, CurrencyEUR, to)

	c, err := ParseCurrency("ars")
	require.NoError(t, err)
	assert.Equal(t, CurrencyARS, c)

	_, err = ParseCurrency("GBP")
	require.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestBudgetExpenseValidate(t *testing.T) {
	purchaseID, installmentID := uuid.New(), uuid.New()
	base := func() *BudgetExpense {
		return &BudgetExpense{
			ID:           uuid.New(),
			BudgetID:     uuid.New(),
			PurchaseID:   &purchaseID,
			PaidByUserID: uuid.New(),
			SplitType:    SplitTypeEqual,
			Amount:       mustMoney(t, "100", CurrencyARS),
			Description:  "Groceries",
		}
	}
	require.NoError(t, base().Validate())

	both := base()
	both.InstallmentID = &installmentID
	require.ErrorIs(t, both.Validate(), ErrInvalidEntity)

	neither := base()
	neither.PurchaseID = nil
	require.ErrorIs(t, neither.Validate(), ErrInvalidEntity)

	blank := base()
	blank.Description = " "
	require.ErrorIs(t, blank.Validate(), ErrInvalidEntity)

	st, err := ParseSplitType("full_single")
	require.NoError(t, err)
	assert.Equal(t, SplitTypeFullSingle, st)
	_, err = ParseSplitType("half")
	require.ErrorIs(t, err, ErrInvalidSplitType)
}
