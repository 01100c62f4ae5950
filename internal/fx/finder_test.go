package fx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

type fakeRates struct {
	rates []domain.ExchangeRate
	err   error
}

func (f *fakeRates) ListRates(_ context.Context, a, b domain.Currency, _ *uuid.UUID) ([]domain.ExchangeRate, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.ExchangeRate
	for _, r := range f.rates {
		if r.Covers(a, b) {
			out = append(out, r)
		}
	}
	return out, nil
}

func usdARS(date time.Time, rate string, t domain.RateType) domain.ExchangeRate {
	return domain.ExchangeRate{
		ID:           uuid.New(),
		Date:         date,
		FromCurrency: domain.CurrencyUSD,
		ToCurrency:   domain.CurrencyARS,
		Rate:         decimal.RequireFromString(rate),
		RateType:     t,
	}
}

func rateType(t domain.RateType) *domain.RateType { return &t }

func TestSelectRate(t *testing.T) {
	day := domain.Date(2025, time.March, 10)
	officialOnDay := usdARS(day, "1050", domain.RateTypeOfficial)
	blueOnDay := usdARS(day, "1200", domain.RateTypeBlue)
	mepBefore := usdARS(day.AddDate(0, 0, -3), "1150", domain.RateTypeMEP)
	mepAfter := usdARS(day.AddDate(0, 0, 3), "1160", domain.RateTypeMEP)
	customOnDay := usdARS(day, "1100", domain.RateTypeCustom)
	cclFar := usdARS(day.AddDate(0, 0, -20), "1300", domain.RateTypeCCL)
	cclNear := usdARS(day.AddDate(0, 0, 5), "1310", domain.RateTypeCCL)

	tests := []struct {
		name      string
		rates     []domain.ExchangeRate
		preferred *domain.RateType
		want      *domain.ExchangeRate
	}{
		{
			name:      "preferred type on date",
			rates:     []domain.ExchangeRate{officialOnDay, blueOnDay},
			preferred: rateType(domain.RateTypeBlue),
			want:      &blueOnDay,
		},
		{
			name:      "preferred type nearest date, earlier wins ties",
			rates:     []domain.ExchangeRate{officialOnDay, mepAfter, mepBefore},
			preferred: rateType(domain.RateTypeMEP),
			want:      &mepBefore,
		},
		{
			name:      "priority when preferred missing",
			rates:     []domain.ExchangeRate{blueOnDay, officialOnDay, customOnDay},
			preferred: rateType(domain.RateTypeCCL),
			want:      &customOnDay,
		},
		{
			name:  "official before blue",
			rates: []domain.ExchangeRate{blueOnDay, officialOnDay},
			want:  &officialOnDay,
		},
		{
			name:  "nearest of any type",
			rates: []domain.ExchangeRate{cclFar, cclNear},
			want:  &cclNear,
		},
		{
			name: "no candidates",
			want: nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SelectRate(tc.rates, day, tc.preferred)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tc.want.ID, got.ID)
		})
	}
}

func TestFinder_FindExchangeRate(t *testing.T) {
	ctx := context.Background()
	day := domain.Date(2025, time.March, 10)
	official := usdARS(day, "1050", domain.RateTypeOfficial)
	eurRate := domain.ExchangeRate{
		ID:           uuid.New(),
		Date:         day,
		FromCurrency: domain.CurrencyUSD,
		ToCurrency:   domain.CurrencyEUR,
		Rate:         decimal.RequireFromString("0.92"),
		RateType:     domain.RateTypeOfficial,
	}
	f := NewFinder(&fakeRates{rates: []domain.ExchangeRate{official, eurRate}})

	t.Run("either orientation", func(t *testing.T) {
		got, err := f.FindExchangeRate(ctx, day.Add(15*time.Hour), domain.CurrencyARS, domain.CurrencyUSD, nil, nil)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, official.ID, got.ID)
	})

	t.Run("no rate for pair", func(t *testing.T) {
		got, err := f.FindExchangeRate(ctx, day, domain.CurrencyEUR, domain.CurrencyARS, nil, nil)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("same currency", func(t *testing.T) {
		_, err := f.FindExchangeRate(ctx, day, domain.CurrencyUSD, domain.CurrencyUSD, nil, nil)
		require.ErrorIs(t, err, domain.ErrInvalidCurrency)
	})

	t.Run("source error", func(t *testing.T) {
		boom := errors.New("connection refused")
		_, err := NewFinder(&fakeRates{err: boom}).FindExchangeRate(ctx, day, domain.CurrencyUSD, domain.CurrencyARS, nil, nil)
		require.ErrorIs(t, err, boom)
	})
}
