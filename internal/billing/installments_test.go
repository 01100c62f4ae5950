package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

func testCard(closeDay, dueDay int) *domain.CreditCard {
	return &domain.CreditCard{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		PaymentMethodID: uuid.New(),
		Name:            "Visa",
		Bank:            "Galicia",
		LastFourDigits:  "4242",
		Currency:        domain.CurrencyARS,
		BillingCloseDay: closeDay,
		PaymentDueDay:   dueDay,
	}
}

func money(t *testing.T, amount string, c domain.Currency) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(amount, c)
	require.NoError(t, err)
	return m
}

func TestGenerateInstallments_RemainderOnFirst(t *testing.T) {
	installments, err := GenerateInstallments(InstallmentRequest{
		PurchaseID:   uuid.New(),
		Total:        money(t, "10000.00", domain.CurrencyARS),
		Count:        3,
		PurchaseDate: domain.Date(2025, time.January, 5),
		Card:         testCard(10, 20),
	})
	require.NoError(t, err)
	require.Len(t, installments, 3)

	var amounts []string
	for _, inst := range installments {
		amounts = append(amounts, inst.Amount.StringFixed())
	}
	assert.Equal(t, []string{"3334.00", "3333.00", "3333.00"}, amounts)
}

func TestGenerateInstallments_PeriodsAndDueDates(t *testing.T) {
	installments, err := GenerateInstallments(InstallmentRequest{
		PurchaseID:   uuid.New(),
		Total:        money(t, "900", domain.CurrencyARS),
		Count:        3,
		PurchaseDate: domain.Date(2025, time.January, 15),
		Card:         testCard(10, 20),
	})
	require.NoError(t, err)

	var periods []string
	var dues []time.Time
	for _, inst := range installments {
		periods = append(periods, inst.BillingPeriod.String())
		dues = append(dues, inst.DueDate)
	}
	assert.Equal(t, []string{"202502", "202503", "202504"}, periods)
	assert.Equal(t, []time.Time{
		domain.Date(2025, time.February, 20),
		domain.Date(2025, time.March, 20),
		domain.Date(2025, time.April, 20),
	}, dues)
}

func TestGenerateInstallments_SumsToTotal(t *testing.T) {
	card := testCard(25, 5)
	totals := []string{"0.07", "1", "99.99", "1000.01", "123456.78", "10000"}

	for _, total := range totals {
		for n := 1; n <= 24; n++ {
			req := InstallmentRequest{
				PurchaseID:   uuid.New(),
				Total:        money(t, total, domain.CurrencyARS),
				Count:        n,
				PurchaseDate: domain.Date(2024, time.November, 28),
				Card:         card,
			}
			installments, err := GenerateInstallments(req)
			if total == "0.07" && n > 7 {
				require.ErrorIs(t, err, domain.ErrInvalidCalculation)
				continue
			}
			require.NoError(t, err, "total %s n %d", total, n)
			require.Len(t, installments, n)

			sum := decimal.Zero
			prev := installments[0].BillingPeriod.Previous()
			for i, inst := range installments {
				sum = sum.Add(inst.Amount.Amount())
				assert.Equal(t, i+1, inst.InstallmentNumber)
				assert.Equal(t, n, inst.TotalInstallments)
				assert.Equal(t, prev.Next(), inst.BillingPeriod, "periods are consecutive")
				assert.True(t, inst.Amount.IsPositive())
				prev = inst.BillingPeriod
			}
			assert.True(t, sum.Equal(req.Total.Amount()), "total %s n %d: got %s", total, n, sum)
		}
	}
}

func TestGenerateInstallments_DualCurrency(t *testing.T) {
	rateID := uuid.New()
	original := money(t, "100.00", domain.CurrencyUSD)

	installments, err := GenerateInstallments(InstallmentRequest{
		PurchaseID:     uuid.New(),
		Total:          money(t, "135000.00", domain.CurrencyARS),
		Count:          3,
		PurchaseDate:   domain.Date(2025, time.March, 1),
		Card:           testCard(10, 20),
		Original:       &original,
		ExchangeRateID: &rateID,
	})
	require.NoError(t, err)

	var originals []string
	for _, inst := range installments {
		require.NotNil(t, inst.OriginalAmount)
		originals = append(originals, inst.OriginalAmount.StringFixed())
		assert.Equal(t, &rateID, inst.ExchangeRateID)
		assert.Equal(t, "45000.00", inst.Amount.StringFixed())
	}
	assert.Equal(t, []string{"34.00", "33.00", "33.00"}, originals)
}

func TestGenerateInstallments_Errors(t *testing.T) {
	tests := []struct {
		name  string
		total string
		count int
	}{
		{name: "zero installments", total: "100", count: 0},
		{name: "negative installments", total: "100", count: -2},
		{name: "zero total", total: "0", count: 3},
		{name: "negative total", total: "-10", count: 3},
		{name: "below one cent per installment", total: "0.02", count: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			installments, err := GenerateInstallments(InstallmentRequest{
				PurchaseID:   uuid.New(),
				Total:        money(t, tc.total, domain.CurrencyARS),
				Count:        tc.count,
				PurchaseDate: domain.Date(2025, time.January, 1),
				Card:         testCard(10, 20),
			})
			require.ErrorIs(t, err, domain.ErrInvalidCalculation)
			assert.Nil(t, installments)
		})
	}
}

func TestGenerateInstallments_SmallTotalUsesCents(t *testing.T) {
	installments, err := GenerateInstallments(InstallmentRequest{
		PurchaseID:   uuid.New(),
		Total:        money(t, "0.05", domain.CurrencyUSD),
		Count:        3,
		PurchaseDate: domain.Date(2025, time.January, 1),
		Card:         testCard(10, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.03", installments[0].Amount.StringFixed())
	assert.Equal(t, "0.01", installments[1].Amount.StringFixed())
	assert.Equal(t, "0.01", installments[2].Amount.StringFixed())
}
