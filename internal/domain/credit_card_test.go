package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCard(closeDay, dueDay int) *CreditCard {
	return &CreditCard{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		PaymentMethodID: uuid.New(),
		Name:            "Visa",
		Bank:            "Galicia",
		LastFourDigits:  "1234",
		Currency:        CurrencyARS,
		BillingCloseDay: closeDay,
		PaymentDueDay:   dueDay,
	}
}

func TestCreditCardValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *CreditCard)
	}{
		{name: "close day zero", modify: func(c *CreditCard) { c.BillingCloseDay = 0 }},
		{name: "close day 32", modify: func(c *CreditCard) { c.BillingCloseDay = 32 }},
		{name: "due day zero", modify: func(c *CreditCard) { c.PaymentDueDay = 0 }},
		{name: "due day 32", modify: func(c *CreditCard) { c.PaymentDueDay = 32 }},
		{name: "blank name", modify: func(c *CreditCard) { c.Name = "  " }},
		{name: "short last four", modify: func(c *CreditCard) { c.LastFourDigits = "123" }},
		{name: "non numeric last four", modify: func(c *CreditCard) { c.LastFourDigits = "12a4" }},
	}

	require.NoError(t, testCard(10, 20).Validate())

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := testCard(10, 20)
			tc.modify(c)
			require.ErrorIs(t, c.Validate(), ErrInvalidEntity)
		})
	}
}

func TestCreditCardBillingPeriod(t *testing.T) {
	card := testCard(10, 20)

	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{name: "before close", date: Date(2025, time.January, 5), want: "202501"},
		{name: "on close day", date: Date(2025, time.January, 10), want: "202501"},
		{name: "after close", date: Date(2025, time.January, 15), want: "202502"},
		{name: "december rollover", date: Date(2024, time.December, 11), want: "202501"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, card.BillingPeriod(tc.date).String())
		})
	}
}

func TestCreditCardDueDate(t *testing.T) {
	tests := []struct {
		name     string
		closeDay int
		dueDay   int
		period   string
		want     time.Time
	}{
		{name: "due after close same month", closeDay: 10, dueDay: 20, period: "202502", want: Date(2025, time.February, 20)},
		{name: "due before close next month", closeDay: 25, dueDay: 5, period: "202501", want: Date(2025, time.February, 5)},
		{name: "clamped to february", closeDay: 28, dueDay: 31, period: "202502", want: Date(2025, time.February, 28)},
		{name: "leap year", closeDay: 28, dueDay: 30, period: "202402", want: Date(2024, time.February, 29)},
		{name: "next month clamp", closeDay: 31, dueDay: 30, period: "202401", want: Date(2024, time.February, 29)},
		{name: "year rollover", closeDay: 20, dueDay: 10, period: "202412", want: Date(2025, time.January, 10)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := ParsePeriod(tc.period)
			require.NoError(t, err)
			assert.Equal(t, tc.want, testCard(tc.closeDay, tc.dueDay).DueDate(p))
		})
	}
}

func TestCreditCardClosingDate(t *testing.T) {
	card := testCard(31, 10)
	p, err := ParsePeriod("202504")
	require.NoError(t, err)

	closing := card.ClosingDate(p)
	assert.Equal(t, Date(2025, time.April, 30), closing)
	assert.Equal(t, Date(2025, time.May, 10), card.DueDateAfterClosing(closing))
}
