package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

type reconcileFixture struct {
	card       *domain.CreditCard
	jan        domain.MonthlyStatement
	feb        domain.MonthlyStatement
	mar        domain.MonthlyStatement
	autoJan    domain.Installment // unpinned, 202501, bought Jan 5
	autoFeb    domain.Installment // unpinned, 202502, bought Jan 15
	pinnedJan  domain.Installment // pinned to jan, 202501, bought Dec 20
	pinnedMar  domain.Installment // pinned to mar, 202501, bought Jan 8
	rows       []CardInstallment
	statements []domain.MonthlyStatement
}

func newReconcileFixture(t *testing.T) *reconcileFixture {
	t.Helper()
	f := &reconcileFixture{card: testCard(10, 20)}
	f.jan = mustStatement(t, f.card.ID, domain.Date(2024, 12, 11), domain.Date(2025, 1, 10), domain.Date(2025, 1, 20))
	f.feb = mustStatement(t, f.card.ID, domain.Date(2025, 1, 11), domain.Date(2025, 2, 10), domain.Date(2025, 2, 20))
	f.mar = mustStatement(t, f.card.ID, domain.Date(2025, 2, 11), domain.Date(2025, 3, 10), domain.Date(2025, 3, 20))
	f.statements = []domain.MonthlyStatement{f.mar, f.jan, f.feb}

	inst := func(period string, pin *uuid.UUID) domain.Installment {
		return domain.Installment{
			ID:                          uuid.New(),
			PurchaseID:                  uuid.New(),
			InstallmentNumber:           1,
			TotalInstallments:           1,
			Amount:                      money(t, "100", domain.CurrencyARS),
			BillingPeriod:               mustPeriod(t, period),
			ManuallyAssignedStatementID: pin,
		}
	}
	janID, marID := f.jan.ID, f.mar.ID
	f.autoJan = inst("202501", nil)
	f.autoFeb = inst("202502", nil)
	f.pinnedJan = inst("202501", &janID)
	f.pinnedMar = inst("202501", &marID)

	f.rows = []CardInstallment{
		{Installment: f.autoJan, PurchaseDate: domain.Date(2025, 1, 5)},
		{Installment: f.autoFeb, PurchaseDate: domain.Date(2025, 1, 15)},
		{Installment: f.pinnedJan, PurchaseDate: domain.Date(2024, 12, 20)},
		{Installment: f.pinnedMar, PurchaseDate: domain.Date(2025, 1, 8)},
	}
	return f
}

func byID(installments []domain.Installment) map[uuid.UUID]domain.Installment {
	out := make(map[uuid.UUID]domain.Installment, len(installments))
	for _, i := range installments {
		out[i.ID] = i
	}
	return out
}

func TestReconcileStatementDates_SamePeriod(t *testing.T) {
	f := newReconcileFixture(t)

	res, err := ReconcileStatementDates(StatementDatesInput{
		Statement:      f.jan,
		ClosingDate:    domain.Date(2025, 1, 12),
		DueDate:        domain.Date(2025, 1, 20),
		CardStatements: f.statements,
		Installments:   f.rows,
	})
	require.NoError(t, err)

	assert.Equal(t, f.jan.StartDate, res.Statement.StartDate, "zero start keeps the current one")
	assert.Equal(t, domain.Date(2025, 1, 12), res.Statement.ClosingDate)

	changed := byID(res.Installments)
	require.Len(t, changed, 2)

	got := changed[f.autoJan.ID]
	require.NotNil(t, got.ManuallyAssignedStatementID)
	assert.Equal(t, f.jan.ID, *got.ManuallyAssignedStatementID, "visible installment stays on the edited statement")
	assert.Equal(t, "202501", got.BillingPeriod.String())

	got = changed[f.autoFeb.ID]
	require.NotNil(t, got.ManuallyAssignedStatementID)
	assert.Equal(t, f.feb.ID, *got.ManuallyAssignedStatementID, "next statement's installment is protected")

	require.NotNil(t, res.Next)
	assert.Equal(t, f.feb.ID, res.Next.ID)
	assert.Equal(t, domain.Date(2025, 1, 13), res.Next.StartDate)
	assert.Equal(t, f.feb.ClosingDate, res.Next.ClosingDate)
}

func TestReconcileStatementDates_PeriodShift(t *testing.T) {
	f := newReconcileFixture(t)

	res, err := ReconcileStatementDates(StatementDatesInput{
		Statement:      f.jan,
		ClosingDate:    domain.Date(2025, 2, 2),
		DueDate:        domain.Date(2025, 2, 12),
		CardStatements: f.statements,
		Installments:   f.rows,
	})
	require.NoError(t, err)
	assert.Equal(t, "202502", res.Statement.PeriodIdentifier().String())

	changed := byID(res.Installments)
	require.Len(t, changed, 4)

	got := changed[f.autoJan.ID]
	assert.Equal(t, "202502", got.BillingPeriod.String())
	require.NotNil(t, got.ManuallyAssignedStatementID)
	assert.Equal(t, f.jan.ID, *got.ManuallyAssignedStatementID)

	got = changed[f.pinnedJan.ID]
	assert.Equal(t, "202502", got.BillingPeriod.String())
	assert.Equal(t, f.jan.ID, *got.ManuallyAssignedStatementID)

	got = changed[f.pinnedMar.ID]
	assert.Equal(t, "202502", got.BillingPeriod.String())
	assert.Equal(t, f.mar.ID, *got.ManuallyAssignedStatementID, "pins elsewhere survive the move")

	got = changed[f.autoFeb.ID]
	assert.Equal(t, "202502", got.BillingPeriod.String())
	assert.Equal(t, f.feb.ID, *got.ManuallyAssignedStatementID)

	require.NotNil(t, res.Next)
	assert.Equal(t, domain.Date(2025, 2, 3), res.Next.StartDate)
}

func TestReconcileStatementDates_SameDatesIsNoOp(t *testing.T) {
	f := newReconcileFixture(t)

	res, err := ReconcileStatementDates(StatementDatesInput{
		Statement:      f.jan,
		StartDate:      f.jan.StartDate,
		ClosingDate:    f.jan.ClosingDate,
		DueDate:        f.jan.DueDate,
		CardStatements: f.statements,
		Installments:   f.rows,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Installments)
	assert.Nil(t, res.Next)
	assert.Equal(t, f.jan, res.Statement)
}

func TestReconcileStatementDates_LastStatement(t *testing.T) {
	f := newReconcileFixture(t)

	res, err := ReconcileStatementDates(StatementDatesInput{
		Statement:      f.mar,
		ClosingDate:    domain.Date(2025, 3, 12),
		DueDate:        domain.Date(2025, 3, 22),
		CardStatements: f.statements,
		Installments:   f.rows,
	})
	require.NoError(t, err)
	assert.Nil(t, res.Next)

	changed := byID(res.Installments)
	assert.Empty(t, changed, "only installment on mar is already pinned there")
}

func TestReconcileStatementDates_Errors(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		closing time.Time
		due     time.Time
	}{
		{name: "closing after due", closing: domain.Date(2025, 1, 25), due: domain.Date(2025, 1, 20)},
		{name: "start after closing", start: domain.Date(2025, 1, 11), closing: domain.Date(2025, 1, 10), due: domain.Date(2025, 1, 20)},
		{name: "swallows next statement", closing: domain.Date(2025, 2, 15), due: domain.Date(2025, 2, 25)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newReconcileFixture(t)
			res, err := ReconcileStatementDates(StatementDatesInput{
				Statement:      f.jan,
				StartDate:      tc.start,
				ClosingDate:    tc.closing,
				DueDate:        tc.due,
				CardStatements: f.statements,
				Installments:   f.rows,
			})
			require.ErrorIs(t, err, domain.ErrInvalidStatementDateRange)
			assert.Nil(t, res)
		})
	}
}
