package billing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

func mustPeriod(t *testing.T, s string) domain.Period {
	t.Helper()
	p, err := domain.ParsePeriod(s)
	require.NoError(t, err)
	return p
}

func mustStatement(t *testing.T, cardID uuid.UUID, start, closing, due time.Time) domain.MonthlyStatement {
	t.Helper()
	s, err := domain.NewMonthlyStatement(uuid.New(), cardID, start, closing, due)
	require.NoError(t, err)
	return *s
}

func TestStatementForPeriod_ReusesExisting(t *testing.T) {
	card := testCard(10, 20)
	feb := mustStatement(t, card.ID, domain.Date(2025, 1, 11), domain.Date(2025, 2, 10), domain.Date(2025, 2, 20))

	got, created, err := StatementForPeriod(card, mustPeriod(t, "202502"), []domain.MonthlyStatement{feb})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, feb.ID, got.ID)
}

func TestStatementForPeriod_ReusesSameClosingDate(t *testing.T) {
	card := testCard(10, 20)
	edited := mustStatement(t, card.ID, domain.Date(2025, 1, 11), domain.Date(2025, 2, 10), domain.Date(2025, 3, 2))

	got, created, err := StatementForPeriod(card, mustPeriod(t, "202502"), []domain.MonthlyStatement{edited})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, edited.ID, got.ID)
}

func TestStatementForPeriod_CreatesAfterPrevious(t *testing.T) {
	card := testCard(10, 20)
	jan := mustStatement(t, card.ID, domain.Date(2024, 12, 11), domain.Date(2025, 1, 10), domain.Date(2025, 1, 20))

	got, created, err := StatementForPeriod(card, mustPeriod(t, "202502"), []domain.MonthlyStatement{jan})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, card.ID, got.CreditCardID)
	assert.Equal(t, domain.Date(2025, 1, 11), got.StartDate)
	assert.Equal(t, domain.Date(2025, 2, 10), got.ClosingDate)
	assert.Equal(t, domain.Date(2025, 2, 20), got.DueDate)
}

func TestStatementForPeriod_CreatesWithoutPrevious(t *testing.T) {
	card := testCard(25, 5)

	got, created, err := StatementForPeriod(card, mustPeriod(t, "202503"), nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.Date(2025, 2, 23), got.StartDate)
	assert.Equal(t, domain.Date(2025, 3, 25), got.ClosingDate)
	assert.Equal(t, domain.Date(2025, 4, 5), got.DueDate)
	assert.Equal(t, "202503", got.PeriodIdentifier().String())
}

func TestMissingStatements(t *testing.T) {
	card := testCard(10, 20)
	existing := []domain.MonthlyStatement{
		mustStatement(t, card.ID, domain.Date(2025, 2, 11), domain.Date(2025, 3, 10), domain.Date(2025, 3, 20)),
	}
	periods := []domain.Period{mustPeriod(t, "202502"), mustPeriod(t, "202503"), mustPeriod(t, "202504")}

	created, err := MissingStatements(card, periods, existing)
	require.NoError(t, err)
	require.Len(t, created, 2)

	assert.Equal(t, "202502", created[0].PeriodIdentifier().String())
	assert.Equal(t, domain.Date(2025, 1, 11), created[0].StartDate)
	assert.Equal(t, "202504", created[1].PeriodIdentifier().String())
	assert.Equal(t, domain.Date(2025, 3, 11), created[1].StartDate)
}
