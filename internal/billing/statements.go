package billing

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

const defaultCycleDays = 30

// StatementForPeriod returns the card statement for period, matched by
// period identifier or closing date. When none exists it builds a new,
// unsaved statement starting the day after the previous statement closed, or
// defaultCycleDays before its own closing when there is no previous one.
func StatementForPeriod(card *domain.CreditCard, period domain.Period, existing []domain.MonthlyStatement) (*domain.MonthlyStatement, bool, error) {
	closing := card.ClosingDate(period)
	due := card.DueDateAfterClosing(closing)

	for i := range existing {
		s := &existing[i]
		if s.PeriodIdentifier() == period || s.ClosingDate.Equal(closing) {
			return s, false, nil
		}
	}

	sorted := make([]domain.MonthlyStatement, len(existing))
	copy(sorted, existing)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ClosingDate.Before(sorted[j].ClosingDate) })

	start := closing.AddDate(0, 0, -defaultCycleDays)
	for _, s := range sorted {
		if !s.ClosingDate.Before(closing) {
			break
		}
		start = s.ClosingDate.AddDate(0, 0, 1)
	}

	stmt, err := domain.NewMonthlyStatement(uuid.New(), card.ID, start, closing, due)
	if err != nil {
		return nil, false, fmt.Errorf("StatementForPeriod: %s: %w", period, err)
	}
	return stmt, true, nil
}

// MissingStatements returns the statements that must be created so every
// period has one. Statements created for earlier periods are visible to
// later ones.
func MissingStatements(card *domain.CreditCard, periods []domain.Period, existing []domain.MonthlyStatement) ([]domain.MonthlyStatement, error) {
	known := make([]domain.MonthlyStatement, len(existing), len(existing)+len(periods))
	copy(known, existing)

	var created []domain.MonthlyStatement
	for _, p := range periods {
		stmt, isNew, err := StatementForPeriod(card, p, known)
		if err != nil {
			return nil, fmt.Errorf("MissingStatements: %w", err)
		}
		if isNew {
			known = append(known, *stmt)
			created = append(created, *stmt)
		}
	}
	return created, nil
}
