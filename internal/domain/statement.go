package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MonthlyStatement struct {
	ID           uuid.UUID
	CreditCardID uuid.UUID
	StartDate    time.Time
	ClosingDate  time.Time
	DueDate      time.Time
}

// NewMonthlyStatement validates start < closing <= due. Dates are truncated
// to calendar days.
func NewMonthlyStatement(id, creditCardID uuid.UUID, start, closing, due time.Time) (*MonthlyStatement, error) {
	start, closing, due = DateOf(start), DateOf(closing), DateOf(due)
	if !start.Before(closing) {
		return nil, fmt.Errorf("NewMonthlyStatement: start_date %s must be before closing_date %s: %w",
			start.Format(time.DateOnly), closing.Format(time.DateOnly), ErrInvalidStatementDateRange)
	}
	if closing.After(due) {
		return nil, fmt.Errorf("NewMonthlyStatement: closing_date %s must be on or before due_date %s: %w",
			closing.Format(time.DateOnly), due.Format(time.DateOnly), ErrInvalidStatementDateRange)
	}
	return &MonthlyStatement{
		ID:           id,
		CreditCardID: creditCardID,
		StartDate:    start,
		ClosingDate:  closing,
		DueDate:      due,
	}, nil
}

func (s *MonthlyStatement) IncludesPurchaseDate(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(s.StartDate) && !d.After(s.ClosingDate)
}

// PeriodIdentifier names the statement after the month charges were
// incurred: the month before the due date when payment falls in a later month
// than the closing, the closing month otherwise.
func (s *MonthlyStatement) PeriodIdentifier() Period {
	closing, due := PeriodOf(s.ClosingDate), PeriodOf(s.DueDate)
	if due.After(closing) {
		return due.Previous()
	}
	return closing
}

func (s *MonthlyStatement) SameAs(other *MonthlyStatement) bool {
	return other != nil && s.ID == other.ID
}

func (s *MonthlyStatement) DurationDays() int {
	return int(s.ClosingDate.Sub(s.StartDate).Hours()/24) + 1
}
