package billing

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

// CardInstallment pairs an installment with the date of its purchase.
type CardInstallment struct {
	Installment  domain.Installment
	PurchaseDate time.Time
}

type StatementDatesInput struct {
	Statement domain.MonthlyStatement
	// StartDate keeps the current start when zero.
	StartDate   time.Time
	ClosingDate time.Time
	DueDate     time.Time

	// CardStatements holds every statement of the card, the edited one
	// included. Installments holds every installment of the card.
	CardStatements []domain.MonthlyStatement
	Installments   []CardInstallment
}

type StatementDatesResult struct {
	Statement domain.MonthlyStatement
	// Next is set only when the following statement's start date moved.
	Next *domain.MonthlyStatement
	// Installments lists only the rows that changed, in their final state.
	Installments []domain.Installment
}

// ReconcileStatementDates applies new dates to a statement and computes the
// installment and neighbour changes that keep every installment on the
// statement it was visible on:
//
//  1. snapshot the installments included in the edited statement
//  2. pin the unpinned installments of the next statement to it
//  3. build the statement with the new dates
//  4. when the period moved, move the old window's installments of the old
//     period to the new one, keeping their pins
//  5. pin the snapshot back to the edited statement
//  6. start the next statement the day after the new closing date
//
// Nothing is returned unless every step succeeds.
func ReconcileStatementDates(in StatementDatesInput) (*StatementDatesResult, error) {
	old := in.Statement

	start := in.StartDate
	if start.IsZero() {
		start = old.StartDate
	}
	updated, err := domain.NewMonthlyStatement(old.ID, old.CreditCardID, start, in.ClosingDate, in.DueDate)
	if err != nil {
		return nil, fmt.Errorf("ReconcileStatementDates: %w", err)
	}

	if updated.StartDate.Equal(old.StartDate) && updated.ClosingDate.Equal(old.ClosingDate) && updated.DueDate.Equal(old.DueDate) {
		return &StatementDatesResult{Statement: old}, nil
	}

	rows := make(map[uuid.UUID]*domain.Installment, len(in.Installments))
	order := make([]uuid.UUID, 0, len(in.Installments))
	for _, ci := range in.Installments {
		inst := ci.Installment
		rows[inst.ID] = &inst
		order = append(order, inst.ID)
	}

	var snapshot []uuid.UUID
	for _, id := range order {
		if rows[id].BelongsTo(&old) {
			snapshot = append(snapshot, id)
		}
	}

	next := nextStatement(old, in.CardStatements)
	if next != nil {
		for _, id := range order {
			inst := rows[id]
			if inst.ManuallyAssignedStatementID == nil && inst.BelongsTo(next) {
				pin := next.ID
				inst.ManuallyAssignedStatementID = &pin
			}
		}
	}

	oldPeriod, newPeriod := old.PeriodIdentifier(), updated.PeriodIdentifier()
	if oldPeriod != newPeriod {
		for _, ci := range in.Installments {
			inst := rows[ci.Installment.ID]
			if old.IncludesPurchaseDate(ci.PurchaseDate) && inst.BillingPeriod == oldPeriod {
				inst.BillingPeriod = newPeriod
			}
		}
	}

	for _, id := range snapshot {
		inst := rows[id]
		if inst.ManuallyAssignedStatementID == nil {
			pin := updated.ID
			inst.ManuallyAssignedStatementID = &pin
		}
	}

	result := &StatementDatesResult{Statement: *updated}

	if next != nil {
		nextStart := updated.ClosingDate.AddDate(0, 0, 1)
		if !next.StartDate.Equal(nextStart) {
			moved, err := domain.NewMonthlyStatement(next.ID, next.CreditCardID, nextStart, next.ClosingDate, next.DueDate)
			if err != nil {
				return nil, fmt.Errorf("ReconcileStatementDates: next statement: %w", err)
			}
			result.Next = moved
		}
	}

	for _, ci := range in.Installments {
		before := ci.Installment
		after := rows[before.ID]
		if before.BillingPeriod != after.BillingPeriod || !samePin(before.ManuallyAssignedStatementID, after.ManuallyAssignedStatementID) {
			result.Installments = append(result.Installments, *after)
		}
	}

	return result, nil
}

// nextStatement is the statement following current by start date.
func nextStatement(current domain.MonthlyStatement, all []domain.MonthlyStatement) *domain.MonthlyStatement {
	sorted := make([]domain.MonthlyStatement, 0, len(all))
	for _, s := range all {
		if s.ID != current.ID {
			sorted = append(sorted, s)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartDate.Before(sorted[j].StartDate) })

	for i := range sorted {
		if sorted[i].StartDate.After(current.StartDate) {
			return &sorted[i]
		}
	}
	return nil
}

func samePin(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
