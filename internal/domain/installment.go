package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Installment struct {
	ID                          uuid.UUID
	PurchaseID                  uuid.UUID
	InstallmentNumber           int
	TotalInstallments           int
	Amount                      Money
	OriginalAmount              *Money
	ExchangeRateID              *uuid.UUID
	BillingPeriod               Period
	DueDate                     time.Time
	ManuallyAssignedStatementID *uuid.UUID
}

func (i *Installment) Validate() error {
	if i.TotalInstallments < 1 {
		return fmt.Errorf("Installment: total_installments must be >= 1, got %d: %w", i.TotalInstallments, ErrInvalidEntity)
	}
	if i.InstallmentNumber < 1 || i.InstallmentNumber > i.TotalInstallments {
		return fmt.Errorf("Installment: installment_number %d outside 1..%d: %w", i.InstallmentNumber, i.TotalInstallments, ErrInvalidEntity)
	}
	if i.Amount.IsZero() {
		return fmt.Errorf("Installment: amount cannot be zero: %w", ErrInvalidEntity)
	}
	if i.BillingPeriod.IsZero() {
		return fmt.Errorf("Installment: billing_period is required: %w", ErrInvalidEntity)
	}
	if i.OriginalAmount != nil && i.OriginalAmount.Currency() == i.Amount.Currency() {
		return fmt.Errorf("Installment: original amount must be in a different currency: %w", ErrInvalidEntity)
	}
	return nil
}

func (i *Installment) SameAs(other *Installment) bool {
	return other != nil && i.ID == other.ID
}

func (i *Installment) IsPinnedTo(statementID uuid.UUID) bool {
	return i.ManuallyAssignedStatementID != nil && *i.ManuallyAssignedStatementID == statementID
}

// BelongsTo reports whether the installment shows on the statement: pinned
// to it, or unpinned with a billing period equal to the statement's.
func (i *Installment) BelongsTo(s *MonthlyStatement) bool {
	if i.ManuallyAssignedStatementID != nil {
		return *i.ManuallyAssignedStatementID == s.ID
	}
	return i.BillingPeriod == s.PeriodIdentifier()
}

func (i *Installment) Label() string {
	return fmt.Sprintf("%d/%d", i.InstallmentNumber, i.TotalInstallments)
}
