package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BudgetStatus string

const (
	BudgetStatusActive   BudgetStatus = "ACTIVE"
	BudgetStatusClosed   BudgetStatus = "CLOSED"
	BudgetStatusArchived BudgetStatus = "ARCHIVED"
)

type SplitType string

const (
	SplitTypeEqual        SplitType = "EQUAL"
	SplitTypeProportional SplitType = "PROPORTIONAL"
	SplitTypeCustom       SplitType = "CUSTOM"
	SplitTypeFullSingle   SplitType = "FULL_SINGLE"
)

func (t SplitType) IsValid() bool {
	switch t {
	case SplitTypeEqual, SplitTypeProportional, SplitTypeCustom, SplitTypeFullSingle:
		return true
	}
	return false
}

func ParseSplitType(s string) (SplitType, error) {
	t := SplitType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("ParseSplitType: %q: %w", s, ErrInvalidSplitType)
	}
	return t, nil
}

type IncomeSource string

const (
	IncomeSourceWage      IncomeSource = "WAGE"
	IncomeSourceFreelance IncomeSource = "FREELANCE"
	IncomeSourceOther     IncomeSource = "OTHER"
)

type MonthlyBudget struct {
	ID              uuid.UUID
	Name            string
	Description     *string
	Period          Period
	Status          BudgetStatus
	CreatedByUserID uuid.UUID
	CreatedAt       time.Time
}

func (b *MonthlyBudget) IsActive() bool {
	return b.Status == BudgetStatusActive
}

type BudgetParticipant struct {
	BudgetID uuid.UUID
	UserID   uuid.UUID
}

type MonthlyIncome struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Period Period
	Amount Money
	Source IncomeSource
}

// BudgetExpense snapshots a purchase or one installment into a budget.
// Exactly one of PurchaseID and InstallmentID is set.
type BudgetExpense struct {
	ID            uuid.UUID
	BudgetID      uuid.UUID
	PurchaseID    *uuid.UUID
	InstallmentID *uuid.UUID
	PaidByUserID  uuid.UUID
	SplitType     SplitType
	Amount        Money
	Description   string
	Date          time.Time
	CreatedAt     time.Time
}

func (e *BudgetExpense) Validate() error {
	if (e.PurchaseID == nil) == (e.InstallmentID == nil) {
		return fmt.Errorf("BudgetExpense: exactly one of purchase_id or installment_id must be set: %w", ErrInvalidEntity)
	}
	if strings.TrimSpace(e.Description) == "" {
		return fmt.Errorf("BudgetExpense: description cannot be empty: %w", ErrInvalidEntity)
	}
	if !e.SplitType.IsValid() {
		return fmt.Errorf("BudgetExpense: %q: %w", e.SplitType, ErrInvalidSplitType)
	}
	if e.Amount.IsZero() {
		return fmt.Errorf("BudgetExpense: amount cannot be zero: %w", ErrInvalidEntity)
	}
	return nil
}

type BudgetExpenseResponsibility struct {
	ID                uuid.UUID
	BudgetExpenseID   uuid.UUID
	UserID            uuid.UUID
	Percentage        Percentage
	ResponsibleAmount Money
}

func (r *BudgetExpenseResponsibility) Validate() error {
	if r.ResponsibleAmount.IsNegative() {
		return fmt.Errorf("BudgetExpenseResponsibility: responsible_amount cannot be negative: %w", ErrInvalidEntity)
	}
	return nil
}
