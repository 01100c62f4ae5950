package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/logging"
	"github.com/josh-kwaku/cashdata/internal/split"
)

const defaultLedgerCurrency = domain.CurrencyARS

type BudgetService struct {
	budgets      budgetRepository
	incomes      incomeRepository
	expenses     budgetExpenseRepository
	purchases    purchaseRepository
	installments installmentRepository
	tx           txRunner
	now          func() time.Time
}

func NewBudgetService(
	budgets budgetRepository,
	incomes incomeRepository,
	expenses budgetExpenseRepository,
	purchases purchaseRepository,
	installments installmentRepository,
	tx txRunner,
) *BudgetService {
	return &BudgetService{
		budgets:      budgets,
		incomes:      incomes,
		expenses:     expenses,
		purchases:    purchases,
		installments: installments,
		tx:           tx,
		now:          time.Now,
	}
}

// SplitPolicy selects how an expense is shared. CustomPercentages is read
// for CUSTOM and ResponsibleUserID for FULL_SINGLE.
type SplitPolicy struct {
	Type              domain.SplitType
	CustomPercentages map[uuid.UUID]domain.Percentage
	ResponsibleUserID *uuid.UUID
}

type AddExpenseInput struct {
	UserID        uuid.UUID
	BudgetID      uuid.UUID
	PurchaseID    *uuid.UUID
	InstallmentID *uuid.UUID
	Split         SplitPolicy
}

type ExpenseResult struct {
	Expense          domain.BudgetExpense
	Responsibilities []domain.BudgetExpenseResponsibility
}

// editableBudget loads a budget the user may change: it must be active and
// the user one of its participants.
func (s *BudgetService) editableBudget(ctx context.Context, budgetID, userID uuid.UUID) (*domain.MonthlyBudget, []uuid.UUID, error) {
	budget, participants, err := s.budgetForParticipant(ctx, budgetID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !budget.IsActive() {
		return nil, nil, fmt.Errorf("budget %s is %s: %w", budget.ID, budget.Status, domain.ErrBudgetNotActive)
	}
	return budget, participants, nil
}

func (s *BudgetService) budgetForParticipant(ctx context.Context, budgetID, userID uuid.UUID) (*domain.MonthlyBudget, []uuid.UUID, error) {
	budget, err := s.budgets.GetByID(ctx, budgetID)
	if err != nil {
		return nil, nil, err
	}
	participants, err := s.budgets.Participants(ctx, budget.ID)
	if err != nil {
		return nil, nil, err
	}
	if !slices.Contains(participants, userID) {
		return nil, nil, domain.ErrNotParticipant
	}
	return budget, participants, nil
}

// snapshot builds the expense fields taken from the referenced purchase or
// installment.
func (s *BudgetService) snapshot(ctx context.Context, in AddExpenseInput) (*domain.BudgetExpense, error) {
	e := &domain.BudgetExpense{
		ID:        uuid.New(),
		BudgetID:  in.BudgetID,
		SplitType: in.Split.Type,
		CreatedAt: s.now().UTC(),
	}

	switch {
	case in.PurchaseID != nil && in.InstallmentID != nil, in.PurchaseID == nil && in.InstallmentID == nil:
		return nil, fmt.Errorf("exactly one of purchase_id or installment_id is required: %w", domain.ErrInvalidRequest)

	case in.PurchaseID != nil:
		p, err := s.purchases.GetByID(ctx, *in.PurchaseID)
		if err != nil {
			return nil, fmt.Errorf("purchase: %w", err)
		}
		id := p.ID
		e.PurchaseID = &id
		e.PaidByUserID = p.UserID
		e.Amount = p.Total.Primary()
		e.Description = p.Description
		e.Date = p.PurchaseDate

	default:
		inst, err := s.installments.GetByID(ctx, *in.InstallmentID)
		if err != nil {
			return nil, fmt.Errorf("installment: %w", err)
		}
		p, err := s.purchases.GetByID(ctx, inst.PurchaseID)
		if err != nil {
			return nil, fmt.Errorf("purchase: %w", err)
		}
		id := inst.ID
		e.InstallmentID = &id
		e.PaidByUserID = p.UserID
		e.Amount = inst.Amount
		e.Description = fmt.Sprintf("%s (Installment %s)", p.Description, inst.Label())
		e.Date = inst.BillingPeriod.FirstDay()
	}
	return e, nil
}

func (s *BudgetService) responsibilities(ctx context.Context, budget *domain.MonthlyBudget, participants []uuid.UUID, e *domain.BudgetExpense, policy SplitPolicy) ([]domain.BudgetExpenseResponsibility, error) {
	req := split.ResponsibilityRequest{
		ExpenseID:         e.ID,
		Amount:            e.Amount,
		SplitType:         policy.Type,
		Participants:      participants,
		Period:            budget.Period,
		CustomPercentages: policy.CustomPercentages,
		ResponsibleUserID: policy.ResponsibleUserID,
	}

	if policy.Type == domain.SplitTypeProportional {
		incomes, err := s.incomes.ListByPeriod(ctx, budget.Period, participants)
		if err != nil {
			return nil, err
		}
		var missing []uuid.UUID
		for _, id := range participants {
			if !slices.ContainsFunc(incomes, func(in domain.MonthlyIncome) bool { return in.UserID == id }) {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("participants %v have no income for %s: %w", missing, budget.Period, domain.ErrInvalidRequest)
		}
		req.Incomes = incomes
	}

	return split.CalculateResponsibilities(req)
}

// AddExpense adds a purchase or a single installment to a budget and
// computes each participant's share.
func (s *BudgetService) AddExpense(ctx context.Context, in AddExpenseInput) (*ExpenseResult, error) {
	log := logging.FromContext(ctx)

	if !in.Split.Type.IsValid() {
		return nil, fmt.Errorf("AddExpense: %q: %w", in.Split.Type, domain.ErrInvalidSplitType)
	}
	budget, participants, err := s.editableBudget(ctx, in.BudgetID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("AddExpense: %w", err)
	}

	e, err := s.snapshot(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("AddExpense: %w", err)
	}
	exists, err := s.expenses.Exists(ctx, budget.ID, e.PurchaseID, e.InstallmentID)
	if err != nil {
		return nil, fmt.Errorf("AddExpense: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("AddExpense: expense already in budget %s: %w", budget.ID, domain.ErrInvalidRequest)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("AddExpense: %w", err)
	}

	rs, err := s.responsibilities(ctx, budget, participants, e, in.Split)
	if err != nil {
		return nil, fmt.Errorf("AddExpense: %w", err)
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.expenses.Save(ctx, tx, e); err != nil {
			return err
		}
		return s.expenses.ReplaceResponsibilities(ctx, tx, e.ID, rs)
	})
	if err != nil {
		return nil, fmt.Errorf("AddExpense: %w", err)
	}

	log.Info("budget expense added",
		"budget_id", budget.ID,
		"expense_id", e.ID,
		"split_type", e.SplitType,
		"amount", e.Amount.String(),
	)
	return &ExpenseResult{Expense: *e, Responsibilities: rs}, nil
}

// expenseForEdit loads an expense together with its budget, checking the
// budget can be edited by userID.
func (s *BudgetService) expenseForEdit(ctx context.Context, userID, expenseID uuid.UUID) (*domain.BudgetExpense, *domain.MonthlyBudget, []uuid.UUID, error) {
	e, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return nil, nil, nil, err
	}
	budget, participants, err := s.editableBudget(ctx, e.BudgetID, userID)
	if err != nil {
		// Expenses of budgets the user is not in are hidden.
		if errors.Is(err, domain.ErrNotParticipant) {
			return nil, nil, nil, domain.ErrNotFound
		}
		return nil, nil, nil, err
	}
	return e, budget, participants, nil
}

// UpdateResponsibilities switches an expense to another split policy and
// replaces its responsibilities.
func (s *BudgetService) UpdateResponsibilities(ctx context.Context, userID, expenseID uuid.UUID, policy SplitPolicy) (*ExpenseResult, error) {
	log := logging.FromContext(ctx)

	if !policy.Type.IsValid() {
		return nil, fmt.Errorf("UpdateResponsibilities: %q: %w", policy.Type, domain.ErrInvalidSplitType)
	}
	e, budget, participants, err := s.expenseForEdit(ctx, userID, expenseID)
	if err != nil {
		return nil, fmt.Errorf("UpdateResponsibilities: %w", err)
	}

	rs, err := s.responsibilities(ctx, budget, participants, e, policy)
	if err != nil {
		return nil, fmt.Errorf("UpdateResponsibilities: %w", err)
	}
	e.SplitType = policy.Type

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.expenses.Save(ctx, tx, e); err != nil {
			return err
		}
		return s.expenses.ReplaceResponsibilities(ctx, tx, e.ID, rs)
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateResponsibilities: %w", err)
	}

	log.Info("budget expense split updated",
		"expense_id", e.ID,
		"split_type", e.SplitType,
	)
	return &ExpenseResult{Expense: *e, Responsibilities: rs}, nil
}

func (s *BudgetService) RemoveExpense(ctx context.Context, userID, expenseID uuid.UUID) error {
	log := logging.FromContext(ctx)

	e, _, _, err := s.expenseForEdit(ctx, userID, expenseID)
	if err != nil {
		return fmt.Errorf("RemoveExpense: %w", err)
	}
	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		return s.expenses.Delete(ctx, tx, e.ID)
	})
	if err != nil {
		return fmt.Errorf("RemoveExpense: %w", err)
	}

	log.Info("budget expense removed", "expense_id", e.ID, "budget_id", e.BudgetID)
	return nil
}

type UserBalance struct {
	UserID         uuid.UUID
	Paid           domain.Money
	ResponsibleFor domain.Money
	Net            domain.Money
}

type BudgetBalances struct {
	BudgetID uuid.UUID
	Total    domain.Money
	Balances []UserBalance
	Debts    []split.Debt
}

// Balances reports what each participant paid and owes in a budget, and
// the transfers that settle it. An empty currency uses the currency of the
// budget's first expense.
func (s *BudgetService) Balances(ctx context.Context, userID, budgetID uuid.UUID, currency domain.Currency) (*BudgetBalances, error) {
	budget, participants, err := s.budgetForParticipant(ctx, budgetID, userID)
	if err != nil {
		return nil, fmt.Errorf("Balances: %w", err)
	}
	expenses, err := s.expenses.ListByBudget(ctx, budget.ID)
	if err != nil {
		return nil, fmt.Errorf("Balances: %w", err)
	}
	rs, err := s.expenses.ListResponsibilities(ctx, budget.ID)
	if err != nil {
		return nil, fmt.Errorf("Balances: %w", err)
	}

	if currency == "" {
		currency = defaultLedgerCurrency
		if len(expenses) > 0 {
			currency = expenses[0].Amount.Currency()
		}
	}
	ledger, err := split.NewLedger(currency, participants, expenses, rs)
	if err != nil {
		return nil, fmt.Errorf("Balances: %w", err)
	}

	out := &BudgetBalances{
		BudgetID: budget.ID,
		Total:    ledger.Total(),
		Debts:    ledger.DebtSummary(),
	}
	for _, id := range ledger.Participants() {
		out.Balances = append(out.Balances, UserBalance{
			UserID:         id,
			Paid:           ledger.PaidBy(id),
			ResponsibleFor: ledger.ResponsibleFor(id),
			Net:            ledger.NetBalance(id),
		})
	}
	return out, nil
}
