package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

const budgetExpenseColumns = `id, budget_id, purchase_id, installment_id, paid_by_user_id,
	split_type, amount, currency, description, date, created_at`

type BudgetExpenseRepository struct {
	db *sql.DB
}

func NewBudgetExpenseRepository(db *sql.DB) *BudgetExpenseRepository {
	return &BudgetExpenseRepository{db: db}
}

func (r *BudgetExpenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BudgetExpense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetExpenseColumns+` FROM budget_expenses WHERE id = $1`, id,
	)
	e, err := scanBudgetExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return e, nil
}

func (r *BudgetExpenseRepository) ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]domain.BudgetExpense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetExpenseColumns+` FROM budget_expenses WHERE budget_id = $1 ORDER BY date, created_at`, budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByBudget: %w", err)
	}
	defer rows.Close()

	var out []domain.BudgetExpense
	for rows.Next() {
		e, err := scanBudgetExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByBudget: scan: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByBudget: rows: %w", err)
	}
	return out, nil
}

// Exists reports whether the purchase or installment is already in the budget.
func (r *BudgetExpenseRepository) Exists(ctx context.Context, budgetID uuid.UUID, purchaseID, installmentID *uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM budget_expenses
			WHERE budget_id = $1
			AND (purchase_id = $2 OR installment_id = $3)
		)`,
		budgetID, purchaseID, installmentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("Exists: %w", err)
	}
	return exists, nil
}

// Save inserts the expense or updates its split type. A second expense for
// the same purchase or installment in a budget is ErrInvalidRequest.
func (r *BudgetExpenseRepository) Save(ctx context.Context, tx *sql.Tx, e *domain.BudgetExpense) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO budget_expenses (
			id, budget_id, purchase_id, installment_id, paid_by_user_id,
			split_type, amount, currency, description, date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET split_type = EXCLUDED.split_type`,
		e.ID, e.BudgetID, e.PurchaseID, e.InstallmentID, e.PaidByUserID,
		e.SplitType, e.Amount.Amount(), e.Amount.Currency(), e.Description, e.Date, e.CreatedAt,
	)
	if isDuplicateKey(err) {
		return fmt.Errorf("Save: expense already in budget %s: %w", e.BudgetID, domain.ErrInvalidRequest)
	}
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

func (r *BudgetExpenseRepository) Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM budget_expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Delete: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *BudgetExpenseRepository) ListResponsibilities(ctx context.Context, budgetID uuid.UUID) ([]domain.BudgetExpenseResponsibility, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.budget_expense_id, r.user_id, r.percentage, r.responsible_amount, r.currency
		FROM budget_expense_responsibilities r
		JOIN budget_expenses e ON e.id = r.budget_expense_id
		WHERE e.budget_id = $1
		ORDER BY r.budget_expense_id, r.user_id`, budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListResponsibilities: %w", err)
	}
	defer rows.Close()

	var out []domain.BudgetExpenseResponsibility
	for rows.Next() {
		var (
			resp     domain.BudgetExpenseResponsibility
			pct      decimal.Decimal
			amount   decimal.Decimal
			currency string
		)
		if err := rows.Scan(&resp.ID, &resp.BudgetExpenseID, &resp.UserID, &pct, &amount, &currency); err != nil {
			return nil, fmt.Errorf("ListResponsibilities: scan: %w", err)
		}
		if resp.Percentage, err = domain.NewPercentage(pct); err != nil {
			return nil, fmt.Errorf("ListResponsibilities: %w", err)
		}
		if resp.ResponsibleAmount, err = toMoney(amount, currency); err != nil {
			return nil, fmt.Errorf("ListResponsibilities: %w", err)
		}
		out = append(out, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListResponsibilities: rows: %w", err)
	}
	return out, nil
}

func (r *BudgetExpenseRepository) ReplaceResponsibilities(ctx context.Context, tx *sql.Tx, expenseID uuid.UUID, rs []domain.BudgetExpenseResponsibility) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM budget_expense_responsibilities WHERE budget_expense_id = $1`, expenseID,
	); err != nil {
		return fmt.Errorf("ReplaceResponsibilities: delete: %w", err)
	}

	for _, resp := range rs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budget_expense_responsibilities (
				id, budget_expense_id, user_id, percentage, responsible_amount, currency
			) VALUES ($1, $2, $3, $4, $5, $6)`,
			resp.ID, expenseID, resp.UserID, resp.Percentage.Value(),
			resp.ResponsibleAmount.Amount(), resp.ResponsibleAmount.Currency(),
		)
		if err != nil {
			return fmt.Errorf("ReplaceResponsibilities: user %s: %w", resp.UserID, err)
		}
	}
	return nil
}

func scanBudgetExpense(s scanner) (*domain.BudgetExpense, error) {
	var (
		e             domain.BudgetExpense
		purchaseID    uuid.NullUUID
		installmentID uuid.NullUUID
		splitType     string
		amount        decimal.Decimal
		currency      string
	)
	err := s.Scan(
		&e.ID, &e.BudgetID, &purchaseID, &installmentID, &e.PaidByUserID,
		&splitType, &amount, &currency, &e.Description, &e.Date, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if e.Amount, err = toMoney(amount, currency); err != nil {
		return nil, err
	}
	if purchaseID.Valid {
		e.PurchaseID = &purchaseID.UUID
	}
	if installmentID.Valid {
		e.InstallmentID = &installmentID.UUID
	}
	e.SplitType = domain.SplitType(splitType)
	e.Date = toDate(e.Date)
	return &e, nil
}
