package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

const budgetColumns = `id, name, description, period, status, created_by_user_id, created_at`

type BudgetRepository struct {
	db *sql.DB
}

func NewBudgetRepository(db *sql.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Create(ctx context.Context, tx *sql.Tx, b *domain.MonthlyBudget, participants []uuid.UUID) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO monthly_budgets (id, name, description, period, status, created_by_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.Name, b.Description, b.Period.String(), b.Status, b.CreatedByUserID, b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	for _, userID := range participants {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budget_participants (budget_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			b.ID, userID,
		)
		if err != nil {
			return fmt.Errorf("Create: participant %s: %w", userID, err)
		}
	}
	return nil
}

func (r *BudgetRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MonthlyBudget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM monthly_budgets WHERE id = $1`, id,
	)
	var (
		b      domain.MonthlyBudget
		period string
		status string
	)
	err := row.Scan(&b.ID, &b.Name, &b.Description, &period, &status, &b.CreatedByUserID, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	if b.Period, err = toPeriod(period); err != nil {
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	b.Status = domain.BudgetStatus(status)
	return &b, nil
}

// Participants returns user ids in join order.
func (r *BudgetRepository) Participants(ctx context.Context, budgetID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM budget_participants WHERE budget_id = $1 ORDER BY joined_at, user_id`, budgetID,
	)
	if err != nil {
		return nil, fmt.Errorf("Participants: %w", err)
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("Participants: scan: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Participants: rows: %w", err)
	}
	return out, nil
}

type IncomeRepository struct {
	db *sql.DB
}

func NewIncomeRepository(db *sql.DB) *IncomeRepository {
	return &IncomeRepository{db: db}
}

func (r *IncomeRepository) Create(ctx context.Context, tx *sql.Tx, inc *domain.MonthlyIncome) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO monthly_incomes (id, user_id, period, amount, currency, source)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		inc.ID, inc.UserID, inc.Period.String(), inc.Amount.Amount(), inc.Amount.Currency(), inc.Source,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *IncomeRepository) ListByPeriod(ctx context.Context, period domain.Period, userIDs []uuid.UUID) ([]domain.MonthlyIncome, error) {
	ids := make([]string, len(userIDs))
	for i, id := range userIDs {
		ids[i] = id.String()
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, period, amount, currency, source FROM monthly_incomes
		WHERE period = $1 AND user_id = ANY($2::uuid[])
		ORDER BY user_id, id`,
		period.String(), pq.Array(ids),
	)
	if err != nil {
		return nil, fmt.Errorf("ListByPeriod: %w", err)
	}
	defer rows.Close()

	var out []domain.MonthlyIncome
	for rows.Next() {
		var (
			inc      domain.MonthlyIncome
			p        string
			amount   decimal.Decimal
			currency string
			source   string
		)
		if err := rows.Scan(&inc.ID, &inc.UserID, &p, &amount, &currency, &source); err != nil {
			return nil, fmt.Errorf("ListByPeriod: scan: %w", err)
		}
		if inc.Period, err = toPeriod(p); err != nil {
			return nil, fmt.Errorf("ListByPeriod: %w", err)
		}
		if inc.Amount, err = toMoney(amount, currency); err != nil {
			return nil, fmt.Errorf("ListByPeriod: %w", err)
		}
		inc.Source = domain.IncomeSource(source)
		out = append(out, inc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByPeriod: rows: %w", err)
	}
	return out, nil
}
