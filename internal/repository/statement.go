package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

const statementColumns = `id, credit_card_id, start_date, closing_date, due_date`

type StatementRepository struct {
	db *sql.DB
}

func NewStatementRepository(db *sql.DB) *StatementRepository {
	return &StatementRepository{db: db}
}

func (r *StatementRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MonthlyStatement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+statementColumns+` FROM monthly_statements WHERE id = $1`, id,
	)
	s, err := scanStatement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return s, nil
}

// ListByCard returns the card's statements ordered by start date. Without
// includeFuture, statements starting after asOf are left out.
func (r *StatementRepository) ListByCard(ctx context.Context, cardID uuid.UUID, includeFuture bool, asOf time.Time) ([]domain.MonthlyStatement, error) {
	query := `SELECT ` + statementColumns + ` FROM monthly_statements WHERE credit_card_id = $1`
	args := []any{cardID}
	if !includeFuture {
		query += ` AND start_date <= $2`
		args = append(args, toDate(asOf))
	}
	query += ` ORDER BY start_date`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListByCard: %w", err)
	}
	defer rows.Close()

	var statements []domain.MonthlyStatement
	for rows.Next() {
		s, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByCard: scan: %w", err)
		}
		statements = append(statements, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByCard: rows: %w", err)
	}
	return statements, nil
}

// Save inserts the statement or updates its dates.
func (r *StatementRepository) Save(ctx context.Context, tx *sql.Tx, s *domain.MonthlyStatement) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO monthly_statements (id, credit_card_id, start_date, closing_date, due_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			start_date = EXCLUDED.start_date,
			closing_date = EXCLUDED.closing_date,
			due_date = EXCLUDED.due_date`,
		s.ID, s.CreditCardID, s.StartDate, s.ClosingDate, s.DueDate,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

func scanStatement(s scanner) (*domain.MonthlyStatement, error) {
	var st domain.MonthlyStatement
	if err := s.Scan(&st.ID, &st.CreditCardID, &st.StartDate, &st.ClosingDate, &st.DueDate); err != nil {
		return nil, err
	}
	st.StartDate = toDate(st.StartDate)
	st.ClosingDate = toDate(st.ClosingDate)
	st.DueDate = toDate(st.DueDate)
	return &st, nil
}
