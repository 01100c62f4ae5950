package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

const exchangeRateColumns = `id, date, from_currency, to_currency, rate, rate_type,
	source, notes, created_by_user_id, created_at`

type ExchangeRateRepository struct {
	db *sql.DB
}

func NewExchangeRateRepository(db *sql.DB) *ExchangeRateRepository {
	return &ExchangeRateRepository{db: db}
}

func (r *ExchangeRateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ExchangeRate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+exchangeRateColumns+` FROM exchange_rates WHERE id = $1`, id,
	)
	rate, err := scanExchangeRate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return rate, nil
}

// ListRates returns rates for the pair in either orientation that are global
// or were created by userID.
func (r *ExchangeRateRepository) ListRates(ctx context.Context, a, b domain.Currency, userID *uuid.UUID) ([]domain.ExchangeRate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+exchangeRateColumns+` FROM exchange_rates
		WHERE ((from_currency = $1 AND to_currency = $2) OR (from_currency = $2 AND to_currency = $1))
		AND (created_by_user_id IS NULL OR created_by_user_id = $3)
		ORDER BY date, created_at`,
		a, b, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListRates: %w", err)
	}
	defer rows.Close()

	var out []domain.ExchangeRate
	for rows.Next() {
		rate, err := scanExchangeRate(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRates: scan: %w", err)
		}
		out = append(out, *rate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRates: rows: %w", err)
	}
	return out, nil
}

func (r *ExchangeRateRepository) Create(ctx context.Context, tx *sql.Tx, rate *domain.ExchangeRate) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO exchange_rates (
			id, date, from_currency, to_currency, rate, rate_type,
			source, notes, created_by_user_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rate.ID, rate.Date, rate.FromCurrency, rate.ToCurrency, rate.Rate, rate.RateType,
		rate.Source, rate.Notes, rate.CreatedByUserID, rate.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func scanExchangeRate(s scanner) (*domain.ExchangeRate, error) {
	var (
		r         domain.ExchangeRate
		from, to  string
		rateType  string
		createdBy uuid.NullUUID
	)
	err := s.Scan(
		&r.ID, &r.Date, &from, &to, &r.Rate, &rateType,
		&r.Source, &r.Notes, &createdBy, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.FromCurrency = domain.Currency(from)
	r.ToCurrency = domain.Currency(to)
	r.RateType = domain.RateType(rateType)
	r.Date = toDate(r.Date)
	if createdBy.Valid {
		r.CreatedByUserID = &createdBy.UUID
	}
	return &r, nil
}
