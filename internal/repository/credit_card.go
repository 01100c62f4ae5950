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

const creditCardColumns = `id, user_id, payment_method_id, name, bank, last_four_digits,
	currency, billing_close_day, payment_due_day, credit_limit, created_at`

type CreditCardRepository struct {
	db *sql.DB
}

func NewCreditCardRepository(db *sql.DB) *CreditCardRepository {
	return &CreditCardRepository{db: db}
}

func (r *CreditCardRepository) Create(ctx context.Context, tx *sql.Tx, card *domain.CreditCard) error {
	var limit decimal.NullDecimal
	if card.CreditLimit != nil {
		limit = decimal.NewNullDecimal(card.CreditLimit.Amount())
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO credit_cards (
			id, user_id, payment_method_id, name, bank, last_four_digits,
			currency, billing_close_day, payment_due_day, credit_limit, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		card.ID, card.UserID, card.PaymentMethodID, card.Name, card.Bank, card.LastFourDigits,
		card.Currency, card.BillingCloseDay, card.PaymentDueDay, limit, card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *CreditCardRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditCard, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+creditCardColumns+` FROM credit_cards WHERE id = $1`, id,
	)
	c, err := scanCreditCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

func (r *CreditCardRepository) GetByPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (*domain.CreditCard, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+creditCardColumns+` FROM credit_cards WHERE payment_method_id = $1`, paymentMethodID,
	)
	c, err := scanCreditCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByPaymentMethod: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByPaymentMethod: %w", err)
	}
	return c, nil
}

func scanCreditCard(s scanner) (*domain.CreditCard, error) {
	var c domain.CreditCard
	var currency string
	var limit decimal.NullDecimal

	err := s.Scan(
		&c.ID, &c.UserID, &c.PaymentMethodID, &c.Name, &c.Bank, &c.LastFourDigits,
		&currency, &c.BillingCloseDay, &c.PaymentDueDay, &limit, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Currency = domain.Currency(currency)
	if limit.Valid {
		m, err := toMoney(limit.Decimal, currency)
		if err != nil {
			return nil, err
		}
		c.CreditLimit = &m
	}
	return &c, nil
}
