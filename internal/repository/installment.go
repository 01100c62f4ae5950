package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

const installmentColumns = `i.id, i.purchase_id, i.installment_number, i.total_installments,
	i.amount, i.currency, i.original_amount, i.original_currency, i.exchange_rate_id,
	i.billing_period, i.due_date, i.manually_assigned_statement_id`

type InstallmentRepository struct {
	db *sql.DB
}

func NewInstallmentRepository(db *sql.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+installmentColumns+` FROM installments i WHERE i.id = $1`, id,
	)
	inst, err := scanInstallment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return inst, nil
}

func (r *InstallmentRepository) ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]domain.Installment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+installmentColumns+` FROM installments i
		WHERE i.purchase_id = $1 ORDER BY i.installment_number`, purchaseID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByPurchase: %w", err)
	}
	defer rows.Close()

	var out []domain.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByPurchase: scan: %w", err)
		}
		out = append(out, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByPurchase: rows: %w", err)
	}
	return out, nil
}

// ListByCard returns every installment of purchases made with the card,
// paired with the purchase date.
func (r *InstallmentRepository) ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Installment, []time.Time, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+installmentColumns+`, p.purchase_date
		FROM installments i
		JOIN purchases p ON p.id = i.purchase_id
		JOIN credit_cards c ON c.payment_method_id = p.payment_method_id
		WHERE c.id = $1
		ORDER BY p.purchase_date, i.purchase_id, i.installment_number`, cardID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("ListByCard: %w", err)
	}
	defer rows.Close()

	var (
		out   []domain.Installment
		dates []time.Time
	)
	for rows.Next() {
		var purchaseDate time.Time
		inst, err := scanInstallment(rows, &purchaseDate)
		if err != nil {
			return nil, nil, fmt.Errorf("ListByCard: scan: %w", err)
		}
		out = append(out, *inst)
		dates = append(dates, toDate(purchaseDate))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("ListByCard: rows: %w", err)
	}
	return out, dates, nil
}

// SaveAll inserts new installments and updates the mutable columns of
// existing ones.
func (r *InstallmentRepository) SaveAll(ctx context.Context, tx *sql.Tx, installments []domain.Installment) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO installments (
			id, purchase_id, installment_number, total_installments,
			amount, currency, original_amount, original_currency, exchange_rate_id,
			billing_period, due_date, manually_assigned_statement_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			original_amount = EXCLUDED.original_amount,
			original_currency = EXCLUDED.original_currency,
			exchange_rate_id = EXCLUDED.exchange_rate_id,
			billing_period = EXCLUDED.billing_period,
			due_date = EXCLUDED.due_date,
			manually_assigned_statement_id = EXCLUDED.manually_assigned_statement_id`,
	)
	if err != nil {
		return fmt.Errorf("SaveAll: prepare: %w", err)
	}
	defer stmt.Close()

	for _, inst := range installments {
		origAmount, origCurrency := optionalMoneyArgs(inst.OriginalAmount)
		_, err := stmt.ExecContext(ctx,
			inst.ID, inst.PurchaseID, inst.InstallmentNumber, inst.TotalInstallments,
			inst.Amount.Amount(), inst.Amount.Currency(), origAmount, origCurrency, inst.ExchangeRateID,
			inst.BillingPeriod.String(), inst.DueDate, inst.ManuallyAssignedStatementID,
		)
		if err != nil {
			return fmt.Errorf("SaveAll: installment %s: %w", inst.ID, err)
		}
	}
	return nil
}

func (r *InstallmentRepository) DeleteByPurchase(ctx context.Context, tx *sql.Tx, purchaseID uuid.UUID) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM installments WHERE purchase_id = $1`, purchaseID); err != nil {
		return fmt.Errorf("DeleteByPurchase: %w", err)
	}
	return nil
}

// scanInstallment reads installmentColumns followed by any extra columns.
func scanInstallment(s scanner, extra ...any) (*domain.Installment, error) {
	var (
		inst         domain.Installment
		amount       decimal.Decimal
		currency     string
		origAmount   decimal.NullDecimal
		origCurrency sql.NullString
		rateID       uuid.NullUUID
		period       string
		pinned       uuid.NullUUID
	)

	dest := []any{
		&inst.ID, &inst.PurchaseID, &inst.InstallmentNumber, &inst.TotalInstallments,
		&amount, &currency, &origAmount, &origCurrency, &rateID,
		&period, &inst.DueDate, &pinned,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if inst.Amount, err = toMoney(amount, currency); err != nil {
		return nil, err
	}
	if inst.OriginalAmount, err = toOptionalMoney(origAmount, origCurrency); err != nil {
		return nil, err
	}
	if inst.BillingPeriod, err = toPeriod(period); err != nil {
		return nil, err
	}
	if rateID.Valid {
		inst.ExchangeRateID = &rateID.UUID
	}
	if pinned.Valid {
		inst.ManuallyAssignedStatementID = &pinned.UUID
	}
	inst.DueDate = toDate(inst.DueDate)
	return &inst, nil
}
