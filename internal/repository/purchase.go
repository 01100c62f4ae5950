package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

const purchaseColumns = `id, user_id, payment_method_id, category_id, purchase_date, description,
	total_amount, currency, original_amount, original_currency, conversion_rate,
	exchange_rate_id, installments_count, created_at`

type PurchaseRepository struct {
	db *sql.DB
}

func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id,
	)
	p, err := scanPurchase(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return p, nil
}

func (r *PurchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error) {
	return r.list(ctx, "ListByUser", `user_id = $1`, userID)
}

func (r *PurchaseRepository) ListByPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) ([]domain.Purchase, error) {
	return r.list(ctx, "ListByPaymentMethod", `payment_method_id = $1`, paymentMethodID)
}

func (r *PurchaseRepository) list(ctx context.Context, op, where string, arg any) ([]domain.Purchase, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE `+where+` ORDER BY purchase_date DESC, created_at DESC`, arg,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []domain.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return out, nil
}

// Save inserts the purchase or rewrites its editable columns.
func (r *PurchaseRepository) Save(ctx context.Context, tx *sql.Tx, p *domain.Purchase) error {
	primary := p.Total.Primary()
	var secondary *domain.Money
	if m, ok := p.Total.Secondary(); ok {
		secondary = &m
	}
	origAmount, origCurrency := optionalMoneyArgs(secondary)
	var rate decimal.NullDecimal
	if d, ok := p.Total.Rate(); ok {
		rate = decimal.NewNullDecimal(d)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO purchases (
			id, user_id, payment_method_id, category_id, purchase_date, description,
			total_amount, currency, original_amount, original_currency, conversion_rate,
			exchange_rate_id, installments_count, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			category_id = EXCLUDED.category_id,
			purchase_date = EXCLUDED.purchase_date,
			description = EXCLUDED.description,
			total_amount = EXCLUDED.total_amount,
			currency = EXCLUDED.currency,
			original_amount = EXCLUDED.original_amount,
			original_currency = EXCLUDED.original_currency,
			conversion_rate = EXCLUDED.conversion_rate,
			exchange_rate_id = EXCLUDED.exchange_rate_id,
			installments_count = EXCLUDED.installments_count`,
		p.ID, p.UserID, p.PaymentMethodID, p.CategoryID, p.PurchaseDate, p.Description,
		primary.Amount(), primary.Currency(), origAmount, origCurrency, rate,
		p.ExchangeRateID, p.InstallmentsCount, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

func scanPurchase(s scanner) (*domain.Purchase, error) {
	var (
		p            domain.Purchase
		categoryID   uuid.NullUUID
		amount       decimal.Decimal
		currency     string
		origAmount   decimal.NullDecimal
		origCurrency sql.NullString
		rate         decimal.NullDecimal
		rateID       uuid.NullUUID
	)

	err := s.Scan(
		&p.ID, &p.UserID, &p.PaymentMethodID, &categoryID, &p.PurchaseDate, &p.Description,
		&amount, &currency, &origAmount, &origCurrency, &rate,
		&rateID, &p.InstallmentsCount, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	primary, err := toMoney(amount, currency)
	if err != nil {
		return nil, err
	}
	secondary, err := toOptionalMoney(origAmount, origCurrency)
	if err != nil {
		return nil, err
	}
	var ratePtr *decimal.Decimal
	if rate.Valid {
		ratePtr = &rate.Decimal
	}
	if p.Total, err = domain.NewDualMoney(primary, secondary, ratePtr); err != nil {
		return nil, fmt.Errorf("scan purchase %s: %w", p.ID, err)
	}

	if categoryID.Valid {
		p.CategoryID = &categoryID.UUID
	}
	if rateID.Valid {
		p.ExchangeRateID = &rateID.UUID
	}
	p.PurchaseDate = toDate(p.PurchaseDate)
	p.Description = strings.TrimSpace(p.Description)
	return &p, nil
}
