package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

func toMoney(amount decimal.Decimal, currency string) (domain.Money, error) {
	m, err := domain.NewMoney(amount, domain.Currency(strings.TrimSpace(currency)))
	if err != nil {
		return domain.Money{}, fmt.Errorf("scan money: %w", err)
	}
	return m, nil
}

func toOptionalMoney(amount decimal.NullDecimal, currency sql.NullString) (*domain.Money, error) {
	if !amount.Valid || !currency.Valid {
		return nil, nil
	}
	m, err := toMoney(amount.Decimal, currency.String)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// optionalMoneyArgs splits m into nullable amount and currency arguments.
func optionalMoneyArgs(m *domain.Money) (decimal.NullDecimal, sql.NullString) {
	if m == nil {
		return decimal.NullDecimal{}, sql.NullString{}
	}
	return decimal.NewNullDecimal(m.Amount()), sql.NullString{String: string(m.Currency()), Valid: true}
}

func toPeriod(s string) (domain.Period, error) {
	p, err := domain.ParsePeriod(strings.TrimSpace(s))
	if err != nil {
		return domain.Period{}, fmt.Errorf("scan period: %w", err)
	}
	return p, nil
}

func toDate(t time.Time) time.Time {
	return domain.DateOf(t)
}
