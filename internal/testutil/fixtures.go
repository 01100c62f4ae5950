package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/repository"
)

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) {
	t.Helper()
	if err := repository.NewDB(db).WithTx(context.Background(), fn); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

// SeedCreditCard stores an ARS card closing on the 10th and due on the 20th.
func SeedCreditCard(t *testing.T, db *sql.DB, userID uuid.UUID) *domain.CreditCard {
	t.Helper()

	card := &domain.CreditCard{
		ID:              uuid.New(),
		UserID:          userID,
		PaymentMethodID: uuid.New(),
		Name:            "Visa Signature",
		Bank:            "Galicia",
		LastFourDigits:  "4242",
		Currency:        domain.CurrencyARS,
		BillingCloseDay: 10,
		PaymentDueDay:   20,
		CreatedAt:       time.Now().UTC(),
	}
	inTx(t, db, func(tx *sql.Tx) error {
		return repository.NewCreditCardRepository(db).Create(context.Background(), tx, card)
	})
	return card
}

func SeedExchangeRate(t *testing.T, db *sql.DB, date time.Time, from, to domain.Currency, rate string, rateType domain.RateType) *domain.ExchangeRate {
	t.Helper()

	r := &domain.ExchangeRate{
		ID:           uuid.New(),
		Date:         domain.DateOf(date),
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         decimal.RequireFromString(rate),
		RateType:     rateType,
		CreatedAt:    time.Now().UTC(),
	}
	inTx(t, db, func(tx *sql.Tx) error {
		return repository.NewExchangeRateRepository(db).Create(context.Background(), tx, r)
	})
	return r
}

// SeedBudget stores an active budget for period with the given participants,
// the first being its creator.
func SeedBudget(t *testing.T, db *sql.DB, period string, participants ...uuid.UUID) *domain.MonthlyBudget {
	t.Helper()

	p, err := domain.ParsePeriod(period)
	if err != nil {
		t.Fatalf("seed budget: %v", err)
	}
	b := &domain.MonthlyBudget{
		ID:              uuid.New(),
		Name:            "Household " + period,
		Period:          p,
		Status:          domain.BudgetStatusActive,
		CreatedByUserID: participants[0],
		CreatedAt:       time.Now().UTC(),
	}
	inTx(t, db, func(tx *sql.Tx) error {
		return repository.NewBudgetRepository(db).Create(context.Background(), tx, b, participants)
	})
	return b
}

func SeedIncome(t *testing.T, db *sql.DB, userID uuid.UUID, period, amount string) *domain.MonthlyIncome {
	t.Helper()

	p, err := domain.ParsePeriod(period)
	if err != nil {
		t.Fatalf("seed income: %v", err)
	}
	m, err := domain.ParseMoney(amount, domain.CurrencyARS)
	if err != nil {
		t.Fatalf("seed income: %v", err)
	}
	inc := &domain.MonthlyIncome{
		ID:     uuid.New(),
		UserID: userID,
		Period: p,
		Amount: m,
		Source: domain.IncomeSourceWage,
	}
	inTx(t, db, func(tx *sql.Tx) error {
		return repository.NewIncomeRepository(db).Create(context.Background(), tx, inc)
	})
	return inc
}

func CountStatements(t *testing.T, db *sql.DB, cardID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM monthly_statements WHERE credit_card_id = $1`, cardID).Scan(&count)
	if err != nil {
		t.Fatalf("count statements for card %s: %v", cardID, err)
	}
	return count
}

func CountInstallments(t *testing.T, db *sql.DB, purchaseID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM installments WHERE purchase_id = $1`, purchaseID).Scan(&count)
	if err != nil {
		t.Fatalf("count installments for purchase %s: %v", purchaseID, err)
	}
	return count
}
