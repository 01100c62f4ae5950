package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/fx"
)

// txRunner supplies the unit of work. Repository writes receive its *sql.Tx.
type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type creditCardRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CreditCard, error)
	GetByPaymentMethod(ctx context.Context, paymentMethodID uuid.UUID) (*domain.CreditCard, error)
}

type statementRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MonthlyStatement, error)
	ListByCard(ctx context.Context, cardID uuid.UUID, includeFuture bool, asOf time.Time) ([]domain.MonthlyStatement, error)
	Save(ctx context.Context, tx *sql.Tx, s *domain.MonthlyStatement) error
}

type installmentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Installment, error)
	ListByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]domain.Installment, error)
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Installment, []time.Time, error)
	SaveAll(ctx context.Context, tx *sql.Tx, installments []domain.Installment) error
	DeleteByPurchase(ctx context.Context, tx *sql.Tx, purchaseID uuid.UUID) error
}

type purchaseRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Purchase, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Purchase, error)
	Save(ctx context.Context, tx *sql.Tx, p *domain.Purchase) error
}

type exchangeRateWriter interface {
	Create(ctx context.Context, tx *sql.Tx, rate *domain.ExchangeRate) error
}

type rateConverter interface {
	ToCardCurrency(ctx context.Context, req fx.CardConversionRequest) (*fx.CardConversion, error)
	Convert(ctx context.Context, amount domain.Money, to domain.Currency, date time.Time, userID *uuid.UUID) (domain.Money, *fx.Quote, error)
}

type budgetRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MonthlyBudget, error)
	Participants(ctx context.Context, budgetID uuid.UUID) ([]uuid.UUID, error)
}

type incomeRepository interface {
	ListByPeriod(ctx context.Context, period domain.Period, userIDs []uuid.UUID) ([]domain.MonthlyIncome, error)
}

type budgetExpenseRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.BudgetExpense, error)
	ListByBudget(ctx context.Context, budgetID uuid.UUID) ([]domain.BudgetExpense, error)
	Exists(ctx context.Context, budgetID uuid.UUID, purchaseID, installmentID *uuid.UUID) (bool, error)
	Save(ctx context.Context, tx *sql.Tx, e *domain.BudgetExpense) error
	Delete(ctx context.Context, tx *sql.Tx, id uuid.UUID) error
	ListResponsibilities(ctx context.Context, budgetID uuid.UUID) ([]domain.BudgetExpenseResponsibility, error)
	ReplaceResponsibilities(ctx context.Context, tx *sql.Tx, expenseID uuid.UUID, rs []domain.BudgetExpenseResponsibility) error
}
