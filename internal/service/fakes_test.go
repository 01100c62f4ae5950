package service

import (
	"context"
	"database/sql"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

type fakeTx struct {
	calls int
	err   error
}

func (f *fakeTx) WithTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

type fakeCards struct {
	cards []domain.CreditCard
}

func (f *fakeCards) GetByID(_ context.Context, id uuid.UUID) (*domain.CreditCard, error) {
	for _, c := range f.cards {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeCards) GetByPaymentMethod(_ context.Context, paymentMethodID uuid.UUID) (*domain.CreditCard, error) {
	for _, c := range f.cards {
		if c.PaymentMethodID == paymentMethodID {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeStatements struct {
	byID map[uuid.UUID]domain.MonthlyStatement
}

func newFakeStatements(ss ...domain.MonthlyStatement) *fakeStatements {
	f := &fakeStatements{byID: make(map[uuid.UUID]domain.MonthlyStatement)}
	for _, s := range ss {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeStatements) GetByID(_ context.Context, id uuid.UUID) (*domain.MonthlyStatement, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (f *fakeStatements) ListByCard(_ context.Context, cardID uuid.UUID, includeFuture bool, asOf time.Time) ([]domain.MonthlyStatement, error) {
	var out []domain.MonthlyStatement
	for _, s := range f.byID {
		if s.CreditCardID != cardID {
			continue
		}
		if !includeFuture && s.StartDate.After(asOf) {
			continue
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b domain.MonthlyStatement) int { return a.StartDate.Compare(b.StartDate) })
	return out, nil
}

func (f *fakeStatements) Save(_ context.Context, _ *sql.Tx, s *domain.MonthlyStatement) error {
	f.byID[s.ID] = *s
	return nil
}

type fakeInstallments struct {
	byID      map[uuid.UUID]domain.Installment
	purchases *fakePurchases
	cards     *fakeCards
}

func newFakeInstallments(purchases *fakePurchases, cards *fakeCards) *fakeInstallments {
	return &fakeInstallments{byID: make(map[uuid.UUID]domain.Installment), purchases: purchases, cards: cards}
}

func (f *fakeInstallments) GetByID(_ context.Context, id uuid.UUID) (*domain.Installment, error) {
	inst, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &inst, nil
}

func (f *fakeInstallments) ListByPurchase(_ context.Context, purchaseID uuid.UUID) ([]domain.Installment, error) {
	var out []domain.Installment
	for _, inst := range f.byID {
		if inst.PurchaseID == purchaseID {
			out = append(out, inst)
		}
	}
	slices.SortFunc(out, func(a, b domain.Installment) int { return a.InstallmentNumber - b.InstallmentNumber })
	return out, nil
}

func (f *fakeInstallments) ListByCard(ctx context.Context, cardID uuid.UUID) ([]domain.Installment, []time.Time, error) {
	card, err := f.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, nil, err
	}
	var (
		out   []domain.Installment
		dates []time.Time
	)
	for _, inst := range f.byID {
		p, ok := f.purchases.byID[inst.PurchaseID]
		if !ok || p.PaymentMethodID != card.PaymentMethodID {
			continue
		}
		out = append(out, inst)
		dates = append(dates, p.PurchaseDate)
	}
	return out, dates, nil
}

func (f *fakeInstallments) SaveAll(_ context.Context, _ *sql.Tx, installments []domain.Installment) error {
	for _, inst := range installments {
		f.byID[inst.ID] = inst
	}
	return nil
}

func (f *fakeInstallments) DeleteByPurchase(_ context.Context, _ *sql.Tx, purchaseID uuid.UUID) error {
	for id, inst := range f.byID {
		if inst.PurchaseID == purchaseID {
			delete(f.byID, id)
		}
	}
	return nil
}

type fakePurchases struct {
	byID map[uuid.UUID]domain.Purchase
}

func newFakePurchases(ps ...domain.Purchase) *fakePurchases {
	f := &fakePurchases{byID: make(map[uuid.UUID]domain.Purchase)}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePurchases) GetByID(_ context.Context, id uuid.UUID) (*domain.Purchase, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (f *fakePurchases) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Purchase, error) {
	var out []domain.Purchase
	for _, p := range f.byID {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Purchase) int { return a.PurchaseDate.Compare(b.PurchaseDate) })
	return out, nil
}

func (f *fakePurchases) Save(_ context.Context, _ *sql.Tx, p *domain.Purchase) error {
	f.byID[p.ID] = *p
	return nil
}

type fakeRateWriter struct {
	created []domain.ExchangeRate
}

func (f *fakeRateWriter) Create(_ context.Context, _ *sql.Tx, rate *domain.ExchangeRate) error {
	f.created = append(f.created, *rate)
	return nil
}

// fakeFinder always answers with rate, whatever the pair.
type fakeFinder struct {
	rate *domain.ExchangeRate
}

func (f *fakeFinder) FindExchangeRate(_ context.Context, _ time.Time, _, _ domain.Currency, _ *domain.RateType, _ *uuid.UUID) (*domain.ExchangeRate, error) {
	return f.rate, nil
}

type fakeBudgets struct {
	budgets      map[uuid.UUID]domain.MonthlyBudget
	participants map[uuid.UUID][]uuid.UUID
}

func (f *fakeBudgets) GetByID(_ context.Context, id uuid.UUID) (*domain.MonthlyBudget, error) {
	b, ok := f.budgets[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (f *fakeBudgets) Participants(_ context.Context, budgetID uuid.UUID) ([]uuid.UUID, error) {
	return f.participants[budgetID], nil
}

type fakeIncomes struct {
	incomes []domain.MonthlyIncome
}

func (f *fakeIncomes) ListByPeriod(_ context.Context, period domain.Period, userIDs []uuid.UUID) ([]domain.MonthlyIncome, error) {
	var out []domain.MonthlyIncome
	for _, in := range f.incomes {
		if in.Period == period && slices.Contains(userIDs, in.UserID) {
			out = append(out, in)
		}
	}
	return out, nil
}

type fakeExpenses struct {
	byID             map[uuid.UUID]domain.BudgetExpense
	order            []uuid.UUID
	responsibilities map[uuid.UUID][]domain.BudgetExpenseResponsibility
}

func newFakeExpenses() *fakeExpenses {
	return &fakeExpenses{
		byID:             make(map[uuid.UUID]domain.BudgetExpense),
		responsibilities: make(map[uuid.UUID][]domain.BudgetExpenseResponsibility),
	}
}

func (f *fakeExpenses) GetByID(_ context.Context, id uuid.UUID) (*domain.BudgetExpense, error) {
	e, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (f *fakeExpenses) ListByBudget(_ context.Context, budgetID uuid.UUID) ([]domain.BudgetExpense, error) {
	var out []domain.BudgetExpense
	for _, id := range f.order {
		if e, ok := f.byID[id]; ok && e.BudgetID == budgetID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenses) Exists(_ context.Context, budgetID uuid.UUID, purchaseID, installmentID *uuid.UUID) (bool, error) {
	for _, e := range f.byID {
		if e.BudgetID != budgetID {
			continue
		}
		if purchaseID != nil && e.PurchaseID != nil && *e.PurchaseID == *purchaseID {
			return true, nil
		}
		if installmentID != nil && e.InstallmentID != nil && *e.InstallmentID == *installmentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeExpenses) Save(_ context.Context, _ *sql.Tx, e *domain.BudgetExpense) error {
	if _, ok := f.byID[e.ID]; !ok {
		f.order = append(f.order, e.ID)
	}
	f.byID[e.ID] = *e
	return nil
}

func (f *fakeExpenses) Delete(_ context.Context, _ *sql.Tx, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.responsibilities, id)
	return nil
}

func (f *fakeExpenses) ListResponsibilities(_ context.Context, budgetID uuid.UUID) ([]domain.BudgetExpenseResponsibility, error) {
	var out []domain.BudgetExpenseResponsibility
	for _, id := range f.order {
		if e, ok := f.byID[id]; ok && e.BudgetID == budgetID {
			out = append(out, f.responsibilities[id]...)
		}
	}
	return out, nil
}

func (f *fakeExpenses) ReplaceResponsibilities(_ context.Context, _ *sql.Tx, expenseID uuid.UUID, rs []domain.BudgetExpenseResponsibility) error {
	f.responsibilities[expenseID] = slices.Clone(rs)
	return nil
}

func money(t *testing.T, amount string, c domain.Currency) domain.Money {
	t.Helper()
	m, err := domain.ParseMoney(amount, c)
	require.NoError(t, err)
	return m
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
