package split

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

// Ledger totals a budget's expenses and responsibilities in one currency.
type Ledger struct {
	currency     domain.Currency
	participants []uuid.UUID
	paid         map[uuid.UUID]decimal.Decimal
	responsible  map[uuid.UUID]decimal.Decimal
	total        decimal.Decimal
}

type Debt struct {
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
	Amount     domain.Money
}

// NewLedger fails with ErrCurrencyMismatch when an expense or responsibility
// is not in currency. Users found only as payers or responsible parties are
// added after participants.
func NewLedger(currency domain.Currency, participants []uuid.UUID, expenses []domain.BudgetExpense, responsibilities []domain.BudgetExpenseResponsibility) (*Ledger, error) {
	if !currency.IsValid() {
		return nil, fmt.Errorf("NewLedger: %q: %w", currency, domain.ErrInvalidCurrency)
	}

	l := &Ledger{
		currency:    currency,
		paid:        make(map[uuid.UUID]decimal.Decimal),
		responsible: make(map[uuid.UUID]decimal.Decimal),
	}
	seen := make(map[uuid.UUID]bool)
	addUser := func(id uuid.UUID) {
		if !seen[id] {
			seen[id] = true
			l.participants = append(l.participants, id)
		}
	}
	for _, id := range participants {
		addUser(id)
	}

	for _, e := range expenses {
		if e.Amount.Currency() != currency {
			return nil, fmt.Errorf("NewLedger: expense %s in %s, ledger in %s: %w", e.ID, e.Amount.Currency(), currency, domain.ErrCurrencyMismatch)
		}
		l.paid[e.PaidByUserID] = l.paid[e.PaidByUserID].Add(e.Amount.Amount())
		l.total = l.total.Add(e.Amount.Amount())
		addUser(e.PaidByUserID)
	}
	for _, r := range responsibilities {
		if r.ResponsibleAmount.Currency() != currency {
			return nil, fmt.Errorf("NewLedger: responsibility %s in %s, ledger in %s: %w", r.ID, r.ResponsibleAmount.Currency(), currency, domain.ErrCurrencyMismatch)
		}
		l.responsible[r.UserID] = l.responsible[r.UserID].Add(r.ResponsibleAmount.Amount())
		addUser(r.UserID)
	}
	return l, nil
}

func (l *Ledger) money(d decimal.Decimal) domain.Money {
	m, _ := domain.NewMoney(d, l.currency)
	return m
}

func (l *Ledger) Participants() []uuid.UUID {
	out := make([]uuid.UUID, len(l.participants))
	copy(out, l.participants)
	return out
}

func (l *Ledger) Total() domain.Money { return l.money(l.total) }

func (l *Ledger) PaidBy(userID uuid.UUID) domain.Money {
	return l.money(l.paid[userID])
}

func (l *Ledger) ResponsibleFor(userID uuid.UUID) domain.Money {
	return l.money(l.responsible[userID])
}

// NetBalance is positive when the user is owed money.
func (l *Ledger) NetBalance(userID uuid.UUID) domain.Money {
	return l.money(l.paid[userID].Sub(l.responsible[userID]))
}

type balance struct {
	userID uuid.UUID
	amount decimal.Decimal
}

// DebtSummary settles debtors against creditors greedily, largest amounts
// first, so every transfer fully clears one side.
func (l *Ledger) DebtSummary() []Debt {
	var creditors, debtors []balance
	for _, id := range l.participants {
		net := l.paid[id].Sub(l.responsible[id])
		switch {
		case net.IsPositive():
			creditors = append(creditors, balance{id, net})
		case net.IsNegative():
			debtors = append(debtors, balance{id, net.Neg()})
		}
	}
	byAmount := func(b []balance) {
		sort.SliceStable(b, func(i, j int) bool { return b[i].amount.GreaterThan(b[j].amount) })
	}
	byAmount(creditors)
	byAmount(debtors)

	var debts []Debt
	c := 0
	for _, d := range debtors {
		owed := d.amount
		for owed.IsPositive() && c < len(creditors) {
			pay := decimal.Min(owed, creditors[c].amount)
			debts = append(debts, Debt{FromUserID: d.userID, ToUserID: creditors[c].userID, Amount: l.money(pay)})
			owed = owed.Sub(pay)
			creditors[c].amount = creditors[c].amount.Sub(pay)
			if !creditors[c].amount.IsPositive() {
				c++
			}
		}
	}
	return debts
}
