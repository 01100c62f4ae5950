package split

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Apportion returns each participant's share of the combined income recorded
// for period. Incomes from other periods or non-participants are ignored and
// a participant's incomes are summed. With no income, or a zero total, the
// split is equal. Shares carry two decimals and always sum to exactly 100.
func Apportion(participants []uuid.UUID, incomes []domain.MonthlyIncome, period domain.Period) (map[uuid.UUID]domain.Percentage, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("Apportion: at least one participant is required: %w", domain.ErrInvalidCalculation)
	}

	members := make(map[uuid.UUID]bool, len(participants))
	for _, id := range participants {
		members[id] = true
	}

	byUser := make(map[uuid.UUID]decimal.Decimal, len(participants))
	total := decimal.Zero
	var currency domain.Currency
	for _, inc := range incomes {
		if inc.Period != period || !members[inc.UserID] {
			continue
		}
		if currency == "" {
			currency = inc.Amount.Currency()
		} else if inc.Amount.Currency() != currency {
			return nil, fmt.Errorf("Apportion: incomes for %s mix %s and %s: %w",
				period, currency, inc.Amount.Currency(), domain.ErrInvalidCalculation)
		}
		byUser[inc.UserID] = byUser[inc.UserID].Add(inc.Amount.Amount())
		total = total.Add(inc.Amount.Amount())
	}

	shares := make([]decimal.Decimal, len(participants))
	if total.IsZero() {
		equal := hundred.Div(decimal.NewFromInt(int64(len(participants))))
		for i := range participants {
			shares[i] = equal.Round(2)
		}
	} else {
		if total.IsNegative() {
			return nil, fmt.Errorf("Apportion: total income for %s is negative: %w", period, domain.ErrInvalidCalculation)
		}
		for i, id := range participants {
			shares[i] = byUser[id].Mul(hundred).Div(total).Round(2)
		}
	}
	absorbResidual(shares)

	out := make(map[uuid.UUID]domain.Percentage, len(participants))
	for i, id := range participants {
		p, err := domain.NewPercentage(shares[i])
		if err != nil {
			return nil, fmt.Errorf("Apportion: %w", err)
		}
		out[id] = p
	}
	return out, nil
}

// absorbResidual adds 100 - Σ shares to the largest share, the first one on ties.
func absorbResidual(shares []decimal.Decimal) {
	sum := decimal.Zero
	largest := 0
	for i, s := range shares {
		sum = sum.Add(s)
		if s.GreaterThan(shares[largest]) {
			largest = i
		}
	}
	shares[largest] = shares[largest].Add(hundred.Sub(sum))
}
