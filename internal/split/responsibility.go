package split

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

type ResponsibilityRequest struct {
	ExpenseID    uuid.UUID
	Amount       domain.Money
	SplitType    domain.SplitType
	Participants []uuid.UUID

	// PROPORTIONAL
	Period  domain.Period
	Incomes []domain.MonthlyIncome

	// CUSTOM
	CustomPercentages map[uuid.UUID]domain.Percentage

	// FULL_SINGLE
	ResponsibleUserID *uuid.UUID
}

// CalculateResponsibilities returns one record per participant, in participant
// order, whose percentages sum to exactly 100.
func CalculateResponsibilities(req ResponsibilityRequest) ([]domain.BudgetExpenseResponsibility, error) {
	if len(req.Participants) == 0 {
		return nil, fmt.Errorf("CalculateResponsibilities: at least one participant is required: %w", domain.ErrInvalidCalculation)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("CalculateResponsibilities: amount must be positive, got %s: %w", req.Amount, domain.ErrInvalidCalculation)
	}

	var (
		out []domain.BudgetExpenseResponsibility
		err error
	)
	switch req.SplitType {
	case domain.SplitTypeEqual:
		out, err = equalSplit(req)
	case domain.SplitTypeProportional:
		out, err = proportionalSplit(req)
	case domain.SplitTypeCustom:
		out, err = customSplit(req)
	case domain.SplitTypeFullSingle:
		out, err = fullSingleSplit(req)
	default:
		return nil, fmt.Errorf("CalculateResponsibilities: unsupported split type %q: %w", req.SplitType, domain.ErrInvalidCalculation)
	}
	if err != nil {
		return nil, fmt.Errorf("CalculateResponsibilities: %w", err)
	}

	for i := range out {
		if err := out[i].Validate(); err != nil {
			return nil, fmt.Errorf("CalculateResponsibilities: %w", err)
		}
	}
	return out, nil
}

func responsibility(req ResponsibilityRequest, userID uuid.UUID, p domain.Percentage, amount domain.Money) domain.BudgetExpenseResponsibility {
	return domain.BudgetExpenseResponsibility{
		ID:                uuid.New(),
		BudgetExpenseID:   req.ExpenseID,
		UserID:            userID,
		Percentage:        p,
		ResponsibleAmount: amount,
	}
}

// equalSplit truncates every share but the last, which takes what is left of
// both the amount and the 100%. Truncating keeps the last share non-negative
// for any participant count.
func equalSplit(req ResponsibilityRequest) ([]domain.BudgetExpenseResponsibility, error) {
	n := len(req.Participants)
	total := req.Amount.Amount()
	share := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)

	out := make([]domain.BudgetExpenseResponsibility, 0, n)
	assigned, assignedPct := decimal.Zero, decimal.Zero
	for i, userID := range req.Participants {
		amount, pct := share, share.Mul(hundred).Div(total).RoundDown(2)
		if i == n-1 {
			amount, pct = total.Sub(assigned), hundred.Sub(assignedPct)
		}
		assigned = assigned.Add(amount)
		assignedPct = assignedPct.Add(pct)

		p, err := domain.NewPercentage(pct)
		if err != nil {
			return nil, fmt.Errorf("equal split: %w", err)
		}
		m, err := domain.NewMoney(amount, req.Amount.Currency())
		if err != nil {
			return nil, fmt.Errorf("equal split: %w", err)
		}
		out = append(out, responsibility(req, userID, p, m))
	}
	return out, nil
}

func proportionalSplit(req ResponsibilityRequest) ([]domain.BudgetExpenseResponsibility, error) {
	shares, err := Apportion(req.Participants, req.Incomes, req.Period)
	if err != nil {
		return nil, fmt.Errorf("proportional split: %w", err)
	}
	return fromPercentages(req, shares), nil
}

func customSplit(req ResponsibilityRequest) ([]domain.BudgetExpenseResponsibility, error) {
	members := make(map[uuid.UUID]bool, len(req.Participants))
	var missing []uuid.UUID
	for _, id := range req.Participants {
		members[id] = true
		if _, ok := req.CustomPercentages[id]; !ok {
			missing = append(missing, id)
		}
	}
	var extra []uuid.UUID
	for id := range req.CustomPercentages {
		if !members[id] {
			extra = append(extra, id)
		}
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "missing percentages for participants "+joinIDs(missing))
	}
	if len(extra) > 0 {
		problems = append(problems, "percentages given for non-participants "+joinIDs(extra))
	}
	if len(problems) > 0 {
		return nil, fmt.Errorf("custom split: %s: %w", strings.Join(problems, "; "), domain.ErrInvalidCalculation)
	}

	sum := decimal.Zero
	for _, p := range req.CustomPercentages {
		sum = sum.Add(p.Value())
	}
	if !sum.Equal(hundred) {
		return nil, fmt.Errorf("custom split: percentages must sum to 100, got %s: %w", sum, domain.ErrInvalidCalculation)
	}
	return fromPercentages(req, req.CustomPercentages), nil
}

func fullSingleSplit(req ResponsibilityRequest) ([]domain.BudgetExpenseResponsibility, error) {
	if req.ResponsibleUserID == nil {
		return nil, fmt.Errorf("full single split: responsible user is required: %w", domain.ErrInvalidCalculation)
	}
	found := false
	for _, id := range req.Participants {
		if id == *req.ResponsibleUserID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("full single split: user %s is not a participant: %w", *req.ResponsibleUserID, domain.ErrInvalidCalculation)
	}

	out := make([]domain.BudgetExpenseResponsibility, 0, len(req.Participants))
	for _, id := range req.Participants {
		if id == *req.ResponsibleUserID {
			out = append(out, responsibility(req, id, domain.HundredPercent(), req.Amount))
			continue
		}
		out = append(out, responsibility(req, id, domain.ZeroPercent(), domain.ZeroMoney(req.Amount.Currency())))
	}
	return out, nil
}

func fromPercentages(req ResponsibilityRequest, shares map[uuid.UUID]domain.Percentage) []domain.BudgetExpenseResponsibility {
	out := make([]domain.BudgetExpenseResponsibility, 0, len(req.Participants))
	for _, id := range req.Participants {
		p := shares[id]
		out = append(out, responsibility(req, id, p, p.ApplyTo(req.Amount)))
	}
	return out
}

func joinIDs(ids []uuid.UUID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = id.String()
	}
	sort.Strings(s)
	return "[" + strings.Join(s, ", ") + "]"
}
