package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/logging"
	"github.com/josh-kwaku/cashdata/internal/service"
)

type budgetService interface {
	AddExpense(ctx context.Context, in service.AddExpenseInput) (*service.ExpenseResult, error)
	UpdateResponsibilities(ctx context.Context, userID, expenseID uuid.UUID, policy service.SplitPolicy) (*service.ExpenseResult, error)
	RemoveExpense(ctx context.Context, userID, expenseID uuid.UUID) error
	Balances(ctx context.Context, userID, budgetID uuid.UUID, currency domain.Currency) (*service.BudgetBalances, error)
}

type BudgetHandler struct {
	budgets budgetService
}

func NewBudgetHandler(budgets budgetService) *BudgetHandler {
	return &BudgetHandler{budgets: budgets}
}

type splitRequest struct {
	SplitType         string                     `json:"split_type"`
	CustomPercentages map[string]decimal.Decimal `json:"custom_percentages"`
	ResponsibleUserID *string                    `json:"responsible_user_id"`
}

func (r splitRequest) toPolicy(errs *[]FieldError) service.SplitPolicy {
	var policy service.SplitPolicy

	t, err := domain.ParseSplitType(r.SplitType)
	if err != nil {
		*errs = append(*errs, FieldError{Field: "split_type", Message: "must be EQUAL, PROPORTIONAL, CUSTOM, or FULL_SINGLE"})
		return policy
	}
	policy.Type = t

	switch t {
	case domain.SplitTypeCustom:
		if len(r.CustomPercentages) == 0 {
			*errs = append(*errs, FieldError{Field: "custom_percentages", Message: "required for CUSTOM"})
			return policy
		}
		policy.CustomPercentages = make(map[uuid.UUID]domain.Percentage, len(r.CustomPercentages))
		for key, v := range r.CustomPercentages {
			field := fmt.Sprintf("custom_percentages.%s", key)
			id, err := uuid.Parse(key)
			if err != nil {
				*errs = append(*errs, FieldError{Field: field, Message: "key must be a user UUID"})
				continue
			}
			// Stored as NUMERIC(5,2).
			if !v.Equal(v.Round(2)) {
				*errs = append(*errs, FieldError{Field: field, Message: "at most 2 decimal places"})
				continue
			}
			p, err := domain.NewPercentage(v)
			if err != nil {
				*errs = append(*errs, FieldError{Field: field, Message: "must be between 0 and 100"})
				continue
			}
			policy.CustomPercentages[id] = p
		}
	case domain.SplitTypeFullSingle:
		if r.ResponsibleUserID == nil {
			*errs = append(*errs, FieldError{Field: "responsible_user_id", Message: "required for FULL_SINGLE"})
			return policy
		}
		policy.ResponsibleUserID = parseOptionalID(r.ResponsibleUserID, "responsible_user_id", errs)
	}
	return policy
}

type addExpenseRequest struct {
	PurchaseID    *string `json:"purchase_id"`
	InstallmentID *string `json:"installment_id"`
	splitRequest
}

func (h *BudgetHandler) AddExpense(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, budgetID, appErr := userAndPathID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req addExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	var fields []FieldError
	in := service.AddExpenseInput{
		UserID:        userID,
		BudgetID:      budgetID,
		PurchaseID:    parseOptionalID(req.PurchaseID, "purchase_id", &fields),
		InstallmentID: parseOptionalID(req.InstallmentID, "installment_id", &fields),
		Split:         req.toPolicy(&fields),
	}
	if (req.PurchaseID == nil) == (req.InstallmentID == nil) {
		fields = append(fields, FieldError{Field: "purchase_id", Message: "exactly one of purchase_id or installment_id is required"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.budgets.AddExpense(r.Context(), in)
	if err != nil {
		log.Warn("budget expense creation failed", "budget_id", budgetID, "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/budget-expenses/%s", res.Expense.ID))
	RespondSuccess(w, http.StatusCreated, toBudgetExpenseDTO(&res.Expense, res.Responsibilities))
}

func (h *BudgetHandler) UpdateResponsibilities(w http.ResponseWriter, r *http.Request) {
	userID, expenseID, appErr := userAndPathID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req splitRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	var fields []FieldError
	policy := req.toPolicy(&fields)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.budgets.UpdateResponsibilities(r.Context(), userID, expenseID, policy)
	if err != nil {
		logging.FromContext(r.Context()).Warn("responsibility update failed", "expense_id", expenseID, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toBudgetExpenseDTO(&res.Expense, res.Responsibilities))
}

func (h *BudgetHandler) RemoveExpense(w http.ResponseWriter, r *http.Request) {
	userID, expenseID, appErr := userAndPathID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.budgets.RemoveExpense(r.Context(), userID, expenseID); err != nil {
		logging.FromContext(r.Context()).Warn("budget expense removal failed", "expense_id", expenseID, "error", err)
		RespondDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type userBalanceDTO struct {
	UserID         uuid.UUID `json:"user_id"`
	Paid           moneyDTO  `json:"paid"`
	ResponsibleFor moneyDTO  `json:"responsible_for"`
	Net            moneyDTO  `json:"net"`
}

type debtDTO struct {
	FromUserID uuid.UUID `json:"from_user_id"`
	ToUserID   uuid.UUID `json:"to_user_id"`
	Amount     moneyDTO  `json:"amount"`
}

type balancesDTO struct {
	BudgetID uuid.UUID        `json:"budget_id"`
	Total    moneyDTO         `json:"total"`
	Balances []userBalanceDTO `json:"balances"`
	Debts    []debtDTO        `json:"debts"`
}

func (h *BudgetHandler) Balances(w http.ResponseWriter, r *http.Request) {
	userID, budgetID, appErr := userAndPathID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var currency domain.Currency
	if v := r.URL.Query().Get("currency"); v != "" {
		c, err := domain.ParseCurrency(v)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "currency", Message: currencyMessage}})
			return
		}
		currency = c
	}

	b, err := h.budgets.Balances(r.Context(), userID, budgetID, currency)
	if err != nil {
		logging.FromContext(r.Context()).Warn("budget balances failed", "budget_id", budgetID, "error", err)
		RespondDomainError(w, err)
		return
	}

	dto := balancesDTO{
		BudgetID: b.BudgetID,
		Total:    toMoneyDTO(b.Total),
		Balances: make([]userBalanceDTO, len(b.Balances)),
		Debts:    make([]debtDTO, len(b.Debts)),
	}
	for i, ub := range b.Balances {
		dto.Balances[i] = userBalanceDTO{
			UserID:         ub.UserID,
			Paid:           toMoneyDTO(ub.Paid),
			ResponsibleFor: toMoneyDTO(ub.ResponsibleFor),
			Net:            toMoneyDTO(ub.Net),
		}
	}
	for i, d := range b.Debts {
		dto.Debts[i] = debtDTO{FromUserID: d.FromUserID, ToUserID: d.ToUserID, Amount: toMoneyDTO(d.Amount)}
	}
	RespondSuccess(w, http.StatusOK, dto)
}
