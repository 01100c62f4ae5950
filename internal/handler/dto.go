package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/fx"
)

type moneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toMoneyDTO(m domain.Money) moneyDTO {
	return moneyDTO{Amount: m.StringFixed(), Currency: string(m.Currency())}
}

func toOptionalMoneyDTO(m *domain.Money) *moneyDTO {
	if m == nil {
		return nil
	}
	dto := toMoneyDTO(*m)
	return &dto
}

type purchaseDTO struct {
	ID                uuid.UUID  `json:"id"`
	PaymentMethodID   uuid.UUID  `json:"payment_method_id"`
	CategoryID        *uuid.UUID `json:"category_id"`
	PurchaseDate      string     `json:"purchase_date"`
	Description       string     `json:"description"`
	Total             moneyDTO   `json:"total"`
	OriginalTotal     *moneyDTO  `json:"original_total,omitempty"`
	ConversionRate    *string    `json:"conversion_rate,omitempty"`
	InstallmentsCount int        `json:"installments_count"`
	ExchangeRateID    *uuid.UUID `json:"exchange_rate_id"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toPurchaseDTO(p *domain.Purchase) purchaseDTO {
	dto := purchaseDTO{
		ID:                p.ID,
		PaymentMethodID:   p.PaymentMethodID,
		CategoryID:        p.CategoryID,
		PurchaseDate:      p.PurchaseDate.Format(time.DateOnly),
		Description:       p.Description,
		Total:             toMoneyDTO(p.Total.Primary()),
		InstallmentsCount: p.InstallmentsCount,
		ExchangeRateID:    p.ExchangeRateID,
		CreatedAt:         p.CreatedAt,
	}
	if original, ok := p.Total.Secondary(); ok {
		dto.OriginalTotal = toOptionalMoneyDTO(&original)
	}
	if rate, ok := p.Total.Rate(); ok {
		s := rate.String()
		dto.ConversionRate = &s
	}
	return dto
}

type installmentDTO struct {
	ID                          uuid.UUID  `json:"id"`
	PurchaseID                  uuid.UUID  `json:"purchase_id"`
	InstallmentNumber           int        `json:"installment_number"`
	TotalInstallments           int        `json:"total_installments"`
	Amount                      moneyDTO   `json:"amount"`
	OriginalAmount              *moneyDTO  `json:"original_amount,omitempty"`
	BillingPeriod               string     `json:"billing_period"`
	DueDate                     string     `json:"due_date"`
	ManuallyAssignedStatementID *uuid.UUID `json:"manually_assigned_statement_id"`
}

func toInstallmentDTO(i *domain.Installment) installmentDTO {
	return installmentDTO{
		ID:                          i.ID,
		PurchaseID:                  i.PurchaseID,
		InstallmentNumber:           i.InstallmentNumber,
		TotalInstallments:           i.TotalInstallments,
		Amount:                      toMoneyDTO(i.Amount),
		OriginalAmount:              toOptionalMoneyDTO(i.OriginalAmount),
		BillingPeriod:               i.BillingPeriod.String(),
		DueDate:                     i.DueDate.Format(time.DateOnly),
		ManuallyAssignedStatementID: i.ManuallyAssignedStatementID,
	}
}

func toInstallmentDTOs(is []domain.Installment) []installmentDTO {
	out := make([]installmentDTO, len(is))
	for i := range is {
		out[i] = toInstallmentDTO(&is[i])
	}
	return out
}

type statementDTO struct {
	ID           uuid.UUID `json:"id"`
	CreditCardID uuid.UUID `json:"credit_card_id"`
	Period       string    `json:"period"`
	StartDate    string    `json:"start_date"`
	ClosingDate  string    `json:"closing_date"`
	DueDate      string    `json:"due_date"`
}

func toStatementDTO(s *domain.MonthlyStatement) statementDTO {
	return statementDTO{
		ID:           s.ID,
		CreditCardID: s.CreditCardID,
		Period:       s.PeriodIdentifier().String(),
		StartDate:    s.StartDate.Format(time.DateOnly),
		ClosingDate:  s.ClosingDate.Format(time.DateOnly),
		DueDate:      s.DueDate.Format(time.DateOnly),
	}
}

func toStatementDTOs(ss []domain.MonthlyStatement) []statementDTO {
	out := make([]statementDTO, len(ss))
	for i := range ss {
		out[i] = toStatementDTO(&ss[i])
	}
	return out
}

type exchangeRateDTO struct {
	ID           uuid.UUID `json:"id"`
	Date         string    `json:"date"`
	FromCurrency string    `json:"from_currency"`
	ToCurrency   string    `json:"to_currency"`
	Rate         string    `json:"rate"`
	RateType     string    `json:"rate_type"`
	Source       *string   `json:"source,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
}

func toExchangeRateDTO(r *domain.ExchangeRate) *exchangeRateDTO {
	if r == nil {
		return nil
	}
	return &exchangeRateDTO{
		ID:           r.ID,
		Date:         r.Date.Format(time.DateOnly),
		FromCurrency: string(r.FromCurrency),
		ToCurrency:   string(r.ToCurrency),
		Rate:         r.Rate.String(),
		RateType:     string(r.RateType),
		Source:       r.Source,
		Notes:        r.Notes,
	}
}

type quoteDTO struct {
	FromCurrency string           `json:"from_currency"`
	ToCurrency   string           `json:"to_currency"`
	Factor       string           `json:"factor"`
	Fallback     bool             `json:"fallback"`
	Rate         *exchangeRateDTO `json:"rate,omitempty"`
}

func toQuoteDTO(q *fx.Quote) *quoteDTO {
	if q == nil {
		return nil
	}
	return &quoteDTO{
		FromCurrency: string(q.FromCurrency),
		ToCurrency:   string(q.ToCurrency),
		Factor:       q.Factor.String(),
		Fallback:     q.Fallback,
		Rate:         toExchangeRateDTO(q.Rate),
	}
}

type responsibilityDTO struct {
	UserID            uuid.UUID `json:"user_id"`
	Percentage        string    `json:"percentage"`
	ResponsibleAmount moneyDTO  `json:"responsible_amount"`
}

type budgetExpenseDTO struct {
	ID               uuid.UUID           `json:"id"`
	BudgetID         uuid.UUID           `json:"budget_id"`
	PurchaseID       *uuid.UUID          `json:"purchase_id"`
	InstallmentID    *uuid.UUID          `json:"installment_id"`
	PaidByUserID     uuid.UUID           `json:"paid_by_user_id"`
	SplitType        string              `json:"split_type"`
	Amount           moneyDTO            `json:"amount"`
	Description      string              `json:"description"`
	Date             string              `json:"date"`
	Responsibilities []responsibilityDTO `json:"responsibilities"`
}

func toBudgetExpenseDTO(e *domain.BudgetExpense, rs []domain.BudgetExpenseResponsibility) budgetExpenseDTO {
	dto := budgetExpenseDTO{
		ID:               e.ID,
		BudgetID:         e.BudgetID,
		PurchaseID:       e.PurchaseID,
		InstallmentID:    e.InstallmentID,
		PaidByUserID:     e.PaidByUserID,
		SplitType:        string(e.SplitType),
		Amount:           toMoneyDTO(e.Amount),
		Description:      e.Description,
		Date:             e.Date.Format(time.DateOnly),
		Responsibilities: make([]responsibilityDTO, len(rs)),
	}
	for i, r := range rs {
		dto.Responsibilities[i] = responsibilityDTO{
			UserID:            r.UserID,
			Percentage:        r.Percentage.Value().StringFixed(2),
			ResponsibleAmount: toMoneyDTO(r.ResponsibleAmount),
		}
	}
	return dto
}
