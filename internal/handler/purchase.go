package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/auth"
	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/logging"
	"github.com/josh-kwaku/cashdata/internal/service"
)

type purchaseService interface {
	CreatePurchase(ctx context.Context, in service.CreatePurchaseInput) (*service.PurchaseResult, error)
	UpdatePurchase(ctx context.Context, in service.UpdatePurchaseInput) (*service.PurchaseResult, error)
	AssignInstallmentToStatement(ctx context.Context, userID, installmentID uuid.UUID, statementID *uuid.UUID) (*domain.Installment, error)
	PurchasesInCurrency(ctx context.Context, q service.PurchasesInCurrencyQuery) ([]service.PurchaseInCurrency, error)
}

type PurchaseHandler struct {
	purchases purchaseService
}

func NewPurchaseHandler(purchases purchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

type createPurchaseRequest struct {
	PaymentMethodID   string           `json:"payment_method_id"`
	CategoryID        *string          `json:"category_id"`
	PurchaseDate      string           `json:"purchase_date"`
	Description       string           `json:"description"`
	Amount            *decimal.Decimal `json:"amount"`
	Currency          string           `json:"currency"`
	InstallmentsCount int              `json:"installments_count"`
	ConvertedAmount   *decimal.Decimal `json:"converted_amount"`
	ConvertedCurrency string           `json:"converted_currency"`
	ExchangeRateID    *string          `json:"exchange_rate_id"`
}

func (r createPurchaseRequest) toInput(userID uuid.UUID) (service.CreatePurchaseInput, []FieldError) {
	var errs []FieldError

	in := service.CreatePurchaseInput{
		UserID:            userID,
		Description:       r.Description,
		InstallmentsCount: r.InstallmentsCount,
	}

	pm, err := uuid.Parse(r.PaymentMethodID)
	switch {
	case r.PaymentMethodID == "":
		errs = append(errs, FieldError{Field: "payment_method_id", Message: "required"})
	case err != nil:
		errs = append(errs, FieldError{Field: "payment_method_id", Message: "must be a UUID"})
	}
	in.PaymentMethodID = pm
	in.CategoryID = parseOptionalID(r.CategoryID, "category_id", &errs)
	in.ExchangeRateID = parseOptionalID(r.ExchangeRateID, "exchange_rate_id", &errs)

	if d := parseDateField(r.PurchaseDate, "purchase_date", true, &errs); d != nil {
		in.PurchaseDate = *d
	}
	if r.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "required"})
	}
	if r.InstallmentsCount < 1 {
		errs = append(errs, FieldError{Field: "installments_count", Message: "must be at least 1"})
	}
	in.Amount = parseMoneyField(r.Amount, r.Currency, "amount", "currency", &errs)

	if r.ConvertedAmount != nil {
		m := parseMoneyField(r.ConvertedAmount, r.ConvertedCurrency, "converted_amount", "converted_currency", &errs)
		in.ConvertedAmount = &m
	}
	return in, errs
}

type purchaseResultDTO struct {
	Purchase          purchaseDTO      `json:"purchase"`
	CardTotal         *moneyDTO        `json:"card_total,omitempty"`
	Installments      []installmentDTO `json:"installments"`
	CreatedStatements []statementDTO   `json:"created_statements"`
	InferredRate      *exchangeRateDTO `json:"inferred_rate,omitempty"`
}

func toPurchaseResultDTO(res *service.PurchaseResult) purchaseResultDTO {
	return purchaseResultDTO{
		Purchase:          toPurchaseDTO(&res.Purchase),
		CardTotal:         toOptionalMoneyDTO(res.CardTotal),
		Installments:      toInstallmentDTOs(res.Installments),
		CreatedStatements: toStatementDTOs(res.CreatedStatements),
		InferredRate:      toExchangeRateDTO(res.InferredRate),
	}
}

func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	var req createPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	in, fields := req.toInput(userID)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.purchases.CreatePurchase(r.Context(), in)
	if err != nil {
		log.Warn("purchase creation failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/v1/purchases/%s", res.Purchase.ID))
	RespondSuccess(w, http.StatusCreated, toPurchaseResultDTO(res))
}

type updatePurchaseRequest struct {
	Description       *string          `json:"description"`
	CategoryID        *string          `json:"category_id"`
	PurchaseDate      *string          `json:"purchase_date"`
	Amount            *decimal.Decimal `json:"amount"`
	Currency          string           `json:"currency"`
	InstallmentsCount *int             `json:"installments_count"`
	ConvertedAmount   *decimal.Decimal `json:"converted_amount"`
	ConvertedCurrency string           `json:"converted_currency"`
	ExchangeRateID    *string          `json:"exchange_rate_id"`
}

func (r updatePurchaseRequest) toInput(userID, purchaseID uuid.UUID) (service.UpdatePurchaseInput, []FieldError) {
	var errs []FieldError

	in := service.UpdatePurchaseInput{
		PurchaseID:        purchaseID,
		UserID:            userID,
		Description:       r.Description,
		InstallmentsCount: r.InstallmentsCount,
	}
	if r.Description != nil && *r.Description == "" {
		errs = append(errs, FieldError{Field: "description", Message: "cannot be empty"})
	}
	if r.InstallmentsCount != nil && *r.InstallmentsCount < 1 {
		errs = append(errs, FieldError{Field: "installments_count", Message: "must be at least 1"})
	}
	in.CategoryID = parseOptionalID(r.CategoryID, "category_id", &errs)
	in.ExchangeRateID = parseOptionalID(r.ExchangeRateID, "exchange_rate_id", &errs)
	if r.PurchaseDate != nil {
		in.PurchaseDate = parseDateField(*r.PurchaseDate, "purchase_date", true, &errs)
	}
	if r.Amount != nil {
		m := parseMoneyField(r.Amount, r.Currency, "amount", "currency", &errs)
		in.Amount = &m
	}
	if r.ConvertedAmount != nil {
		if r.Amount == nil {
			errs = append(errs, FieldError{Field: "converted_amount", Message: "requires amount"})
		}
		m := parseMoneyField(r.ConvertedAmount, r.ConvertedCurrency, "converted_amount", "converted_currency", &errs)
		in.ConvertedAmount = &m
	}
	return in, errs
}

func (h *PurchaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, purchaseID, appErr := userAndPathID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req updatePurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	in, fields := req.toInput(userID, purchaseID)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.purchases.UpdatePurchase(r.Context(), in)
	if err != nil {
		log.Warn("purchase update failed", "purchase_id", purchaseID, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toPurchaseResultDTO(res))
}

type assignStatementRequest struct {
	StatementID *string `json:"statement_id"`
}

// AssignStatement pins an installment to a statement; a null statement_id
// unpins it.
func (h *PurchaseHandler) AssignStatement(w http.ResponseWriter, r *http.Request) {
	userID, installmentID, appErr := userAndPathID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req assignStatementRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	var fields []FieldError
	statementID := parseOptionalID(req.StatementID, "statement_id", &fields)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	inst, err := h.purchases.AssignInstallmentToStatement(r.Context(), userID, installmentID, statementID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("installment assignment failed", "installment_id", installmentID, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toInstallmentDTO(inst))
}

type purchaseInCurrencyDTO struct {
	Purchase purchaseDTO `json:"purchase"`
	Amount   moneyDTO    `json:"amount"`
	Quote    *quoteDTO   `json:"quote,omitempty"`
}

func (h *PurchaseHandler) InCurrency(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	q := r.URL.Query()
	var fields []FieldError
	currency, err := domain.ParseCurrency(q.Get("currency"))
	if err != nil {
		fields = append(fields, FieldError{Field: "currency", Message: currencyMessage})
	}
	from := parseDateField(q.Get("from"), "from", false, &fields)
	to := parseDateField(q.Get("to"), "to", false, &fields)
	if from != nil && to != nil && to.Before(*from) {
		fields = append(fields, FieldError{Field: "to", Message: "must not be before from"})
	}
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	rows, err := h.purchases.PurchasesInCurrency(r.Context(), service.PurchasesInCurrencyQuery{
		UserID:   userID,
		Currency: currency,
		From:     from,
		To:       to,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("purchases conversion failed", "currency", currency, "error", err)
		RespondDomainError(w, err)
		return
	}

	out := make([]purchaseInCurrencyDTO, len(rows))
	for i := range rows {
		out[i] = purchaseInCurrencyDTO{
			Purchase: toPurchaseDTO(&rows[i].Purchase),
			Amount:   toMoneyDTO(rows[i].Amount),
			Quote:    toQuoteDTO(rows[i].Quote),
		}
	}
	RespondSuccess(w, http.StatusOK, map[string]any{
		"currency":  currency,
		"purchases": out,
	})
}
