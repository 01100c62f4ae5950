package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps core sentinels to API errors. The wrapped message
// is returned as details for client errors, since it names the violated rule.
func RespondDomainError(w http.ResponseWriter, err error) {
	var appErr *AppError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrInvalidCurrency):
		appErr = ErrInvalidCurrency
	case errors.Is(err, domain.ErrCurrencyMismatch):
		appErr = ErrCurrencyMismatch
	case errors.Is(err, domain.ErrInvalidStatementDateRange):
		appErr = ErrInvalidDateRange
	case errors.Is(err, domain.ErrInvalidPercentage):
		appErr = ErrInvalidPercentage
	case errors.Is(err, domain.ErrInvalidSplitType):
		appErr = ErrInvalidSplitType
	case errors.Is(err, domain.ErrExchangeRateNotFound):
		appErr = ErrExchangeRateNotFound
	case errors.Is(err, domain.ErrBudgetNotActive):
		appErr = ErrBudgetNotActive
	case errors.Is(err, domain.ErrNotParticipant):
		appErr = ErrNotParticipant
	case errors.Is(err, domain.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidPeriod),
		errors.Is(err, domain.ErrInvalidRateType):
		appErr = ErrInvalidEntity
	case errors.Is(err, domain.ErrInvalidCalculation),
		errors.Is(err, domain.ErrInvalidMoneyOperation),
		errors.Is(err, domain.ErrDivisionByZero):
		appErr = ErrInvalidCalculation
	case errors.Is(err, domain.ErrInvalidRequest):
		appErr = ErrUnprocessableRequest
	default:
		slog.Error("unhandled domain error", "error", err)
		RespondAppError(w, ErrInternalError, nil)
		return
	}

	var details any
	if appErr.Status < http.StatusInternalServerError && appErr != ErrResourceNotFound {
		details = err.Error()
	}
	RespondAppError(w, appErr, details)
}
