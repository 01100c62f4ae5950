package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidCurrency      = &AppError{http.StatusBadRequest, "INVALID_CURRENCY", "Invalid currency"}
	ErrCurrencyMismatch     = &AppError{http.StatusUnprocessableEntity, "CURRENCY_MISMATCH", "Currency mismatch"}
	ErrInvalidEntity        = &AppError{http.StatusUnprocessableEntity, "INVALID_ENTITY", "Entity failed validation"}
	ErrInvalidDateRange     = &AppError{http.StatusUnprocessableEntity, "INVALID_STATEMENT_DATES", "Statement dates must satisfy start < closing <= due"}
	ErrInvalidCalculation   = &AppError{http.StatusUnprocessableEntity, "INVALID_CALCULATION", "Amounts cannot be calculated from the given input"}
	ErrInvalidPercentage    = &AppError{http.StatusBadRequest, "INVALID_PERCENTAGE", "Percentages must be between 0 and 100"}
	ErrInvalidSplitType     = &AppError{http.StatusBadRequest, "INVALID_SPLIT_TYPE", "Split type must be EQUAL, PROPORTIONAL, CUSTOM, or FULL_SINGLE"}
	ErrExchangeRateNotFound = &AppError{http.StatusUnprocessableEntity, "EXCHANGE_RATE_NOT_FOUND", "No exchange rate available for the currency pair"}
	ErrBudgetNotActive      = &AppError{http.StatusConflict, "BUDGET_NOT_ACTIVE", "Budget is not active"}
	ErrNotParticipant       = &AppError{http.StatusForbidden, "NOT_A_PARTICIPANT", "User is not a participant of the budget"}
	ErrUnprocessableRequest = &AppError{http.StatusUnprocessableEntity, "UNPROCESSABLE_REQUEST", "Request cannot be applied"}
	ErrIdempotencyConflict  = &AppError{http.StatusUnprocessableEntity, "IDEMPOTENCY_CONFLICT", "Idempotency key reused with a different request"}
)
