package domain

import "errors"

var (
	ErrNotFound                  = errors.New("not found")
	ErrInvalidCurrency           = errors.New("invalid currency")
	ErrCurrencyMismatch          = errors.New("currency mismatch")
	ErrInvalidMoneyOperation     = errors.New("invalid money operation")
	ErrDivisionByZero            = errors.New("division by zero")
	ErrInvalidPercentage         = errors.New("invalid percentage")
	ErrInvalidPeriod             = errors.New("invalid period")
	ErrInvalidEntity             = errors.New("invalid entity")
	ErrInvalidStatementDateRange = errors.New("invalid statement date range")
	ErrInvalidCalculation        = errors.New("invalid calculation")
	ErrInvalidRateType           = errors.New("invalid exchange rate type")
	ErrInvalidSplitType          = errors.New("invalid split type")
	ErrExchangeRateNotFound      = errors.New("exchange rate not found")
	ErrBudgetNotActive           = errors.New("budget is not active")
	ErrNotParticipant            = errors.New("user is not a budget participant")
	ErrInvalidRequest            = errors.New("invalid request")
)
