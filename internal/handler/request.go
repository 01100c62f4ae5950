package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/auth"
	"github.com/josh-kwaku/cashdata/internal/domain"
)

// userAndPathID returns the authenticated user and the {id} path value.
// A malformed id is reported as not found.
func userAndPathID(r *http.Request) (uuid.UUID, uuid.UUID, *AppError) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, uuid.Nil, ErrMissingToken
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrResourceNotFound
	}
	return userID, id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

const currencyMessage = "must be USD, EUR, or ARS"

// parseMoneyField validates an amount/currency pair, appending field errors
// under the given names.
func parseMoneyField(amount *decimal.Decimal, currency, amountField, currencyField string, errs *[]FieldError) domain.Money {
	if amount == nil {
		*errs = append(*errs, FieldError{Field: amountField, Message: "required"})
	} else if !amount.IsPositive() {
		*errs = append(*errs, FieldError{Field: amountField, Message: "must be greater than 0"})
	}

	c, err := domain.ParseCurrency(currency)
	switch {
	case currency == "":
		*errs = append(*errs, FieldError{Field: currencyField, Message: "required"})
	case err != nil:
		*errs = append(*errs, FieldError{Field: currencyField, Message: currencyMessage})
	}

	if amount == nil || err != nil {
		return domain.Money{}
	}
	m, err := domain.NewMoney(*amount, c)
	if err != nil {
		*errs = append(*errs, FieldError{Field: currencyField, Message: currencyMessage})
	}
	return m
}

func parseDateField(value, field string, required bool, errs *[]FieldError) *time.Time {
	if strings.TrimSpace(value) == "" {
		if required {
			*errs = append(*errs, FieldError{Field: field, Message: "required"})
		}
		return nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Message: fmt.Sprintf("must be a date in %s format", time.DateOnly)})
		return nil
	}
	return &t
}

func parseOptionalID(value *string, field string, errs *[]FieldError) *uuid.UUID {
	if value == nil || *value == "" {
		return nil
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		*errs = append(*errs, FieldError{Field: field, Message: "must be a UUID"})
		return nil
	}
	return &id
}
