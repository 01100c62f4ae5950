package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/auth"
	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/fx"
	"github.com/josh-kwaku/cashdata/internal/logging"
)

type fxService interface {
	GetRate(ctx context.Context, date time.Time, from, to domain.Currency, userID *uuid.UUID) (*fx.Quote, error)
}

type FXHandler struct {
	fx fxService
}

func NewFXHandler(fxSvc fxService) *FXHandler {
	return &FXHandler{fx: fxSvc}
}

// GetRate resolves the rate the converter would use for a pair on a date,
// today when no date is given.
func (h *FXHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		RespondAppError(w, ErrMissingToken, nil)
		return
	}

	q := r.URL.Query()
	from, to, date, fields := validateFXRateParams(q.Get("from"), q.Get("to"), q.Get("date"))
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	quote, err := h.fx.GetRate(r.Context(), date, from, to, &userID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("fx rate lookup failed", "from", from, "to", to, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, map[string]any{
		"date":  date.Format(time.DateOnly),
		"quote": toQuoteDTO(quote),
	})
}

func validateFXRateParams(from, to, date string) (domain.Currency, domain.Currency, time.Time, []FieldError) {
	var errs []FieldError

	parse := func(field, v string) domain.Currency {
		if v == "" {
			errs = append(errs, FieldError{Field: field, Message: "required"})
			return ""
		}
		c, err := domain.ParseCurrency(v)
		if err != nil {
			errs = append(errs, FieldError{Field: field, Message: currencyMessage})
		}
		return c
	}
	fromC, toC := parse("from", from), parse("to", to)

	d := domain.DateOf(time.Now())
	if p := parseDateField(date, "date", false, &errs); p != nil {
		d = *p
	}
	return fromC, toC, d, errs
}
