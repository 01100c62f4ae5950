package fx

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

const (
	inferredSource = "calculated"
	ratePlaces     = 6
)

// InferRate derives the canonical rate relating two amounts of the same
// value: units of the higher-ranked currency per unit of the lower one.
func InferRate(original, converted domain.Money) (from, to domain.Currency, rate decimal.Decimal, err error) {
	if original.Currency() == converted.Currency() {
		return "", "", decimal.Decimal{}, fmt.Errorf("InferRate: both amounts in %s: %w", original.Currency(), domain.ErrInvalidCalculation)
	}
	if !original.IsPositive() || !converted.IsPositive() {
		return "", "", decimal.Decimal{}, fmt.Errorf("InferRate: amounts must be positive: %w", domain.ErrInvalidCalculation)
	}

	from, to = domain.CanonicalPair(original.Currency(), converted.Currency())
	if original.Currency() == from {
		rate = converted.Amount().Div(original.Amount())
	} else {
		rate = original.Amount().Div(converted.Amount())
	}
	return from, to, rate.Round(ratePlaces), nil
}

// NewInferredRate materializes the rate implied by a dual-currency purchase,
// dated to the purchase and attributed to the user who entered it.
func NewInferredRate(date time.Time, original, converted domain.Money, userID uuid.UUID, now time.Time) (*domain.ExchangeRate, error) {
	from, to, rate, err := InferRate(original, converted)
	if err != nil {
		return nil, fmt.Errorf("NewInferredRate: %w", err)
	}

	source := inferredSource
	notes := fmt.Sprintf("Inferred from purchase: %s -> %s", original, converted)
	r := &domain.ExchangeRate{
		ID:              uuid.New(),
		Date:            domain.DateOf(date),
		FromCurrency:    from,
		ToCurrency:      to,
		Rate:            rate,
		RateType:        domain.RateTypeInferred,
		Source:          &source,
		Notes:           &notes,
		CreatedByUserID: &userID,
		CreatedAt:       now.UTC(),
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("NewInferredRate: %w", err)
	}
	return r, nil
}
