package fx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

type rateFinder interface {
	FindExchangeRate(ctx context.Context, date time.Time, from, to domain.Currency, preferred *domain.RateType, userID *uuid.UUID) (*domain.ExchangeRate, error)
}

// Quote is the factor taking an amount in FromCurrency to ToCurrency.
// Rate is the stored rate behind it, nil for identity and fallback quotes.
type Quote struct {
	FromCurrency domain.Currency
	ToCurrency   domain.Currency
	Factor       decimal.Decimal
	Rate         *domain.ExchangeRate
	Fallback     bool
}

type RateService struct {
	finder    rateFinder
	fallbacks map[string]decimal.Decimal
	preferred *domain.RateType
}

// NewRateService takes the fallback rates keyed by canonical pair ("USD_ARS"),
// each expressed in units of the second currency per unit of the first.
func NewRateService(finder rateFinder, fallbacks map[string]decimal.Decimal, preferred *domain.RateType) *RateService {
	return &RateService{finder: finder, fallbacks: fallbacks, preferred: preferred}
}

func pairKey(from, to domain.Currency) string {
	return string(from) + "_" + string(to)
}

// ParseFallbackRates reads "USD_ARS" style keys and positive decimal values.
func ParseFallbackRates(raw map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(raw))
	for key, value := range raw {
		parts := strings.Split(strings.ToUpper(strings.TrimSpace(key)), "_")
		if len(parts) != 2 {
			return nil, fmt.Errorf("ParseFallbackRates: key %q: %w", key, domain.ErrInvalidCurrency)
		}
		from, err := domain.ParseCurrency(parts[0])
		if err != nil {
			return nil, fmt.Errorf("ParseFallbackRates: %w", err)
		}
		to, err := domain.ParseCurrency(parts[1])
		if err != nil {
			return nil, fmt.Errorf("ParseFallbackRates: %w", err)
		}
		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil || !rate.IsPositive() || from == to {
			return nil, fmt.Errorf("ParseFallbackRates: %s=%q: %w", key, value, domain.ErrInvalidRequest)
		}
		cf, ct := domain.CanonicalPair(from, to)
		if cf != from {
			rate = decimal.NewFromInt(1).Div(rate)
		}
		out[pairKey(cf, ct)] = rate
	}
	return out, nil
}

// ResolveRate finds a stored rate for the pair and otherwise falls back to
// fallback, a rate in units of the canonical second currency per unit of the
// first. A nil fallback leaves the miss as ErrExchangeRateNotFound.
func ResolveRate(ctx context.Context, finder rateFinder, date time.Time, from, to domain.Currency, preferred *domain.RateType, userID *uuid.UUID, fallback *decimal.Decimal) (*Quote, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, fmt.Errorf("ResolveRate: invalid currency pair %s/%s: %w", from, to, domain.ErrInvalidCurrency)
	}

	if from == to {
		return &Quote{FromCurrency: from, ToCurrency: to, Factor: decimal.NewFromInt(1)}, nil
	}

	rate, err := finder.FindExchangeRate(ctx, date, from, to, preferred, userID)
	if err != nil {
		return nil, fmt.Errorf("ResolveRate: %w", err)
	}
	if rate != nil {
		factor, err := rate.Factor(from, to)
		if err != nil {
			return nil, fmt.Errorf("ResolveRate: %w", err)
		}
		return &Quote{FromCurrency: from, ToCurrency: to, Factor: factor, Rate: rate}, nil
	}

	if fallback == nil {
		return nil, fmt.Errorf("ResolveRate: %s/%s on %s: %w", from, to, date.Format(time.DateOnly), domain.ErrExchangeRateNotFound)
	}
	factor := *fallback
	if cf, _ := domain.CanonicalPair(from, to); cf != from {
		factor = decimal.NewFromInt(1).Div(factor)
	}
	return &Quote{FromCurrency: from, ToCurrency: to, Factor: factor, Fallback: true}, nil
}

func (s *RateService) GetRate(ctx context.Context, date time.Time, from, to domain.Currency, userID *uuid.UUID) (*Quote, error) {
	var fallback *decimal.Decimal
	if r, ok := s.fallbacks[pairKey(domain.CanonicalPair(from, to))]; ok {
		fallback = &r
	}
	quote, err := ResolveRate(ctx, s.finder, date, from, to, s.preferred, userID, fallback)
	if err != nil {
		return nil, fmt.Errorf("GetRate: %w", err)
	}
	return quote, nil
}

// Convert rounds the converted amount to two decimals.
func (s *RateService) Convert(ctx context.Context, amount domain.Money, to domain.Currency, date time.Time, userID *uuid.UUID) (domain.Money, *Quote, error) {
	quote, err := s.GetRate(ctx, date, amount.Currency(), to, userID)
	if err != nil {
		return domain.Money{}, nil, fmt.Errorf("Convert: %w", err)
	}
	if amount.Currency() == to {
		return amount, quote, nil
	}

	converted, err := amount.ConvertTo(to, quote.Factor).Round(2)
	if err != nil {
		return domain.Money{}, nil, fmt.Errorf("Convert: %w", err)
	}
	return converted, quote, nil
}

type CardConversionRequest struct {
	Amount       domain.Money
	CardCurrency domain.Currency
	Date         time.Time
	UserID       uuid.UUID

	// ConvertedAmount is the amount in card currency as entered by the user.
	// ExchangeRateID cites the stored rate it came from; without it the rate
	// is inferred from the two amounts.
	ConvertedAmount *domain.Money
	ExchangeRateID  *uuid.UUID
}

type CardConversion struct {
	Total          domain.DualMoney
	ExchangeRateID *uuid.UUID
	// InferredRate is a new rate the caller must persist.
	InferredRate *domain.ExchangeRate
}

// ToCardCurrency expresses a purchase amount with the card currency as
// primary and the purchase currency as secondary.
func (s *RateService) ToCardCurrency(ctx context.Context, req CardConversionRequest) (*CardConversion, error) {
	if !req.CardCurrency.IsValid() {
		return nil, fmt.Errorf("ToCardCurrency: %q: %w", req.CardCurrency, domain.ErrInvalidCurrency)
	}

	if req.Amount.Currency() == req.CardCurrency {
		return &CardConversion{Total: domain.SingleCurrency(req.Amount)}, nil
	}

	if req.ConvertedAmount != nil {
		return s.explicitConversion(req)
	}

	quote, err := s.GetRate(ctx, req.Date, req.Amount.Currency(), req.CardCurrency, &req.UserID)
	if err != nil {
		return nil, fmt.Errorf("ToCardCurrency: %w", err)
	}

	primary, err := req.Amount.ConvertTo(req.CardCurrency, quote.Factor).Round(2)
	if err != nil {
		return nil, fmt.Errorf("ToCardCurrency: %w", err)
	}
	total, err := domain.NewDualMoney(primary, &req.Amount, &quote.Factor)
	if err != nil {
		return nil, fmt.Errorf("ToCardCurrency: %w", err)
	}

	conv := &CardConversion{Total: total}
	if quote.Rate != nil {
		id := quote.Rate.ID
		conv.ExchangeRateID = &id
	}
	return conv, nil
}

func (s *RateService) explicitConversion(req CardConversionRequest) (*CardConversion, error) {
	converted := *req.ConvertedAmount
	if converted.Currency() != req.CardCurrency {
		return nil, fmt.Errorf("ToCardCurrency: converted amount must be in %s: %w", req.CardCurrency, domain.ErrCurrencyMismatch)
	}
	if !converted.IsPositive() || !req.Amount.IsPositive() {
		return nil, fmt.Errorf("ToCardCurrency: amounts must be positive: %w", domain.ErrInvalidCalculation)
	}

	factor := converted.Amount().Div(req.Amount.Amount())
	total, err := domain.NewDualMoney(converted, &req.Amount, &factor)
	if err != nil {
		return nil, fmt.Errorf("ToCardCurrency: %w", err)
	}

	if req.ExchangeRateID != nil {
		id := *req.ExchangeRateID
		return &CardConversion{Total: total, ExchangeRateID: &id}, nil
	}

	inferred, err := NewInferredRate(req.Date, req.Amount, converted, req.UserID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("ToCardCurrency: %w", err)
	}
	id := inferred.ID
	return &CardConversion{Total: total, ExchangeRateID: &id, InferredRate: inferred}, nil
}
