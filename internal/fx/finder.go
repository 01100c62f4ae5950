package fx

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

type rateSource interface {
	// ListRates returns the global rates for the pair in either orientation
	// plus those created by userID.
	ListRates(ctx context.Context, a, b domain.Currency, userID *uuid.UUID) ([]domain.ExchangeRate, error)
}

var priority = []domain.RateType{
	domain.RateTypeCustom,
	domain.RateTypeOfficial,
	domain.RateTypeBlue,
	domain.RateTypeInferred,
}

type Finder struct {
	rates rateSource
}

func NewFinder(rates rateSource) *Finder {
	return &Finder{rates: rates}
}

// FindExchangeRate returns nil when no stored rate covers the pair.
func (f *Finder) FindExchangeRate(ctx context.Context, date time.Time, from, to domain.Currency, preferred *domain.RateType, userID *uuid.UUID) (*domain.ExchangeRate, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, fmt.Errorf("FindExchangeRate: %s/%s: %w", from, to, domain.ErrInvalidCurrency)
	}
	if from == to {
		return nil, fmt.Errorf("FindExchangeRate: %s to itself: %w", from, domain.ErrInvalidCurrency)
	}

	rates, err := f.rates.ListRates(ctx, from, to, userID)
	if err != nil {
		return nil, fmt.Errorf("FindExchangeRate: %w", err)
	}

	var candidates []domain.ExchangeRate
	for _, r := range rates {
		if r.Covers(from, to) {
			candidates = append(candidates, r)
		}
	}
	return SelectRate(candidates, domain.DateOf(date), preferred), nil
}

// SelectRate picks, in order: the preferred type on the date, the preferred
// type nearest the date, the first of custom, official, blue and inferred
// on the date, any type nearest the date. Equally near dates resolve to the
// earlier one, then to the most recently created rate.
func SelectRate(rates []domain.ExchangeRate, date time.Time, preferred *domain.RateType) *domain.ExchangeRate {
	sorted := make([]domain.ExchangeRate, len(rates))
	copy(sorted, rates)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := distance(sorted[i].Date, date), distance(sorted[j].Date, date)
		if di != dj {
			return di < dj
		}
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	onDate := func(t domain.RateType) *domain.ExchangeRate {
		for i := range sorted {
			if sorted[i].RateType == t && domain.DateOf(sorted[i].Date).Equal(date) {
				return &sorted[i]
			}
		}
		return nil
	}
	nearest := func(t *domain.RateType) *domain.ExchangeRate {
		for i := range sorted {
			if t == nil || sorted[i].RateType == *t {
				return &sorted[i]
			}
		}
		return nil
	}

	if preferred != nil {
		if r := onDate(*preferred); r != nil {
			return r
		}
		if r := nearest(preferred); r != nil {
			return r
		}
	}
	for _, t := range priority {
		if r := onDate(t); r != nil {
			return r
		}
	}
	return nearest(nil)
}

func distance(a, b time.Time) time.Duration {
	d := domain.DateOf(a).Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
