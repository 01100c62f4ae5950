package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/cashdata/internal/domain"
)

type InstallmentRequest struct {
	PurchaseID   uuid.UUID
	Total        domain.Money
	Count        int
	PurchaseDate time.Time
	Card         *domain.CreditCard

	// Original is the purchase amount in its own currency when Total was
	// converted into the card currency. It is split the same way as Total.
	Original       *domain.Money
	ExchangeRateID *uuid.UUID
}

// GenerateInstallments splits the total into Count installments billed on
// consecutive periods starting at the card's billing period for the purchase
// date. Installment 1 carries the rounding remainder.
func GenerateInstallments(req InstallmentRequest) ([]domain.Installment, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("GenerateInstallments: installments_count must be >= 1: %w", domain.ErrInvalidCalculation)
	}
	if !req.Total.IsPositive() {
		return nil, fmt.Errorf("GenerateInstallments: total_amount must be positive: %w", domain.ErrInvalidCalculation)
	}
	if req.Card == nil {
		return nil, fmt.Errorf("GenerateInstallments: credit card is required: %w", domain.ErrInvalidCalculation)
	}

	amounts, err := splitAmount(req.Total, req.Count)
	if err != nil {
		return nil, fmt.Errorf("GenerateInstallments: %w", err)
	}

	var originals []domain.Money
	if req.Original != nil {
		if !req.Original.IsPositive() {
			return nil, fmt.Errorf("GenerateInstallments: original amount must be positive: %w", domain.ErrInvalidCalculation)
		}
		originals, err = splitAmount(*req.Original, req.Count)
		if err != nil {
			return nil, fmt.Errorf("GenerateInstallments: original: %w", err)
		}
	}

	start := req.Card.BillingPeriod(req.PurchaseDate)
	installments := make([]domain.Installment, 0, req.Count)
	for k := 1; k <= req.Count; k++ {
		period := start.AddMonths(k - 1)
		inst := domain.Installment{
			ID:                uuid.New(),
			PurchaseID:        req.PurchaseID,
			InstallmentNumber: k,
			TotalInstallments: req.Count,
			Amount:            amounts[k-1],
			ExchangeRateID:    req.ExchangeRateID,
			BillingPeriod:     period,
			DueDate:           req.Card.DueDate(period),
		}
		if originals != nil {
			o := originals[k-1]
			inst.OriginalAmount = &o
		}
		if err := inst.Validate(); err != nil {
			return nil, fmt.Errorf("GenerateInstallments: %w", err)
		}
		installments = append(installments, inst)
	}
	return installments, nil
}

// splitAmount floors the per-installment share to whole currency units and
// puts the remainder on the first share. Totals smaller than one unit per
// installment fall back to cents.
func splitAmount(total domain.Money, n int) ([]domain.Money, error) {
	count := decimal.NewFromInt(int64(n))
	base := total.Amount().Div(count).Floor()
	if base.IsZero() {
		base = total.Amount().Mul(hundred).Div(count).Floor().Div(hundred)
	}
	if base.IsZero() {
		return nil, fmt.Errorf("splitAmount: %s cannot be split into %d installments: %w", total, n, domain.ErrInvalidCalculation)
	}
	remainder := total.Amount().Sub(base.Mul(count))

	shares := make([]domain.Money, n)
	for i := range shares {
		amount := base
		if i == 0 {
			amount = base.Add(remainder)
		}
		m, err := domain.NewMoney(amount, total.Currency())
		if err != nil {
			return nil, fmt.Errorf("splitAmount: %w", err)
		}
		shares[i] = m
	}
	return shares, nil
}

var hundred = decimal.NewFromInt(100)
