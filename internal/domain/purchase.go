package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Purchase struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	PaymentMethodID   uuid.UUID
	CategoryID        *uuid.UUID
	PurchaseDate      time.Time
	Description       string
	Total             DualMoney
	InstallmentsCount int
	ExchangeRateID    *uuid.UUID
	CreatedAt         time.Time
}

func (p *Purchase) Validate() error {
	if strings.TrimSpace(p.Description) == "" {
		return fmt.Errorf("Purchase: description cannot be empty: %w", ErrInvalidEntity)
	}
	if p.InstallmentsCount < 1 {
		return fmt.Errorf("Purchase: installments_count must be >= 1, got %d: %w", p.InstallmentsCount, ErrInvalidEntity)
	}
	if p.Total.Primary().IsZero() {
		return fmt.Errorf("Purchase: total amount cannot be zero: %w", ErrInvalidEntity)
	}
	if p.PurchaseDate.IsZero() {
		return fmt.Errorf("Purchase: purchase_date is required: %w", ErrInvalidEntity)
	}
	return nil
}

func (p *Purchase) Currency() Currency {
	return p.Total.Primary().Currency()
}
