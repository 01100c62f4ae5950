package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreditCard struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	PaymentMethodID uuid.UUID
	Name            string
	Bank            string
	LastFourDigits  string
	Currency        Currency
	BillingCloseDay int
	PaymentDueDay   int
	CreditLimit     *Money
	CreatedAt       time.Time
}

func (c *CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("CreditCard: name cannot be empty: %w", ErrInvalidEntity)
	}
	if c.BillingCloseDay < 1 || c.BillingCloseDay > 31 {
		return fmt.Errorf("CreditCard: billing_close_day must be between 1-31, got %d: %w", c.BillingCloseDay, ErrInvalidEntity)
	}
	if c.PaymentDueDay < 1 || c.PaymentDueDay > 31 {
		return fmt.Errorf("CreditCard: payment_due_day must be between 1-31, got %d: %w", c.PaymentDueDay, ErrInvalidEntity)
	}
	if len(c.LastFourDigits) != 4 || strings.Trim(c.LastFourDigits, "0123456789") != "" {
		return fmt.Errorf("CreditCard: last_four_digits must be exactly 4 digits: %w", ErrInvalidEntity)
	}
	if !c.Currency.IsValid() {
		return fmt.Errorf("CreditCard: %q: %w", c.Currency, ErrInvalidCurrency)
	}
	if c.CreditLimit != nil && c.CreditLimit.IsNegative() {
		return fmt.Errorf("CreditCard: credit_limit cannot be negative: %w", ErrInvalidEntity)
	}
	return nil
}

// BillingPeriod maps a purchase date to the statement it lands on: the
// purchase month up to and including the close day, the next month after it.
func (c *CreditCard) BillingPeriod(purchaseDate time.Time) Period {
	p := PeriodOf(purchaseDate)
	if purchaseDate.Day() > c.BillingCloseDay {
		return p.Next()
	}
	return p
}

// DueDate is the payment due day of the period's month when it does not
// precede the close day, otherwise of the following month. Days past the end
// of the month clamp to its last day.
func (c *CreditCard) DueDate(period Period) time.Time {
	target := period
	if c.PaymentDueDay < c.BillingCloseDay {
		target = period.Next()
	}
	return clampedDate(target.Year(), target.Month(), c.PaymentDueDay)
}

func (c *CreditCard) ClosingDate(period Period) time.Time {
	return clampedDate(period.Year(), period.Month(), c.BillingCloseDay)
}

// DueDateAfterClosing is the first due day following a statement closing on
// closing.
func (c *CreditCard) DueDateAfterClosing(closing time.Time) time.Time {
	p := PeriodOf(closing)
	if c.PaymentDueDay < c.BillingCloseDay {
		p = p.Next()
	}
	return clampedDate(p.Year(), p.Month(), c.PaymentDueDay)
}
