package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/billing"
	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/fx"
	"github.com/josh-kwaku/cashdata/internal/logging"
)

type PurchaseService struct {
	cards        creditCardRepository
	purchases    purchaseRepository
	installments installmentRepository
	statements   statementRepository
	rates        exchangeRateWriter
	fx           rateConverter
	tx           txRunner
	now          func() time.Time
}

func NewPurchaseService(
	cards creditCardRepository,
	purchases purchaseRepository,
	installments installmentRepository,
	statements statementRepository,
	rates exchangeRateWriter,
	converter rateConverter,
	tx txRunner,
) *PurchaseService {
	return &PurchaseService{
		cards:        cards,
		purchases:    purchases,
		installments: installments,
		statements:   statements,
		rates:        rates,
		fx:           converter,
		tx:           tx,
		now:          time.Now,
	}
}

type CreatePurchaseInput struct {
	UserID            uuid.UUID
	PaymentMethodID   uuid.UUID
	CategoryID        *uuid.UUID
	PurchaseDate      time.Time
	Description       string
	Amount            domain.Money
	InstallmentsCount int

	// ConvertedAmount is the amount in card currency when the user knows it.
	ConvertedAmount *domain.Money
	ExchangeRateID  *uuid.UUID
}

// PurchaseResult.CardTotal is the amount billed to the card and is nil for
// non-card purchases.
type PurchaseResult struct {
	Purchase          domain.Purchase
	CardTotal         *domain.Money
	Installments      []domain.Installment
	CreatedStatements []domain.MonthlyStatement
	InferredRate      *domain.ExchangeRate
}

// cardFor returns nil for payment methods that are not credit cards.
func (s *PurchaseService) cardFor(ctx context.Context, paymentMethodID, userID uuid.UUID) (*domain.CreditCard, error) {
	card, err := s.cards.GetByPaymentMethod(ctx, paymentMethodID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if card.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return card, nil
}

func (s *PurchaseService) CreatePurchase(ctx context.Context, in CreatePurchaseInput) (*PurchaseResult, error) {
	log := logging.FromContext(ctx)

	card, err := s.cardFor(ctx, in.PaymentMethodID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("CreatePurchase: payment method %s: %w", in.PaymentMethodID, err)
	}
	if card == nil && in.InstallmentsCount > 1 {
		return nil, fmt.Errorf("CreatePurchase: only credit card payment methods can have multiple installments: %w", domain.ErrInvalidRequest)
	}

	p := &domain.Purchase{
		ID:                uuid.New(),
		UserID:            in.UserID,
		PaymentMethodID:   in.PaymentMethodID,
		CategoryID:        in.CategoryID,
		PurchaseDate:      domain.DateOf(in.PurchaseDate),
		Description:       strings.TrimSpace(in.Description),
		Total:             domain.SingleCurrency(in.Amount),
		InstallmentsCount: in.InstallmentsCount,
		CreatedAt:         s.now().UTC(),
	}

	var inferred *domain.ExchangeRate
	if card != nil {
		conv, err := s.fx.ToCardCurrency(ctx, fx.CardConversionRequest{
			Amount:          in.Amount,
			CardCurrency:    card.Currency,
			Date:            p.PurchaseDate,
			UserID:          in.UserID,
			ConvertedAmount: in.ConvertedAmount,
			ExchangeRateID:  in.ExchangeRateID,
		})
		if err != nil {
			return nil, fmt.Errorf("CreatePurchase: %w", err)
		}
		p.Total = conv.Total
		p.ExchangeRateID = conv.ExchangeRateID
		inferred = conv.InferredRate
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("CreatePurchase: %w", err)
	}

	installments, statements, err := s.schedule(ctx, p, card)
	if err != nil {
		return nil, fmt.Errorf("CreatePurchase: %w", err)
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if inferred != nil {
			if err := s.rates.Create(ctx, tx, inferred); err != nil {
				return err
			}
		}
		if err := s.purchases.Save(ctx, tx, p); err != nil {
			return err
		}
		return s.saveSchedule(ctx, tx, installments, statements)
	})
	if err != nil {
		return nil, fmt.Errorf("CreatePurchase: %w", err)
	}

	log.Info("purchase created",
		"purchase_id", p.ID,
		"user_id", p.UserID,
		"total", p.Total.Primary().String(),
		"installments", len(installments),
		"statements_created", len(statements),
		"inferred_rate", inferred != nil,
	)

	return &PurchaseResult{
		Purchase:          *p,
		CardTotal:         cardTotal(p, card),
		Installments:      installments,
		CreatedStatements: statements,
		InferredRate:      inferred,
	}, nil
}

func cardTotal(p *domain.Purchase, card *domain.CreditCard) *domain.Money {
	if card == nil {
		return nil
	}
	m := p.Total.ForCard(card.Currency)
	return &m
}

// schedule generates the purchase's installments and any statements their
// billing periods still lack. Non-card purchases have neither.
func (s *PurchaseService) schedule(ctx context.Context, p *domain.Purchase, card *domain.CreditCard) ([]domain.Installment, []domain.MonthlyStatement, error) {
	if card == nil {
		return nil, nil, nil
	}

	req := billing.InstallmentRequest{
		PurchaseID:     p.ID,
		Total:          p.Total.Primary(),
		Count:          p.InstallmentsCount,
		PurchaseDate:   p.PurchaseDate,
		Card:           card,
		ExchangeRateID: p.ExchangeRateID,
	}
	if original, ok := p.Total.Secondary(); ok {
		req.Original = &original
	}
	installments, err := billing.GenerateInstallments(req)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.statements.ListByCard(ctx, card.ID, true, p.PurchaseDate)
	if err != nil {
		return nil, nil, err
	}
	periods := make([]domain.Period, len(installments))
	for i, inst := range installments {
		periods[i] = inst.BillingPeriod
	}
	statements, err := billing.MissingStatements(card, periods, existing)
	if err != nil {
		return nil, nil, err
	}
	return installments, statements, nil
}

func (s *PurchaseService) saveSchedule(ctx context.Context, tx *sql.Tx, installments []domain.Installment, statements []domain.MonthlyStatement) error {
	for i := range statements {
		if err := s.statements.Save(ctx, tx, &statements[i]); err != nil {
			return err
		}
	}
	if len(installments) == 0 {
		return nil
	}
	return s.installments.SaveAll(ctx, tx, installments)
}

type UpdatePurchaseInput struct {
	PurchaseID        uuid.UUID
	UserID            uuid.UUID
	Description       *string
	CategoryID        *uuid.UUID
	PurchaseDate      *time.Time
	Amount            *domain.Money
	InstallmentsCount *int
	ConvertedAmount   *domain.Money
	ExchangeRateID    *uuid.UUID
}

func (in UpdatePurchaseInput) reschedules() bool {
	return in.PurchaseDate != nil || in.Amount != nil || in.InstallmentsCount != nil
}

// UpdatePurchase edits a purchase. A new amount, date or installment count
// replaces the purchase's installments wholesale, dropping manual statement
// assignments.
func (s *PurchaseService) UpdatePurchase(ctx context.Context, in UpdatePurchaseInput) (*PurchaseResult, error) {
	log := logging.FromContext(ctx)

	p, err := s.purchases.GetByID(ctx, in.PurchaseID)
	if err != nil {
		return nil, fmt.Errorf("UpdatePurchase: %w", err)
	}
	if p.UserID != in.UserID {
		return nil, fmt.Errorf("UpdatePurchase: %w", domain.ErrNotFound)
	}

	card, err := s.cardFor(ctx, p.PaymentMethodID, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("UpdatePurchase: payment method %s: %w", p.PaymentMethodID, err)
	}

	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.CategoryID != nil {
		p.CategoryID = in.CategoryID
	}
	if in.PurchaseDate != nil {
		p.PurchaseDate = domain.DateOf(*in.PurchaseDate)
	}
	if in.InstallmentsCount != nil {
		if card == nil && *in.InstallmentsCount > 1 {
			return nil, fmt.Errorf("UpdatePurchase: only credit card payment methods can have multiple installments: %w", domain.ErrInvalidRequest)
		}
		p.InstallmentsCount = *in.InstallmentsCount
	}

	var inferred *domain.ExchangeRate
	if in.Amount != nil {
		p.Total = domain.SingleCurrency(*in.Amount)
		p.ExchangeRateID = nil
		if card != nil {
			conv, err := s.fx.ToCardCurrency(ctx, fx.CardConversionRequest{
				Amount:          *in.Amount,
				CardCurrency:    card.Currency,
				Date:            p.PurchaseDate,
				UserID:          in.UserID,
				ConvertedAmount: in.ConvertedAmount,
				ExchangeRateID:  in.ExchangeRateID,
			})
			if err != nil {
				return nil, fmt.Errorf("UpdatePurchase: %w", err)
			}
			p.Total = conv.Total
			p.ExchangeRateID = conv.ExchangeRateID
			inferred = conv.InferredRate
		}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("UpdatePurchase: %w", err)
	}

	var (
		installments []domain.Installment
		statements   []domain.MonthlyStatement
	)
	if in.reschedules() {
		if installments, statements, err = s.schedule(ctx, p, card); err != nil {
			return nil, fmt.Errorf("UpdatePurchase: %w", err)
		}
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if inferred != nil {
			if err := s.rates.Create(ctx, tx, inferred); err != nil {
				return err
			}
		}
		if err := s.purchases.Save(ctx, tx, p); err != nil {
			return err
		}
		if !in.reschedules() {
			return nil
		}
		if err := s.installments.DeleteByPurchase(ctx, tx, p.ID); err != nil {
			return err
		}
		return s.saveSchedule(ctx, tx, installments, statements)
	})
	if err != nil {
		return nil, fmt.Errorf("UpdatePurchase: %w", err)
	}

	log.Info("purchase updated",
		"purchase_id", p.ID,
		"rescheduled", in.reschedules(),
		"installments", len(installments),
	)

	return &PurchaseResult{
		Purchase:          *p,
		CardTotal:         cardTotal(p, card),
		Installments:      installments,
		CreatedStatements: statements,
		InferredRate:      inferred,
	}, nil
}

// AssignInstallmentToStatement pins an installment to a statement of the
// same card. A nil statementID removes the pin.
func (s *PurchaseService) AssignInstallmentToStatement(ctx context.Context, userID, installmentID uuid.UUID, statementID *uuid.UUID) (*domain.Installment, error) {
	log := logging.FromContext(ctx)

	inst, err := s.installments.GetByID(ctx, installmentID)
	if err != nil {
		return nil, fmt.Errorf("AssignInstallmentToStatement: %w", err)
	}
	p, err := s.purchases.GetByID(ctx, inst.PurchaseID)
	if err != nil {
		return nil, fmt.Errorf("AssignInstallmentToStatement: %w", err)
	}
	if p.UserID != userID {
		return nil, fmt.Errorf("AssignInstallmentToStatement: %w", domain.ErrNotFound)
	}

	if statementID != nil {
		card, err := s.cardFor(ctx, p.PaymentMethodID, userID)
		if err != nil {
			return nil, fmt.Errorf("AssignInstallmentToStatement: %w", err)
		}
		st, err := s.statements.GetByID(ctx, *statementID)
		if err != nil {
			return nil, fmt.Errorf("AssignInstallmentToStatement: statement: %w", err)
		}
		if card == nil || st.CreditCardID != card.ID {
			return nil, fmt.Errorf("AssignInstallmentToStatement: statement %s belongs to another card: %w", st.ID, domain.ErrInvalidRequest)
		}
		id := st.ID
		inst.ManuallyAssignedStatementID = &id
	} else {
		inst.ManuallyAssignedStatementID = nil
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		return s.installments.SaveAll(ctx, tx, []domain.Installment{*inst})
	})
	if err != nil {
		return nil, fmt.Errorf("AssignInstallmentToStatement: %w", err)
	}

	log.Info("installment assigned",
		"installment_id", inst.ID,
		"statement_id", inst.ManuallyAssignedStatementID,
	)
	return inst, nil
}

type PurchaseInCurrency struct {
	Purchase domain.Purchase
	Amount   domain.Money
	// Quote is nil when the purchase already carried an amount in the
	// requested currency.
	Quote *fx.Quote
}

type PurchasesInCurrencyQuery struct {
	UserID   uuid.UUID
	Currency domain.Currency
	From     *time.Time
	To       *time.Time
}

// PurchasesInCurrency expresses every purchase of the user in one currency,
// preferring the amount stored on the purchase over a conversion.
func (s *PurchaseService) PurchasesInCurrency(ctx context.Context, q PurchasesInCurrencyQuery) ([]PurchaseInCurrency, error) {
	if !q.Currency.IsValid() {
		return nil, fmt.Errorf("PurchasesInCurrency: %q: %w", q.Currency, domain.ErrInvalidCurrency)
	}

	purchases, err := s.purchases.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("PurchasesInCurrency: %w", err)
	}

	out := make([]PurchaseInCurrency, 0, len(purchases))
	for _, p := range purchases {
		if q.From != nil && p.PurchaseDate.Before(domain.DateOf(*q.From)) {
			continue
		}
		if q.To != nil && p.PurchaseDate.After(domain.DateOf(*q.To)) {
			continue
		}

		if m, err := p.Total.InCurrency(q.Currency); err == nil {
			out = append(out, PurchaseInCurrency{Purchase: p, Amount: m})
			continue
		}
		converted, quote, err := s.fx.Convert(ctx, p.Total.Primary(), q.Currency, p.PurchaseDate, &q.UserID)
		if err != nil {
			return nil, fmt.Errorf("PurchasesInCurrency: purchase %s: %w", p.ID, err)
		}
		out = append(out, PurchaseInCurrency{Purchase: p, Amount: converted, Quote: quote})
	}
	return out, nil
}
