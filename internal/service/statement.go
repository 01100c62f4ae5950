package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/billing"
	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/logging"
)

type StatementService struct {
	cards        creditCardRepository
	statements   statementRepository
	installments installmentRepository
	tx           txRunner
	now          func() time.Time
}

func NewStatementService(cards creditCardRepository, statements statementRepository, installments installmentRepository, tx txRunner) *StatementService {
	return &StatementService{
		cards:        cards,
		statements:   statements,
		installments: installments,
		tx:           tx,
		now:          time.Now,
	}
}

// statementForUser loads a statement and its card, hiding statements of
// other users' cards.
func (s *StatementService) statementForUser(ctx context.Context, userID, statementID uuid.UUID) (*domain.MonthlyStatement, *domain.CreditCard, error) {
	st, err := s.statements.GetByID(ctx, statementID)
	if err != nil {
		return nil, nil, err
	}
	card, err := s.cards.GetByID(ctx, st.CreditCardID)
	if err != nil {
		return nil, nil, err
	}
	if card.UserID != userID {
		return nil, nil, domain.ErrNotFound
	}
	return st, card, nil
}

type StatementView struct {
	Statement    domain.MonthlyStatement
	Installments []domain.Installment
	Total        domain.Money
}

// GetStatement returns a statement with the installments it shows and
// their total in card currency.
func (s *StatementService) GetStatement(ctx context.Context, userID, statementID uuid.UUID) (*StatementView, error) {
	st, card, err := s.statementForUser(ctx, userID, statementID)
	if err != nil {
		return nil, fmt.Errorf("GetStatement: %w", err)
	}
	installments, _, err := s.installments.ListByCard(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("GetStatement: %w", err)
	}

	view := &StatementView{Statement: *st, Total: domain.ZeroMoney(card.Currency)}
	for _, inst := range installments {
		if !inst.BelongsTo(st) {
			continue
		}
		view.Installments = append(view.Installments, inst)
		if view.Total, err = view.Total.Add(inst.Amount); err != nil {
			return nil, fmt.Errorf("GetStatement: installment %s: %w", inst.ID, err)
		}
	}
	return view, nil
}

// ListStatements returns the card's statements. Future statements are left
// out unless includeFuture is set.
func (s *StatementService) ListStatements(ctx context.Context, userID, cardID uuid.UUID, includeFuture bool) ([]domain.MonthlyStatement, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("ListStatements: %w", err)
	}
	if card.UserID != userID {
		return nil, fmt.Errorf("ListStatements: %w", domain.ErrNotFound)
	}
	statements, err := s.statements.ListByCard(ctx, card.ID, includeFuture, s.now())
	if err != nil {
		return nil, fmt.Errorf("ListStatements: %w", err)
	}
	return statements, nil
}

type UpdateStatementDatesInput struct {
	UserID      uuid.UUID
	StatementID uuid.UUID
	// StartDate keeps the current start date when nil.
	StartDate   *time.Time
	ClosingDate time.Time
	DueDate     time.Time
}

// UpdateStatementDates moves a statement's dates while keeping every
// installment on the statement it was shown on. The statement, the next
// statement and the affected installments are written in one transaction.
func (s *StatementService) UpdateStatementDates(ctx context.Context, in UpdateStatementDatesInput) (*billing.StatementDatesResult, error) {
	log := logging.FromContext(ctx)

	st, card, err := s.statementForUser(ctx, in.UserID, in.StatementID)
	if err != nil {
		return nil, fmt.Errorf("UpdateStatementDates: %w", err)
	}

	cardStatements, err := s.statements.ListByCard(ctx, card.ID, true, s.now())
	if err != nil {
		return nil, fmt.Errorf("UpdateStatementDates: %w", err)
	}
	installments, purchaseDates, err := s.installments.ListByCard(ctx, card.ID)
	if err != nil {
		return nil, fmt.Errorf("UpdateStatementDates: %w", err)
	}
	cardInstallments := make([]billing.CardInstallment, len(installments))
	for i := range installments {
		cardInstallments[i] = billing.CardInstallment{Installment: installments[i], PurchaseDate: purchaseDates[i]}
	}

	req := billing.StatementDatesInput{
		Statement:      *st,
		ClosingDate:    in.ClosingDate,
		DueDate:        in.DueDate,
		CardStatements: cardStatements,
		Installments:   cardInstallments,
	}
	if in.StartDate != nil {
		req.StartDate = *in.StartDate
	}
	res, err := billing.ReconcileStatementDates(req)
	if err != nil {
		return nil, fmt.Errorf("UpdateStatementDates: %w", err)
	}

	err = s.tx.WithTx(ctx, func(tx *sql.Tx) error {
		if err := s.statements.Save(ctx, tx, &res.Statement); err != nil {
			return err
		}
		if res.Next != nil {
			if err := s.statements.Save(ctx, tx, res.Next); err != nil {
				return err
			}
		}
		if len(res.Installments) == 0 {
			return nil
		}
		return s.installments.SaveAll(ctx, tx, res.Installments)
	})
	if err != nil {
		return nil, fmt.Errorf("UpdateStatementDates: %w", err)
	}

	log.Info("statement dates updated",
		"statement_id", res.Statement.ID,
		"closing_date", res.Statement.ClosingDate.Format(time.DateOnly),
		"due_date", res.Statement.DueDate.Format(time.DateOnly),
		"next_moved", res.Next != nil,
		"installments_changed", len(res.Installments),
	)
	return res, nil
}
