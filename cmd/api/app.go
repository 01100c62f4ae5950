package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/josh-kwaku/cashdata/internal/config"
	"github.com/josh-kwaku/cashdata/internal/fx"
	"github.com/josh-kwaku/cashdata/internal/handler"
	"github.com/josh-kwaku/cashdata/internal/middleware"
	"github.com/josh-kwaku/cashdata/internal/repository"
	"github.com/josh-kwaku/cashdata/internal/service"
)

type app struct {
	cfg    *config.Config
	logger *slog.Logger

	idempotency *repository.IdempotencyRepository

	health     *handler.HealthHandler
	purchases  *handler.PurchaseHandler
	statements *handler.StatementHandler
	budgets    *handler.BudgetHandler
	fx         *handler.FXHandler
}

func newApp(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*app, error) {
	fallbacks, err := cfg.FallbackRates()
	if err != nil {
		return nil, fmt.Errorf("newApp: %w", err)
	}
	preferred, err := cfg.PreferredRateType()
	if err != nil {
		return nil, fmt.Errorf("newApp: %w", err)
	}

	txRunner := repository.NewDB(db)
	cards := repository.NewCreditCardRepository(db)
	statements := repository.NewStatementRepository(db)
	installments := repository.NewInstallmentRepository(db)
	purchases := repository.NewPurchaseRepository(db)
	rates := repository.NewExchangeRateRepository(db)
	budgets := repository.NewBudgetRepository(db)
	incomes := repository.NewIncomeRepository(db)
	expenses := repository.NewBudgetExpenseRepository(db)

	rateService := fx.NewRateService(fx.NewFinder(rates), fallbacks, preferred)

	purchaseService := service.NewPurchaseService(cards, purchases, installments, statements, rates, rateService, txRunner)
	statementService := service.NewStatementService(cards, statements, installments, txRunner)
	budgetService := service.NewBudgetService(budgets, incomes, expenses, purchases, installments, txRunner)

	return &app{
		cfg:         cfg,
		logger:      logger,
		idempotency: repository.NewIdempotencyRepository(db),
		health:      handler.NewHealthHandler(db, version),
		purchases:   handler.NewPurchaseHandler(purchaseService),
		statements:  handler.NewStatementHandler(statementService),
		budgets:     handler.NewBudgetHandler(budgetService),
		fx:          handler.NewFXHandler(rateService),
	}, nil
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", a.health.Liveness)
	mux.HandleFunc("GET /ready", a.health.Readiness)

	authed := middleware.Auth(a.cfg.JWTSecret)
	idempotent := middleware.Idempotency(a.idempotency, a.cfg.IdempotencyTTL)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }
	create := func(h http.HandlerFunc) http.Handler { return authed(idempotent(h)) }

	mux.Handle("POST /api/v1/purchases", create(a.purchases.Create))
	mux.Handle("PATCH /api/v1/purchases/{id}", protect(a.purchases.Update))
	mux.Handle("GET /api/v1/purchases/in-currency", protect(a.purchases.InCurrency))
	mux.Handle("PUT /api/v1/installments/{id}/statement", protect(a.purchases.AssignStatement))

	mux.Handle("GET /api/v1/statements/{id}", protect(a.statements.Get))
	mux.Handle("PATCH /api/v1/statements/{id}/dates", protect(a.statements.UpdateDates))
	mux.Handle("GET /api/v1/credit-cards/{id}/statements", protect(a.statements.ListByCard))

	mux.Handle("POST /api/v1/budgets/{id}/expenses", create(a.budgets.AddExpense))
	mux.Handle("GET /api/v1/budgets/{id}/balances", protect(a.budgets.Balances))
	mux.Handle("PUT /api/v1/budget-expenses/{id}/responsibilities", protect(a.budgets.UpdateResponsibilities))
	mux.Handle("DELETE /api/v1/budget-expenses/{id}", protect(a.budgets.RemoveExpense))

	mux.Handle("GET /api/v1/fx/rate", protect(a.fx.GetRate))

	return middleware.RequestID(middleware.Logging(a.logger)(middleware.Recovery(mux)))
}

// purgeIdempotencyKeys deletes expired idempotency entries every interval
// until ctx is done.
func (a *app) purgeIdempotencyKeys(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.idempotency.DeleteExpired(ctx)
			if err != nil {
				a.logger.Warn("idempotency purge failed", "error", err)
				continue
			}
			if n > 0 {
				a.logger.Info("idempotency keys purged", "count", n)
			}
		}
	}
}
