package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/cashdata/internal/billing"
	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/service"
)

type mockStatementService struct {
	updateIn      service.UpdateStatementDatesInput
	includeFuture bool
	err           error
}

func (m *mockStatementService) GetStatement(_ context.Context, _, statementID uuid.UUID) (*service.StatementView, error) {
	return nil, m.err
}

func (m *mockStatementService) ListStatements(_ context.Context, _, _ uuid.UUID, includeFuture bool) ([]domain.MonthlyStatement, error) {
	m.includeFuture = includeFuture
	return nil, m.err
}

func (m *mockStatementService) UpdateStatementDates(_ context.Context, in service.UpdateStatementDatesInput) (*billing.StatementDatesResult, error) {
	m.updateIn = in
	if m.err != nil {
		return nil, m.err
	}
	start := domain.Date(2025, time.January, 11)
	if in.StartDate != nil {
		start = *in.StartDate
	}
	st, err := domain.NewMonthlyStatement(in.StatementID, uuid.New(), start, in.ClosingDate, in.DueDate)
	if err != nil {
		return nil, err
	}
	return &billing.StatementDatesResult{Statement: *st}, nil
}

func TestStatementHandler_UpdateDates(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svcErr     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "closing and due dates",
			body:       `{"closing_date": "2025-02-03", "due_date": "2025-02-18"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "with start date",
			body:       `{"start_date": "2025-01-05", "closing_date": "2025-02-03", "due_date": "2025-02-18"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing due date",
			body:       `{"closing_date": "2025-02-03"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "malformed date",
			body:       `{"closing_date": "03/02/2025", "due_date": "2025-02-18"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "due before closing",
			body:       `{"closing_date": "2025-02-10", "due_date": "2025-02-01"}`,
			svcErr:     fmt.Errorf("UpdateStatementDates: %w", domain.ErrInvalidStatementDateRange),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INVALID_STATEMENT_DATES",
		},
		{
			name:       "statement of another user",
			body:       `{"closing_date": "2025-02-03", "due_date": "2025-02-18"}`,
			svcErr:     fmt.Errorf("UpdateStatementDates: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "RESOURCE_NOT_FOUND",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockStatementService{err: tc.svcErr}
			h := NewStatementHandler(svc)
			statementID := uuid.New()

			req := httptest.NewRequest(http.MethodPatch, "/api/v1/statements/"+statementID.String()+"/dates", strings.NewReader(tc.body))
			req.SetPathValue("id", statementID.String())
			rr := httptest.NewRecorder()

			h.UpdateDates(rr, authed(req, uuid.New()))

			assert.Equal(t, tc.wantStatus, rr.Code)
			resp := decodeResponse(t, rr)
			if tc.wantCode != "" {
				require.NotNil(t, resp.Error)
				assert.Equal(t, tc.wantCode, resp.Error.Code)
				return
			}
			assert.True(t, resp.Success)
			assert.Equal(t, statementID, svc.updateIn.StatementID)
			assert.True(t, svc.updateIn.ClosingDate.Equal(domain.Date(2025, time.February, 3)))
		})
	}
}

func TestStatementHandler_ListByCard_IncludeFuture(t *testing.T) {
	tests := []struct {
		query      string
		wantStatus int
		want       bool
	}{
		{query: "", wantStatus: http.StatusOK, want: false},
		{query: "?include_future=true", wantStatus: http.StatusOK, want: true},
		{query: "?include_future=maybe", wantStatus: http.StatusBadRequest, want: false},
	}

	for _, tc := range tests {
		t.Run("query "+tc.query, func(t *testing.T) {
			svc := &mockStatementService{}
			h := NewStatementHandler(svc)
			cardID := uuid.New()

			req := httptest.NewRequest(http.MethodGet, "/api/v1/credit-cards/"+cardID.String()+"/statements"+tc.query, nil)
			req.SetPathValue("id", cardID.String())
			rr := httptest.NewRecorder()

			h.ListByCard(rr, authed(req, uuid.New()))

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, tc.want, svc.includeFuture)
		})
	}
}

func TestValidateFXRateParams(t *testing.T) {
	tests := []struct {
		name       string
		from, to   string
		date       string
		wantFields []string
	}{
		{name: "valid pair", from: "usd", to: "ARS", date: "2025-01-15"},
		{name: "date defaults to today", from: "EUR", to: "USD"},
		{name: "missing currencies", wantFields: []string{"from", "to"}},
		{name: "unsupported currency", from: "GBP", to: "ARS", wantFields: []string{"from"}},
		{name: "bad date", from: "USD", to: "ARS", date: "yesterday", wantFields: []string{"date"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, date, errs := validateFXRateParams(tc.from, tc.to, tc.date)

			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tc.wantFields, fields)
			if len(tc.wantFields) == 0 {
				assert.False(t, date.IsZero())
			}
		})
	}
}
