package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/cashdata/internal/billing"
	"github.com/josh-kwaku/cashdata/internal/domain"
	"github.com/josh-kwaku/cashdata/internal/logging"
	"github.com/josh-kwaku/cashdata/internal/service"
)

type statementService interface {
	GetStatement(ctx context.Context, userID, statementID uuid.UUID) (*service.StatementView, error)
	ListStatements(ctx context.Context, userID, cardID uuid.UUID, includeFuture bool) ([]domain.MonthlyStatement, error)
	UpdateStatementDates(ctx context.Context, in service.UpdateStatementDatesInput) (*billing.StatementDatesResult, error)
}

type StatementHandler struct {
	statements statementService
}

func NewStatementHandler(statements statementService) *StatementHandler {
	return &StatementHandler{statements: statements}
}

type statementDetailDTO struct {
	Statement    statementDTO     `json:"statement"`
	Installments []installmentDTO `json:"installments"`
	Total        moneyDTO         `json:"total"`
}

func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, statementID, appErr := userAndPathID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	view, err := h.statements.GetStatement(r.Context(), userID, statementID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("statement lookup failed", "statement_id", statementID, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, statementDetailDTO{
		Statement:    toStatementDTO(&view.Statement),
		Installments: toInstallmentDTOs(view.Installments),
		Total:        toMoneyDTO(view.Total),
	})
}

// ListByCard serves GET /api/v1/credit-cards/{id}/statements. Future
// statements are included with ?include_future=true.
func (h *StatementHandler) ListByCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, appErr := userAndPathID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	includeFuture := false
	if v := r.URL.Query().Get("include_future"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			RespondValidationError(w, []FieldError{{Field: "include_future", Message: "must be true or false"}})
			return
		}
		includeFuture = b
	}

	statements, err := h.statements.ListStatements(r.Context(), userID, cardID, includeFuture)
	if err != nil {
		logging.FromContext(r.Context()).Warn("statement listing failed", "credit_card_id", cardID, "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toStatementDTOs(statements))
}

type updateStatementDatesRequest struct {
	StartDate   string `json:"start_date"`
	ClosingDate string `json:"closing_date"`
	DueDate     string `json:"due_date"`
}

func (r updateStatementDatesRequest) toInput(userID, statementID uuid.UUID) (service.UpdateStatementDatesInput, []FieldError) {
	var errs []FieldError

	in := service.UpdateStatementDatesInput{UserID: userID, StatementID: statementID}
	in.StartDate = parseDateField(r.StartDate, "start_date", false, &errs)
	if d := parseDateField(r.ClosingDate, "closing_date", true, &errs); d != nil {
		in.ClosingDate = *d
	}
	if d := parseDateField(r.DueDate, "due_date", true, &errs); d != nil {
		in.DueDate = *d
	}
	return in, errs
}

type statementDatesResultDTO struct {
	Statement           statementDTO     `json:"statement"`
	NextStatement       *statementDTO    `json:"next_statement,omitempty"`
	UpdatedInstallments []installmentDTO `json:"updated_installments"`
}

func (h *StatementHandler) UpdateDates(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	userID, statementID, appErr := userAndPathID(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req updateStatementDatesRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}
	in, fields := req.toInput(userID, statementID)
	if len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.statements.UpdateStatementDates(r.Context(), in)
	if err != nil {
		log.Warn("statement date update failed",
			"statement_id", statementID,
			"closing_date", in.ClosingDate.Format(time.DateOnly),
			"error", err,
		)
		RespondDomainError(w, err)
		return
	}

	dto := statementDatesResultDTO{
		Statement:           toStatementDTO(&res.Statement),
		UpdatedInstallments: toInstallmentDTOs(res.Installments),
	}
	if res.Next != nil {
		next := toStatementDTO(res.Next)
		dto.NextStatement = &next
	}
	RespondSuccess(w, http.StatusOK, dto)
}
