package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/infrastructure/observability"
)

// ReconciliationService defines the interface for reconciliation operations
type ReconciliationService interface {
	Reconcile(ctx context.Context, appointmentID string, cmd entities.ReconciliationCommand, recordedBy string) (*entities.Appointment, error)
	ListPendingValidation(ctx context.Context, limit, offset int) ([]*entities.Appointment, error)
	ListEntries(ctx context.Context, appointmentID string) ([]*entities.ReconciliationEntry, error)
}

// ReconciliationHandler handles staff reconciliation requests
type ReconciliationHandler struct {
	service ReconciliationService
	metrics *observability.Metrics
}

// NewReconciliationHandler creates a new reconciliation handler
func NewReconciliationHandler(service ReconciliationService, metrics *observability.Metrics) *ReconciliationHandler {
	return &ReconciliationHandler{
		service: service,
		metrics: metrics,
	}
}

// Action discriminators accepted in the reconciliation request body
const (
	actionConfirm        = "confirm"
	actionCashDifference = "cash_difference"
	actionCorrectTier    = "correct_tier"
)

type reconcileRequest struct {
	Action     string   `json:"action"`
	Note       string   `json:"note,omitempty"`
	Amount     *float64 `json:"amount,omitempty"`
	ActualTier string   `json:"actual_tier,omitempty"`
	RecordedBy string   `json:"recorded_by,omitempty"`
}

// Reconcile handles POST /api/appointments/{id}/reconciliation
func (h *ReconciliationHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	appointmentID := r.PathValue("id")
	if appointmentID == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	cmd, ok := h.parseCommand(w, req)
	if !ok {
		return
	}

	appointment, err := h.service.Reconcile(r.Context(), appointmentID, cmd, strings.TrimSpace(req.RecordedBy))
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	observability.RecordReconciliationMetric(r.Context(), h.metrics, string(cmd.Outcome()))
	respondWithJSON(w, http.StatusOK, appointment)
}

// parseCommand translates the request body into a reconciliation
// command. Unknown actions, malformed amounts and unknown tiers are
// rejected here, before they can reach the state machine.
func (h *ReconciliationHandler) parseCommand(w http.ResponseWriter, req reconcileRequest) (entities.ReconciliationCommand, bool) {
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case actionConfirm:
		return entities.ConfirmDocuments{Note: req.Note}, true

	case actionCashDifference:
		if req.Amount == nil {
			respondWithError(w, http.StatusBadRequest, "amount is required for a cash difference")
			return nil, false
		}
		amount := *req.Amount
		// JSON numbers arrive as float64; reject anything that is not a
		// positive whole peso amount.
		if amount != amount || amount <= 0 || amount != float64(int64(amount)) {
			respondWithError(w, http.StatusBadRequest, "amount must be a positive whole number")
			return nil, false
		}
		return entities.CashDifference{Amount: int64(amount), Note: req.Note}, true

	case actionCorrectTier:
		tier, err := entities.ParseTier(req.ActualTier)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return nil, false
		}
		return entities.CorrectTier{ActualTier: tier, Note: req.Note}, true

	default:
		respondWithError(w, http.StatusBadRequest, "action must be one of confirm, cash_difference, correct_tier")
		return nil, false
	}
}

// ListPendingValidation handles GET /api/appointments/pending-validation
func (h *ReconciliationHandler) ListPendingValidation(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 20)
	offset := parseIntParam(r, "offset", 0)

	appointments, err := h.service.ListPendingValidation(r.Context(), limit, offset)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if appointments == nil {
		appointments = []*entities.Appointment{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
		"limit":        limit,
		"offset":       offset,
	})
}

// ListEntries handles GET /api/appointments/{id}/reconciliation
func (h *ReconciliationHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	appointmentID := r.PathValue("id")
	if appointmentID == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	entries, err := h.service.ListEntries(r.Context(), appointmentID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if entries == nil {
		entries = []*entities.ReconciliationEntry{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func parseIntParam(r *http.Request, name string, defaultValue int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
