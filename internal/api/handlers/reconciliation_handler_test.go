package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/andesalud/clinica-backend/internal/api/handlers"
	"github.com/andesalud/clinica-backend/internal/domain/entities"
	apperrors "github.com/andesalud/clinica-backend/pkg/errors"
)

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) Reconcile(ctx context.Context, appointmentID string, cmd entities.ReconciliationCommand, recordedBy string) (*entities.Appointment, error) {
	args := m.Called(ctx, appointmentID, cmd, recordedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockReconciliationService) ListPendingValidation(ctx context.Context, limit, offset int) ([]*entities.Appointment, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockReconciliationService) ListEntries(ctx context.Context, appointmentID string) ([]*entities.ReconciliationEntry, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ReconciliationEntry), args.Error(1)
}

func newReconciliationMux(service *MockReconciliationService) *http.ServeMux {
	handler := handlers.NewReconciliationHandler(service, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/appointments/{id}/reconciliation", handler.Reconcile)
	mux.HandleFunc("GET /api/appointments/{id}/reconciliation", handler.ListEntries)
	mux.HandleFunc("GET /api/appointments/pending-validation", handler.ListPendingValidation)
	return mux
}

func postReconciliation(mux *http.ServeMux, appointmentID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost,
		"/api/appointments/"+appointmentID+"/reconciliation", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)
	return recorder
}

func TestReconciliationHandler_Reconcile(t *testing.T) {
	t.Run("confirm action maps to confirm command", func(t *testing.T) {
		service := new(MockReconciliationService)
		mux := newReconciliationMux(service)

		service.On("Reconcile", mock.Anything, "appt-1",
			entities.ConfirmDocuments{Note: "documentos en regla"}, "staff-9").
			Return(&entities.Appointment{ID: "appt-1", ValidationStatus: entities.ValidationStatusConfirmed}, nil)

		recorder := postReconciliation(mux, "appt-1",
			`{"action":"confirm","note":"documentos en regla","recorded_by":"staff-9"}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		var response entities.Appointment
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, entities.ValidationStatusConfirmed, response.ValidationStatus)
		service.AssertExpectations(t)
	})

	t.Run("cash difference action carries whole peso amount", func(t *testing.T) {
		service := new(MockReconciliationService)
		mux := newReconciliationMux(service)

		service.On("Reconcile", mock.Anything, "appt-1",
			entities.CashDifference{Amount: 9000}, "").
			Return(&entities.Appointment{ID: "appt-1", ValidationStatus: entities.ValidationStatusCashPaid}, nil)

		recorder := postReconciliation(mux, "appt-1", `{"action":"cash_difference","amount":9000}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		service.AssertExpectations(t)
	})

	t.Run("cash difference without amount is rejected", func(t *testing.T) {
		service := new(MockReconciliationService)
		mux := newReconciliationMux(service)

		recorder := postReconciliation(mux, "appt-1", `{"action":"cash_difference"}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		service.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("fractional amount is rejected", func(t *testing.T) {
		service := new(MockReconciliationService)
		mux := newReconciliationMux(service)

		recorder := postReconciliation(mux, "appt-1", `{"action":"cash_difference","amount":9000.5}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		service.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("correct tier action parses the tier", func(t *testing.T) {
		service := new(MockReconciliationService)
		mux := newReconciliationMux(service)

		service.On("Reconcile", mock.Anything, "appt-1",
			entities.CorrectTier{ActualTier: entities.TierParticular}, "").
			Return(&entities.Appointment{ID: "appt-1", ValidationStatus: entities.ValidationStatusTierCorrected}, nil)

		recorder := postReconciliation(mux, "appt-1", `{"action":"correct_tier","actual_tier":"particular"}`)

		assert.Equal(t, http.StatusOK, recorder.Code)
		service.AssertExpectations(t)
	})

	t.Run("unknown tier is rejected at the boundary", func(t *testing.T) {
		service := new(MockReconciliationService)
		mux := newReconciliationMux(service)

		recorder := postReconciliation(mux, "appt-1", `{"action":"correct_tier","actual_tier":"capredena"}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		service.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown action is rejected", func(t *testing.T) {
		service := new(MockReconciliationService)
		mux := newReconciliationMux(service)

		recorder := postReconciliation(mux, "appt-1", `{"action":"waive"}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("conflict from the service maps to 409", func(t *testing.T) {
		service := new(MockReconciliationService)
		mux := newReconciliationMux(service)

		service.On("Reconcile", mock.Anything, "appt-1", entities.ConfirmDocuments{}, "").
			Return(nil, apperrors.NewConflictError("appointment appt-1 is not pending validation"))

		recorder := postReconciliation(mux, "appt-1", `{"action":"confirm"}`)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("missing appointment maps to 404", func(t *testing.T) {
		service := new(MockReconciliationService)
		mux := newReconciliationMux(service)

		service.On("Reconcile", mock.Anything, "ghost", entities.ConfirmDocuments{}, "").
			Return(nil, apperrors.NewNotFoundError("appointment ghost not found"))

		recorder := postReconciliation(mux, "ghost", `{"action":"confirm"}`)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestReconciliationHandler_ListPendingValidation(t *testing.T) {
	service := new(MockReconciliationService)
	mux := newReconciliationMux(service)

	service.On("ListPendingValidation", mock.Anything, 50, 10).
		Return([]*entities.Appointment{
			{ID: "appt-1", ValidationStatus: entities.ValidationStatusPending},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/pending-validation?limit=50&offset=10", nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Appointments []*entities.Appointment `json:"appointments"`
		Limit        int                     `json:"limit"`
		Offset       int                     `json:"offset"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Len(t, response.Appointments, 1)
	assert.Equal(t, 50, response.Limit)
	service.AssertExpectations(t)
}

func TestReconciliationHandler_ListEntries(t *testing.T) {
	service := new(MockReconciliationService)
	mux := newReconciliationMux(service)

	service.On("ListEntries", mock.Anything, "appt-1").
		Return([]*entities.ReconciliationEntry{
			{ID: "entry-1", AppointmentID: "appt-1", Outcome: entities.OutcomeConfirmedWithDocuments},
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/appointments/appt-1/reconciliation", nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Entries []*entities.ReconciliationEntry `json:"entries"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Len(t, response.Entries, 1)
	service.AssertExpectations(t)
}
