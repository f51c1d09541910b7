package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/andesalud/clinica-backend/internal/application/services"
	"github.com/andesalud/clinica-backend/internal/domain/entities"
)

// BookingService defines the interface for booking operations
type BookingService interface {
	BookAppointment(ctx context.Context, req services.BookingRequest) (*entities.Appointment, error)
	GetAppointment(ctx context.Context, id string) (*entities.Appointment, error)
}

// BookingHandler handles appointment booking requests
type BookingHandler struct {
	service BookingService
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(service BookingService) *BookingHandler {
	return &BookingHandler{
		service: service,
	}
}

type bookAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	Specialty string `json:"specialty"`
}

// BookAppointment handles POST /api/appointments
func (h *BookingHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req bookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	appointment, err := h.service.BookAppointment(r.Context(), services.BookingRequest{
		PatientID: req.PatientID,
		Specialty: req.Specialty,
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// GetAppointment handles GET /api/appointments/{id}
func (h *BookingHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	appointment, err := h.service.GetAppointment(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, appointment)
}
