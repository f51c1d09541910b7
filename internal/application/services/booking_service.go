package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/domain/repositories"
	"github.com/andesalud/clinica-backend/internal/infrastructure/observability"
	apperrors "github.com/andesalud/clinica-backend/pkg/errors"
)

// BookingRequest is what the booking flow supplies when an appointment
// is created
type BookingRequest struct {
	PatientID string
	Specialty string
}

// BookingService creates appointments with their pricing and
// validation-requirement fields frozen at creation time
type BookingService struct {
	appointments repositories.AppointmentRepository
	tariffs      repositories.TariffRepository
	profiles     repositories.InsuranceProfileRepository
	pricing      *PricingService
}

// NewBookingService creates a new booking service
func NewBookingService(
	appointments repositories.AppointmentRepository,
	tariffs repositories.TariffRepository,
	profiles repositories.InsuranceProfileRepository,
	pricing *PricingService,
) *BookingService {
	return &BookingService{
		appointments: appointments,
		tariffs:      tariffs,
		profiles:     profiles,
		pricing:      pricing,
	}
}

// BookAppointment prices a new appointment from the specialty tariff
// and the patient's current insurance profile, runs the validation
// gate, and persists the appointment with all derived fields frozen.
func (s *BookingService) BookAppointment(ctx context.Context, req BookingRequest) (*entities.Appointment, error) {
	patientID := strings.TrimSpace(req.PatientID)
	specialty := strings.TrimSpace(req.Specialty)
	if patientID == "" {
		return nil, apperrors.NewValidationError("patient id is required")
	}
	if specialty == "" {
		return nil, apperrors.NewValidationError("specialty is required")
	}

	tariff, err := s.tariffs.GetBySpecialty(ctx, specialty)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			// A missing tariff is a configuration error, never a free or
			// zero-priced appointment.
			return nil, apperrors.NewInternalError(
				fmt.Sprintf("no tariff configured for specialty %q", specialty), err)
		}
		return nil, err
	}

	profile, err := s.loadProfile(ctx, patientID)
	if err != nil {
		return nil, err
	}

	quote := s.pricing.Quote(tariff, profile.DeclaredTier)
	requiresValidation, validated := ValidationRequirement(profile)

	now := time.Now()
	appointment := &entities.Appointment{
		ID:                 uuid.New().String(),
		PatientID:          patientID,
		Specialty:          specialty,
		TierAtBooking:      profile.DeclaredTier,
		OriginalPrice:      quote.OriginalPrice,
		FinalPrice:         quote.FinalPrice,
		DiscountAmount:     quote.DiscountAmount,
		DiscountPercent:    quote.DiscountPercent,
		RequiresValidation: requiresValidation,
		Validated:          validated,
		ValidationStatus:   InitialValidationStatus(requiresValidation),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.appointments.Create(ctx, appointment); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("appointment_id", appointment.ID).
		Str("patient_id", patientID).
		Str("specialty", specialty).
		Str("tier", string(profile.DeclaredTier)).
		Int64("final_price", quote.FinalPrice).
		Bool("requires_validation", requiresValidation).
		Msg("appointment booked")

	return appointment, nil
}

// GetAppointment retrieves an appointment by id
func (s *BookingService) GetAppointment(ctx context.Context, id string) (*entities.Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// loadProfile fetches the patient's insurance profile. A patient with
// no profile on record has made no coverage claim and is priced as
// particular.
func (s *BookingService) loadProfile(ctx context.Context, patientID string) (*entities.PatientInsuranceProfile, error) {
	profile, err := s.profiles.GetByPatientID(ctx, patientID)
	if err != nil {
		if appErr, ok := err.(*apperrors.AppError); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			return &entities.PatientInsuranceProfile{
				PatientID:    patientID,
				DeclaredTier: entities.TierParticular,
			}, nil
		}
		return nil, err
	}
	return profile, nil
}
