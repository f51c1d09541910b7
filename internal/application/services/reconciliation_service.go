package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/domain/providers"
	"github.com/andesalud/clinica-backend/internal/domain/repositories"
	"github.com/andesalud/clinica-backend/internal/infrastructure/observability"
	apperrors "github.com/andesalud/clinica-backend/pkg/errors"
)

// DefaultConfirmationNote is recorded when staff confirm documents
// without supplying their own note.
const DefaultConfirmationNote = "Previsión validada correctamente con documentos"

// ReconciliationService resolves a pending appointment's unverified
// tier claim into one of three settled outcomes. Exactly one outcome
// commits per appointment; the appointment update, the ledger entry and
// the optional profile mutation ride in a single transaction.
type ReconciliationService struct {
	appointments repositories.AppointmentRepository
	entries      repositories.ReconciliationEntryRepository
	eventBus     providers.EventBus
}

// NewReconciliationService creates a new reconciliation service. The
// event bus is optional; when nil, committed outcomes are simply not
// broadcast.
func NewReconciliationService(
	appointments repositories.AppointmentRepository,
	entries repositories.ReconciliationEntryRepository,
	eventBus providers.EventBus,
) *ReconciliationService {
	return &ReconciliationService{
		appointments: appointments,
		entries:      entries,
		eventBus:     eventBus,
	}
}

// Reconcile applies one staff-driven outcome to a pending appointment.
// A non-pending appointment is rejected with a conflict: callers should
// refresh and re-show current status rather than retry.
func (s *ReconciliationService) Reconcile(
	ctx context.Context,
	appointmentID string,
	cmd entities.ReconciliationCommand,
	recordedBy string,
) (*entities.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appointment.ValidationStatus.IsTerminal() {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("appointment %s is not pending validation (status %s)",
				appointmentID, appointment.ValidationStatus))
	}

	write, err := s.buildWrite(appointment, cmd, recordedBy)
	if err != nil {
		return nil, err
	}

	if err := s.appointments.Reconcile(ctx, write); err != nil {
		return nil, err
	}

	applyWrite(appointment, write)
	s.publish(ctx, appointment, write.Entry)

	observability.LoggerFromContext(ctx).Info().
		Str("appointment_id", appointment.ID).
		Str("patient_id", appointment.PatientID).
		Str("outcome", string(write.Entry.Outcome)).
		Str("recorded_by", recordedBy).
		Msg("appointment reconciled")

	return appointment, nil
}

// buildWrite translates a command into the transactional write. The
// type switch is exhaustive over the closed command set.
func (s *ReconciliationService) buildWrite(
	appointment *entities.Appointment,
	cmd entities.ReconciliationCommand,
	recordedBy string,
) (*repositories.ReconciliationWrite, error) {
	now := time.Now()
	entry := &entities.ReconciliationEntry{
		ID:            uuid.New().String(),
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		Outcome:       cmd.Outcome(),
		DeclaredTier:  appointment.TierAtBooking,
		RecordedBy:    recordedBy,
		CreatedAt:     now,
	}

	write := &repositories.ReconciliationWrite{
		AppointmentID: appointment.ID,
		Entry:         entry,
	}

	switch c := cmd.(type) {
	case entities.ConfirmDocuments:
		note := strings.TrimSpace(c.Note)
		if note == "" {
			note = DefaultConfirmationNote
		}
		write.Validated = true
		write.Status = entities.ValidationStatusConfirmed
		write.ValidationNotes = note
		write.Profile = &repositories.ProfileMutation{
			PatientID:  appointment.PatientID,
			Verified:   true,
			VerifiedAt: &now,
		}
		entry.Notes = note

	case entities.CashDifference:
		if c.Amount <= 0 {
			return nil, apperrors.NewValidationError("cash difference amount must be a positive value")
		}
		amount := c.Amount
		note := strings.TrimSpace(c.Note)
		if note == "" {
			note = fmt.Sprintf("Diferencia pagada en efectivo: $%d", amount)
		}
		write.Validated = false
		write.Status = entities.ValidationStatusCashPaid
		write.CashDifferencePaid = &amount
		write.ValidationNotes = note
		// Tier claim remains unverified: the profile is untouched and
		// future appointments still require validation.
		entry.CashAmount = &amount
		entry.Notes = note

	case entities.CorrectTier:
		if !c.ActualTier.IsValid() {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("unknown tier selection: %q", string(c.ActualTier)))
		}
		actual := c.ActualTier
		note := strings.TrimSpace(c.Note)
		if note == "" {
			note = fmt.Sprintf("Previsión corregida: declarada %s, real %s",
				appointment.TierAtBooking, actual)
		}
		write.Validated = false
		write.Status = entities.ValidationStatusTierCorrected
		write.ValidationNotes = note
		// A corrected tier is itself an unverified claim until a future
		// visit proves it. Verified is cleared even when staff select
		// the declared tier again: a false "verified" must never stand.
		write.Profile = &repositories.ProfileMutation{
			PatientID:    appointment.PatientID,
			DeclaredTier: &actual,
			Verified:     false,
		}
		entry.ActualTier = &actual
		entry.Notes = note

	default:
		return nil, apperrors.NewValidationError("unsupported reconciliation command")
	}

	return write, nil
}

// ListPendingValidation lists appointments awaiting reconciliation,
// read straight from storage so staff always act on current state.
func (s *ReconciliationService) ListPendingValidation(ctx context.Context, limit, offset int) ([]*entities.Appointment, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.appointments.ListPendingValidation(ctx, repositories.PendingValidationFilter{
		Limit:  limit,
		Offset: offset,
	})
}

// ListEntries retrieves the reconciliation ledger for an appointment
func (s *ReconciliationService) ListEntries(ctx context.Context, appointmentID string) ([]*entities.ReconciliationEntry, error) {
	return s.entries.ListByAppointment(ctx, appointmentID)
}

// applyWrite mirrors the committed write onto the in-memory appointment
// so callers see the settled state without a re-read.
func applyWrite(appointment *entities.Appointment, write *repositories.ReconciliationWrite) {
	appointment.Validated = write.Validated
	appointment.ValidationStatus = write.Status
	appointment.CashDifferencePaid = write.CashDifferencePaid
	notes := write.ValidationNotes
	appointment.ValidationNotes = &notes
	appointment.UpdatedAt = write.Entry.CreatedAt
}

func (s *ReconciliationService) publish(ctx context.Context, appointment *entities.Appointment, entry *entities.ReconciliationEntry) {
	if s.eventBus == nil {
		return
	}
	event := &entities.ReconciliationEvent{
		ID:            entry.ID,
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		Outcome:       entry.Outcome,
		OccurredAt:    entry.CreatedAt,
	}
	// Best effort: a failed broadcast never rolls back a committed
	// reconciliation.
	if err := s.eventBus.Publish(ctx, providers.EventChannelReconciliationUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("appointment_id", appointment.ID).
			Msg("failed to publish reconciliation event")
	}
	if err := s.eventBus.Publish(ctx, providers.GetPatientChannel(appointment.PatientID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("appointment_id", appointment.ID).
			Msg("failed to publish patient reconciliation event")
	}
}
