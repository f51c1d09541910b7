package repositories

import (
	"context"
	"time"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment operations
type AppointmentRepository interface {
	// Create persists a newly booked appointment with its frozen pricing
	// and validation fields
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// ListPendingValidation retrieves appointments awaiting
	// reconciliation, ordered by booking time then id so pagination is
	// deterministic
	ListPendingValidation(ctx context.Context, filter PendingValidationFilter) ([]*entities.Appointment, error)

	// Reconcile applies a reconciliation write as a single transaction:
	// the appointment's validation fields, the ledger entry and the
	// optional profile mutation commit together or not at all. Returns a
	// conflict error when the appointment is no longer pending.
	Reconcile(ctx context.Context, write *ReconciliationWrite) error
}

// PendingValidationFilter defines pagination for the pending list
type PendingValidationFilter struct {
	Limit  int
	Offset int
}

// ReconciliationWrite is the transactional unit committed by Reconcile
type ReconciliationWrite struct {
	AppointmentID      string
	Validated          bool
	Status             entities.ValidationStatus
	CashDifferencePaid *int64
	ValidationNotes    string
	Entry              *entities.ReconciliationEntry
	Profile            *ProfileMutation
}

// ProfileMutation describes the profile write that rides in the same
// transaction as the appointment update. A nil DeclaredTier leaves the
// declared tier as is.
type ProfileMutation struct {
	PatientID    string
	DeclaredTier *entities.InsuranceTier
	Verified     bool
	VerifiedAt   *time.Time
}
