package repositories

import (
	"context"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
)

// ReconciliationEntryRepository is the read path over the reconciliation
// ledger. Entries are only ever written inside
// AppointmentRepository.Reconcile.
type ReconciliationEntryRepository interface {
	// ListByAppointment retrieves the ledger entries for an appointment
	ListByAppointment(ctx context.Context, appointmentID string) ([]*entities.ReconciliationEntry, error)

	// ListByPatient retrieves the ledger entries for a patient, newest first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.ReconciliationEntry, error)
}
