package repositories

import (
	"context"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
)

// InsuranceProfileRepository defines the interface for patient insurance
// profiles. Upsert serves patient self-service declarations and must
// never touch the verified columns; those change only inside the
// reconciliation transaction (AppointmentRepository.Reconcile).
type InsuranceProfileRepository interface {
	// GetByPatientID retrieves a patient's insurance profile
	GetByPatientID(ctx context.Context, patientID string) (*entities.PatientInsuranceProfile, error)

	// Upsert creates or updates the declared tier, bracket and isapre
	// name for a patient, leaving verified/verified_at untouched
	Upsert(ctx context.Context, profile *entities.PatientInsuranceProfile) error
}
