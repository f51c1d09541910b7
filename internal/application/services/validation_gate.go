package services

import (
	"github.com/andesalud/clinica-backend/internal/domain/entities"
)

// ValidationRequirement decides, at booking time, whether an
// appointment needs staff verification before its discount can be
// trusted. The result is frozen into the appointment record and never
// recomputed for already-booked appointments.
func ValidationRequirement(profile *entities.PatientInsuranceProfile) (requiresValidation, validated bool) {
	// Particular carries no claim to check.
	if profile.DeclaredTier == entities.TierParticular {
		return false, true
	}
	// Already proven on a previous visit: discount applies with no friction.
	if profile.Verified {
		return false, true
	}
	return true, false
}

// InitialValidationStatus maps the gate decision onto the appointment's
// validation sub-status.
func InitialValidationStatus(requiresValidation bool) entities.ValidationStatus {
	if requiresValidation {
		return entities.ValidationStatusPending
	}
	return entities.ValidationStatusNotRequired
}
