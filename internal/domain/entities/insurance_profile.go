package entities

import (
	"time"
)

// PatientInsuranceProfile holds a patient's declared insurance tier and
// whether that claim has ever been verified against documents. Verified
// is a durable per-patient fact: only the reconciliation service sets it
// to true, and once true it stands until a tier correction clears it.
type PatientInsuranceProfile struct {
	PatientID     string         `json:"patient_id" db:"patient_id"`
	DeclaredTier  InsuranceTier  `json:"declared_tier" db:"declared_tier"`
	FonasaBracket *FonasaBracket `json:"fonasa_bracket,omitempty" db:"fonasa_bracket"`
	IsapreName    *string        `json:"isapre_name,omitempty" db:"isapre_name"`
	Verified      bool           `json:"verified" db:"verified"`
	VerifiedAt    *time.Time     `json:"verified_at,omitempty" db:"verified_at"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" db:"updated_at"`
}
