package entities

import (
	"time"
)

// ValidationStatus represents the validation sub-status of an appointment
type ValidationStatus string

const (
	// ValidationStatusNotRequired is terminal, set at creation when the
	// gate decides no staff check is needed.
	ValidationStatusNotRequired ValidationStatus = "not_required"

	// ValidationStatusPending means the appointment awaits reconciliation.
	ValidationStatusPending ValidationStatus = "pending"

	// Terminal states reached by exactly one staff reconciliation action.
	ValidationStatusConfirmed     ValidationStatus = "confirmed"
	ValidationStatusCashPaid      ValidationStatus = "cash_paid"
	ValidationStatusTierCorrected ValidationStatus = "tier_corrected"
)

// IsTerminal reports whether no further reconciliation may touch the
// appointment.
func (s ValidationStatus) IsTerminal() bool {
	return s != ValidationStatusPending
}

// Appointment is the pricing-relevant slice of a clinic appointment.
// All price fields are frozen at booking time: reconciliation never
// changes what was charged, it only records the truth about the tier
// and settles any owed difference as a separate ledger entry.
type Appointment struct {
	ID            string        `json:"id" db:"id"`
	PatientID     string        `json:"patient_id" db:"patient_id"`
	Specialty     string        `json:"specialty" db:"specialty"`
	TierAtBooking InsuranceTier `json:"tier_at_booking" db:"tier_at_booking"`

	OriginalPrice   int64 `json:"original_price" db:"original_price"`
	FinalPrice      int64 `json:"final_price" db:"final_price"`
	DiscountAmount  int64 `json:"discount_amount" db:"discount_amount"`
	DiscountPercent int   `json:"discount_percent" db:"discount_percent"`

	RequiresValidation bool             `json:"requires_validation" db:"requires_validation"`
	Validated          bool             `json:"validated" db:"validated"`
	ValidationStatus   ValidationStatus `json:"validation_status" db:"validation_status"`
	CashDifferencePaid *int64           `json:"cash_difference_paid,omitempty" db:"cash_difference_paid"`
	ValidationNotes    *string          `json:"validation_notes,omitempty" db:"validation_notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
