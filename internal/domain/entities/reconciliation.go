package entities

import (
	"time"
)

// ReconciliationOutcome names the settled result of a reconciliation
type ReconciliationOutcome string

const (
	OutcomeConfirmedWithDocuments ReconciliationOutcome = "confirmed_with_documents"
	OutcomeCashDifferencePaid     ReconciliationOutcome = "cash_difference_paid"
	OutcomeTierCorrected          ReconciliationOutcome = "tier_corrected"
)

// ReconciliationCommand is the closed set of staff actions that resolve
// a pending appointment. The unexported marker keeps the set closed: a
// new outcome cannot be added without updating every handling site.
type ReconciliationCommand interface {
	reconciliationCommand()
	Outcome() ReconciliationOutcome
}

// ConfirmDocuments attests that the patient presented documents backing
// the declared tier.
type ConfirmDocuments struct {
	Note string
}

// CashDifference records that documents were absent and the patient
// paid the owed difference in cash. Amount must be positive.
type CashDifference struct {
	Amount int64
	Note   string
}

// CorrectTier records that documents were absent and staff selected the
// patient's actual tier.
type CorrectTier struct {
	ActualTier InsuranceTier
	Note       string
}

func (ConfirmDocuments) reconciliationCommand() {}
func (CashDifference) reconciliationCommand()   {}
func (CorrectTier) reconciliationCommand()      {}

func (ConfirmDocuments) Outcome() ReconciliationOutcome { return OutcomeConfirmedWithDocuments }
func (CashDifference) Outcome() ReconciliationOutcome   { return OutcomeCashDifferencePaid }
func (CorrectTier) Outcome() ReconciliationOutcome      { return OutcomeTierCorrected }

// ReconciliationEntry is the append-only ledger row written when a
// reconciliation commits. Cash differences settle here, never on the
// appointment's frozen price fields.
type ReconciliationEntry struct {
	ID            string                `json:"id" db:"id"`
	AppointmentID string                `json:"appointment_id" db:"appointment_id"`
	PatientID     string                `json:"patient_id" db:"patient_id"`
	Outcome       ReconciliationOutcome `json:"outcome" db:"outcome"`
	CashAmount    *int64                `json:"cash_amount,omitempty" db:"cash_amount"`
	DeclaredTier  InsuranceTier         `json:"declared_tier" db:"declared_tier"`
	ActualTier    *InsuranceTier        `json:"actual_tier,omitempty" db:"actual_tier"`
	Notes         string                `json:"notes" db:"notes"`
	RecordedBy    string                `json:"recorded_by" db:"recorded_by"`
	CreatedAt     time.Time             `json:"created_at" db:"created_at"`
}

// ReconciliationEvent is published on the event bus after a
// reconciliation commits so the staff pending list refreshes without
// polling.
type ReconciliationEvent struct {
	ID            string                `json:"id"`
	AppointmentID string                `json:"appointment_id"`
	PatientID     string                `json:"patient_id"`
	Outcome       ReconciliationOutcome `json:"outcome"`
	OccurredAt    time.Time             `json:"occurred_at"`
}
