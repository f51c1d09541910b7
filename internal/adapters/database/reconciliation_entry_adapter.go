package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/domain/repositories"
	"github.com/andesalud/clinica-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/andesalud/clinica-backend/pkg/errors"
)

// ReconciliationEntryAdapter implements ReconciliationEntryRepository.
// Writes happen only inside AppointmentAdapter.Reconcile; this adapter
// is the read path over the ledger.
type ReconciliationEntryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReconciliationEntryAdapter creates a new reconciliation entry adapter
func NewReconciliationEntryAdapter(client *postgres.Client) repositories.ReconciliationEntryRepository {
	return &ReconciliationEntryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var entryColumns = []interface{}{
	"id", "appointment_id", "patient_id", "outcome", "cash_amount",
	"declared_tier", "actual_tier", "notes", "recorded_by", "created_at",
}

// ListByAppointment retrieves the ledger entries for an appointment
func (a *ReconciliationEntryAdapter) ListByAppointment(ctx context.Context, appointmentID string) ([]*entities.ReconciliationEntry, error) {
	return a.list(ctx, goqu.Ex{"appointment_id": appointmentID}, goqu.I("created_at").Asc())
}

// ListByPatient retrieves the ledger entries for a patient, newest first
func (a *ReconciliationEntryAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.ReconciliationEntry, error) {
	return a.list(ctx, goqu.Ex{"patient_id": patientID}, goqu.I("created_at").Desc())
}

func (a *ReconciliationEntryAdapter) list(ctx context.Context, where goqu.Ex, order exp.OrderedExpression) ([]*entities.ReconciliationEntry, error) {
	query, args, err := a.db.Select(entryColumns...).
		From("reconciliation_entries").
		Where(where).
		Order(order).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build ledger query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list reconciliation entries", err)
	}
	defer rows.Close()

	var entries []*entities.ReconciliationEntry
	for rows.Next() {
		entry := &entities.ReconciliationEntry{}
		var cashAmount sql.NullInt64
		var actualTier sql.NullString

		err := rows.Scan(
			&entry.ID,
			&entry.AppointmentID,
			&entry.PatientID,
			&entry.Outcome,
			&cashAmount,
			&entry.DeclaredTier,
			&actualTier,
			&entry.Notes,
			&entry.RecordedBy,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan reconciliation entry", err)
		}

		if cashAmount.Valid {
			entry.CashAmount = &cashAmount.Int64
		}
		if actualTier.Valid {
			tier := entities.InsuranceTier(actualTier.String)
			entry.ActualTier = &tier
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
