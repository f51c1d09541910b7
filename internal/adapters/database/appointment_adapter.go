package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/domain/repositories"
	"github.com/andesalud/clinica-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/andesalud/clinica-backend/pkg/errors"
)

// AppointmentAdapter implements AppointmentRepository
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var appointmentColumns = []interface{}{
	"id", "patient_id", "specialty", "tier_at_booking",
	"original_price", "final_price", "discount_amount", "discount_percent",
	"requires_validation", "validated", "validation_status",
	"cash_difference_paid", "validation_notes",
	"created_at", "updated_at",
}

// Create persists a newly booked appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	record := goqu.Record{
		"id":                   appointment.ID,
		"patient_id":           appointment.PatientID,
		"specialty":            appointment.Specialty,
		"tier_at_booking":      appointment.TierAtBooking,
		"original_price":       appointment.OriginalPrice,
		"final_price":          appointment.FinalPrice,
		"discount_amount":      appointment.DiscountAmount,
		"discount_percent":     appointment.DiscountPercent,
		"requires_validation":  appointment.RequiresValidation,
		"validated":            appointment.Validated,
		"validation_status":    appointment.ValidationStatus,
		"cash_difference_paid": nullInt64(appointment.CashDifferencePaid),
		"validation_notes":     nullString(appointment.ValidationNotes),
		"created_at":           appointment.CreatedAt,
		"updated_at":           appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert("appointments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}
	return appointment, nil
}

// ListPendingValidation retrieves appointments awaiting reconciliation.
// Ordered by (created_at, id) so pagination is deterministic even when
// two bookings share a timestamp.
func (a *AppointmentAdapter) ListPendingValidation(ctx context.Context, filter repositories.PendingValidationFilter) ([]*entities.Appointment, error) {
	ds := a.db.Select(appointmentColumns...).
		From("appointments").
		Where(goqu.Ex{
			"requires_validation": true,
			"validated":           false,
			"validation_status":   entities.ValidationStatusPending,
		}).
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc())

	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list pending appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}

	return appointments, nil
}

// Reconcile commits a reconciliation as one transaction: the
// appointment's validation fields, the ledger entry and the optional
// profile mutation land together or not at all. The appointment update
// carries an optimistic guard on validation_status so a second attempt
// after the first commits fails with a conflict instead of silently
// overwriting.
func (a *AppointmentAdapter) Reconcile(ctx context.Context, write *repositories.ReconciliationWrite) error {
	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return apperrors.NewInternalError("failed to begin reconciliation transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()

	updateSQL, updateArgs, err := a.db.Update("appointments").
		Set(goqu.Record{
			"validated":            write.Validated,
			"validation_status":    write.Status,
			"cash_difference_paid": nullInt64(write.CashDifferencePaid),
			"validation_notes":     sql.NullString{String: write.ValidationNotes, Valid: write.ValidationNotes != ""},
			"updated_at":           now,
		}).
		Where(goqu.Ex{
			"id":                write.AppointmentID,
			"validation_status": entities.ValidationStatusPending,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build reconciliation update", err)
	}

	result, err := tx.ExecContext(ctx, updateSQL, updateArgs...)
	if err != nil {
		return apperrors.NewInternalError("failed to update appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewConflictError(
			fmt.Sprintf("appointment %s is not pending validation", write.AppointmentID))
	}

	if err := a.insertEntry(ctx, tx, write.Entry); err != nil {
		return err
	}

	if write.Profile != nil {
		if err := a.applyProfileMutation(ctx, tx, write.Profile, now); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewInternalError("failed to commit reconciliation", err)
	}

	return nil
}

func (a *AppointmentAdapter) insertEntry(ctx context.Context, tx *sql.Tx, entry *entities.ReconciliationEntry) error {
	var actualTier sql.NullString
	if entry.ActualTier != nil {
		actualTier = sql.NullString{String: string(*entry.ActualTier), Valid: true}
	}

	record := goqu.Record{
		"id":             entry.ID,
		"appointment_id": entry.AppointmentID,
		"patient_id":     entry.PatientID,
		"outcome":        entry.Outcome,
		"cash_amount":    nullInt64(entry.CashAmount),
		"declared_tier":  entry.DeclaredTier,
		"actual_tier":    actualTier,
		"notes":          entry.Notes,
		"recorded_by":    entry.RecordedBy,
		"created_at":     entry.CreatedAt,
	}

	query, args, err := a.db.Insert("reconciliation_entries").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build ledger insert", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert reconciliation entry", err)
	}
	return nil
}

func (a *AppointmentAdapter) applyProfileMutation(ctx context.Context, tx *sql.Tx, mutation *repositories.ProfileMutation, now time.Time) error {
	record := goqu.Record{
		"verified":   mutation.Verified,
		"updated_at": now,
	}
	if mutation.VerifiedAt != nil {
		record["verified_at"] = sql.NullTime{Time: *mutation.VerifiedAt, Valid: true}
	} else {
		record["verified_at"] = sql.NullTime{}
	}
	if mutation.DeclaredTier != nil {
		record["declared_tier"] = *mutation.DeclaredTier
	}

	query, args, err := a.db.Update("patient_insurance_profiles").
		Set(record).
		Where(goqu.Ex{"patient_id": mutation.PatientID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build profile update", err)
	}

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update insurance profile", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		// The appointment references a patient with no profile row; a
		// reconciliation must never half-apply, so create the profile
		// inside the same transaction.
		return a.insertProfileForMutation(ctx, tx, mutation, now)
	}
	return nil
}

func (a *AppointmentAdapter) insertProfileForMutation(ctx context.Context, tx *sql.Tx, mutation *repositories.ProfileMutation, now time.Time) error {
	tier := entities.TierParticular
	if mutation.DeclaredTier != nil {
		tier = *mutation.DeclaredTier
	}

	var verifiedAt sql.NullTime
	if mutation.VerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: *mutation.VerifiedAt, Valid: true}
	}

	record := goqu.Record{
		"patient_id":    mutation.PatientID,
		"declared_tier": tier,
		"verified":      mutation.Verified,
		"verified_at":   verifiedAt,
		"created_at":    now,
		"updated_at":    now,
	}

	query, args, err := a.db.Insert("patient_insurance_profiles").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build profile insert", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert insurance profile", err)
	}
	return nil
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var cashDifference sql.NullInt64
	var notes sql.NullString

	err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.Specialty,
		&appointment.TierAtBooking,
		&appointment.OriginalPrice,
		&appointment.FinalPrice,
		&appointment.DiscountAmount,
		&appointment.DiscountPercent,
		&appointment.RequiresValidation,
		&appointment.Validated,
		&appointment.ValidationStatus,
		&cashDifference,
		&notes,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if cashDifference.Valid {
		appointment.CashDifferencePaid = &cashDifference.Int64
	}
	if notes.Valid {
		appointment.ValidationNotes = &notes.String
	}

	return appointment, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
