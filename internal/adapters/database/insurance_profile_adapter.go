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

// InsuranceProfileAdapter implements InsuranceProfileRepository
type InsuranceProfileAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewInsuranceProfileAdapter creates a new insurance profile adapter
func NewInsuranceProfileAdapter(client *postgres.Client) repositories.InsuranceProfileRepository {
	return &InsuranceProfileAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByPatientID retrieves a patient's insurance profile
func (a *InsuranceProfileAdapter) GetByPatientID(ctx context.Context, patientID string) (*entities.PatientInsuranceProfile, error) {
	query, args, err := a.db.Select(
		"patient_id", "declared_tier", "fonasa_bracket", "isapre_name",
		"verified", "verified_at", "created_at", "updated_at",
	).From("patient_insurance_profiles").
		Where(goqu.Ex{"patient_id": patientID}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	profile := &entities.PatientInsuranceProfile{}
	var bracket, isapreName sql.NullString
	var verifiedAt sql.NullTime

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&profile.PatientID,
		&profile.DeclaredTier,
		&bracket,
		&isapreName,
		&profile.Verified,
		&verifiedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("insurance profile for patient %s not found", patientID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get insurance profile", err)
	}

	if bracket.Valid {
		b := entities.FonasaBracket(bracket.String)
		profile.FonasaBracket = &b
	}
	if isapreName.Valid {
		profile.IsapreName = &isapreName.String
	}
	if verifiedAt.Valid {
		profile.VerifiedAt = &verifiedAt.Time
	}

	return profile, nil
}

// Upsert creates or updates the patient's declared coverage. The
// verified columns are deliberately absent from the update set: a
// self-service declaration can never mark itself verified, and an
// existing verification survives a re-declaration of the same tier.
func (a *InsuranceProfileAdapter) Upsert(ctx context.Context, profile *entities.PatientInsuranceProfile) error {
	now := time.Now()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}

	var bracket sql.NullString
	if profile.FonasaBracket != nil {
		bracket = sql.NullString{String: string(*profile.FonasaBracket), Valid: true}
	}
	var isapreName sql.NullString
	if profile.IsapreName != nil {
		isapreName = sql.NullString{String: *profile.IsapreName, Valid: true}
	}

	record := goqu.Record{
		"patient_id":     profile.PatientID,
		"declared_tier":  profile.DeclaredTier,
		"fonasa_bracket": bracket,
		"isapre_name":    isapreName,
		"verified":       false,
		"created_at":     profile.CreatedAt,
		"updated_at":     profile.UpdatedAt,
	}

	query, args, err := a.db.Insert("patient_insurance_profiles").
		Rows(record).
		OnConflict(goqu.DoUpdate("patient_id", goqu.Record{
			"declared_tier":  profile.DeclaredTier,
			"fonasa_bracket": bracket,
			"isapre_name":    isapreName,
			"updated_at":     profile.UpdatedAt,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert insurance profile", err)
	}

	return nil
}
