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

// TariffAdapter implements TariffRepository
type TariffAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTariffAdapter creates a new tariff adapter
func NewTariffAdapter(client *postgres.Client) repositories.TariffRepository {
	return &TariffAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var tariffColumns = []interface{}{
	"id", "specialty", "base_price", "fonasa_price", "isapre_price",
	"particular_price", "created_at", "updated_at",
}

// GetBySpecialty retrieves the tariff for a specialty
func (a *TariffAdapter) GetBySpecialty(ctx context.Context, specialty string) (*entities.Tariff, error) {
	query, args, err := a.db.Select(tariffColumns...).
		From("tariffs").
		Where(goqu.Ex{"specialty": specialty}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	tariff, err := scanTariff(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("tariff for specialty %s not found", specialty))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get tariff", err)
	}
	return tariff, nil
}

// List retrieves tariffs ordered by specialty
func (a *TariffAdapter) List(ctx context.Context, filter repositories.TariffFilter) ([]*entities.Tariff, error) {
	ds := a.db.Select(tariffColumns...).
		From("tariffs").
		Order(goqu.I("specialty").Asc())

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
		return nil, apperrors.NewInternalError("failed to list tariffs", err)
	}
	defer rows.Close()

	var tariffs []*entities.Tariff
	for rows.Next() {
		tariff, err := scanTariff(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan tariff", err)
		}
		tariffs = append(tariffs, tariff)
	}

	return tariffs, nil
}

// Upsert creates or replaces the tariff for a specialty
func (a *TariffAdapter) Upsert(ctx context.Context, tariff *entities.Tariff) error {
	tariff.UpdatedAt = time.Now()
	if tariff.CreatedAt.IsZero() {
		tariff.CreatedAt = tariff.UpdatedAt
	}

	record := goqu.Record{
		"id":               tariff.ID,
		"specialty":        tariff.Specialty,
		"base_price":       tariff.BasePrice,
		"fonasa_price":     nullInt64(tariff.FonasaPrice),
		"isapre_price":     nullInt64(tariff.IsaprePrice),
		"particular_price": nullInt64(tariff.ParticularPrice),
		"created_at":       tariff.CreatedAt,
		"updated_at":       tariff.UpdatedAt,
	}

	query, args, err := a.db.Insert("tariffs").
		Rows(record).
		OnConflict(goqu.DoUpdate("specialty", goqu.Record{
			"base_price":       tariff.BasePrice,
			"fonasa_price":     nullInt64(tariff.FonasaPrice),
			"isapre_price":     nullInt64(tariff.IsaprePrice),
			"particular_price": nullInt64(tariff.ParticularPrice),
			"updated_at":       tariff.UpdatedAt,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to upsert tariff", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTariff(row rowScanner) (*entities.Tariff, error) {
	tariff := &entities.Tariff{}
	var fonasa, isapre, particular sql.NullInt64

	err := row.Scan(
		&tariff.ID,
		&tariff.Specialty,
		&tariff.BasePrice,
		&fonasa,
		&isapre,
		&particular,
		&tariff.CreatedAt,
		&tariff.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if fonasa.Valid {
		tariff.FonasaPrice = &fonasa.Int64
	}
	if isapre.Valid {
		tariff.IsaprePrice = &isapre.Int64
	}
	if particular.Valid {
		tariff.ParticularPrice = &particular.Int64
	}

	return tariff, nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
