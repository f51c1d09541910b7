package repositories

import (
	"context"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
)

// TariffRepository defines the interface for the per-specialty price table
type TariffRepository interface {
	// GetBySpecialty retrieves the tariff for a specialty
	GetBySpecialty(ctx context.Context, specialty string) (*entities.Tariff, error)

	// List retrieves tariffs
	List(ctx context.Context, filter TariffFilter) ([]*entities.Tariff, error)

	// Upsert creates or replaces the tariff for a specialty (seeding and
	// administrative updates only; tariffs are read-only at runtime)
	Upsert(ctx context.Context, tariff *entities.Tariff) error
}

// TariffFilter defines filters for listing tariffs
type TariffFilter struct {
	Limit  int
	Offset int
}
