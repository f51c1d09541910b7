package main

import (
	"context"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/andesalud/clinica-backend/internal/adapters/database"
	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/infrastructure/clients/postgres"
	"github.com/andesalud/clinica-backend/pkg/config"
)

func intPtr(v int64) *int64 { return &v }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				reconciliation_entries,
				appointments,
				patient_insurance_profiles,
				tariffs
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatalf("Failed to truncate tables: %v", err)
		}
	}

	tariffRepo := database.NewTariffAdapter(pgClient)

	// Prices in Chilean pesos. Specialties without explicit tier prices
	// use the configured fallback ratios at quote time.
	tariffs := []*entities.Tariff{
		{
			Specialty:       "medicina-general",
			BasePrice:       30000,
			ParticularPrice: intPtr(30000),
			FonasaPrice:     intPtr(21000),
			IsaprePrice:     intPtr(25500),
		},
		{
			Specialty:       "pediatria",
			BasePrice:       35000,
			ParticularPrice: intPtr(35000),
			FonasaPrice:     intPtr(24500),
			IsaprePrice:     intPtr(29750),
		},
		{
			Specialty:       "dermatologia",
			BasePrice:       45000,
			ParticularPrice: intPtr(45000),
		},
		{
			Specialty:       "traumatologia",
			BasePrice:       40000,
			ParticularPrice: intPtr(40000),
			FonasaPrice:     intPtr(28000),
		},
		{
			Specialty: "nutricion",
			BasePrice: 25000,
		},
	}

	for _, tariff := range tariffs {
		tariff.ID = uuid.New().String()
		if err := tariffRepo.Upsert(ctx, tariff); err != nil {
			log.Fatalf("Failed to seed tariff %s: %v", tariff.Specialty, err)
		}
		log.Printf("Seeded tariff for %s", tariff.Specialty)
	}

	log.Printf("Seeded %d tariffs", len(tariffs))
}
