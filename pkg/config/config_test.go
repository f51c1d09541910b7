package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_PricingConfig(t *testing.T) {
	// Setup environment variables
	os.Setenv("PRICING_FONASA_RATE", "0.65")
	os.Setenv("PRICING_ISAPRE_RATE", "0.90")
	defer func() {
		os.Unsetenv("PRICING_FONASA_RATE")
		os.Unsetenv("PRICING_ISAPRE_RATE")
	}()

	// Load config
	cfg, err := Load()
	assert.NoError(t, err)

	// Verify pricing config
	assert.Equal(t, 0.65, cfg.Pricing.FonasaRate)
	assert.Equal(t, 0.90, cfg.Pricing.IsapreRate)
}

func TestLoad_Defaults(t *testing.T) {
	// Ensure env vars are cleared
	os.Unsetenv("PRICING_FONASA_RATE")
	os.Unsetenv("PRICING_ISAPRE_RATE")
	os.Unsetenv("DB_NAME")

	cfg, err := Load()
	assert.NoError(t, err)

	// Verify defaults
	assert.Equal(t, 0.70, cfg.Pricing.FonasaRate)
	assert.Equal(t, 0.85, cfg.Pricing.IsapreRate)
	assert.Equal(t, "clinica", cfg.Database.Database)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Database: "clinica",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=db port=5432 user=postgres password=secret dbname=clinica sslmode=disable", cfg.DatabaseDSN())
}
