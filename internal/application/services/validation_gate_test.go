package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andesalud/clinica-backend/internal/application/services"
	"github.com/andesalud/clinica-backend/internal/domain/entities"
)

func TestValidationRequirement(t *testing.T) {
	tests := []struct {
		name               string
		tier               entities.InsuranceTier
		verified           bool
		wantRequires       bool
		wantValidated      bool
		wantInitialStatus  entities.ValidationStatus
	}{
		{
			name:              "particular never requires validation",
			tier:              entities.TierParticular,
			verified:          false,
			wantRequires:      false,
			wantValidated:     true,
			wantInitialStatus: entities.ValidationStatusNotRequired,
		},
		{
			name:              "unverified fonasa requires validation",
			tier:              entities.TierFonasa,
			verified:          false,
			wantRequires:      true,
			wantValidated:     false,
			wantInitialStatus: entities.ValidationStatusPending,
		},
		{
			name:              "unverified isapre requires validation",
			tier:              entities.TierIsapre,
			verified:          false,
			wantRequires:      true,
			wantValidated:     false,
			wantInitialStatus: entities.ValidationStatusPending,
		},
		{
			name:              "verified fonasa skips validation",
			tier:              entities.TierFonasa,
			verified:          true,
			wantRequires:      false,
			wantValidated:     true,
			wantInitialStatus: entities.ValidationStatusNotRequired,
		},
		{
			name:              "verified isapre skips validation",
			tier:              entities.TierIsapre,
			verified:          true,
			wantRequires:      false,
			wantValidated:     true,
			wantInitialStatus: entities.ValidationStatusNotRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &entities.PatientInsuranceProfile{
				PatientID:    "patient-1",
				DeclaredTier: tt.tier,
				Verified:     tt.verified,
			}

			requires, validated := services.ValidationRequirement(profile)

			assert.Equal(t, tt.wantRequires, requires)
			assert.Equal(t, tt.wantValidated, validated)
			assert.Equal(t, tt.wantInitialStatus, services.InitialValidationStatus(requires))
		})
	}
}
