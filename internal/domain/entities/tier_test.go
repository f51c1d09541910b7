package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		input   string
		want    InsuranceTier
		wantErr bool
	}{
		{"fonasa", TierFonasa, false},
		{"ISAPRE", TierIsapre, false},
		{"  Particular  ", TierParticular, false},
		{"", "", true},
		{"dipreca", "", true},
	}

	for _, tt := range tests {
		got, err := ParseTier(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		assert.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseFonasaBracket(t *testing.T) {
	got, err := ParseFonasaBracket("b")
	assert.NoError(t, err)
	assert.Equal(t, FonasaBracketB, got)

	_, err = ParseFonasaBracket("E")
	assert.Error(t, err)
}

func TestValidationStatusIsTerminal(t *testing.T) {
	assert.False(t, ValidationStatusPending.IsTerminal())
	assert.True(t, ValidationStatusNotRequired.IsTerminal())
	assert.True(t, ValidationStatusConfirmed.IsTerminal())
	assert.True(t, ValidationStatusCashPaid.IsTerminal())
	assert.True(t, ValidationStatusTierCorrected.IsTerminal())
}
