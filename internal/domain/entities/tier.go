package entities

import (
	"fmt"
	"strings"
)

// InsuranceTier represents a patient's declared health-coverage category
type InsuranceTier string

const (
	TierFonasa     InsuranceTier = "fonasa"
	TierIsapre     InsuranceTier = "isapre"
	TierParticular InsuranceTier = "particular"
)

// FonasaBracket represents the FONASA income bracket (A through D)
type FonasaBracket string

const (
	FonasaBracketA FonasaBracket = "A"
	FonasaBracketB FonasaBracket = "B"
	FonasaBracketC FonasaBracket = "C"
	FonasaBracketD FonasaBracket = "D"
)

// ParseTier parses a tier value from user input. Unknown values are
// rejected here, before they can reach the reconciliation state machine.
func ParseTier(value string) (InsuranceTier, error) {
	switch InsuranceTier(strings.ToLower(strings.TrimSpace(value))) {
	case TierFonasa:
		return TierFonasa, nil
	case TierIsapre:
		return TierIsapre, nil
	case TierParticular:
		return TierParticular, nil
	default:
		return "", fmt.Errorf("unknown insurance tier: %q", value)
	}
}

// IsValid reports whether the tier is one of the known values
func (t InsuranceTier) IsValid() bool {
	switch t {
	case TierFonasa, TierIsapre, TierParticular:
		return true
	}
	return false
}

// ParseFonasaBracket parses a FONASA bracket from user input
func ParseFonasaBracket(value string) (FonasaBracket, error) {
	switch FonasaBracket(strings.ToUpper(strings.TrimSpace(value))) {
	case FonasaBracketA:
		return FonasaBracketA, nil
	case FonasaBracketB:
		return FonasaBracketB, nil
	case FonasaBracketC:
		return FonasaBracketC, nil
	case FonasaBracketD:
		return FonasaBracketD, nil
	default:
		return "", fmt.Errorf("unknown FONASA bracket: %q", value)
	}
}
