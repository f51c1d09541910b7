package services

import (
	"math"

	"github.com/andesalud/clinica-backend/internal/domain/entities"
)

// Default fallback ratios applied when a tariff has no explicit tier
// price: FONASA pays 70% of the particular price, ISAPRE pays 85%.
const (
	DefaultFonasaRate = 0.70
	DefaultIsapreRate = 0.85
)

// PriceQuote is the frozen pricing output for a booking
type PriceQuote struct {
	OriginalPrice   int64                  `json:"original_price"`
	FinalPrice      int64                  `json:"final_price"`
	DiscountAmount  int64                  `json:"discount_amount"`
	DiscountPercent int                    `json:"discount_percent"`
	TierApplied     entities.InsuranceTier `json:"tier_applied"`
}

// PricingService computes what a patient owes for an appointment from
// the specialty tariff and the declared tier. Pure and deterministic:
// no side effects, safe to call repeatedly.
type PricingService struct {
	fonasaRate float64
	isapreRate float64
}

// NewPricingService creates a pricing service with the given fallback
// ratios. Ratios outside (0, 1] fall back to the defaults.
func NewPricingService(fonasaRate, isapreRate float64) *PricingService {
	if fonasaRate <= 0 || fonasaRate > 1 {
		fonasaRate = DefaultFonasaRate
	}
	if isapreRate <= 0 || isapreRate > 1 {
		isapreRate = DefaultIsapreRate
	}
	return &PricingService{
		fonasaRate: fonasaRate,
		isapreRate: isapreRate,
	}
}

// Quote computes the pricing for a tariff and declared tier. The
// original price is always the particular (full) rate; the final price
// is the tier price, explicit or ratio-derived. A tier can never
// increase the price: if the tier price exceeds the particular price
// the discount is 0.
func (s *PricingService) Quote(tariff *entities.Tariff, tier entities.InsuranceTier) PriceQuote {
	original := tariff.FullPrice()
	final := original

	switch tier {
	case entities.TierFonasa:
		if tariff.FonasaPrice != nil {
			final = *tariff.FonasaPrice
		} else {
			final = ratioPrice(original, s.fonasaRate)
		}
	case entities.TierIsapre:
		if tariff.IsaprePrice != nil {
			final = *tariff.IsaprePrice
		} else {
			final = ratioPrice(original, s.isapreRate)
		}
	case entities.TierParticular:
		final = original
	}

	if final > original {
		final = original
	}

	discount := original - final
	percent := 0
	if original > 0 {
		percent = int(math.Round(float64(discount) / float64(original) * 100))
	}

	return PriceQuote{
		OriginalPrice:   original,
		FinalPrice:      final,
		DiscountAmount:  discount,
		DiscountPercent: percent,
		TierApplied:     tier,
	}
}

func ratioPrice(original int64, rate float64) int64 {
	return int64(math.Round(float64(original) * rate))
}
