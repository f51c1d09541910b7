package entities

import (
	"time"
)

// Tariff holds the per-specialty price table. Prices are in Chilean
// pesos as integer amounts. Tier-specific prices are optional; when a
// tier price is missing the pricing service derives it from the
// particular price using the configured fallback ratios.
type Tariff struct {
	ID              string    `json:"id" db:"id"`
	Specialty       string    `json:"specialty" db:"specialty"`
	BasePrice       int64     `json:"base_price" db:"base_price"`
	FonasaPrice     *int64    `json:"fonasa_price,omitempty" db:"fonasa_price"`
	IsaprePrice     *int64    `json:"isapre_price,omitempty" db:"isapre_price"`
	ParticularPrice *int64    `json:"particular_price,omitempty" db:"particular_price"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// FullPrice returns the particular (full) rate, falling back to the
// base price when no explicit particular price is configured.
func (t *Tariff) FullPrice() int64 {
	if t.ParticularPrice != nil {
		return *t.ParticularPrice
	}
	return t.BasePrice
}
