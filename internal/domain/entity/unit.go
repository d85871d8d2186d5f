package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de unidad de medida. Dos unidades solo son convertibles entre sí
// si comparten la misma categoría.
const (
	UnitCategoryWeight = "weight" // peso (canónica: gramo)
	UnitCategoryVolume = "volume" // volumen (canónica: mililitro)
	UnitCategoryLength = "length" // longitud (canónica: milímetro)
	UnitCategoryOther  = "other"  // sin tabla de conversión estándar
)

// Unit representa una unidad de medida del catálogo (kg, g, l, ...).
// ConversionFactor es el multiplicador hacia la unidad canónica de su categoría;
// si es nil se usa la tabla estándar por símbolo.
type Unit struct {
	ID               string
	Name             string
	Symbol           string
	Category         string
	ConversionFactor *decimal.Decimal
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
