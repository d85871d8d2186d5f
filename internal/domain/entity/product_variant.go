package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductVariant representa una presentación vendible de un producto
// (ej. "bolsa de 500 g"). Stock es el conteo vendible *derivado* del stock
// global: se recalcula y sobreescribe en cada mutación, nunca es autoritativo.
// Quantity y Unit pueden faltar; una variante así es "inválida para derivación"
// y se reporta con stock 0 en lugar de romper el cálculo completo.
type ProductVariant struct {
	ID        string
	ProductID string
	Quantity  *decimal.Decimal // cuánto de Unit representa la variante
	Unit      *Unit
	Stock     int64 // conteo vendible derivado (cache, se recalcula siempre)
	Price     decimal.Decimal
	TaxRate   decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Derivable indica si la variante tiene unidad y cantidad > 0 para participar
// en la derivación de stock.
func (v *ProductVariant) Derivable() bool {
	return v.Unit != nil && v.Quantity != nil && !v.Quantity.IsZero()
}
