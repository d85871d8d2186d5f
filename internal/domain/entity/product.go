package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del mercado campesino con su stock global.
// GlobalStock se expresa en términos de BaseUnit; el stock vendible de cada
// variante se deriva de ese pozo compartido, nunca se administra por separado.
// BaseUnit y BaseQuantity pueden faltar (producto a medio configurar): en ese
// caso la derivación reporta cero en lugar de fallar.
type Product struct {
	ID           string
	GrowerID     string
	Name         string
	Description  string
	GlobalStock  decimal.Decimal
	BaseUnit     *Unit
	BaseQuantity *decimal.Decimal
	Variants     []*ProductVariant
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BaseConfigured indica si el producto tiene la configuración mínima para
// derivar stock por variante (unidad base presente y cantidad base > 0).
func (p *Product) BaseConfigured() bool {
	return p.BaseUnit != nil && p.BaseQuantity != nil && !p.BaseQuantity.IsZero()
}

// FindVariant busca una variante por ID dentro del agregado.
func (p *Product) FindVariant(variantID string) *ProductVariant {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return v
		}
	}
	return nil
}
