package stock

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
)

// VariantStock es el conteo vendible derivado de una variante.
type VariantStock struct {
	VariantID       string
	CalculatedStock int64
	Quantity        decimal.Decimal
	UnitSymbol      string
}

// GlobalStockCalculation es el resultado transitorio (no persistido) de derivar
// el stock de todas las variantes de un producto a partir de su stock global.
// Las variantes válidas van primero en el orden original del producto, luego
// las inválidas en su orden original; los consumidores deberían indexar por
// VariantID y no confiar en la posición.
type GlobalStockCalculation struct {
	ProductID   string
	GlobalStock decimal.Decimal
	Variants    []VariantStock
}

// Find busca la entrada de una variante dentro del cálculo.
func (c *GlobalStockCalculation) Find(variantID string) (VariantStock, bool) {
	for _, vs := range c.Variants {
		if vs.VariantID == variantID {
			return vs, true
		}
	}
	return VariantStock{}, false
}

// ValidateVariantUnitsCompatibility verifica que toda variante *con* unidad
// comparta categoría con la unidad base del producto. Las variantes sin unidad
// quedan exentas: se manejan como inválidas en la derivación, no como error.
func ValidateVariantUnitsCompatibility(p *entity.Product) error {
	if p.BaseUnit == nil {
		return nil
	}
	for _, v := range p.Variants {
		if v.Unit == nil {
			continue
		}
		if v.Unit.Category != p.BaseUnit.Category {
			return fmt.Errorf("variante %s con unidad %s (%s) frente a unidad base %s (%s): %w",
				v.ID, v.Unit.Symbol, v.Unit.Category, p.BaseUnit.Symbol, p.BaseUnit.Category,
				ErrIncompatibleCategories)
		}
	}
	return nil
}

// CalculateVariantStocks deriva el conteo vendible de cada variante a partir
// del stock global del producto.
//
// Producto sin unidad base o sin cantidad base: toda variante sale con stock 0
// y no se levanta error (fallback documentado para productos a medio
// configurar). Con configuración completa, cada variante derivable recibe
// floor(stockConvertido / cantidadVariante); la división con piso es política:
// no se ofrecen unidades vendibles fraccionarias.
func CalculateVariantStocks(p *entity.Product) (*GlobalStockCalculation, error) {
	calc := &GlobalStockCalculation{
		ProductID:   p.ID,
		GlobalStock: p.GlobalStock,
	}

	if !p.BaseConfigured() {
		for _, v := range p.Variants {
			calc.Variants = append(calc.Variants, VariantStock{
				VariantID:       v.ID,
				CalculatedStock: 0,
				Quantity:        quantityOrZero(v),
				UnitSymbol:      symbolOr(v, ""),
			})
		}
		return calc, nil
	}

	if err := ValidateVariantUnitsCompatibility(p); err != nil {
		return nil, err
	}

	var invalid []VariantStock
	for _, v := range p.Variants {
		if !v.Derivable() {
			invalid = append(invalid, VariantStock{
				VariantID:       v.ID,
				CalculatedStock: 0,
				Quantity:        quantityOrZero(v),
				UnitSymbol:      symbolOr(v, "N/A"),
			})
			continue
		}
		available := p.GlobalStock
		if v.Unit.ID != p.BaseUnit.ID {
			converted, err := Convert(p.GlobalStock, p.BaseUnit, v.Unit)
			if err != nil {
				return nil, err
			}
			available = converted
		}
		calc.Variants = append(calc.Variants, VariantStock{
			VariantID:       v.ID,
			CalculatedStock: available.Div(*v.Quantity).Floor().IntPart(),
			Quantity:        *v.Quantity,
			UnitSymbol:      v.Unit.Symbol,
		})
	}
	calc.Variants = append(calc.Variants, invalid...)
	return calc, nil
}

// BaseUnitConsumption calcula cuánto stock global (en términos de unidad base)
// consume la venta de quantitySold unidades de la variante.
//
// Sin unidad base en el producto, o variante sin unidad/cantidad: devuelve 0
// sin error (la venta no puede conciliarse contra el stock global; no-op
// documentado, una mala configuración no decrementa el pozo compartido).
func BaseUnitConsumption(p *entity.Product, v *entity.ProductVariant, quantitySold int64) (decimal.Decimal, error) {
	if p.BaseUnit == nil || !v.Derivable() {
		return decimal.Zero, nil
	}
	if p.BaseQuantity == nil || p.BaseQuantity.IsZero() {
		return decimal.Zero, ErrZeroBaseQuantity
	}

	var factor decimal.Decimal
	if v.Unit.ID == p.BaseUnit.ID {
		factor = v.Quantity.Div(*p.BaseQuantity)
	} else {
		if v.Unit.Category != p.BaseUnit.Category {
			return decimal.Zero, fmt.Errorf("no se puede convertir entre %s y %s: %w",
				v.Unit.Symbol, p.BaseUnit.Symbol, ErrIncompatibleCategories)
		}
		// Estandariza ambos lados hacia la unidad canónica de la categoría y
		// toma el cociente como factor variante→base.
		variantStd := v.Quantity.Mul(factorToCanonical(v.Unit))
		baseStd := p.BaseQuantity.Mul(factorToCanonical(p.BaseUnit))
		factor = variantStd.Div(baseStd)
	}
	return factor.Mul(decimal.NewFromInt(quantitySold)), nil
}

// UpdateGlobalStockAfterSale devuelve el nuevo stock global tras vender
// quantitySold unidades de la variante. El resultado se recorta en cero:
// el stock global nunca queda negativo por grande que sea la venta.
func UpdateGlobalStockAfterSale(p *entity.Product, v *entity.ProductVariant, quantitySold int64) (decimal.Decimal, error) {
	consumed, err := BaseUnitConsumption(p, v, quantitySold)
	if err != nil {
		return p.GlobalStock, err
	}
	newStock := p.GlobalStock.Sub(consumed)
	if newStock.IsNegative() {
		return decimal.Zero, nil
	}
	return newStock, nil
}

// CanSellVariant recalcula el stock derivado y verifica que alcance para
// requestedQuantity. Variante ausente del cálculo → false.
func CanSellVariant(p *entity.Product, variantID string, requestedQuantity int64) (bool, error) {
	calc, err := CalculateVariantStocks(p)
	if err != nil {
		return false, err
	}
	vs, ok := calc.Find(variantID)
	if !ok {
		return false, nil
	}
	return vs.CalculatedStock >= requestedQuantity, nil
}

func quantityOrZero(v *entity.ProductVariant) decimal.Decimal {
	if v.Quantity == nil {
		return decimal.Zero
	}
	return *v.Quantity
}

func symbolOr(v *entity.ProductVariant, fallback string) string {
	if v.Unit == nil {
		return fallback
	}
	return v.Unit.Symbol
}
