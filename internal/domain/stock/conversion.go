package stock

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
)

// Errores del motor de conversión y derivación.
var (
	// ErrIncompatibleCategories indica un intento de convertir entre unidades
	// de categorías distintas (ej. peso → volumen). Es un bug de integridad del
	// catálogo aguas arriba y aborta la transacción que lo envuelva.
	ErrIncompatibleCategories = errors.New("unidades de categorías incompatibles")
	// ErrZeroBaseQuantity protege contra división por cero cuando el producto
	// tiene unidad base pero cantidad base nula o cero.
	ErrZeroBaseQuantity = errors.New("cantidad base del producto en cero")
)

// Convert convierte amount de la unidad from a la unidad to.
// Misma unidad → identidad. Categorías distintas → error siempre, aunque ambas
// tengan factor explícito (los factores son hacia la canónica *de su categoría*
// y no relacionan categorías entre sí). Dentro de la misma categoría se usan
// los factores explícitos del catálogo y, en su defecto, la tabla estándar.
func Convert(amount decimal.Decimal, from, to *entity.Unit) (decimal.Decimal, error) {
	if from.ID == to.ID {
		return amount, nil
	}
	if from.Category != to.Category {
		return decimal.Zero, fmt.Errorf("no se puede convertir entre %s y %s: %w",
			from.Symbol, to.Symbol, ErrIncompatibleCategories)
	}
	fromFactor := factorToCanonical(from)
	toFactor := factorToCanonical(to)
	return amount.Mul(fromFactor).Div(toFactor), nil
}
