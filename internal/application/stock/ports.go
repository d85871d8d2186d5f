package stock

import (
	"context"

	"github.com/tu-usuario/agromercado-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor de stock:
// o se escriben todas las filas (stock global + stock de variantes +
// movimientos) o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		variantRepo repository.VariantRepository,
		movementRepo repository.StockMovementRepository,
	) error) error
}
