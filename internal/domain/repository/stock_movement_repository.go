package repository

import (
	"time"

	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el rastro de
// auditoría de stock (DIP). Los movimientos se crean, jamás se mutan ni borran.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByVariant(variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
