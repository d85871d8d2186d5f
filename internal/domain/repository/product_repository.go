package repository

import (
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
)

// ProductRepository define el puerto de lectura/mutación de stock sobre el
// agregado Product (DIP). Este núcleo solo escribe GlobalStock; el resto del
// producto lo administra el catálogo (fuera de alcance).
type ProductRepository interface {
	// GetByID carga el agregado completo: producto + unidad base + variantes
	// con sus unidades. Devuelve (nil, nil) si no existe.
	GetByID(id string) (*entity.Product, error)
	// GetForUpdate carga el agregado y bloquea la fila del producto
	// (SELECT ... FOR UPDATE) por el resto de la transacción. Obligatorio antes
	// de cualquier read-then-write de GlobalStock: dos checkouts concurrentes
	// sobre el mismo producto serializan aquí.
	GetForUpdate(id string) (*entity.Product, error)
	// UpdateGlobalStock persiste únicamente el stock global del producto.
	UpdateGlobalStock(productID string, globalStock decimal.Decimal) error
}
