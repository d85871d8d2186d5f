package repository

import "github.com/tu-usuario/agromercado-api/internal/domain/entity"

// VariantRepository define el puerto de persistencia para variantes (DIP).
type VariantRepository interface {
	// GetByID carga la variante con su unidad. Devuelve (nil, nil) si no existe.
	GetByID(id string) (*entity.ProductVariant, error)
	// GetForUpdate carga la variante bloqueando su fila (SELECT ... FOR UPDATE).
	GetForUpdate(id string) (*entity.ProductVariant, error)
	// UpdateStock sobreescribe el conteo vendible derivado (cache recalculado).
	UpdateStock(variantID string, stock int64) error
}
