package repository

import "github.com/tu-usuario/agromercado-api/internal/domain/entity"

// UnitRepository define el puerto de lectura del catálogo de unidades.
// Las unidades las administra el catálogo de admin (fuera de alcance);
// este núcleo solo las lee.
type UnitRepository interface {
	GetByID(id string) (*entity.Unit, error)
	ListActive() ([]*entity.Unit, error)
}
