package catalog

import (
	"context"

	"github.com/tu-usuario/agromercado-api/internal/domain"
	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
	"github.com/tu-usuario/agromercado-api/internal/domain/repository"
)

// UnitUseCase expone el catálogo de unidades en modo lectura. La creación y
// edición de unidades vive en el tooling de catálogo de admin, fuera de este
// servicio.
type UnitUseCase struct {
	unitRepo repository.UnitRepository
}

// NewUnitUseCase construye el caso de uso.
func NewUnitUseCase(unitRepo repository.UnitRepository) *UnitUseCase {
	return &UnitUseCase{unitRepo: unitRepo}
}

// ListActive devuelve las unidades activas del catálogo.
func (uc *UnitUseCase) ListActive(ctx context.Context) ([]*entity.Unit, error) {
	return uc.unitRepo.ListActive()
}

// GetByID devuelve una unidad por ID.
func (uc *UnitUseCase) GetByID(ctx context.Context, id string) (*entity.Unit, error) {
	unit, err := uc.unitRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, domain.ErrNotFound
	}
	return unit, nil
}
