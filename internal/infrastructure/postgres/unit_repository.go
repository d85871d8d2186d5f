package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
	"github.com/tu-usuario/agromercado-api/internal/domain/repository"
)

var _ repository.UnitRepository = (*UnitRepo)(nil)

// UnitRepo implementación de solo lectura del catálogo de unidades.
// El alta/edición de unidades vive en el tooling de catálogo, no aquí.
type UnitRepo struct {
	q Querier
}

// NewUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUnitRepository(q Querier) *UnitRepo {
	return &UnitRepo{q: q}
}

const unitColumns = `id, name, symbol, category, conversion_factor, active, created_at, updated_at`

// GetByID obtiene una unidad por ID. Devuelve (nil, nil) si no existe.
func (r *UnitRepo) GetByID(id string) (*entity.Unit, error) {
	var u entity.Unit
	err := r.q.QueryRow(context.Background(),
		`SELECT `+unitColumns+` FROM units WHERE id = $1`, id).Scan(
		&u.ID, &u.Name, &u.Symbol, &u.Category, &u.ConversionFactor,
		&u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unit: %w", err)
	}
	return &u, nil
}

// ListActive lista las unidades activas ordenadas por categoría y símbolo.
func (r *UnitRepo) ListActive() ([]*entity.Unit, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+unitColumns+` FROM units WHERE active ORDER BY category, symbol`)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	defer rows.Close()

	var list []*entity.Unit
	for rows.Next() {
		var u entity.Unit
		if err := rows.Scan(&u.ID, &u.Name, &u.Symbol, &u.Category, &u.ConversionFactor,
			&u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}
