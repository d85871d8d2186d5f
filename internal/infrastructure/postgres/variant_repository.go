package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
	"github.com/tu-usuario/agromercado-api/internal/domain/repository"
)

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo implementación del puerto VariantRepository sobre PostgreSQL
// (usable con pool o tx).
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

const variantWithUnitQuery = `
	SELECT v.id, v.product_id, v.quantity, v.unit_id, v.stock, v.price, v.tax_rate, v.created_at, v.updated_at,
	       u.name, u.symbol, u.category, u.conversion_factor, u.active, u.created_at, u.updated_at
	FROM product_variants v
	LEFT JOIN units u ON u.id = v.unit_id
	WHERE v.id = $1`

// GetByID carga la variante con su unidad. Devuelve (nil, nil) si no existe.
func (r *VariantRepo) GetByID(id string) (*entity.ProductVariant, error) {
	return r.get(id, variantWithUnitQuery)
}

// GetForUpdate carga la variante bloqueando su fila (FOR UPDATE OF v: el
// LEFT JOIN impide bloquear la tabla de unidades, que es solo de lectura aquí).
func (r *VariantRepo) GetForUpdate(id string) (*entity.ProductVariant, error) {
	return r.get(id, variantWithUnitQuery+` FOR UPDATE OF v`)
}

func (r *VariantRepo) get(id, query string) (*entity.ProductVariant, error) {
	row := r.q.QueryRow(context.Background(), query, id)
	variant, err := scanVariantWithUnit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return variant, nil
}

// UpdateStock sobreescribe el conteo vendible derivado de la variante.
func (r *VariantRepo) UpdateStock(variantID string, stock int64) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE product_variants SET stock = $2, updated_at = now() WHERE id = $1`,
		variantID, stock,
	)
	if err != nil {
		return fmt.Errorf("update variant stock: %w", err)
	}
	return nil
}

// scanVariantWithUnit escanea una fila variante+unidad (LEFT JOIN). Todas las
// columnas de la unidad llegan anulables; la unidad solo se materializa si la
// variante tiene unit_id.
func scanVariantWithUnit(row pgx.Row) (*entity.ProductVariant, error) {
	var v entity.ProductVariant
	var unitID *string
	var quantity *decimal.Decimal
	var uName, uSymbol, uCategory *string
	var uFactor *decimal.Decimal
	var uActive *bool
	var uCreatedAt, uUpdatedAt *time.Time

	err := row.Scan(
		&v.ID, &v.ProductID, &quantity, &unitID, &v.Stock, &v.Price, &v.TaxRate, &v.CreatedAt, &v.UpdatedAt,
		&uName, &uSymbol, &uCategory, &uFactor, &uActive, &uCreatedAt, &uUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Quantity = quantity
	if unitID != nil {
		v.Unit = &entity.Unit{
			ID:               *unitID,
			Name:             deref(uName),
			Symbol:           deref(uSymbol),
			Category:         deref(uCategory),
			ConversionFactor: uFactor,
			Active:           uActive != nil && *uActive,
		}
		if uCreatedAt != nil {
			v.Unit.CreatedAt = *uCreatedAt
		}
		if uUpdatedAt != nil {
			v.Unit.UpdatedAt = *uUpdatedAt
		}
	}
	return &v, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
