package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
	"github.com/tu-usuario/agromercado-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL
// (usable con pool o tx). Carga el agregado completo: producto + unidad base +
// variantes con sus unidades, en el orden original de las variantes.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, grower_id, name, description, global_stock, base_unit_id, base_quantity, active, created_at, updated_at`

// GetByID carga el agregado de producto. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(id string) (*entity.Product, error) {
	return r.get(id, false)
}

// GetForUpdate carga el agregado bloqueando la fila del producto
// (SELECT ... FOR UPDATE) para serializar el read-then-write de global_stock
// frente a checkouts concurrentes.
func (r *ProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.get(id, true)
}

func (r *ProductRepo) get(id string, forUpdate bool) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var p entity.Product
	var baseUnitID *string
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&p.ID, &p.GrowerID, &p.Name, &p.Description, &p.GlobalStock,
		&baseUnitID, &p.BaseQuantity, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if baseUnitID != nil {
		unit, err := r.loadUnit(*baseUnitID)
		if err != nil {
			return nil, err
		}
		p.BaseUnit = unit
	}

	variants, err := r.loadVariants(p.ID)
	if err != nil {
		return nil, err
	}
	p.Variants = variants
	return &p, nil
}

// UpdateGlobalStock persiste únicamente el stock global (las variantes se
// actualizan por separado dentro de la misma transacción).
func (r *ProductRepo) UpdateGlobalStock(productID string, globalStock decimal.Decimal) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE products SET global_stock = $2, updated_at = now() WHERE id = $1`,
		productID, globalStock,
	)
	if err != nil {
		return fmt.Errorf("update global stock: %w", err)
	}
	return nil
}

func (r *ProductRepo) loadUnit(id string) (*entity.Unit, error) {
	var u entity.Unit
	err := r.q.QueryRow(context.Background(),
		`SELECT id, name, symbol, category, conversion_factor, active, created_at, updated_at
		 FROM units WHERE id = $1`, id).Scan(
		&u.ID, &u.Name, &u.Symbol, &u.Category, &u.ConversionFactor,
		&u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load unit: %w", err)
	}
	return &u, nil
}

// loadVariants carga las variantes del producto con su unidad (LEFT JOIN:
// la unidad puede faltar) respetando el orden del producto.
func (r *ProductRepo) loadVariants(productID string) ([]*entity.ProductVariant, error) {
	query := `
		SELECT v.id, v.product_id, v.quantity, v.unit_id, v.stock, v.price, v.tax_rate, v.created_at, v.updated_at,
		       u.name, u.symbol, u.category, u.conversion_factor, u.active, u.created_at, u.updated_at
		FROM product_variants v
		LEFT JOIN units u ON u.id = v.unit_id
		WHERE v.product_id = $1
		ORDER BY v.created_at, v.id`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("load variants: %w", err)
	}
	defer rows.Close()

	var variants []*entity.ProductVariant
	for rows.Next() {
		variant, err := scanVariantWithUnit(rows)
		if err != nil {
			return nil, err
		}
		variants = append(variants, variant)
	}
	return variants, rows.Err()
}
