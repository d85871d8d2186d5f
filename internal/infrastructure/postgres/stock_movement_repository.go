package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tu-usuario/agromercado-api/internal/domain"
	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
	"github.com/tu-usuario/agromercado-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// La tabla es append-only: no hay Update ni Delete.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create persiste un movimiento de stock.
func (r *StockMovementRepo) Create(movement *entity.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, variant_id, previous_stock, new_stock, quantity, type, reason, checkout_session_id, adjusted_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	adjustedBy := (*string)(nil)
	if movement.AdjustedBy != "" {
		adjustedBy = &movement.AdjustedBy
	}
	_, err := r.q.Exec(context.Background(), query,
		movement.ID, movement.VariantID, movement.PreviousStock, movement.NewStock,
		movement.Quantity, movement.Type, movement.Reason, movement.CheckoutSessionID,
		adjustedBy, movement.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

const movementColumns = `m.id, m.variant_id, m.previous_stock, m.new_stock, m.quantity, m.type, m.reason, m.checkout_session_id, m.adjusted_by, m.created_at`

// ListByVariant lista movimientos de una variante en un rango de fechas.
func (r *StockMovementRepo) ListByVariant(variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements m WHERE m.variant_id = $1`
	return r.list(query, variantID, from, to, limit, offset)
}

// ListByProduct lista movimientos de todas las variantes de un producto.
func (r *StockMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM stock_movements m
		JOIN product_variants v ON v.id = m.variant_id
		WHERE v.product_id = $1`
	return r.list(query, productID, from, to, limit, offset)
}

func (r *StockMovementRepo) list(query, id string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	args := []any{id}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND m.created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND m.created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		var adjustedBy *string
		if err := rows.Scan(&m.ID, &m.VariantID, &m.PreviousStock, &m.NewStock, &m.Quantity,
			&m.Type, &m.Reason, &m.CheckoutSessionID, &adjustedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if adjustedBy != nil {
			m.AdjustedBy = *adjustedBy
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
