package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeManualAdjustment = "MANUAL_ADJUSTMENT" // corrección manual de un admin
	MovementTypeSale             = "SALE"              // decremento post-checkout
)

// StockMovement es el registro de auditoría inmutable de un cambio de stock
// sobre una variante. Se crea una vez por variante afectada por operación;
// nunca se modifica ni se borra.
type StockMovement struct {
	ID                string
	VariantID         string
	PreviousStock     int64
	NewStock          int64
	Quantity          int64 // delta con signo (NewStock - PreviousStock)
	Type              string
	Reason            string
	CheckoutSessionID *string // solo movimientos SALE
	AdjustedBy        string
	CreatedAt         time.Time
}
