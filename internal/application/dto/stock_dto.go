package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
	"github.com/tu-usuario/agromercado-api/internal/domain/stock"
)

// AdjustStockRequest body para PUT /api/variants/:id/stock.
type AdjustStockRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

// AdjustGlobalStockRequest body para PUT /api/products/:id/global-stock.
type AdjustGlobalStockRequest struct {
	GlobalStock decimal.Decimal `json:"global_stock"`
	Reason      string          `json:"reason"`
}

// CheckoutSoldItem una línea vendida dentro de un checkout.
type CheckoutSoldItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int64  `json:"quantity"`
}

// CheckoutStockSyncRequest body para POST /api/checkout/stock-sync.
// Lo envía el subsistema de checkout tras un pago exitoso; o se decrementa
// todo el stock de la canasta o nada.
type CheckoutStockSyncRequest struct {
	CheckoutSessionID string             `json:"checkout_session_id"`
	Reason            string             `json:"reason,omitempty"`
	Items             []CheckoutSoldItem `json:"items"`
}

// VariantStockDTO entrada del cálculo derivado para una variante.
type VariantStockDTO struct {
	VariantID       string          `json:"variant_id"`
	CalculatedStock int64           `json:"calculated_stock"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitSymbol      string          `json:"unit_symbol"`
}

// GlobalStockCalculationDTO respuesta del cálculo de stock derivado.
type GlobalStockCalculationDTO struct {
	ProductID   string            `json:"product_id"`
	GlobalStock decimal.Decimal   `json:"global_stock"`
	Variants    []VariantStockDTO `json:"variants"`
}

// NewGlobalStockCalculationDTO mapea el resultado del motor a la respuesta HTTP.
func NewGlobalStockCalculationDTO(calc *stock.GlobalStockCalculation) GlobalStockCalculationDTO {
	out := GlobalStockCalculationDTO{
		ProductID:   calc.ProductID,
		GlobalStock: calc.GlobalStock,
		Variants:    make([]VariantStockDTO, 0, len(calc.Variants)),
	}
	for _, vs := range calc.Variants {
		out.Variants = append(out.Variants, VariantStockDTO{
			VariantID:       vs.VariantID,
			CalculatedStock: vs.CalculatedStock,
			Quantity:        vs.Quantity,
			UnitSymbol:      vs.UnitSymbol,
		})
	}
	return out
}

// StockMovementDTO un registro del rastro de auditoría.
type StockMovementDTO struct {
	ID                string    `json:"id"`
	VariantID         string    `json:"variant_id"`
	PreviousStock     int64     `json:"previous_stock"`
	NewStock          int64     `json:"new_stock"`
	Quantity          int64     `json:"quantity"`
	Type              string    `json:"type"`
	Reason            string    `json:"reason"`
	CheckoutSessionID *string   `json:"checkout_session_id,omitempty"`
	AdjustedBy        string    `json:"adjusted_by"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewStockMovementDTO mapea un movimiento de dominio.
func NewStockMovementDTO(m *entity.StockMovement) StockMovementDTO {
	return StockMovementDTO{
		ID:                m.ID,
		VariantID:         m.VariantID,
		PreviousStock:     m.PreviousStock,
		NewStock:          m.NewStock,
		Quantity:          m.Quantity,
		Type:              m.Type,
		Reason:            m.Reason,
		CheckoutSessionID: m.CheckoutSessionID,
		AdjustedBy:        m.AdjustedBy,
		CreatedAt:         m.CreatedAt,
	}
}

// UnitDTO una unidad del catálogo (lectura).
type UnitDTO struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Symbol           string           `json:"symbol"`
	Category         string           `json:"category"`
	ConversionFactor *decimal.Decimal `json:"conversion_factor,omitempty"`
	Active           bool             `json:"active"`
}

// NewUnitDTO mapea una unidad de dominio.
func NewUnitDTO(u *entity.Unit) UnitDTO {
	return UnitDTO{
		ID:               u.ID,
		Name:             u.Name,
		Symbol:           u.Symbol,
		Category:         u.Category,
		ConversionFactor: u.ConversionFactor,
		Active:           u.Active,
	}
}
