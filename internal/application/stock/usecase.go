package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tu-usuario/agromercado-api/internal/domain"
	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
	"github.com/tu-usuario/agromercado-api/internal/domain/repository"
	"github.com/tu-usuario/agromercado-api/internal/domain/stock"
)

// GlobalStockUseCase orquesta las mutaciones de stock de forma transaccional:
// delega la aritmética al motor puro (internal/domain/stock), persiste sus
// resultados y escribe el rastro de auditoría, todo dentro de una transacción
// con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type GlobalStockUseCase struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	movementRepo repository.StockMovementRepository
}

// NewGlobalStockUseCase construye el caso de uso. Los repositorios sueltos se
// usan para consultas de solo lectura fuera de transacción.
func NewGlobalStockUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	movementRepo repository.StockMovementRepository,
) *GlobalStockUseCase {
	return &GlobalStockUseCase{
		txRunner:     txRunner,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		movementRepo: movementRepo,
	}
}

// SoldItem es una línea vendida de un checkout: variante y unidades vendidas.
type SoldItem struct {
	VariantID string
	Quantity  int64
}

// AdjustStockResult variante actualizada + movimiento de auditoría generado.
type AdjustStockResult struct {
	Variant  *entity.ProductVariant
	Movement *entity.StockMovement
}

// AdjustGlobalStockResult producto actualizado + cálculo derivado completo.
type AdjustGlobalStockResult struct {
	Product     *entity.Product
	Calculation *stock.GlobalStockCalculation
}

// AdjustStock sobreescribe directamente el stock de una variante (corrección
// manual de admin, sin pasar por la derivación). Bloquea la fila, escribe un
// movimiento MANUAL_ADJUSTMENT con el antes/después y actualiza el stock,
// todo en una transacción.
func (uc *GlobalStockUseCase) AdjustStock(ctx context.Context, variantID string, newStock int64, reason, adjustedBy string) (*AdjustStockResult, error) {
	if variantID == "" || newStock < 0 {
		return nil, domain.ErrInvalidInput
	}

	var result *AdjustStockResult
	err := uc.txRunner.Run(ctx, func(
		_ repository.ProductRepository,
		variantRepo repository.VariantRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		variant, err := variantRepo.GetForUpdate(variantID)
		if err != nil {
			return err
		}
		if variant == nil {
			return domain.ErrVariantNotFound
		}
		movement := &entity.StockMovement{
			ID:            uuid.New().String(),
			VariantID:     variantID,
			PreviousStock: variant.Stock,
			NewStock:      newStock,
			Quantity:      newStock - variant.Stock,
			Type:          entity.MovementTypeManualAdjustment,
			Reason:        reason,
			AdjustedBy:    adjustedBy,
			CreatedAt:     time.Now(),
		}
		if err := variantRepo.UpdateStock(variantID, newStock); err != nil {
			return err
		}
		if err := movementRepo.Create(movement); err != nil {
			return err
		}
		variant.Stock = newStock
		result = &AdjustStockResult{Variant: variant, Movement: movement}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AdjustGlobalStock fija el stock global del producto a un valor explícito y
// re-deriva y persiste el stock de *todas* sus variantes, con un movimiento
// MANUAL_ADJUSTMENT por variante (antes = stock almacenado, después = valor
// recién derivado). Los errores del motor (categorías incompatibles) abortan
// la transacción completa.
func (uc *GlobalStockUseCase) AdjustGlobalStock(ctx context.Context, productID string, newGlobalStock decimal.Decimal, reason, adjustedBy string) (*AdjustGlobalStockResult, error) {
	if productID == "" || newGlobalStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	var result *AdjustGlobalStockResult
	err := uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		variantRepo repository.VariantRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		product, err := productRepo.GetForUpdate(productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}

		product.GlobalStock = newGlobalStock
		calc, err := stock.CalculateVariantStocks(product)
		if err != nil {
			return err
		}
		if err := productRepo.UpdateGlobalStock(productID, newGlobalStock); err != nil {
			return err
		}
		now := time.Now()
		for _, variant := range product.Variants {
			derived, _ := calc.Find(variant.ID)
			movement := &entity.StockMovement{
				ID:            uuid.New().String(),
				VariantID:     variant.ID,
				PreviousStock: variant.Stock,
				NewStock:      derived.CalculatedStock,
				Quantity:      derived.CalculatedStock - variant.Stock,
				Type:          entity.MovementTypeManualAdjustment,
				Reason:        reason,
				AdjustedBy:    adjustedBy,
				CreatedAt:     now,
			}
			if err := variantRepo.UpdateStock(variant.ID, derived.CalculatedStock); err != nil {
				return err
			}
			if err := movementRepo.Create(movement); err != nil {
				return err
			}
			variant.Stock = derived.CalculatedStock
		}
		result = &AdjustGlobalStockResult{Product: product, Calculation: calc}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateGlobalStockAfterCheckout es el punto de entrada de integración con el
// checkout. Agrupa las líneas vendidas por producto dueño, bloquea cada
// producto, suma el consumo en unidad base de todas sus líneas, aplica el
// decremento una sola vez (recortado en cero), re-deriva el stock de cada
// variante hermana y escribe un movimiento SALE por variante con la referencia
// de sesión de checkout. Cualquier fallo revierte la transacción completa:
// un decremento parcial sobre una canasta multi-producto no es aceptable.
//
// No hay guardia de sobreventa aquí: prevenirla es responsabilidad del
// colaborador que valida antes de llamar a este núcleo.
func (uc *GlobalStockUseCase) UpdateGlobalStockAfterCheckout(ctx context.Context, items []SoldItem, checkoutSessionID, reason, adjustedBy string) error {
	if len(items) == 0 || checkoutSessionID == "" {
		return domain.ErrInvalidInput
	}
	for _, item := range items {
		if item.VariantID == "" || item.Quantity <= 0 {
			return domain.ErrInvalidInput
		}
	}
	if reason == "" {
		reason = "venta checkout"
	}

	return uc.txRunner.Run(ctx, func(
		productRepo repository.ProductRepository,
		variantRepo repository.VariantRepository,
		movementRepo repository.StockMovementRepository,
	) error {
		// Agrupa por producto dueño preservando el orden de primera aparición.
		var productOrder []string
		itemsByProduct := make(map[string][]SoldItem)
		for _, item := range items {
			variant, err := variantRepo.GetByID(item.VariantID)
			if err != nil {
				return err
			}
			if variant == nil {
				return fmt.Errorf("%w: %s", domain.ErrVariantNotFound, item.VariantID)
			}
			if _, seen := itemsByProduct[variant.ProductID]; !seen {
				productOrder = append(productOrder, variant.ProductID)
			}
			itemsByProduct[variant.ProductID] = append(itemsByProduct[variant.ProductID], item)
		}

		now := time.Now()
		for _, productID := range productOrder {
			product, err := productRepo.GetForUpdate(productID)
			if err != nil {
				return err
			}
			if product == nil {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, productID)
			}
			if product.BaseUnit == nil {
				return fmt.Errorf("%w: producto %s", domain.ErrMissingBaseUnit, productID)
			}

			// Suma el consumo en unidad base de todas las líneas del producto.
			consumed := decimal.Zero
			for _, item := range itemsByProduct[productID] {
				variant := product.FindVariant(item.VariantID)
				if variant == nil {
					return fmt.Errorf("%w: %s", domain.ErrVariantNotFound, item.VariantID)
				}
				if !variant.Derivable() {
					return fmt.Errorf("%w: variante %s", domain.ErrInvalidVariantCfg, item.VariantID)
				}
				itemConsumed, err := stock.BaseUnitConsumption(product, variant, item.Quantity)
				if err != nil {
					return err
				}
				consumed = consumed.Add(itemConsumed)
			}

			// Aplica el decremento una sola vez, recortado en cero.
			newGlobal := product.GlobalStock.Sub(consumed)
			if newGlobal.IsNegative() {
				newGlobal = decimal.Zero
			}
			if err := productRepo.UpdateGlobalStock(productID, newGlobal); err != nil {
				return err
			}

			// Re-deriva el stock de todas las variantes hermanas con el global
			// fresco, dentro de la misma transacción (nunca confiar en el cache).
			product.GlobalStock = newGlobal
			calc, err := stock.CalculateVariantStocks(product)
			if err != nil {
				return err
			}
			for _, variant := range product.Variants {
				derived, _ := calc.Find(variant.ID)
				movement := &entity.StockMovement{
					ID:                uuid.New().String(),
					VariantID:         variant.ID,
					PreviousStock:     variant.Stock,
					NewStock:          derived.CalculatedStock,
					Quantity:          derived.CalculatedStock - variant.Stock,
					Type:              entity.MovementTypeSale,
					Reason:            reason,
					CheckoutSessionID: &checkoutSessionID,
					AdjustedBy:        adjustedBy,
					CreatedAt:         now,
				}
				if err := variantRepo.UpdateStock(variant.ID, derived.CalculatedStock); err != nil {
					return err
				}
				if err := movementRepo.Create(movement); err != nil {
					return err
				}
				variant.Stock = derived.CalculatedStock
			}
		}
		return nil
	})
}

// CalculateGlobalStock consulta de solo lectura: carga el agregado y delega al
// motor. Devuelve (nil, nil) si el producto no existe.
func (uc *GlobalStockUseCase) CalculateGlobalStock(ctx context.Context, productID string) (*stock.GlobalStockCalculation, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return stock.CalculateVariantStocks(product)
}

// CanSellVariant recalcula el stock derivado fresco y verifica disponibilidad.
// Usado por la validación de checkout antes de cobrar.
func (uc *GlobalStockUseCase) CanSellVariant(ctx context.Context, variantID string, requestedQuantity int64) (bool, error) {
	variant, err := uc.variantRepo.GetByID(variantID)
	if err != nil {
		return false, err
	}
	if variant == nil {
		return false, domain.ErrVariantNotFound
	}
	product, err := uc.productRepo.GetByID(variant.ProductID)
	if err != nil {
		return false, err
	}
	if product == nil {
		return false, domain.ErrProductNotFound
	}
	return stock.CanSellVariant(product, variantID, requestedQuantity)
}

// ListMovementsByVariant lista el rastro de auditoría de una variante.
func (uc *GlobalStockUseCase) ListMovementsByVariant(ctx context.Context, variantID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movementRepo.ListByVariant(variantID, from, to, limit, offset)
}

// ListMovementsByProduct lista el rastro de auditoría de todas las variantes
// de un producto.
func (uc *GlobalStockUseCase) ListMovementsByProduct(ctx context.Context, productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	return uc.movementRepo.ListByProduct(productID, from, to, limit, offset)
}
