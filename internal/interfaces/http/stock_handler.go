package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/agromercado-api/internal/application/dto"
	appstock "github.com/tu-usuario/agromercado-api/internal/application/stock"
	"github.com/tu-usuario/agromercado-api/internal/domain"
	"github.com/tu-usuario/agromercado-api/internal/domain/entity"
	"github.com/tu-usuario/agromercado-api/internal/domain/stock"
)

// StockHandler maneja las peticiones HTTP del motor de stock (protegido).
type StockHandler struct {
	uc *appstock.GlobalStockUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *appstock.GlobalStockUseCase) *StockHandler {
	return &StockHandler{uc: uc}
}

// GetProductStock godoc
// @Summary      Cálculo de stock derivado por variante
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.GlobalStockCalculationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/stock [get]
func (h *StockHandler) GetProductStock(c *fiber.Ctx) error {
	calc, err := h.uc.CalculateGlobalStock(c.Context(), c.Params("id"))
	if err != nil {
		return stockError(c, err)
	}
	if calc == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto no encontrado"})
	}
	return c.JSON(dto.NewGlobalStockCalculationDTO(calc))
}

// AdjustGlobalStock godoc
// @Summary      Fijar stock global y re-derivar variantes
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true  "ID del producto"
// @Param        body  body  dto.AdjustGlobalStockRequest  true  "global_stock, reason"
// @Success      200  {object}  dto.GlobalStockCalculationDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/global-stock [put]
func (h *StockHandler) AdjustGlobalStock(c *fiber.Ctx) error {
	var in dto.AdjustGlobalStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.AdjustGlobalStock(c.Context(), c.Params("id"), in.GlobalStock, in.Reason, GetUserID(c))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(dto.NewGlobalStockCalculationDTO(result.Calculation))
}

// AdjustVariantStock godoc
// @Summary      Corrección manual del stock de una variante
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la variante"
// @Param        body  body  dto.AdjustStockRequest  true  "stock, reason"
// @Success      200  {object}  dto.StockMovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/variants/{id}/stock [put]
func (h *StockHandler) AdjustVariantStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.uc.AdjustStock(c.Context(), c.Params("id"), in.Stock, in.Reason, GetUserID(c))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{
		"variant_id": result.Variant.ID,
		"stock":      result.Variant.Stock,
		"movement":   dto.NewStockMovementDTO(result.Movement),
	})
}

// CheckoutStockSync godoc
// @Summary      Decremento de stock post-checkout (todo o nada)
// @Description  Lo invoca el subsistema de checkout tras un pago exitoso con
//
//	la lista final de líneas vendidas. Cualquier fallo revierte la
//	transacción completa: ningún stock queda decrementado.
//
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckoutStockSyncRequest  true  "checkout_session_id, items"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/checkout/stock-sync [post]
func (h *StockHandler) CheckoutStockSync(c *fiber.Ctx) error {
	var in dto.CheckoutStockSyncRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	items := make([]appstock.SoldItem, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, appstock.SoldItem{VariantID: item.VariantID, Quantity: item.Quantity})
	}
	err := h.uc.UpdateGlobalStockAfterCheckout(c.Context(), items, in.CheckoutSessionID, in.Reason, GetUserID(c))
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"message": "stock sincronizado"})
}

// GetVariantAvailability godoc
// @Summary      Disponibilidad fresca de una variante
// @Description  Recalcula el stock derivado en línea (nunca usa el cache) y
//
//	verifica que alcance para la cantidad solicitada.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id        path   string  true  "ID de la variante"
// @Param        quantity  query  int     true  "Cantidad solicitada"
// @Success      200  {object}  map[string]bool
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/variants/{id}/availability [get]
func (h *StockHandler) GetVariantAvailability(c *fiber.Ctx) error {
	quantity := int64(c.QueryInt("quantity", 1))
	if quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "quantity debe ser positivo"})
	}
	canSell, err := h.uc.CanSellVariant(c.Context(), c.Params("id"), quantity)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{"variant_id": c.Params("id"), "requested": quantity, "can_sell": canSell})
}

// ListVariantMovements godoc
// @Summary      Rastro de auditoría de una variante
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la variante"
// @Param        limit   query  int     false  "Máximo de filas (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Param        from    query  string  false  "Desde (RFC3339)"
// @Param        to      query  string  false  "Hasta (RFC3339)"
// @Success      200  {array}  dto.StockMovementDTO
// @Router       /api/variants/{id}/movements [get]
func (h *StockHandler) ListVariantMovements(c *fiber.Ctx) error {
	return h.listMovements(c, func(page dto.PageRequest, from, to *time.Time) ([]dto.StockMovementDTO, error) {
		movements, err := h.uc.ListMovementsByVariant(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
		if err != nil {
			return nil, err
		}
		return mapMovements(movements), nil
	})
}

// ListProductMovements godoc
// @Summary      Rastro de auditoría de todas las variantes de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del producto"
// @Param        limit   query  int     false  "Máximo de filas (default 20)"
// @Param        offset  query  int     false  "Desplazamiento"
// @Success      200  {array}  dto.StockMovementDTO
// @Router       /api/products/{id}/movements [get]
func (h *StockHandler) ListProductMovements(c *fiber.Ctx) error {
	return h.listMovements(c, func(page dto.PageRequest, from, to *time.Time) ([]dto.StockMovementDTO, error) {
		movements, err := h.uc.ListMovementsByProduct(c.Context(), c.Params("id"), from, to, page.Limit, page.Offset)
		if err != nil {
			return nil, err
		}
		return mapMovements(movements), nil
	})
}

func (h *StockHandler) listMovements(c *fiber.Ctx, fetch func(page dto.PageRequest, from, to *time.Time) ([]dto.StockMovementDTO, error)) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}

	list, err := fetch(page, from, to)
	if err != nil {
		return stockError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(list),
		"movements": list,
	})
}

func mapMovements(movements []*entity.StockMovement) []dto.StockMovementDTO {
	list := make([]dto.StockMovementDTO, 0, len(movements))
	for _, m := range movements {
		list = append(list, dto.NewStockMovementDTO(m))
	}
	return list
}

func parseTimeQuery(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// stockError mapea errores de dominio/motor a respuestas HTTP.
func stockError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrVariantNotFound),
		errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrMissingBaseUnit),
		errors.Is(err, domain.ErrInvalidVariantCfg),
		errors.Is(err, stock.ErrIncompatibleCategories),
		errors.Is(err, stock.ErrZeroBaseQuantity):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "STOCK_CONFIG", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
