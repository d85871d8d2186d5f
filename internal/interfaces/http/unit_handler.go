package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/agromercado-api/internal/application/catalog"
	"github.com/tu-usuario/agromercado-api/internal/application/dto"
	"github.com/tu-usuario/agromercado-api/internal/domain"
)

// UnitHandler expone el catálogo de unidades en lectura (protegido).
type UnitHandler struct {
	uc *catalog.UnitUseCase
}

// NewUnitHandler construye el handler.
func NewUnitHandler(uc *catalog.UnitUseCase) *UnitHandler {
	return &UnitHandler{uc: uc}
}

// List godoc
// @Summary      Unidades activas del catálogo
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UnitDTO
// @Router       /api/units [get]
func (h *UnitHandler) List(c *fiber.Ctx) error {
	units, err := h.uc.ListActive(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	list := make([]dto.UnitDTO, 0, len(units))
	for _, u := range units {
		list = append(list, dto.NewUnitDTO(u))
	}
	return c.JSON(list)
}

// GetByID godoc
// @Summary      Una unidad por ID
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la unidad"
// @Success      200  {object}  dto.UnitDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/units/{id} [get]
func (h *UnitHandler) GetByID(c *fiber.Ctx) error {
	unit, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "unidad no encontrada"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.NewUnitDTO(unit))
}
