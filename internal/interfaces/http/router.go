package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/tu-usuario/agromercado-api/internal/application/catalog"
	appstock "github.com/tu-usuario/agromercado-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC   *appstock.GlobalStockUseCase
	UnitUC    *catalog.UnitUseCase
	JWTSecret string
	DBPing    func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	// Liveness (público)
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.DBPing != nil {
			if err := deps.DBPing(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down"})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	stockHandler := NewStockHandler(deps.StockUC)
	unitHandler := NewUnitHandler(deps.UnitUC)

	// Consultas de stock (cualquier rol autenticado)
	api.Get("/products/:id/stock", stockHandler.GetProductStock)
	api.Get("/variants/:id/availability", stockHandler.GetVariantAvailability)
	api.Get("/units", unitHandler.List)
	api.Get("/units/:id", unitHandler.GetByID)

	// Correcciones manuales (solo admin)
	admin := api.Group("/", RequireRole(RoleAdmin))
	admin.Put("/products/:id/global-stock", stockHandler.AdjustGlobalStock)
	admin.Put("/variants/:id/stock", stockHandler.AdjustVariantStock)
	admin.Get("/products/:id/movements", stockHandler.ListProductMovements)
	admin.Get("/variants/:id/movements", stockHandler.ListVariantMovements)

	// Integración checkout (server-to-server o admin)
	checkout := api.Group("/checkout", RequireRole(RoleService, RoleAdmin))
	checkout.Post("/stock-sync", stockHandler.CheckoutStockSync)
}
