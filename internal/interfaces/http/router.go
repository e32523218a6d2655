package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sucursales-api/internal/application/inventory"
	"github.com/jhoicas/sucursales-api/internal/application/sales"
	"github.com/jhoicas/sucursales-api/internal/application/transfers"
	"github.com/jhoicas/sucursales-api/internal/domain/auth"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SalesUC     *sales.UseCase
	TransfersUC *transfers.UseCase
	InventoryUC *inventory.UseCase
	Verifier    auth.TokenVerifier
	Validator   *Validator
}

// Router registra las rutas de la API. Todas pasan por AuthMiddleware; el alcance por sucursal
// lo deciden los casos de uso.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	api := app.Group("/api", AuthMiddleware(deps.Verifier))

	// Sales
	saleHandler := NewSaleHandler(deps.SalesUC, deps.Validator)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)
	salesGroup.Put("/:id", RequireRole(entity.RoleMasterAdmin), saleHandler.Update)
	salesGroup.Delete("/:id", RequireRole(entity.RoleMasterAdmin), saleHandler.Delete)

	// Transfers
	transferHandler := NewTransferHandler(deps.TransfersUC, deps.Validator)
	transfersGroup := api.Group("/transfers")
	transfersGroup.Post("/", transferHandler.Create)
	transfersGroup.Get("/", transferHandler.List)
	transfersGroup.Get("/:id", transferHandler.GetByID)
	transfersGroup.Put("/:id/approve", transferHandler.Approve)
	transfersGroup.Put("/:id/complete", transferHandler.Complete)
	transfersGroup.Put("/:id/cancel", transferHandler.Cancel)

	// Inventory (lectura)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	invGroup := api.Group("/inventory")
	invGroup.Get("/:id", inventoryHandler.GetItem)
	invGroup.Get("/:id/movements", inventoryHandler.Movements)
}

// NewApp crea la app Fiber con el manejador de errores común. main añade recover, request id y swagger.
func NewApp(name string, errorHandler fiber.ErrorHandler) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      name,
		ErrorHandler: errorHandler,
	})
}
