package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocontrol/agrocontrol-api/internal/application/auth"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/application/usecase"
	"github.com/agrocontrol/agrocontrol-api/internal/application/workflow"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	UserUC           *usecase.UserUseCase
	ProductUC        *usecase.ProductUseCase
	EquipmentUC      *usecase.EquipmentUseCase
	FieldUC          *usecase.FieldUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Replenishment    *inventory.ReplenishmentUseCase
	Reports          *inventory.ReportUseCase
	Applications     *workflow.ApplicationUseCase
	Irrigations      *workflow.IrrigationUseCase
	Maintenances     *workflow.MaintenanceUseCase
	WorkOrders       *workflow.WorkOrderUseCase
	Tokens           *jwt.Signer
}

// Router registra las rutas de la API.
// Lecturas abiertas a cualquier usuario autenticado; catálogo, usuarios y movimientos manuales solo admin.
// Las transiciones de flujos se autorizan en la capa de aplicación (responsable o admin).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	adminOnly := RequireRole(entity.RoleAdmin)

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.Tokens))
	protected.Post("/auth/register", adminOnly, authHandler.Register)

	userHandler := NewUserHandler(deps.UserUC)
	protected.Get("/users/me", userHandler.Me)
	protected.Get("/users", adminOnly, userHandler.List)
	protected.Put("/users/:id", adminOnly, userHandler.Update)
	protected.Delete("/users/:id", adminOnly, userHandler.Deactivate)

	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", adminOnly, productHandler.Create)
	products.Put("/:id", adminOnly, productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Deactivate)

	equipment := protected.Group("/equipment")
	equipmentHandler := NewEquipmentHandler(deps.EquipmentUC)
	equipment.Get("/", equipmentHandler.List)
	equipment.Get("/:id", equipmentHandler.GetByID)
	equipment.Post("/", adminOnly, equipmentHandler.Create)
	equipment.Put("/:id", adminOnly, equipmentHandler.Update)
	equipment.Delete("/:id", adminOnly, equipmentHandler.Retire)

	fields := protected.Group("/fields")
	fieldHandler := NewFieldHandler(deps.FieldUC)
	fields.Get("/", fieldHandler.List)
	fields.Get("/:id", fieldHandler.GetByID)
	fields.Post("/", adminOnly, fieldHandler.Create)
	fields.Put("/:id", adminOnly, fieldHandler.Update)
	fields.Delete("/:id", adminOnly, fieldHandler.Delete)

	// Inventario: export.* antes de /:id
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Replenishment, deps.Reports)
	invGroup.Get("/alerts", inventoryHandler.GetStockAlerts)
	invGroup.Get("/movements/export.pdf", inventoryHandler.ExportPDF)
	invGroup.Get("/movements/export.csv", inventoryHandler.ExportCSV)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/movements/:id", inventoryHandler.GetMovement)
	invGroup.Post("/movements", adminOnly, inventoryHandler.RegisterMovement)

	applications := protected.Group("/applications")
	applicationHandler := NewApplicationHandler(deps.Applications)
	applications.Get("/", applicationHandler.List)
	applications.Post("/", applicationHandler.Create)
	applications.Get("/:id", applicationHandler.GetByID)
	applications.Put("/:id", applicationHandler.Update)
	applications.Post("/:id/complete", applicationHandler.Complete)
	applications.Post("/:id/cancel", applicationHandler.Cancel)

	irrigations := protected.Group("/irrigations")
	irrigationHandler := NewIrrigationHandler(deps.Irrigations)
	irrigations.Get("/", irrigationHandler.List)
	irrigations.Post("/", irrigationHandler.Create)
	irrigations.Get("/:id", irrigationHandler.GetByID)
	irrigations.Put("/:id", irrigationHandler.Update)
	irrigations.Post("/:id/fertilizers", irrigationHandler.AddFertilizer)
	irrigations.Post("/:id/complete", irrigationHandler.Complete)
	irrigations.Post("/:id/cancel", irrigationHandler.Cancel)

	maintenances := protected.Group("/maintenances")
	maintenanceHandler := NewMaintenanceHandler(deps.Maintenances)
	maintenances.Get("/", maintenanceHandler.List)
	maintenances.Post("/", maintenanceHandler.Create)
	maintenances.Get("/:id", maintenanceHandler.GetByID)
	maintenances.Put("/:id", maintenanceHandler.Update)
	maintenances.Post("/:id/complete", maintenanceHandler.Complete)
	maintenances.Post("/:id/cancel", maintenanceHandler.Cancel)

	protected.Get("/work-orders", adminOnly, NewWorkOrderHandler(deps.WorkOrders).List)
}
