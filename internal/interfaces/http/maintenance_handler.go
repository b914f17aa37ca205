package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/workflow"
)

// MaintenanceHandler mantenimientos de equipos.
type MaintenanceHandler struct {
	uc *workflow.MaintenanceUseCase
}

// NewMaintenanceHandler construye el handler.
func NewMaintenanceHandler(uc *workflow.MaintenanceUseCase) *MaintenanceHandler {
	return &MaintenanceHandler{uc: uc}
}

// Create godoc
// @Summary      Programar mantenimiento
// @Description  Retira las unidades del equipo del inventario al crearse.
// @Tags         maintenances
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMaintenanceRequest  true  "Mantenimiento"
// @Success      201   {object}  dto.MaintenanceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/maintenances [post]
func (h *MaintenanceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMaintenanceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener mantenimiento
// @Tags         maintenances
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.MaintenanceResponse
// @Router       /api/maintenances/{id} [get]
func (h *MaintenanceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "mantenimiento")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar mantenimientos
// @Tags         maintenances
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.MaintenanceResponse
// @Router       /api/maintenances [get]
func (h *MaintenanceHandler) List(c *fiber.Ctx) error {
	in, err := workflowFilter(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar mantenimiento programado
// @Description  Solo datos descriptivos; equipo y cantidad requieren cancelar y crear otro.
// @Tags         maintenances
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.UpdateMaintenanceRequest  true  "Cambios"
// @Success      200   {object}  dto.MaintenanceResponse
// @Router       /api/maintenances/{id} [put]
func (h *MaintenanceHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateMaintenanceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Finalizar mantenimiento
// @Description  Devuelve las unidades al inventario.
// @Tags         maintenances
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TransitionResponse
// @Router       /api/maintenances/{id}/complete [post]
func (h *MaintenanceHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar mantenimiento
// @Description  Devuelve las unidades al inventario.
// @Tags         maintenances
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TransitionResponse
// @Router       /api/maintenances/{id}/cancel [post]
func (h *MaintenanceHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
