package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/workflow"
)

// IrrigationHandler riegos.
type IrrigationHandler struct {
	uc *workflow.IrrigationUseCase
}

// NewIrrigationHandler construye el handler.
func NewIrrigationHandler(uc *workflow.IrrigationUseCase) *IrrigationHandler {
	return &IrrigationHandler{uc: uc}
}

// Create godoc
// @Summary      Programar riego
// @Tags         irrigations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateIrrigationRequest  true  "Riego"
// @Success      201   {object}  dto.IrrigationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/irrigations [post]
func (h *IrrigationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateIrrigationRequest
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
// @Summary      Obtener riego
// @Tags         irrigations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.IrrigationResponse
// @Router       /api/irrigations/{id} [get]
func (h *IrrigationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "riego")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar riegos
// @Tags         irrigations
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.IrrigationResponse
// @Router       /api/irrigations [get]
func (h *IrrigationHandler) List(c *fiber.Ctx) error {
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
// @Summary      Editar riego programado
// @Description  Recalcula duración y volumen. Desmarcar includes_fertilizer descarta los fertilizantes cargados.
// @Tags         irrigations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.UpdateIrrigationRequest  true  "Cambios"
// @Success      200   {object}  dto.IrrigationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/irrigations/{id} [put]
func (h *IrrigationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateIrrigationRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// AddFertilizer godoc
// @Summary      Agregar fertilizante a un riego programado
// @Tags         irrigations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.AddFertilizerRequest  true  "product_id, quantity_kg"
// @Success      200   {object}  dto.IrrigationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/irrigations/{id}/fertilizers [post]
func (h *IrrigationHandler) AddFertilizer(c *fiber.Ctx) error {
	var in dto.AddFertilizerRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AddFertilizer(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Finalizar riego
// @Description  Si incluye fertilizante lo descuenta del inventario.
// @Tags         irrigations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TransitionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/irrigations/{id}/complete [post]
func (h *IrrigationHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar riego
// @Tags         irrigations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TransitionResponse
// @Router       /api/irrigations/{id}/cancel [post]
func (h *IrrigationHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
