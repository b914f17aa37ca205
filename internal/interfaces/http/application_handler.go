package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/workflow"
)

// ApplicationHandler aplicaciones fitosanitarias.
type ApplicationHandler struct {
	uc *workflow.ApplicationUseCase
}

// NewApplicationHandler construye el handler.
func NewApplicationHandler(uc *workflow.ApplicationUseCase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

// Create godoc
// @Summary      Programar aplicación
// @Description  Con complete_now=true se crea y finaliza en una sola transacción.
// @Tags         applications
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateApplicationRequest  true  "Aplicación"
// @Success      201   {object}  dto.ApplicationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/applications [post]
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateApplicationRequest
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
// @Summary      Obtener aplicación
// @Tags         applications
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.ApplicationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/applications/{id} [get]
func (h *ApplicationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "aplicación")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar aplicaciones
// @Tags         applications
// @Security     Bearer
// @Produce      json
// @Param        status          query  string  false  "SCHEDULED | COMPLETED | CANCELLED"
// @Param        responsible_id  query  string  false  "Aplicador"
// @Param        from            query  string  false  "YYYY-MM-DD"
// @Param        to              query  string  false  "YYYY-MM-DD"
// @Success      200  {array}  dto.ApplicationResponse
// @Router       /api/applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
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
// @Summary      Editar aplicación programada
// @Tags         applications
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID"
// @Param        body  body  dto.UpdateApplicationRequest  true  "Cambios"
// @Success      200   {object}  dto.ApplicationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/applications/{id} [put]
func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateApplicationRequest
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
// @Summary      Finalizar aplicación
// @Description  Descuenta los productos del inventario. Repetir la llamada devuelve el mismo movimiento.
// @Tags         applications
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TransitionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/applications/{id}/complete [post]
func (h *ApplicationHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar aplicación
// @Tags         applications
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID"
// @Success      200  {object}  dto.TransitionResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/applications/{id}/cancel [post]
func (h *ApplicationHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

func workflowFilter(c *fiber.Ctx) (dto.WorkflowFilterRequest, error) {
	var in dto.WorkflowFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return in, err
	}
	in.PageRequest = pageFromQuery(c)
	return in, nil
}
