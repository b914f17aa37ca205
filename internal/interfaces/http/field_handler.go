package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/usecase"
)

// FieldHandler cuarteles.
type FieldHandler struct {
	uc *usecase.FieldUseCase
}

// NewFieldHandler construye el handler.
func NewFieldHandler(uc *usecase.FieldUseCase) *FieldHandler {
	return &FieldHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cuartel
// @Tags         fields
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateFieldRequest  true  "Datos del cuartel"
// @Success      201   {object}  dto.FieldResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/fields [post]
func (h *FieldHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateFieldRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener cuartel
// @Tags         fields
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del cuartel"
// @Success      200  {object}  dto.FieldResponse
// @Router       /api/fields/{id} [get]
func (h *FieldHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "cuartel")
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar cuarteles
// @Tags         fields
// @Security     Bearer
// @Produce      json
// @Param        crop_status  query  string  false  "Estado del cultivo"
// @Success      200  {array}  dto.FieldResponse
// @Router       /api/fields [get]
func (h *FieldHandler) List(c *fiber.Ctx) error {
	in := dto.FieldFilterRequest{CropStatus: c.Query("crop_status"), PageRequest: pageFromQuery(c)}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar cuartel
// @Tags         fields
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del cuartel"
// @Param        body  body  dto.UpdateFieldRequest  true  "Campos a modificar"
// @Success      200   {object}  dto.FieldResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/fields/{id} [put]
func (h *FieldHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateFieldRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "cuartel")
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar cuartel
// @Description  Solo cuarteles sin aplicaciones ni riegos registrados.
// @Tags         fields
// @Security     Bearer
// @Param        id   path  string  true  "ID del cuartel"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/fields/{id} [delete]
func (h *FieldHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
