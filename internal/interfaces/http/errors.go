package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
)

// LocalError clave en c.Locals con el error interno que RequestLogger registra.
const LocalError = "internal_error"

// insufficientStockBody detalle del faltante para que el cliente pueda mostrarlo.
type insufficientStockBody struct {
	dto.ErrorResponse
	ItemKind  string `json:"item_kind"`
	ItemID    string `json:"item_id"`
	ItemName  string `json:"item_name"`
	Requested string `json:"requested"`
	Available string `json:"available"`
}

// respondError traduce errores de dominio a HTTP. Los errores tipados se
// evalúan antes que los centinelas porque también satisfacen errors.Is.
func respondError(c *fiber.Ctx, err error) error {
	var stockErr *domain.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.Status(fiber.StatusConflict).JSON(insufficientStockBody{
			ErrorResponse: dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: stockErr.Error()},
			ItemKind:      stockErr.ItemKind,
			ItemID:        stockErr.ItemID,
			ItemName:      stockErr.ItemName,
			Requested:     stockErr.Requested.String(),
			Available:     stockErr.Available.String(),
		})
	}
	var emptyErr *domain.EmptyConsumptionError
	if errors.As(err, &emptyErr) {
		return fail(c, fiber.StatusUnprocessableEntity, "EMPTY_CONSUMPTION", emptyErr.Error())
	}
	var transErr *domain.InvalidTransitionError
	if errors.As(err, &transErr) {
		return fail(c, fiber.StatusConflict, "INVALID_TRANSITION", transErr.Error())
	}

	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", "recurso no encontrado")
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, "VALIDATION", "datos inválidos")
	case errors.Is(err, domain.ErrForbidden):
		return fail(c, fiber.StatusForbidden, "FORBIDDEN", "acceso denegado al recurso")
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "no autorizado")
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		return fail(c, fiber.StatusConflict, "EMAIL_EXISTS", "el email ya está registrado")
	case errors.Is(err, domain.ErrDuplicate):
		return fail(c, fiber.StatusConflict, "DUPLICATE", "el recurso ya existe")
	case errors.Is(err, domain.ErrConcurrentUpdate):
		return fail(c, fiber.StatusConflict, "CONCURRENT_UPDATE", "el stock cambió durante la operación, reintente")
	case errors.Is(err, domain.ErrItemInactive):
		return fail(c, fiber.StatusUnprocessableEntity, "ITEM_INACTIVE", err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return fail(c, fiber.StatusConflict, "INSUFFICIENT_STOCK", "stock insuficiente")
	case errors.Is(err, domain.ErrConflict):
		return fail(c, fiber.StatusConflict, "CONFLICT", err.Error())
	}
	// El detalle (SQL, pgx) queda en el log de la petición, no en la respuesta.
	c.Locals(LocalError, err)
	return fail(c, fiber.StatusInternalServerError, "INTERNAL", "error interno del servidor")
}

func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
}

func notFound(c *fiber.Ctx, what string) error {
	return fail(c, fiber.StatusNotFound, "NOT_FOUND", what+" no encontrado")
}
