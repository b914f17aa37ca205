package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
)

// InventoryHandler maneja movimientos, alertas y exportaciones (protegido).
type InventoryHandler struct {
	uc            *inventory.RegisterMovementUseCase
	replenishment *inventory.ReplenishmentUseCase
	reports       *inventory.ReportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, replenishment *inventory.ReplenishmentUseCase, reports *inventory.ReportUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment, reports: reports}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento manual (administrador)
// @Description  IN suma a la existencia; ADJUST fija el valor absoluto. Las salidas solo se originan en los flujos.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "type, reason, lines"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.RegisterMovementFromRequest(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Historial de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        type       query  string  false  "IN | OUT | ADJUST"
// @Param        item_kind  query  string  false  "product | equipment"
// @Param        item_id    query  string  false  "ID del ítem"
// @Param        from       query  string  false  "YYYY-MM-DD"
// @Param        to         query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	in, err := movementFilter(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_QUERY", "parámetros inválidos")
	}
	in.PageRequest = pageFromQuery(c)
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetMovement godoc
// @Summary      Obtener movimiento con sus líneas
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if out == nil {
		return notFound(c, "movimiento")
	}
	return c.JSON(out)
}

// GetStockAlerts godoc
// @Summary      Ítems en alerta de stock
// @Description  Productos y equipos en nivel bajo o agotado con la cantidad sugerida de reposición.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockAlertDTO
// @Router       /api/inventory/alerts [get]
func (h *InventoryHandler) GetStockAlerts(c *fiber.Ctx) error {
	list, err := h.replenishment.StockAlerts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":  len(list),
		"alerts": list,
	})
}

// ExportPDF godoc
// @Summary      Exportar historial en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/inventory/movements/export.pdf [get]
func (h *InventoryHandler) ExportPDF(c *fiber.Ctx) error {
	in, err := movementFilter(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.reports.MovementsPDF(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, attachment("movimientos", "pdf"))
	return c.Send(out)
}

// ExportCSV godoc
// @Summary      Exportar historial en CSV
// @Description  Separador ';' y codificación Windows-1252 para abrir directamente en Excel.
// @Tags         inventory
// @Security     Bearer
// @Produce      text/csv
// @Success      200  {file}  binary
// @Router       /api/inventory/movements/export.csv [get]
func (h *InventoryHandler) ExportCSV(c *fiber.Ctx) error {
	in, err := movementFilter(c)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "INVALID_QUERY", "parámetros inválidos")
	}
	out, err := h.reports.MovementsCSV(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=windows-1252")
	c.Set(fiber.HeaderContentDisposition, attachment("movimientos", "csv"))
	return c.Send(out)
}

func movementFilter(c *fiber.Ctx) (dto.MovementFilterRequest, error) {
	var in dto.MovementFilterRequest
	err := c.QueryParser(&in)
	return in, err
}

func attachment(name, ext string) string {
	return fmt.Sprintf(`attachment; filename="%s_%s.%s"`, name, time.Now().Format("20060102_1504"), ext)
}
