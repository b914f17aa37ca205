package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/workflow"
)

// WorkOrderHandler vista unificada de órdenes de trabajo.
type WorkOrderHandler struct {
	uc *workflow.WorkOrderUseCase
}

// NewWorkOrderHandler construye el handler.
func NewWorkOrderHandler(uc *workflow.WorkOrderUseCase) *WorkOrderHandler {
	return &WorkOrderHandler{uc: uc}
}

// List godoc
// @Summary      Órdenes de trabajo
// @Description  Aplicaciones, riegos y mantenimientos ordenados por fecha descendente.
// @Tags         work-orders
// @Security     Bearer
// @Produce      json
// @Param        type            query  string  false  "APPLICATION, IRRIGATION o MAINTENANCE"
// @Param        status          query  string  false  "SCHEDULED, COMPLETED o CANCELLED"
// @Param        responsible_id  query  string  false  "Responsable"
// @Param        from            query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to              query  string  false  "Hasta (YYYY-MM-DD)"
// @Param        limit           query  int     false  "Límite"  default(20)
// @Param        offset          query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.WorkOrderListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/work-orders [get]
func (h *WorkOrderHandler) List(c *fiber.Ctx) error {
	in := dto.WorkOrderFilterRequest{
		Type:          c.Query("type"),
		Status:        c.Query("status"),
		ResponsibleID: c.Query("responsible_id"),
		From:          c.Query("from"),
		To:            c.Query("to"),
		PageRequest:   pageFromQuery(c),
	}
	out, err := h.uc.List(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
