package dto

import "time"

// WorkOrderFilterRequest filtros de la vista unificada de órdenes de trabajo.
// Type: APPLICATION, IRRIGATION o MAINTENANCE; vacío incluye los tres.
type WorkOrderFilterRequest struct {
	Type          string `query:"type"`
	Status        string `query:"status"`
	ResponsibleID string `query:"responsible_id"`
	From          string `query:"from"`
	To            string `query:"to"`
	PageRequest
}

// WorkOrderResponse una aplicación, riego o mantenimiento visto como orden de trabajo.
type WorkOrderResponse struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"` // APL-, RIE-, MAN- + id
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	ResponsibleID string    `json:"responsible_id"`
	Status        string    `json:"status"`
}

// WorkOrderSummary conteos por estado antes de aplicar los filtros de tipo y estado.
type WorkOrderSummary struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// WorkOrderListResponse página de órdenes con su resumen.
type WorkOrderListResponse struct {
	Items   []WorkOrderResponse `json:"items"`
	Summary WorkOrderSummary    `json:"summary"`
	Page    PageResponse        `json:"page"`
}
