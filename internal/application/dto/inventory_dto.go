package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementLineRequest línea de un movimiento manual.
type MovementLineRequest struct {
	ItemKind string          `json:"item_kind" validate:"required,oneof=product equipment"`
	ItemID   string          `json:"item_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// RegisterMovementRequest body para POST /api/inventory/movements (solo administrador).
// Type IN suma; ADJUST fija el valor absoluto.
type RegisterMovementRequest struct {
	Type      string                `json:"type" validate:"required,oneof=IN ADJUST"`
	Reason    string                `json:"reason"`
	Reference string                `json:"reference"`
	Date      *time.Time            `json:"date,omitempty"`
	Lines     []MovementLineRequest `json:"lines"`
}

// MovementLineResponse línea con la foto del stock.
type MovementLineResponse struct {
	ItemKind    string          `json:"item_kind"`
	ItemID      string          `json:"item_id"`
	ItemName    string          `json:"item_name,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
}

// MovementResponse salida de un movimiento de inventario.
type MovementResponse struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Date        time.Time              `json:"date"`
	Reason      string                 `json:"reason"`
	Reference   string                 `json:"reference,omitempty"`
	SourceType  string                 `json:"source_type,omitempty"`
	SourceID    string                 `json:"source_id,omitempty"`
	PerformedBy string                 `json:"performed_by"`
	CreatedAt   time.Time              `json:"created_at"`
	Lines       []MovementLineResponse `json:"lines"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// MovementFilterRequest filtros del historial (query string).
type MovementFilterRequest struct {
	Type     string `query:"type"`
	ItemKind string `query:"item_kind"`
	ItemID   string `query:"item_id"`
	From     string `query:"from"` // YYYY-MM-DD
	To       string `query:"to"`   // YYYY-MM-DD
	PageRequest
}

// StockAlertDTO ítem en alerta de stock con la cantidad sugerida de reposición.
type StockAlertDTO struct {
	ItemKind          string          `json:"item_kind"`
	ItemID            string          `json:"item_id"`
	Name              string          `json:"name"`
	Unit              string          `json:"unit"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	MinimumStock      decimal.Decimal `json:"minimum_stock"`
	Level             string          `json:"level"`
	IdealStock        decimal.Decimal `json:"ideal_stock"`         // MinimumStock * 1.5
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"` // IdealStock - CurrentStock
}
