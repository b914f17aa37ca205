package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind tipo de movimiento de inventario (enum cerrado).
type MovementKind string

const (
	MovementKindIn     MovementKind = "IN"     // entrada
	MovementKindOut    MovementKind = "OUT"    // salida
	MovementKindAdjust MovementKind = "ADJUST" // ajuste a valor absoluto
)

// Valid indica si el tipo pertenece al enum.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementKindIn, MovementKindOut, MovementKindAdjust:
		return true
	}
	return false
}

// SourceType identifica el flujo que originó un movimiento.
type SourceType string

const (
	SourceApplication         SourceType = "application"
	SourceIrrigation          SourceType = "irrigation"
	SourceMaintenanceCheckout SourceType = "maintenance_checkout"
	SourceMaintenanceReturn   SourceType = "maintenance_return"
)

// InventoryMovement cabecera inmutable de un movimiento de inventario.
// Un movimiento manual no tiene SourceType.
type InventoryMovement struct {
	ID          string
	Kind        MovementKind
	Date        time.Time
	Reason      string
	Reference   string
	SourceType  SourceType
	SourceID    string
	PerformedBy string
	CreatedAt   time.Time
	Lines       []MovementLine
}

// MovementLine detalle por ítem con la foto del stock antes y después.
type MovementLine struct {
	ID          string
	MovementID  string
	ItemKind    ItemKind
	ItemID      string
	ItemName    string // solo lectura
	Quantity    decimal.Decimal
	StockBefore decimal.Decimal
	StockAfter  decimal.Decimal
}

// HasSource indica si el movimiento pertenece a un flujo de trabajo.
func (m *InventoryMovement) HasSource() bool { return m.SourceType != "" }
