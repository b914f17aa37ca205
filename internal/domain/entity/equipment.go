package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de equipo.
const (
	EquipmentTypeMaquinaria        = "maquinaria"
	EquipmentTypeHerramientaMayor  = "herramienta_mayor"
	EquipmentTypeHerramientaManual = "herramienta_manual"
	EquipmentTypeVehiculo          = "vehiculo"
	EquipmentTypeOtro              = "otro"
)

// Estados de equipo.
const (
	EquipmentOperational = "operativo"
	EquipmentMaintenance = "mantenimiento"
	EquipmentRetired     = "de_baja"
)

// Equipment representa maquinaria o herramientas contadas por unidades.
type Equipment struct {
	ID           string
	Name         string
	Type         string
	Model        string
	SerialNumber *string // único cuando existe
	PurchaseDate *time.Time
	Status       string
	Notes        string
	StockActual  int64
	StockMinimo  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Level nivel de stock del equipo.
func (e *Equipment) Level() StockLevel {
	return LevelOf(decimal.NewFromInt(e.StockActual), decimal.NewFromInt(e.StockMinimo))
}

// AsStockItem proyecta el equipo a la vista uniforme del ledger.
func (e *Equipment) AsStockItem() *StockItem {
	return &StockItem{
		Kind:     ItemKindEquipment,
		ID:       e.ID,
		Name:     e.Name,
		Unit:     "unidad",
		Quantity: decimal.NewFromInt(e.StockActual),
		Minimum:  decimal.NewFromInt(e.StockMinimo),
		Active:   e.Status != EquipmentRetired,
		Status:   e.Status,
	}
}

// EquipmentStatusFor estado resultante tras dejar el stock en qty.
// Un equipo dado de baja conserva su estado; sin unidades pasa a mantenimiento
// y con unidades vuelve a operativo.
func EquipmentStatusFor(current string, qty int64) string {
	if current == EquipmentRetired {
		return current
	}
	if qty == 0 {
		return EquipmentMaintenance
	}
	return EquipmentOperational
}

// ValidEquipmentType indica si el tipo pertenece al catálogo.
func ValidEquipmentType(t string) bool {
	switch t {
	case EquipmentTypeMaquinaria, EquipmentTypeHerramientaMayor, EquipmentTypeHerramientaManual, EquipmentTypeVehiculo, EquipmentTypeOtro:
		return true
	}
	return false
}
