package entity

import "github.com/shopspring/decimal"

// ItemKind distingue los dos tipos de ítem con stock.
type ItemKind string

const (
	ItemKindProduct   ItemKind = "product"
	ItemKindEquipment ItemKind = "equipment"
)

// Valid indica si el tipo pertenece al catálogo.
func (k ItemKind) Valid() bool {
	return k == ItemKindProduct || k == ItemKindEquipment
}

// StockLevel nivel derivado del stock actual frente al mínimo.
type StockLevel string

const (
	StockLevelNormal   StockLevel = "normal"
	StockLevelLow      StockLevel = "bajo"
	StockLevelDepleted StockLevel = "agotado"
)

// LevelOf calcula el nivel: agotado en 0, bajo por debajo del mínimo, normal en otro caso.
func LevelOf(current, minimum decimal.Decimal) StockLevel {
	switch {
	case current.LessThanOrEqual(decimal.Zero):
		return StockLevelDepleted
	case current.LessThan(minimum):
		return StockLevelLow
	default:
		return StockLevelNormal
	}
}

// InAlert es verdadero para niveles bajo y agotado.
func (l StockLevel) InAlert() bool {
	return l == StockLevelLow || l == StockLevelDepleted
}

// StockItem vista uniforme de un producto o equipo usada por el protocolo de consumo.
type StockItem struct {
	Kind     ItemKind
	ID       string
	Name     string
	Unit     string
	Quantity decimal.Decimal
	Minimum  decimal.Decimal
	Active   bool
	// Status solo aplica a equipos (operativo, mantenimiento, de_baja).
	Status string
}
