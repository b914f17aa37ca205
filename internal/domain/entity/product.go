package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de producto.
const (
	ProductTypeHerbicida    = "herbicida"
	ProductTypeFungicida    = "fungicida"
	ProductTypeInsecticida  = "insecticida"
	ProductTypeFertilizante = "fertilizante"
	ProductTypeOtro         = "otro"
)

// Niveles de peligrosidad.
const (
	HazardHigh   = "alto"
	HazardMedium = "medio"
	HazardLow    = "bajo"
)

// DefaultUnit unidad de medida por defecto (litros).
const DefaultUnit = "lt"

// Product representa un producto fitosanitario o insumo con stock.
type Product struct {
	ID                 string
	Name               string
	Type               string
	HazardLevel        string
	StockActual        decimal.Decimal // solo lo modifica el protocolo de consumo
	StockMinimo        decimal.Decimal
	Unit               string
	Supplier           string
	RegistrationNumber string
	ActiveIngredient   string
	Concentration      string
	Instructions       string
	Precautions        string
	Active             bool
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Level nivel de stock del producto.
func (p *Product) Level() StockLevel { return LevelOf(p.StockActual, p.StockMinimo) }

// AsStockItem proyecta el producto a la vista uniforme del ledger.
func (p *Product) AsStockItem() *StockItem {
	return &StockItem{
		Kind:     ItemKindProduct,
		ID:       p.ID,
		Name:     p.Name,
		Unit:     p.Unit,
		Quantity: p.StockActual,
		Minimum:  p.StockMinimo,
		Active:   p.Active,
	}
}

// ValidProductType indica si el tipo pertenece al catálogo.
func ValidProductType(t string) bool {
	switch t {
	case ProductTypeHerbicida, ProductTypeFungicida, ProductTypeInsecticida, ProductTypeFertilizante, ProductTypeOtro:
		return true
	}
	return false
}

// ValidHazardLevel indica si el nivel de peligrosidad pertenece al catálogo.
func ValidHazardLevel(h string) bool {
	return h == HazardHigh || h == HazardMedium || h == HazardLow
}
