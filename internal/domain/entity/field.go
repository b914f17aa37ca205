package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field representa un cuartel de la finca.
type Field struct {
	ID             string
	Number         int
	Name           string
	Location       string
	Rows           int
	Variety        string
	PlantType      string
	PlantingYear   int
	IrrigationType string
	CropStatus     string
	AreaHectares   decimal.Decimal
	Observations   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TotalArea suma las hectáreas de los cuarteles.
func TotalArea(fields []*Field) decimal.Decimal {
	total := decimal.Zero
	for _, f := range fields {
		total = total.Add(f.AreaHectares)
	}
	return total
}
