package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Application aplicación fitosanitaria sobre uno o más cuarteles.
type Application struct {
	ID           string
	ApplicatorID string // responsable
	ScheduledAt  time.Time
	Objective    string
	Method       string
	EquipmentID  *string
	Observations string
	Status       WorkflowStatus
	FieldIDs     []string
	TreatedArea  decimal.Decimal
	Products     []ApplicationProduct
	MovementID   *string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ApplicationProduct producto usado en la aplicación.
type ApplicationProduct struct {
	ProductID      string
	ProductName    string // solo lectura
	Quantity       decimal.Decimal
	DosePerHectare decimal.Decimal
}

// ApplyArea fija el área tratada y recalcula la dosis por hectárea de cada línea.
func (a *Application) ApplyArea(area decimal.Decimal) {
	a.TreatedArea = area
	for i := range a.Products {
		if area.IsPositive() {
			a.Products[i].DosePerHectare = a.Products[i].Quantity.Div(area).Round(4)
		} else {
			a.Products[i].DosePerHectare = decimal.Zero
		}
	}
}
