package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateFieldRequest entrada para crear un cuartel.
type CreateFieldRequest struct {
	Number         int             `json:"number" validate:"required,min=1"`
	Name           string          `json:"name" validate:"required"`
	Location       string          `json:"location"`
	Rows           int             `json:"rows"`
	Variety        string          `json:"variety"`
	PlantType      string          `json:"plant_type"`
	PlantingYear   int             `json:"planting_year"`
	IrrigationType string          `json:"irrigation_type"`
	CropStatus     string          `json:"crop_status"`
	AreaHectares   decimal.Decimal `json:"area_hectares"`
	Observations   string          `json:"observations"`
}

// UpdateFieldRequest campos editables; nil deja el valor actual.
type UpdateFieldRequest struct {
	Number         *int             `json:"number"`
	Name           *string          `json:"name"`
	Location       *string          `json:"location"`
	Rows           *int             `json:"rows"`
	Variety        *string          `json:"variety"`
	PlantType      *string          `json:"plant_type"`
	PlantingYear   *int             `json:"planting_year"`
	IrrigationType *string          `json:"irrigation_type"`
	CropStatus     *string          `json:"crop_status"`
	AreaHectares   *decimal.Decimal `json:"area_hectares"`
	Observations   *string          `json:"observations"`
}

// FieldFilterRequest filtros del listado de cuarteles.
type FieldFilterRequest struct {
	CropStatus string `query:"crop_status"`
	PageRequest
}

// FieldResponse salida de un cuartel.
type FieldResponse struct {
	ID             string          `json:"id"`
	Number         int             `json:"number"`
	Name           string          `json:"name"`
	Location       string          `json:"location"`
	Rows           int             `json:"rows"`
	Variety        string          `json:"variety"`
	PlantType      string          `json:"plant_type"`
	PlantingYear   int             `json:"planting_year"`
	IrrigationType string          `json:"irrigation_type"`
	CropStatus     string          `json:"crop_status"`
	AreaHectares   decimal.Decimal `json:"area_hectares"`
	Observations   string          `json:"observations"`
	CreatedAt      time.Time       `json:"created_at"`
}
