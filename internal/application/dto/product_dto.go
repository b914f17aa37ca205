package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name               string          `json:"name" validate:"required,min=1,max=100"`
	Type               string          `json:"type" validate:"required"`
	HazardLevel        string          `json:"hazard_level" validate:"required,oneof=alto medio bajo"`
	InitialStock       decimal.Decimal `json:"initial_stock"`
	MinimumStock       decimal.Decimal `json:"minimum_stock"`
	Unit               string          `json:"unit"`
	Supplier           string          `json:"supplier"`
	RegistrationNumber string          `json:"registration_number"`
	ActiveIngredient   string          `json:"active_ingredient"`
	Concentration      string          `json:"concentration"`
	Instructions       string          `json:"instructions"`
	Precautions        string          `json:"precautions"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock actual).
type UpdateProductRequest struct {
	Name               *string          `json:"name" validate:"omitempty,min=1,max=100"`
	Type               *string          `json:"type"`
	HazardLevel        *string          `json:"hazard_level"`
	MinimumStock       *decimal.Decimal `json:"minimum_stock"`
	Unit               *string          `json:"unit"`
	Supplier           *string          `json:"supplier"`
	RegistrationNumber *string          `json:"registration_number"`
	ActiveIngredient   *string          `json:"active_ingredient"`
	Concentration      *string          `json:"concentration"`
	Instructions       *string          `json:"instructions"`
	Precautions        *string          `json:"precautions"`
}

// ProductFilterRequest filtros del listado (query string).
type ProductFilterRequest struct {
	Type        string `query:"type"`
	HazardLevel string `query:"hazard_level"`
	Level       string `query:"level"` // normal, bajo, agotado
	PageRequest
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Type               string          `json:"type"`
	HazardLevel        string          `json:"hazard_level"`
	StockActual        decimal.Decimal `json:"stock_actual"`
	StockMinimo        decimal.Decimal `json:"stock_minimo"`
	Level              string          `json:"level"`
	Unit               string          `json:"unit"`
	Supplier           string          `json:"supplier"`
	RegistrationNumber string          `json:"registration_number"`
	ActiveIngredient   string          `json:"active_ingredient"`
	Concentration      string          `json:"concentration"`
	Instructions       string          `json:"instructions"`
	Precautions        string          `json:"precautions"`
	Active             bool            `json:"active"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
