package dto

import "time"

// CreateEquipmentRequest entrada para registrar un equipo.
type CreateEquipmentRequest struct {
	Name         string     `json:"name" validate:"required,min=1,max=100"`
	Type         string     `json:"type" validate:"required"`
	Model        string     `json:"model"`
	SerialNumber *string    `json:"serial_number"`
	PurchaseDate *time.Time `json:"purchase_date"`
	Notes        string     `json:"notes"`
	InitialStock int64      `json:"initial_stock"`
	MinimumStock int64      `json:"minimum_stock"`
}

// UpdateEquipmentRequest entrada para actualizar un equipo (sin stock actual).
type UpdateEquipmentRequest struct {
	Name         *string    `json:"name"`
	Type         *string    `json:"type"`
	Model        *string    `json:"model"`
	SerialNumber *string    `json:"serial_number"`
	PurchaseDate *time.Time `json:"purchase_date"`
	Notes        *string    `json:"notes"`
	MinimumStock *int64     `json:"minimum_stock"`
}

// EquipmentFilterRequest filtros del listado (query string).
type EquipmentFilterRequest struct {
	Type   string `query:"type"`
	Status string `query:"status"`
	PageRequest
}

// EquipmentResponse salida de un equipo.
type EquipmentResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	Model        string     `json:"model"`
	SerialNumber *string    `json:"serial_number,omitempty"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	Status       string     `json:"status"`
	Notes        string     `json:"notes"`
	StockActual  int64      `json:"stock_actual"`
	StockMinimo  int64      `json:"stock_minimo"`
	Level        string     `json:"level"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EquipmentListResponse lista paginada de equipos.
type EquipmentListResponse struct {
	Items []EquipmentResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
