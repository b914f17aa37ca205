package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationProductRequest producto y cantidad usada en una aplicación.
type ApplicationProductRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateApplicationRequest body para POST /api/applications.
// CompleteNow crea y finaliza en la misma transacción.
type CreateApplicationRequest struct {
	ApplicatorID string                      `json:"applicator_id"`
	ScheduledAt  time.Time                   `json:"scheduled_at"`
	Objective    string                      `json:"objective"`
	Method       string                      `json:"method"`
	EquipmentID  *string                     `json:"equipment_id,omitempty"`
	Observations string                      `json:"observations"`
	FieldIDs     []string                    `json:"field_ids"`
	Products     []ApplicationProductRequest `json:"products"`
	CompleteNow  bool                        `json:"complete_now"`
}

// UpdateApplicationRequest body para PUT /api/applications/:id (solo en SCHEDULED).
type UpdateApplicationRequest struct {
	ApplicatorID *string                     `json:"applicator_id"`
	ScheduledAt  *time.Time                  `json:"scheduled_at"`
	Objective    *string                     `json:"objective"`
	Method       *string                     `json:"method"`
	EquipmentID  *string                     `json:"equipment_id"`
	Observations *string                     `json:"observations"`
	FieldIDs     []string                    `json:"field_ids"`
	Products     []ApplicationProductRequest `json:"products"`
}

// ApplicationProductResponse línea de producto con dosis calculada.
type ApplicationProductResponse struct {
	ProductID      string          `json:"product_id"`
	ProductName    string          `json:"product_name,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	DosePerHectare decimal.Decimal `json:"dose_per_hectare"`
}

// ApplicationResponse salida de una aplicación fitosanitaria.
type ApplicationResponse struct {
	ID           string                       `json:"id"`
	ApplicatorID string                       `json:"applicator_id"`
	ScheduledAt  time.Time                    `json:"scheduled_at"`
	Objective    string                       `json:"objective"`
	Method       string                       `json:"method"`
	EquipmentID  *string                      `json:"equipment_id,omitempty"`
	Observations string                       `json:"observations"`
	Status       string                       `json:"status"`
	FieldIDs     []string                     `json:"field_ids"`
	TreatedArea  decimal.Decimal              `json:"treated_area"`
	Products     []ApplicationProductResponse `json:"products"`
	MovementID   *string                      `json:"movement_id,omitempty"`
	CreatedAt    time.Time                    `json:"created_at"`
	UpdatedAt    time.Time                    `json:"updated_at"`
}

// CreateIrrigationRequest body para POST /api/irrigations.
type CreateIrrigationRequest struct {
	FieldID            string          `json:"field_id"`
	Date               time.Time       `json:"date"`
	StartTime          string          `json:"start_time"` // HH:MM
	EndTime            string          `json:"end_time"`   // HH:MM
	FlowM3h            decimal.Decimal `json:"flow_m3h"`
	IncludesFertilizer bool            `json:"includes_fertilizer"`
	ResponsibleID      string          `json:"responsible_id"`
	Observations       string          `json:"observations"`
}

// UpdateIrrigationRequest body para PUT /api/irrigations/:id (solo en SCHEDULED).
// Desmarcar IncludesFertilizer descarta las líneas de fertilizante.
type UpdateIrrigationRequest struct {
	FieldID            *string          `json:"field_id"`
	Date               *time.Time       `json:"date"`
	StartTime          *string          `json:"start_time"`
	EndTime            *string          `json:"end_time"`
	FlowM3h            *decimal.Decimal `json:"flow_m3h"`
	IncludesFertilizer *bool            `json:"includes_fertilizer"`
	ResponsibleID      *string          `json:"responsible_id"`
	Observations       *string          `json:"observations"`
}

// AddFertilizerRequest body para POST /api/irrigations/:id/fertilizers.
type AddFertilizerRequest struct {
	ProductID  string          `json:"product_id"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
}

// IrrigationFertilizerResponse fertilizante de un riego.
type IrrigationFertilizerResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	QuantityKg  decimal.Decimal `json:"quantity_kg"`
}

// IrrigationResponse salida de un riego.
type IrrigationResponse struct {
	ID                 string                         `json:"id"`
	FieldID            string                         `json:"field_id"`
	Date               time.Time                      `json:"date"`
	StartTime          string                         `json:"start_time"`
	EndTime            string                         `json:"end_time"`
	FlowM3h            decimal.Decimal                `json:"flow_m3h"`
	DurationMinutes    int                            `json:"duration_minutes"`
	VolumeM3           decimal.Decimal                `json:"volume_m3"`
	IncludesFertilizer bool                           `json:"includes_fertilizer"`
	ResponsibleID      string                         `json:"responsible_id"`
	Observations       string                         `json:"observations"`
	Status             string                         `json:"status"`
	Fertilizers        []IrrigationFertilizerResponse `json:"fertilizers"`
	MovementID         *string                        `json:"movement_id,omitempty"`
	CreatedAt          time.Time                      `json:"created_at"`
}

// CreateMaintenanceRequest body para POST /api/maintenances.
type CreateMaintenanceRequest struct {
	EquipmentID   string    `json:"equipment_id"`
	Quantity      int64     `json:"quantity"`
	Kind          string    `json:"kind"`
	Description   string    `json:"description"`
	ResponsibleID string    `json:"responsible_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
}

// UpdateMaintenanceRequest solo campos que no afectan stock.
type UpdateMaintenanceRequest struct {
	Kind          *string    `json:"kind"`
	Description   *string    `json:"description"`
	ResponsibleID *string    `json:"responsible_id"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
}

// MaintenanceResponse salida de un mantenimiento.
type MaintenanceResponse struct {
	ID                 string    `json:"id"`
	EquipmentID        string    `json:"equipment_id"`
	EquipmentName      string    `json:"equipment_name,omitempty"`
	Quantity           int64     `json:"quantity"`
	Kind               string    `json:"kind"`
	Description        string    `json:"description"`
	ResponsibleID      string    `json:"responsible_id"`
	ScheduledAt        time.Time `json:"scheduled_at"`
	Status             string    `json:"status"`
	CheckoutMovementID *string   `json:"checkout_movement_id,omitempty"`
	ReturnMovementID   *string   `json:"return_movement_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// WorkflowFilterRequest filtros comunes de listados de flujos.
type WorkflowFilterRequest struct {
	Status        string `query:"status"`
	ResponsibleID string `query:"responsible_id"`
	From          string `query:"from"`
	To            string `query:"to"`
	PageRequest
}

// TransitionResponse resultado de finalizar o cancelar un flujo.
type TransitionResponse struct {
	ID         string            `json:"id"`
	Status     string            `json:"status"`
	Movement   *MovementResponse `json:"movement,omitempty"`
	Idempotent bool              `json:"idempotent"`
}
