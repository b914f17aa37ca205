package entity

import "time"

// Tipos de mantenimiento.
const (
	MaintenancePreventive  = "PREVENTIVA"
	MaintenanceCorrective  = "CORRECTIVA"
	MaintenanceCalibration = "CALIBRACION"
)

// Maintenance tarea de mantenimiento que retira unidades de un equipo
// al crearse y las devuelve al finalizar o cancelar.
type Maintenance struct {
	ID                 string
	EquipmentID        string
	EquipmentName      string // solo lectura
	Quantity           int64
	Kind               string
	Description        string
	ResponsibleID      string
	ScheduledAt        time.Time
	Status             WorkflowStatus
	CheckoutMovementID *string
	ReturnMovementID   *string
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ValidMaintenanceKind indica si el tipo pertenece al catálogo.
func ValidMaintenanceKind(k string) bool {
	return k == MaintenancePreventive || k == MaintenanceCorrective || k == MaintenanceCalibration
}
