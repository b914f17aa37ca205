package inventory

import (
	"context"

	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
)

// Repos agrupa los repositorios atados a una misma transacción.
type Repos struct {
	Movements    repository.InventoryMovementRepository
	Products     repository.ProductRepository
	Equipment    repository.EquipmentRepository
	Fields       repository.FieldRepository
	Applications repository.ApplicationRepository
	Irrigations  repository.IrrigationRepository
	Maintenances repository.MaintenanceRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; en otro caso Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
