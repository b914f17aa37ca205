package repository

import (
	"context"

	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
)

// EquipmentFilter filtros del listado de equipos.
type EquipmentFilter struct {
	Type   string
	Status string
	Limit  int
	Offset int
}

// EquipmentRepository puerto de persistencia para Equipment.
type EquipmentRepository interface {
	Create(ctx context.Context, equipment *entity.Equipment) error
	GetByID(ctx context.Context, id string) (*entity.Equipment, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Equipment, error)
	// Update persiste campos descriptivos y el estado; nunca toca stock_actual.
	Update(ctx context.Context, equipment *entity.Equipment) error
	UpdateStock(ctx context.Context, id string, qty int64, status string) error
	CompareAndSetStock(ctx context.Context, id string, expected, next int64, status string) (bool, error)
	List(ctx context.Context, filter EquipmentFilter) ([]*entity.Equipment, error)
}
