package repository

import (
	"context"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
)

// MovementFilter filtros para el historial de movimientos.
type MovementFilter struct {
	Kind     entity.MovementKind
	ItemKind entity.ItemKind
	ItemID   string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

// InventoryMovementRepository puerto de persistencia del ledger de movimientos.
// Los movimientos son inmutables: solo se crean y se leen.
type InventoryMovementRepository interface {
	// Create inserta la cabecera. Devuelve domain.ErrDuplicate si ya existe un
	// movimiento para el mismo origen.
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// AddLine inserta una línea de detalle de un movimiento existente.
	AddLine(ctx context.Context, line *entity.MovementLine) error
	GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error)
	GetBySource(ctx context.Context, sourceType entity.SourceType, sourceID string) (*entity.InventoryMovement, error)
	List(ctx context.Context, filter MovementFilter) ([]*entity.InventoryMovement, int, error)
}
