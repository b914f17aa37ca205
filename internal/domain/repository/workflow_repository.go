package repository

import (
	"context"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
)

// WorkflowFilter filtros comunes de aplicaciones, riegos y mantenimientos.
type WorkflowFilter struct {
	Status        entity.WorkflowStatus
	ResponsibleID string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}

// ApplicationRepository puerto de persistencia para aplicaciones fitosanitarias.
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	GetByID(ctx context.Context, id string) (*entity.Application, error)
	// GetForUpdate bloquea la fila de la aplicación durante la transición.
	GetForUpdate(ctx context.Context, id string) (*entity.Application, error)
	// Update persiste cabecera, estado, productos y cuarteles.
	Update(ctx context.Context, app *entity.Application) error
	List(ctx context.Context, filter WorkflowFilter) ([]*entity.Application, error)
}

// IrrigationRepository puerto de persistencia para riegos.
type IrrigationRepository interface {
	Create(ctx context.Context, irrigation *entity.Irrigation) error
	GetByID(ctx context.Context, id string) (*entity.Irrigation, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Irrigation, error)
	// Update persiste cabecera, estado y fertilizantes.
	Update(ctx context.Context, irrigation *entity.Irrigation) error
	List(ctx context.Context, filter WorkflowFilter) ([]*entity.Irrigation, error)
}

// MaintenanceRepository puerto de persistencia para mantenimientos.
type MaintenanceRepository interface {
	Create(ctx context.Context, task *entity.Maintenance) error
	GetByID(ctx context.Context, id string) (*entity.Maintenance, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Maintenance, error)
	Update(ctx context.Context, task *entity.Maintenance) error
	List(ctx context.Context, filter WorkflowFilter) ([]*entity.Maintenance, error)
}
