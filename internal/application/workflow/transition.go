// Package workflow implementa las máquinas de estado de aplicaciones
// fitosanitarias, riegos y mantenimientos y su integración con el
// protocolo de consumo de inventario.
package workflow

import (
	"context"
	"fmt"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
)

// Actor usuario que solicita la operación (tomado del JWT).
type Actor struct {
	ID   string
	Role string
}

// IsAdmin indica si el actor es administrador.
func (a Actor) IsAdmin() bool { return a.Role == entity.RoleAdmin }

// authorize solo el responsable asignado o un administrador conducen el flujo.
func authorize(actor Actor, responsibleID string) error {
	if actor.IsAdmin() || (actor.ID != "" && actor.ID == responsibleID) {
		return nil
	}
	return domain.ErrForbidden
}

// checkTransition valida SCHEDULED -> COMPLETED | CANCELLED.
func checkTransition(name, id string, from, to entity.WorkflowStatus) error {
	if entity.CanTransition(from, to) {
		return nil
	}
	return &domain.InvalidTransitionError{Entity: name, ID: id, From: string(from), To: string(to)}
}

// checkEditable los flujos solo se editan mientras están programados.
func checkEditable(name, id string, status entity.WorkflowStatus) error {
	if status == entity.StatusScheduled {
		return nil
	}
	return fmt.Errorf("%w: %s %s está %s y no admite cambios", domain.ErrConflict, name, id, status)
}

// existingMovement resultado no-op para un flujo ya finalizado.
func existingMovement(ctx context.Context, repos inventory.Repos, movementID *string, source entity.SourceType, sourceID string) (*inventory.ConsumptionResult, error) {
	var (
		mov *entity.InventoryMovement
		err error
	)
	if movementID != nil {
		mov, err = repos.Movements.GetByID(ctx, *movementID)
	} else {
		mov, err = repos.Movements.GetBySource(ctx, source, sourceID)
	}
	if err != nil {
		return nil, err
	}
	return &inventory.ConsumptionResult{Movement: mov, Created: false}, nil
}

func checkResponsible(ctx context.Context, users repository.UserRepository, id string) error {
	if id == "" {
		return fmt.Errorf("%w: responsable requerido", domain.ErrInvalidInput)
	}
	u, err := users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil || u.Status != entity.UserStatusActive {
		return fmt.Errorf("%w: responsable %s no existe o está inactivo", domain.ErrInvalidInput, id)
	}
	return nil
}

func toTransitionResponse(id string, status entity.WorkflowStatus, res *inventory.ConsumptionResult) *dto.TransitionResponse {
	out := &dto.TransitionResponse{ID: id, Status: string(status)}
	if res != nil {
		out.Movement = inventory.ToMovementResponse(res.Movement)
		out.Idempotent = !res.Created
	}
	return out
}

// ToWorkflowFilter convierte los filtros comunes de listados.
func ToWorkflowFilter(in dto.WorkflowFilterRequest) (repository.WorkflowFilter, error) {
	in.DefaultPage()
	f := repository.WorkflowFilter{
		Status:        entity.WorkflowStatus(in.Status),
		ResponsibleID: in.ResponsibleID,
		Limit:         in.Limit,
		Offset:        in.Offset,
	}
	switch f.Status {
	case "", entity.StatusScheduled, entity.StatusCompleted, entity.StatusCancelled:
	default:
		return f, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, in.Status)
	}
	var err error
	if f.From, f.To, err = inventory.ParseDateRange(in.From, in.To); err != nil {
		return f, err
	}
	return f, nil
}
