package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maintenanceEntity = "mantenimiento"

// MaintenanceUseCase ciclo de vida de los mantenimientos. Al crear retira las
// unidades del equipo; al finalizar o cancelar las devuelve.
type MaintenanceUseCase struct {
	consumption     *inventory.ConsumptionService
	maintenanceRepo repository.MaintenanceRepository
	userRepo        repository.UserRepository
	now             func() time.Time
}

// NewMaintenanceUseCase construye el caso de uso.
func NewMaintenanceUseCase(
	consumption *inventory.ConsumptionService,
	maintenanceRepo repository.MaintenanceRepository,
	userRepo repository.UserRepository,
) *MaintenanceUseCase {
	return &MaintenanceUseCase{consumption: consumption, maintenanceRepo: maintenanceRepo, userRepo: userRepo, now: time.Now}
}

// Create retira las unidades del equipo y registra el mantenimiento en la misma transacción.
func (uc *MaintenanceUseCase) Create(ctx context.Context, actor Actor, in dto.CreateMaintenanceRequest) (*dto.MaintenanceResponse, error) {
	if in.ResponsibleID == "" {
		in.ResponsibleID = actor.ID
	}
	if err := authorize(actor, in.ResponsibleID); err != nil {
		return nil, err
	}
	if err := checkResponsible(ctx, uc.userRepo, in.ResponsibleID); err != nil {
		return nil, err
	}
	if in.EquipmentID == "" {
		return nil, fmt.Errorf("%w: equipo requerido", domain.ErrInvalidInput)
	}
	if in.Quantity < 1 {
		return nil, fmt.Errorf("%w: la cantidad debe ser al menos 1", domain.ErrInvalidInput)
	}
	if in.Kind == "" {
		in.Kind = entity.MaintenancePreventive
	}
	if !entity.ValidMaintenanceKind(in.Kind) {
		return nil, fmt.Errorf("%w: tipo de mantenimiento %q", domain.ErrInvalidInput, in.Kind)
	}
	scheduled := in.ScheduledAt
	if scheduled.IsZero() {
		scheduled = uc.now()
	}

	var task *entity.Maintenance
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		now := uc.now()
		task = &entity.Maintenance{
			ID:            uuid.New().String(),
			EquipmentID:   in.EquipmentID,
			Quantity:      in.Quantity,
			Kind:          in.Kind,
			Description:   in.Description,
			ResponsibleID: in.ResponsibleID,
			ScheduledAt:   scheduled,
			Status:        entity.StatusScheduled,
			CreatedBy:     actor.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		res, err := uc.consumption.Apply(ctx, repos, inventory.ConsumptionRequest{
			Kind:      entity.MovementKindOut,
			Source:    &inventory.Source{Type: entity.SourceMaintenanceCheckout, ID: task.ID},
			Lines:     equipmentLines(task),
			ActorID:   actor.ID,
			Date:      now,
			Reason:    fmt.Sprintf("Salida de equipo por mantenimiento %s", task.ID),
			Reference: "MNT-" + task.ID,
		})
		if err != nil {
			return err
		}
		task.CheckoutMovementID = &res.Movement.ID
		if len(res.Movement.Lines) > 0 {
			task.EquipmentName = res.Movement.Lines[0].ItemName
		}
		return repos.Maintenances.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return toMaintenanceResponse(task), nil
}

// GetByID obtiene un mantenimiento; nil si no existe.
func (uc *MaintenanceUseCase) GetByID(ctx context.Context, id string) (*dto.MaintenanceResponse, error) {
	task, err := uc.maintenanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}
	return toMaintenanceResponse(task), nil
}

// List lista mantenimientos filtrados.
func (uc *MaintenanceUseCase) List(ctx context.Context, in dto.WorkflowFilterRequest) ([]dto.MaintenanceResponse, error) {
	filter, err := ToWorkflowFilter(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.maintenanceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaintenanceResponse, 0, len(list))
	for _, m := range list {
		out = append(out, *toMaintenanceResponse(m))
	}
	return out, nil
}

// Update modifica campos que no afectan stock. Cambiar equipo o cantidad
// requiere cancelar y crear otra tarea.
func (uc *MaintenanceUseCase) Update(ctx context.Context, actor Actor, id string, in dto.UpdateMaintenanceRequest) (*dto.MaintenanceResponse, error) {
	var task *entity.Maintenance
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		var err error
		task, err = uc.load(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if err := checkEditable(maintenanceEntity, id, task.Status); err != nil {
			return err
		}
		if in.Kind != nil {
			if !entity.ValidMaintenanceKind(*in.Kind) {
				return fmt.Errorf("%w: tipo de mantenimiento %q", domain.ErrInvalidInput, *in.Kind)
			}
			task.Kind = *in.Kind
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.ScheduledAt != nil {
			task.ScheduledAt = *in.ScheduledAt
		}
		if in.ResponsibleID != nil && *in.ResponsibleID != task.ResponsibleID {
			if err := checkResponsible(ctx, uc.userRepo, *in.ResponsibleID); err != nil {
				return err
			}
			task.ResponsibleID = *in.ResponsibleID
		}
		task.UpdatedAt = uc.now()
		return repos.Maintenances.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return toMaintenanceResponse(task), nil
}

// Complete finaliza el mantenimiento y devuelve las unidades al inventario.
func (uc *MaintenanceUseCase) Complete(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	return uc.finish(ctx, actor, id, entity.StatusCompleted)
}

// Cancel cancela el mantenimiento y devuelve las unidades al inventario.
func (uc *MaintenanceUseCase) Cancel(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	return uc.finish(ctx, actor, id, entity.StatusCancelled)
}

func (uc *MaintenanceUseCase) finish(ctx context.Context, actor Actor, id string, to entity.WorkflowStatus) (*dto.TransitionResponse, error) {
	var (
		task *entity.Maintenance
		res  *inventory.ConsumptionResult
	)
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		var err error
		task, err = uc.load(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if task.Status == to && to == entity.StatusCompleted {
			res, err = existingMovement(ctx, repos, task.ReturnMovementID, entity.SourceMaintenanceReturn, task.ID)
			return err
		}
		if err := checkTransition(maintenanceEntity, task.ID, task.Status, to); err != nil {
			return err
		}
		now := uc.now()
		reason := "Devolución de equipo por mantenimiento finalizado %s"
		if to == entity.StatusCancelled {
			reason = "Devolución de equipo por mantenimiento cancelado %s"
		}
		res, err = uc.consumption.Apply(ctx, repos, inventory.ConsumptionRequest{
			Kind:      entity.MovementKindIn,
			Source:    &inventory.Source{Type: entity.SourceMaintenanceReturn, ID: task.ID},
			Lines:     equipmentLines(task),
			ActorID:   actor.ID,
			Date:      now,
			Reason:    fmt.Sprintf(reason, task.ID),
			Reference: "DEV-" + task.ID,
		})
		if err != nil {
			return err
		}
		task.Status = to
		task.ReturnMovementID = &res.Movement.ID
		task.UpdatedAt = now
		return repos.Maintenances.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return toTransitionResponse(task.ID, task.Status, res), nil
}

func (uc *MaintenanceUseCase) load(ctx context.Context, repos inventory.Repos, actor Actor, id string) (*entity.Maintenance, error) {
	task, err := repos.Maintenances.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorize(actor, task.ResponsibleID); err != nil {
		return nil, err
	}
	return task, nil
}

func equipmentLines(task *entity.Maintenance) []inventory.Line {
	return []inventory.Line{{
		ItemKind: entity.ItemKindEquipment,
		ItemID:   task.EquipmentID,
		Quantity: decimal.NewFromInt(task.Quantity),
	}}
}

func toMaintenanceResponse(m *entity.Maintenance) *dto.MaintenanceResponse {
	if m == nil {
		return nil
	}
	return &dto.MaintenanceResponse{
		ID:                 m.ID,
		EquipmentID:        m.EquipmentID,
		EquipmentName:      m.EquipmentName,
		Quantity:           m.Quantity,
		Kind:               m.Kind,
		Description:        m.Description,
		ResponsibleID:      m.ResponsibleID,
		ScheduledAt:        m.ScheduledAt,
		Status:             string(m.Status),
		CheckoutMovementID: m.CheckoutMovementID,
		ReturnMovementID:   m.ReturnMovementID,
		CreatedAt:          m.CreatedAt,
	}
}
