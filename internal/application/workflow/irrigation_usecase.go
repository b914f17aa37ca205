package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	stock "github.com/agrocontrol/agrocontrol-api/internal/domain/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
	"github.com/google/uuid"
)

const irrigationEntity = "riego"

// IrrigationUseCase ciclo de vida de los riegos. Solo los riegos con
// fertilizante generan movimiento de inventario al finalizar.
type IrrigationUseCase struct {
	consumption    *inventory.ConsumptionService
	irrigationRepo repository.IrrigationRepository
	userRepo       repository.UserRepository
	now            func() time.Time
}

// NewIrrigationUseCase construye el caso de uso.
func NewIrrigationUseCase(
	consumption *inventory.ConsumptionService,
	irrigationRepo repository.IrrigationRepository,
	userRepo repository.UserRepository,
) *IrrigationUseCase {
	return &IrrigationUseCase{consumption: consumption, irrigationRepo: irrigationRepo, userRepo: userRepo, now: time.Now}
}

// Create programa un riego y calcula duración y volumen.
func (uc *IrrigationUseCase) Create(ctx context.Context, actor Actor, in dto.CreateIrrigationRequest) (*dto.IrrigationResponse, error) {
	if in.ResponsibleID == "" {
		in.ResponsibleID = actor.ID
	}
	if err := authorize(actor, in.ResponsibleID); err != nil {
		return nil, err
	}
	if err := checkResponsible(ctx, uc.userRepo, in.ResponsibleID); err != nil {
		return nil, err
	}
	if in.FieldID == "" {
		return nil, fmt.Errorf("%w: cuartel requerido", domain.ErrInvalidInput)
	}
	if in.FlowM3h.IsNegative() {
		return nil, fmt.Errorf("%w: el caudal no puede ser negativo", domain.ErrInvalidInput)
	}
	date := in.Date
	if date.IsZero() {
		date = uc.now()
	}
	now := uc.now()
	irr := &entity.Irrigation{
		ID:                 uuid.New().String(),
		FieldID:            in.FieldID,
		Date:               date,
		StartTime:          in.StartTime,
		EndTime:            in.EndTime,
		FlowM3h:            in.FlowM3h,
		IncludesFertilizer: in.IncludesFertilizer,
		ResponsibleID:      in.ResponsibleID,
		Observations:       in.Observations,
		Status:             entity.StatusScheduled,
		CreatedBy:          actor.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := irr.ComputeVolume(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		field, err := repos.Fields.GetByID(ctx, irr.FieldID)
		if err != nil {
			return err
		}
		if field == nil {
			return fmt.Errorf("%w: cuartel %s no existe", domain.ErrInvalidInput, irr.FieldID)
		}
		return repos.Irrigations.Create(ctx, irr)
	})
	if err != nil {
		return nil, err
	}
	return toIrrigationResponse(irr), nil
}

// GetByID obtiene un riego; nil si no existe.
func (uc *IrrigationUseCase) GetByID(ctx context.Context, id string) (*dto.IrrigationResponse, error) {
	irr, err := uc.irrigationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if irr == nil {
		return nil, nil
	}
	return toIrrigationResponse(irr), nil
}

// List lista riegos filtrados.
func (uc *IrrigationUseCase) List(ctx context.Context, in dto.WorkflowFilterRequest) ([]dto.IrrigationResponse, error) {
	filter, err := ToWorkflowFilter(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.irrigationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.IrrigationResponse, 0, len(list))
	for _, i := range list {
		out = append(out, *toIrrigationResponse(i))
	}
	return out, nil
}

// Update edita un riego programado y recalcula duración y volumen.
func (uc *IrrigationUseCase) Update(ctx context.Context, actor Actor, id string, in dto.UpdateIrrigationRequest) (*dto.IrrigationResponse, error) {
	var irr *entity.Irrigation
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		var err error
		irr, err = uc.load(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if err := checkEditable(irrigationEntity, id, irr.Status); err != nil {
			return err
		}
		if in.ResponsibleID != nil && *in.ResponsibleID != irr.ResponsibleID {
			if err := checkResponsible(ctx, uc.userRepo, *in.ResponsibleID); err != nil {
				return err
			}
			irr.ResponsibleID = *in.ResponsibleID
		}
		if in.FieldID != nil && *in.FieldID != irr.FieldID {
			field, err := repos.Fields.GetByID(ctx, *in.FieldID)
			if err != nil {
				return err
			}
			if field == nil {
				return fmt.Errorf("%w: cuartel %s no existe", domain.ErrInvalidInput, *in.FieldID)
			}
			irr.FieldID = field.ID
		}
		if in.Date != nil {
			irr.Date = *in.Date
		}
		if in.StartTime != nil {
			irr.StartTime = *in.StartTime
		}
		if in.EndTime != nil {
			irr.EndTime = *in.EndTime
		}
		if in.FlowM3h != nil {
			if in.FlowM3h.IsNegative() {
				return fmt.Errorf("%w: el caudal no puede ser negativo", domain.ErrInvalidInput)
			}
			irr.FlowM3h = *in.FlowM3h
		}
		if in.Observations != nil {
			irr.Observations = *in.Observations
		}
		if in.IncludesFertilizer != nil {
			irr.IncludesFertilizer = *in.IncludesFertilizer
			if !irr.IncludesFertilizer {
				irr.Fertilizers = nil
			}
		}
		if err := irr.ComputeVolume(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		irr.UpdatedAt = uc.now()
		return repos.Irrigations.Update(ctx, irr)
	})
	if err != nil {
		return nil, err
	}
	return toIrrigationResponse(irr), nil
}

// AddFertilizer agrega una línea de fertilizante (kg) a un riego programado con fertilizante.
func (uc *IrrigationUseCase) AddFertilizer(ctx context.Context, actor Actor, id string, in dto.AddFertilizerRequest) (*dto.IrrigationResponse, error) {
	if in.ProductID == "" || !in.QuantityKg.IsPositive() {
		return nil, fmt.Errorf("%w: producto y cantidad mayor a cero requeridos", domain.ErrInvalidInput)
	}
	if err := stock.ValidatePrecision(in.QuantityKg); err != nil {
		return nil, err
	}
	var irr *entity.Irrigation
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		var err error
		irr, err = uc.load(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if err := checkEditable(irrigationEntity, id, irr.Status); err != nil {
			return err
		}
		if !irr.IncludesFertilizer {
			return fmt.Errorf("%w: el riego no está marcado con fertilizante", domain.ErrInvalidInput)
		}
		p, err := repos.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s no existe", domain.ErrInvalidInput, in.ProductID)
		}
		merged := false
		for i := range irr.Fertilizers {
			if irr.Fertilizers[i].ProductID == p.ID {
				irr.Fertilizers[i].QuantityKg = irr.Fertilizers[i].QuantityKg.Add(in.QuantityKg)
				merged = true
			}
		}
		if !merged {
			irr.Fertilizers = append(irr.Fertilizers, entity.IrrigationFertilizer{ProductID: p.ID, ProductName: p.Name, QuantityKg: in.QuantityKg})
		}
		irr.UpdatedAt = uc.now()
		return repos.Irrigations.Update(ctx, irr)
	})
	if err != nil {
		return nil, err
	}
	return toIrrigationResponse(irr), nil
}

// Complete finaliza el riego; si incluye fertilizante lo descuenta del inventario.
func (uc *IrrigationUseCase) Complete(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	var (
		irr *entity.Irrigation
		res *inventory.ConsumptionResult
	)
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		var err error
		irr, err = uc.load(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		res, err = uc.complete(ctx, repos, actor, irr)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTransitionResponse(irr.ID, irr.Status, res), nil
}

// Cancel cancela un riego programado; no afecta el inventario.
func (uc *IrrigationUseCase) Cancel(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	var irr *entity.Irrigation
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		var err error
		irr, err = uc.load(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if err := checkTransition(irrigationEntity, irr.ID, irr.Status, entity.StatusCancelled); err != nil {
			return err
		}
		irr.Status = entity.StatusCancelled
		irr.UpdatedAt = uc.now()
		return repos.Irrigations.Update(ctx, irr)
	})
	if err != nil {
		return nil, err
	}
	return toTransitionResponse(irr.ID, irr.Status, nil), nil
}

func (uc *IrrigationUseCase) load(ctx context.Context, repos inventory.Repos, actor Actor, id string) (*entity.Irrigation, error) {
	irr, err := repos.Irrigations.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if irr == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorize(actor, irr.ResponsibleID); err != nil {
		return nil, err
	}
	return irr, nil
}

func (uc *IrrigationUseCase) complete(ctx context.Context, repos inventory.Repos, actor Actor, irr *entity.Irrigation) (*inventory.ConsumptionResult, error) {
	if irr.Status == entity.StatusCompleted {
		if !irr.IncludesFertilizer {
			return nil, nil
		}
		return existingMovement(ctx, repos, irr.MovementID, entity.SourceIrrigation, irr.ID)
	}
	if err := checkTransition(irrigationEntity, irr.ID, irr.Status, entity.StatusCompleted); err != nil {
		return nil, err
	}

	now := uc.now()
	var res *inventory.ConsumptionResult
	if irr.IncludesFertilizer {
		if len(irr.Fertilizers) == 0 {
			return nil, &domain.EmptyConsumptionError{Source: string(entity.SourceIrrigation), SourceID: irr.ID}
		}
		lines := make([]inventory.Line, 0, len(irr.Fertilizers))
		for _, f := range irr.Fertilizers {
			lines = append(lines, inventory.Line{ItemKind: entity.ItemKindProduct, ItemID: f.ProductID, Quantity: f.QuantityKg})
		}
		var err error
		res, err = uc.consumption.Apply(ctx, repos, inventory.ConsumptionRequest{
			Kind:      entity.MovementKindOut,
			Source:    &inventory.Source{Type: entity.SourceIrrigation, ID: irr.ID},
			Lines:     lines,
			ActorID:   actor.ID,
			Date:      now,
			Reason:    fmt.Sprintf("Salida por fertirriego %s", irr.ID),
			Reference: "RIE-" + irr.ID,
		})
		if err != nil {
			return nil, err
		}
		irr.MovementID = &res.Movement.ID
	}
	irr.Status = entity.StatusCompleted
	irr.UpdatedAt = now
	if err := repos.Irrigations.Update(ctx, irr); err != nil {
		return nil, err
	}
	return res, nil
}

func toIrrigationResponse(i *entity.Irrigation) *dto.IrrigationResponse {
	if i == nil {
		return nil
	}
	ferts := make([]dto.IrrigationFertilizerResponse, 0, len(i.Fertilizers))
	for _, f := range i.Fertilizers {
		ferts = append(ferts, dto.IrrigationFertilizerResponse{ProductID: f.ProductID, ProductName: f.ProductName, QuantityKg: f.QuantityKg})
	}
	return &dto.IrrigationResponse{
		ID:                 i.ID,
		FieldID:            i.FieldID,
		Date:               i.Date,
		StartTime:          i.StartTime,
		EndTime:            i.EndTime,
		FlowM3h:            i.FlowM3h,
		DurationMinutes:    i.DurationMinutes,
		VolumeM3:           i.VolumeM3,
		IncludesFertilizer: i.IncludesFertilizer,
		ResponsibleID:      i.ResponsibleID,
		Observations:       i.Observations,
		Status:             string(i.Status),
		Fertilizers:        ferts,
		MovementID:         i.MovementID,
		CreatedAt:          i.CreatedAt,
	}
}
