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
	"github.com/shopspring/decimal"
)

const applicationEntity = "aplicación"

// ApplicationUseCase ciclo de vida de las aplicaciones fitosanitarias.
// Finalizar descuenta del inventario los productos usados.
type ApplicationUseCase struct {
	consumption *inventory.ConsumptionService
	appRepo     repository.ApplicationRepository
	userRepo    repository.UserRepository
	now         func() time.Time
}

// NewApplicationUseCase construye el caso de uso.
func NewApplicationUseCase(
	consumption *inventory.ConsumptionService,
	appRepo repository.ApplicationRepository,
	userRepo repository.UserRepository,
) *ApplicationUseCase {
	return &ApplicationUseCase{consumption: consumption, appRepo: appRepo, userRepo: userRepo, now: time.Now}
}

// Create programa una aplicación. Con CompleteNow la finaliza en la misma transacción,
// de modo que si falta stock no queda ni la aplicación ni el movimiento.
func (uc *ApplicationUseCase) Create(ctx context.Context, actor Actor, in dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	if in.ApplicatorID == "" {
		in.ApplicatorID = actor.ID
	}
	if err := authorize(actor, in.ApplicatorID); err != nil {
		return nil, err
	}
	if err := checkResponsible(ctx, uc.userRepo, in.ApplicatorID); err != nil {
		return nil, err
	}
	if len(in.FieldIDs) == 0 {
		return nil, fmt.Errorf("%w: se requiere al menos un cuartel", domain.ErrInvalidInput)
	}
	products, err := toApplicationProducts(in.Products)
	if err != nil {
		return nil, err
	}
	scheduled := in.ScheduledAt
	if scheduled.IsZero() {
		scheduled = uc.now()
	}

	var app *entity.Application
	err = uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		now := uc.now()
		app = &entity.Application{
			ID:           uuid.New().String(),
			ApplicatorID: in.ApplicatorID,
			ScheduledAt:  scheduled,
			Objective:    in.Objective,
			Method:       in.Method,
			EquipmentID:  in.EquipmentID,
			Observations: in.Observations,
			Status:       entity.StatusScheduled,
			FieldIDs:     uniqueIDs(in.FieldIDs),
			Products:     products,
			CreatedBy:    actor.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.resolve(ctx, repos, app); err != nil {
			return err
		}
		if err := repos.Applications.Create(ctx, app); err != nil {
			return err
		}
		if in.CompleteNow {
			if _, err := uc.complete(ctx, repos, actor, app); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toApplicationResponse(app), nil
}

// GetByID obtiene una aplicación; nil si no existe.
func (uc *ApplicationUseCase) GetByID(ctx context.Context, id string) (*dto.ApplicationResponse, error) {
	app, err := uc.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, nil
	}
	return toApplicationResponse(app), nil
}

// List lista aplicaciones filtradas.
func (uc *ApplicationUseCase) List(ctx context.Context, in dto.WorkflowFilterRequest) ([]dto.ApplicationResponse, error) {
	filter, err := ToWorkflowFilter(in)
	if err != nil {
		return nil, err
	}
	list, err := uc.appRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ApplicationResponse, 0, len(list))
	for _, a := range list {
		out = append(out, *toApplicationResponse(a))
	}
	return out, nil
}

// Update modifica una aplicación programada (cabecera, cuarteles y productos).
func (uc *ApplicationUseCase) Update(ctx context.Context, actor Actor, id string, in dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error) {
	var app *entity.Application
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		var err error
		app, err = uc.load(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if err := checkEditable(applicationEntity, id, app.Status); err != nil {
			return err
		}
		if in.ApplicatorID != nil && *in.ApplicatorID != app.ApplicatorID {
			if err := checkResponsible(ctx, uc.userRepo, *in.ApplicatorID); err != nil {
				return err
			}
			app.ApplicatorID = *in.ApplicatorID
		}
		if in.ScheduledAt != nil {
			app.ScheduledAt = *in.ScheduledAt
		}
		if in.Objective != nil {
			app.Objective = *in.Objective
		}
		if in.Method != nil {
			app.Method = *in.Method
		}
		if in.EquipmentID != nil {
			if *in.EquipmentID == "" {
				app.EquipmentID = nil
			} else {
				app.EquipmentID = in.EquipmentID
			}
		}
		if in.Observations != nil {
			app.Observations = *in.Observations
		}
		if in.FieldIDs != nil {
			if len(in.FieldIDs) == 0 {
				return fmt.Errorf("%w: se requiere al menos un cuartel", domain.ErrInvalidInput)
			}
			app.FieldIDs = uniqueIDs(in.FieldIDs)
		}
		if in.Products != nil {
			products, err := toApplicationProducts(in.Products)
			if err != nil {
				return err
			}
			app.Products = products
		}
		if err := uc.resolve(ctx, repos, app); err != nil {
			return err
		}
		app.UpdatedAt = uc.now()
		return repos.Applications.Update(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	return toApplicationResponse(app), nil
}

// Complete finaliza la aplicación y descuenta los productos del inventario.
// Repetir la llamada sobre una aplicación ya finalizada devuelve el mismo movimiento.
func (uc *ApplicationUseCase) Complete(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	var (
		app *entity.Application
		res *inventory.ConsumptionResult
	)
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		var err error
		app, err = uc.load(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		res, err = uc.complete(ctx, repos, actor, app)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTransitionResponse(app.ID, app.Status, res), nil
}

// Cancel cancela una aplicación programada; no afecta el inventario.
func (uc *ApplicationUseCase) Cancel(ctx context.Context, actor Actor, id string) (*dto.TransitionResponse, error) {
	var app *entity.Application
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		var err error
		app, err = uc.load(ctx, repos, actor, id)
		if err != nil {
			return err
		}
		if err := checkTransition(applicationEntity, app.ID, app.Status, entity.StatusCancelled); err != nil {
			return err
		}
		app.Status = entity.StatusCancelled
		app.UpdatedAt = uc.now()
		return repos.Applications.Update(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	return toTransitionResponse(app.ID, app.Status, nil), nil
}

// load bloquea la fila de la aplicación y verifica permisos.
func (uc *ApplicationUseCase) load(ctx context.Context, repos inventory.Repos, actor Actor, id string) (*entity.Application, error) {
	app, err := repos.Applications.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrNotFound
	}
	if err := authorize(actor, app.ApplicatorID); err != nil {
		return nil, err
	}
	return app, nil
}

func (uc *ApplicationUseCase) complete(ctx context.Context, repos inventory.Repos, actor Actor, app *entity.Application) (*inventory.ConsumptionResult, error) {
	if app.Status == entity.StatusCompleted {
		return existingMovement(ctx, repos, app.MovementID, entity.SourceApplication, app.ID)
	}
	if err := checkTransition(applicationEntity, app.ID, app.Status, entity.StatusCompleted); err != nil {
		return nil, err
	}
	lines := make([]inventory.Line, 0, len(app.Products))
	for _, p := range app.Products {
		lines = append(lines, inventory.Line{ItemKind: entity.ItemKindProduct, ItemID: p.ProductID, Quantity: p.Quantity})
	}
	now := uc.now()
	res, err := uc.consumption.Apply(ctx, repos, inventory.ConsumptionRequest{
		Kind:      entity.MovementKindOut,
		Source:    &inventory.Source{Type: entity.SourceApplication, ID: app.ID},
		Lines:     lines,
		ActorID:   actor.ID,
		Date:      now,
		Reason:    fmt.Sprintf("Salida por aplicación fitosanitaria %s", app.ID),
		Reference: "APL-" + app.ID,
	})
	if err != nil {
		return nil, err
	}
	app.Status = entity.StatusCompleted
	app.MovementID = &res.Movement.ID
	app.UpdatedAt = now
	if err := repos.Applications.Update(ctx, app); err != nil {
		return nil, err
	}
	return res, nil
}

// resolve verifica cuarteles, productos y equipo y recalcula área y dosis.
func (uc *ApplicationUseCase) resolve(ctx context.Context, repos inventory.Repos, app *entity.Application) error {
	fields, err := repos.Fields.GetByIDs(ctx, app.FieldIDs)
	if err != nil {
		return err
	}
	if len(fields) != len(app.FieldIDs) {
		return fmt.Errorf("%w: uno o más cuarteles no existen", domain.ErrInvalidInput)
	}
	for i, line := range app.Products {
		p, err := repos.Products.GetByID(ctx, line.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: producto %s no existe", domain.ErrInvalidInput, line.ProductID)
		}
		app.Products[i].ProductName = p.Name
	}
	if app.EquipmentID != nil {
		e, err := repos.Equipment.GetByID(ctx, *app.EquipmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("%w: equipo %s no existe", domain.ErrInvalidInput, *app.EquipmentID)
		}
	}
	app.ApplyArea(entity.TotalArea(fields))
	return nil
}

func toApplicationProducts(in []dto.ApplicationProductRequest) ([]entity.ApplicationProduct, error) {
	out := make([]entity.ApplicationProduct, 0, len(in))
	index := make(map[string]int, len(in))
	for _, p := range in {
		if p.ProductID == "" || !p.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: cada producto requiere id y cantidad mayor a cero", domain.ErrInvalidInput)
		}
		if err := stock.ValidatePrecision(p.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[p.ProductID]; ok {
			out[i].Quantity = out[i].Quantity.Add(p.Quantity)
			continue
		}
		index[p.ProductID] = len(out)
		out = append(out, entity.ApplicationProduct{ProductID: p.ProductID, Quantity: p.Quantity, DosePerHectare: decimal.Zero})
	}
	return out, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toApplicationResponse(a *entity.Application) *dto.ApplicationResponse {
	if a == nil {
		return nil
	}
	products := make([]dto.ApplicationProductResponse, 0, len(a.Products))
	for _, p := range a.Products {
		products = append(products, dto.ApplicationProductResponse{
			ProductID:      p.ProductID,
			ProductName:    p.ProductName,
			Quantity:       p.Quantity,
			DosePerHectare: p.DosePerHectare,
		})
	}
	return &dto.ApplicationResponse{
		ID:           a.ID,
		ApplicatorID: a.ApplicatorID,
		ScheduledAt:  a.ScheduledAt,
		Objective:    a.Objective,
		Method:       a.Method,
		EquipmentID:  a.EquipmentID,
		Observations: a.Observations,
		Status:       string(a.Status),
		FieldIDs:     a.FieldIDs,
		TreatedArea:  a.TreatedArea,
		Products:     products,
		MovementID:   a.MovementID,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
