package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EquipmentUseCase casos de uso CRUD para equipos. Las unidades se manejan vía movimientos.
type EquipmentUseCase struct {
	repo        repository.EquipmentRepository
	consumption *inventory.ConsumptionService
}

// NewEquipmentUseCase construye el caso de uso.
func NewEquipmentUseCase(repo repository.EquipmentRepository, consumption *inventory.ConsumptionService) *EquipmentUseCase {
	return &EquipmentUseCase{repo: repo, consumption: consumption}
}

// Create registra el equipo; las unidades iniciales entran como movimiento IN.
func (uc *EquipmentUseCase) Create(ctx context.Context, actorID string, in dto.CreateEquipmentRequest) (*dto.EquipmentResponse, error) {
	if strings.TrimSpace(in.Name) == "" || !entity.ValidEquipmentType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialStock < 0 || in.MinimumStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.SerialNumber != nil && strings.TrimSpace(*in.SerialNumber) == "" {
		in.SerialNumber = nil
	}
	now := time.Now()
	eq := &entity.Equipment{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(in.Name),
		Type:         in.Type,
		Model:        in.Model,
		SerialNumber: in.SerialNumber,
		PurchaseDate: in.PurchaseDate,
		Status:       entity.EquipmentMaintenance,
		Notes:        in.Notes,
		StockActual:  0,
		StockMinimo:  in.MinimumStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		if err := repos.Equipment.Create(ctx, eq); err != nil {
			return err
		}
		if in.InitialStock == 0 {
			return nil
		}
		_, err := uc.consumption.Apply(ctx, repos, inventory.ConsumptionRequest{
			Kind:    entity.MovementKindIn,
			Lines:   []inventory.Line{{ItemKind: entity.ItemKindEquipment, ItemID: eq.ID, Quantity: decimal.NewFromInt(in.InitialStock)}},
			ActorID: actorID,
			Date:    now,
			Reason:  "Stock inicial",
		})
		if err != nil {
			return err
		}
		eq.StockActual = in.InitialStock
		eq.Status = entity.EquipmentStatusFor(eq.Status, eq.StockActual)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toEquipmentResponse(eq), nil
}

// GetByID obtiene un equipo por ID.
func (uc *EquipmentUseCase) GetByID(ctx context.Context, id string) (*dto.EquipmentResponse, error) {
	eq, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if eq == nil {
		return nil, nil
	}
	return toEquipmentResponse(eq), nil
}

// Update actualiza campos descriptivos; no toca unidades ni estado.
func (uc *EquipmentUseCase) Update(ctx context.Context, id string, in dto.UpdateEquipmentRequest) (*dto.EquipmentResponse, error) {
	eq, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if eq == nil {
		return nil, nil
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		eq.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		if !entity.ValidEquipmentType(*in.Type) {
			return nil, domain.ErrInvalidInput
		}
		eq.Type = *in.Type
	}
	if in.Model != nil {
		eq.Model = *in.Model
	}
	if in.SerialNumber != nil {
		if strings.TrimSpace(*in.SerialNumber) == "" {
			eq.SerialNumber = nil
		} else {
			eq.SerialNumber = in.SerialNumber
		}
	}
	if in.PurchaseDate != nil {
		eq.PurchaseDate = in.PurchaseDate
	}
	if in.Notes != nil {
		eq.Notes = *in.Notes
	}
	if in.MinimumStock != nil {
		if *in.MinimumStock < 0 {
			return nil, domain.ErrInvalidInput
		}
		eq.StockMinimo = *in.MinimumStock
	}
	eq.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, eq); err != nil {
		return nil, err
	}
	return toEquipmentResponse(eq), nil
}

// Retire da de baja el equipo; conserva su historial.
func (uc *EquipmentUseCase) Retire(ctx context.Context, id string) (*dto.EquipmentResponse, error) {
	eq, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if eq == nil {
		return nil, nil
	}
	eq.Status = entity.EquipmentRetired
	eq.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, eq); err != nil {
		return nil, err
	}
	return toEquipmentResponse(eq), nil
}

// List lista equipos filtrados por tipo y estado.
func (uc *EquipmentUseCase) List(ctx context.Context, in dto.EquipmentFilterRequest) (*dto.EquipmentListResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.EquipmentFilter{Type: in.Type, Status: in.Status, Limit: in.Limit, Offset: in.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.EquipmentResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toEquipmentResponse(e))
	}
	return &dto.EquipmentListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

func toEquipmentResponse(e *entity.Equipment) *dto.EquipmentResponse {
	if e == nil {
		return nil
	}
	return &dto.EquipmentResponse{
		ID:           e.ID,
		Name:         e.Name,
		Type:         e.Type,
		Model:        e.Model,
		SerialNumber: e.SerialNumber,
		PurchaseDate: e.PurchaseDate,
		Status:       e.Status,
		Notes:        e.Notes,
		StockActual:  e.StockActual,
		StockMinimo:  e.StockMinimo,
		Level:        string(e.Level()),
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}
