package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
)

// RegisterMovementUseCase registra entradas y ajustes manuales del administrador
// y expone el historial de movimientos. Las salidas solo las producen los flujos.
type RegisterMovementUseCase struct {
	consumption  *ConsumptionService
	movementRepo repository.InventoryMovementRepository
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(consumption *ConsumptionService, movementRepo repository.InventoryMovementRepository) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{consumption: consumption, movementRepo: movementRepo}
}

// ManualMovementInput entrada de un movimiento manual.
type ManualMovementInput struct {
	ActorID   string
	Kind      entity.MovementKind
	Reason    string
	Reference string
	Date      time.Time
	Lines     []Line
}

// RegisterMovement aplica IN (suma) o ADJUST (valor absoluto) en una transacción.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input ManualMovementInput) (*dto.MovementResponse, error) {
	switch input.Kind {
	case entity.MovementKindIn, entity.MovementKindAdjust:
	case entity.MovementKindOut:
		return nil, fmt.Errorf("%w: las salidas solo se registran desde aplicaciones, riegos o mantenimientos", domain.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, input.Kind)
	}
	reason := input.Reason
	if reason == "" {
		if input.Kind == entity.MovementKindIn {
			reason = "Entrada manual"
		} else {
			reason = "Ajuste manual de inventario"
		}
	}

	var mov *entity.InventoryMovement
	err := uc.consumption.Transact(ctx, func(repos Repos) error {
		res, err := uc.consumption.Apply(ctx, repos, ConsumptionRequest{
			Kind:      input.Kind,
			Lines:     input.Lines,
			ActorID:   input.ActorID,
			Date:      input.Date,
			Reason:    reason,
			Reference: input.Reference,
		})
		if err != nil {
			return err
		}
		mov = res.Movement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToMovementResponse(mov), nil
}

// RegisterMovementFromRequest adapta el request HTTP al caso de uso.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID string, in dto.RegisterMovementRequest) (*dto.MovementResponse, error) {
	input := ManualMovementInput{
		ActorID:   userID,
		Kind:      entity.MovementKind(in.Type),
		Reason:    in.Reason,
		Reference: in.Reference,
	}
	if in.Date != nil {
		input.Date = *in.Date
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, Line{
			ItemKind: entity.ItemKind(l.ItemKind),
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
		})
	}
	return uc.RegisterMovement(ctx, input)
}

// GetByID obtiene un movimiento con sus líneas.
func (uc *RegisterMovementUseCase) GetByID(ctx context.Context, id string) (*dto.MovementResponse, error) {
	mov, err := uc.movementRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, nil
	}
	return ToMovementResponse(mov), nil
}

// List historial filtrado y paginado.
func (uc *RegisterMovementUseCase) List(ctx context.Context, in dto.MovementFilterRequest) (*dto.MovementListResponse, error) {
	filter, err := ToMovementFilter(in)
	if err != nil {
		return nil, err
	}
	list, total, err := uc.movementRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *ToMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// ToMovementFilter valida y convierte los filtros del historial.
func ToMovementFilter(in dto.MovementFilterRequest) (repository.MovementFilter, error) {
	in.DefaultPage()
	f := repository.MovementFilter{
		Kind:     entity.MovementKind(in.Type),
		ItemKind: entity.ItemKind(in.ItemKind),
		ItemID:   in.ItemID,
		Limit:    in.Limit,
		Offset:   in.Offset,
	}
	if f.Kind != "" && !f.Kind.Valid() {
		return f, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}
	if f.ItemKind != "" && !f.ItemKind.Valid() {
		return f, fmt.Errorf("%w: tipo de ítem %q", domain.ErrInvalidInput, in.ItemKind)
	}
	from, to, err := ParseDateRange(in.From, in.To)
	if err != nil {
		return f, err
	}
	f.From, f.To = from, to
	return f, nil
}

// ParseDateRange interpreta un rango YYYY-MM-DD; el límite superior incluye el día completo.
func ParseDateRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	from, err := ParseDate(fromStr)
	if err != nil {
		return nil, nil, err
	}
	to, err := ParseDate(toStr)
	if err != nil {
		return nil, nil, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

// ParseDate interpreta YYYY-MM-DD; vacío devuelve nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q (formato YYYY-MM-DD)", domain.ErrInvalidInput, s)
	}
	return &t, nil
}

// ToMovementResponse convierte un movimiento a su DTO.
func ToMovementResponse(m *entity.InventoryMovement) *dto.MovementResponse {
	if m == nil {
		return nil
	}
	lines := make([]dto.MovementLineResponse, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, dto.MovementLineResponse{
			ItemKind:    string(l.ItemKind),
			ItemID:      l.ItemID,
			ItemName:    l.ItemName,
			Quantity:    l.Quantity,
			StockBefore: l.StockBefore,
			StockAfter:  l.StockAfter,
		})
	}
	return &dto.MovementResponse{
		ID:          m.ID,
		Type:        string(m.Kind),
		Date:        m.Date,
		Reason:      m.Reason,
		Reference:   m.Reference,
		SourceType:  string(m.SourceType),
		SourceID:    m.SourceID,
		PerformedBy: m.PerformedBy,
		CreatedAt:   m.CreatedAt,
		Lines:       lines,
	}
}
