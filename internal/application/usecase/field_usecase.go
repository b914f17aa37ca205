package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
	"github.com/google/uuid"
)

// FieldUseCase casos de uso para cuarteles.
type FieldUseCase struct {
	repo repository.FieldRepository
}

// NewFieldUseCase construye el caso de uso.
func NewFieldUseCase(repo repository.FieldRepository) *FieldUseCase {
	return &FieldUseCase{repo: repo}
}

// Create registra un cuartel. El número es único (domain.ErrDuplicate).
func (uc *FieldUseCase) Create(ctx context.Context, in dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	if in.Number < 1 || strings.TrimSpace(in.Name) == "" || in.AreaHectares.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	f := &entity.Field{
		ID:             uuid.New().String(),
		Number:         in.Number,
		Name:           strings.TrimSpace(in.Name),
		Location:       in.Location,
		Rows:           in.Rows,
		Variety:        in.Variety,
		PlantType:      in.PlantType,
		PlantingYear:   in.PlantingYear,
		IrrigationType: in.IrrigationType,
		CropStatus:     in.CropStatus,
		AreaHectares:   in.AreaHectares.Round(2),
		Observations:   in.Observations,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return toFieldResponse(f), nil
}

// GetByID obtiene un cuartel por ID.
func (uc *FieldUseCase) GetByID(ctx context.Context, id string) (*dto.FieldResponse, error) {
	f, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	return toFieldResponse(f), nil
}

// Update edita los datos del cuartel; nil si no existe.
func (uc *FieldUseCase) Update(ctx context.Context, id string, in dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	f, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, nil
	}
	if in.Number != nil {
		if *in.Number < 1 {
			return nil, fmt.Errorf("%w: el número de cuartel debe ser mayor a cero", domain.ErrInvalidInput)
		}
		f.Number = *in.Number
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, fmt.Errorf("%w: nombre requerido", domain.ErrInvalidInput)
		}
		f.Name = strings.TrimSpace(*in.Name)
	}
	if in.AreaHectares != nil {
		if in.AreaHectares.IsNegative() {
			return nil, fmt.Errorf("%w: la superficie no puede ser negativa", domain.ErrInvalidInput)
		}
		f.AreaHectares = in.AreaHectares.Round(2)
	}
	if in.Location != nil {
		f.Location = *in.Location
	}
	if in.Rows != nil {
		f.Rows = *in.Rows
	}
	if in.Variety != nil {
		f.Variety = *in.Variety
	}
	if in.PlantType != nil {
		f.PlantType = *in.PlantType
	}
	if in.PlantingYear != nil {
		f.PlantingYear = *in.PlantingYear
	}
	if in.IrrigationType != nil {
		f.IrrigationType = *in.IrrigationType
	}
	if in.CropStatus != nil {
		f.CropStatus = *in.CropStatus
	}
	if in.Observations != nil {
		f.Observations = *in.Observations
	}
	f.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	return toFieldResponse(f), nil
}

// Delete elimina un cuartel sin historial; con aplicaciones o riegos -> domain.ErrConflict.
func (uc *FieldUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// List lista cuarteles ordenados por número, opcionalmente por estado del cultivo.
func (uc *FieldUseCase) List(ctx context.Context, in dto.FieldFilterRequest) ([]dto.FieldResponse, error) {
	in.DefaultPage()
	list, err := uc.repo.List(ctx, repository.FieldFilter{CropStatus: in.CropStatus, Limit: in.Limit, Offset: in.Offset})
	if err != nil {
		return nil, err
	}
	out := make([]dto.FieldResponse, 0, len(list))
	for _, f := range list {
		out = append(out, *toFieldResponse(f))
	}
	return out, nil
}

func toFieldResponse(f *entity.Field) *dto.FieldResponse {
	if f == nil {
		return nil
	}
	return &dto.FieldResponse{
		ID:             f.ID,
		Number:         f.Number,
		Name:           f.Name,
		Location:       f.Location,
		Rows:           f.Rows,
		Variety:        f.Variety,
		PlantType:      f.PlantType,
		PlantingYear:   f.PlantingYear,
		IrrigationType: f.IrrigationType,
		CropStatus:     f.CropStatus,
		AreaHectares:   f.AreaHectares,
		Observations:   f.Observations,
		CreatedAt:      f.CreatedAt,
	}
}
