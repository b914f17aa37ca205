package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/usecase"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/memory"
)

func TestFieldUpdate_Parcial(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewFieldUseCase(store.Repos().Fields)
	ctx := context.Background()
	f, err := uc.Create(ctx, dto.CreateFieldRequest{Number: 3, Name: "Cuartel 3", Variety: "Carménère", AreaHectares: decimal.RequireFromString("2.5")})
	require.NoError(t, err)

	out, err := uc.Update(ctx, f.ID, dto.UpdateFieldRequest{AreaHectares: ptr(decimal.RequireFromString("3.456"))})
	require.NoError(t, err)
	assert.Equal(t, "Carménère", out.Variety)
	assert.True(t, decimal.RequireFromString("3.46").Equal(out.AreaHectares))

	_, err = uc.Update(ctx, f.ID, dto.UpdateFieldRequest{Number: ptr(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Update(ctx, f.ID, dto.UpdateFieldRequest{AreaHectares: ptr(decimal.NewFromInt(-1))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFieldDelete_ConRiegoEsConflicto(t *testing.T) {
	store := memory.NewStore()
	repos := store.Repos()
	uc := usecase.NewFieldUseCase(repos.Fields)
	ctx := context.Background()
	require.NoError(t, repos.Fields.Create(ctx, &entity.Field{ID: "F1", Number: 1, Name: "Cuartel 1"}))
	require.NoError(t, repos.Irrigations.Create(ctx, &entity.Irrigation{ID: "R1", FieldID: "F1", Status: entity.StatusScheduled}))

	assert.ErrorIs(t, uc.Delete(ctx, "F1"), domain.ErrConflict)
	assert.ErrorIs(t, uc.Delete(ctx, "F9"), domain.ErrNotFound)

	still, err := uc.GetByID(ctx, "F1")
	require.NoError(t, err)
	assert.NotNil(t, still)
}
