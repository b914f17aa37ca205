package repository

import (
	"context"

	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
)

// FieldFilter filtros del listado de cuarteles.
type FieldFilter struct {
	CropStatus string
	Limit      int
	Offset     int
}

// FieldRepository puerto de persistencia para cuarteles.
type FieldRepository interface {
	Create(ctx context.Context, field *entity.Field) error
	GetByID(ctx context.Context, id string) (*entity.Field, error)
	// GetByIDs devuelve los cuarteles encontrados; los ids inexistentes se omiten.
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Field, error)
	Update(ctx context.Context, field *entity.Field) error
	// Delete elimina el cuartel. Si una aplicación o un riego lo referencia
	// devuelve domain.ErrConflict.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter FieldFilter) ([]*entity.Field, error)
}
