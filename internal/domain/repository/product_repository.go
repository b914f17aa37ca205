package repository

import (
	"context"

	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductFilter filtros del listado de productos.
type ProductFilter struct {
	Type        string
	HazardLevel string
	Level       entity.StockLevel
	OnlyActive  bool
	Limit       int
	Offset      int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate obtiene el producto con bloqueo de fila (solo dentro de tx).
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	// Update persiste campos descriptivos; nunca toca stock_actual.
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id string, qty decimal.Decimal) error
	// CompareAndSetStock actualiza solo si el stock sigue siendo expected.
	CompareAndSetStock(ctx context.Context, id string, expected, next decimal.Decimal) (bool, error)
	List(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	ListInAlert(ctx context.Context) ([]*entity.Product, error)
}
