package usecase

import (
	"context"
	"fmt"
	"strings"
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

// ProductUseCase casos de uso CRUD para productos. El stock se maneja vía movimientos.
type ProductUseCase struct {
	repo        repository.ProductRepository
	consumption *inventory.ConsumptionService
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, consumption *inventory.ConsumptionService) *ProductUseCase {
	return &ProductUseCase{repo: repo, consumption: consumption}
}

// Create crea un producto con stock 0; el stock inicial, si viene, se registra
// como movimiento de entrada en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.Name) == "" || !entity.ValidProductType(in.Type) || !entity.ValidHazardLevel(in.HazardLevel) {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialStock.IsNegative() || in.MinimumStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	if err := stock.ValidatePrecision(in.MinimumStock); err != nil {
		return nil, err
	}
	if in.Unit == "" {
		in.Unit = entity.DefaultUnit
	}
	now := time.Now()
	product := &entity.Product{
		ID:                 uuid.New().String(),
		Name:               strings.TrimSpace(in.Name),
		Type:               in.Type,
		HazardLevel:        in.HazardLevel,
		StockActual:        decimal.Zero,
		StockMinimo:        in.MinimumStock,
		Unit:               in.Unit,
		Supplier:           in.Supplier,
		RegistrationNumber: in.RegistrationNumber,
		ActiveIngredient:   in.ActiveIngredient,
		Concentration:      in.Concentration,
		Instructions:       in.Instructions,
		Precautions:        in.Precautions,
		Active:             true,
		CreatedBy:          actorID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	err := uc.consumption.Transact(ctx, func(repos inventory.Repos) error {
		if err := repos.Products.Create(ctx, product); err != nil {
			return err
		}
		if !in.InitialStock.IsPositive() {
			return nil
		}
		res, err := uc.consumption.Apply(ctx, repos, inventory.ConsumptionRequest{
			Kind:    entity.MovementKindIn,
			Lines:   []inventory.Line{{ItemKind: entity.ItemKindProduct, ItemID: product.ID, Quantity: in.InitialStock}},
			ActorID: actorID,
			Date:    now,
			Reason:  "Stock inicial",
		})
		if err != nil {
			return err
		}
		product.StockActual = res.Movement.Lines[0].StockAfter
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return toProductResponse(product), nil
}

// Update actualiza un producto. No permite modificar el stock actual (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Type != nil {
		if !entity.ValidProductType(*in.Type) {
			return nil, domain.ErrInvalidInput
		}
		product.Type = *in.Type
	}
	if in.HazardLevel != nil {
		if !entity.ValidHazardLevel(*in.HazardLevel) {
			return nil, domain.ErrInvalidInput
		}
		product.HazardLevel = *in.HazardLevel
	}
	if in.MinimumStock != nil {
		if in.MinimumStock.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		if err := stock.ValidatePrecision(*in.MinimumStock); err != nil {
			return nil, err
		}
		product.StockMinimo = *in.MinimumStock
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.Supplier != nil {
		product.Supplier = *in.Supplier
	}
	if in.RegistrationNumber != nil {
		product.RegistrationNumber = *in.RegistrationNumber
	}
	if in.ActiveIngredient != nil {
		product.ActiveIngredient = *in.ActiveIngredient
	}
	if in.Concentration != nil {
		product.Concentration = *in.Concentration
	}
	if in.Instructions != nil {
		product.Instructions = *in.Instructions
	}
	if in.Precautions != nil {
		product.Precautions = *in.Precautions
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Deactivate desactiva el producto; nunca se elimina porque los movimientos lo referencian.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	product.Active = false
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista productos filtrados por tipo, peligrosidad y nivel de stock.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductFilterRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	filter := repository.ProductFilter{
		Type:        in.Type,
		HazardLevel: in.HazardLevel,
		Level:       entity.StockLevel(in.Level),
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	switch filter.Level {
	case "", entity.StockLevelNormal, entity.StockLevelLow, entity.StockLevelDepleted:
	default:
		return nil, fmt.Errorf("%w: nivel de stock %q", domain.ErrInvalidInput, in.Level)
	}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Type:               p.Type,
		HazardLevel:        p.HazardLevel,
		StockActual:        p.StockActual,
		StockMinimo:        p.StockMinimo,
		Level:              string(p.Level()),
		Unit:               p.Unit,
		Supplier:           p.Supplier,
		RegistrationNumber: p.RegistrationNumber,
		ActiveIngredient:   p.ActiveIngredient,
		Concentration:      p.Concentration,
		Instructions:       p.Instructions,
		Precautions:        p.Precautions,
		Active:             p.Active,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
