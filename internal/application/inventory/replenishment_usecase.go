package inventory

import (
	"context"
	"sort"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ReplenishmentUseCase lista los productos y equipos en alerta de stock con la
// cantidad sugerida para volver a un stock ideal de 1.5 veces el mínimo.
type ReplenishmentUseCase struct {
	productRepo   repository.ProductRepository
	equipmentRepo repository.EquipmentRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository, equipmentRepo repository.EquipmentRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo, equipmentRepo: equipmentRepo}
}

// StockAlerts devuelve los ítems en nivel bajo o agotado; agotados primero.
func (uc *ReplenishmentUseCase) StockAlerts(ctx context.Context) ([]dto.StockAlertDTO, error) {
	products, err := uc.productRepo.ListInAlert(ctx)
	if err != nil {
		return nil, err
	}
	equipment, err := uc.equipmentRepo.List(ctx, repository.EquipmentFilter{})
	if err != nil {
		return nil, err
	}

	alerts := make([]dto.StockAlertDTO, 0, len(products))
	for _, p := range products {
		if !p.Active {
			continue
		}
		alerts = append(alerts, toStockAlert(p.AsStockItem()))
	}
	for _, e := range equipment {
		if e.Status == entity.EquipmentRetired || !e.Level().InAlert() {
			continue
		}
		alerts = append(alerts, toStockAlert(e.AsStockItem()))
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Level != alerts[j].Level {
			return alerts[i].Level == string(entity.StockLevelDepleted)
		}
		return alerts[i].SuggestedOrderQty.GreaterThan(alerts[j].SuggestedOrderQty)
	})
	return alerts, nil
}

func toStockAlert(item *entity.StockItem) dto.StockAlertDTO {
	ideal := item.Minimum.Mul(decimal.NewFromFloat(1.5))
	if item.Kind == entity.ItemKindEquipment {
		ideal = ideal.Ceil()
	}
	suggested := ideal.Sub(item.Quantity)
	if suggested.IsNegative() {
		suggested = decimal.Zero
	}
	return dto.StockAlertDTO{
		ItemKind:          string(item.Kind),
		ItemID:            item.ID,
		Name:              item.Name,
		Unit:              item.Unit,
		CurrentStock:      item.Quantity,
		MinimumStock:      item.Minimum,
		Level:             string(entity.LevelOf(item.Quantity, item.Minimum)),
		IdealStock:        ideal,
		SuggestedOrderQty: suggested,
	}
}
