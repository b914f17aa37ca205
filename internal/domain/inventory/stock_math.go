package inventory

import (
	"fmt"

	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ApplyMovement calcula el stock posterior de una línea (servicio de dominio).
//
//	IN:     antes + cantidad
//	OUT:    antes - cantidad (error si queda negativo)
//	ADJUST: cantidad (valor absoluto)
func ApplyMovement(before, qty decimal.Decimal, kind entity.MovementKind) (decimal.Decimal, error) {
	if qty.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: cantidad negativa", domain.ErrInvalidInput)
	}
	switch kind {
	case entity.MovementKindIn:
		return before.Add(qty), nil
	case entity.MovementKindOut:
		after := before.Sub(qty)
		if after.IsNegative() {
			return decimal.Zero, domain.ErrInsufficientStock
		}
		return after, nil
	case entity.MovementKindAdjust:
		return qty, nil
	default:
		return decimal.Zero, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, kind)
	}
}

// QuantityDecimals decimales que admite el ledger (columnas NUMERIC(14,2)).
const QuantityDecimals = 2

// ValidatePrecision rechaza cantidades con más de QuantityDecimals decimales
// significativos; la base de datos las redondearía en silencio.
func ValidatePrecision(qty decimal.Decimal) error {
	if !qty.Equal(qty.Truncate(QuantityDecimals)) {
		return fmt.Errorf("%w: la cantidad admite a lo sumo %d decimales", domain.ErrInvalidInput, QuantityDecimals)
	}
	return nil
}

// ValidateQuantity exige cantidad > 0 (ADJUST admite 0), a lo sumo dos decimales
// y enteros para equipos.
func ValidateQuantity(itemKind entity.ItemKind, kind entity.MovementKind, qty decimal.Decimal) error {
	if kind == entity.MovementKindAdjust {
		if qty.IsNegative() {
			return fmt.Errorf("%w: el ajuste no puede ser negativo", domain.ErrInvalidInput)
		}
	} else if !qty.IsPositive() {
		return fmt.Errorf("%w: la cantidad debe ser mayor a cero", domain.ErrInvalidInput)
	}
	if err := ValidatePrecision(qty); err != nil {
		return err
	}
	if itemKind == entity.ItemKindEquipment && !qty.Equal(qty.Truncate(0)) {
		return fmt.Errorf("%w: la cantidad de equipos debe ser entera", domain.ErrInvalidInput)
	}
	return nil
}
