package inventory_test

import (
	"testing"

	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestApplyMovement(t *testing.T) {
	tests := []struct {
		name    string
		before  string
		qty     string
		kind    entity.MovementKind
		want    string
		wantErr error
	}{
		{"entrada suma", "10", "2.5", entity.MovementKindIn, "12.5", nil},
		{"salida resta", "10", "4", entity.MovementKindOut, "6", nil},
		{"salida exacta deja cero", "3.5", "3.5", entity.MovementKindOut, "0", nil},
		{"salida mayor al stock", "3", "3.01", entity.MovementKindOut, "", domain.ErrInsufficientStock},
		{"ajuste fija valor absoluto", "10", "7", entity.MovementKindAdjust, "7", nil},
		{"ajuste a cero", "10", "0", entity.MovementKindAdjust, "0", nil},
		{"tipo desconocido", "10", "1", entity.MovementKind("TRANSFER"), "", domain.ErrInvalidInput},
		{"cantidad negativa", "10", "-1", entity.MovementKindIn, "", domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := inventory.ApplyMovement(d(tt.before), d(tt.qty), tt.kind)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestValidateQuantity(t *testing.T) {
	assert.NoError(t, inventory.ValidateQuantity(entity.ItemKindProduct, entity.MovementKindOut, d("0.25")))
	assert.NoError(t, inventory.ValidateQuantity(entity.ItemKindProduct, entity.MovementKindAdjust, d("0")))
	assert.NoError(t, inventory.ValidateQuantity(entity.ItemKindEquipment, entity.MovementKindIn, d("2")))

	assert.ErrorIs(t, inventory.ValidateQuantity(entity.ItemKindProduct, entity.MovementKindOut, d("0")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateQuantity(entity.ItemKindProduct, entity.MovementKindIn, d("-1")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateQuantity(entity.ItemKindEquipment, entity.MovementKindOut, d("1.5")), domain.ErrInvalidInput)
}

func TestValidatePrecision(t *testing.T) {
	assert.NoError(t, inventory.ValidatePrecision(d("12.5")))
	assert.NoError(t, inventory.ValidatePrecision(d("0.01")))
	assert.NoError(t, inventory.ValidatePrecision(d("3.100")))

	assert.ErrorIs(t, inventory.ValidatePrecision(d("0.005")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidatePrecision(d("1.234")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateQuantity(entity.ItemKindProduct, entity.MovementKindOut, d("0.004")), domain.ErrInvalidInput)
	assert.ErrorIs(t, inventory.ValidateQuantity(entity.ItemKindProduct, entity.MovementKindAdjust, d("7.125")), domain.ErrInvalidInput)
}
