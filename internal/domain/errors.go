package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrConcurrentUpdate   = errors.New("el stock fue modificado por otra operación")
	ErrItemInactive       = errors.New("el ítem está inactivo o dado de baja")
)

// InsufficientStockError indica que una línea pide más de lo disponible.
// errors.Is(err, ErrInsufficientStock) es verdadero.
type InsufficientStockError struct {
	ItemKind  string
	ItemID    string
	ItemName  string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s %q: solicitado %s, disponible %s",
		e.ItemKind, e.ItemName, e.Requested.String(), e.Available.String())
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// EmptyConsumptionError se produce al pedir un consumo sin líneas.
type EmptyConsumptionError struct {
	Source   string
	SourceID string
}

func (e *EmptyConsumptionError) Error() string {
	if e.Source == "" {
		return "no hay líneas para registrar en el movimiento"
	}
	return fmt.Sprintf("%s %s no tiene productos para descontar del inventario", e.Source, e.SourceID)
}

func (e *EmptyConsumptionError) Is(target error) bool { return target == ErrInvalidInput }

// InvalidTransitionError indica una transición de estado no permitida.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: transición inválida de %s a %s", e.Entity, e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrConflict }
