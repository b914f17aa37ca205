package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimeOfDayLayout formato de hora de inicio y fin de un riego.
const TimeOfDayLayout = "15:04"

// Irrigation evento de riego sobre un cuartel, opcionalmente con fertilizante.
type Irrigation struct {
	ID                 string
	FieldID            string
	Date               time.Time
	StartTime          string
	EndTime            string
	FlowM3h            decimal.Decimal
	DurationMinutes    int
	VolumeM3           decimal.Decimal
	IncludesFertilizer bool
	ResponsibleID      string
	Observations       string
	Status             WorkflowStatus
	Fertilizers        []IrrigationFertilizer
	MovementID         *string
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IrrigationFertilizer fertilizante aplicado en el riego (kg).
type IrrigationFertilizer struct {
	ProductID   string
	ProductName string // solo lectura
	QuantityKg  decimal.Decimal
}

// DurationBetween minutos entre dos horas HH:MM; si fin < inicio cruza la medianoche.
func DurationBetween(start, end string) (int, error) {
	s, err := time.Parse(TimeOfDayLayout, start)
	if err != nil {
		return 0, fmt.Errorf("hora de inicio inválida %q: %w", start, err)
	}
	e, err := time.Parse(TimeOfDayLayout, end)
	if err != nil {
		return 0, fmt.Errorf("hora de fin inválida %q: %w", end, err)
	}
	d := e.Sub(s)
	if d < 0 {
		d += 24 * time.Hour
	}
	return int(d.Minutes()), nil
}

// ComputeVolume recalcula duración y volumen total (caudal * horas).
func (i *Irrigation) ComputeVolume() error {
	minutes, err := DurationBetween(i.StartTime, i.EndTime)
	if err != nil {
		return err
	}
	i.DurationMinutes = minutes
	hours := decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
	i.VolumeM3 = i.FlowM3h.Mul(hours).Round(2)
	return nil
}
