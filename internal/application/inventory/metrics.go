package inventory

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/agrocontrol/agrocontrol-api/internal/application/inventory"

type consumptionMetrics struct {
	committed metric.Int64Counter
	noops     metric.Int64Counter
	rejected  metric.Int64Counter
	retries   metric.Int64Counter
}

// newConsumptionMetrics crea los contadores sobre el MeterProvider global.
// Si el proveedor falla se usan instrumentos noop.
func newConsumptionMetrics(log zerolog.Logger) *consumptionMetrics {
	meter := otel.Meter(instrumentationName)
	fallback := noop.NewMeterProvider().Meter(instrumentationName)

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			log.Warn().Err(err).Str("instrument", name).Msg("no se pudo crear el contador; usando noop")
			c, _ = fallback.Int64Counter(name)
		}
		return c
	}

	return &consumptionMetrics{
		committed: counter("inventory.movements.committed", "Movimientos de inventario registrados"),
		noops:     counter("inventory.movements.noop", "Consumos ignorados por idempotencia"),
		rejected:  counter("inventory.movements.rejected", "Consumos rechazados"),
		retries:   counter("inventory.tx.retries", "Reintentos por conflicto de concurrencia"),
	}
}
