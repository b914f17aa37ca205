package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// LockStrategy define cómo se protege stock_actual frente a escritores concurrentes.
type LockStrategy string

const (
	// LockRow bloquea la fila del ítem (SELECT ... FOR UPDATE) en ambas lecturas.
	LockRow LockStrategy = "row"
	// LockCAS lee sin bloqueo y actualiza condicionado al valor leído.
	LockCAS LockStrategy = "cas"
)

// ParseLockStrategy interpreta el valor de configuración; vacío equivale a LockRow.
func ParseLockStrategy(s string) (LockStrategy, error) {
	switch LockStrategy(s) {
	case "", LockRow:
		return LockRow, nil
	case LockCAS:
		return LockCAS, nil
	}
	return "", fmt.Errorf("%w: estrategia de bloqueo %q", domain.ErrInvalidInput, s)
}

// Source vincula un movimiento al flujo que lo produjo.
type Source struct {
	Type entity.SourceType
	ID   string
}

// Line una línea (ítem, cantidad) de una solicitud de consumo.
type Line struct {
	ItemKind entity.ItemKind
	ItemID   string
	Quantity decimal.Decimal
}

// ConsumptionRequest solicitud uniforme al protocolo de consumo.
// Source es nil para movimientos manuales del administrador.
type ConsumptionRequest struct {
	Kind      entity.MovementKind
	Source    *Source
	Lines     []Line
	ActorID   string
	Date      time.Time
	Reason    string
	Reference string
}

// ConsumptionResult movimiento resultante; Created es false cuando el origen ya
// tenía un movimiento y la llamada fue un no-op.
type ConsumptionResult struct {
	Movement *entity.InventoryMovement
	Created  bool
}

// ConsumptionConfig parámetros del protocolo.
type ConsumptionConfig struct {
	Strategy   LockStrategy
	MaxRetries int
}

// ConsumptionService es el único punto de entrada que modifica stock_actual.
// Valida, registra la cabecera y las líneas con su foto antes/después y
// actualiza el ledger, todo dentro de la transacción del llamador.
type ConsumptionService struct {
	tx         TxRunner
	strategy   LockStrategy
	maxRetries int
	log        zerolog.Logger
	tracer     trace.Tracer
	metrics    *consumptionMetrics
	now        func() time.Time
}

// NewConsumptionService construye el servicio.
func NewConsumptionService(tx TxRunner, cfg ConsumptionConfig, log zerolog.Logger) *ConsumptionService {
	if cfg.Strategy == "" {
		cfg.Strategy = LockRow
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &ConsumptionService{
		tx:         tx,
		strategy:   cfg.Strategy,
		maxRetries: cfg.MaxRetries,
		log:        log,
		tracer:     otel.Tracer(instrumentationName),
		metrics:    newConsumptionMetrics(log),
		now:        time.Now,
	}
}

// Strategy estrategia de bloqueo en uso.
func (s *ConsumptionService) Strategy() LockStrategy { return s.strategy }

// Transact ejecuta fn en una transacción y la repite completa cuando otro
// escritor ganó la carrera (domain.ErrConcurrentUpdate), hasta MaxRetries veces.
// fn debe poder re-ejecutarse desde cero.
func (s *ConsumptionService) Transact(ctx context.Context, fn func(repos Repos) error) error {
	var err error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err = s.tx.Run(ctx, fn)
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			return err
		}
		s.metrics.retries.Add(ctx, 1)
		s.log.Warn().Int("attempt", attempt+1).Msg("conflicto de concurrencia sobre el stock; reintentando")
	}
	return err
}

// Apply ejecuta el protocolo de consumo dentro de la transacción de repos:
//  1. si el origen ya tiene movimiento lo devuelve sin cambios
//  2. rechaza solicitudes sin líneas
//  3. pre-valida disponibilidad con lectura fresca del stock
//  4. crea la cabecera
//  5. por línea: relee, revalida, inserta la línea y persiste el nuevo stock
//
// Cualquier error debe provocar el Rollback de la transacción completa.
func (s *ConsumptionService) Apply(ctx context.Context, repos Repos, req ConsumptionRequest) (*ConsumptionResult, error) {
	attrs := []attribute.KeyValue{
		attribute.String("movement.kind", string(req.Kind)),
		attribute.String("inventory.lock_strategy", string(s.strategy)),
		attribute.Int("movement.lines", len(req.Lines)),
	}
	if req.Source != nil {
		attrs = append(attrs,
			attribute.String("movement.source_type", string(req.Source.Type)),
			attribute.String("movement.source_id", req.Source.ID),
		)
	}
	ctx, span := s.tracer.Start(ctx, "inventory.Apply", trace.WithAttributes(attrs...))
	defer span.End()

	res, err := s.apply(ctx, repos, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			s.metrics.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("movement.kind", string(req.Kind))))
		}
		return nil, err
	}
	span.SetAttributes(
		attribute.String("movement.id", res.Movement.ID),
		attribute.Bool("movement.created", res.Created),
	)
	return res, nil
}

func (s *ConsumptionService) apply(ctx context.Context, repos Repos, req ConsumptionRequest) (*ConsumptionResult, error) {
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, req.Kind)
	}

	// 1. Idempotencia: un origen produce a lo sumo un movimiento.
	if req.Source != nil {
		existing, err := repos.Movements.GetBySource(ctx, req.Source.Type, req.Source.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			s.metrics.noops.Add(ctx, 1)
			s.log.Info().
				Str("source_type", string(req.Source.Type)).
				Str("source_id", req.Source.ID).
				Str("movement_id", existing.ID).
				Msg("el origen ya tiene movimiento registrado; no se descuenta de nuevo")
			return &ConsumptionResult{Movement: existing, Created: false}, nil
		}
	}

	// 2. Sin líneas no hay movimiento.
	if len(req.Lines) == 0 {
		e := &domain.EmptyConsumptionError{}
		if req.Source != nil {
			e.Source, e.SourceID = string(req.Source.Type), req.Source.ID
		}
		return nil, e
	}
	lines, err := normalizeLines(req.Kind, req.Lines)
	if err != nil {
		return nil, err
	}

	// 3. Pre-validación con el stock actual, no con datos cacheados del flujo.
	for _, l := range lines {
		item, err := s.read(ctx, repos, l.ItemKind, l.ItemID)
		if err != nil {
			return nil, err
		}
		if err := checkAvailable(item, l, req.Kind); err != nil {
			return nil, err
		}
	}

	// 4. Cabecera.
	now := s.now()
	date := req.Date
	if date.IsZero() {
		date = now
	}
	mov := &entity.InventoryMovement{
		ID:          uuid.New().String(),
		Kind:        req.Kind,
		Date:        date,
		Reason:      req.Reason,
		Reference:   req.Reference,
		PerformedBy: req.ActorID,
		CreatedAt:   now,
	}
	if req.Source != nil {
		mov.SourceType, mov.SourceID = req.Source.Type, req.Source.ID
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// Otro escritor registró el mismo origen; al reintentar se verá su movimiento.
			return nil, domain.ErrConcurrentUpdate
		}
		return nil, err
	}

	// 5. Líneas: relectura, revalidación y actualización del ledger.
	for _, l := range lines {
		item, err := s.read(ctx, repos, l.ItemKind, l.ItemID)
		if err != nil {
			return nil, err
		}
		if err := checkAvailable(item, l, req.Kind); err != nil {
			return nil, err
		}
		after, err := inventory.ApplyMovement(item.Quantity, l.Quantity, req.Kind)
		if err != nil {
			return nil, err
		}
		if err := s.write(ctx, repos, item, after); err != nil {
			return nil, err
		}
		line := entity.MovementLine{
			ID:          uuid.New().String(),
			MovementID:  mov.ID,
			ItemKind:    item.Kind,
			ItemID:      item.ID,
			ItemName:    item.Name,
			Quantity:    l.Quantity,
			StockBefore: item.Quantity,
			StockAfter:  after,
		}
		if err := repos.Movements.AddLine(ctx, &line); err != nil {
			return nil, err
		}
		mov.Lines = append(mov.Lines, line)
	}

	s.metrics.committed.Add(ctx, 1, metric.WithAttributes(attribute.String("movement.kind", string(req.Kind))))
	s.log.Info().
		Str("movement_id", mov.ID).
		Str("kind", string(mov.Kind)).
		Str("source_type", string(mov.SourceType)).
		Str("source_id", mov.SourceID).
		Int("lines", len(mov.Lines)).
		Msg("movimiento de inventario registrado")
	return &ConsumptionResult{Movement: mov, Created: true}, nil
}

// normalizeLines valida cantidades, suma ítems repetidos y ordena por (tipo, id)
// para que los bloqueos se adquieran siempre en el mismo orden.
func normalizeLines(kind entity.MovementKind, in []Line) ([]Line, error) {
	type key struct {
		kind entity.ItemKind
		id   string
	}
	merged := make(map[key]decimal.Decimal, len(in))
	for _, l := range in {
		if !l.ItemKind.Valid() || l.ItemID == "" {
			return nil, fmt.Errorf("%w: ítem inválido", domain.ErrInvalidInput)
		}
		if err := inventory.ValidateQuantity(l.ItemKind, kind, l.Quantity); err != nil {
			return nil, err
		}
		k := key{l.ItemKind, l.ItemID}
		if prev, ok := merged[k]; ok {
			if kind == entity.MovementKindAdjust {
				return nil, fmt.Errorf("%w: ajuste repetido para el ítem %s", domain.ErrInvalidInput, l.ItemID)
			}
			merged[k] = prev.Add(l.Quantity)
			continue
		}
		merged[k] = l.Quantity
	}

	out := make([]Line, 0, len(merged))
	for k, qty := range merged {
		out = append(out, Line{ItemKind: k.kind, ItemID: k.id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemKind != out[j].ItemKind {
			return out[i].ItemKind < out[j].ItemKind
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out, nil
}

func checkAvailable(item *entity.StockItem, l Line, kind entity.MovementKind) error {
	if kind != entity.MovementKindOut {
		return nil
	}
	if !item.Active {
		return fmt.Errorf("%w: %s %q", domain.ErrItemInactive, item.Kind, item.Name)
	}
	if l.Quantity.GreaterThan(item.Quantity) {
		return &domain.InsufficientStockError{
			ItemKind:  string(item.Kind),
			ItemID:    item.ID,
			ItemName:  item.Name,
			Requested: l.Quantity,
			Available: item.Quantity,
		}
	}
	return nil
}

// read obtiene el stock actual del ítem; con LockRow bloquea la fila.
func (s *ConsumptionService) read(ctx context.Context, repos Repos, kind entity.ItemKind, id string) (*entity.StockItem, error) {
	lock := s.strategy == LockRow
	switch kind {
	case entity.ItemKindProduct:
		get := repos.Products.GetByID
		if lock {
			get = repos.Products.GetForUpdate
		}
		p, err := get(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, id)
		}
		return p.AsStockItem(), nil
	case entity.ItemKindEquipment:
		get := repos.Equipment.GetByID
		if lock {
			get = repos.Equipment.GetForUpdate
		}
		e, err := get(ctx, id)
		if err != nil {
			return nil, err
		}
		if e == nil {
			return nil, fmt.Errorf("%w: equipo %s", domain.ErrNotFound, id)
		}
		return e.AsStockItem(), nil
	}
	return nil, fmt.Errorf("%w: tipo de ítem %q", domain.ErrInvalidInput, kind)
}

// write persiste el nuevo stock. Con LockCAS la escritura falla con
// domain.ErrConcurrentUpdate si el stock cambió desde la lectura.
func (s *ConsumptionService) write(ctx context.Context, repos Repos, item *entity.StockItem, after decimal.Decimal) error {
	switch item.Kind {
	case entity.ItemKindProduct:
		if s.strategy == LockCAS {
			ok, err := repos.Products.CompareAndSetStock(ctx, item.ID, item.Quantity, after)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrConcurrentUpdate
			}
			return nil
		}
		return repos.Products.UpdateStock(ctx, item.ID, after)
	case entity.ItemKindEquipment:
		next := after.IntPart()
		status := entity.EquipmentStatusFor(item.Status, next)
		if s.strategy == LockCAS {
			ok, err := repos.Equipment.CompareAndSetStock(ctx, item.ID, item.Quantity.IntPart(), next, status)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrConcurrentUpdate
			}
			return nil
		}
		return repos.Equipment.UpdateStock(ctx, item.ID, next, status)
	}
	return fmt.Errorf("%w: tipo de ítem %q", domain.ErrInvalidInput, item.Kind)
}
