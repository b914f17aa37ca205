package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProduct(t *testing.T, store *memory.Store, id, stock string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, store.Repos().Products.Create(context.Background(), &entity.Product{
		ID: id, Name: "Producto " + id, Type: entity.ProductTypeFungicida, HazardLevel: entity.HazardMedium,
		StockActual: dec(stock), StockMinimo: dec("1"), Unit: entity.DefaultUnit, Active: true,
		CreatedAt: now, UpdatedAt: now,
	}))
}

func seedEquipment(t *testing.T, store *memory.Store, id string, stock int64) {
	t.Helper()
	require.NoError(t, store.Repos().Equipment.Create(context.Background(), &entity.Equipment{
		ID: id, Name: "Equipo " + id, Type: entity.EquipmentTypeHerramientaManual,
		Status: entity.EquipmentStatusFor(entity.EquipmentOperational, stock), StockActual: stock,
	}))
}

func productStock(t *testing.T, store *memory.Store, id string) decimal.Decimal {
	t.Helper()
	p, err := store.Repos().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.StockActual
}

func movementCount(t *testing.T, store *memory.Store) int {
	t.Helper()
	_, total, err := store.Repos().Movements.List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	return total
}

func newService(store inventory.TxRunner, strategy inventory.LockStrategy) *inventory.ConsumptionService {
	return inventory.NewConsumptionService(store, inventory.ConsumptionConfig{Strategy: strategy, MaxRetries: 3}, zerolog.Nop())
}

func apply(t *testing.T, svc *inventory.ConsumptionService, req inventory.ConsumptionRequest) (*inventory.ConsumptionResult, error) {
	t.Helper()
	var res *inventory.ConsumptionResult
	err := svc.Transact(context.Background(), func(repos inventory.Repos) error {
		var err error
		res, err = svc.Apply(context.Background(), repos, req)
		return err
	})
	return res, err
}

func outRequest(sourceID string, lines ...inventory.Line) inventory.ConsumptionRequest {
	return inventory.ConsumptionRequest{
		Kind:      entity.MovementKindOut,
		Source:    &inventory.Source{Type: entity.SourceApplication, ID: sourceID},
		Lines:     lines,
		ActorID:   "user-1",
		Reason:    "Salida por aplicación fitosanitaria " + sourceID,
		Reference: "APL-" + sourceID,
	}
}

func productLine(id, qty string) inventory.Line {
	return inventory.Line{ItemKind: entity.ItemKindProduct, ItemID: id, Quantity: dec(qty)}
}

func TestApply_SalidaRegistraFotoDeStock(t *testing.T) {
	for _, strategy := range []inventory.LockStrategy{inventory.LockRow, inventory.LockCAS} {
		t.Run(string(strategy), func(t *testing.T) {
			store := memory.NewStore()
			seedProduct(t, store, "P", "10")
			svc := newService(store, strategy)

			res, err := apply(t, svc, outRequest("a1", productLine("P", "4")))
			require.NoError(t, err)
			assert.True(t, res.Created)

			mov := res.Movement
			assert.Equal(t, entity.MovementKindOut, mov.Kind)
			assert.Equal(t, "APL-a1", mov.Reference)
			assert.Equal(t, "user-1", mov.PerformedBy)
			require.Len(t, mov.Lines, 1)
			assert.True(t, dec("4").Equal(mov.Lines[0].Quantity))
			assert.True(t, dec("10").Equal(mov.Lines[0].StockBefore))
			assert.True(t, dec("6").Equal(mov.Lines[0].StockAfter))
			assert.True(t, dec("6").Equal(productStock(t, store, "P")))

			stored, err := store.Repos().Movements.GetBySource(context.Background(), entity.SourceApplication, "a1")
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.Equal(t, mov.ID, stored.ID)
			assert.Len(t, stored.Lines, 1)
		})
	}
}

func TestApply_IdempotenteMismoOrigen(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", "10")
	svc := newService(store, inventory.LockRow)

	first, err := apply(t, svc, outRequest("a1", productLine("P", "4")))
	require.NoError(t, err)

	second, err := apply(t, svc, outRequest("a1", productLine("P", "4")))
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Movement.ID, second.Movement.ID)
	assert.True(t, dec("6").Equal(productStock(t, store, "P")))
	assert.Equal(t, 1, movementCount(t, store))
}

func TestApply_SinLineas(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store, inventory.LockRow)

	_, err := apply(t, svc, outRequest("a1"))
	var empty *domain.EmptyConsumptionError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "a1", empty.SourceID)
	assert.Equal(t, 0, movementCount(t, store))
}

func TestApply_StockInsuficienteNoDejaRastro(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "A", "10")
	seedProduct(t, store, "B", "3")
	svc := newService(store, inventory.LockRow)

	_, err := apply(t, svc, outRequest("a1", productLine("A", "2"), productLine("B", "4")))
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, "B", insufficient.ItemID)
	assert.True(t, dec("4").Equal(insufficient.Requested))
	assert.True(t, dec("3").Equal(insufficient.Available))

	assert.True(t, dec("10").Equal(productStock(t, store, "A")))
	assert.True(t, dec("3").Equal(productStock(t, store, "B")))
	assert.Equal(t, 0, movementCount(t, store))
}

func TestApply_LineasRepetidasSeSuman(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", "10")
	svc := newService(store, inventory.LockRow)

	res, err := apply(t, svc, outRequest("a1", productLine("P", "2"), productLine("P", "3.5")))
	require.NoError(t, err)
	require.Len(t, res.Movement.Lines, 1)
	assert.True(t, dec("5.5").Equal(res.Movement.Lines[0].Quantity))
	assert.True(t, dec("4.5").Equal(productStock(t, store, "P")))
}

func TestApply_EntradaYAjuste(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", "10")
	svc := newService(store, inventory.LockRow)

	res, err := apply(t, svc, inventory.ConsumptionRequest{Kind: entity.MovementKindIn, Lines: []inventory.Line{productLine("P", "5")}, ActorID: "admin"})
	require.NoError(t, err)
	assert.True(t, dec("15").Equal(res.Movement.Lines[0].StockAfter))

	res, err = apply(t, svc, inventory.ConsumptionRequest{Kind: entity.MovementKindAdjust, Lines: []inventory.Line{productLine("P", "7")}, ActorID: "admin"})
	require.NoError(t, err)
	assert.True(t, dec("15").Equal(res.Movement.Lines[0].StockBefore))
	assert.True(t, dec("7").Equal(res.Movement.Lines[0].StockAfter))
	assert.True(t, dec("7").Equal(productStock(t, store, "P")))
	assert.False(t, res.Movement.HasSource())
}

func TestApply_TipoDesconocido(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", "10")
	svc := newService(store, inventory.LockRow)

	_, err := apply(t, svc, inventory.ConsumptionRequest{Kind: "TRANSFER", Lines: []inventory.Line{productLine("P", "1")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_ProductoInexistente(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store, inventory.LockRow)

	_, err := apply(t, svc, outRequest("a1", productLine("nope", "1")))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, movementCount(t, store))
}

func TestApply_ProductoInactivo(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", "10")
	p, _ := store.Repos().Products.GetByID(context.Background(), "P")
	p.Active = false
	require.NoError(t, store.Repos().Products.Update(context.Background(), p))
	svc := newService(store, inventory.LockRow)

	_, err := apply(t, svc, outRequest("a1", productLine("P", "1")))
	assert.ErrorIs(t, err, domain.ErrItemInactive)
}

// Las cantidades se guardan con dos decimales: más precisión se rechaza en lugar de redondearse.
func TestApply_CantidadConMasDeDosDecimales(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", "10")
	svc := newService(store, inventory.LockRow)

	_, err := apply(t, svc, outRequest("a1", productLine("P", "0.005")))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, dec("10").Equal(productStock(t, store, "P")))
	assert.Equal(t, 0, movementCount(t, store))

	res, err := apply(t, svc, outRequest("a2", productLine("P", "0.25")))
	require.NoError(t, err)
	line := res.Movement.Lines[0]
	assert.True(t, line.StockBefore.Sub(line.Quantity).Equal(line.StockAfter))
	assert.True(t, dec("9.75").Equal(productStock(t, store, "P")))
}

func TestApply_EquipoCambiaEstado(t *testing.T) {
	store := memory.NewStore()
	seedEquipment(t, store, "E", 5)
	svc := newService(store, inventory.LockRow)
	line := inventory.Line{ItemKind: entity.ItemKindEquipment, ItemID: "E", Quantity: dec("5")}

	_, err := apply(t, svc, inventory.ConsumptionRequest{
		Kind: entity.MovementKindOut, Source: &inventory.Source{Type: entity.SourceMaintenanceCheckout, ID: "m1"},
		Lines: []inventory.Line{line},
	})
	require.NoError(t, err)
	e, _ := store.Repos().Equipment.GetByID(context.Background(), "E")
	assert.Equal(t, int64(0), e.StockActual)
	assert.Equal(t, entity.EquipmentMaintenance, e.Status)

	_, err = apply(t, svc, inventory.ConsumptionRequest{
		Kind: entity.MovementKindIn, Source: &inventory.Source{Type: entity.SourceMaintenanceReturn, ID: "m1"},
		Lines: []inventory.Line{line},
	})
	require.NoError(t, err)
	e, _ = store.Repos().Equipment.GetByID(context.Background(), "E")
	assert.Equal(t, int64(5), e.StockActual)
	assert.Equal(t, entity.EquipmentOperational, e.Status)
}

func TestApply_EquipoCantidadFraccionaria(t *testing.T) {
	store := memory.NewStore()
	seedEquipment(t, store, "E", 5)
	svc := newService(store, inventory.LockRow)

	_, err := apply(t, svc, inventory.ConsumptionRequest{
		Kind:  entity.MovementKindOut,
		Lines: []inventory.Line{{ItemKind: entity.ItemKindEquipment, ItemID: "E", Quantity: dec("1.5")}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// flakyRunner simula otro escritor que modifica el stock entre la lectura y la
// escritura condicional durante los primeros intentos.
type flakyRunner struct {
	inner    *memory.Store
	failures int
	attempts int
}

type flakyProducts struct {
	repository.ProductRepository
	r *flakyRunner
}

func (f *flakyProducts) CompareAndSetStock(ctx context.Context, id string, expected, next decimal.Decimal) (bool, error) {
	if f.r.failures > 0 {
		f.r.failures--
		return false, nil
	}
	return f.ProductRepository.CompareAndSetStock(ctx, id, expected, next)
}

func (f *flakyRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	f.attempts++
	return f.inner.Run(ctx, func(repos inventory.Repos) error {
		repos.Products = &flakyProducts{ProductRepository: repos.Products, r: f}
		return fn(repos)
	})
}

func TestTransact_CASReintentaTrasConflicto(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", "10")
	runner := &flakyRunner{inner: store, failures: 2}
	svc := newService(runner, inventory.LockCAS)

	res, err := apply(t, svc, outRequest("a1", productLine("P", "4")))
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, 3, runner.attempts)
	assert.True(t, dec("6").Equal(productStock(t, store, "P")))
	assert.Equal(t, 1, movementCount(t, store))
}

func TestTransact_CASAgotaReintentos(t *testing.T) {
	store := memory.NewStore()
	seedProduct(t, store, "P", "10")
	runner := &flakyRunner{inner: store, failures: 100}
	svc := newService(runner, inventory.LockCAS)

	_, err := apply(t, svc, outRequest("a1", productLine("P", "4")))
	assert.True(t, errors.Is(err, domain.ErrConcurrentUpdate))
	assert.Equal(t, 4, runner.attempts)
	assert.True(t, dec("10").Equal(productStock(t, store, "P")))
	assert.Equal(t, 0, movementCount(t, store))
}

// drainingRunner simula otro escritor que consume stock entre la pre-validación
// y la relectura de cada línea: desde la segunda lectura el producto reporta `left`.
type drainingRunner struct {
	inner *memory.Store
	left  decimal.Decimal
	reads int
}

type drainingProducts struct {
	repository.ProductRepository
	r *drainingRunner
}

func (d *drainingProducts) drain(p *entity.Product, err error) (*entity.Product, error) {
	if err != nil || p == nil {
		return p, err
	}
	d.r.reads++
	if d.r.reads < 2 {
		return p, nil
	}
	cp := *p
	cp.StockActual = d.r.left
	return &cp, nil
}

func (d *drainingProducts) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return d.drain(d.ProductRepository.GetByID(ctx, id))
}

func (d *drainingProducts) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return d.drain(d.ProductRepository.GetForUpdate(ctx, id))
}

func (d *drainingRunner) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	return d.inner.Run(ctx, func(repos inventory.Repos) error {
		repos.Products = &drainingProducts{ProductRepository: repos.Products, r: d}
		return fn(repos)
	})
}

func TestApply_RelecturaDetectaStockConsumidoEntreLecturas(t *testing.T) {
	for _, strategy := range []inventory.LockStrategy{inventory.LockRow, inventory.LockCAS} {
		t.Run(string(strategy), func(t *testing.T) {
			store := memory.NewStore()
			seedProduct(t, store, "P", "10")
			runner := &drainingRunner{inner: store, left: dec("2")}
			svc := newService(runner, strategy)

			_, err := apply(t, svc, outRequest("a1", productLine("P", "4")))
			var insufficient *domain.InsufficientStockError
			require.ErrorAs(t, err, &insufficient)
			assert.Equal(t, "P", insufficient.ItemID)
			assert.True(t, dec("4").Equal(insufficient.Requested))
			assert.True(t, dec("2").Equal(insufficient.Available))
			assert.Equal(t, 2, runner.reads)

			assert.True(t, dec("10").Equal(productStock(t, store, "P")))
			assert.Equal(t, 0, movementCount(t, store))
			mov, err := store.Repos().Movements.GetBySource(context.Background(), entity.SourceApplication, "a1")
			require.NoError(t, err)
			assert.Nil(t, mov)
		})
	}
}

func TestParseLockStrategy(t *testing.T) {
	s, err := inventory.ParseLockStrategy("")
	require.NoError(t, err)
	assert.Equal(t, inventory.LockRow, s)

	s, err = inventory.ParseLockStrategy("cas")
	require.NoError(t, err)
	assert.Equal(t, inventory.LockCAS, s)

	_, err = inventory.ParseLockStrategy("optimista")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
