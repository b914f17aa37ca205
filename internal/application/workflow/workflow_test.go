package workflow_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/application/workflow"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin    = workflow.Actor{ID: "admin-1", Role: entity.RoleAdmin}
	operario = workflow.Actor{ID: "op-1", Role: entity.RoleOperario}
	otro     = workflow.Actor{ID: "op-2", Role: entity.RoleOperario}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store        *memory.Store
	applications *workflow.ApplicationUseCase
	irrigations  *workflow.IrrigationUseCase
	maintenances *workflow.MaintenanceUseCase
	workOrders   *workflow.WorkOrderUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	users := store.Users()
	for _, a := range []workflow.Actor{admin, operario, otro} {
		require.NoError(t, users.Create(ctx, &entity.User{
			ID: a.ID, Email: a.ID + "@finca.cl", Name: a.ID, Role: a.Role, Status: entity.UserStatusActive,
		}))
	}
	repos := store.Repos()
	require.NoError(t, repos.Fields.Create(ctx, &entity.Field{ID: "F1", Number: 1, Name: "Cuartel 1", AreaHectares: dec("1.5")}))
	require.NoError(t, repos.Fields.Create(ctx, &entity.Field{ID: "F2", Number: 2, Name: "Cuartel 2", AreaHectares: dec("0.5")}))

	svc := inventory.NewConsumptionService(store, inventory.ConsumptionConfig{Strategy: inventory.LockRow, MaxRetries: 3}, zerolog.Nop())
	return &fixture{
		store:        store,
		applications: workflow.NewApplicationUseCase(svc, repos.Applications, users),
		irrigations:  workflow.NewIrrigationUseCase(svc, repos.Irrigations, users),
		maintenances: workflow.NewMaintenanceUseCase(svc, repos.Maintenances, users),
		workOrders:   workflow.NewWorkOrderUseCase(repos.Applications, repos.Irrigations, repos.Maintenances, repos.Fields),
	}
}

func (f *fixture) product(t *testing.T, id, stock string) {
	t.Helper()
	require.NoError(t, f.store.Repos().Products.Create(context.Background(), &entity.Product{
		ID: id, Name: "Producto " + id, Type: entity.ProductTypeFungicida, HazardLevel: entity.HazardLow,
		StockActual: dec(stock), Unit: entity.DefaultUnit, Active: true,
	}))
}

func (f *fixture) equipment(t *testing.T, id string, stock int64) {
	t.Helper()
	require.NoError(t, f.store.Repos().Equipment.Create(context.Background(), &entity.Equipment{
		ID: id, Name: "Equipo " + id, Type: entity.EquipmentTypeHerramientaManual,
		Status: entity.EquipmentOperational, StockActual: stock,
	}))
}

func (f *fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	p, err := f.store.Repos().Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockActual
}

func (f *fixture) movements(t *testing.T) int {
	t.Helper()
	_, total, err := f.store.Repos().Movements.List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	return total
}

func (f *fixture) scheduleApplication(t *testing.T, actor workflow.Actor, lines ...dto.ApplicationProductRequest) *dto.ApplicationResponse {
	t.Helper()
	app, err := f.applications.Create(context.Background(), actor, dto.CreateApplicationRequest{
		ApplicatorID: actor.ID,
		ScheduledAt:  time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
		Objective:    "Oídio",
		Method:       "Nebulizadora",
		FieldIDs:     []string{"F1", "F2"},
		Products:     lines,
	})
	require.NoError(t, err)
	return app
}

func line(productID, qty string) dto.ApplicationProductRequest {
	return dto.ApplicationProductRequest{ProductID: productID, Quantity: dec(qty)}
}

// GIVEN P con stock 10 WHEN se finaliza una aplicación de 4 THEN queda 6 y un movimiento OUT 10->6.
func TestApplication_CompletarDescuentaStock(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "10")
	app := f.scheduleApplication(t, operario, line("P", "4"))

	assert.True(t, dec("2").Equal(app.TreatedArea))
	assert.True(t, dec("2").Equal(app.Products[0].DosePerHectare))

	out, err := f.applications.Complete(context.Background(), operario, app.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusCompleted), out.Status)
	assert.False(t, out.Idempotent)
	require.NotNil(t, out.Movement)
	assert.Equal(t, "OUT", out.Movement.Type)
	assert.Equal(t, "APL-"+app.ID, out.Movement.Reference)
	require.Len(t, out.Movement.Lines, 1)
	assert.True(t, dec("4").Equal(out.Movement.Lines[0].Quantity))
	assert.True(t, dec("10").Equal(out.Movement.Lines[0].StockBefore))
	assert.True(t, dec("6").Equal(out.Movement.Lines[0].StockAfter))
	assert.True(t, dec("6").Equal(f.stock(t, "P")))

	stored, err := f.applications.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.MovementID)
	assert.Equal(t, out.Movement.ID, *stored.MovementID)
}

// GIVEN P con stock 3 WHEN se intenta finalizar con 4 THEN error y nada cambia.
func TestApplication_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "3")
	app := f.scheduleApplication(t, operario, line("P", "4"))

	_, err := f.applications.Complete(context.Background(), operario, app.ID)
	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "P", insufficient.ItemID)
	assert.True(t, dec("4").Equal(insufficient.Requested))
	assert.True(t, dec("3").Equal(insufficient.Available))

	assert.True(t, dec("3").Equal(f.stock(t, "P")))
	assert.Equal(t, 0, f.movements(t))
	stored, _ := f.applications.GetByID(context.Background(), app.ID)
	assert.Equal(t, string(entity.StatusScheduled), stored.Status)
}

func TestApplication_CompletarDosVecesEsIdempotente(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "10")
	app := f.scheduleApplication(t, operario, line("P", "4"))

	first, err := f.applications.Complete(context.Background(), operario, app.ID)
	require.NoError(t, err)
	second, err := f.applications.Complete(context.Background(), operario, app.ID)
	require.NoError(t, err)

	assert.True(t, second.Idempotent)
	assert.Equal(t, first.Movement.ID, second.Movement.ID)
	assert.True(t, dec("6").Equal(f.stock(t, "P")))
	assert.Equal(t, 1, f.movements(t))
}

// Dos envíos simultáneos del mismo formulario producen un único movimiento.
func TestApplication_CompletarConcurrente(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "10")
	app := f.scheduleApplication(t, operario, line("P", "4"))

	var wg sync.WaitGroup
	results := make([]*dto.TransitionResponse, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.applications.Complete(context.Background(), operario, app.ID)
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, results[0].Movement.ID, results[1].Movement.ID)
	assert.NotEqual(t, results[0].Idempotent, results[1].Idempotent)
	assert.Equal(t, 1, f.movements(t))
	assert.True(t, dec("6").Equal(f.stock(t, "P")))
}

func TestApplication_CompletarEnCreacionSinStockNoPersiste(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "1")

	_, err := f.applications.Create(context.Background(), operario, dto.CreateApplicationRequest{
		FieldIDs:    []string{"F1"},
		Products:    []dto.ApplicationProductRequest{line("P", "2")},
		CompleteNow: true,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := f.applications.List(context.Background(), dto.WorkflowFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, f.movements(t))
}

func TestApplication_SinProductos(t *testing.T) {
	f := newFixture(t)
	app := f.scheduleApplication(t, operario)

	_, err := f.applications.Complete(context.Background(), operario, app.ID)
	var empty *domain.EmptyConsumptionError
	assert.ErrorAs(t, err, &empty)
}

func TestApplication_Transiciones(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, f *fixture, id string)
		action  func(f *fixture, id string) error
		wantErr bool
	}{
		{
			name: "cancelar programada",
			action: func(f *fixture, id string) error {
				_, err := f.applications.Cancel(context.Background(), operario, id)
				return err
			},
			wantErr: false,
		},
		{
			name: "cancelar finalizada",
			prepare: func(t *testing.T, f *fixture, id string) {
				_, err := f.applications.Complete(context.Background(), operario, id)
				require.NoError(t, err)
			},
			action: func(f *fixture, id string) error {
				_, err := f.applications.Cancel(context.Background(), operario, id)
				return err
			},
			wantErr: true,
		},
		{
			name: "finalizar cancelada",
			prepare: func(t *testing.T, f *fixture, id string) {
				_, err := f.applications.Cancel(context.Background(), operario, id)
				require.NoError(t, err)
			},
			action: func(f *fixture, id string) error {
				_, err := f.applications.Complete(context.Background(), operario, id)
				return err
			},
			wantErr: true,
		},
		{
			name: "cancelar cancelada",
			prepare: func(t *testing.T, f *fixture, id string) {
				_, err := f.applications.Cancel(context.Background(), operario, id)
				require.NoError(t, err)
			},
			action: func(f *fixture, id string) error {
				_, err := f.applications.Cancel(context.Background(), operario, id)
				return err
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.product(t, "P", "10")
			app := f.scheduleApplication(t, operario, line("P", "1"))
			if tt.prepare != nil {
				tt.prepare(t, f, app.ID)
			}
			before := f.stock(t, "P")

			err := tt.action(f, app.ID)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var invalid *domain.InvalidTransitionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, app.ID, invalid.ID)
			assert.True(t, before.Equal(f.stock(t, "P")))
		})
	}
}

func TestApplication_SoloResponsableOAdmin(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "10")
	app := f.scheduleApplication(t, operario, line("P", "1"))

	_, err := f.applications.Complete(context.Background(), otro, app.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.applications.Complete(context.Background(), admin, app.ID)
	assert.NoError(t, err)
}

func TestApplication_ActualizarSoloProgramada(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "10")
	f.product(t, "Q", "10")
	app := f.scheduleApplication(t, operario, line("P", "1"))

	updated, err := f.applications.Update(context.Background(), operario, app.ID, dto.UpdateApplicationRequest{
		FieldIDs: []string{"F1"},
		Products: []dto.ApplicationProductRequest{line("Q", "3")},
	})
	require.NoError(t, err)
	assert.True(t, dec("1.5").Equal(updated.TreatedArea))
	require.Len(t, updated.Products, 1)
	assert.Equal(t, "Q", updated.Products[0].ProductID)
	assert.True(t, dec("2").Equal(updated.Products[0].DosePerHectare))

	_, err = f.applications.Complete(context.Background(), operario, app.ID)
	require.NoError(t, err)
	assert.True(t, dec("7").Equal(f.stock(t, "Q")))

	_, err = f.applications.Update(context.Background(), operario, app.ID, dto.UpdateApplicationRequest{FieldIDs: []string{"F2"}})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApplication_CuartelInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.applications.Create(context.Background(), operario, dto.CreateApplicationRequest{FieldIDs: []string{"F9"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApplication_CantidadConMasDeDosDecimales(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "10")
	_, err := f.applications.Create(context.Background(), operario, dto.CreateApplicationRequest{
		ApplicatorID: operario.ID,
		ScheduledAt:  time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC),
		FieldIDs:     []string{"F1"},
		Products:     []dto.ApplicationProductRequest{line("P", "0.004")},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIrrigation_FertilizanteConMasDeDosDecimales(t *testing.T) {
	f := newFixture(t)
	f.product(t, "N", "25")
	irr, err := f.irrigations.Create(context.Background(), operario, dto.CreateIrrigationRequest{
		FieldID: "F1", StartTime: "08:00", EndTime: "10:00", FlowM3h: dec("10"), IncludesFertilizer: true,
	})
	require.NoError(t, err)

	_, err = f.irrigations.AddFertilizer(context.Background(), operario, irr.ID, dto.AddFertilizerRequest{ProductID: "N", QuantityKg: dec("0.004")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	stored, err := f.irrigations.GetByID(context.Background(), irr.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Fertilizers)
}

func TestIrrigation_FertilizanteSinLineas(t *testing.T) {
	f := newFixture(t)
	irr, err := f.irrigations.Create(context.Background(), operario, dto.CreateIrrigationRequest{
		FieldID: "F1", StartTime: "22:00", EndTime: "02:00", FlowM3h: dec("12.5"), IncludesFertilizer: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 240, irr.DurationMinutes)
	assert.True(t, dec("50").Equal(irr.VolumeM3))

	_, err = f.irrigations.Complete(context.Background(), operario, irr.ID)
	var empty *domain.EmptyConsumptionError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, irr.ID, empty.SourceID)

	stored, _ := f.irrigations.GetByID(context.Background(), irr.ID)
	assert.Equal(t, string(entity.StatusScheduled), stored.Status)
	assert.Equal(t, 0, f.movements(t))
}

func TestIrrigation_ConFertilizanteDescuenta(t *testing.T) {
	f := newFixture(t)
	f.product(t, "N", "25")
	irr, err := f.irrigations.Create(context.Background(), operario, dto.CreateIrrigationRequest{
		FieldID: "F1", StartTime: "08:00", EndTime: "10:00", FlowM3h: dec("10"), IncludesFertilizer: true,
	})
	require.NoError(t, err)

	_, err = f.irrigations.AddFertilizer(context.Background(), operario, irr.ID, dto.AddFertilizerRequest{ProductID: "N", QuantityKg: dec("5")})
	require.NoError(t, err)
	withLines, err := f.irrigations.AddFertilizer(context.Background(), operario, irr.ID, dto.AddFertilizerRequest{ProductID: "N", QuantityKg: dec("2.5")})
	require.NoError(t, err)
	require.Len(t, withLines.Fertilizers, 1)

	out, err := f.irrigations.Complete(context.Background(), operario, irr.ID)
	require.NoError(t, err)
	require.NotNil(t, out.Movement)
	assert.Equal(t, "RIE-"+irr.ID, out.Movement.Reference)
	assert.True(t, dec("17.5").Equal(f.stock(t, "N")))
}

func TestIrrigation_SinFertilizanteNoGeneraMovimiento(t *testing.T) {
	f := newFixture(t)
	irr, err := f.irrigations.Create(context.Background(), operario, dto.CreateIrrigationRequest{
		FieldID: "F1", StartTime: "08:00", EndTime: "09:00", FlowM3h: dec("10"),
	})
	require.NoError(t, err)

	_, err = f.irrigations.AddFertilizer(context.Background(), operario, irr.ID, dto.AddFertilizerRequest{ProductID: "N", QuantityKg: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.irrigations.Complete(context.Background(), operario, irr.ID)
	require.NoError(t, err)
	assert.Nil(t, out.Movement)
	assert.Equal(t, string(entity.StatusCompleted), out.Status)
	assert.Equal(t, 0, f.movements(t))
}

// GIVEN E con 5 unidades WHEN un mantenimiento retira 5 y luego se cancela THEN vuelve a 5 y operativo.
func TestIrrigation_EditarRecalculaVolumen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	irr, err := f.irrigations.Create(ctx, operario, dto.CreateIrrigationRequest{
		FieldID: "F1", StartTime: "08:00", EndTime: "09:00", FlowM3h: dec("10"),
	})
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(irr.VolumeM3))

	field, end, flow := "F2", "10:30", dec("12")
	updated, err := f.irrigations.Update(ctx, operario, irr.ID, dto.UpdateIrrigationRequest{FieldID: &field, EndTime: &end, FlowM3h: &flow})
	require.NoError(t, err)
	assert.Equal(t, "F2", updated.FieldID)
	assert.Equal(t, 150, updated.DurationMinutes)
	assert.True(t, dec("30").Equal(updated.VolumeM3))

	bad := "25:00"
	_, err = f.irrigations.Update(ctx, operario, irr.ID, dto.UpdateIrrigationRequest{StartTime: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	missing := "F9"
	_, err = f.irrigations.Update(ctx, operario, irr.ID, dto.UpdateIrrigationRequest{FieldID: &missing})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.irrigations.Update(ctx, otro, irr.ID, dto.UpdateIrrigationRequest{EndTime: &end})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, _ := f.irrigations.GetByID(ctx, irr.ID)
	assert.Equal(t, "F2", stored.FieldID)
	assert.Equal(t, "08:00", stored.StartTime)
}

// Desmarcar el fertilizante descarta las líneas: al finalizar no hay movimiento.
func TestIrrigation_DesmarcarFertilizanteDescartaLineas(t *testing.T) {
	f := newFixture(t)
	f.product(t, "N", "25")
	ctx := context.Background()
	irr, err := f.irrigations.Create(ctx, operario, dto.CreateIrrigationRequest{
		FieldID: "F1", StartTime: "08:00", EndTime: "10:00", FlowM3h: dec("10"), IncludesFertilizer: true,
	})
	require.NoError(t, err)
	_, err = f.irrigations.AddFertilizer(ctx, operario, irr.ID, dto.AddFertilizerRequest{ProductID: "N", QuantityKg: dec("5")})
	require.NoError(t, err)

	off := false
	updated, err := f.irrigations.Update(ctx, operario, irr.ID, dto.UpdateIrrigationRequest{IncludesFertilizer: &off})
	require.NoError(t, err)
	assert.False(t, updated.IncludesFertilizer)
	assert.Empty(t, updated.Fertilizers)

	_, err = f.irrigations.AddFertilizer(ctx, operario, irr.ID, dto.AddFertilizerRequest{ProductID: "N", QuantityKg: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.irrigations.Complete(ctx, operario, irr.ID)
	require.NoError(t, err)
	assert.Nil(t, out.Movement)
	assert.True(t, dec("25").Equal(f.stock(t, "N")))
	assert.Equal(t, 0, f.movements(t))

	on := true
	_, err = f.irrigations.Update(ctx, operario, irr.ID, dto.UpdateIrrigationRequest{IncludesFertilizer: &on})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Marcar el fertilizante en un riego programado habilita cargar líneas.
func TestIrrigation_MarcarFertilizantePermiteLineas(t *testing.T) {
	f := newFixture(t)
	f.product(t, "N", "25")
	ctx := context.Background()
	irr, err := f.irrigations.Create(ctx, operario, dto.CreateIrrigationRequest{
		FieldID: "F1", StartTime: "08:00", EndTime: "10:00", FlowM3h: dec("10"),
	})
	require.NoError(t, err)

	on := true
	_, err = f.irrigations.Update(ctx, operario, irr.ID, dto.UpdateIrrigationRequest{IncludesFertilizer: &on})
	require.NoError(t, err)
	_, err = f.irrigations.AddFertilizer(ctx, operario, irr.ID, dto.AddFertilizerRequest{ProductID: "N", QuantityKg: dec("3")})
	require.NoError(t, err)

	out, err := f.irrigations.Complete(ctx, operario, irr.ID)
	require.NoError(t, err)
	require.NotNil(t, out.Movement)
	assert.True(t, dec("22").Equal(f.stock(t, "N")))
}

func TestWorkOrders_VistaUnificada(t *testing.T) {
	f := newFixture(t)
	f.product(t, "P", "10")
	f.equipment(t, "E", 3)
	ctx := context.Background()

	app := f.scheduleApplication(t, operario, line("P", "1")) // 2026-10-01
	irr, err := f.irrigations.Create(ctx, otro, dto.CreateIrrigationRequest{
		FieldID: "F2", Date: time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC), StartTime: "08:00", EndTime: "09:00", FlowM3h: dec("5"),
	})
	require.NoError(t, err)
	task, err := f.maintenances.Create(ctx, operario, dto.CreateMaintenanceRequest{
		EquipmentID: "E", Quantity: 1, Kind: entity.MaintenancePreventive,
		ScheduledAt: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = f.irrigations.Complete(ctx, otro, irr.ID)
	require.NoError(t, err)

	all, err := f.workOrders.List(ctx, dto.WorkOrderFilterRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, []string{"RIE-" + irr.ID, "MAN-" + task.ID, "APL-" + app.ID},
		[]string{all.Items[0].Code, all.Items[1].Code, all.Items[2].Code})
	assert.Equal(t, workflow.WorkOrderIrrigation, all.Items[0].Type)
	assert.Equal(t, "Riego Cuartel 2", all.Items[0].Description)
	assert.Equal(t, "Oídio", all.Items[2].Description)
	assert.Equal(t, dto.WorkOrderSummary{Total: 3, Scheduled: 2, Completed: 1}, all.Summary)
	assert.Equal(t, 3, all.Page.Total)

	scheduled, err := f.workOrders.List(ctx, dto.WorkOrderFilterRequest{Status: string(entity.StatusScheduled)})
	require.NoError(t, err)
	assert.Len(t, scheduled.Items, 2)
	assert.Equal(t, 3, scheduled.Summary.Total)

	maint, err := f.workOrders.List(ctx, dto.WorkOrderFilterRequest{Type: "maintenance"})
	require.NoError(t, err)
	require.Len(t, maint.Items, 1)
	assert.Equal(t, task.ID, maint.Items[0].ID)

	mine, err := f.workOrders.List(ctx, dto.WorkOrderFilterRequest{ResponsibleID: operario.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Summary.Total)

	paged, err := f.workOrders.List(ctx, dto.WorkOrderFilterRequest{PageRequest: dto.PageRequest{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, "APL-"+app.ID, paged.Items[0].Code)

	ranged, err := f.workOrders.List(ctx, dto.WorkOrderFilterRequest{From: "2026-10-02", To: "2026-10-02"})
	require.NoError(t, err)
	require.Len(t, ranged.Items, 1)
	assert.Equal(t, "MAN-"+task.ID, ranged.Items[0].Code)

	_, err = f.workOrders.List(ctx, dto.WorkOrderFilterRequest{Type: "COSECHA"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMaintenance_RetiroYDevolucion(t *testing.T) {
	f := newFixture(t)
	f.equipment(t, "E", 5)
	ctx := context.Background()

	task, err := f.maintenances.Create(ctx, operario, dto.CreateMaintenanceRequest{
		EquipmentID: "E", Quantity: 5, Kind: entity.MaintenanceCorrective, Description: "Afilado",
	})
	require.NoError(t, err)
	require.NotNil(t, task.CheckoutMovementID)

	e, _ := f.store.Repos().Equipment.GetByID(ctx, "E")
	assert.Equal(t, int64(0), e.StockActual)
	assert.Equal(t, entity.EquipmentMaintenance, e.Status)

	out, err := f.maintenances.Cancel(ctx, operario, task.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StatusCancelled), out.Status)
	require.NotNil(t, out.Movement)
	assert.Equal(t, "IN", out.Movement.Type)

	e, _ = f.store.Repos().Equipment.GetByID(ctx, "E")
	assert.Equal(t, int64(5), e.StockActual)
	assert.Equal(t, entity.EquipmentOperational, e.Status)
	assert.Equal(t, 2, f.movements(t))

	_, err = f.maintenances.Complete(ctx, operario, task.ID)
	var invalid *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)
}

func TestMaintenance_FinalizarDosVeces(t *testing.T) {
	f := newFixture(t)
	f.equipment(t, "E", 3)
	ctx := context.Background()

	task, err := f.maintenances.Create(ctx, operario, dto.CreateMaintenanceRequest{EquipmentID: "E", Quantity: 2})
	require.NoError(t, err)
	first, err := f.maintenances.Complete(ctx, operario, task.ID)
	require.NoError(t, err)
	second, err := f.maintenances.Complete(ctx, operario, task.ID)
	require.NoError(t, err)

	assert.True(t, second.Idempotent)
	assert.Equal(t, first.Movement.ID, second.Movement.ID)
	e, _ := f.store.Repos().Equipment.GetByID(ctx, "E")
	assert.Equal(t, int64(3), e.StockActual)
}

func TestMaintenance_SinUnidadesSuficientes(t *testing.T) {
	f := newFixture(t)
	f.equipment(t, "E", 1)

	_, err := f.maintenances.Create(context.Background(), operario, dto.CreateMaintenanceRequest{EquipmentID: "E", Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	list, err := f.maintenances.List(context.Background(), dto.WorkflowFilterRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMaintenance_EditarNoTocaStock(t *testing.T) {
	f := newFixture(t)
	f.equipment(t, "E", 2)
	ctx := context.Background()
	task, err := f.maintenances.Create(ctx, operario, dto.CreateMaintenanceRequest{EquipmentID: "E", Quantity: 1})
	require.NoError(t, err)

	desc := "Cambio de cuchillas"
	updated, err := f.maintenances.Update(ctx, admin, task.ID, dto.UpdateMaintenanceRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)

	e, _ := f.store.Repos().Equipment.GetByID(ctx, "E")
	assert.Equal(t, int64(1), e.StockActual)
	assert.Equal(t, 1, f.movements(t))
}
