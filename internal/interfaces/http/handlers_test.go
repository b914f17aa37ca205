package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocontrol/agrocontrol-api/internal/application/auth"
	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/application/usecase"
	"github.com/agrocontrol/agrocontrol-api/internal/application/workflow"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/csvexport"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/memory"
	infrapdf "github.com/agrocontrol/agrocontrol-api/internal/infrastructure/pdf"
	apphttp "github.com/agrocontrol/agrocontrol-api/internal/interfaces/http"
)

type apiFixture struct {
	app      *fiber.App
	store    *memory.Store
	admin    string // Bearer token
	operario string
	opID     string
	adminID  string
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	users := store.Users()

	svc := inventory.NewConsumptionService(store, inventory.ConsumptionConfig{Strategy: inventory.LockRow, MaxRetries: 3}, zerolog.Nop())
	authUC := auth.NewAuthUseCase(users, testTokens)

	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:           authUC,
		UserUC:           usecase.NewUserUseCase(users),
		ProductUC:        usecase.NewProductUseCase(repos.Products, svc),
		EquipmentUC:      usecase.NewEquipmentUseCase(repos.Equipment, svc),
		FieldUC:          usecase.NewFieldUseCase(repos.Fields),
		RegisterMovement: inventory.NewRegisterMovementUseCase(svc, repos.Movements),
		Replenishment:    inventory.NewReplenishmentUseCase(repos.Products, repos.Equipment),
		Reports:          inventory.NewReportUseCase(repos.Movements, infrapdf.NewMarotoPDFGenerator("test"), csvexport.NewExporter()),
		Applications:     workflow.NewApplicationUseCase(svc, repos.Applications, users),
		Irrigations:      workflow.NewIrrigationUseCase(svc, repos.Irrigations, users),
		Maintenances:     workflow.NewMaintenanceUseCase(svc, repos.Maintenances, users),
		WorkOrders:       workflow.NewWorkOrderUseCase(repos.Applications, repos.Irrigations, repos.Maintenances, repos.Fields),
		Tokens:           testTokens,
	})

	adm, err := authUC.RegisterUser(ctx, dto.CreateUserRequest{Email: "admin@finca.cl", Password: "admin-secreta", Name: "Admin", Role: entity.RoleAdmin})
	require.NoError(t, err)
	op, err := authUC.RegisterUser(ctx, dto.CreateUserRequest{Email: "op@finca.cl", Password: "op-secreta-1", Name: "Operario", Role: entity.RoleOperario})
	require.NoError(t, err)
	require.NoError(t, repos.Fields.Create(ctx, &entity.Field{ID: "F1", Number: 1, Name: "Cuartel 1"}))

	f := &apiFixture{app: app, store: store, opID: op.ID, adminID: adm.ID}
	f.admin = f.login(t, "admin@finca.cl", "admin-secreta")
	f.operario = f.login(t, "op@finca.cl", "op-secreta-1")
	return f
}

func (f *apiFixture) login(t *testing.T, email, password string) string {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decode(t, resp, &out)
	return "Bearer " + out.Token
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func (f *apiFixture) createProduct(t *testing.T, stock string) dto.ProductResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/products", f.admin, map[string]any{
		"name": "Azufre mojable", "type": "fungicida", "hazard_level": "bajo",
		"initial_stock": stock, "minimum_stock": "2", "unit": "kg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var p dto.ProductResponse
	decode(t, resp, &p)
	return p
}

func (f *apiFixture) scheduleApplication(t *testing.T, productID, qty string) dto.ApplicationResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/api/applications", f.operario, map[string]any{
		"objective": "Oídio", "method": "pulverización", "field_ids": []string{"F1"},
		"products": []map[string]any{{"product_id": productID, "quantity": qty}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var a dto.ApplicationResponse
	decode(t, resp, &a)
	return a
}

func TestAPI_CompleteApplicationDeductsStock(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "10")
	a := f.scheduleApplication(t, p.ID, "4")

	resp := f.do(t, http.MethodPost, "/api/applications/"+a.ID+"/complete", f.operario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tr dto.TransitionResponse
	decode(t, resp, &tr)
	assert.Equal(t, "COMPLETED", tr.Status)
	require.NotNil(t, tr.Movement)
	assert.Equal(t, "OUT", tr.Movement.Type)
	assert.False(t, tr.Idempotent)

	// Segunda llamada: mismo movimiento, sin nuevo descuento.
	resp = f.do(t, http.MethodPost, "/api/applications/"+a.ID+"/complete", f.operario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var again dto.TransitionResponse
	decode(t, resp, &again)
	assert.True(t, again.Idempotent)
	assert.Equal(t, tr.Movement.ID, again.Movement.ID)

	resp = f.do(t, http.MethodGet, "/api/products/"+p.ID, f.operario, nil)
	var got dto.ProductResponse
	decode(t, resp, &got)
	assert.Equal(t, "6", got.StockActual.String())
}

func TestAPI_InsufficientStockReturns409WithDetail(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "1")
	a := f.scheduleApplication(t, p.ID, "3")

	resp := f.do(t, http.MethodPost, "/api/applications/"+a.ID+"/complete", f.operario, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body map[string]any
	decode(t, resp, &body)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, p.ID, body["item_id"])
	assert.Equal(t, "3", body["requested"])
	assert.Equal(t, "1", body["available"])
}

func TestAPI_CancelThenCompleteIsInvalidTransition(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "5")
	a := f.scheduleApplication(t, p.ID, "1")

	resp := f.do(t, http.MethodPost, "/api/applications/"+a.ID+"/cancel", f.operario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/applications/"+a.ID+"/complete", f.operario, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "INVALID_TRANSITION", body.Code)
}

func TestAPI_EmptyApplicationReturns422(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/applications", f.operario, map[string]any{
		"objective": "Sin productos", "field_ids": []string{"F1"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var a dto.ApplicationResponse
	decode(t, resp, &a)

	resp = f.do(t, http.MethodPost, "/api/applications/"+a.ID+"/complete", f.operario, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body dto.ErrorResponse
	decode(t, resp, &body)
	assert.Equal(t, "EMPTY_CONSUMPTION", body.Code)
}

func TestAPI_ManualMovementRequiresAdmin(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "0")
	body := map[string]any{
		"type": "IN", "reason": "Compra", "reference": "FAC-12",
		"lines": []map[string]any{{"item_kind": "product", "item_id": p.ID, "quantity": "20"}},
	}

	resp := f.do(t, http.MethodPost, "/api/inventory/movements", f.operario, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPost, "/api/inventory/movements", f.admin, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var mov dto.MovementResponse
	decode(t, resp, &mov)
	require.Len(t, mov.Lines, 1)
	assert.Equal(t, "20", mov.Lines[0].StockAfter.String())

	resp = f.do(t, http.MethodGet, "/api/inventory/movements/"+mov.ID, f.operario, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	body["type"] = "OUT"
	resp = f.do(t, http.MethodPost, "/api/inventory/movements", f.admin, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_ExportsAndHistory(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "8")

	resp := f.do(t, http.MethodGet, "/api/inventory/movements?item_id="+p.ID, f.operario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.MovementListResponse
	decode(t, resp, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "IN", list.Items[0].Type)

	resp = f.do(t, http.MethodGet, "/api/inventory/movements/export.csv", f.operario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/inventory/movements/export.pdf", f.operario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/inventory/movements?from=ayer", f.operario, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_MissingResourceReturns404(t *testing.T) {
	f := newAPI(t)
	for _, path := range []string{"/api/products/nope", "/api/applications/nope", "/api/inventory/movements/nope"} {
		resp := f.do(t, http.MethodGet, path, f.operario, nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		resp.Body.Close()
	}
	resp := f.do(t, http.MethodPost, "/api/maintenances/nope/complete", f.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_MaintenanceCheckoutAndReturn(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/equipment", f.admin, map[string]any{
		"name": "Motosierra", "type": "herramienta_manual", "initial_stock": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var eq dto.EquipmentResponse
	decode(t, resp, &eq)

	resp = f.do(t, http.MethodPost, "/api/maintenances", f.operario, map[string]any{
		"equipment_id": eq.ID, "quantity": 2, "kind": "PREVENTIVA", "description": "Afilado",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var m dto.MaintenanceResponse
	decode(t, resp, &m)

	resp = f.do(t, http.MethodGet, "/api/equipment/"+eq.ID, f.operario, nil)
	var during dto.EquipmentResponse
	decode(t, resp, &during)
	assert.Equal(t, int64(0), during.StockActual)
	assert.Equal(t, "mantenimiento", during.Status)

	resp = f.do(t, http.MethodPost, "/api/maintenances/"+m.ID+"/cancel", f.operario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/equipment/"+eq.ID, f.operario, nil)
	var after dto.EquipmentResponse
	decode(t, resp, &after)
	assert.Equal(t, int64(2), after.StockActual)
	assert.Equal(t, "operativo", after.Status)
}

func TestAPI_FieldEditAndDelete(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPost, "/api/fields", f.admin, map[string]any{"number": 2, "name": "Cuartel 2", "crop_status": "EN_PRODUCCION"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created dto.FieldResponse
	decode(t, resp, &created)

	resp = f.do(t, http.MethodPut, "/api/fields/"+created.ID, f.operario, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPut, "/api/fields/"+created.ID, f.admin, map[string]any{"name": "Cuartel Norte", "crop_status": "EN_DESCANSO"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated dto.FieldResponse
	decode(t, resp, &updated)
	assert.Equal(t, "Cuartel Norte", updated.Name)
	assert.Equal(t, 2, updated.Number)

	resp = f.do(t, http.MethodPut, "/api/fields/"+created.ID, f.admin, map[string]any{"number": 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/fields?crop_status=EN_DESCANSO", f.operario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var resting []dto.FieldResponse
	decode(t, resp, &resting)
	require.Len(t, resting, 1)
	assert.Equal(t, created.ID, resting[0].ID)

	// F1 queda referenciado por una aplicación.
	p := f.createProduct(t, "10")
	f.scheduleApplication(t, p.ID, "1")
	resp = f.do(t, http.MethodDelete, "/api/fields/F1", f.admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodDelete, "/api/fields/"+created.ID, f.admin, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/fields/"+created.ID, f.admin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_UserEditAndDeactivate(t *testing.T) {
	f := newAPI(t)

	resp := f.do(t, http.MethodPut, "/api/users/"+f.opID, f.admin, map[string]any{"name": "Operaria Jefa", "role": "encargado"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var u dto.UserResponse
	decode(t, resp, &u)
	assert.Equal(t, "Operaria Jefa", u.Name)
	assert.Equal(t, entity.RoleEncargado, u.Role)

	resp = f.do(t, http.MethodPut, "/api/users/"+f.opID, f.admin, map[string]any{"email": "admin@finca.cl"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodDelete, "/api/users/"+f.adminID, f.admin, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodDelete, "/api/users/"+f.opID, f.operario, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodDelete, "/api/users/"+f.opID, f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &u)
	assert.Equal(t, entity.UserStatusInactive, u.Status)

	resp = f.do(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "op@finca.cl", Password: "op-secreta-1"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPut, "/api/users/nope", f.admin, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_IrrigationEdit(t *testing.T) {
	f := newAPI(t)
	resp := f.do(t, http.MethodPost, "/api/irrigations", f.operario, map[string]any{
		"field_id": "F1", "start_time": "06:00", "end_time": "07:00", "flow_m3h": "8",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var irr dto.IrrigationResponse
	decode(t, resp, &irr)

	resp = f.do(t, http.MethodPut, "/api/irrigations/"+irr.ID, f.operario, map[string]any{"end_time": "08:30"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &irr)
	assert.Equal(t, 150, irr.DurationMinutes)
	assert.Equal(t, "20", irr.VolumeM3.String())

	resp = f.do(t, http.MethodPost, "/api/irrigations/"+irr.ID+"/cancel", f.operario, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodPut, "/api/irrigations/"+irr.ID, f.operario, map[string]any{"end_time": "09:00"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_WorkOrdersAdminOnly(t *testing.T) {
	f := newAPI(t)
	p := f.createProduct(t, "10")
	a := f.scheduleApplication(t, p.ID, "1")

	resp := f.do(t, http.MethodGet, "/api/work-orders", f.operario, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/work-orders?type=APPLICATION&status=SCHEDULED", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.WorkOrderListResponse
	decode(t, resp, &out)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "APL-"+a.ID, out.Items[0].Code)
	assert.Equal(t, 1, out.Summary.Scheduled)

	resp = f.do(t, http.MethodGet, "/api/work-orders?from=ayer", f.admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
