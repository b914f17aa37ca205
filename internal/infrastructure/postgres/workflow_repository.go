package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
)

var (
	_ repository.ApplicationRepository = (*ApplicationRepo)(nil)
	_ repository.IrrigationRepository  = (*IrrigationRepo)(nil)
	_ repository.MaintenanceRepository = (*MaintenanceRepo)(nil)
)

// workflowWhere filtros comunes; prefix califica las columnas cuando hay JOIN.
func workflowWhere(f repository.WorkflowFilter, prefix, responsible, date string) *whereBuilder {
	w := &whereBuilder{}
	if f.Status != "" {
		w.add(prefix+"status = $%d", string(f.Status))
	}
	if f.ResponsibleID != "" {
		w.add(prefix+responsible+"::text = $%d", f.ResponsibleID)
	}
	w.addTimeRange(prefix+date, f.From, f.To)
	return w
}

// ---------------------------------------------------------------------------
// Aplicaciones

const applicationColumns = `id, applicator_id::text, scheduled_at, objective, method, equipment_id::text, observations,
	status, treated_area, movement_id::text, created_by::text, created_at, updated_at`

// ApplicationRepo aplicaciones fitosanitarias con sus cuarteles y productos.
type ApplicationRepo struct {
	q Querier
}

// NewApplicationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewApplicationRepository(q Querier) *ApplicationRepo {
	return &ApplicationRepo{q: q}
}

// Create persiste cabecera, cuarteles y productos.
func (r *ApplicationRepo) Create(ctx context.Context, a *entity.Application) error {
	query := `
		INSERT INTO applications (id, applicator_id, scheduled_at, objective, method, equipment_id, observations,
			status, treated_area, movement_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.ApplicatorID, a.ScheduledAt, a.Objective, a.Method, a.EquipmentID, a.Observations,
		string(a.Status), a.TreatedArea, a.MovementID, nullString(a.CreatedBy), a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return r.writeChildren(ctx, a)
}

// GetByID obtiene una aplicación con sus líneas.
func (r *ApplicationRepo) GetByID(ctx context.Context, id string) (*entity.Application, error) {
	return r.get(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la aplicación.
func (r *ApplicationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Application, error) {
	return r.get(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id)
}

func (r *ApplicationRepo) get(ctx context.Context, query, id string) (*entity.Application, error) {
	a, err := scanApplication(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	if err := r.loadChildren(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Update persiste cabecera y reemplaza cuarteles y productos.
func (r *ApplicationRepo) Update(ctx context.Context, a *entity.Application) error {
	query := `
		UPDATE applications SET applicator_id = $2, scheduled_at = $3, objective = $4, method = $5,
			equipment_id = $6, observations = $7, status = $8, treated_area = $9, movement_id = $10, updated_at = $11
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		a.ID, a.ApplicatorID, a.ScheduledAt, a.Objective, a.Method,
		a.EquipmentID, a.Observations, string(a.Status), a.TreatedArea, a.MovementID, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM application_fields WHERE application_id = $1`, a.ID); err != nil {
		return fmt.Errorf("delete application fields: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM application_products WHERE application_id = $1`, a.ID); err != nil {
		return fmt.Errorf("delete application products: %w", err)
	}
	return r.writeChildren(ctx, a)
}

func (r *ApplicationRepo) writeChildren(ctx context.Context, a *entity.Application) error {
	for _, fieldID := range a.FieldIDs {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO application_fields (application_id, field_id) VALUES ($1, $2)`, a.ID, fieldID); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: cuartel %s", domain.ErrInvalidInput, fieldID)
			}
			return fmt.Errorf("insert application field: %w", err)
		}
	}
	for _, p := range a.Products {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO application_products (application_id, product_id, quantity, dose_per_hectare)
			VALUES ($1, $2, $3, $4)`, a.ID, p.ProductID, p.Quantity, p.DosePerHectare); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: producto %s", domain.ErrInvalidInput, p.ProductID)
			}
			return fmt.Errorf("insert application product: %w", err)
		}
	}
	return nil
}

func (r *ApplicationRepo) loadChildren(ctx context.Context, a *entity.Application) error {
	rows, err := r.q.Query(ctx,
		`SELECT field_id::text FROM application_fields WHERE application_id = $1 ORDER BY field_id`, a.ID)
	if err != nil {
		return fmt.Errorf("list application fields: %w", err)
	}
	a.FieldIDs, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan application field: %w", err)
	}

	rows, err = r.q.Query(ctx, `
		SELECT ap.product_id::text, p.name, ap.quantity, ap.dose_per_hectare
		FROM application_products ap JOIN products p ON p.id = ap.product_id
		WHERE ap.application_id = $1 ORDER BY p.name`, a.ID)
	if err != nil {
		return fmt.Errorf("list application products: %w", err)
	}
	defer rows.Close()
	a.Products = nil
	for rows.Next() {
		var p entity.ApplicationProduct
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Quantity, &p.DosePerHectare); err != nil {
			return fmt.Errorf("scan application product: %w", err)
		}
		a.Products = append(a.Products, p)
	}
	return rows.Err()
}

// List lista aplicaciones filtradas, más recientes primero.
func (r *ApplicationRepo) List(ctx context.Context, f repository.WorkflowFilter) ([]*entity.Application, error) {
	w := workflowWhere(f, "", "applicator_id", "scheduled_at")
	query := `SELECT ` + applicationColumns + ` FROM applications` + w.sql() + ` ORDER BY scheduled_at DESC`
	query += w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	var list []*entity.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan application: %w", err)
		}
		list = append(list, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Las líneas se cargan después de cerrar el cursor: una tx no admite consultas anidadas.
	for _, a := range list {
		if err := r.loadChildren(ctx, a); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func scanApplication(row pgx.Row) (*entity.Application, error) {
	var (
		a         entity.Application
		status    string
		createdBy *string
	)
	err := row.Scan(&a.ID, &a.ApplicatorID, &a.ScheduledAt, &a.Objective, &a.Method, &a.EquipmentID, &a.Observations,
		&status, &a.TreatedArea, &a.MovementID, &createdBy, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.Status = entity.WorkflowStatus(status)
	a.CreatedBy = derefString(createdBy)
	return &a, nil
}

// ---------------------------------------------------------------------------
// Riegos

const irrigationColumns = `id, field_id::text, date, start_time, end_time, flow_m3h, duration_minutes, volume_m3,
	includes_fertilizer, responsible_id::text, observations, status, movement_id::text, created_by::text,
	created_at, updated_at`

// IrrigationRepo riegos con sus líneas de fertilizante.
type IrrigationRepo struct {
	q Querier
}

// NewIrrigationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewIrrigationRepository(q Querier) *IrrigationRepo {
	return &IrrigationRepo{q: q}
}

// Create persiste el riego y sus fertilizantes.
func (r *IrrigationRepo) Create(ctx context.Context, i *entity.Irrigation) error {
	query := `
		INSERT INTO irrigations (id, field_id, date, start_time, end_time, flow_m3h, duration_minutes, volume_m3,
			includes_fertilizer, responsible_id, observations, status, movement_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		i.ID, i.FieldID, i.Date, i.StartTime, i.EndTime, i.FlowM3h, i.DurationMinutes, i.VolumeM3,
		i.IncludesFertilizer, i.ResponsibleID, i.Observations, string(i.Status), i.MovementID,
		nullString(i.CreatedBy), i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cuartel %s", domain.ErrInvalidInput, i.FieldID)
		}
		return fmt.Errorf("insert irrigation: %w", err)
	}
	return r.writeFertilizers(ctx, i)
}

// GetByID obtiene un riego con sus fertilizantes.
func (r *IrrigationRepo) GetByID(ctx context.Context, id string) (*entity.Irrigation, error) {
	return r.get(ctx, `SELECT `+irrigationColumns+` FROM irrigations WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del riego.
func (r *IrrigationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Irrigation, error) {
	return r.get(ctx, `SELECT `+irrigationColumns+` FROM irrigations WHERE id = $1 FOR UPDATE`, id)
}

func (r *IrrigationRepo) get(ctx context.Context, query, id string) (*entity.Irrigation, error) {
	i, err := scanIrrigation(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get irrigation: %w", err)
	}
	if err := r.loadFertilizers(ctx, i); err != nil {
		return nil, err
	}
	return i, nil
}

// Update persiste cabecera y reemplaza los fertilizantes.
func (r *IrrigationRepo) Update(ctx context.Context, i *entity.Irrigation) error {
	query := `
		UPDATE irrigations SET date = $2, start_time = $3, end_time = $4, flow_m3h = $5, duration_minutes = $6,
			volume_m3 = $7, includes_fertilizer = $8, responsible_id = $9, observations = $10, status = $11,
			movement_id = $12, updated_at = $13, field_id = $14
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		i.ID, i.Date, i.StartTime, i.EndTime, i.FlowM3h, i.DurationMinutes,
		i.VolumeM3, i.IncludesFertilizer, i.ResponsibleID, i.Observations, string(i.Status),
		i.MovementID, i.UpdatedAt, i.FieldID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cuartel %s", domain.ErrInvalidInput, i.FieldID)
		}
		return fmt.Errorf("update irrigation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM irrigation_fertilizers WHERE irrigation_id = $1`, i.ID); err != nil {
		return fmt.Errorf("delete irrigation fertilizers: %w", err)
	}
	return r.writeFertilizers(ctx, i)
}

func (r *IrrigationRepo) writeFertilizers(ctx context.Context, i *entity.Irrigation) error {
	for _, f := range i.Fertilizers {
		if _, err := r.q.Exec(ctx,
			`INSERT INTO irrigation_fertilizers (irrigation_id, product_id, quantity_kg) VALUES ($1, $2, $3)`,
			i.ID, f.ProductID, f.QuantityKg); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: producto %s", domain.ErrInvalidInput, f.ProductID)
			}
			return fmt.Errorf("insert irrigation fertilizer: %w", err)
		}
	}
	return nil
}

func (r *IrrigationRepo) loadFertilizers(ctx context.Context, i *entity.Irrigation) error {
	rows, err := r.q.Query(ctx, `
		SELECT f.product_id::text, p.name, f.quantity_kg
		FROM irrigation_fertilizers f JOIN products p ON p.id = f.product_id
		WHERE f.irrigation_id = $1 ORDER BY p.name`, i.ID)
	if err != nil {
		return fmt.Errorf("list irrigation fertilizers: %w", err)
	}
	defer rows.Close()
	i.Fertilizers = nil
	for rows.Next() {
		var f entity.IrrigationFertilizer
		if err := rows.Scan(&f.ProductID, &f.ProductName, &f.QuantityKg); err != nil {
			return fmt.Errorf("scan irrigation fertilizer: %w", err)
		}
		i.Fertilizers = append(i.Fertilizers, f)
	}
	return rows.Err()
}

// List lista riegos filtrados, más recientes primero.
func (r *IrrigationRepo) List(ctx context.Context, f repository.WorkflowFilter) ([]*entity.Irrigation, error) {
	w := workflowWhere(f, "", "responsible_id", "date")
	query := `SELECT ` + irrigationColumns + ` FROM irrigations` + w.sql() + ` ORDER BY date DESC, start_time DESC`
	query += w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list irrigations: %w", err)
	}
	var list []*entity.Irrigation
	for rows.Next() {
		i, err := scanIrrigation(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan irrigation: %w", err)
		}
		list = append(list, i)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, i := range list {
		if err := r.loadFertilizers(ctx, i); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func scanIrrigation(row pgx.Row) (*entity.Irrigation, error) {
	var (
		i         entity.Irrigation
		status    string
		createdBy *string
	)
	err := row.Scan(&i.ID, &i.FieldID, &i.Date, &i.StartTime, &i.EndTime, &i.FlowM3h, &i.DurationMinutes, &i.VolumeM3,
		&i.IncludesFertilizer, &i.ResponsibleID, &i.Observations, &status, &i.MovementID, &createdBy,
		&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.Status = entity.WorkflowStatus(status)
	i.CreatedBy = derefString(createdBy)
	return &i, nil
}

// ---------------------------------------------------------------------------
// Mantenimientos

const maintenanceColumns = `m.id, m.equipment_id::text, e.name, m.quantity, m.kind, m.description,
	m.responsible_id::text, m.scheduled_at, m.status, m.checkout_movement_id::text, m.return_movement_id::text,
	m.created_by::text, m.created_at, m.updated_at`

// MaintenanceRepo mantenimientos de equipos.
type MaintenanceRepo struct {
	q Querier
}

// NewMaintenanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMaintenanceRepository(q Querier) *MaintenanceRepo {
	return &MaintenanceRepo{q: q}
}

// Create persiste la tarea; el movimiento de salida ya debe existir.
func (r *MaintenanceRepo) Create(ctx context.Context, m *entity.Maintenance) error {
	query := `
		INSERT INTO maintenances (id, equipment_id, quantity, kind, description, responsible_id, scheduled_at,
			status, checkout_movement_id, return_movement_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.EquipmentID, m.Quantity, m.Kind, m.Description, m.ResponsibleID, m.ScheduledAt,
		string(m.Status), m.CheckoutMovementID, m.ReturnMovementID, nullString(m.CreatedBy), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: equipo %s", domain.ErrInvalidInput, m.EquipmentID)
		}
		return fmt.Errorf("insert maintenance: %w", err)
	}
	return nil
}

// GetByID obtiene un mantenimiento con el nombre del equipo.
func (r *MaintenanceRepo) GetByID(ctx context.Context, id string) (*entity.Maintenance, error) {
	return r.get(ctx, `SELECT `+maintenanceColumns+`
		FROM maintenances m JOIN equipment e ON e.id = m.equipment_id WHERE m.id = $1`, id)
}

// GetForUpdate bloquea solo la fila del mantenimiento; el equipo lo bloquea el protocolo.
func (r *MaintenanceRepo) GetForUpdate(ctx context.Context, id string) (*entity.Maintenance, error) {
	return r.get(ctx, `SELECT `+maintenanceColumns+`
		FROM maintenances m JOIN equipment e ON e.id = m.equipment_id WHERE m.id = $1 FOR UPDATE OF m`, id)
}

func (r *MaintenanceRepo) get(ctx context.Context, query, id string) (*entity.Maintenance, error) {
	m, err := scanMaintenance(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get maintenance: %w", err)
	}
	return m, nil
}

// Update persiste campos editables, estado y movimiento de devolución.
func (r *MaintenanceRepo) Update(ctx context.Context, m *entity.Maintenance) error {
	query := `
		UPDATE maintenances SET kind = $2, description = $3, responsible_id = $4, scheduled_at = $5,
			status = $6, return_movement_id = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		m.ID, m.Kind, m.Description, m.ResponsibleID, m.ScheduledAt, string(m.Status), m.ReturnMovementID, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update maintenance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista mantenimientos filtrados, más recientes primero.
func (r *MaintenanceRepo) List(ctx context.Context, f repository.WorkflowFilter) ([]*entity.Maintenance, error) {
	w := workflowWhere(f, "m.", "responsible_id", "scheduled_at")
	query := `SELECT ` + maintenanceColumns + `
		FROM maintenances m JOIN equipment e ON e.id = m.equipment_id` + w.sql() + ` ORDER BY m.scheduled_at DESC`
	query += w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list maintenances: %w", err)
	}
	defer rows.Close()
	var list []*entity.Maintenance
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan maintenance: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMaintenance(row pgx.Row) (*entity.Maintenance, error) {
	var (
		m         entity.Maintenance
		status    string
		createdBy *string
	)
	err := row.Scan(&m.ID, &m.EquipmentID, &m.EquipmentName, &m.Quantity, &m.Kind, &m.Description,
		&m.ResponsibleID, &m.ScheduledAt, &status, &m.CheckoutMovementID, &m.ReturnMovementID,
		&createdBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Status = entity.WorkflowStatus(status)
	m.CreatedBy = derefString(createdBy)
	return &m, nil
}
