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

var _ repository.EquipmentRepository = (*EquipmentRepo)(nil)

const equipmentColumns = `id, name, type, model, serial_number, purchase_date, status, notes,
	stock_actual, stock_minimo, created_at, updated_at`

// EquipmentRepo implementación del puerto EquipmentRepository sobre PostgreSQL.
type EquipmentRepo struct {
	q Querier
}

// NewEquipmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEquipmentRepository(q Querier) *EquipmentRepo {
	return &EquipmentRepo{q: q}
}

// Create persiste un equipo. Número de serie duplicado -> domain.ErrDuplicate.
func (r *EquipmentRepo) Create(ctx context.Context, e *entity.Equipment) error {
	query := `
		INSERT INTO equipment (` + equipmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Name, e.Type, e.Model, e.SerialNumber, e.PurchaseDate, e.Status, e.Notes,
		e.StockActual, e.StockMinimo, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert equipment: %w", err)
	}
	return nil
}

// GetByID obtiene un equipo por ID.
func (r *EquipmentRepo) GetByID(ctx context.Context, id string) (*entity.Equipment, error) {
	return r.get(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id)
}

// GetForUpdate obtiene el equipo con bloqueo de fila.
func (r *EquipmentRepo) GetForUpdate(ctx context.Context, id string) (*entity.Equipment, error) {
	return r.get(ctx, `SELECT `+equipmentColumns+` FROM equipment WHERE id = $1 FOR UPDATE`, id)
}

func (r *EquipmentRepo) get(ctx context.Context, query, id string) (*entity.Equipment, error) {
	e, err := scanEquipment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	return e, nil
}

// Update persiste campos descriptivos y estado; nunca toca stock_actual.
func (r *EquipmentRepo) Update(ctx context.Context, e *entity.Equipment) error {
	query := `
		UPDATE equipment SET name = $2, type = $3, model = $4, serial_number = $5, purchase_date = $6,
			status = $7, notes = $8, stock_minimo = $9, updated_at = $10
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		e.ID, e.Name, e.Type, e.Model, e.SerialNumber, e.PurchaseDate, e.Status, e.Notes, e.StockMinimo, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update equipment: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija unidades y estado (fila bloqueada previamente).
func (r *EquipmentRepo) UpdateStock(ctx context.Context, id string, qty int64, status string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE equipment SET stock_actual = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, qty, status,
	)
	if err != nil {
		return fmt.Errorf("update equipment stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CompareAndSetStock actualiza solo si las unidades siguen siendo expected.
func (r *EquipmentRepo) CompareAndSetStock(ctx context.Context, id string, expected, next int64, status string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE equipment SET stock_actual = $3, status = $4, updated_at = now() WHERE id = $1 AND stock_actual = $2`,
		id, expected, next, status,
	)
	if err != nil {
		return false, fmt.Errorf("cas equipment stock: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// List lista equipos filtrados por tipo y estado.
func (r *EquipmentRepo) List(ctx context.Context, f repository.EquipmentFilter) ([]*entity.Equipment, error) {
	var w whereBuilder
	if f.Type != "" {
		w.add("type = $%d", f.Type)
	}
	if f.Status != "" {
		w.add("status = $%d", f.Status)
	}
	query := `SELECT ` + equipmentColumns + ` FROM equipment` + w.sql() + ` ORDER BY name`
	query += w.page(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list equipment: %w", err)
	}
	defer rows.Close()
	var list []*entity.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func scanEquipment(row pgx.Row) (*entity.Equipment, error) {
	var e entity.Equipment
	err := row.Scan(&e.ID, &e.Name, &e.Type, &e.Model, &e.SerialNumber, &e.PurchaseDate, &e.Status, &e.Notes,
		&e.StockActual, &e.StockMinimo, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
