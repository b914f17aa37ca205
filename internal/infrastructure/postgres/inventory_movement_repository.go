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

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `m.id, m.kind, m.date, m.reason, m.reference, m.source_type, m.source_id::text,
	m.performed_by::text, m.created_at`

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// Los movimientos son inmutables: no hay UPDATE ni DELETE.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste la cabecera. El índice único (source_type, source_id) respalda la idempotencia.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (id, kind, date, reason, reference, source_type, source_id, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, string(m.Kind), m.Date, m.Reason, nullString(m.Reference),
		nullString(string(m.SourceType)), nullString(m.SourceID), nullString(m.PerformedBy), m.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// AddLine inserta una línea con la foto de stock antes/después.
func (r *InventoryMovementRepo) AddLine(ctx context.Context, l *entity.MovementLine) error {
	query := `
		INSERT INTO inventory_movement_lines (id, movement_id, item_kind, item_id, quantity, stock_before, stock_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.MovementID, string(l.ItemKind), l.ItemID, l.Quantity, l.StockBefore, l.StockAfter,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("create movement line: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento con sus líneas.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	return r.getOne(ctx, `SELECT `+movementColumns+` FROM inventory_movements m WHERE m.id = $1`, id)
}

// GetBySource obtiene el movimiento generado por un flujo, si existe.
func (r *InventoryMovementRepo) GetBySource(ctx context.Context, sourceType entity.SourceType, sourceID string) (*entity.InventoryMovement, error) {
	return r.getOne(ctx,
		`SELECT `+movementColumns+` FROM inventory_movements m WHERE m.source_type = $1 AND m.source_id = $2`,
		string(sourceType), sourceID,
	)
}

func (r *InventoryMovementRepo) getOne(ctx context.Context, query string, args ...any) (*entity.InventoryMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	if err := r.attachLines(ctx, []*entity.InventoryMovement{m}); err != nil {
		return nil, err
	}
	return m, nil
}

// List historial filtrado, más reciente primero. Devuelve también el total sin paginar.
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, int, error) {
	var w whereBuilder
	if f.Kind != "" {
		w.add("m.kind = $%d", string(f.Kind))
	}
	w.addTimeRange("m.date", f.From, f.To)
	if f.ItemKind != "" || f.ItemID != "" {
		sub := "EXISTS (SELECT 1 FROM inventory_movement_lines l WHERE l.movement_id = m.id"
		if f.ItemKind != "" {
			w.args = append(w.args, string(f.ItemKind))
			sub += fmt.Sprintf(" AND l.item_kind = $%d", len(w.args))
		}
		if f.ItemID != "" {
			w.args = append(w.args, f.ItemID)
			sub += fmt.Sprintf(" AND l.item_id::text = $%d", len(w.args))
		}
		w.conds = append(w.conds, sub+")")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM inventory_movements m`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	query := `SELECT ` + movementColumns + ` FROM inventory_movements m` + w.sql() +
		` ORDER BY m.date DESC, m.created_at DESC`
	query += w.page(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if err := r.attachLines(ctx, list); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// attachLines carga las líneas de varios movimientos en una sola consulta, con el nombre del ítem.
func (r *InventoryMovementRepo) attachLines(ctx context.Context, movements []*entity.InventoryMovement) error {
	if len(movements) == 0 {
		return nil
	}
	ids := make([]string, 0, len(movements))
	byID := make(map[string]*entity.InventoryMovement, len(movements))
	for _, m := range movements {
		ids = append(ids, m.ID)
		byID[m.ID] = m
	}
	rows, err := r.q.Query(ctx, `
		SELECT l.id, l.movement_id::text, l.item_kind, l.item_id::text, COALESCE(p.name, e.name, ''),
			l.quantity, l.stock_before, l.stock_after
		FROM inventory_movement_lines l
		LEFT JOIN products p ON l.item_kind = 'product' AND p.id = l.item_id
		LEFT JOIN equipment e ON l.item_kind = 'equipment' AND e.id = l.item_id
		WHERE l.movement_id::text = ANY($1)
		ORDER BY l.item_kind, l.item_id`, ids)
	if err != nil {
		return fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			l    entity.MovementLine
			kind string
		)
		if err := rows.Scan(&l.ID, &l.MovementID, &kind, &l.ItemID, &l.ItemName,
			&l.Quantity, &l.StockBefore, &l.StockAfter); err != nil {
			return fmt.Errorf("scan movement line: %w", err)
		}
		l.ItemKind = entity.ItemKind(kind)
		if m, ok := byID[l.MovementID]; ok {
			m.Lines = append(m.Lines, l)
		}
	}
	return rows.Err()
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var (
		m                                          entity.InventoryMovement
		kind                                       string
		reference, sourceType, sourceID, performed *string
	)
	if err := row.Scan(&m.ID, &kind, &m.Date, &m.Reason, &reference, &sourceType, &sourceID, &performed, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Kind = entity.MovementKind(kind)
	m.Reference = derefString(reference)
	m.SourceType = entity.SourceType(derefString(sourceType))
	m.SourceID = derefString(sourceID)
	m.PerformedBy = derefString(performed)
	return &m, nil
}
