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

var _ repository.FieldRepository = (*FieldRepo)(nil)

const fieldColumns = `id, number, name, location, rows_count, variety, plant_type, planting_year,
	irrigation_type, crop_status, area_hectares, observations, created_at, updated_at`

// FieldRepo cuarteles sobre PostgreSQL.
type FieldRepo struct {
	q Querier
}

// NewFieldRepository construye el adaptador. Pasar pool o tx (Querier).
func NewFieldRepository(q Querier) *FieldRepo {
	return &FieldRepo{q: q}
}

// Create persiste un cuartel; número repetido -> domain.ErrDuplicate.
func (r *FieldRepo) Create(ctx context.Context, f *entity.Field) error {
	query := `
		INSERT INTO fields (` + fieldColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := r.q.Exec(ctx, query,
		f.ID, f.Number, f.Name, f.Location, f.Rows, f.Variety, f.PlantType, f.PlantingYear,
		f.IrrigationType, f.CropStatus, f.AreaHectares, f.Observations, f.CreatedAt, f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert field: %w", err)
	}
	return nil
}

// GetByID obtiene un cuartel por ID.
func (r *FieldRepo) GetByID(ctx context.Context, id string) (*entity.Field, error) {
	f, err := scanField(r.q.QueryRow(ctx, `SELECT `+fieldColumns+` FROM fields WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get field: %w", err)
	}
	return f, nil
}

// GetByIDs devuelve los cuarteles existentes entre ids.
func (r *FieldRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Field, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.list(ctx, `SELECT `+fieldColumns+` FROM fields WHERE id::text = ANY($1) ORDER BY number`, ids)
}

// Update persiste los datos descriptivos del cuartel.
func (r *FieldRepo) Update(ctx context.Context, f *entity.Field) error {
	query := `
		UPDATE fields SET number = $2, name = $3, location = $4, rows_count = $5, variety = $6,
			plant_type = $7, planting_year = $8, irrigation_type = $9, crop_status = $10,
			area_hectares = $11, observations = $12, updated_at = $13
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		f.ID, f.Number, f.Name, f.Location, f.Rows, f.Variety, f.PlantType, f.PlantingYear,
		f.IrrigationType, f.CropStatus, f.AreaHectares, f.Observations, f.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update field: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el cuartel; las FK de aplicaciones y riegos lo impiden si está en uso.
func (r *FieldRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM fields WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: el cuartel tiene aplicaciones o riegos registrados", domain.ErrConflict)
		}
		return fmt.Errorf("delete field: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista cuarteles ordenados por número.
func (r *FieldRepo) List(ctx context.Context, f repository.FieldFilter) ([]*entity.Field, error) {
	var w whereBuilder
	if f.CropStatus != "" {
		w.add("crop_status = $%d", f.CropStatus)
	}
	query := `SELECT ` + fieldColumns + ` FROM fields` + w.sql() + ` ORDER BY number` + w.page(f.Limit, f.Offset)
	return r.list(ctx, query, w.args...)
}

func (r *FieldRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Field, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fields: %w", err)
	}
	defer rows.Close()
	var list []*entity.Field
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

func scanField(row pgx.Row) (*entity.Field, error) {
	var f entity.Field
	err := row.Scan(&f.ID, &f.Number, &f.Name, &f.Location, &f.Rows, &f.Variety, &f.PlantType, &f.PlantingYear,
		&f.IrrigationType, &f.CropStatus, &f.AreaHectares, &f.Observations, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
