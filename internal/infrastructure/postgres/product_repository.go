package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, type, hazard_level, stock_actual, stock_minimo, unit, supplier,
	registration_number, active_ingredient, concentration, instructions, precautions, active,
	created_by, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Type, p.HazardLevel, p.StockActual, p.StockMinimo, p.Unit, p.Supplier,
		p.RegistrationNumber, p.ActiveIngredient, p.Concentration, p.Instructions, p.Precautions, p.Active,
		nullString(p.CreatedBy), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate obtiene el producto bloqueando la fila hasta el fin de la transacción.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza campos descriptivos. El stock solo cambia vía movimientos.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name = $2, type = $3, hazard_level = $4, stock_minimo = $5, unit = $6,
			supplier = $7, registration_number = $8, active_ingredient = $9, concentration = $10,
			instructions = $11, precautions = $12, active = $13, updated_at = $14
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Type, p.HazardLevel, p.StockMinimo, p.Unit,
		p.Supplier, p.RegistrationNumber, p.ActiveIngredient, p.Concentration,
		p.Instructions, p.Precautions, p.Active, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija el stock (la fila ya está bloqueada por GetForUpdate).
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, qty decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET stock_actual = $2, updated_at = now() WHERE id = $1`, id, qty)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CompareAndSetStock actualiza solo si el stock sigue siendo expected.
func (r *ProductRepo) CompareAndSetStock(ctx context.Context, id string, expected, next decimal.Decimal) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET stock_actual = $3, updated_at = now() WHERE id = $1 AND stock_actual = $2`,
		id, expected, next,
	)
	if err != nil {
		return false, fmt.Errorf("cas product stock: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// List lista productos filtrados con paginación.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var w whereBuilder
	if f.Type != "" {
		w.add("type = $%d", f.Type)
	}
	if f.HazardLevel != "" {
		w.add("hazard_level = $%d", f.HazardLevel)
	}
	if f.OnlyActive {
		w.add("active = $%d", true)
	}
	switch f.Level {
	case entity.StockLevelDepleted:
		w.conds = append(w.conds, "stock_actual <= 0")
	case entity.StockLevelLow:
		w.conds = append(w.conds, "stock_actual > 0 AND stock_actual < stock_minimo")
	case entity.StockLevelNormal:
		w.conds = append(w.conds, "stock_actual > 0 AND stock_actual >= stock_minimo")
	}
	query := `SELECT ` + productColumns + ` FROM products` + w.sql() + ` ORDER BY name`
	query += w.page(f.Limit, f.Offset)
	return r.list(ctx, query, w.args...)
}

// ListInAlert productos activos en nivel bajo o agotado.
func (r *ProductRepo) ListInAlert(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products
		WHERE active AND (stock_actual <= 0 OR stock_actual < stock_minimo)
		ORDER BY stock_actual, name`)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p         entity.Product
		createdBy *string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.HazardLevel, &p.StockActual, &p.StockMinimo, &p.Unit, &p.Supplier,
		&p.RegistrationNumber, &p.ActiveIngredient, &p.Concentration, &p.Instructions, &p.Precautions, &p.Active,
		&createdBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedBy = derefString(createdBy)
	return &p, nil
}
