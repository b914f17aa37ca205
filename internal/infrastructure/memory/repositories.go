package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository           = (*ProductRepository)(nil)
	_ repository.EquipmentRepository         = (*EquipmentRepository)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepository)(nil)
	_ repository.FieldRepository             = (*FieldRepository)(nil)
	_ repository.UserRepository              = (*UserRepository)(nil)
	_ repository.ApplicationRepository       = (*ApplicationRepository)(nil)
	_ repository.IrrigationRepository        = (*IrrigationRepository)(nil)
	_ repository.MaintenanceRepository       = (*MaintenanceRepository)(nil)
)

// page aplica limit/offset; limit 0 devuelve todo.
func page[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// Productos

// ProductRepository implementación en memoria de repository.ProductRepository.
type ProductRepository struct{ a access }

func (r *ProductRepository) Create(_ context.Context, p *entity.Product) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	r.a.read(func(st *state) {
		if p, ok := st.products[id]; ok {
			out = &p
		}
	})
	return out, nil
}

// GetForUpdate equivale a GetByID: la transacción ya es exclusiva.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) Update(_ context.Context, p *entity.Product) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		next := *p
		next.StockActual = cur.StockActual
		st.products[p.ID] = next
		return nil
	})
}

func (r *ProductRepository) UpdateStock(_ context.Context, id string, qty decimal.Decimal) error {
	return r.a.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.StockActual = qty
		p.UpdatedAt = time.Now()
		st.products[id] = p
		return nil
	})
}

func (r *ProductRepository) CompareAndSetStock(_ context.Context, id string, expected, next decimal.Decimal) (bool, error) {
	swapped := false
	err := r.a.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrNotFound
		}
		if !p.StockActual.Equal(expected) {
			return nil
		}
		p.StockActual = next
		p.UpdatedAt = time.Now()
		st.products[id] = p
		swapped = true
		return nil
	})
	return swapped, err
}

func (r *ProductRepository) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	r.a.read(func(st *state) {
		for _, p := range st.products {
			p := p
			if f.Type != "" && p.Type != f.Type {
				continue
			}
			if f.HazardLevel != "" && p.HazardLevel != f.HazardLevel {
				continue
			}
			if f.Level != "" && p.Level() != f.Level {
				continue
			}
			if f.OnlyActive && !p.Active {
				continue
			}
			out = append(out, &p)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), nil
}

func (r *ProductRepository) ListInAlert(_ context.Context) ([]*entity.Product, error) {
	var out []*entity.Product
	r.a.read(func(st *state) {
		for _, p := range st.products {
			p := p
			if p.Level().InAlert() {
				out = append(out, &p)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StockActual.LessThan(out[j].StockActual) })
	return out, nil
}

// ---------------------------------------------------------------------------
// Equipos

// EquipmentRepository implementación en memoria de repository.EquipmentRepository.
type EquipmentRepository struct{ a access }

func (r *EquipmentRepository) Create(_ context.Context, e *entity.Equipment) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.equipment[e.ID]; ok {
			return domain.ErrDuplicate
		}
		if e.SerialNumber != nil {
			for _, other := range st.equipment {
				if other.SerialNumber != nil && *other.SerialNumber == *e.SerialNumber {
					return domain.ErrDuplicate
				}
			}
		}
		st.equipment[e.ID] = *e
		return nil
	})
}

func (r *EquipmentRepository) GetByID(_ context.Context, id string) (*entity.Equipment, error) {
	var out *entity.Equipment
	r.a.read(func(st *state) {
		if e, ok := st.equipment[id]; ok {
			out = &e
		}
	})
	return out, nil
}

func (r *EquipmentRepository) GetForUpdate(ctx context.Context, id string) (*entity.Equipment, error) {
	return r.GetByID(ctx, id)
}

func (r *EquipmentRepository) Update(_ context.Context, e *entity.Equipment) error {
	return r.a.write(func(st *state) error {
		cur, ok := st.equipment[e.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if e.SerialNumber != nil {
			for id, other := range st.equipment {
				if id != e.ID && other.SerialNumber != nil && *other.SerialNumber == *e.SerialNumber {
					return domain.ErrDuplicate
				}
			}
		}
		next := *e
		next.StockActual = cur.StockActual
		st.equipment[e.ID] = next
		return nil
	})
}

func (r *EquipmentRepository) UpdateStock(_ context.Context, id string, qty int64, status string) error {
	return r.a.write(func(st *state) error {
		e, ok := st.equipment[id]
		if !ok {
			return domain.ErrNotFound
		}
		e.StockActual = qty
		e.Status = status
		e.UpdatedAt = time.Now()
		st.equipment[id] = e
		return nil
	})
}

func (r *EquipmentRepository) CompareAndSetStock(_ context.Context, id string, expected, next int64, status string) (bool, error) {
	swapped := false
	err := r.a.write(func(st *state) error {
		e, ok := st.equipment[id]
		if !ok {
			return domain.ErrNotFound
		}
		if e.StockActual != expected {
			return nil
		}
		e.StockActual = next
		e.Status = status
		e.UpdatedAt = time.Now()
		st.equipment[id] = e
		swapped = true
		return nil
	})
	return swapped, err
}

func (r *EquipmentRepository) List(_ context.Context, f repository.EquipmentFilter) ([]*entity.Equipment, error) {
	var out []*entity.Equipment
	r.a.read(func(st *state) {
		for _, e := range st.equipment {
			e := e
			if f.Type != "" && e.Type != f.Type {
				continue
			}
			if f.Status != "" && e.Status != f.Status {
				continue
			}
			out = append(out, &e)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), nil
}

// ---------------------------------------------------------------------------
// Movimientos

// MovementRepository implementación en memoria del ledger de movimientos.
type MovementRepository struct{ a access }

func (r *MovementRepository) Create(_ context.Context, m *entity.InventoryMovement) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.movements[m.ID]; ok {
			return domain.ErrDuplicate
		}
		if m.SourceType != "" {
			for _, other := range st.movements {
				if other.SourceType == m.SourceType && other.SourceID == m.SourceID {
					return domain.ErrDuplicate
				}
			}
		}
		header := copyMovement(*m)
		header.Lines = nil
		st.movements[m.ID] = header
		return nil
	})
}

func (r *MovementRepository) AddLine(_ context.Context, l *entity.MovementLine) error {
	return r.a.write(func(st *state) error {
		m, ok := st.movements[l.MovementID]
		if !ok {
			return domain.ErrNotFound
		}
		for _, other := range m.Lines {
			if other.ItemKind == l.ItemKind && other.ItemID == l.ItemID {
				return domain.ErrDuplicate
			}
		}
		m.Lines = append(m.Lines, *l)
		st.movements[l.MovementID] = m
		return nil
	})
}

func (r *MovementRepository) GetByID(_ context.Context, id string) (*entity.InventoryMovement, error) {
	var out *entity.InventoryMovement
	r.a.read(func(st *state) {
		if m, ok := st.movements[id]; ok {
			m = withItemNames(st, copyMovement(m))
			out = &m
		}
	})
	return out, nil
}

func (r *MovementRepository) GetBySource(_ context.Context, sourceType entity.SourceType, sourceID string) (*entity.InventoryMovement, error) {
	var out *entity.InventoryMovement
	r.a.read(func(st *state) {
		for _, m := range st.movements {
			if m.SourceType == sourceType && m.SourceID == sourceID {
				m = withItemNames(st, copyMovement(m))
				out = &m
				return
			}
		}
	})
	return out, nil
}

func (r *MovementRepository) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, int, error) {
	var out []*entity.InventoryMovement
	r.a.read(func(st *state) {
		for _, m := range st.movements {
			if f.Kind != "" && m.Kind != f.Kind {
				continue
			}
			if !inRange(m.Date, f.From, f.To) {
				continue
			}
			if f.ItemID != "" || f.ItemKind != "" {
				match := false
				for _, l := range m.Lines {
					if (f.ItemKind == "" || l.ItemKind == f.ItemKind) && (f.ItemID == "" || l.ItemID == f.ItemID) {
						match = true
						break
					}
				}
				if !match {
					continue
				}
			}
			m = withItemNames(st, copyMovement(m))
			out = append(out, &m)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return page(out, f.Limit, f.Offset), len(out), nil
}

func withItemNames(st *state, m entity.InventoryMovement) entity.InventoryMovement {
	for i, l := range m.Lines {
		switch l.ItemKind {
		case entity.ItemKindProduct:
			m.Lines[i].ItemName = st.products[l.ItemID].Name
		case entity.ItemKindEquipment:
			m.Lines[i].ItemName = st.equipment[l.ItemID].Name
		}
	}
	return m
}

// ---------------------------------------------------------------------------
// Cuarteles

// FieldRepository implementación en memoria de repository.FieldRepository.
type FieldRepository struct{ a access }

func (r *FieldRepository) Create(_ context.Context, f *entity.Field) error {
	return r.a.write(func(st *state) error {
		for _, other := range st.fields {
			if other.ID == f.ID || other.Number == f.Number {
				return domain.ErrDuplicate
			}
		}
		st.fields[f.ID] = *f
		return nil
	})
}

func (r *FieldRepository) GetByID(_ context.Context, id string) (*entity.Field, error) {
	var out *entity.Field
	r.a.read(func(st *state) {
		if f, ok := st.fields[id]; ok {
			out = &f
		}
	})
	return out, nil
}

func (r *FieldRepository) GetByIDs(_ context.Context, ids []string) ([]*entity.Field, error) {
	out := make([]*entity.Field, 0, len(ids))
	r.a.read(func(st *state) {
		for _, id := range ids {
			if f, ok := st.fields[id]; ok {
				out = append(out, &f)
			}
		}
	})
	return out, nil
}

func (r *FieldRepository) Update(_ context.Context, f *entity.Field) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.fields[f.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, other := range st.fields {
			if other.ID != f.ID && other.Number == f.Number {
				return domain.ErrDuplicate
			}
		}
		st.fields[f.ID] = *f
		return nil
	})
}

// Delete replica la FK de la base: un cuartel referenciado no se borra.
func (r *FieldRepository) Delete(_ context.Context, id string) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.fields[id]; !ok {
			return domain.ErrNotFound
		}
		for _, app := range st.applications {
			for _, fid := range app.FieldIDs {
				if fid == id {
					return fmt.Errorf("%w: el cuartel tiene aplicaciones registradas", domain.ErrConflict)
				}
			}
		}
		for _, irr := range st.irrigations {
			if irr.FieldID == id {
				return fmt.Errorf("%w: el cuartel tiene riegos registrados", domain.ErrConflict)
			}
		}
		delete(st.fields, id)
		return nil
	})
}

func (r *FieldRepository) List(_ context.Context, filter repository.FieldFilter) ([]*entity.Field, error) {
	var out []*entity.Field
	r.a.read(func(st *state) {
		for _, f := range st.fields {
			if filter.CropStatus != "" && f.CropStatus != filter.CropStatus {
				continue
			}
			f := f
			out = append(out, &f)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return page(out, filter.Limit, filter.Offset), nil
}

// ---------------------------------------------------------------------------
// Usuarios

// UserRepository implementación en memoria de repository.UserRepository.
type UserRepository struct{ a access }

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	return r.a.write(func(st *state) error {
		for _, other := range st.users {
			if other.ID == u.ID || other.Email == u.Email {
				return domain.ErrDuplicate
			}
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	r.a.read(func(st *state) {
		if u, ok := st.users[id]; ok {
			out = &u
		}
	})
	return out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	r.a.read(func(st *state) {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return
			}
		}
	})
	return out, nil
}

func (r *UserRepository) Update(_ context.Context, u *entity.User) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.users[u.ID]; !ok {
			return domain.ErrNotFound
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepository) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	var out []*entity.User
	r.a.read(func(st *state) {
		for _, u := range st.users {
			u := u
			out = append(out, &u)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}

// ---------------------------------------------------------------------------
// Flujos de trabajo

func matchWorkflow(f repository.WorkflowFilter, status entity.WorkflowStatus, responsible string, at time.Time) bool {
	if f.Status != "" && status != f.Status {
		return false
	}
	if f.ResponsibleID != "" && responsible != f.ResponsibleID {
		return false
	}
	return inRange(at, f.From, f.To)
}

// ApplicationRepository implementación en memoria de repository.ApplicationRepository.
type ApplicationRepository struct{ a access }

func (r *ApplicationRepository) Create(_ context.Context, app *entity.Application) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.applications[app.ID]; ok {
			return domain.ErrDuplicate
		}
		st.applications[app.ID] = copyApplication(*app)
		return nil
	})
}

func (r *ApplicationRepository) GetByID(_ context.Context, id string) (*entity.Application, error) {
	var out *entity.Application
	r.a.read(func(st *state) {
		if app, ok := st.applications[id]; ok {
			app = copyApplication(app)
			for i, p := range app.Products {
				app.Products[i].ProductName = st.products[p.ProductID].Name
			}
			out = &app
		}
	})
	return out, nil
}

func (r *ApplicationRepository) GetForUpdate(ctx context.Context, id string) (*entity.Application, error) {
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) Update(_ context.Context, app *entity.Application) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.applications[app.ID]; !ok {
			return domain.ErrNotFound
		}
		st.applications[app.ID] = copyApplication(*app)
		return nil
	})
}

func (r *ApplicationRepository) List(_ context.Context, f repository.WorkflowFilter) ([]*entity.Application, error) {
	var out []*entity.Application
	r.a.read(func(st *state) {
		for _, app := range st.applications {
			if !matchWorkflow(f, app.Status, app.ApplicatorID, app.ScheduledAt) {
				continue
			}
			app = copyApplication(app)
			out = append(out, &app)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return page(out, f.Limit, f.Offset), nil
}

// IrrigationRepository implementación en memoria de repository.IrrigationRepository.
type IrrigationRepository struct{ a access }

func (r *IrrigationRepository) Create(_ context.Context, irr *entity.Irrigation) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.irrigations[irr.ID]; ok {
			return domain.ErrDuplicate
		}
		st.irrigations[irr.ID] = copyIrrigation(*irr)
		return nil
	})
}

func (r *IrrigationRepository) GetByID(_ context.Context, id string) (*entity.Irrigation, error) {
	var out *entity.Irrigation
	r.a.read(func(st *state) {
		if irr, ok := st.irrigations[id]; ok {
			irr = copyIrrigation(irr)
			for i, f := range irr.Fertilizers {
				irr.Fertilizers[i].ProductName = st.products[f.ProductID].Name
			}
			out = &irr
		}
	})
	return out, nil
}

func (r *IrrigationRepository) GetForUpdate(ctx context.Context, id string) (*entity.Irrigation, error) {
	return r.GetByID(ctx, id)
}

func (r *IrrigationRepository) Update(_ context.Context, irr *entity.Irrigation) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.irrigations[irr.ID]; !ok {
			return domain.ErrNotFound
		}
		st.irrigations[irr.ID] = copyIrrigation(*irr)
		return nil
	})
}

func (r *IrrigationRepository) List(_ context.Context, f repository.WorkflowFilter) ([]*entity.Irrigation, error) {
	var out []*entity.Irrigation
	r.a.read(func(st *state) {
		for _, irr := range st.irrigations {
			if !matchWorkflow(f, irr.Status, irr.ResponsibleID, irr.Date) {
				continue
			}
			irr = copyIrrigation(irr)
			out = append(out, &irr)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return page(out, f.Limit, f.Offset), nil
}

// MaintenanceRepository implementación en memoria de repository.MaintenanceRepository.
type MaintenanceRepository struct{ a access }

func (r *MaintenanceRepository) Create(_ context.Context, m *entity.Maintenance) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.maintenances[m.ID]; ok {
			return domain.ErrDuplicate
		}
		st.maintenances[m.ID] = *m
		return nil
	})
}

func (r *MaintenanceRepository) GetByID(_ context.Context, id string) (*entity.Maintenance, error) {
	var out *entity.Maintenance
	r.a.read(func(st *state) {
		if m, ok := st.maintenances[id]; ok {
			m.EquipmentName = st.equipment[m.EquipmentID].Name
			out = &m
		}
	})
	return out, nil
}

func (r *MaintenanceRepository) GetForUpdate(ctx context.Context, id string) (*entity.Maintenance, error) {
	return r.GetByID(ctx, id)
}

func (r *MaintenanceRepository) Update(_ context.Context, m *entity.Maintenance) error {
	return r.a.write(func(st *state) error {
		if _, ok := st.maintenances[m.ID]; !ok {
			return domain.ErrNotFound
		}
		st.maintenances[m.ID] = *m
		return nil
	})
}

func (r *MaintenanceRepository) List(_ context.Context, f repository.WorkflowFilter) ([]*entity.Maintenance, error) {
	var out []*entity.Maintenance
	r.a.read(func(st *state) {
		for _, m := range st.maintenances {
			if !matchWorkflow(f, m.Status, m.ResponsibleID, m.ScheduledAt) {
				continue
			}
			m.EquipmentName = st.equipment[m.EquipmentID].Name
			m := m
			out = append(out, &m)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return page(out, f.Limit, f.Offset), nil
}
