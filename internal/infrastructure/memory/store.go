// Package memory implementa los repositorios en memoria con soporte de
// transacciones, para desarrollo local y pruebas.
package memory

import (
	"context"
	"sync"

	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products     map[string]entity.Product
	equipment    map[string]entity.Equipment
	fields       map[string]entity.Field
	users        map[string]entity.User
	movements    map[string]entity.InventoryMovement
	applications map[string]entity.Application
	irrigations  map[string]entity.Irrigation
	maintenances map[string]entity.Maintenance
}

func newState() *state {
	return &state{
		products:     map[string]entity.Product{},
		equipment:    map[string]entity.Equipment{},
		fields:       map[string]entity.Field{},
		users:        map[string]entity.User{},
		movements:    map[string]entity.InventoryMovement{},
		applications: map[string]entity.Application{},
		irrigations:  map[string]entity.Irrigation{},
		maintenances: map[string]entity.Maintenance{},
	}
}

// clone copia profunda del estado; las transacciones trabajan sobre la copia.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.equipment {
		c.equipment[k] = v
	}
	for k, v := range s.fields {
		c.fields[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.movements {
		c.movements[k] = copyMovement(v)
	}
	for k, v := range s.applications {
		c.applications[k] = copyApplication(v)
	}
	for k, v := range s.irrigations {
		c.irrigations[k] = copyIrrigation(v)
	}
	for k, v := range s.maintenances {
		c.maintenances[k] = v
	}
	return c
}

// access abstrae si un repositorio opera dentro de una transacción o en autocommit.
type access interface {
	read(fn func(st *state))
	write(fn func(st *state) error) error
}

// Store es la base en memoria. Las transacciones se serializan con txMu, lo que
// equivale a bloquear todas las filas que tocan; al fallar se descarta la copia.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	cur  *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{cur: newState()}
}

// Run ejecuta fn sobre una copia del estado y la publica solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.cur.clone()
	s.mu.RUnlock()

	if err := fn(reposFor(&txAccess{st: work})); err != nil {
		return err
	}

	s.mu.Lock()
	s.cur = work
	s.mu.Unlock()
	return nil
}

// Repos repositorios en modo autocommit (fuera de transacción).
func (s *Store) Repos() inventory.Repos {
	return reposFor(&directAccess{s: s})
}

// Users repositorio de usuarios en modo autocommit.
func (s *Store) Users() *UserRepository {
	return &UserRepository{a: &directAccess{s: s}}
}

func reposFor(a access) inventory.Repos {
	return inventory.Repos{
		Movements:    &MovementRepository{a: a},
		Products:     &ProductRepository{a: a},
		Equipment:    &EquipmentRepository{a: a},
		Fields:       &FieldRepository{a: a},
		Applications: &ApplicationRepository{a: a},
		Irrigations:  &IrrigationRepository{a: a},
		Maintenances: &MaintenanceRepository{a: a},
	}
}

// txAccess opera sobre la copia privada de una transacción en curso.
type txAccess struct {
	st *state
}

func (t *txAccess) read(fn func(st *state))              { fn(t.st) }
func (t *txAccess) write(fn func(st *state) error) error { return fn(t.st) }

// directAccess cada escritura es una transacción de una sola operación.
type directAccess struct {
	s *Store
}

func (d *directAccess) read(fn func(st *state)) {
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()
	fn(d.s.cur)
}

func (d *directAccess) write(fn func(st *state) error) error {
	d.s.txMu.Lock()
	defer d.s.txMu.Unlock()
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	work := d.s.cur.clone()
	if err := fn(work); err != nil {
		return err
	}
	d.s.cur = work
	return nil
}

func copyMovement(m entity.InventoryMovement) entity.InventoryMovement {
	m.Lines = append([]entity.MovementLine(nil), m.Lines...)
	return m
}

func copyApplication(a entity.Application) entity.Application {
	a.FieldIDs = append([]string(nil), a.FieldIDs...)
	a.Products = append([]entity.ApplicationProduct(nil), a.Products...)
	return a
}

func copyIrrigation(i entity.Irrigation) entity.Irrigation {
	i.Fertilizers = append([]entity.IrrigationFertilizer(nil), i.Fertilizers...)
	return i
}
