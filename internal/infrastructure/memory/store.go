// Package memory almacén en proceso con la misma semántica transaccional que el de PostgreSQL:
// cada transacción trabaja sobre una copia del estado confirmado y solo se publica al hacer commit.
// Las transacciones se serializan, lo que equivale a bloquear todas las filas que tocan.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/domain/entity"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
)

type state struct {
	branches      map[string]*entity.Branch
	branchOrder   []string
	items         map[string]*entity.InventoryItem
	itemOrder     []string
	logs          []*entity.InventoryLogEntry
	sales         map[string]*entity.Sale
	saleItems     []*entity.SaleItem
	payments      []*entity.Payment
	transfers     map[string]*entity.Transfer
	transferOrder []string
	transferItems []*entity.TransferItem
}

func newState() *state {
	return &state{
		branches:  make(map[string]*entity.Branch),
		items:     make(map[string]*entity.InventoryItem),
		sales:     make(map[string]*entity.Sale),
		transfers: make(map[string]*entity.Transfer),
	}
}

// clone copia profunda de las filas; los punteros a string/time de las entidades no se mutan in situ.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.branches {
		b := *v
		c.branches[k] = &b
	}
	c.branchOrder = append([]string(nil), s.branchOrder...)
	for k, v := range s.items {
		i := *v
		c.items[k] = &i
	}
	c.itemOrder = append([]string(nil), s.itemOrder...)
	c.logs = append([]*entity.InventoryLogEntry(nil), s.logs...)
	for k, v := range s.sales {
		sale := *v
		c.sales[k] = &sale
	}
	for _, v := range s.saleItems {
		si := *v
		c.saleItems = append(c.saleItems, &si)
	}
	c.payments = append([]*entity.Payment(nil), s.payments...)
	for k, v := range s.transfers {
		t := *v
		c.transfers[k] = &t
	}
	c.transferOrder = append([]string(nil), s.transferOrder...)
	for _, v := range s.transferItems {
		ti := *v
		c.transferItems = append(c.transferItems, &ti)
	}
	return c
}

// Store estado confirmado más el ejecutor de transacciones.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	cur  *state
}

var _ ledger.TxRunner = (*Store)(nil)

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{cur: newState()}
}

// Run implementa ledger.TxRunner: copia al comenzar, publica en commit y descarta si fn falla.
func (s *Store) Run(ctx context.Context, fn func(ledger.Stores) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.cur.clone()
	s.mu.RUnlock()

	if err := fn(bind(txView{st: work})); err != nil {
		return err
	}
	s.mu.Lock()
	s.cur = work
	s.mu.Unlock()
	return nil
}

// Stores repositorios sobre el estado confirmado (fuera de transacción).
func (s *Store) Stores() ledger.Stores {
	return bind(committedView{s: s})
}

// Branches lector de sucursales sobre el estado confirmado.
func (s *Store) Branches() repository.BranchRepository {
	return &branchRepo{v: committedView{s: s}}
}

// AddBranch carga una sucursal (alta fuera del alcance de la API).
func (s *Store) AddBranch(b *entity.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *b
	if _, ok := s.cur.branches[c.ID]; !ok {
		s.cur.branchOrder = append(s.cur.branchOrder, c.ID)
	}
	s.cur.branches[c.ID] = &c
}

// AddItem carga un artículo sin pasar por el registro de movimientos.
func (s *Store) AddItem(i *entity.InventoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *i
	if _, ok := s.cur.items[c.ID]; !ok {
		s.cur.itemOrder = append(s.cur.itemOrder, c.ID)
	}
	s.cur.items[c.ID] = &c
}

// view da acceso al estado: el de la transacción en curso o el confirmado bajo lock.
type view interface {
	read() (*state, func())
	write() (*state, func())
}

type txView struct{ st *state }

func (v txView) read() (*state, func())  { return v.st, func() {} }
func (v txView) write() (*state, func()) { return v.st, func() {} }

type committedView struct{ s *Store }

func (v committedView) read() (*state, func()) {
	v.s.mu.RLock()
	return v.s.cur, v.s.mu.RUnlock
}

func (v committedView) write() (*state, func()) {
	v.s.mu.Lock()
	return v.s.cur, v.s.mu.Unlock
}

func bind(v view) ledger.Stores {
	return ledger.Stores{
		Items:     &itemRepo{v: v},
		Logs:      &logRepo{v: v},
		Sales:     &saleRepo{v: v},
		Transfers: &transferRepo{v: v},
	}
}
