// Package memory implementa los repositorios en memoria con transacciones por snapshot.
// Lo usan los tests de casos de uso y de HTTP; no persiste nada.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/domain/repository"
)

type state struct {
	products         map[string]entity.Product
	movements        []entity.StockMovement
	categories       map[string]entity.Category
	customers        map[string]entity.Customer
	accountTxs       []entity.AccountTransaction
	users            map[string]entity.User
	sales            map[string]entity.Sale
	saleItems        []entity.LineItem
	salePayments     map[string][]entity.Tender
	deliveries       map[string]entity.Delivery
	deliveryItems    []entity.LineItem
	deliveryPayments map[string][]entity.Tender
	locations        []entity.DeliveryLocation
	history          []entity.DeliveryStatusChange
	sessions         map[string]entity.CashSession
	cashMovements    []entity.CashMovement
	settings         *entity.CashSettings
}

func newState() state {
	return state{
		products:         map[string]entity.Product{},
		categories:       map[string]entity.Category{},
		customers:        map[string]entity.Customer{},
		users:            map[string]entity.User{},
		sales:            map[string]entity.Sale{},
		salePayments:     map[string][]entity.Tender{},
		deliveries:       map[string]entity.Delivery{},
		deliveryPayments: map[string][]entity.Tender{},
		sessions:         map[string]entity.CashSession{},
	}
}

func (st state) clone() state {
	c := st
	c.products = maps.Clone(st.products)
	c.movements = slices.Clone(st.movements)
	c.categories = maps.Clone(st.categories)
	c.customers = maps.Clone(st.customers)
	c.accountTxs = slices.Clone(st.accountTxs)
	c.users = maps.Clone(st.users)
	c.sales = maps.Clone(st.sales)
	c.saleItems = slices.Clone(st.saleItems)
	c.salePayments = maps.Clone(st.salePayments)
	c.deliveries = maps.Clone(st.deliveries)
	c.deliveryItems = slices.Clone(st.deliveryItems)
	c.deliveryPayments = maps.Clone(st.deliveryPayments)
	c.locations = slices.Clone(st.locations)
	c.history = slices.Clone(st.history)
	c.sessions = maps.Clone(st.sessions)
	c.cashMovements = slices.Clone(st.cashMovements)
	if st.settings != nil {
		s := *st.settings
		c.settings = &s
	}
	return c
}

// Store base de datos en memoria. Las transacciones se serializan con un único mutex.
type Store struct {
	mu       sync.Mutex
	st       state
	failures map[string]error
	commits  int
}

func NewStore() *Store {
	return &Store{st: newState(), failures: map[string]error{}}
}

// FailOn hace que la operación indicada (p. ej. "Movements.Create") devuelva err.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Commits cantidad de transacciones confirmadas.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits
}

// Repositories repositorios fuera de transacción (equivalente al pool).
func (s *Store) Repositories() repository.Repositories {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) repository.Repositories {
	c := &conn{s: s, inTx: inTx}
	return repository.Repositories{
		Products:   &productRepo{c},
		Movements:  &movementRepo{c},
		Categories: &categoryRepo{c},
		Customers:  &customerRepo{c},
		Accounts:   &accountRepo{c},
		Users:      &userRepo{c},
		Sales:      &saleRepo{c},
		Deliveries: &deliveryRepo{c},
		Cash:       &cashRepo{c},
	}
}

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta fn sobre una copia del estado; si fn falla se restaura el snapshot.
type TxRunner struct {
	s *Store
}

func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := r.s.st.clone()
	if err := fn(r.s.repos(true)); err != nil {
		r.s.st = snapshot
		return err
	}
	r.s.commits++
	return nil
}

// conn serializa el acceso cuando se usa fuera de una transacción.
type conn struct {
	s    *Store
	inTx bool
}

func (c *conn) lock() func() {
	if c.inTx {
		return func() {}
	}
	c.s.mu.Lock()
	return c.s.mu.Unlock
}

func (c *conn) fail(op string) error {
	return c.s.failures[op]
}

func (c *conn) state() *state {
	return &c.s.st
}

// pageOf recorta items según la página.
func pageOf[T any](items []T, page repository.Page) []T {
	if page.Limit == 0 {
		return items
	}
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// inDateRange aplica los filtros YYYY-MM-DD; fechas mal formadas se ignoran.
func inDateRange(t time.Time, start, end string) bool {
	if d, err := time.ParseInLocation("2006-01-02", start, time.Local); err == nil && t.Before(d) {
		return false
	}
	if d, err := time.ParseInLocation("2006-01-02", end, time.Local); err == nil && !t.Before(d.AddDate(0, 0, 1)) {
		return false
	}
	return true
}
