// Package memory implementación en memoria de los puertos de persistencia.
// Se usa con STORE_DRIVER=memory (demo local) y en los tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

type saleRow struct {
	ID        int64
	SellerID  int64
	Total     decimal.Decimal
	CreatedAt time.Time
}

type state struct {
	products map[int64]entity.Product
	users    map[int64]entity.User
	sales    map[int64]saleRow
	items    map[int64][]entity.SaleItem // por sale_id

	nextProductID int64
	nextUserID    int64
	nextSaleID    int64
	nextItemID    int64
}

func newState() *state {
	return &state{
		products: make(map[int64]entity.Product),
		users:    make(map[int64]entity.User),
		sales:    make(map[int64]saleRow),
		items:    make(map[int64][]entity.SaleItem),
	}
}

func (st *state) clone() *state {
	c := *st
	c.products = make(map[int64]entity.Product, len(st.products))
	for k, v := range st.products {
		c.products[k] = v
	}
	c.users = make(map[int64]entity.User, len(st.users))
	for k, v := range st.users {
		c.users[k] = v
	}
	c.sales = make(map[int64]saleRow, len(st.sales))
	for k, v := range st.sales {
		c.sales[k] = v
	}
	c.items = make(map[int64][]entity.SaleItem, len(st.items))
	for k, v := range st.items {
		c.items[k] = append([]entity.SaleItem(nil), v...)
	}
	return &c
}

// guard toma el candado del Store (o nada, dentro de una transacción que ya lo tiene).
type guard func(write bool) (unlock func())

func noLock(bool) func() { return func() {} }

// Store contenedor con RWMutex. Los repositorios comparten el mismo estado.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

// New almacén vacío.
func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

// NewSeeded almacén con productos de ejemplo para la demo local.
func NewSeeded() *Store {
	s := New()
	now := s.now()
	for _, p := range []entity.Product{
		{Code: "P001", Name: "Arroz Diana 500g", Description: "Arroz blanco", Price: decimal.RequireFromString("2800"), Quantity: 120, Category: "Granos"},
		{Code: "P002", Name: "Aceite Gourmet 1L", Description: "Aceite vegetal", Price: decimal.RequireFromString("12500"), Quantity: 40, Category: "Despensa"},
		{Code: "P003", Name: "Café Sello Rojo 250g", Description: "Café molido", Price: decimal.RequireFromString("9800"), Quantity: 35, Category: "Bebidas"},
		{Code: "P004", Name: "Leche Alquería 1L", Description: "Leche entera", Price: decimal.RequireFromString("4200"), Quantity: 60, Category: "Lácteos"},
		{Code: "P005", Name: "Panela 500g", Description: "Panela en bloque", Price: decimal.RequireFromString("3100"), Quantity: 4, Category: "Despensa"},
		{Code: "P006", Name: "Jabón Rey", Description: "Jabón de barra", Price: decimal.RequireFromString("2500"), Quantity: 0, Category: "Aseo"},
	} {
		s.st.nextProductID++
		p.ID = s.st.nextProductID
		p.Active = true
		p.CreatedAt = now
		s.st.products[p.ID] = p
	}
	return s
}

// SetClock fija el reloj usado para CreatedAt (tests).
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) lock(write bool) func() {
	if write {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) clock() time.Time { return s.now() }

// Products repositorio de productos sobre el store.
func (s *Store) Products() *ProductRepo {
	return &ProductRepo{st: s.st, guard: s.lock}
}

// Users repositorio de usuarios sobre el store.
func (s *Store) Users() *UserRepo {
	return &UserRepo{st: s.st, guard: s.lock, now: s.clock}
}

// Sales repositorio de ventas sobre el store.
func (s *Store) Sales() *SaleRepo {
	return &SaleRepo{st: s.st, guard: s.lock, now: s.clock}
}

// Reports consultas agregadas sobre el store.
func (s *Store) Reports() *ReportRepo {
	return &ReportRepo{st: s.st, guard: s.lock}
}

// RunSale ejecuta fn con el candado de escritura tomado. Si fn falla se restaura
// la foto del estado previa, de modo que no quede ni la venta ni ajustes de stock.
func (s *Store) RunSale(_ context.Context, fn func(products repository.ProductRepository, sales repository.SaleRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	products := &ProductRepo{st: s.st, guard: noLock}
	sales := &SaleRepo{st: s.st, guard: noLock, now: s.now}
	if err := fn(products, sales); err != nil {
		*s.st = *snapshot
		return err
	}
	return nil
}
