package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store  *memory.Store
	seller *entity.User
	uc     *sales.ProcessSaleUseCase
}

func newFixture(t *testing.T, listeners ...sales.SaleListener) *fixture {
	t.Helper()
	return newFixtureWithTx(t, nil, listeners...)
}

func newFixtureWithTx(t *testing.T, wrap func(*memory.Store) sales.TxRunner, listeners ...sales.SaleListener) *fixture {
	t.Helper()
	store := memory.New()
	seller := &entity.User{Username: "vendedor1", Password: "secreto", Name: "Ana Vendedora", Email: "ana@tienda.co", Role: entity.RoleVendedor, Active: true}
	require.NoError(t, store.Users().Create(context.Background(), seller))

	var tx sales.TxRunner = store
	if wrap != nil {
		tx = wrap(store)
	}
	uc := sales.NewProcessSaleUseCase(tx, store.Products(), store.Users(), 5, zerolog.Nop(), listeners...)
	return &fixture{store: store, seller: seller, uc: uc}
}

func (f *fixture) addProduct(t *testing.T, code, price string, qty int) *entity.Product {
	t.Helper()
	p := &entity.Product{Code: code, Name: "Producto " + code, Price: decimal.RequireFromString(price), Quantity: qty, Category: "General"}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func (f *fixture) quantity(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Quantity
}

func (f *fixture) saleCount(t *testing.T) int {
	t.Helper()
	all, err := f.store.Sales().List(context.Background())
	require.NoError(t, err)
	return len(all)
}

func (f *fixture) cart(t *testing.T, lines ...any) *entity.Sale {
	t.Helper()
	cart := entity.NewSale(f.seller)
	for i := 0; i < len(lines); i += 2 {
		require.NoError(t, cart.AddItem(lines[i].(*entity.Product), lines[i+1].(int)))
	}
	return cart
}

type recordingListener struct {
	mu       sync.Mutex
	sales    []*entity.Sale
	lowStock []*entity.Product
}

func (l *recordingListener) SaleCommitted(_ context.Context, sale *entity.Sale, low []*entity.Product) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sales = append(l.sales, sale)
	l.lowStock = append(l.lowStock, low...)
}

// ──────────────────────────────────────────────────────────────────────────────
// InventoryValidator
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_StockExactoYExcedido(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "P1", "1000", 5)
	v := sales.NewInventoryValidator(f.store.Products())

	lines, err := v.Validate(context.Background(), []entity.CartLine{{Code: "P1", Quantity: 5}})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	_, err = v.Validate(context.Background(), []entity.CartLine{{Code: "P1", Quantity: 6}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 5, se.Available)
	assert.Equal(t, 6, se.Requested)
	assert.Contains(t, err.Error(), "disponible 5, solicitado 6")
}

// brokenLookup simula una caída de la base de datos al leer productos.
type brokenLookup struct {
	repository.ProductRepository
}

func (brokenLookup) GetByCode(context.Context, string) (*entity.Product, error) {
	return nil, errors.New("conexión rechazada")
}

func TestValidate_FalloDeLecturaEsErrorDePersistencia(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "P1", "1000", 5)
	v := sales.NewInventoryValidator(brokenLookup{ProductRepository: f.store.Products()})

	_, err := v.Validate(context.Background(), []entity.CartLine{{Code: "P1", Quantity: 1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
	assert.False(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "conexión rechazada")
}

func TestValidate_SumaCodigosRepetidos(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "P1", "1000", 5)
	v := sales.NewInventoryValidator(f.store.Products())

	_, err := v.Validate(context.Background(), []entity.CartLine{{Code: "P1", Quantity: 3}, {Code: "P1", Quantity: 3}})
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
}

func TestValidate_ProductoNoDisponible(t *testing.T) {
	f := newFixture(t)
	p := f.addProduct(t, "P1", "1000", 5)
	require.NoError(t, f.store.Products().Deactivate(context.Background(), p.ID))
	v := sales.NewInventoryValidator(f.store.Products())

	for _, code := range []string{"P1", "NOEXISTE"} {
		_, err := v.Validate(context.Background(), []entity.CartLine{{Code: code, Quantity: 1}})
		assert.True(t, errors.Is(err, domain.ErrProductUnavailable), code)
	}
}

func TestValidate_EntradasInvalidas(t *testing.T) {
	f := newFixture(t)
	f.addProduct(t, "P1", "1000", 5)
	v := sales.NewInventoryValidator(f.store.Products())

	_, err := v.Validate(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrEmptyCart))
	_, err = v.Validate(context.Background(), []entity.CartLine{{Code: "P1", Quantity: 0}})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

// ──────────────────────────────────────────────────────────────────────────────
// ProcessSale
// ──────────────────────────────────────────────────────────────────────────────

func TestProcessSale_Exitosa(t *testing.T) {
	listener := &recordingListener{}
	f := newFixture(t, listener)
	a := f.addProduct(t, "A", "1500", 10)
	b := f.addProduct(t, "B", "2000.50", 6)

	cart := f.cart(t, a, 3, b, 2)
	id, err := f.uc.ProcessSale(context.Background(), cart)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, cart.ID)

	assert.Equal(t, 7, f.quantity(t, a.ID))
	assert.Equal(t, 4, f.quantity(t, b.ID))

	stored, err := f.store.Sales().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Items, 2)
	assert.True(t, stored.Total.Equal(decimal.RequireFromString("8501")))
	assert.True(t, stored.Total.Equal(stored.LinesTotal()))
	assert.Equal(t, f.seller.ID, stored.SellerID())

	require.Len(t, listener.sales, 1)
	require.Len(t, listener.lowStock, 1)
	assert.Equal(t, "B", listener.lowStock[0].Code)
}

func TestProcessSale_StockInsuficienteNoMuta(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1500", 2)

	cart := f.cart(t, a, 3)
	_, err := f.uc.ProcessSale(context.Background(), cart)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 2, f.quantity(t, a.ID))
	assert.Zero(t, f.saleCount(t))
	assert.Zero(t, cart.ID)
}

func TestProcessSale_Precondiciones(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1500", 2)

	_, err := f.uc.ProcessSale(context.Background(), entity.NewSale(f.seller))
	assert.True(t, errors.Is(err, domain.ErrEmptyCart))

	_, err = f.uc.ProcessSale(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrEmptyCart))

	noSeller := entity.NewSale(nil)
	require.NoError(t, noSeller.AddItem(a, 1))
	_, err = f.uc.ProcessSale(context.Background(), noSeller)
	assert.True(t, errors.Is(err, domain.ErrInvalidSeller))

	ghost := entity.NewSale(&entity.User{ID: 999})
	require.NoError(t, ghost.AddItem(a, 1))
	_, err = f.uc.ProcessSale(context.Background(), ghost)
	assert.True(t, errors.Is(err, domain.ErrInvalidSeller))

	require.NoError(t, f.store.Users().Deactivate(context.Background(), f.seller.ID))
	_, err = f.uc.ProcessSale(context.Background(), f.cart(t, a, 1))
	assert.True(t, errors.Is(err, domain.ErrInvalidSeller))

	assert.Equal(t, 2, f.quantity(t, a.ID))
	assert.Zero(t, f.saleCount(t))
}

func TestProcessSale_RolSinPermiso(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1500", 2)
	viewer := &entity.User{Username: "consulta", Password: "x", Name: "Solo Lectura", Role: entity.RoleConsulta, Active: true}
	require.NoError(t, f.store.Users().Create(context.Background(), viewer))

	cart := entity.NewSale(viewer)
	require.NoError(t, cart.AddItem(a, 1))
	_, err := f.uc.ProcessSale(context.Background(), cart)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// flakyProducts falla en el segundo descuento para forzar un rollback a mitad de la transacción.
type flakyProducts struct {
	repository.ProductRepository
	calls *int
}

func (f flakyProducts) AtomicDecrement(ctx context.Context, id int64, amount int) (bool, error) {
	*f.calls++
	if *f.calls == 2 {
		return false, errors.New("conexión perdida")
	}
	return f.ProductRepository.AtomicDecrement(ctx, id, amount)
}

type flakyTx struct {
	store *memory.Store
	calls int
}

func (tx *flakyTx) RunSale(ctx context.Context, fn func(repository.ProductRepository, repository.SaleRepository) error) error {
	return tx.store.RunSale(ctx, func(p repository.ProductRepository, s repository.SaleRepository) error {
		return fn(flakyProducts{ProductRepository: p, calls: &tx.calls}, s)
	})
}

func TestProcessSale_RollbackCompletoAnteFalloDePersistencia(t *testing.T) {
	f := newFixtureWithTx(t, func(s *memory.Store) sales.TxRunner { return &flakyTx{store: s} })
	a := f.addProduct(t, "A", "1000", 10)
	b := f.addProduct(t, "B", "1000", 10)

	cart := f.cart(t, a, 2, b, 3)
	_, err := f.uc.ProcessSale(context.Background(), cart)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPersistenceFailure))

	assert.Equal(t, 10, f.quantity(t, a.ID), "el primer descuento debe revertirse")
	assert.Equal(t, 10, f.quantity(t, b.ID))
	assert.Zero(t, f.saleCount(t))
	assert.Zero(t, cart.ID)
}

// racingTx consume stock entre la validación y la transacción.
type racingTx struct {
	store     *memory.Store
	productID int64
	steal     int
}

func (tx *racingTx) RunSale(ctx context.Context, fn func(repository.ProductRepository, repository.SaleRepository) error) error {
	if _, err := tx.store.Products().AtomicDecrement(ctx, tx.productID, tx.steal); err != nil {
		return err
	}
	return tx.store.RunSale(ctx, fn)
}

func TestProcessSale_CarreraEntreValidacionYCommit(t *testing.T) {
	var race *racingTx
	f := newFixtureWithTx(t, func(s *memory.Store) sales.TxRunner {
		race = &racingTx{store: s}
		return race
	})
	a := f.addProduct(t, "A", "1000", 5)
	race.productID, race.steal = a.ID, 4

	_, err := f.uc.ProcessSale(context.Background(), f.cart(t, a, 3))
	var se *domain.StockError
	require.True(t, errors.As(err, &se))
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Equal(t, 1, se.Available)
	assert.Equal(t, 3, se.Requested)
	assert.Equal(t, 1, f.quantity(t, a.ID))
	assert.Zero(t, f.saleCount(t))
}

func TestProcessSale_ConcurrentesSobreMismoProducto(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1000", 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cart := entity.NewSale(f.seller)
			_ = cart.AddItem(a, 3)
			_, errs[i] = f.uc.ProcessSale(context.Background(), cart)
		}(i)
	}
	wg.Wait()

	ok, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, 2, f.quantity(t, a.ID))
	assert.Equal(t, 1, f.saleCount(t))
}

func TestProcessSale_IgnoraCancelacionDelLlamador(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1000", 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.uc.ProcessSale(ctx, f.cart(t, a, 1))
	require.NoError(t, err)
	assert.Equal(t, 4, f.quantity(t, a.ID))
}

func TestProcessSale_VentaYaRegistrada(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1000", 5)
	cart := f.cart(t, a, 1)
	_, err := f.uc.ProcessSale(context.Background(), cart)
	require.NoError(t, err)

	_, err = f.uc.ProcessSale(context.Background(), cart)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, 4, f.quantity(t, a.ID))
}

func TestProcessSaleConfirmed(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1000", 5)

	decline := sales.ConfirmFunc(func(context.Context, *entity.Sale) (bool, error) { return false, nil })
	_, err := f.uc.ProcessSaleConfirmed(context.Background(), f.cart(t, a, 1), decline)
	assert.True(t, errors.Is(err, domain.ErrSaleCancelled))
	assert.Equal(t, 5, f.quantity(t, a.ID))
	assert.Zero(t, f.saleCount(t))

	accept := sales.ConfirmFunc(func(context.Context, *entity.Sale) (bool, error) { return true, nil })
	id, err := f.uc.ProcessSaleConfirmed(context.Background(), f.cart(t, a, 1), accept)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, 4, f.quantity(t, a.ID))
}

func TestCheckout(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1000", 5)
	f.addProduct(t, "B", "250", 5)

	sale, err := f.uc.Checkout(context.Background(), f.seller.ID, []entity.CartLine{{Code: "A", Quantity: 2}, {Code: "B", Quantity: 1}, {Code: "A", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, 2, sale.ItemCount())
	assert.True(t, sale.Total.Equal(decimal.NewFromInt(3250)))
	assert.Equal(t, 2, f.quantity(t, a.ID))
	assert.Empty(t, sale.Seller.Password)

	_, err = f.uc.Checkout(context.Background(), 0, []entity.CartLine{{Code: "A", Quantity: 1}})
	assert.True(t, errors.Is(err, domain.ErrInvalidSeller))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestSaleQueries(t *testing.T) {
	f := newFixture(t)
	a := f.addProduct(t, "A", "1000", 50)
	day1 := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	f.uc.SetClock(func() time.Time { return day1 })
	_, err := f.uc.ProcessSale(context.Background(), f.cart(t, a, 1))
	require.NoError(t, err)
	f.uc.SetClock(func() time.Time { return day2 })
	id2, err := f.uc.ProcessSale(context.Background(), f.cart(t, a, 2))
	require.NoError(t, err)

	q := sales.NewSaleQueryUseCase(f.store.Sales(), time.UTC)
	q.SetClock(func() time.Time { return day2.Add(3 * time.Hour) })

	all, err := q.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, id2, all[0].ID, "más reciente primero")

	byDay, err := q.ListByDate(context.Background(), day1)
	require.NoError(t, err)
	assert.Len(t, byDay, 1)

	total, count, err := q.Today(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.True(t, total.Equal(decimal.NewFromInt(2000)))

	rev, n, err := q.RevenueBetween(context.Background(), day1, day2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, rev.Equal(decimal.NewFromInt(3000)))

	_, _, err = q.RevenueBetween(context.Background(), day2, day1)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	bySeller, err := q.ListBySeller(context.Background(), f.seller.ID)
	require.NoError(t, err)
	assert.Len(t, bySeller, 2)

	// El producto desactivado sigue resolviéndose en las líneas históricas.
	require.NoError(t, f.store.Products().Deactivate(context.Background(), a.ID))
	got, err := q.GetByID(context.Background(), id2)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Items[0].ProductCode)

	require.NoError(t, q.Delete(context.Background(), id2))
	_, err = q.GetByID(context.Background(), id2)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.True(t, errors.Is(q.Delete(context.Background(), id2), domain.ErrNotFound))
	assert.Equal(t, 47, f.quantity(t, a.ID), "borrar una venta no devuelve stock")
}
