package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/pkg/config"
)

// Requiere una base de datos desechable: VENTAS_TEST_DATABASE_URL=postgres://...
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	databaseURL := os.Getenv("VENTAS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set VENTAS_TEST_DATABASE_URL to run postgres integration test")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: databaseURL, MaxConns: 8})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = Migrate(ctx, pool)
	require.NoError(t, err)
	return pool
}

func TestMigrateIdempotente(t *testing.T) {
	pool := testPool(t)
	applied, err := Migrate(context.Background(), pool)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestPostgresSaleFlow(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	stamp := time.Now().UnixNano()

	users := NewUserRepository(pool)
	products := NewProductRepository(pool)
	saleRepo := NewSaleRepository(pool)

	seller := &entity.User{
		Username: fmt.Sprintf("it_%d", stamp%1_000_000_000),
		Password: "secreto", Name: "Vendedor IT", Email: "it@tienda.co",
		Role: entity.RoleVendedor, Active: true,
	}
	require.NoError(t, users.Create(ctx, seller))

	a := &entity.Product{Code: fmt.Sprintf("IT-A-%d", stamp), Name: "Producto A", Price: decimal.RequireFromString("1500"), Quantity: 10, Category: "IT"}
	b := &entity.Product{Code: fmt.Sprintf("IT-B-%d", stamp), Name: "Producto B", Price: decimal.RequireFromString("2000.50"), Quantity: 5, Category: "IT"}
	require.NoError(t, products.Create(ctx, a))
	require.NoError(t, products.Create(ctx, b))

	t.Cleanup(func() {
		_, _ = pool.Exec(ctx, `DELETE FROM sales WHERE seller_id = $1`, seller.ID)
		_, _ = pool.Exec(ctx, `DELETE FROM products WHERE code LIKE $1`, fmt.Sprintf("IT-%%-%d", stamp))
		_, _ = pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, seller.ID)
	})

	uc := sales.NewProcessSaleUseCase(NewTxRunner(pool), products, users, 5, zerolog.Nop())

	cart := entity.NewSale(seller)
	require.NoError(t, cart.AddItem(a, 3))
	require.NoError(t, cart.AddItem(b, 2))
	id, err := uc.ProcessSale(ctx, cart)
	require.NoError(t, err)

	got, err := saleRepo.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, decimal.RequireFromString("8501").Equal(got.Total), got.Total.String())
	require.Len(t, got.Items, 2)
	assert.Equal(t, seller.Username, got.Seller.Username)
	assert.Empty(t, got.Seller.Password)

	pa, err := products.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, pa.Quantity)

	// Sin stock suficiente: nada cambia.
	cart = entity.NewSale(seller)
	require.NoError(t, cart.AddItem(a, 1))
	require.NoError(t, cart.AddItem(b, 4))
	_, err = uc.ProcessSale(ctx, cart)
	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	pa, _ = products.GetByID(ctx, a.ID)
	assert.Equal(t, 7, pa.Quantity)

	// Borrado físico: las líneas caen en cascada y el stock no vuelve.
	require.NoError(t, saleRepo.Delete(ctx, id))
	var lines int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM sale_line_items WHERE sale_id = $1`, id).Scan(&lines))
	assert.Zero(t, lines)
	assert.True(t, errors.Is(saleRepo.Delete(ctx, id), domain.ErrNotFound))
	pa, _ = products.GetByID(ctx, a.ID)
	assert.Equal(t, 7, pa.Quantity)
}

func TestPostgresAtomicDecrementConcurrente(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	products := NewProductRepository(pool)

	p := &entity.Product{Code: fmt.Sprintf("IT-C-%d", time.Now().UnixNano()), Name: "Última unidad", Price: decimal.NewFromInt(100), Quantity: 1, Category: "IT"}
	require.NoError(t, products.Create(ctx, p))
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, p.ID) })

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := products.AtomicDecrement(ctx, p.ID, 1)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, won)

	got, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Quantity)
}

func TestPostgresCodigoReutilizableTrasDesactivar(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	products := NewProductRepository(pool)
	code := fmt.Sprintf("IT-D-%d", time.Now().UnixNano())

	p := &entity.Product{Code: code, Name: "Viejo", Price: decimal.NewFromInt(10), Quantity: 1, Category: "IT"}
	require.NoError(t, products.Create(ctx, p))
	t.Cleanup(func() { _, _ = pool.Exec(ctx, `DELETE FROM products WHERE code = $1`, code) })

	dup := &entity.Product{Code: code, Name: "Duplicado", Price: decimal.NewFromInt(10), Category: "IT"}
	assert.True(t, errors.Is(products.Create(ctx, dup), domain.ErrDuplicateCode))

	require.NoError(t, products.Deactivate(ctx, p.ID))
	require.NoError(t, products.Create(ctx, dup))

	found, err := products.GetByCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, dup.ID, found.ID)
}
