package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
)

func TestNewSeeded(t *testing.T) {
	ctx := context.Background()
	products := memory.NewSeeded().Products()

	list, err := products.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 6)

	value, err := products.InventoryValue(ctx)
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(1443400)), value.String())

	p, err := products.GetByCode(ctx, "P006")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 0, p.Quantity)
}

func TestProductRepo_CodigoDuplicado(t *testing.T) {
	ctx := context.Background()
	products := memory.NewSeeded().Products()

	err := products.Create(ctx, &entity.Product{Code: "P001", Name: "Otro", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	p, _ := products.GetByCode(ctx, "P001")
	require.NoError(t, products.Deactivate(ctx, p.ID))
	assert.NoError(t, products.Create(ctx, &entity.Product{Code: "P001", Name: "Reemplazo", Price: decimal.NewFromInt(1)}))
}

func TestProductRepo_AtomicDecrement(t *testing.T) {
	ctx := context.Background()
	products := memory.NewSeeded().Products()
	p, _ := products.GetByCode(ctx, "P005") // 4 unidades

	ok, err := products.AtomicDecrement(ctx, p.ID, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = products.AtomicDecrement(ctx, p.ID, 0)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = products.AtomicDecrement(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	after, _ := products.GetByID(ctx, p.ID)
	assert.Equal(t, 0, after.Quantity)

	ok, err = products.AtomicIncrement(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	after, _ = products.GetByID(ctx, p.ID)
	assert.Equal(t, 3, after.Quantity)
}

func TestProductRepo_AtomicDecrementConcurrente(t *testing.T) {
	ctx := context.Background()
	products := memory.NewSeeded().Products()
	p, _ := products.GetByCode(ctx, "P005") // 4 unidades

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := products.AtomicDecrement(ctx, p.ID, 1)
			if err == nil && ok {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, won)
	after, _ := products.GetByID(ctx, p.ID)
	assert.Equal(t, 0, after.Quantity)
}

func TestStore_RunSaleRestauraAlFallar(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeeded()
	p, _ := store.Products().GetByCode(ctx, "P001")

	boom := errors.New("boom")
	err := store.RunSale(ctx, func(products repository.ProductRepository, _ repository.SaleRepository) error {
		ok, err := products.AtomicDecrement(ctx, p.ID, 10)
		require.NoError(t, err)
		require.True(t, ok)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	after, _ := store.Products().GetByID(ctx, p.ID)
	assert.Equal(t, 120, after.Quantity)
}

func TestStore_RunSaleConfirma(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeeded()
	seller := &entity.User{Username: "caja1", Password: "x", Name: "Caja", Role: entity.RoleVendedor, Active: true}
	require.NoError(t, store.Users().Create(ctx, seller))
	p, _ := store.Products().GetByCode(ctx, "P002")

	sale := entity.NewSale(seller)
	require.NoError(t, sale.AddItem(p, 2))

	err := store.RunSale(ctx, func(products repository.ProductRepository, sales repository.SaleRepository) error {
		if ok, err := products.AtomicDecrement(ctx, p.ID, 2); err != nil || !ok {
			return domain.ErrInsufficientStock
		}
		return sales.Create(ctx, sale)
	})
	require.NoError(t, err)
	assert.NotZero(t, sale.ID)

	after, _ := store.Products().GetByID(ctx, p.ID)
	assert.Equal(t, 38, after.Quantity)

	stored, err := store.Sales().GetByID(ctx, sale.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.Total.Equal(decimal.NewFromInt(25000)), stored.Total.String())
	assert.Len(t, stored.Items, 1)
}

func TestSaleRepo_VendedorInexistente(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSeeded()
	p, _ := store.Products().GetByCode(ctx, "P001")

	sale := entity.NewSale(&entity.User{ID: 99})
	require.NoError(t, sale.AddItem(p, 1))
	assert.Error(t, store.Sales().Create(ctx, sale))
}
