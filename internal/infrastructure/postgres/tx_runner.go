package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ sales.TxRunner = (*TxRunner)(nil)

// saleTxOptions READ COMMITTED basta: el descuento de stock es un UPDATE condicional
// (quantity >= n) y la fila queda bloqueada hasta el commit.
var saleTxOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}

// TxRunner ejecuta la venta dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSale ejecuta fn con repositorios atados a la tx. Commit si fn termina sin error;
// en cualquier otro caso Rollback.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	err := pgx.BeginTxFunc(ctx, r.pool, saleTxOptions, func(tx pgx.Tx) error {
		return fn(NewProductRepository(tx), NewSaleRepository(tx))
	})
	if err != nil {
		return fmt.Errorf("transacción de venta: %w", err)
	}
	return nil
}
