package sales

import (
	"context"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// TxRunner ejecuta fn dentro de una transacción de almacenamiento con repositorios atados a ella.
// Si fn devuelve error, nada de lo hecho dentro queda visible.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// Confirmer pregunta (sí/no) antes de registrar la venta.
type Confirmer interface {
	Confirm(ctx context.Context, cart *entity.Sale) (bool, error)
}

// ConfirmFunc adapta una función a Confirmer.
type ConfirmFunc func(ctx context.Context, cart *entity.Sale) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, cart *entity.Sale) (bool, error) {
	return f(ctx, cart)
}

// SaleListener recibe cada venta confirmada (después del commit) y los productos
// que quedaron por debajo del umbral de stock bajo.
type SaleListener interface {
	SaleCommitted(ctx context.Context, sale *entity.Sale, lowStock []*entity.Product)
}
