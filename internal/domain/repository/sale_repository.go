package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para Sale y sus líneas.
// Los rangos de tiempo son semiabiertos [from, to).
type SaleRepository interface {
	// Create inserta cabecera y líneas; asigna sale.ID y el ID de cada línea.
	// No toca existencias: eso lo hace el servicio de ventas dentro de la misma transacción.
	Create(ctx context.Context, sale *entity.Sale) error
	// GetByID carga vendedor y líneas; (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	List(ctx context.Context) ([]*entity.Sale, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*entity.Sale, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Sale, error)
	// TotalBetween suma y número de ventas en el rango.
	TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error)
	// Delete borrado físico con cascada a las líneas. ErrNotFound si no existe.
	Delete(ctx context.Context, id int64) error
}
