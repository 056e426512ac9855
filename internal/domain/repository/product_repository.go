package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// ProductFilter criterios de búsqueda (vacíos = sin filtro). Name es subcadena sin distinguir mayúsculas.
type ProductFilter struct {
	Name     string
	Category string
}

// ProductStats agregados del inventario activo. LowStock cuenta 0 < cantidad < umbral.
type ProductStats struct {
	Active         int
	InStock        int
	LowStock       int
	OutOfStock     int
	InventoryValue decimal.Decimal
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los listados y GetByCode solo ven productos activos; GetByID ve también los desactivados.
// Quantity solo cambia vía AtomicDecrement/AtomicIncrement.
type ProductRepository interface {
	// Create asigna ID y CreatedAt. ErrDuplicateCode si el código ya existe entre activos.
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve (nil, nil) si no existe.
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	// GetByCode devuelve (nil, nil) si no hay producto activo con ese código.
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	ListActive(ctx context.Context) ([]*entity.Product, error)
	Search(ctx context.Context, filter ProductFilter) ([]*entity.Product, error)
	ListByCategory(ctx context.Context, category string) ([]*entity.Product, error)
	// ListLowStock activos con cantidad < threshold, de menor a mayor cantidad.
	ListLowStock(ctx context.Context, threshold int) ([]*entity.Product, error)
	// Update modifica datos y precio de un producto activo; nunca la cantidad. ErrNotFound / ErrDuplicateCode.
	Update(ctx context.Context, product *entity.Product) error
	// Deactivate borrado lógico. ErrNotFound si no hay producto activo con ese ID.
	Deactivate(ctx context.Context, id int64) error
	InventoryValue(ctx context.Context) (decimal.Decimal, error)
	Stats(ctx context.Context, lowStockThreshold int) (*ProductStats, error)
	// AtomicDecrement resta amount solo si el producto está activo y cantidad >= amount,
	// en una única escritura condicionada. false si la condición no se cumplió.
	AtomicDecrement(ctx context.Context, id int64, amount int) (bool, error)
	// AtomicIncrement suma amount a un producto activo. false si no existe o está inactivo.
	AtomicIncrement(ctx context.Context, id int64, amount int) (bool, error)
}
