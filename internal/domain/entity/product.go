package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
)

// Product producto del inventario. Code es el identificador de negocio (único entre activos);
// Active=false es el borrado lógico: el registro sigue legible por ID para el historial de ventas.
type Product struct {
	ID          int64
	Code        string
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta, > 0
	Quantity    int             // existencias, >= 0
	Category    string
	Active      bool
	CreatedAt   time.Time
}

// Validate reglas de negocio para alta y edición. No toca Quantity salvo para rechazar negativos.
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Code) == "":
		return fmt.Errorf("%w: el código es obligatorio", domain.ErrInvalidInput)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	case strings.TrimSpace(p.Category) == "":
		return fmt.Errorf("%w: la categoría es obligatoria", domain.ErrInvalidInput)
	case !p.Price.IsPositive():
		return fmt.Errorf("%w: el precio debe ser mayor que cero", domain.ErrInvalidInput)
	case p.Quantity < 0:
		return fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidInput)
	}
	return nil
}

// InStock hay al menos una unidad.
func (p *Product) InStock() bool { return p.Quantity > 0 }

// IsLowStock existencias por debajo del umbral.
func (p *Product) IsLowStock(threshold int) bool { return p.Quantity < threshold }

// StockValue precio * cantidad.
func (p *Product) StockValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}
