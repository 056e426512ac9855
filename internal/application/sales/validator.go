package sales

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// ResolvedLine línea validada con el producto leído del almacenamiento.
type ResolvedLine struct {
	Product  *entity.Product
	Quantity int
}

// InventoryValidator pre-chequeo de solo lectura, todo o nada, contra el stock vigente.
type InventoryValidator struct {
	productRepo repository.ProductRepository
}

// NewInventoryValidator construye el validador.
func NewInventoryValidator(productRepo repository.ProductRepository) *InventoryValidator {
	return &InventoryValidator{productRepo: productRepo}
}

// Validate relee cada producto por código (nunca usa cantidades en caché).
// Los códigos repetidos se suman en una sola línea, en el orden de primera aparición.
// Errores: ErrEmptyCart, ErrInvalidInput (cantidad <= 0), *domain.StockError
// (ErrProductUnavailable / ErrInsufficientStock) o el error de lectura.
func (v *InventoryValidator) Validate(ctx context.Context, lines []entity.CartLine) ([]ResolvedLine, error) {
	if len(lines) == 0 {
		return nil, domain.ErrEmptyCart
	}

	order := make([]string, 0, len(lines))
	requested := make(map[string]int, len(lines))
	for _, l := range lines {
		code := strings.TrimSpace(l.Code)
		if code == "" {
			return nil, fmt.Errorf("%w: código de producto vacío", domain.ErrInvalidInput)
		}
		if l.Quantity <= 0 {
			return nil, fmt.Errorf("%w: cantidad inválida para %s", domain.ErrInvalidInput, code)
		}
		if _, seen := requested[code]; !seen {
			order = append(order, code)
		}
		requested[code] += l.Quantity
	}

	resolved := make([]ResolvedLine, 0, len(order))
	for _, code := range order {
		product, err := v.productRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("%w: validar inventario: %w", domain.ErrPersistenceFailure, err)
		}
		if product == nil || !product.Active {
			return nil, domain.NewProductUnavailable(code)
		}
		qty := requested[code]
		if product.Quantity < qty {
			return nil, domain.NewInsufficientStock(code, product.Name, product.Quantity, qty)
		}
		resolved = append(resolved, ResolvedLine{Product: product, Quantity: qty})
	}
	return resolved, nil
}
