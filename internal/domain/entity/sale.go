package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
)

// CartLine par (código de producto, cantidad) tal como lo arma la capa de presentación.
type CartLine struct {
	Code     string
	Quantity int
}

// SaleItem línea de venta. UnitPrice es la foto del precio al agregar al carrito
// y no sigue los cambios posteriores del producto.
type SaleItem struct {
	ID          int64
	SaleID      int64
	ProductID   int64
	ProductCode string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

// NewSaleItem copia el precio vigente del producto.
func NewSaleItem(p *Product, qty int) *SaleItem {
	item := &SaleItem{
		ProductID:   p.ID,
		ProductCode: p.Code,
		ProductName: p.Name,
		UnitPrice:   p.Price,
	}
	item.SetQuantity(qty)
	return item
}

// SetQuantity actualiza la cantidad y el subtotal.
func (i *SaleItem) SetQuantity(qty int) {
	i.Quantity = qty
	i.recompute()
}

// SetUnitPrice actualiza el precio y el subtotal.
func (i *SaleItem) SetUnitPrice(price decimal.Decimal) {
	i.UnitPrice = price
	i.recompute()
}

func (i *SaleItem) recompute() {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Sale venta. Mientras ID == 0 es un carrito en memoria; tras persistirse es inmutable.
// Invariante: Total == suma de subtotales después de cada mutación.
type Sale struct {
	ID        int64
	Seller    *User
	Items     []*SaleItem
	Total     decimal.Decimal
	CreatedAt time.Time
}

// NewSale carrito vacío para el vendedor.
func NewSale(seller *User) *Sale {
	return &Sale{Seller: seller, Total: decimal.Zero, CreatedAt: time.Now()}
}

// AddItem agrega qty unidades de p. Si el código ya está en el carrito se suman
// las cantidades y se conserva el precio de la primera línea.
func (s *Sale) AddItem(p *Product, qty int) error {
	if p == nil {
		return fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput)
	}
	if qty <= 0 {
		return fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	if item := s.find(p.Code); item != nil {
		item.SetQuantity(item.Quantity + qty)
	} else {
		s.Items = append(s.Items, NewSaleItem(p, qty))
	}
	s.RecomputeTotal()
	return nil
}

// UpdateQuantity cambia la cantidad de la línea con code; qty <= 0 la elimina.
// Devuelve false si no hay línea con ese código.
func (s *Sale) UpdateQuantity(code string, qty int) bool {
	if qty <= 0 {
		return s.RemoveItem(code)
	}
	item := s.find(code)
	if item == nil {
		return false
	}
	item.SetQuantity(qty)
	s.RecomputeTotal()
	return true
}

// RemoveItem quita la línea con code.
func (s *Sale) RemoveItem(code string) bool {
	for i, item := range s.Items {
		if item.ProductCode == code {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			s.RecomputeTotal()
			return true
		}
	}
	return false
}

// Clear vacía el carrito.
func (s *Sale) Clear() {
	s.Items = nil
	s.RecomputeTotal()
}

// RecomputeTotal recalcula Total desde las líneas.
func (s *Sale) RecomputeTotal() {
	s.Total = s.LinesTotal()
}

// LinesTotal suma de subtotales, sin tocar Total.
func (s *Sale) LinesTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range s.Items {
		sum = sum.Add(item.Subtotal)
	}
	return sum
}

func (s *Sale) IsEmpty() bool { return len(s.Items) == 0 }

// ItemCount número de líneas.
func (s *Sale) ItemCount() int { return len(s.Items) }

// UnitCount número total de unidades.
func (s *Sale) UnitCount() int {
	n := 0
	for _, item := range s.Items {
		n += item.Quantity
	}
	return n
}

// Lines pares (código, cantidad) para validar contra inventario.
func (s *Sale) Lines() []CartLine {
	lines := make([]CartLine, 0, len(s.Items))
	for _, item := range s.Items {
		lines = append(lines, CartLine{Code: item.ProductCode, Quantity: item.Quantity})
	}
	return lines
}

// SellerID 0 si no hay vendedor.
func (s *Sale) SellerID() int64 {
	if s.Seller == nil {
		return 0
	}
	return s.Seller.ID
}

func (s *Sale) find(code string) *SaleItem {
	for _, item := range s.Items {
		if item.ProductCode == code {
			return item
		}
	}
	return nil
}
