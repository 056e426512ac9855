// Package billing cálculo de la factura a partir de una venta registrada.
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
)

// NumberPrefix prefijo del consecutivo de factura.
const NumberPrefix = "FACT"

// TaxRate IVA fijo (19 %). La factura lleva este impuesto completo o ninguno.
var TaxRate = decimal.RequireFromString("0.19")

// Issuer datos de la empresa emisora.
type Issuer struct {
	Name    string
	NIT     string
	Address string
	Phone   string
	Email   string
}

// DefaultIssuer emisor impreso en las facturas.
var DefaultIssuer = Issuer{
	Name:    "SISTEMA DE INVENTARIO S.A.S",
	NIT:     "900.123.456-8",
	Address: "Calle 123 #45-67, Medellín",
	Phone:   "(604) 123-4567",
	Email:   "ventas@inventario.com",
}

// Totals subtotal, impuesto y total.
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Compute recalcula el subtotal sumando las líneas (no usa sale.Total) y aplica el IVA si includeTax.
func Compute(sale *entity.Sale, includeTax bool) Totals {
	subtotal := sale.LinesTotal()
	tax := decimal.Zero
	if includeTax {
		tax = subtotal.Mul(TaxRate)
	}
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax)}
}

// InvoiceNumber FACT-YYYYMMDD-NNNN con el ID persistido de la venta.
// Una venta sin ID no tiene número: ErrSaleNotPersisted.
func InvoiceNumber(saleID int64, at time.Time) (string, error) {
	if saleID <= 0 {
		return "", domain.ErrSaleNotPersisted
	}
	return fmt.Sprintf("%s-%s-%04d", NumberPrefix, at.Format("20060102"), saleID), nil
}

// Line línea impresa en la factura.
type Line struct {
	Code      string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// Invoice vista de factura, derivada y no persistida.
type Invoice struct {
	Number           string
	IssuedAt         time.Time
	Issuer           Issuer
	SaleID           int64
	SaleDate         time.Time
	SellerName       string
	CustomerName     string
	CustomerDocument string
	IncludeTax       bool
	Lines            []Line
	Totals
	Notes string
}

// NewInvoice arma la factura de una venta ya registrada.
func NewInvoice(sale *entity.Sale, customerName, customerDocument string, includeTax bool, now time.Time) (*Invoice, error) {
	if sale == nil {
		return nil, domain.ErrSaleNotPersisted
	}
	number, err := InvoiceNumber(sale.ID, now)
	if err != nil {
		return nil, err
	}
	if sale.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}
	inv := &Invoice{
		Number:           number,
		IssuedAt:         now,
		Issuer:           DefaultIssuer,
		SaleID:           sale.ID,
		SaleDate:         sale.CreatedAt,
		CustomerName:     customerName,
		CustomerDocument: customerDocument,
		IncludeTax:       includeTax,
		Totals:           Compute(sale, includeTax),
	}
	if sale.Seller != nil {
		inv.SellerName = sale.Seller.Name
	}
	for _, item := range sale.Items {
		inv.Lines = append(inv.Lines, Line{
			Code:      item.ProductCode,
			Name:      item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return inv, nil
}
