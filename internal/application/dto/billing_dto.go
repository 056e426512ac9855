package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceRequest datos del cliente para generar la factura de una venta.
// IncludeTax nil equivale a true.
type InvoiceRequest struct {
	CustomerName     string `json:"customer_name" validate:"required,max=100"`
	CustomerDocument string `json:"customer_document" validate:"required,max=30"`
	IncludeTax       *bool  `json:"include_tax,omitempty"`
	Notes            string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// WithTax valor efectivo de IncludeTax.
func (r InvoiceRequest) WithTax() bool {
	return r.IncludeTax == nil || *r.IncludeTax
}

// InvoiceLineResponse línea de factura.
type InvoiceLineResponse struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// InvoiceResponse factura calculada (no se persiste).
type InvoiceResponse struct {
	Number           string                `json:"number"`
	IssuedAt         time.Time             `json:"issued_at"`
	IssuerName       string                `json:"issuer_name"`
	IssuerNIT        string                `json:"issuer_nit"`
	SaleID           int64                 `json:"sale_id"`
	SellerName       string                `json:"seller_name"`
	CustomerName     string                `json:"customer_name"`
	CustomerDocument string                `json:"customer_document"`
	IncludeTax       bool                  `json:"include_tax"`
	Lines            []InvoiceLineResponse `json:"lines"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	Tax              decimal.Decimal       `json:"tax"`
	Total            decimal.Decimal       `json:"total"`
	TotalFormatted   string                `json:"total_formatted"`
	Notes            string                `json:"notes,omitempty"`
}
