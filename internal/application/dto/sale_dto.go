package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLineRequest par (código, cantidad).
type CartLineRequest struct {
	Code     string `json:"code" validate:"required,max=50"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// CreateSaleRequest carrito a registrar (también usado por /validate).
type CreateSaleRequest struct {
	Items []CartLineRequest `json:"items" validate:"required,min=1,dive"`
}

// ValidatedLineResponse línea aceptada por la validación de inventario.
type ValidatedLineResponse struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Available int             `json:"available"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ValidateCartResponse resultado de /api/sales/validate.
type ValidateCartResponse struct {
	Valid bool                    `json:"valid"`
	Lines []ValidatedLineResponse `json:"lines"`
	Total decimal.Decimal         `json:"total"`
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta registrada.
type SaleResponse struct {
	ID             int64              `json:"id"`
	SellerID       int64              `json:"seller_id"`
	SellerName     string             `json:"seller_name"`
	Items          []SaleItemResponse `json:"items"`
	ItemCount      int                `json:"item_count"`
	Total          decimal.Decimal    `json:"total"`
	TotalFormatted string             `json:"total_formatted"`
	CreatedAt      time.Time          `json:"created_at"`
}

// DailyTotalResponse total del día.
type DailyTotalResponse struct {
	Date  string          `json:"date"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
