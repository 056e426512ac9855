package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Code        string `json:"code" validate:"required,max=50"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
	Price       Money  `json:"price"`
	Quantity    int    `json:"quantity" validate:"min=0"`
	Category    string `json:"category" validate:"required,max=50"`
}

// UpdateProductRequest campos opcionales; la cantidad no se edita aquí (ver restock).
type UpdateProductRequest struct {
	Code        *string `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Price       *Money  `json:"price,omitempty"`
	Category    *string `json:"category,omitempty" validate:"omitempty,min=1,max=50"`
}

// RestockRequest entrada de mercancía.
type RestockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// ProductFilterRequest filtros de listado (query string).
type ProductFilterRequest struct {
	Name     string `query:"name"`
	Category string `query:"category"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID             int64           `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	PriceFormatted string          `json:"price_formatted"`
	Quantity       int             `json:"quantity"`
	Category       string          `json:"category"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ProductStatsResponse resumen del inventario.
type ProductStatsResponse struct {
	Active                  int             `json:"active"`
	InStock                 int             `json:"in_stock"`
	LowStock                int             `json:"low_stock"`
	OutOfStock              int             `json:"out_of_stock"`
	InventoryValue          decimal.Decimal `json:"inventory_value"`
	InventoryValueFormatted string          `json:"inventory_value_formatted"`
}

// ImportRowError fila rechazada en una importación CSV (Row empieza en 1, sin contar cabecera).
type ImportRowError struct {
	Row     int    `json:"row"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// ImportResult resultado de una importación CSV.
type ImportResult struct {
	Created int              `json:"created"`
	Errors  []ImportRowError `json:"errors"`
}
