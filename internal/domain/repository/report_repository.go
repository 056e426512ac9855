package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductSales unidades vendidas por producto.
type ProductSales struct {
	ProductID int64
	Code      string
	Name      string
	Units     int
	Revenue   decimal.Decimal
}

// SellerSales ventas e ingresos por vendedor.
type SellerSales struct {
	SellerID int64
	Username string
	Name     string
	Sales    int
	Revenue  decimal.Decimal
}

// ReportRepository consultas agregadas sobre ventas.
type ReportRepository interface {
	// SalesTotals número de ventas e ingresos históricos.
	SalesTotals(ctx context.Context) (int, decimal.Decimal, error)
	// TopProducts ordenado por unidades (desc); limit <= 0 sin límite.
	TopProducts(ctx context.Context, limit int) ([]ProductSales, error)
	SalesBySeller(ctx context.Context) ([]SellerSales, error)
}
