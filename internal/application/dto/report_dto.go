package dto

import "github.com/shopspring/decimal"

// SummaryResponse estadísticas generales.
type SummaryResponse struct {
	TotalSales       int             `json:"total_sales"`
	SalesToday       int             `json:"sales_today"`
	ProductsInStock  int             `json:"products_in_stock"`
	LowStockProducts int             `json:"low_stock_products"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	AverageSale      decimal.Decimal `json:"average_sale"`
	InventoryValue   decimal.Decimal `json:"inventory_value"`
}

// TopProductResponse producto más vendido.
type TopProductResponse struct {
	ProductID int64           `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Units     int             `json:"units"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// SellerReportResponse ventas por vendedor.
type SellerReportResponse struct {
	SellerID int64           `json:"seller_id"`
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Sales    int             `json:"sales"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// RangeReportResponse ventas e ingresos en un rango de días (ambos incluidos).
type RangeReportResponse struct {
	From    string          `json:"from"`
	To      string          `json:"to"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Sales   []SaleResponse  `json:"sales"`
}
