package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas agregadas de ventas.
type ReportRepo struct {
	q Querier
}

func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func (r *ReportRepo) SalesTotals(ctx context.Context) (int, decimal.Decimal, error) {
	var (
		n     int
		total decimal.Decimal
	)
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(total), 0) FROM sales`).Scan(&n, &total); err != nil {
		return 0, decimal.Zero, fmt.Errorf("sales totals: %w", err)
	}
	return n, total, nil
}

func (r *ReportRepo) TopProducts(ctx context.Context, limit int) ([]repository.ProductSales, error) {
	query := `
		SELECT p.id, p.code, p.name, SUM(i.quantity)::int AS units, SUM(i.subtotal) AS revenue
		FROM sale_line_items i
		JOIN products p ON p.id = i.product_id
		GROUP BY p.id, p.code, p.name
		ORDER BY units DESC, p.code
		LIMIT NULLIF($1, 0)`
	if limit < 0 {
		limit = 0
	}
	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()
	out := make([]repository.ProductSales, 0)
	for rows.Next() {
		var ps repository.ProductSales
		if err := rows.Scan(&ps.ProductID, &ps.Code, &ps.Name, &ps.Units, &ps.Revenue); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (r *ReportRepo) SalesBySeller(ctx context.Context) ([]repository.SellerSales, error) {
	query := `
		SELECT u.id, u.username, u.name, COUNT(s.id), SUM(s.total) AS revenue
		FROM sales s
		JOIN users u ON u.id = s.seller_id
		GROUP BY u.id, u.username, u.name
		ORDER BY revenue DESC, u.id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sales by seller: %w", err)
	}
	defer rows.Close()
	out := make([]repository.SellerSales, 0)
	for rows.Next() {
		var ss repository.SellerSales
		if err := rows.Scan(&ss.SellerID, &ss.Username, &ss.Name, &ss.Sales, &ss.Revenue); err != nil {
			return nil, fmt.Errorf("scan seller sales: %w", err)
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}
