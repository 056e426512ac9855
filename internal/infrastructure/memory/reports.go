package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo agregados de ventas en memoria.
type ReportRepo struct {
	st    *state
	guard guard
}

func (r *ReportRepo) SalesTotals(_ context.Context) (int, decimal.Decimal, error) {
	defer r.guard(false)()
	total := decimal.Zero
	for _, s := range r.st.sales {
		total = total.Add(s.Total)
	}
	return len(r.st.sales), total, nil
}

func (r *ReportRepo) TopProducts(_ context.Context, limit int) ([]repository.ProductSales, error) {
	defer r.guard(false)()
	byProduct := make(map[int64]*repository.ProductSales)
	for _, items := range r.st.items {
		for _, it := range items {
			ps, ok := byProduct[it.ProductID]
			if !ok {
				p := r.st.products[it.ProductID]
				ps = &repository.ProductSales{ProductID: it.ProductID, Code: p.Code, Name: p.Name, Revenue: decimal.Zero}
				byProduct[it.ProductID] = ps
			}
			ps.Units += it.Quantity
			ps.Revenue = ps.Revenue.Add(it.Subtotal)
		}
	}
	out := make([]repository.ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		out = append(out, *ps)
	}
	slices.SortFunc(out, func(a, b repository.ProductSales) int {
		if c := cmp.Compare(b.Units, a.Units); c != 0 {
			return c
		}
		return cmp.Compare(a.Code, b.Code)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ReportRepo) SalesBySeller(_ context.Context) ([]repository.SellerSales, error) {
	defer r.guard(false)()
	bySeller := make(map[int64]*repository.SellerSales)
	for _, s := range r.st.sales {
		ss, ok := bySeller[s.SellerID]
		if !ok {
			u := r.st.users[s.SellerID]
			ss = &repository.SellerSales{SellerID: s.SellerID, Username: u.Username, Name: u.Name, Revenue: decimal.Zero}
			bySeller[s.SellerID] = ss
		}
		ss.Sales++
		ss.Revenue = ss.Revenue.Add(s.Total)
	}
	out := make([]repository.SellerSales, 0, len(bySeller))
	for _, ss := range bySeller {
		out = append(out, *ss)
	}
	slices.SortFunc(out, func(a, b repository.SellerSales) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.SellerID, b.SellerID)
	})
	return out, nil
}
