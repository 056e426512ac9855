package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación en memoria de SaleRepository.
type SaleRepo struct {
	st    *state
	guard guard
	now   func() time.Time
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	defer r.guard(true)()
	sellerID := sale.SellerID()
	if _, ok := r.st.users[sellerID]; !ok {
		return fmt.Errorf("insert sale: vendedor %d no existe", sellerID)
	}
	for _, item := range sale.Items {
		if _, ok := r.st.products[item.ProductID]; !ok {
			return fmt.Errorf("insert sale item: producto %d no existe", item.ProductID)
		}
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = r.now()
	}
	r.st.nextSaleID++
	sale.ID = r.st.nextSaleID
	r.st.sales[sale.ID] = saleRow{ID: sale.ID, SellerID: sellerID, Total: sale.Total, CreatedAt: sale.CreatedAt}

	rows := make([]entity.SaleItem, 0, len(sale.Items))
	for _, item := range sale.Items {
		r.st.nextItemID++
		item.ID = r.st.nextItemID
		item.SaleID = sale.ID
		rows = append(rows, *item)
	}
	r.st.items[sale.ID] = rows
	return nil
}

func (r *SaleRepo) GetByID(_ context.Context, id int64) (*entity.Sale, error) {
	defer r.guard(false)()
	row, ok := r.st.sales[id]
	if !ok {
		return nil, nil
	}
	return r.load(row), nil
}

func (r *SaleRepo) List(_ context.Context) ([]*entity.Sale, error) {
	defer r.guard(false)()
	return r.collect(func(saleRow) bool { return true }), nil
}

func (r *SaleRepo) ListBetween(_ context.Context, from, to time.Time) ([]*entity.Sale, error) {
	defer r.guard(false)()
	return r.collect(func(s saleRow) bool { return inRange(s.CreatedAt, from, to) }), nil
}

func (r *SaleRepo) ListBySeller(_ context.Context, sellerID int64) ([]*entity.Sale, error) {
	defer r.guard(false)()
	return r.collect(func(s saleRow) bool { return s.SellerID == sellerID }), nil
}

func (r *SaleRepo) TotalBetween(_ context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	defer r.guard(false)()
	total, n := decimal.Zero, 0
	for _, s := range r.st.sales {
		if inRange(s.CreatedAt, from, to) {
			total = total.Add(s.Total)
			n++
		}
	}
	return total, n, nil
}

// Delete borra la venta y sus líneas. Las existencias no se restituyen.
func (r *SaleRepo) Delete(_ context.Context, id int64) error {
	defer r.guard(true)()
	if _, ok := r.st.sales[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.sales, id)
	delete(r.st.items, id)
	return nil
}

// collect ordena de la más reciente a la más antigua.
func (r *SaleRepo) collect(keep func(saleRow) bool) []*entity.Sale {
	rows := make([]saleRow, 0)
	for _, s := range r.st.sales {
		if keep(s) {
			rows = append(rows, s)
		}
	}
	slices.SortFunc(rows, func(a, b saleRow) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	out := make([]*entity.Sale, 0, len(rows))
	for _, s := range rows {
		out = append(out, r.load(s))
	}
	return out
}

func (r *SaleRepo) load(row saleRow) *entity.Sale {
	sale := &entity.Sale{ID: row.ID, Total: row.Total, CreatedAt: row.CreatedAt}
	if u, ok := r.st.users[row.SellerID]; ok {
		u.Password = ""
		sale.Seller = &u
	} else {
		sale.Seller = &entity.User{ID: row.SellerID}
	}
	for _, it := range r.st.items[row.ID] {
		item := it
		if p, ok := r.st.products[item.ProductID]; ok {
			item.ProductCode = p.Code
			item.ProductName = p.Name
		}
		sale.Items = append(sale.Items, &item)
	}
	return sale
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
