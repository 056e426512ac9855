package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository.
type ProductRepo struct {
	st    *state
	guard guard
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	defer r.guard(true)()
	if r.activeByCode(product.Code) != nil {
		return domain.ErrDuplicateCode
	}
	r.st.nextProductID++
	product.ID = r.st.nextProductID
	product.Active = true
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	r.st.products[product.ID] = *product
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	defer r.guard(false)()
	p, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	defer r.guard(false)()
	return r.activeByCode(code), nil
}

func (r *ProductRepo) ListActive(_ context.Context) ([]*entity.Product, error) {
	defer r.guard(false)()
	out := r.filter(func(*entity.Product) bool { return true })
	slices.SortFunc(out, func(a, b *entity.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *ProductRepo) Search(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	name := strings.ToLower(strings.TrimSpace(f.Name))
	category := strings.TrimSpace(f.Category)
	defer r.guard(false)()
	out := r.filter(func(p *entity.Product) bool {
		if name != "" && !strings.Contains(strings.ToLower(p.Name), name) {
			return false
		}
		return category == "" || p.Category == category
	})
	sortByName(out)
	return out, nil
}

func (r *ProductRepo) ListByCategory(_ context.Context, category string) ([]*entity.Product, error) {
	defer r.guard(false)()
	out := r.filter(func(p *entity.Product) bool { return p.Category == category })
	sortByName(out)
	return out, nil
}

func (r *ProductRepo) ListLowStock(_ context.Context, threshold int) ([]*entity.Product, error) {
	defer r.guard(false)()
	out := r.filter(func(p *entity.Product) bool { return p.Quantity < threshold })
	slices.SortFunc(out, func(a, b *entity.Product) int {
		if c := cmp.Compare(a.Quantity, b.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Update conserva la cantidad almacenada: el valor de product.Quantity se ignora.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	defer r.guard(true)()
	cur, ok := r.st.products[product.ID]
	if !ok || !cur.Active {
		return domain.ErrNotFound
	}
	if other := r.activeByCode(product.Code); other != nil && other.ID != product.ID {
		return domain.ErrDuplicateCode
	}
	cur.Code = product.Code
	cur.Name = product.Name
	cur.Description = product.Description
	cur.Price = product.Price
	cur.Category = product.Category
	r.st.products[cur.ID] = cur
	product.Quantity = cur.Quantity
	product.Active = cur.Active
	product.CreatedAt = cur.CreatedAt
	return nil
}

func (r *ProductRepo) Deactivate(_ context.Context, id int64) error {
	defer r.guard(true)()
	p, ok := r.st.products[id]
	if !ok || !p.Active {
		return domain.ErrNotFound
	}
	p.Active = false
	r.st.products[id] = p
	return nil
}

func (r *ProductRepo) InventoryValue(_ context.Context) (decimal.Decimal, error) {
	defer r.guard(false)()
	total := decimal.Zero
	for _, p := range r.st.products {
		if p.Active {
			total = total.Add(p.StockValue())
		}
	}
	return total, nil
}

func (r *ProductRepo) Stats(_ context.Context, lowStockThreshold int) (*repository.ProductStats, error) {
	defer r.guard(false)()
	stats := &repository.ProductStats{InventoryValue: decimal.Zero}
	for _, p := range r.st.products {
		if !p.Active {
			continue
		}
		stats.Active++
		switch {
		case p.Quantity == 0:
			stats.OutOfStock++
		case p.Quantity < lowStockThreshold:
			stats.InStock++
			stats.LowStock++
		default:
			stats.InStock++
		}
		stats.InventoryValue = stats.InventoryValue.Add(p.StockValue())
	}
	return stats, nil
}

// AtomicDecrement comprobación y escritura bajo el mismo candado.
func (r *ProductRepo) AtomicDecrement(_ context.Context, id int64, amount int) (bool, error) {
	defer r.guard(true)()
	p, ok := r.st.products[id]
	if !ok || !p.Active || amount <= 0 || p.Quantity < amount {
		return false, nil
	}
	p.Quantity -= amount
	r.st.products[id] = p
	return true, nil
}

func (r *ProductRepo) AtomicIncrement(_ context.Context, id int64, amount int) (bool, error) {
	defer r.guard(true)()
	p, ok := r.st.products[id]
	if !ok || !p.Active || amount <= 0 {
		return false, nil
	}
	p.Quantity += amount
	r.st.products[id] = p
	return true, nil
}

// activeByCode el predicado de "solo activos" vive aquí y en filter.
func (r *ProductRepo) activeByCode(code string) *entity.Product {
	for _, p := range r.st.products {
		if p.Active && p.Code == code {
			return &p
		}
	}
	return nil
}

func (r *ProductRepo) filter(keep func(*entity.Product) bool) []*entity.Product {
	out := make([]*entity.Product, 0)
	for _, p := range r.st.products {
		if !p.Active {
			continue
		}
		if keep(&p) {
			out = append(out, &p)
		}
	}
	return out
}

func sortByName(out []*entity.Product) {
	slices.SortFunc(out, func(a, b *entity.Product) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
