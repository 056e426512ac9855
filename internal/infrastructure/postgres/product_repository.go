package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, code, name, description, price, quantity, category, active, created_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un nuevo producto activo.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (code, name, description, price, quantity, category, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id, created_at`
	err := r.q.QueryRow(ctx, query,
		product.Code, product.Name, product.Description, product.Price, product.Quantity, product.Category,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("insert product: %w", err)
	}
	product.Active = true
	return nil
}

// GetByID obtiene un producto por ID (activo o no).
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByCode obtiene el producto activo con ese código.
func (r *ProductRepo) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	return r.getOne(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1 AND active`, code)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *ProductRepo) ListActive(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE active ORDER BY id`)
}

// Search por subcadena del nombre (ILIKE) y categoría exacta.
func (r *ProductRepo) Search(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE active
		  AND ($1 = '' OR name ILIKE $2)
		  AND ($3 = '' OR category = $3)
		ORDER BY name, id`
	return r.list(ctx, query, f.Name, likePattern(f.Name), f.Category)
}

func (r *ProductRepo) ListByCategory(ctx context.Context, category string) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE active AND category = $1 ORDER BY name, id`, category)
}

func (r *ProductRepo) ListLowStock(ctx context.Context, threshold int) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE active AND quantity < $1 ORDER BY quantity, id`, threshold)
}

func (r *ProductRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza datos y precio. La cantidad no se toca (solo vía AtomicDecrement/AtomicIncrement).
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET code = $2, name = $3, description = $4, price = $5, category = $6
		WHERE id = $1 AND active
		RETURNING quantity, created_at`
	err := r.q.QueryRow(ctx, query,
		product.ID, product.Code, product.Name, product.Description, product.Price, product.Category,
	).Scan(&product.Quantity, &product.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrDuplicateCode
		}
		return fmt.Errorf("update product: %w", err)
	}
	product.Active = true
	return nil
}

// Deactivate borrado lógico; las ventas históricas siguen referenciando el producto.
func (r *ProductRepo) Deactivate(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET active = FALSE WHERE id = $1 AND active`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(price * quantity), 0) FROM products WHERE active`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("inventory value: %w", err)
	}
	return total, nil
}

func (r *ProductRepo) Stats(ctx context.Context, lowStockThreshold int) (*repository.ProductStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE quantity > 0),
			COUNT(*) FILTER (WHERE quantity > 0 AND quantity < $1),
			COUNT(*) FILTER (WHERE quantity = 0),
			COALESCE(SUM(price * quantity), 0)
		FROM products WHERE active`
	var s repository.ProductStats
	err := r.q.QueryRow(ctx, query, lowStockThreshold).Scan(&s.Active, &s.InStock, &s.LowStock, &s.OutOfStock, &s.InventoryValue)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}
	return &s, nil
}

// AtomicDecrement la condición y la escritura van en la misma sentencia: dos ventas
// concurrentes sobre la última unidad no pueden ambas afectar la fila.
func (r *ProductRepo) AtomicDecrement(ctx context.Context, id int64, amount int) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET quantity = quantity - $2 WHERE id = $1 AND active AND quantity >= $2`,
		id, amount,
	)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *ProductRepo) AtomicIncrement(ctx context.Context, id int64, amount int) (bool, error) {
	if amount <= 0 {
		return false, nil
	}
	cmd, err := r.q.Exec(ctx, `UPDATE products SET quantity = quantity + $2 WHERE id = $1 AND active`, id, amount)
	if err != nil {
		return false, fmt.Errorf("increment stock: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.Category, &p.Active, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
