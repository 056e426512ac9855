package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleSelect = `
	SELECT s.id, s.total, s.created_at, u.id, u.username, u.name, u.email, u.role, u.active, u.created_at
	FROM sales s
	JOIN users u ON u.id = s.seller_id`

// SaleRepo implementación del puerto SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera y las líneas en un único batch.
func (r *SaleRepo) Create(ctx context.Context, sale *entity.Sale) error {
	createdAt := sale.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := r.q.QueryRow(ctx,
		`INSERT INTO sales (seller_id, total, created_at) VALUES ($1, $2, $3) RETURNING id`,
		sale.SellerID(), sale.Total, createdAt,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	sale.CreatedAt = createdAt

	batch := &pgx.Batch{}
	for _, item := range sale.Items {
		batch.Queue(`
			INSERT INTO sale_line_items (sale_id, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			sale.ID, item.ProductID, item.Quantity, item.UnitPrice, item.Subtotal,
		)
	}
	br := r.q.SendBatch(ctx, batch)
	for _, item := range sale.Items {
		if err := br.QueryRow().Scan(&item.ID); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert sale item %s: %w", item.ProductCode, err)
		}
		item.SaleID = sale.ID
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}
	return nil
}

// GetByID carga la venta con vendedor y líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	sale, err := scanSale(r.q.QueryRow(ctx, saleSelect+` WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	if err := r.attachItems(ctx, []*entity.Sale{sale}); err != nil {
		return nil, err
	}
	return sale, nil
}

func (r *SaleRepo) List(ctx context.Context) ([]*entity.Sale, error) {
	return r.list(ctx, saleSelect+` ORDER BY s.created_at DESC, s.id DESC`)
}

func (r *SaleRepo) ListBetween(ctx context.Context, from, to time.Time) ([]*entity.Sale, error) {
	return r.list(ctx, saleSelect+` WHERE s.created_at >= $1 AND s.created_at < $2 ORDER BY s.created_at DESC, s.id DESC`, from, to)
}

func (r *SaleRepo) ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Sale, error) {
	return r.list(ctx, saleSelect+` WHERE s.seller_id = $1 ORDER BY s.created_at DESC, s.id DESC`, sellerID)
}

func (r *SaleRepo) TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	var (
		total decimal.Decimal
		n     int
	)
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(total), 0), COUNT(*) FROM sales WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&total, &n)
	if err != nil {
		return decimal.Zero, 0, fmt.Errorf("total sales: %w", err)
	}
	return total, n, nil
}

// Delete borra la venta; sale_line_items cae por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SaleRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	list := make([]*entity.Sale, 0)
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		list = append(list, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	if err := r.attachItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// attachItems carga las líneas de todas las ventas en una sola consulta.
// El JOIN con products incluye inactivos para que el historial siga resolviendo código y nombre.
func (r *SaleRepo) attachItems(ctx context.Context, list []*entity.Sale) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.Sale, len(list))
	ids := make([]int64, 0, len(list))
	for _, s := range list {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}
	rows, err := r.q.Query(ctx, `
		SELECT i.id, i.sale_id, i.product_id, p.code, p.name, i.quantity, i.unit_price, i.subtotal
		FROM sale_line_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.sale_id = ANY($1)
		ORDER BY i.sale_id, i.id`, ids)
	if err != nil {
		return fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductCode, &it.ProductName, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return fmt.Errorf("scan sale item: %w", err)
		}
		if s, ok := byID[it.SaleID]; ok {
			s.Items = append(s.Items, &it)
		}
	}
	return rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var (
		s    entity.Sale
		u    entity.User
		role string
	)
	if err := row.Scan(&s.ID, &s.Total, &s.CreatedAt, &u.ID, &u.Username, &u.Name, &u.Email, &role, &u.Active, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.Role(role)
	s.Seller = &u
	return &s, nil
}
