package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// SummaryCacheKey clave del resumen general en la caché.
const SummaryCacheKey = "ventas:reports:summary"

// SummaryTTL vigencia del resumen cacheado.
const SummaryTTL = 30 * time.Second

// ReportCache caché del resumen general (Redis o noop).
type ReportCache interface {
	Get(ctx context.Context, key string) (*dto.SummaryResponse, bool, error)
	Set(ctx context.Context, key string, value *dto.SummaryResponse, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ReportUseCase reportes de ventas e inventario.
type ReportUseCase struct {
	reportRepo        repository.ReportRepository
	productRepo       repository.ProductRepository
	saleQuery         *sales.SaleQueryUseCase
	cache             ReportCache
	formatter         *money.Formatter
	lowStockThreshold int
	logger            zerolog.Logger
}

var _ sales.SaleListener = (*ReportUseCase)(nil)

// NewReportUseCase cache puede ser nil (sin caché).
func NewReportUseCase(
	reportRepo repository.ReportRepository,
	productRepo repository.ProductRepository,
	saleQuery *sales.SaleQueryUseCase,
	cache ReportCache,
	formatter *money.Formatter,
	lowStockThreshold int,
	logger zerolog.Logger,
) *ReportUseCase {
	return &ReportUseCase{
		reportRepo:        reportRepo,
		productRepo:       productRepo,
		saleQuery:         saleQuery,
		cache:             cache,
		formatter:         formatter,
		lowStockThreshold: lowStockThreshold,
		logger:            logger.With().Str("component", "reports").Logger(),
	}
}

// Summary estadísticas generales. Un fallo de la caché no impide responder.
func (uc *ReportUseCase) Summary(ctx context.Context) (*dto.SummaryResponse, error) {
	if uc.cache != nil {
		cached, ok, err := uc.cache.Get(ctx, SummaryCacheKey)
		if err != nil {
			uc.logger.Warn().Err(err).Msg("no se pudo leer el resumen en caché")
		} else if ok {
			return cached, nil
		}
	}

	count, revenue, err := uc.reportRepo.SalesTotals(ctx)
	if err != nil {
		return nil, err
	}
	_, today, err := uc.saleQuery.Today(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := uc.productRepo.Stats(ctx, uc.lowStockThreshold)
	if err != nil {
		return nil, err
	}

	out := &dto.SummaryResponse{
		TotalSales:       count,
		SalesToday:       today,
		ProductsInStock:  stats.InStock,
		LowStockProducts: stats.LowStock,
		TotalRevenue:     revenue,
		AverageSale:      AverageSale(revenue, count),
		InventoryValue:   stats.InventoryValue,
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, SummaryCacheKey, out, SummaryTTL); err != nil {
			uc.logger.Warn().Err(err).Msg("no se pudo guardar el resumen en caché")
		}
	}
	return out, nil
}

// AverageSale ingreso promedio por venta, HALF_UP a 2 decimales; 0 sin ventas.
func AverageSale(revenue decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return revenue.DivRound(decimal.NewFromInt(int64(count)), 2)
}

// TopProducts productos más vendidos por unidades.
func (uc *ReportUseCase) TopProducts(ctx context.Context, limit int) ([]dto.TopProductResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := uc.reportRepo.TopProducts(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TopProductResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopProductResponse{
			ProductID: r.ProductID,
			Code:      r.Code,
			Name:      r.Name,
			Units:     r.Units,
			Revenue:   r.Revenue,
		})
	}
	return out, nil
}

// SalesBySeller número de ventas e ingresos por vendedor.
func (uc *ReportUseCase) SalesBySeller(ctx context.Context) ([]dto.SellerReportResponse, error) {
	rows, err := uc.reportRepo.SalesBySeller(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SellerReportResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.SellerReportResponse{
			SellerID: r.SellerID,
			Username: r.Username,
			Name:     r.Name,
			Sales:    r.Sales,
			Revenue:  r.Revenue,
		})
	}
	return out, nil
}

// Range ventas e ingresos entre dos días, ambos incluidos.
func (uc *ReportUseCase) Range(ctx context.Context, from, to time.Time) (*dto.RangeReportResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: la fecha final es anterior a la inicial", domain.ErrInvalidInput)
	}
	list, err := uc.saleQuery.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	revenue, count, err := uc.saleQuery.RevenueBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &dto.RangeReportResponse{
		From:    from.Format(time.DateOnly),
		To:      to.Format(time.DateOnly),
		Count:   count,
		Revenue: revenue,
		Sales:   dto.ToSaleList(list, uc.formatter),
	}, nil
}

// CriticalStock productos activos con cantidad por debajo del umbral.
func (uc *ReportUseCase) CriticalStock(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.productRepo.ListLowStock(ctx, uc.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	return dto.ToProductList(list, uc.formatter), nil
}

// OutOfStock productos activos agotados.
func (uc *ReportUseCase) OutOfStock(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.productRepo.ListLowStock(ctx, 1)
	if err != nil {
		return nil, err
	}
	return dto.ToProductList(list, uc.formatter), nil
}

// SaleCommitted invalida el resumen cacheado.
func (uc *ReportUseCase) SaleCommitted(ctx context.Context, _ *entity.Sale, _ []*entity.Product) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, SummaryCacheKey); err != nil {
		uc.logger.Warn().Err(err).Msg("no se pudo invalidar el resumen en caché")
	}
}
