package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
)

// SaleQueryUseCase consultas y borrado de ventas registradas.
type SaleQueryUseCase struct {
	saleRepo repository.SaleRepository
	loc      *time.Location
	now      func() time.Time
}

// NewSaleQueryUseCase construye el caso de uso. Los días se cortan en loc (nil = hora local).
func NewSaleQueryUseCase(saleRepo repository.SaleRepository, loc *time.Location) *SaleQueryUseCase {
	if loc == nil {
		loc = time.Local
	}
	return &SaleQueryUseCase{saleRepo: saleRepo, loc: loc, now: time.Now}
}

// SetClock reemplaza el reloj (tests).
func (uc *SaleQueryUseCase) SetClock(now func() time.Time) { uc.now = now }

func (uc *SaleQueryUseCase) List(ctx context.Context) ([]*entity.Sale, error) {
	return uc.saleRepo.List(ctx)
}

// GetByID venta con vendedor y líneas; las líneas se resuelven aunque el producto esté inactivo.
func (uc *SaleQueryUseCase) GetByID(ctx context.Context, id int64) (*entity.Sale, error) {
	sale, err := uc.saleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	return sale, nil
}

// ListByDate ventas del día calendario de day.
func (uc *SaleQueryUseCase) ListByDate(ctx context.Context, day time.Time) ([]*entity.Sale, error) {
	from, to := uc.dayBounds(day)
	return uc.saleRepo.ListBetween(ctx, from, to)
}

// ListBetween ventas entre los días from y to, ambos incluidos.
func (uc *SaleQueryUseCase) ListBetween(ctx context.Context, from, to time.Time) ([]*entity.Sale, error) {
	start, end, err := uc.rangeBounds(from, to)
	if err != nil {
		return nil, err
	}
	return uc.saleRepo.ListBetween(ctx, start, end)
}

// RevenueBetween ingresos entre los días from y to, ambos incluidos.
func (uc *SaleQueryUseCase) RevenueBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, int, error) {
	start, end, err := uc.rangeBounds(from, to)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return uc.saleRepo.TotalBetween(ctx, start, end)
}

func (uc *SaleQueryUseCase) ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Sale, error) {
	return uc.saleRepo.ListBySeller(ctx, sellerID)
}

// Today total vendido y número de ventas del día en curso.
func (uc *SaleQueryUseCase) Today(ctx context.Context) (decimal.Decimal, int, error) {
	from, to := uc.dayBounds(uc.now())
	return uc.saleRepo.TotalBetween(ctx, from, to)
}

// Delete borrado físico (las líneas caen en cascada). No devuelve unidades al inventario.
func (uc *SaleQueryUseCase) Delete(ctx context.Context, id int64) error {
	return uc.saleRepo.Delete(ctx, id)
}

func (uc *SaleQueryUseCase) dayBounds(day time.Time) (time.Time, time.Time) {
	d := day.In(uc.loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, uc.loc)
	return start, start.AddDate(0, 0, 1)
}

func (uc *SaleQueryUseCase) rangeBounds(from, to time.Time) (time.Time, time.Time, error) {
	start, _ := uc.dayBounds(from)
	_, end := uc.dayBounds(to)
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	return start, end, nil
}
