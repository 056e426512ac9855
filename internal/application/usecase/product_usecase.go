package usecase

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// ProductUseCase casos de uso de productos. Las existencias solo cambian por ventas o por Restock.
type ProductUseCase struct {
	repo              repository.ProductRepository
	formatter         *money.Formatter
	lowStockThreshold int
	logger            zerolog.Logger
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, formatter *money.Formatter, lowStockThreshold int, logger zerolog.Logger) *ProductUseCase {
	return &ProductUseCase{
		repo:              repo,
		formatter:         formatter,
		lowStockThreshold: lowStockThreshold,
		logger:            logger.With().Str("component", "products").Logger(),
	}
}

// Create crea un producto activo. ErrDuplicateCode si el código ya existe entre activos.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	product := &entity.Product{
		Code:        strings.TrimSpace(in.Code),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price.Decimal,
		Quantity:    in.Quantity,
		Category:    strings.TrimSpace(in.Category),
		Active:      true,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	uc.logger.Info().Int64("product_id", product.ID).Str("product_code", product.Code).Msg("producto creado")
	return dto.ToProductResponse(product, uc.formatter), nil
}

// GetByID incluye productos desactivados (historial de ventas).
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToProductResponse(product, uc.formatter), nil
}

// GetByCode solo productos activos.
func (uc *ProductUseCase) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return dto.ToProductResponse(product, uc.formatter), nil
}

// List productos activos; sin filtros por ID, con filtros por nombre.
func (uc *ProductUseCase) List(ctx context.Context, f dto.ProductFilterRequest) ([]dto.ProductResponse, error) {
	filter := repository.ProductFilter{Name: strings.TrimSpace(f.Name), Category: strings.TrimSpace(f.Category)}
	var (
		list []*entity.Product
		err  error
	)
	switch {
	case filter.Name == "" && filter.Category == "":
		list, err = uc.repo.ListActive(ctx)
	case filter.Name == "":
		list, err = uc.repo.ListByCategory(ctx, filter.Category)
	default:
		list, err = uc.repo.Search(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	return dto.ToProductList(list, uc.formatter), nil
}

// ListLowStock threshold <= 0 usa el umbral configurado.
func (uc *ProductUseCase) ListLowStock(ctx context.Context, threshold int) ([]dto.ProductResponse, error) {
	if threshold <= 0 {
		threshold = uc.lowStockThreshold
	}
	list, err := uc.repo.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, err
	}
	return dto.ToProductList(list, uc.formatter), nil
}

// ListOutOfStock productos activos sin existencias.
func (uc *ProductUseCase) ListOutOfStock(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.ListLowStock(ctx, 1)
	if err != nil {
		return nil, err
	}
	return dto.ToProductList(list, uc.formatter), nil
}

// Update modifica datos y precio. La cantidad no se toca.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.Active {
		return nil, domain.ErrNotFound
	}
	if in.Code != nil {
		product.Code = strings.TrimSpace(*in.Code)
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		product.Price = in.Price.Decimal
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product, uc.formatter), nil
}

// Delete borrado lógico.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	if err := uc.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	uc.logger.Info().Int64("product_id", id).Msg("producto desactivado")
	return nil
}

// Restock entrada de mercancía vía incremento atómico.
func (uc *ProductUseCase) Restock(ctx context.Context, id int64, quantity int) (*dto.ProductResponse, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	}
	ok, err := uc.repo.AtomicIncrement(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotFound
	}
	uc.logger.Info().Int64("product_id", id).Int("quantity", quantity).Msg("reabastecimiento")
	return uc.GetByID(ctx, id)
}

// Stats resumen del inventario activo.
func (uc *ProductUseCase) Stats(ctx context.Context) (*dto.ProductStatsResponse, error) {
	s, err := uc.repo.Stats(ctx, uc.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductStatsResponse{
		Active:         s.Active,
		InStock:        s.InStock,
		LowStock:       s.LowStock,
		OutOfStock:     s.OutOfStock,
		InventoryValue: s.InventoryValue,
	}
	if uc.formatter != nil {
		out.InventoryValueFormatted = uc.formatter.Format(s.InventoryValue)
	}
	return out, nil
}

// InventoryValue suma de precio * cantidad de los activos.
func (uc *ProductUseCase) InventoryValue(ctx context.Context) (decimal.Decimal, error) {
	return uc.repo.InventoryValue(ctx)
}

const importColumns = 6

// ImportCSV crea productos desde filas code,name,description,price,quantity,category.
// El separador puede ser "," o ";" (se detecta en la primera línea) y la cabecera es opcional.
// Los precios pasan por money.Parse, así que aceptan cualquier formato regional.
// Las filas inválidas se reportan sin abortar la importación.
func (uc *ProductUseCase) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportResult, error) {
	br := bufio.NewReader(r)
	first, err := br.Peek(br.Size())
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, err
	}
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if line, _, _ := strings.Cut(string(first), "\n"); strings.Count(line, ";") > strings.Count(line, ",") {
		reader.Comma = ';'
	}

	result := &dto.ImportResult{Errors: make([]dto.ImportRowError, 0)}
	row := 0
	for first := true; ; first = false {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv: %s", domain.ErrInvalidInput, err)
		}
		if first && isHeader(record) {
			continue
		}
		row++
		product, perr := productFromRecord(record)
		if perr != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Code: cell(record, 0), Message: perr.Error()})
			continue
		}
		if err := uc.repo.Create(ctx, product); err != nil {
			if !errors.Is(err, domain.ErrDuplicateCode) {
				return nil, err
			}
			result.Errors = append(result.Errors, dto.ImportRowError{Row: row, Code: product.Code, Message: err.Error()})
			continue
		}
		result.Created++
	}
	uc.logger.Info().Int("created", result.Created).Int("rejected", len(result.Errors)).Msg("importación de productos")
	return result, nil
}

func productFromRecord(record []string) (*entity.Product, error) {
	if len(record) != importColumns {
		return nil, fmt.Errorf("%w: se esperaban %d columnas, hay %d", domain.ErrInvalidInput, importColumns, len(record))
	}
	price, err := money.Parse(record[3])
	if err != nil {
		return nil, err
	}
	qty, err := strconv.Atoi(strings.TrimSpace(record[4]))
	if err != nil {
		return nil, fmt.Errorf("%w: cantidad %q", domain.ErrInvalidInput, record[4])
	}
	p := &entity.Product{
		Code:        strings.TrimSpace(record[0]),
		Name:        strings.TrimSpace(record[1]),
		Description: strings.TrimSpace(record[2]),
		Price:       price,
		Quantity:    qty,
		Category:    strings.TrimSpace(record[5]),
		Active:      true,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff")))
	return first == "code" || first == "codigo" || first == "código"
}

func cell(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}
	return ""
}
