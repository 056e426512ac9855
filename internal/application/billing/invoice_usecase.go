package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/domain"
	dombilling "github.com/jhoicas/ventas-pos/internal/domain/billing"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/pkg/nit"
)

// InvoiceUseCase arma la factura de una venta registrada. La factura no se persiste.
type InvoiceUseCase struct {
	saleRepo repository.SaleRepository
	now      func() time.Time
	logger   zerolog.Logger
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(saleRepo repository.SaleRepository, logger zerolog.Logger) *InvoiceUseCase {
	return &InvoiceUseCase{
		saleRepo: saleRepo,
		now:      time.Now,
		logger:   logger.With().Str("component", "invoices").Logger(),
	}
}

// SetClock fija la fecha de emisión (tests).
func (uc *InvoiceUseCase) SetClock(now func() time.Time) { uc.now = now }

// Build carga la venta y calcula subtotal, IVA y total.
func (uc *InvoiceUseCase) Build(ctx context.Context, saleID int64, in dto.InvoiceRequest) (*dombilling.Invoice, error) {
	customer := strings.TrimSpace(in.CustomerName)
	document := strings.TrimSpace(in.CustomerDocument)
	if customer == "" || document == "" {
		return nil, fmt.Errorf("%w: nombre y documento del cliente son obligatorios", domain.ErrInvalidInput)
	}
	// Con guion el documento es un NIT y se verifica su dígito.
	if strings.Contains(document, "-") {
		if err := nit.Validate(document); err != nil {
			return nil, fmt.Errorf("%w: documento del cliente: %w", domain.ErrInvalidInput, err)
		}
	}

	sale, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("factura: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}

	inv, err := dombilling.NewInvoice(sale, customer, document, in.WithTax(), uc.now())
	if err != nil {
		return nil, err
	}
	inv.Notes = strings.TrimSpace(in.Notes)

	uc.logger.Info().
		Int64("sale_id", sale.ID).
		Str("invoice_number", inv.Number).
		Bool("include_tax", inv.IncludeTax).
		Str("total", inv.Total.StringFixed(2)).
		Msg("factura generada")
	return inv, nil
}
