package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/ventas-pos/internal/application/dto"
)

// PDFUseCase genera el PDF de la factura de una venta.
type PDFUseCase struct {
	invoices  *InvoiceUseCase
	generator InvoicePDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando sus dependencias.
func NewPDFUseCase(invoices *InvoiceUseCase, generator InvoicePDFGenerator) *PDFUseCase {
	return &PDFUseCase{invoices: invoices, generator: generator}
}

// DownloadInvoicePDF
//
// Retorna:
//   - (pdfBytes, filename, nil)      si todo sale bien.
//   - domain.ErrNotFound             si la venta no existe.
//   - domain.ErrInvalidInput         si faltan los datos del cliente.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, saleID int64, in dto.InvoiceRequest) (pdfBytes []byte, filename string, err error) {
	inv, err := uc.invoices.Build(ctx, saleID, in)
	if err != nil {
		return nil, "", err
	}
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, inv)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", inv.Number), nil
}
