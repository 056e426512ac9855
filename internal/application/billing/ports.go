package billing

import (
	"context"

	dombilling "github.com/jhoicas/ventas-pos/internal/domain/billing"
)

// InvoicePDFGenerator renderiza la representación gráfica de una factura.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *dombilling.Invoice) ([]byte, error)
}
