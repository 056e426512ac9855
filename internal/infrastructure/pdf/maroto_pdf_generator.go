// Package pdf genera la factura de venta en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razón Social + NIT  │  N° Factura + Fecha          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  EMISOR: Dirección / Tel / Email                             │
//	│  CLIENTE: Nombre + documento  │  Venta N° + vendedor         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Código | Descripción | P.Unit | Subtotal      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Subtotal / IVA 19% / TOTAL A PAGAR                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: observaciones + leyenda                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	appbilling "github.com/jhoicas/ventas-pos/internal/application/billing"
	dombilling "github.com/jhoicas/ventas-pos/internal/domain/billing"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ appbilling.InvoicePDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa billing.InvoicePDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct {
	formatter *money.Formatter
}

// NewMarotoPDFGenerator construye el generador. formatter nil usa es-CO.
func NewMarotoPDFGenerator(formatter *money.Formatter) *MarotoPDFGenerator {
	if formatter == nil {
		formatter = money.NewFormatter(money.DefaultLocale)
	}
	return &MarotoPDFGenerator{formatter: formatter}
}

// GenerateInvoicePDF genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) GenerateInvoicePDF(_ context.Context, inv *dombilling.Invoice) ([]byte, error) {
	if inv == nil {
		return nil, fmt.Errorf("pdf: factura nil")
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Factura de venta "+inv.Number, true).
		WithAuthor(inv.Issuer.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(emisorRow(inv.Issuer))
	m.AddRows(clienteRow(inv))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(g.tableDetailRows(inv.Lines)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(inv))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRows(inv)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(inv *dombilling.Invoice) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New(inv.Issuer.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("NIT: "+inv.Issuer.NIT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("FACTURA DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(inv.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+inv.IssuedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func emisorRow(issuer dombilling.Issuer) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DATOS DEL EMISOR", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Dirección: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(issuer.Address, "-"),
				nonEmpty(issuer.Phone, "-"),
				nonEmpty(issuer.Email, "-"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func clienteRow(inv *dombilling.Invoice) core.Row {
	return row.New(14).Add(
		col.New(7).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(inv.CustomerName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New("NIT/CC: "+inv.CustomerDocument, props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(fmt.Sprintf("Venta N° %d", inv.SaleID), props.Text{
				Size: 8, Align: align.Right, Top: 1, Color: colorGray,
			}),
			text.New("Fecha venta: "+inv.SaleDate.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 6, Color: colorGray,
			}),
			text.New("Vendedor: "+nonEmpty(inv.SellerName, "-"), props.Text{
				Size: 8, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de detalles.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Código", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

func (g *MarotoPDFGenerator) tableDetailRows(lines []dombilling.Line) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				fmt.Sprintf("%d", l.Quantity),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(2).Add(text.New(
				l.Code,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(4).Add(text.New(
				l.Name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				g.formatter.Format(l.UnitPrice),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				g.formatter.Format(l.Subtotal),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalsRow: bloque de totales alineado a la derecha.
func (g *MarotoPDFGenerator) totalsRow(inv *dombilling.Invoice) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top,
		})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 2, Top: 14,
		})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right,
			Color: colorPrimary, Right: 1, Top: 14,
		})
	}

	taxLabel := "IVA (no aplica):"
	if inv.IncludeTax {
		taxLabel = fmt.Sprintf("IVA %s%%:", dombilling.TaxRate.Shift(2).String())
	}

	return row.New(22).Add(
		col.New(3),
		col.New(3).Add(
			label("Subtotal:", 1),
			label(taxLabel, 7),
			grandLabel("TOTAL A PAGAR:"),
		),
		col.New(3).Add(
			value(g.formatter.Format(inv.Subtotal), 1),
			value(g.formatter.Format(inv.Tax), 7),
			grandValue(g.formatter.Format(inv.Total)),
		),
		col.New(3),
	)
}

func footerRows(inv *dombilling.Invoice) []core.Row {
	var rows []core.Row
	if inv.Notes != "" {
		rows = append(rows,
			row.New(6).Add(col.New(12).Add(
				text.New("OBSERVACIONES", props.Text{
					Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
				}),
			)),
			row.New(10).Add(col.New(12).Add(
				text.New(inv.Notes, props.Text{Size: 8, Color: colorGray, Top: 1}),
			)),
		)
	}
	rows = append(rows, row.New(10).Add(col.New(12).Add(
		text.New("Gracias por su compra. Conserve este documento como soporte de la venta.", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center,
			Color: colorPrimary, Top: 2,
		}),
	)))
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
