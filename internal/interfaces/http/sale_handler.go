package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-pos/internal/application/billing"
	"github.com/jhoicas/ventas-pos/internal/application/dto"
	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/domain/entity"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// SaleHandler registro, consulta y facturación de ventas (protegido).
type SaleHandler struct {
	process   *sales.ProcessSaleUseCase
	query     *sales.SaleQueryUseCase
	invoices  *billing.InvoiceUseCase
	pdf       *billing.PDFUseCase
	formatter *money.Formatter
	loc       *time.Location
	validate  *Validator
	log       zerolog.Logger
}

// NewSaleHandler construye el handler. loc es la zona horaria de los filtros por día.
func NewSaleHandler(
	process *sales.ProcessSaleUseCase,
	query *sales.SaleQueryUseCase,
	invoices *billing.InvoiceUseCase,
	pdf *billing.PDFUseCase,
	formatter *money.Formatter,
	loc *time.Location,
	validate *Validator,
	log zerolog.Logger,
) *SaleHandler {
	if loc == nil {
		loc = time.Local
	}
	return &SaleHandler{
		process:   process,
		query:     query,
		invoices:  invoices,
		pdf:       pdf,
		formatter: formatter,
		loc:       loc,
		validate:  validate,
		log:       log,
	}
}

// Validate godoc
// @Summary      Validar carrito contra el inventario
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Líneas (código, cantidad)"
// @Success      200   {object}  dto.ValidateCartResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales/validate [post]
func (h *SaleHandler) Validate(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := h.validate.bind(c, &in); !ok {
		return err
	}
	resolved, err := h.process.ValidateCart(c.UserContext(), cartLines(in))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.ValidateCartResponse{Valid: true, Lines: make([]dto.ValidatedLineResponse, 0, len(resolved)), Total: decimal.Zero}
	for _, r := range resolved {
		subtotal := r.Product.Price.Mul(decimal.NewFromInt(int64(r.Quantity)))
		out.Lines = append(out.Lines, dto.ValidatedLineResponse{
			Code:      r.Product.Code,
			Name:      r.Product.Name,
			Quantity:  r.Quantity,
			Available: r.Product.Quantity,
			UnitPrice: r.Product.Price,
			Subtotal:  subtotal,
		})
		out.Total = out.Total.Add(subtotal)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Registrar venta
// @Description  El vendedor es el usuario del token. Todo o nada: si una línea falla no se descuenta nada.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Líneas (código, cantidad)"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := h.validate.bind(c, &in); !ok {
		return err
	}
	sale, err := h.process.Checkout(c.UserContext(), GetUserID(c), cartLines(in))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToSaleResponse(sale, h.formatter))
}

// List godoc
// @Summary      Listar ventas (más recientes primero)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        date       query  string  false  "Día YYYY-MM-DD"
// @Param        seller_id  query  int     false  "Vendedor"
// @Success      200        {array}  dto.SaleResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		list []*entity.Sale
		err  error
	)
	sellerID := int64(c.QueryInt("seller_id", 0))
	switch date := c.Query("date"); {
	case date != "":
		day, perr := time.ParseInLocation(time.DateOnly, date, h.loc)
		if perr != nil {
			return badRequest(c, "INVALID_DATE", "date debe tener formato YYYY-MM-DD")
		}
		list, err = h.query.ListByDate(ctx, day)
	case sellerID > 0:
		list, err = h.query.ListBySeller(ctx, sellerID)
	default:
		list, err = h.query.List(ctx)
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	if sellerID > 0 && c.Query("date") != "" {
		list = filterSeller(list, sellerID)
	}
	return c.JSON(dto.ToSaleList(list, h.formatter))
}

// Today godoc
// @Summary      Total vendido hoy
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DailyTotalResponse
// @Router       /api/sales/today [get]
func (h *SaleHandler) Today(c *fiber.Ctx) error {
	total, count, err := h.query.Today(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DailyTotalResponse{
		Date:  time.Now().In(h.loc).Format(time.DateOnly),
		Count: count,
		Total: total,
	})
}

// GetByID godoc
// @Summary      Detalle de una venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	sale, err := h.query.GetByID(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToSaleResponse(sale, h.formatter))
}

// Delete godoc
// @Summary      Eliminar venta
// @Description  Borra cabecera y líneas. No devuelve unidades al inventario.
// @Tags         sales
// @Security     Bearer
// @Param        id   path  int  true  "ID de la venta"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	if err := h.query.Delete(c.UserContext(), id); err != nil {
		return writeError(c, h.log, err)
	}
	h.log.Info().Int64("sale_id", id).Int64("user_id", GetUserID(c)).Msg("venta eliminada")
	return c.SendStatus(fiber.StatusNoContent)
}

// Invoice godoc
// @Summary      Factura de una venta
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                 true  "ID de la venta"
// @Param        body  body  dto.InvoiceRequest  true  "Datos del cliente"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/invoice [post]
func (h *SaleHandler) Invoice(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.InvoiceRequest
	if ok, err := h.validate.bind(c, &in); !ok {
		return err
	}
	inv, err := h.invoices.Build(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToInvoiceResponse(inv, h.formatter))
}

// InvoicePDF godoc
// @Summary      Factura de una venta en PDF
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      application/pdf
// @Param        id    path  int                 true  "ID de la venta"
// @Param        body  body  dto.InvoiceRequest  true  "Datos del cliente"
// @Success      200   {file}  binary
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/invoice.pdf [post]
func (h *SaleHandler) InvoicePDF(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return invalidID(c)
	}
	var in dto.InvoiceRequest
	if ok, err := h.validate.bind(c, &in); !ok {
		return err
	}
	data, filename, err := h.pdf.DownloadInvoicePDF(c.UserContext(), id, in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Attachment(filename)
	return c.Send(data)
}

func cartLines(in dto.CreateSaleRequest) []entity.CartLine {
	lines := make([]entity.CartLine, 0, len(in.Items))
	for _, it := range in.Items {
		lines = append(lines, entity.CartLine{Code: it.Code, Quantity: it.Quantity})
	}
	return lines
}

func filterSeller(list []*entity.Sale, sellerID int64) []*entity.Sale {
	out := list[:0]
	for _, s := range list {
		if s.SellerID() == sellerID {
			out = append(out, s)
		}
	}
	return out
}
