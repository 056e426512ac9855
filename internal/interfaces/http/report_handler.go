package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-pos/internal/application/usecase"
)

// ReportHandler reportes de ventas e inventario (GenerateReports).
type ReportHandler struct {
	uc  *usecase.ReportUseCase
	loc *time.Location
	log zerolog.Logger
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *usecase.ReportUseCase, loc *time.Location, log zerolog.Logger) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{uc: uc, loc: loc, log: log}
}

// Summary godoc
// @Summary      Estadísticas generales
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SummaryResponse
// @Router       /api/reports/summary [get]
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// TopProducts godoc
// @Summary      Productos más vendidos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de filas"  default(10)
// @Success      200    {array}  dto.TopProductResponse
// @Router       /api/reports/top-products [get]
func (h *ReportHandler) TopProducts(c *fiber.Ctx) error {
	out, err := h.uc.TopProducts(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Sellers godoc
// @Summary      Ventas por vendedor
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SellerReportResponse
// @Router       /api/reports/sellers [get]
func (h *ReportHandler) Sellers(c *fiber.Ctx) error {
	out, err := h.uc.SalesBySeller(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Range godoc
// @Summary      Ventas en un rango de días
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  true  "Desde YYYY-MM-DD"
// @Param        to    query  string  true  "Hasta YYYY-MM-DD (incluido)"
// @Success      200   {object}  dto.RangeReportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/reports/range [get]
func (h *ReportHandler) Range(c *fiber.Ctx) error {
	from, err := time.ParseInLocation(time.DateOnly, c.Query("from"), h.loc)
	if err != nil {
		return badRequest(c, "INVALID_DATE", "from debe tener formato YYYY-MM-DD")
	}
	to, err := time.ParseInLocation(time.DateOnly, c.Query("to"), h.loc)
	if err != nil {
		return badRequest(c, "INVALID_DATE", "to debe tener formato YYYY-MM-DD")
	}
	out, err := h.uc.Range(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// CriticalStock godoc
// @Summary      Productos con stock crítico
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/reports/critical-stock [get]
func (h *ReportHandler) CriticalStock(c *fiber.Ctx) error {
	out, err := h.uc.CriticalStock(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// OutOfStock godoc
// @Summary      Productos agotados
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/reports/out-of-stock [get]
func (h *ReportHandler) OutOfStock(c *fiber.Ctx) error {
	out, err := h.uc.OutOfStock(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}
