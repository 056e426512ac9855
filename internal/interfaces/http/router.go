package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ventas-pos/internal/application/auth"
	"github.com/jhoicas/ventas-pos/internal/application/billing"
	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/application/usecase"
	"github.com/jhoicas/ventas-pos/internal/domain/authz"
	"github.com/jhoicas/ventas-pos/internal/interfaces/ws"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// RouterDeps dependencias para el router. Hub es opcional.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *usecase.ProductUseCase
	UserUC      *usecase.UserUseCase
	ReportUC    *usecase.ReportUseCase
	ProcessSale *sales.ProcessSaleUseCase
	SaleQuery   *sales.SaleQueryUseCase
	InvoiceUC   *billing.InvoiceUseCase
	PDFUC       *billing.PDFUseCase
	Hub         *ws.Hub
	Formatter   *money.Formatter
	Location    *time.Location
	JWTSecret   string
	Logger      zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	validate := NewValidator()
	log := deps.Logger.With().Str("component", "http").Logger()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if deps.Hub != nil {
		app.Use("/ws", ws.Upgrade())
		app.Get("/ws", deps.Hub.Handler())
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, validate, log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	consult := RequireAction(authz.ConsultData)
	manage := RequireAction(authz.ManageProducts)
	sell := RequireAction(authz.ProcessSales)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC, validate, log)
	products.Get("/", consult, productHandler.List)
	products.Get("/low-stock", consult, productHandler.LowStock)
	products.Get("/stats", consult, productHandler.Stats)
	products.Get("/code/:code", consult, productHandler.GetByCode)
	products.Get("/:id", consult, productHandler.GetByID)
	products.Post("/", manage, productHandler.Create)
	products.Post("/import", manage, productHandler.Import)
	products.Put("/:id", manage, productHandler.Update)
	products.Delete("/:id", manage, productHandler.Delete)
	products.Post("/:id/restock", manage, productHandler.Restock)

	// Sales
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.ProcessSale, deps.SaleQuery, deps.InvoiceUC, deps.PDFUC, deps.Formatter, deps.Location, validate, log)
	salesGroup.Post("/validate", sell, saleHandler.Validate)
	salesGroup.Post("/", sell, saleHandler.Create)
	salesGroup.Get("/", consult, saleHandler.List)
	salesGroup.Get("/today", consult, saleHandler.Today)
	salesGroup.Get("/:id", consult, saleHandler.GetByID)
	salesGroup.Delete("/:id", manage, saleHandler.Delete)
	salesGroup.Post("/:id/invoice", sell, saleHandler.Invoice)
	salesGroup.Post("/:id/invoice.pdf", sell, saleHandler.InvoicePDF)

	// Reports
	reports := protected.Group("/reports", RequireAction(authz.GenerateReports))
	reportHandler := NewReportHandler(deps.ReportUC, deps.Location, log)
	reports.Get("/summary", reportHandler.Summary)
	reports.Get("/top-products", reportHandler.TopProducts)
	reports.Get("/range", reportHandler.Range)
	reports.Get("/sellers", reportHandler.Sellers)
	reports.Get("/critical-stock", reportHandler.CriticalStock)
	reports.Get("/out-of-stock", reportHandler.OutOfStock)

	// Users: la contraseña propia no exige CreateUsers.
	users := protected.Group("/users")
	users.Put("/me/password", authHandler.ChangePassword)
	admin := RequireAction(authz.CreateUsers)
	userHandler := NewUserHandler(deps.UserUC, validate, log)
	users.Post("/", admin, userHandler.Create)
	users.Get("/", admin, userHandler.List)
	users.Get("/:id", admin, userHandler.GetByID)
	users.Delete("/:id", admin, userHandler.Deactivate)
}
