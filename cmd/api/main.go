package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/ventas-pos/internal/application/auth"
	"github.com/jhoicas/ventas-pos/internal/application/billing"
	"github.com/jhoicas/ventas-pos/internal/application/sales"
	"github.com/jhoicas/ventas-pos/internal/application/usecase"
	"github.com/jhoicas/ventas-pos/internal/domain/repository"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/cache"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/ventas-pos/internal/infrastructure/pdf"
	"github.com/jhoicas/ventas-pos/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/ventas-pos/internal/interfaces/http"
	"github.com/jhoicas/ventas-pos/internal/interfaces/ws"
	"github.com/jhoicas/ventas-pos/pkg/config"
	"github.com/jhoicas/ventas-pos/pkg/logger"
	"github.com/jhoicas/ventas-pos/pkg/money"
)

// storage repositorios de la implementación elegida por STORE_DRIVER.
type storage struct {
	products repository.ProductRepository
	users    repository.UserRepository
	sales    repository.SaleRepository
	reports  repository.ReportRepository
	tx       sales.TxRunner
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		App:   cfg.App.Name,
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	hasher, err := auth.NewPasswordHasher(cfg.Auth.PasswordScheme)
	if err != nil {
		log.Fatal().Err(err).Msg("esquema de contraseñas")
	}
	if cfg.Auth.PasswordScheme == config.PasswordSchemePlain {
		log.Warn().Msg("AUTH_PASSWORD_SCHEME=plain: las contraseñas se guardan sin hash")
	}

	formatter := money.NewFormatter(money.DefaultLocale)
	threshold := cfg.Sales.LowStockThreshold

	userUC := usecase.NewUserUseCase(store.users, hasher, log.Zerolog())
	if cfg.Auth.BootstrapPassword != "" {
		created, err := userUC.Bootstrap(ctx, cfg.Auth.BootstrapUsername, cfg.Auth.BootstrapPassword, cfg.Auth.BootstrapEmail)
		if err != nil {
			log.Fatal().Err(err).Msg("crear usuario inicial")
		}
		if created {
			log.Info().Str("username", cfg.Auth.BootstrapUsername).Msg("usuario SUPER_ADMIN inicial creado")
		}
	}

	// Caché de reportes: Redis si está configurado, si no sin caché.
	var reportCache usecase.ReportCache = cache.NoopReportCache{}
	if cfg.Redis.Enabled() {
		rc := cache.NewRedisReportCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis no disponible, reportes sin caché")
			_ = rc.Close()
		} else {
			reportCache = rc
			defer rc.Close()
		}
	}

	saleQuery := sales.NewSaleQueryUseCase(store.sales, time.Local)
	reportUC := usecase.NewReportUseCase(store.reports, store.products, saleQuery, reportCache, formatter, threshold, log.Zerolog())
	hub := ws.NewHub(formatter, 0, log.Zerolog())
	go hub.Run(ctx)

	processSale := sales.NewProcessSaleUseCase(store.tx, store.products, store.users, threshold, log.Zerolog(), reportUC, hub)
	invoiceUC := billing.NewInvoiceUseCase(store.sales, log.Zerolog())
	invoicePDFUC := billing.NewPDFUseCase(invoiceUC, infrapdf.NewMarotoPDFGenerator(formatter))

	authUC := auth.NewAuthUseCase(store.users, hasher, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Zerolog())

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.AccessLog(log.Component("access")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ventas POS API",
	}))

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		ProductUC:   usecase.NewProductUseCase(store.products, formatter, threshold, log.Zerolog()),
		UserUC:      userUC,
		ReportUC:    reportUC,
		ProcessSale: processSale,
		SaleQuery:   saleQuery,
		InvoiceUC:   invoiceUC,
		PDFUC:       invoicePDFUC,
		Hub:         hub,
		Formatter:   formatter,
		Location:    time.Local,
		JWTSecret:   cfg.JWT.Secret,
		Logger:      log.Zerolog(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		var st *memory.Store
		if cfg.Store.Seed {
			st = memory.NewSeeded()
		} else {
			st = memory.New()
		}
		log.Warn().Bool("seed", cfg.Store.Seed).Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return &storage{
			products: st.Products(),
			users:    st.Users(),
			sales:    st.Sales(),
			reports:  st.Reports(),
			tx:       st,
			close:    func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.Migrate {
		applied, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		for _, name := range applied {
			log.Info().Str("migration", name).Msg("migración aplicada")
		}
	}
	return &storage{
		products: postgres.NewProductRepository(pool),
		users:    postgres.NewUserRepository(pool),
		sales:    postgres.NewSaleRepository(pool),
		reports:  postgres.NewReportRepository(pool),
		tx:       postgres.NewTxRunner(pool),
		close:    pool.Close,
	}, nil
}
