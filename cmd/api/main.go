package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/sucursales-api/internal/application/inventory"
	"github.com/jhoicas/sucursales-api/internal/application/ledger"
	"github.com/jhoicas/sucursales-api/internal/application/sales"
	"github.com/jhoicas/sucursales-api/internal/application/transfers"
	"github.com/jhoicas/sucursales-api/internal/domain/event"
	"github.com/jhoicas/sucursales-api/internal/domain/repository"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/memory"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/pdf"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/postgres"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/realtime"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/redisbus"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/telemetry"
	httpRouter "github.com/jhoicas/sucursales-api/internal/interfaces/http"
	"github.com/jhoicas/sucursales-api/internal/interfaces/ws"
	"github.com/jhoicas/sucursales-api/pkg/config"
	pkgjwt "github.com/jhoicas/sucursales-api/pkg/jwt"
	"github.com/jhoicas/sucursales-api/pkg/logger"
)

// @title                      Sucursales API
// @version                    1.0
// @description                API de ventas, traspasos e inventario multi-sucursal.
// @BasePath                   /
// @securityDefinitions.apikey Bearer
// @in                         header
// @name                       Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		panic("configuración inválida: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Otel, cfg.App.Env)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	loc, _ := cfg.App.Location()

	// Almacén: PostgreSQL en producción, memoria para desarrollo local y demos.
	var (
		tx       ledger.TxRunner
		reads    ledger.Stores
		branches repository.BranchRepository
	)
	switch cfg.DB.Driver {
	case config.StoreMemory:
		store := memory.NewStore()
		tx, reads, branches = store, store.Stores(), store.Branches()
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		tx, reads, branches = postgres.NewTxRunner(pool, cfg.DB.Retry), postgres.Bind(pool), postgres.NewBranchRepository(pool)
	}

	hub := realtime.NewHub(log.Component("realtime"))
	if cfg.Redis.Enabled() {
		rdb, err := redisbus.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		relay := redisbus.New(rdb, cfg.Redis.Channel, log.Component("redisbus"))
		hub.SetRelay(relay)
		go func() {
			if err := relay.Run(ctx, func(e event.Event) { hub.Deliver(e) }); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("relevo de eventos detenido")
			}
		}()
		log.Info().Str("channel", cfg.Redis.Channel).Str("origin", relay.Origin()).Msg("relevo entre instancias activo")
	}

	lg := ledger.New(reads.Items, reads.Logs)
	salesUC := sales.NewUseCase(tx, lg, reads.Sales, hub, loc, log.Zerolog()).
		WithReceipts(pdf.NewReceiptGenerator(), branches)
	transfersUC := transfers.NewUseCase(tx, lg, reads.Transfers, branches, hub, log.Zerolog())
	inventoryUC := inventory.NewUseCase(lg)
	verifier := pkgjwt.NewVerifier(cfg.JWT.Secret, cfg.JWT.Issuer)

	wsHandler := ws.NewHandler(hub, verifier, branches, cfg.Realtime, log.Component("ws"))
	realtimeSrv := &http.Server{
		Addr:              cfg.Realtime.Addr(),
		Handler:           wsHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	app := httpRouter.NewApp(cfg.App.Name, httpRouter.ErrorHandler(log.Zerolog()))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Zerolog()))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Sucursales API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		SalesUC:     salesUC,
		TransfersUC: transfersUC,
		InventoryUC: inventoryUC,
		Verifier:    verifier,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()
	go func() {
		log.Info().Str("addr", realtimeSrv.Addr).Msg("servidor en tiempo real escuchando")
		if err := realtimeSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("servidor en tiempo real finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidores...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor HTTP")
	}
	if err := realtimeSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor en tiempo real")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("vaciado de trazas")
	}

	log.Info().Msg("aplicación detenida")
}
