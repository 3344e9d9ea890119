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

	appcmv "github.com/jhoicas/cmv-api/internal/application/cmv"
	"github.com/jhoicas/cmv-api/internal/infrastructure/lock"
	"github.com/jhoicas/cmv-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/cmv-api/internal/interfaces/http"
	"github.com/jhoicas/cmv-api/pkg/config"
	"github.com/jhoicas/cmv-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Lock distribuido por local: solo con Redis configurado.
	var locker appcmv.VenueLocker = appcmv.NoopLocker()
	if cfg.Redis.Addr != "" {
		rdb, err := lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = lock.NewRedisVenueLocker(rdb, cfg.Redis.LockTTL, log.Component("venue_lock"))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("lock distribuido de recálculo activo")
	} else {
		log.Warn().Msg("REDIS_ADDR vacío: recálculos masivos sin lock distribuido")
	}

	weeklyRepo := postgres.NewWeeklyCmvRepository(pool)
	venueRepo := postgres.NewVenueRepository(pool)
	snapshotRepo := postgres.NewInventorySnapshotRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)

	auditor := appcmv.NewAuditor(auditRepo, log.Component("audit"))
	store := appcmv.NewRecordStore(weeklyRepo, auditor, appcmv.NewAuditHealthReporter(auditor, log.Component("health")))

	mapping := appcmv.NewCategoryMapping(cfg.CMV.FoodCategories, cfg.CMV.BeverageCategories, cfg.CMV.DrinksCategories)
	purchases := appcmv.NewPurchaseAggregator(postgres.NewPurchaseLedgerRepository(pool), mapping)
	revenue := appcmv.NewRevenueAggregator(postgres.NewSalesLedgerRepository(pool))
	resolver := appcmv.NewSnapshotResolver(snapshotRepo, cfg.CMV.SnapshotHorizonDays)
	cma := appcmv.NewCmaEngine(resolver, purchases, cfg.CMV.CmaStockCategories, cfg.CMV.CmaPurchaseCategories)

	weeklySync := appcmv.NewWeeklySync(venueRepo, revenue, purchases, resolver, cma, store, log.Component("weekly_sync"))
	bulk := appcmv.NewBulkRecalculator(weeklyRepo, store, locker, cfg.CMV.BulkPreviewLimit, cfg.CMV.BulkVenueConcurrency, log.Component("bulk_recalc"))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Minute * 10, // recálculos masivos y sincronización retroactiva
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs (generado con swag init)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "CMV API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		JWTSecret: cfg.JWT.Secret,
		Cmv: httpRouter.CmvHandlerDeps{
			Sync:             weeklySync,
			Store:            store,
			Bulk:             bulk,
			Retro:            appcmv.NewRetroSync(weeklySync, cfg.CMV.RetroDelay, log.Component("retro_sync")),
			Health:           appcmv.NewHealthScorer(weeklyRepo),
			Cma:              cma,
			Snapshots:        appcmv.NewSnapshotRegistry(snapshotRepo, auditor),
			Venues:           venueRepo,
			DefaultDateField: cfg.CMV.PurchaseDateField,
			Log:              log.Component("http"),
		},
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
