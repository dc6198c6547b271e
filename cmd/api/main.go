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
	"github.com/jhoicas/Almacen-api/internal/application/adjustment"
	"github.com/jhoicas/Almacen-api/internal/application/outbound"
	"github.com/jhoicas/Almacen-api/internal/application/receipt"
	appstock "github.com/jhoicas/Almacen-api/internal/application/stock"
	"github.com/jhoicas/Almacen-api/internal/application/transfer"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/memory"
	"github.com/jhoicas/Almacen-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Almacen-api/internal/interfaces/http"
	"github.com/jhoicas/Almacen-api/pkg/config"
	"github.com/jhoicas/Almacen-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Persistencia: PostgreSQL en despliegues reales, memoria para desarrollo
	// y demos (sin DATABASE_URL ni DB_HOST configurados).
	var (
		txRunner  appstock.TxRunner
		readRepos *repository.Set
	)
	if cfg.DB.InMemory() {
		log.Warn().Msg("sin configuración de base de datos: usando almacén en memoria")
		store := memory.New()
		txRunner = memory.NewTxRunner(store)
		readRepos = store.ReadRepos()
	} else {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		readRepos = postgres.NewSet(pool)
	}

	engine := appstock.NewEngine()

	queries := appstock.NewQueryUseCase(readRepos.Stocks, readRepos.Ledger, readRepos.Serials)
	openingUC := appstock.NewOpeningBalanceUseCase(txRunner, engine, log)
	lowStockUC := appstock.NewLowStockUseCase(readRepos.Stocks, readRepos.Products)
	reservationUC := appstock.NewReservationUseCase(txRunner, engine, log)
	receiptUC := receipt.NewUseCase(txRunner, engine, log)
	challanUC := outbound.NewUseCase(outbound.DeliveryChallanPolicy, txRunner, engine, log)
	shipmentUC := outbound.NewUseCase(outbound.B2BShipmentPolicy, txRunner, engine, log)
	adjustmentUC := adjustment.NewUseCase(txRunner, engine, log)
	transferUC := transfer.NewUseCase(txRunner, engine, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	app.Use(recover.New())
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Almacén API Docs",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": cfg.App.Name,
		})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Queries:        queries,
		OpeningBalance: openingUC,
		LowStock:       lowStockUC,
		Reservations:   reservationUC,
		ReceiptUC:      receiptUC,
		ChallanUC:      challanUC,
		ShipmentUC:     shipmentUC,
		AdjustmentUC:   adjustmentUC,
		TransferUC:     transferUC,
		JWTSecret:      cfg.JWT.Secret,
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
