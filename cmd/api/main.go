package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/jhoicas/emza-api/internal/application/billing"
	"github.com/jhoicas/emza-api/internal/application/inventory"
	"github.com/jhoicas/emza-api/internal/application/usecase"
	"github.com/jhoicas/emza-api/internal/domain/repository"
	"github.com/jhoicas/emza-api/internal/infrastructure/idempotency"
	"github.com/jhoicas/emza-api/internal/infrastructure/memory"
	"github.com/jhoicas/emza-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/emza-api/internal/interfaces/http"
	"github.com/jhoicas/emza-api/pkg/config"
	"github.com/jhoicas/emza-api/pkg/logger"
)

// txRunner lo cumplen postgres.TxRunner y memory.Store.
type txRunner interface {
	inventory.TxRunner
	billing.TxRunner
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Bool("ledger_allow_negative", cfg.Ledger.AllowNegative).
		Msg("iniciando aplicación")

	if err := run(context.Background(), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("aplicación finalizada con error")
	}
	log.Info().Msg("aplicación detenida")
}

// run arma dependencias y sirve HTTP hasta SIGINT/SIGTERM. Los recursos abiertos se cierran al volver.
func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {

	var (
		tx        txRunner
		repos     repository.Repos
		typesRepo repository.StockTypeRepository
	)
	switch cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()
		tx, repos, typesRepo = store, store.Repos(), store.StockTypes()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			return fmt.Errorf("migraciones: %w", err)
		}
		tx = postgres.NewTxRunner(pool, cfg.DB.TxMaxRetries, log)
		repos, typesRepo = postgres.NewRepos(pool), postgres.NewStockTypeRepository(pool)
	}

	// Idempotencia de facturas: opcional, solo con REDIS_ADDR
	var idem billing.IdempotencyStore
	if cfg.Redis.Addr != "" {
		client, err := idempotency.Connect(ctx, cfg.Redis.Addr)
		if err != nil {
			return fmt.Errorf("conexión a Redis %s: %w", cfg.Redis.Addr, err)
		}
		defer client.Close()
		idem = idempotency.NewRedisStore(client, time.Duration(cfg.Redis.IdempotencyTTLMin)*time.Minute).
			WithPendingTTL(time.Duration(cfg.Redis.PendingTTLSec) * time.Second)
	}

	ledger := inventory.NewLedger(tx, inventory.LedgerConfig{AllowNegative: cfg.Ledger.AllowNegative})
	engine := inventory.NewEngine(tx, ledger, repos.Products)
	resolver := inventory.NewResolver(repos.Products, repos.RecipeLines, repos.Stocks)
	billingCfg := billing.Config{
		SalePrefix:     cfg.Billing.SalePrefix,
		PurchasePrefix: cfg.Billing.PurchasePrefix,
	}

	stockUC := usecase.NewStockUseCase(typesRepo, repos.Stocks, repos.Movements, ledger)
	productUC := usecase.NewProductUseCase(repos.Products, repos.RecipeLines, repos.Stocks, engine, resolver)
	customerUC := billing.NewCustomerUseCase(repos.Customers)
	saleBillUC := billing.NewSaleBillUseCase(tx, engine, repos, idem, billingCfg, log)
	purchaseBillUC := billing.NewPurchaseBillUseCase(tx, ledger, repos, idem, billingCfg, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs (solo si existe el JSON generado)
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "EMZA API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC:        stockUC,
		ProductUC:      productUC,
		CustomerUC:     customerUC,
		SaleBillUC:     saleBillUC,
		PurchaseBillUC: purchaseBillUC,
	})

	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(cfg.HTTP.Addr())
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		return fmt.Errorf("servidor HTTP: %w", err)
	case <-quit:
	}

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("apagado del servidor: %w", err)
	}
	return nil
}
