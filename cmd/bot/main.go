package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	cartapp "github.com/shopbot/backend/internal/application/cart"
	catalogapp "github.com/shopbot/backend/internal/application/catalog"
	checkoutapp "github.com/shopbot/backend/internal/application/checkout"
	orderapp "github.com/shopbot/backend/internal/application/order"
	"github.com/shopbot/backend/internal/domain/access"
	"github.com/shopbot/backend/internal/infrastructure/cache"
	"github.com/shopbot/backend/internal/infrastructure/config"
	"github.com/shopbot/backend/internal/infrastructure/logger"
	"github.com/shopbot/backend/internal/infrastructure/persistence"
	"github.com/shopbot/backend/internal/infrastructure/telemetry"
	"github.com/shopbot/backend/internal/interfaces/http/handler"
	"github.com/shopbot/backend/internal/interfaces/http/router"
	"github.com/shopbot/backend/internal/interfaces/telegram"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting shopbot",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("env", cfg.App.Env),
		zap.String("database_driver", cfg.Database.Driver),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	productRepo := persistence.NewGormProductRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Catalog read cache: Redis when enabled, in-memory otherwise
	catalogCache, err := cache.NewCatalogCacheFactory(cfg.Redis, cache.WithLogger(log)).CreateCache()
	if err != nil {
		log.Fatal("Failed to create catalog cache", zap.Error(err))
	}
	defer func() {
		if err := catalogCache.Close(); err != nil {
			log.Error("Error closing catalog cache", zap.Error(err))
		}
	}()

	// Initialize metrics and the admin allowlist
	metrics := telemetry.NewBotMetrics()
	policy := access.NewPolicy(cfg.Bot.AdminIDs)

	// Initialize application services
	productService := catalogapp.NewProductService(productRepo, catalogCache, policy, metrics, log, cfg.Bot.PageSize)
	cartService := cartapp.NewCartService(cartRepo, productRepo, log)
	checkoutService := checkoutapp.NewCheckoutService(cartRepo, productRepo, orderRepo, metrics, log)
	orderService := orderapp.NewOrderService(orderRepo, policy, log)

	// Connect to Telegram
	bot, err := telegram.NewBot(&cfg.Bot, log)
	if err != nil {
		log.Fatal("Failed to connect to Telegram", zap.Error(err))
	}

	render := telegram.NewRenderer(cfg.Bot.CurrencySymbol)
	handlers := telegram.NewHandlers(
		productService, cartService, checkoutService, orderService,
		policy, bot.API(), render, cfg.Bot.OrdersPreview,
	)
	botRouter := telegram.NewRouter(handlers, metrics, log)

	// Operational HTTP endpoint (health, metrics, system info)
	var opsServer *http.Server
	if cfg.HTTP.Enabled {
		systemHandler := handler.NewSystemHandler(db, productService, cfg.App)
		engine := router.New(cfg.App.Env, log, metrics, systemHandler)

		opsServer = &http.Server{
			Addr:         cfg.HTTP.Addr(),
			Handler:      engine,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		}
		go func() {
			log.Info("Ops server starting", zap.String("addr", opsServer.Addr))
			if err := opsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("Failed to start ops server", zap.Error(err))
			}
		}()
	}

	// Cancel the polling loop on SIGINT/SIGTERM; Run drains in-flight updates
	// before returning.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Info("Shutting down", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := bot.Run(ctx, botRouter); err != nil {
		log.Error("Bot loop terminated with error", zap.Error(err))
	}

	if opsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Ops server forced to shutdown", zap.Error(err))
		}
	}

	log.Info("Shutdown complete")
}
