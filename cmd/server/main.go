package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appaudit "github.com/clubhub/backend/internal/application/audit"
	financeapp "github.com/clubhub/backend/internal/application/finance"
	"github.com/clubhub/backend/internal/application/guard"
	"github.com/clubhub/backend/internal/infrastructure/auth"
	"github.com/clubhub/backend/internal/infrastructure/config"
	"github.com/clubhub/backend/internal/infrastructure/docstore"
	"github.com/clubhub/backend/internal/infrastructure/logger"
	"github.com/clubhub/backend/internal/infrastructure/persistence"
	"github.com/clubhub/backend/internal/infrastructure/telemetry"
	"github.com/clubhub/backend/internal/interfaces/http/handler"
	"github.com/clubhub/backend/internal/interfaces/http/middleware"
	"github.com/clubhub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

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
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ClubHub finance backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("store", cfg.Store.Driver),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	decimal.MarshalJSONWithoutQuotes = true
	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register request validators", zap.Error(err))
	}

	ctx := context.Background()

	// Telemetry
	providers, err := telemetry.Setup(ctx, cfg.Telemetry, telemetry.Service{
		Version:     version,
		Environment: cfg.App.Env,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	meter := providers.Meter.Meter(cfg.Telemetry.ServiceName)
	financeMetrics, err := telemetry.NewFinanceMetrics(meter)
	if err != nil {
		log.Fatal("Failed to create finance metrics", zap.Error(err))
	}

	// Document store
	var plugins []gorm.Plugin
	if cfg.Telemetry.DBTraceEnabled {
		plugins = append(plugins, telemetry.NewDBTracingPlugin(telemetry.DefaultDBTracingConfig(), log))
	}
	store, err := docstore.NewFactory(cfg,
		docstore.WithLogger(log),
		docstore.WithInMemoryFallback(cfg.Store.InMemoryFallback),
		docstore.WithGormPlugins(plugins...),
	).Open()
	if err != nil {
		log.Fatal("Failed to open document store", zap.Error(err))
	}
	log.Info("Document store ready", zap.String("driver", cfg.Store.Driver))

	// Repositories
	members := persistence.NewDocMemberRepository(store)
	transactions := persistence.NewDocTransactionRepository(store, log)
	categories := persistence.NewDocCategoryRepository(store)
	cache := persistence.NewDocBalanceCacheRepository(store)
	players := persistence.NewDocPlayerRepository(store, log)
	auditLog := persistence.NewDocAuditRepository(store)

	// Application services
	g := guard.New(members, guard.WithLogger(log), guard.WithMetrics(financeMetrics))
	recorder := appaudit.NewRecorder(auditLog, cfg.Finance.Location(), appaudit.WithLogger(log))
	opts := []financeapp.Option{financeapp.WithLogger(log), financeapp.WithMetrics(financeMetrics)}

	balanceService := financeapp.NewBalanceService(transactions, players, cache, g, recorder, cfg.Finance.CacheTTL, opts...)
	transactionService := financeapp.NewTransactionService(transactions, categories, cache, g, recorder, cfg.Finance.ImmutabilityDays, opts...)
	categoryService := financeapp.NewCategoryService(categories, transactions, g, recorder, opts...)
	mensalidadeService := financeapp.NewMensalidadeService(players, cache, g, recorder, opts...)

	// HTTP
	jwtService := auth.NewJWTService(cfg.JWT)
	engine, err := router.NewEngine(router.EngineConfig{
		HTTP:           cfg.HTTP,
		Logger:         log,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		Meter:          meter,
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	router.NewRouter(engine, router.WithAPIMiddleware(router.APIMiddleware(jwtService, log)...)).
		RegisterPublic(handler.NewHealthHandler(store, cfg.App.Name, version)).
		Register(handler.NewBalanceHandler(balanceService)).
		Register(handler.NewTransactionHandler(transactionService)).
		Register(handler.NewCategoryHandler(categoryService)).
		Register(handler.NewMensalidadeHandler(mensalidadeService)).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing document store", zap.Error(err))
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Error("Error flushing telemetry", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
