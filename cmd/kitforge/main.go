package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/kitforge-id/kitforge/internal/app"
	"github.com/kitforge-id/kitforge/internal/auth"
	"github.com/kitforge-id/kitforge/internal/catalog"
	"github.com/kitforge-id/kitforge/internal/changereq"
	"github.com/kitforge-id/kitforge/internal/estimate"
	"github.com/kitforge-id/kitforge/internal/forms"
	"github.com/kitforge-id/kitforge/internal/observability"
	"github.com/kitforge-id/kitforge/internal/orders"
	"github.com/kitforge-id/kitforge/internal/orders/board"
	"github.com/kitforge-id/kitforge/internal/platform/cache"
	"github.com/kitforge-id/kitforge/internal/platform/db"
	"github.com/kitforge-id/kitforge/internal/progress"
	"github.com/kitforge-id/kitforge/internal/shared"
	"github.com/kitforge-id/kitforge/internal/uploads"
	"github.com/kitforge-id/kitforge/jobs"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "kitforge_session", cfg.SessionTTL, cfg.IsProduction())
	auditLogger := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()
	loc := cfg.Location()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService)

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, 10*time.Minute)
	catalogService := catalog.NewService(catalogRepo, catalogCache, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService, auditLogger)

	estimateService := estimate.NewService(catalogService)
	estimateHandler := estimate.NewHandler(logger, estimateService)

	orderRepo := orders.NewRepository(pool)
	orderService := orders.NewService(orderRepo, catalogService, logger)
	orderHandler := orders.NewHandler(logger, orderService, auditLogger)
	boardHandler := board.NewHandler(logger, orderService, loc)

	changeReqRepo := changereq.NewRepository(pool)
	changeReqService := changereq.NewService(pool, changeReqRepo, orderRepo, logger)
	changeReqHandler := changereq.NewHandler(logger, changeReqService, auditLogger)

	progressRepo := progress.NewRepository(pool)
	progressService := progress.NewService(progressRepo, orderRepo, logger)
	progressHandler := progress.NewHandler(logger, progressService)

	storage, err := uploads.NewStorage(cfg.UploadDir, cfg.UploadBaseURL, cfg.MaxUploadBytes)
	if err != nil {
		logger.Error("init upload storage", slog.Any("error", err))
		os.Exit(1)
	}
	uploadHandler := uploads.NewHandler(logger, storage, cfg.MaxUploadBytes)

	formsRepo := forms.NewRepository(pool)
	formsHandler := forms.NewHandler(logger, formsRepo, auditLogger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		Metrics:        metrics,

		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		EstimateHandler:  estimateHandler,
		OrderHandler:     orderHandler,
		BoardHandler:     boardHandler,
		ChangeReqHandler: changeReqHandler,
		ProgressHandler:  progressHandler,
		UploadHandler:    uploadHandler,
		FormsHandler:     formsHandler,
		JobHandler:       jobHandler,

		UploadDir:     storage.Dir(),
		UploadBaseURL: cfg.UploadBaseURL,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	go func() {
		if err := catalogService.Warm(ctx); err != nil {
			logger.Warn("catalog warmup", slog.Any("error", err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
