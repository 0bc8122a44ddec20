package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"storycraft-server/internal/ai"
	"storycraft-server/internal/assets"
	"storycraft-server/internal/config"
	"storycraft-server/internal/handler"
	"storycraft-server/internal/logger"
	"storycraft-server/internal/middleware"
	"storycraft-server/internal/repository"
	"storycraft-server/internal/service"
	"storycraft-server/internal/taskmanager"
	"storycraft-server/migrations"
	"storycraft-server/pkg/migration"
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	encoding := "json"
	if cfg.Env == "development" {
		encoding = "console"
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: encoding})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)
	zap.L().Info("Configuration loaded", zap.String("env", cfg.Env), zap.String("logLevel", cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pgPool, err := setupPostgres(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pgPool.Close()
	zap.L().Info("Connected to PostgreSQL")

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, pgPool, log)
	if err := migrator.Up(ctx); err != nil {
		zap.L().Fatal("Failed to apply migrations", zap.Error(err))
	}

	// --- Dependency Injection ---
	pageRepo := repository.NewPgPageRepository(pgPool, log)
	projectRepo := repository.NewPgProjectRepository(pgPool, log)
	assetStore := assets.NewStore(cfg.AssetRoot, log)

	aiClient := ai.NewClient(ai.Config{
		APIKey:          cfg.AIAPIKey,
		BaseURL:         cfg.AIBaseURL,
		TextModel:       cfg.AITextModel,
		ImageModel:      cfg.AIImageModel,
		MaxOutputTokens: cfg.AIMaxOutputTokens,
		Timeout:         cfg.AITimeout,
	}, log)

	contextBuilder := service.NewContextBuilder(service.NewTokenizer(log), cfg.ContextTokenBudget)
	pageSvc := service.NewPageService(pageRepo, projectRepo, assetStore, aiClient, contextBuilder, cfg.ImageStyleSuffix, log)
	projectSvc := service.NewProjectService(projectRepo, pageRepo, assetStore, log)
	tasks := taskmanager.New(cfg.MaxCraftTasks, log)

	// Finished craft tasks are kept for an hour so clients can poll results.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				tasks.Cleanup(time.Hour)
			case <-cleanupDone:
				return
			}
		}
	}()

	// --- HTTP Server Setup (Gin) ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(middleware.GinZapLogger(log))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if origins := cfg.GetAllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Generated images and thumbnails are served directly from the store.
	router.Static("/assets", assetStore.Root())

	h := handler.NewHandler(projectSvc, pageSvc, tasks, log)
	h.RegisterRoutes(router, cfg.JWTSecret)

	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zap.L().Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.L().Fatal("HTTP Server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("Shutting down server...")

	close(cleanupDone)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := tasks.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("Task manager shutdown incomplete", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zap.L().Error("HTTP Server forced to shutdown", zap.Error(err))
	}

	zap.L().Info("Server exited")
}

func setupPostgres(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolCfg.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
