package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"worktime/internal/config"
	"worktime/internal/enrich"
	"worktime/internal/handler"
	"worktime/internal/logger"
	"worktime/internal/middleware"
	"worktime/internal/repository"
	"worktime/internal/service"
	"worktime/internal/store"
	"worktime/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	reportLoc, _ := cfg.Report.Location() // checked by Validate

	// --- Persistence ---
	kv, closeStore, err := openStore(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	// --- Enrichment ---
	var enricher enrich.Enricher = enrich.Noop{}
	if cfg.Gemini.APIKey != "" {
		gemini, err := enrich.NewGemini(context.Background(), cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Timeout)
		if err != nil {
			appLogger.Warn("gemini disabled", zap.Error(err))
		} else {
			enricher = gemini
			appLogger.Info("gemini enrichment enabled", zap.String("model", cfg.Gemini.Model))
		}
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(cfg.JWT.SecretKey, cfg.JWT.ExpirationHours)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(kv)
	deviceRepo := repository.NewDeviceRepository(kv)
	workLogRepo := repository.NewWorkLogRepository(kv)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, deviceRepo, service.NewAdminPolicy(cfg.Admin.Usernames), jwtUtil, appLogger)
	sessionService := service.NewSessionService(workLogRepo, enricher, service.SessionOptions{
		MaxMeters:        cfg.Proximity.MaxMeters,
		EnforceProximity: cfg.Proximity.Enforce,
	}, appLogger)
	reportService := service.NewReportService(workLogRepo, reportLoc, appLogger)

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService, appLogger)
	sessionHandler := handler.NewSessionHandler(sessionService, appLogger)
	reportHandler := handler.NewReportHandler(reportService, reportLoc, appLogger)

	// --- Setup Gin Router ---
	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(appLogger), middleware.CORS())

	jwtAuthMW := middleware.JWTAuthMiddleware(jwtUtil)
	adminRoleMW := middleware.AdminMiddleware()

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup)
	sessionHandler.RegisterSessionRoutes(apiGroup, jwtAuthMW)
	reportHandler.RegisterReportRoutes(apiGroup, jwtAuthMW, adminRoleMW)

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := kv.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "store": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.Store.Driver})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		appLogger.Info("server starting", zap.String("port", cfg.Server.Port), zap.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("server forced to shutdown", zap.Error(err))
	}

	appLogger.Info("server exiting")
}

// openStore connects the configured KV driver and returns its cleanup func
func openStore(cfg *config.Config, logger *zap.Logger) (store.KV, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pool, err := config.ConnectDB(cfg.DB, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := config.AutoMigrate(pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return store.NewPostgres(pool), pool.Close, nil
	case config.StoreRedis:
		rdb, err := config.ConnectRedis(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedis(rdb, cfg.Redis.Prefix), func() { _ = rdb.Close() }, nil
	default:
		logger.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), func() {}, nil
	}
}
