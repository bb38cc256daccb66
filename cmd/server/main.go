package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chapterhub/backend/internal/application/governance"
	"github.com/chapterhub/backend/internal/domain/chapter"
	"github.com/chapterhub/backend/internal/infrastructure/cache"
	"github.com/chapterhub/backend/internal/infrastructure/config"
	"github.com/chapterhub/backend/internal/infrastructure/event"
	"github.com/chapterhub/backend/internal/infrastructure/logger"
	"github.com/chapterhub/backend/internal/infrastructure/persistence"
	"github.com/chapterhub/backend/internal/infrastructure/state"
	"github.com/chapterhub/backend/internal/infrastructure/telemetry"
	"github.com/chapterhub/backend/internal/interfaces/http/handler"
	"github.com/chapterhub/backend/internal/interfaces/http/middleware"
	"github.com/chapterhub/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting ChapterHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize telemetry providers
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.App.Name,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Initialize database connection
	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:  cfg.Telemetry.Enabled && cfg.Telemetry.TraceSQL,
		DBSystem: "postgresql",
	}, log)
	if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Initialize repositories and lookups
	chapterRepo := persistence.NewGormChapterRepository(db.DB)
	roleRepo := persistence.NewGormChapterRoleRepository(db.DB)
	historyRecorder := persistence.NewGormHistoryRecorder(db.DB)

	// Volunteer resolution goes through a Redis cache when Redis is
	// reachable; otherwise the database lookup is used directly
	var volunteerLookup chapter.VolunteerLookup = persistence.NewGormVolunteerLookup(db.DB)
	if redisClient, err := cache.NewRedisClient(&cfg.Redis); err != nil {
		log.Warn("Redis unavailable, volunteer lookups are uncached", zap.Error(err))
	} else {
		defer func() {
			_ = redisClient.Close()
		}()
		volunteerLookup = cache.NewCachedVolunteerLookup(volunteerLookup, redisClient, cfg.Governance.VolunteerCacheTTL, log)
		log.Info("Volunteer lookup cache enabled", zap.Duration("ttl", cfg.Governance.VolunteerCacheTTL))
	}

	// Reactive state tree and bulk selection
	store := state.NewStore(log, cfg.Governance.StoreHistoryCapacity)
	selection := governance.NewSelectionTracker()

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	boardService := governance.NewBoardService(chapterRepo, roleRepo, volunteerLookup, historyRecorder, store, log)
	boardService.SetConflictPolicy(governance.ConflictPolicy(cfg.Governance.ConflictPolicy))
	boardService.SetEventPublisher(eventBus)

	bulkService := governance.NewBulkService(chapterRepo, roleRepo, historyRecorder, selection, store, log)
	bulkService.SetEventPublisher(eventBus)

	chapterService := governance.NewChapterService(chapterRepo, log)
	roleService := governance.NewRoleService(roleRepo, log)

	// Project board events into the state tree
	projector := governance.NewBoardProjector(chapterRepo, store, selection, log)
	eventBus.Subscribe(projector)
	log.Info("Board projector registered", zap.Strings("event_types", projector.EventTypes()))

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// HTTP handlers
	chapterHandler := handler.NewChapterHandler(chapterService)
	roleHandler := handler.NewRoleHandler(roleService)
	boardHandler := handler.NewBoardHandler(boardService, bulkService, selection)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.App.Name,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(chapterHandler).
		Register(roleHandler).
		Register(boardHandler)
	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
