package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/coursework-api/api/swagger"
	"github.com/noah-isme/coursework-api/internal/handler"
	internalmiddleware "github.com/noah-isme/coursework-api/internal/middleware"
	"github.com/noah-isme/coursework-api/internal/models"
	"github.com/noah-isme/coursework-api/internal/repository"
	"github.com/noah-isme/coursework-api/internal/service"
	"github.com/noah-isme/coursework-api/pkg/cache"
	"github.com/noah-isme/coursework-api/pkg/config"
	"github.com/noah-isme/coursework-api/pkg/database"
	"github.com/noah-isme/coursework-api/pkg/events"
	"github.com/noah-isme/coursework-api/pkg/jobs"
	"github.com/noah-isme/coursework-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/coursework-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/coursework-api/pkg/middleware/requestid"
	"github.com/noah-isme/coursework-api/pkg/storage"
)

// @title Coursework API
// @version 1.0.0
// @description Assignment and submission listings with server-side filtering, sorting and pagination.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.Name); err != nil {
			logr.Fatal("run migrations", zap.Error(err))
		}
		logr.Info("migrations applied")
	}

	metricsSvc := service.NewMetricsService()
	readiness := map[string]handler.Pinger{"database": handler.PingFunc(db.PingContext)}

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, list cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			readiness["redis"] = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheRepo != nil)

	publisher, err := newPublisher(cfg.Events, logr)
	if err != nil {
		logr.Fatal("init event publisher", zap.Error(err))
	}
	eventSvc := service.NewEventService(publisher, metricsSvc, logr, jobs.QueueConfig{
		Workers:    cfg.Events.Workers,
		MaxRetries: cfg.Events.MaxRetries,
		RetryDelay: cfg.Events.RetryDelay,
	})
	eventSvc.Start(ctx)
	defer eventSvc.Stop()

	files, err := storage.NewLocalStorage(cfg.Files.StorageDir)
	if err != nil {
		logr.Fatal("init file storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Files.SignedURLSecret, cfg.Files.BaseURL, cfg.Files.SignedURLTTL, cfg.Files.SignedURLMaxTTL)

	validate := validator.New()
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	assignmentSvc := service.NewAssignmentService(assignmentRepo, cacheSvc, metricsSvc, eventSvc, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, signer, cacheSvc, metricsSvc, eventSvc, validate, logr)
	exportSvc := service.NewExportService(submissionSvc, logr)
	tokenSvc := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer)

	listCfg := handler.ListConfig{DefaultPageSize: cfg.Listing.DefaultPageSize, MaxPageSize: cfg.Listing.MaxPageSize}
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc, listCfg)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc, exportSvc, listCfg)
	fileHandler := handler.NewFileHandler(signer, files, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, readiness)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/health", "/ready", "/metrics"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())
	api.GET("/files/:token", fileHandler.Download)

	staff := internalmiddleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)
	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(tokenSvc))
	{
		assignments := secured.Group("/assignments")
		assignments.GET("", assignmentHandler.List)
		assignments.GET("/:id", assignmentHandler.Get)
		assignments.POST("", staff, assignmentHandler.Create)
		assignments.PUT("/:id", staff, assignmentHandler.Update)
		assignments.DELETE("/:id", staff, assignmentHandler.Delete)

		submissions := secured.Group("/submissions")
		submissions.GET("", submissionHandler.List)
		submissions.GET("/export", staff, submissionHandler.Export)
		submissions.GET("/:id", submissionHandler.Get)
		submissions.PUT("/:id/grade", staff, submissionHandler.Grade)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newPublisher(cfg config.EventsConfig, logr *zap.Logger) (events.Publisher, error) {
	if !cfg.Enabled {
		return events.NewLogPublisher(logr), nil
	}
	return events.NewKafkaPublisher(cfg.Brokers, cfg.Topic)
}
