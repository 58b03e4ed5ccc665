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
	"go.uber.org/zap"

	_ "github.com/noah-isme/ssps-api/api/swagger"
	"github.com/noah-isme/ssps-api/internal/handler"
	"github.com/noah-isme/ssps-api/internal/repository"
	"github.com/noah-isme/ssps-api/internal/service"
	"github.com/noah-isme/ssps-api/pkg/cache"
	"github.com/noah-isme/ssps-api/pkg/config"
	"github.com/noah-isme/ssps-api/pkg/database"
	"github.com/noah-isme/ssps-api/pkg/logger"
)

// @title SSPS API
// @version 1.0.0
// @description Study planner graduation service
// @BasePath /api
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, redisClient != nil)

	resolver := service.NewRequirementResolver(repository.NewPlannerRepository(db), logr)
	graduationSvc := service.NewGraduationService(service.GraduationServiceParams{
		Students:     repository.NewStudentRepository(db),
		StudentUnits: repository.NewStudentUnitRepository(db),
		Resolver:     resolver,
		Weights:      service.NewCreditWeights(cfg.Graduation),
		StrictMode:   cfg.Graduation.StrictMode,
		MinCredits:   cfg.Graduation.MinCredits,
		Cache:        cacheSvc,
		Metrics:      metricsSvc,
		Logger:       logr,
	})
	exportSvc := service.NewExportService(graduationSvc, nil, nil, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recomputeSvc := service.NewRecomputeService(graduationSvc, cfg.Recompute, metricsSvc, logr)
	recomputeSvc.Start(context.Background())

	validate := validator.New()
	handlers := routeHandlers{
		graduation: handler.NewGraduationHandler(graduationSvc, exportSvc, recomputeSvc, validate),
		metrics:    handler.NewMetricsHandler(metricsSvc, db),
	}
	if cfg.Analytics.Enabled {
		analyticsSvc := service.NewAnalyticsService(repository.NewAnalyticsRepository(db), cacheSvc, metricsSvc, cfg.Analytics.CacheTTL, logr)
		handlers.analytics = handler.NewAnalyticsHandler(analyticsSvc, validate)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logr, metricsSvc, handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := recomputeSvc.Shutdown(shutdownCtx); err != nil {
		logr.Warn("recompute queue did not drain", zap.Error(err))
	}
	logr.Info("server stopped")
}
