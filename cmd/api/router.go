package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/ssps-api/internal/handler"
	internalmiddleware "github.com/noah-isme/ssps-api/internal/middleware"
	"github.com/noah-isme/ssps-api/internal/service"
	"github.com/noah-isme/ssps-api/pkg/config"
	"github.com/noah-isme/ssps-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/ssps-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ssps-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	graduation *handler.GraduationHandler
	analytics  *handler.AnalyticsHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())

	students := api.Group("/students/:id")
	students.PUT("/graduate", h.graduation.Evaluate)
	students.GET("/progress", h.graduation.Progress)
	students.GET("/graduation/export", h.graduation.Export)

	api.POST("/graduation/recompute", h.graduation.Recompute)

	if h.analytics != nil {
		analytics := api.Group("/analytics")
		analytics.GET("/graduation-summary", h.analytics.GraduationSummary)
		analytics.GET("/system", h.analytics.System)
	}

	return r
}
