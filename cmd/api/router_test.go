package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/ssps-api/internal/handler"
	"github.com/noah-isme/ssps-api/internal/service"
	"github.com/noah-isme/ssps-api/pkg/config"
)

func routeSet(r *gin.Engine) map[string]struct{} {
	routes := make(map[string]struct{})
	for _, route := range r.Routes() {
		routes[route.Method+" "+route.Path] = struct{}{}
	}
	return routes
}

func testHandlers() routeHandlers {
	return routeHandlers{
		graduation: handler.NewGraduationHandler(nil, nil, nil, nil),
		metrics:    handler.NewMetricsHandler(nil, nil),
	}
}

func TestRouterRegistersGraduationRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api"}
	h := testHandlers()
	h.analytics = handler.NewAnalyticsHandler(nil, nil)

	routes := routeSet(newRouter(cfg, zap.NewNop(), nil, h))

	for _, want := range []string{
		"PUT /api/students/:id/graduate",
		"GET /api/students/:id/progress",
		"GET /api/students/:id/graduation/export",
		"POST /api/graduation/recompute",
		"GET /api/analytics/graduation-summary",
		"GET /health",
		"GET /ready",
		"GET /metrics",
	} {
		assert.Contains(t, routes, want)
	}
	assert.NotContains(t, routes, "GET /docs/*any")
}

func TestRouterOmitsDisabledAnalytics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvDevelopment, APIPrefix: "/api"}

	r := newRouter(cfg, zap.NewNop(), service.NewMetricsService(), testHandlers())
	routes := routeSet(r)

	assert.NotContains(t, routes, "GET /api/analytics/graduation-summary")
	assert.Contains(t, routes, "GET /docs/*any")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
