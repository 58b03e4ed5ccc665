package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/ssps-api/internal/dto"
	"github.com/noah-isme/ssps-api/internal/middleware"
	"github.com/noah-isme/ssps-api/internal/models"
	appErrors "github.com/noah-isme/ssps-api/pkg/errors"
	"github.com/noah-isme/ssps-api/pkg/response"
)

type analyticsService interface {
	GraduationSummary(ctx context.Context, filter models.GraduationSummaryFilter) ([]models.GraduationSummary, bool, error)
	SystemMetrics() models.SystemMetrics
}

// AnalyticsHandler exposes graduation analytics.
type AnalyticsHandler struct {
	analytics analyticsService
	validate  *validator.Validate
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics analyticsService, validate *validator.Validate) *AnalyticsHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &AnalyticsHandler{analytics: analytics, validate: validate}
}

// GraduationSummary godoc
// @Summary Graduation summary by program and major
// @Tags Analytics
// @Produce json
// @Param program query string false "Program name"
// @Success 200 {object} response.Envelope
// @Router /analytics/graduation-summary [get]
func (h *AnalyticsHandler) GraduationSummary(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "analytics is disabled"))
		return
	}
	var query dto.GraduationSummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	if err := h.validate.Struct(query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "program is too long"))
		return
	}

	start := time.Now()
	summaries, cacheHit, err := h.analytics.GraduationSummary(c.Request.Context(), models.GraduationSummaryFilter{Program: query.Program})
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, summaries, meta)
}

// System godoc
// @Summary Process counters snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "analytics is disabled"))
		return
	}
	response.JSON(c, http.StatusOK, h.analytics.SystemMetrics(), middleware.ExtractMeta(c))
}
