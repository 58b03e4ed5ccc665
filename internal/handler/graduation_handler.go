package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/ssps-api/internal/dto"
	"github.com/noah-isme/ssps-api/internal/middleware"
	"github.com/noah-isme/ssps-api/internal/models"
	"github.com/noah-isme/ssps-api/internal/service"
	appErrors "github.com/noah-isme/ssps-api/pkg/errors"
	"github.com/noah-isme/ssps-api/pkg/response"
)

type graduationService interface {
	Evaluate(ctx context.Context, studentID string) (*models.GraduationReport, error)
	Progress(ctx context.Context, studentID string) (*models.StudentProgress, error)
}

type graduationExporter interface {
	GraduationReport(ctx context.Context, studentID string, format models.ExportFormat) (*service.ExportFile, error)
}

type recomputeQueue interface {
	Enqueue(ctx context.Context, studentIDs []string) (*models.RecomputeBatch, error)
}

// GraduationHandler exposes graduation evaluation endpoints.
type GraduationHandler struct {
	graduation graduationService
	exporter   graduationExporter
	recompute  recomputeQueue
	validate   *validator.Validate
}

// NewGraduationHandler constructs the handler. exporter and recompute may be nil, which disables their routes.
func NewGraduationHandler(graduation graduationService, exporter graduationExporter, recompute recomputeQueue, validate *validator.Validate) *GraduationHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &GraduationHandler{graduation: graduation, exporter: exporter, recompute: recompute, validate: validate}
}

// Evaluate godoc
// @Summary Evaluate graduation eligibility
// @Description Recomputes credit points and graduation status from the student's planner and completed units.
// @Tags Graduation
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /students/{id}/graduate [put]
func (h *GraduationHandler) Evaluate(c *gin.Context) {
	report, err := h.graduation.Evaluate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, middleware.ExtractMeta(c))
}

// Progress godoc
// @Summary Student progress against planner
// @Tags Graduation
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/progress [get]
func (h *GraduationHandler) Progress(c *gin.Context) {
	progress, err := h.graduation.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export graduation report
// @Tags Graduation
// @Produce application/pdf
// @Produce text/csv
// @Param id path string true "Student ID"
// @Param format query string false "csv or pdf" default(pdf)
// @Success 200 {file} binary
// @Failure 400 {object} response.Envelope
// @Router /students/{id}/graduation/export [get]
func (h *GraduationHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "export is disabled"))
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	query.Format = strings.ToLower(strings.TrimSpace(query.Format))
	if err := h.validate.Struct(query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	format := models.ExportFormatPDF
	if query.Format != "" {
		format = models.ExportFormat(query.Format)
	}

	file, err := h.exporter.GraduationReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Recompute godoc
// @Summary Queue background re-evaluation
// @Tags Graduation
// @Accept json
// @Produce json
// @Param payload body dto.RecomputeRequest true "Students to re-evaluate"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /graduation/recompute [post]
func (h *GraduationHandler) Recompute(c *gin.Context) {
	if h.recompute == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrServiceUnavailable, "batch recomputation is disabled"))
		return
	}
	var req dto.RecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	batch, err := h.recompute.Enqueue(c.Request.Context(), req.StudentIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, dto.NewRecomputeResponse(batch))
}
