package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ssps-api/internal/models"
	"github.com/noah-isme/ssps-api/internal/service"
	appErrors "github.com/noah-isme/ssps-api/pkg/errors"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func newTestContext(method, target string, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if body == "" {
		c.Request = httptest.NewRequest(method, target, nil)
		return c, rec
	}
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

type fakeGraduationSrv struct {
	report      *models.GraduationReport
	progress    *models.StudentProgress
	err         error
	lastStudent string
}

func (f *fakeGraduationSrv) Evaluate(_ context.Context, studentID string) (*models.GraduationReport, error) {
	f.lastStudent = studentID
	return f.report, f.err
}

func (f *fakeGraduationSrv) Progress(_ context.Context, studentID string) (*models.StudentProgress, error) {
	f.lastStudent = studentID
	return f.progress, f.err
}

type fakeExporter struct {
	file       *service.ExportFile
	err        error
	lastFormat models.ExportFormat
}

func (f *fakeExporter) GraduationReport(_ context.Context, _ string, format models.ExportFormat) (*service.ExportFile, error) {
	f.lastFormat = format
	return f.file, f.err
}

type fakeRecompute struct {
	batch   *models.RecomputeBatch
	err     error
	lastIDs []string
}

func (f *fakeRecompute) Enqueue(_ context.Context, studentIDs []string) (*models.RecomputeBatch, error) {
	f.lastIDs = studentIDs
	return f.batch, f.err
}

func TestGraduationHandlerEvaluateSuccess(t *testing.T) {
	info := "Bachelor of Computer Science - Software Development (intake 2023, semester 1)"
	srv := &fakeGraduationSrv{report: &models.GraduationReport{
		CanGraduate:       true,
		TotalCredits:      300,
		MissingCoreUnits:  []string{},
		MissingMajorUnits: []string{},
		Messages:          []string{"Student is eligible to graduate."},
		PlannerInfo:       &info,
		UpdatedStudent:    models.Student{StudentID: "101", CreditPoint: 300, GraduationStatus: true},
	}}
	h := NewGraduationHandler(srv, nil, nil, nil)

	c, rec := newTestContext(http.MethodPut, "/students/101/graduate", "")
	c.Params = gin.Params{{Key: "id", Value: "101"}}
	h.Evaluate(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "101", srv.lastStudent)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Equal(t, true, data["can_graduate"])
	assert.Equal(t, 300.0, data["total_credits"])
	assert.Equal(t, info, data["planner_info"])
	assert.Equal(t, []interface{}{}, data["missing_core_units"])
}

func TestGraduationHandlerEvaluateErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{name: "not found", err: appErrors.Clone(appErrors.ErrStudentNotFound, "student 9 not found"), status: http.StatusNotFound, code: "STUDENT_NOT_FOUND"},
		{name: "datastore", err: appErrors.Unavailable(errors.New("timeout"), ""), status: http.StatusServiceUnavailable, code: "DATASTORE_UNAVAILABLE"},
		{name: "unexpected", err: errors.New("nil map"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewGraduationHandler(&fakeGraduationSrv{err: tc.err}, nil, nil, nil)
			c, rec := newTestContext(http.MethodPut, "/students/9/graduate", "")
			c.Params = gin.Params{{Key: "id", Value: "9"}}
			h.Evaluate(c)

			assert.Equal(t, tc.status, rec.Code)
			envelope := decodeEnvelope(t, rec)
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tc.code, envelope.Error.Code)
		})
	}
}

func TestGraduationHandlerProgress(t *testing.T) {
	srv := &fakeGraduationSrv{progress: &models.StudentProgress{
		Student:      models.Student{StudentID: "101"},
		PlannerUnits: []models.ProgressUnit{},
		StudentUnits: []models.StudentUnit{},
		Summary:      models.ProgressSummary{CompletedCount: 3, TotalRequired: 5},
	}}
	h := NewGraduationHandler(srv, nil, nil, nil)

	c, rec := newTestContext(http.MethodGet, "/students/101/progress", "")
	c.Params = gin.Params{{Key: "id", Value: "101"}}
	h.Progress(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var data struct {
		Summary models.ProgressSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Equal(t, 5, data.Summary.TotalRequired)
}

func TestGraduationHandlerExport(t *testing.T) {
	exporter := &fakeExporter{file: &service.ExportFile{Filename: "graduation_101.csv", ContentType: "text/csv", Body: []byte("section,item,value\n")}}
	h := NewGraduationHandler(&fakeGraduationSrv{}, exporter, nil, nil)

	c, rec := newTestContext(http.MethodGet, "/students/101/graduation/export?format=CSV", "")
	c.Params = gin.Params{{Key: "id", Value: "101"}}
	h.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ExportFormatCSV, exporter.lastFormat)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "graduation_101.csv")
	assert.Equal(t, "section,item,value\n", rec.Body.String())
}

func TestGraduationHandlerExportDefaultsToPDF(t *testing.T) {
	exporter := &fakeExporter{file: &service.ExportFile{Filename: "r.pdf", ContentType: "application/pdf", Body: []byte("%PDF-1.3")}}
	h := NewGraduationHandler(&fakeGraduationSrv{}, exporter, nil, nil)

	c, rec := newTestContext(http.MethodGet, "/students/101/graduation/export", "")
	c.Params = gin.Params{{Key: "id", Value: "101"}}
	h.Export(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ExportFormatPDF, exporter.lastFormat)
}

func TestGraduationHandlerExportRejectsFormat(t *testing.T) {
	exporter := &fakeExporter{}
	h := NewGraduationHandler(&fakeGraduationSrv{}, exporter, nil, nil)

	c, rec := newTestContext(http.MethodGet, "/students/101/graduation/export?format=xlsx", "")
	c.Params = gin.Params{{Key: "id", Value: "101"}}
	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, exporter.lastFormat)
}

func TestGraduationHandlerRecompute(t *testing.T) {
	queue := &fakeRecompute{batch: &models.RecomputeBatch{BatchID: "b-1", StudentIDs: []string{"101", "102"}, Queued: 2}}
	h := NewGraduationHandler(&fakeGraduationSrv{}, nil, queue, nil)

	c, rec := newTestContext(http.MethodPost, "/graduation/recompute", `{"student_ids":["101","102"]}`)
	h.Recompute(c)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"101", "102"}, queue.lastIDs)
	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &data))
	assert.Equal(t, "b-1", data["batch_id"])
	assert.Equal(t, 2.0, data["queued"])
}

func TestGraduationHandlerRecomputeValidation(t *testing.T) {
	for name, body := range map[string]string{
		"empty list":   `{"student_ids":[]}`,
		"missing list": `{}`,
		"blank id":     `{"student_ids":[""]}`,
		"malformed":    `{"student_ids":`,
	} {
		t.Run(name, func(t *testing.T) {
			queue := &fakeRecompute{}
			h := NewGraduationHandler(&fakeGraduationSrv{}, nil, queue, nil)
			c, rec := newTestContext(http.MethodPost, "/graduation/recompute", body)
			h.Recompute(c)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, queue.lastIDs)
		})
	}
}

func TestGraduationHandlerRecomputeDisabled(t *testing.T) {
	h := NewGraduationHandler(&fakeGraduationSrv{}, nil, nil, nil)
	c, rec := newTestContext(http.MethodPost, "/graduation/recompute", `{"student_ids":["101"]}`)
	h.Recompute(c)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
