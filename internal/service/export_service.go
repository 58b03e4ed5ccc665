package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ssps-api/internal/models"
	appErrors "github.com/noah-isme/ssps-api/pkg/errors"
	"github.com/noah-isme/ssps-api/pkg/export"
)

type graduationEvaluator interface {
	Evaluate(ctx context.Context, studentID string) (*models.GraduationReport, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

var exportHeaders = []string{"section", "item", "value"}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders graduation reports as CSV or PDF.
type ExportService struct {
	evaluator graduationEvaluator
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers default to the pkg/export implementations.
func NewExportService(evaluator graduationEvaluator, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{evaluator: evaluator, csv: csv, pdf: pdf, logger: logger}
}

// GraduationReport evaluates the student and renders the resulting report.
func (s *ExportService) GraduationReport(ctx context.Context, studentID string, format models.ExportFormat) (*ExportFile, error) {
	if format != models.ExportFormatCSV && format != models.ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	report, err := s.evaluator.Evaluate(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dataset := graduationDataset(report)
	file := &ExportFile{Filename: exportFilename(report.UpdatedStudent.StudentID, format)}
	switch format {
	case models.ExportFormatCSV:
		file.ContentType = "text/csv"
		file.Body, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Body, err = s.pdf.Render(export.Document{
			Title:   graduationTitle(report.UpdatedStudent),
			Summary: append(append([]string{}, report.Messages...), report.Warnings...),
			Table:   dataset,
		})
	}
	if err != nil {
		s.logger.Error("render graduation report", zap.String("student_id", report.UpdatedStudent.StudentID), zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render graduation report")
	}
	return file, nil
}

func graduationDataset(report *models.GraduationReport) export.Dataset {
	row := func(section, item, value string) map[string]string {
		return map[string]string{"section": section, "item": item, "value": value}
	}
	planner := ""
	if report.PlannerInfo != nil {
		planner = *report.PlannerInfo
	}
	rows := []map[string]string{
		row("summary", "student_id", report.UpdatedStudent.StudentID),
		row("summary", "student_name", report.UpdatedStudent.StudentName),
		row("summary", "planner", planner),
		row("summary", "can_graduate", strconv.FormatBool(report.CanGraduate)),
		row("summary", "total_credits", formatCredits(report.TotalCredits)),
		row("summary", "core_credits", formatCredits(report.CoreCredits)),
		row("summary", "major_credits", formatCredits(report.MajorCredits)),
		row("summary", "core_completed", strconv.Itoa(report.CoreCompleted)),
		row("summary", "major_completed", strconv.Itoa(report.MajorCompleted)),
		row("summary", "required_completed", fmt.Sprintf("%d/%d", report.RequiredCompleted, report.RequiredTotal)),
	}
	for _, unit := range report.MissingCoreUnits {
		rows = append(rows, row("missing_core", unit, ""))
	}
	for _, unit := range report.MissingMajorUnits {
		rows = append(rows, row("missing_major", unit, ""))
	}
	for _, unit := range report.MissingOtherUnits {
		rows = append(rows, row("missing_other", unit, ""))
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func graduationTitle(student models.Student) string {
	name := strings.TrimSpace(student.StudentName)
	if name == "" {
		return fmt.Sprintf("Graduation Report %s", student.StudentID)
	}
	return fmt.Sprintf("Graduation Report %s (%s)", name, student.StudentID)
}

func exportFilename(studentID string, format models.ExportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("graduation_%s_%s.%s", sanitizeFilename(studentID), timestamp, format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "\"", "", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func formatCredits(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
