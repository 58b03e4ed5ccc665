package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ssps-api/internal/models"
)

// AnalyticsRepository exposes read-optimised aggregates over student records.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository instantiates the repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// GraduationSummary groups derived graduation status by program and major. Spellings that differ only in case
// or surrounding whitespace fall into the same group.
func (r *AnalyticsRepository) GraduationSummary(ctx context.Context, filter models.GraduationSummaryFilter) ([]models.GraduationSummary, error) {
	program, major := foldedColumn("student_course"), foldedColumn("student_major")

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(`SELECT MIN(BTRIM(COALESCE(student_course, ''), %[1]s)) AS program,
        MIN(BTRIM(COALESCE(student_major, ''), %[1]s)) AS major,
        COUNT(*) AS total_students,
        SUM(CASE WHEN graduation_status THEN 1 ELSE 0 END) AS graduated,
        SUM(CASE WHEN graduation_status THEN 0 ELSE 1 END) AS not_graduated,
        COALESCE(AVG(credit_point), 0) AS average_credit
        FROM students WHERE 1=1`, trimChars))
	var args []interface{}
	if value := strings.TrimSpace(filter.Program); value != "" {
		args = append(args, strings.ToLower(value))
		builder.WriteString(fmt.Sprintf(" AND %s = $%d", program, len(args)))
	}
	builder.WriteString(fmt.Sprintf(" GROUP BY %[1]s, %[2]s ORDER BY %[1]s ASC, %[2]s ASC", program, major))

	var rows []graduationSummaryRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query graduation summary: %w", err)
	}
	summaries := make([]models.GraduationSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, row.model())
	}
	return summaries, nil
}
