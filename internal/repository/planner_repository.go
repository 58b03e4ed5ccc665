package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ssps-api/internal/models"
)

// PlannerRepository reads study planners and their units.
type PlannerRepository struct {
	db *sqlx.DB
}

// NewPlannerRepository constructs a PlannerRepository.
func NewPlannerRepository(db *sqlx.DB) *PlannerRepository {
	return &PlannerRepository{db: db}
}

// List returns planners matching the filter in stored order. Columns are compared trimmed of whitespace
// and case-folded because planners and students are keyed in by different people.
func (r *PlannerRepository) List(ctx context.Context, filter models.PlannerFilter) ([]models.StudyPlanner, error) {
	var builder strings.Builder
	builder.WriteString("SELECT id, program, program_code, major, intake_year, intake_semester, created_at FROM study_planners WHERE 1=1")
	var args []interface{}
	appendMatch := func(column, value string) {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return
		}
		args = append(args, value)
		builder.WriteString(fmt.Sprintf(" AND %s = $%d", foldedColumn(column), len(args)))
	}
	appendMatch("program", filter.Program)
	appendMatch("major", filter.Major)
	appendMatch("CAST(intake_year AS TEXT)", filter.IntakeYear)
	appendMatch("intake_semester", filter.IntakeSemester)
	builder.WriteString(" ORDER BY created_at ASC, id ASC")

	var rows []plannerRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list study planners: %w", err)
	}
	planners := make([]models.StudyPlanner, 0, len(rows))
	for _, row := range rows {
		planners = append(planners, row.model())
	}
	return planners, nil
}

// ListUnits returns every unit of a planner ordered by row index.
func (r *PlannerRepository) ListUnits(ctx context.Context, plannerID string) ([]models.PlannerUnit, error) {
	const query = `SELECT id, planner_id, year, semester, unit_code, unit_name, prerequisites, unit_type, row_index
        FROM study_planner_units WHERE planner_id = $1 ORDER BY row_index ASC, id ASC`
	var rows []plannerUnitRow
	if err := r.db.SelectContext(ctx, &rows, query, plannerID); err != nil {
		return nil, fmt.Errorf("list planner units: %w", err)
	}
	units := make([]models.PlannerUnit, 0, len(rows))
	for _, row := range rows {
		units = append(units, row.model())
	}
	return units, nil
}
