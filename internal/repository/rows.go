package repository

import (
	"database/sql"
	"fmt"

	"github.com/noah-isme/ssps-api/internal/models"
)

// Free-text columns arrive from spreadsheet imports and hand entry, so any of them may be NULL.
// Rows scan into these nullable shapes and convert to models with zero-value defaults.

// trimChars covers the ASCII whitespace and no-break space that strings.TrimSpace strips from imported cells.
const trimChars = `E' \t\n\r\f\x0B\u00A0'`

// foldedColumn renders a trimmed, case-folded, NULL-safe SQL expression for column.
func foldedColumn(column string) string {
	return fmt.Sprintf("LOWER(BTRIM(COALESCE(%s, ''), %s))", column, trimChars)
}

type studentRow struct {
	StudentID        string          `db:"student_id"`
	StudentName      sql.NullString  `db:"student_name"`
	StudentEmail     sql.NullString  `db:"student_email"`
	StudentCourse    sql.NullString  `db:"student_course"`
	StudentMajor     sql.NullString  `db:"student_major"`
	IntakeTerm       sql.NullString  `db:"intake_term"`
	IntakeYear       sql.NullString  `db:"intake_year"`
	StudentType      sql.NullString  `db:"student_type"`
	HasSPMBMCredit   sql.NullBool    `db:"has_spm_bm_credit"`
	CreditPoint      sql.NullFloat64 `db:"credit_point"`
	GraduationStatus sql.NullBool    `db:"graduation_status"`
	CreatedAt        sql.NullTime    `db:"created_at"`
}

func (r studentRow) model() *models.Student {
	hasCredit := true
	if r.HasSPMBMCredit.Valid {
		hasCredit = r.HasSPMBMCredit.Bool
	}
	return &models.Student{
		StudentID:        r.StudentID,
		StudentName:      r.StudentName.String,
		StudentEmail:     r.StudentEmail.String,
		StudentCourse:    r.StudentCourse.String,
		StudentMajor:     r.StudentMajor.String,
		IntakeTerm:       r.IntakeTerm.String,
		IntakeYear:       r.IntakeYear.String,
		StudentType:      r.StudentType.String,
		HasSPMBMCredit:   hasCredit,
		CreditPoint:      r.CreditPoint.Float64,
		GraduationStatus: r.GraduationStatus.Bool,
		CreatedAt:        r.CreatedAt.Time,
	}
}

type studentUnitRow struct {
	ID        int64          `db:"id"`
	StudentID string         `db:"student_id"`
	UnitCode  *string        `db:"unit_code"`
	UnitName  sql.NullString `db:"unit_name"`
	Grade     *string        `db:"grade"`
	Completed sql.NullBool   `db:"completed"`
}

func (r studentUnitRow) model() models.StudentUnit {
	return models.StudentUnit{
		ID:        r.ID,
		StudentID: r.StudentID,
		UnitCode:  r.UnitCode,
		UnitName:  r.UnitName.String,
		Grade:     r.Grade,
		Completed: r.Completed.Bool,
	}
}

type plannerRow struct {
	ID             string         `db:"id"`
	Program        sql.NullString `db:"program"`
	ProgramCode    *string        `db:"program_code"`
	Major          sql.NullString `db:"major"`
	IntakeYear     sql.NullInt64  `db:"intake_year"`
	IntakeSemester sql.NullString `db:"intake_semester"`
	CreatedAt      sql.NullTime   `db:"created_at"`
}

func (r plannerRow) model() models.StudyPlanner {
	return models.StudyPlanner{
		ID:             r.ID,
		Program:        r.Program.String,
		ProgramCode:    r.ProgramCode,
		Major:          r.Major.String,
		IntakeYear:     int(r.IntakeYear.Int64),
		IntakeSemester: r.IntakeSemester.String,
		CreatedAt:      r.CreatedAt.Time,
	}
}

type plannerUnitRow struct {
	ID            string         `db:"id"`
	PlannerID     string         `db:"planner_id"`
	Year          sql.NullInt64  `db:"year"`
	Semester      sql.NullString `db:"semester"`
	UnitCode      *string        `db:"unit_code"`
	UnitName      sql.NullString `db:"unit_name"`
	Prerequisites *string        `db:"prerequisites"`
	UnitType      sql.NullString `db:"unit_type"`
	RowIndex      sql.NullInt64  `db:"row_index"`
}

func (r plannerUnitRow) model() models.PlannerUnit {
	return models.PlannerUnit{
		ID:            r.ID,
		PlannerID:     r.PlannerID,
		Year:          int(r.Year.Int64),
		Semester:      r.Semester.String,
		UnitCode:      r.UnitCode,
		UnitName:      r.UnitName.String,
		Prerequisites: r.Prerequisites,
		UnitType:      r.UnitType.String,
		RowIndex:      int(r.RowIndex.Int64),
	}
}

type graduationSummaryRow struct {
	Program       sql.NullString  `db:"program"`
	Major         sql.NullString  `db:"major"`
	TotalStudents int             `db:"total_students"`
	Graduated     int             `db:"graduated"`
	NotGraduated  int             `db:"not_graduated"`
	AverageCredit sql.NullFloat64 `db:"average_credit"`
}

func (r graduationSummaryRow) model() models.GraduationSummary {
	return models.GraduationSummary{
		Program:       r.Program.String,
		Major:         r.Major.String,
		TotalStudents: r.TotalStudents,
		Graduated:     r.Graduated,
		NotGraduated:  r.NotGraduated,
		AverageCredit: r.AverageCredit.Float64,
	}
}
