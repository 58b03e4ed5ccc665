package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ssps-api/internal/models"
)

var plannerColumns = []string{"id", "program", "program_code", "major", "intake_year", "intake_semester", "created_at"}

func TestPlannerRepositoryListNormalisesFilter(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlannerRepository(db)

	rows := sqlmock.NewRows(plannerColumns).
		AddRow("p-1", "Bachelor of Computer Science", nil, "Software Development", 2023, "1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, program, program_code, major, intake_year, intake_semester, created_at FROM study_planners WHERE 1=1` +
		` AND LOWER(BTRIM(COALESCE(program, ''), E' \t\n\r\f\x0B\u00A0')) = $1` +
		` AND LOWER(BTRIM(COALESCE(major, ''), E' \t\n\r\f\x0B\u00A0')) = $2` +
		` AND LOWER(BTRIM(COALESCE(CAST(intake_year AS TEXT), ''), E' \t\n\r\f\x0B\u00A0')) = $3` +
		` AND LOWER(BTRIM(COALESCE(intake_semester, ''), E' \t\n\r\f\x0B\u00A0')) = $4` +
		` ORDER BY created_at ASC, id ASC`)).
		WithArgs("bachelor of computer science", "software development", "2023", "1").
		WillReturnRows(rows)

	planners, err := repo.List(context.Background(), models.PlannerFilter{
		Program:        "  Bachelor of Computer Science ",
		Major:          "SOFTWARE DEVELOPMENT",
		IntakeYear:     "2023",
		IntakeSemester: " 1",
	})
	require.NoError(t, err)
	require.Len(t, planners, 1)
	assert.Equal(t, "p-1", planners[0].ID)
	assert.Nil(t, planners[0].ProgramCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlannerRepositoryListSkipsEmptyFields(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlannerRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM study_planners WHERE 1=1 AND LOWER(BTRIM(COALESCE(program, ''), E' \t\n\r\f\x0B\u00A0')) = $1 ORDER BY`)).
		WithArgs("bcs").
		WillReturnRows(sqlmock.NewRows(plannerColumns))

	planners, err := repo.List(context.Background(), models.PlannerFilter{Program: "BCS"})
	require.NoError(t, err)
	assert.Empty(t, planners)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlannerRepositoryListUnits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlannerRepository(db)

	rows := sqlmock.NewRows([]string{"id", "planner_id", "year", "semester", "unit_code", "unit_name", "prerequisites", "unit_type", "row_index"}).
		AddRow("u-1", "p-1", 1, "1", "COS10009", "Intro to Programming", nil, "Core", 0).
		AddRow("u-2", "p-1", 1, "2", nil, "Elective", nil, "Elective", 1)
	mock.ExpectQuery("FROM study_planner_units WHERE planner_id = \\$1 ORDER BY row_index ASC").
		WithArgs("p-1").
		WillReturnRows(rows)

	units, err := repo.ListUnits(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "COS10009", units[0].Code())
	assert.Nil(t, units[1].UnitCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlannerRepositoryToleratesNullColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPlannerRepository(db)

	mock.ExpectQuery("FROM study_planners").
		WithArgs("bcs").
		WillReturnRows(sqlmock.NewRows(plannerColumns).AddRow("p-1", "BCS", nil, nil, nil, nil, nil))

	planners, err := repo.List(context.Background(), models.PlannerFilter{Program: "BCS"})
	require.NoError(t, err)
	require.Len(t, planners, 1)
	assert.Equal(t, "", planners[0].Major)
	assert.Equal(t, 0, planners[0].IntakeYear)
	assert.Equal(t, "", planners[0].IntakeSemester)
	assert.True(t, planners[0].CreatedAt.IsZero())

	mock.ExpectQuery("FROM study_planner_units WHERE planner_id = \\$1").
		WithArgs("p-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "planner_id", "year", "semester", "unit_code", "unit_name", "prerequisites", "unit_type", "row_index"}).
			AddRow("u-1", "p-1", nil, nil, "COS10009", nil, nil, nil, nil))

	units, err := repo.ListUnits(context.Background(), "p-1")
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "COS10009", units[0].Code())
	assert.Equal(t, "", units[0].UnitName)
	assert.Equal(t, models.UnitTypeOther, models.ParseUnitType(units[0].UnitType))
	assert.Equal(t, 0, units[0].Year)
	assert.NoError(t, mock.ExpectationsWereMet())
}
