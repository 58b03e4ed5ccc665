package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ssps-api/internal/models"
)

func TestStudentUnitRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentUnitRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "unit_code", "unit_name", "grade", "completed"}).
		AddRow(1, "101", "COS10009", "Intro to Programming", "HD", true).
		AddRow(2, "101", "cos10009 ", "Intro to Programming", nil, true).
		AddRow(3, "101", "MPU3183", "Penghayatan Etika", "F", true)
	mock.ExpectQuery("FROM student_units WHERE student_id = \\$1 ORDER BY id ASC").WithArgs("101").WillReturnRows(rows)

	units, err := repo.ListByStudent(context.Background(), "101")
	require.NoError(t, err)
	require.Len(t, units, 3)
	assert.True(t, units[0].Passed())
	assert.True(t, units[1].Passed())
	assert.False(t, units[2].Passed())
	assert.Equal(t, models.FailingGrade, *units[2].Grade)
}

func TestStudentUnitRepositoryToleratesNullColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentUnitRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "unit_code", "unit_name", "grade", "completed"}).
		AddRow(1, "101", "COS10009", nil, nil, true).
		AddRow(2, "101", nil, nil, nil, nil)
	mock.ExpectQuery("FROM student_units WHERE student_id = \\$1").WithArgs("101").WillReturnRows(rows)

	units, err := repo.ListByStudent(context.Background(), "101")
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "", units[0].UnitName)
	assert.True(t, units[0].Passed())
	assert.Equal(t, "", units[1].Code())
	assert.False(t, units[1].Passed())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentUnitRepositoryListByStudentError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentUnitRepository(db)

	mock.ExpectQuery("FROM student_units").WithArgs("101").WillReturnError(errors.New("connection reset"))

	_, err := repo.ListByStudent(context.Background(), "101")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list student units")
}
