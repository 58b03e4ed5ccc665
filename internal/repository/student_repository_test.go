package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ssps-api/internal/models"
)

var studentColumns = []string{"student_id", "student_name", "student_email", "student_course", "student_major", "intake_term", "intake_year", "student_type", "has_spm_bm_credit", "credit_point", "graduation_status", "created_at"}

func TestStudentRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows(studentColumns).
		AddRow("101", "Aisyah", "aisyah@example.edu", "BCS", "SD", "1", "2023", "malaysian", true, 0.0, false, time.Now())
	mock.ExpectQuery("FROM students WHERE student_id = \\$1").WithArgs("101").WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, "Aisyah", student.StudentName)
	assert.True(t, student.HasSPMBMCredit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDToleratesNullColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows(studentColumns).
		AddRow("102", nil, nil, "BCS", nil, nil, nil, nil, nil, nil, nil, nil)
	mock.ExpectQuery("FROM students WHERE student_id = \\$1").WithArgs("102").WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), "102")
	require.NoError(t, err)
	assert.Equal(t, "102", student.StudentID)
	assert.Equal(t, "BCS", student.StudentCourse)
	assert.Equal(t, "", student.StudentMajor)
	assert.Equal(t, "", student.IntakeTerm)
	assert.Equal(t, models.StudentTypeMalaysian, student.Type())
	assert.True(t, student.HasSPMBMCredit)
	assert.Zero(t, student.CreditPoint)
	assert.False(t, student.GraduationStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students WHERE student_id = \\$1").WithArgs("404").WillReturnRows(sqlmock.NewRows(studentColumns))

	_, err := repo.FindByID(context.Background(), "404")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStudentRepositoryUpdateGraduation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET credit_point = \\$2, graduation_status = \\$3 WHERE student_id = \\$1").
		WithArgs("101", 287.5, false).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateGraduation(context.Background(), "101", 287.5, false))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateGraduationMissingRow(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students").WithArgs("101", 0.0, false).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateGraduation(context.Background(), "101", 0, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
