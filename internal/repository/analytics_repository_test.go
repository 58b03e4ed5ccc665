package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ssps-api/internal/models"
)

func TestAnalyticsRepositoryGraduationSummary(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	rows := sqlmock.NewRows([]string{"program", "major", "total_students", "graduated", "not_graduated", "average_credit"}).
		AddRow("BCS", "SD", 10, 4, 6, 212.5)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM students WHERE 1=1 AND LOWER(BTRIM(COALESCE(student_course, ''), E' \t\n\r\f\x0B\u00A0')) = $1` +
		` GROUP BY LOWER(BTRIM(COALESCE(student_course, ''), E' \t\n\r\f\x0B\u00A0')), LOWER(BTRIM(COALESCE(student_major, ''), E' \t\n\r\f\x0B\u00A0'))`)).
		WithArgs("bcs").
		WillReturnRows(rows)

	summaries, err := repo.GraduationSummary(context.Background(), models.GraduationSummaryFilter{Program: " BCS "})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 4, summaries[0].Graduated)
	assert.Equal(t, 212.5, summaries[0].AverageCredit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryGraduationSummaryNullGroup(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	rows := sqlmock.NewRows([]string{"program", "major", "total_students", "graduated", "not_graduated", "average_credit"}).
		AddRow(nil, nil, 2, 0, 2, nil)
	mock.ExpectQuery(regexp.QuoteMeta("MIN(BTRIM(COALESCE(student_course, '')")).WillReturnRows(rows)

	summaries, err := repo.GraduationSummary(context.Background(), models.GraduationSummaryFilter{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "", summaries[0].Program)
	assert.Equal(t, 2, summaries[0].NotGraduated)
	assert.Zero(t, summaries[0].AverageCredit)
	assert.NoError(t, mock.ExpectationsWereMet())
}
