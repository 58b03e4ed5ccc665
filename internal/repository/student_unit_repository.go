package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ssps-api/internal/models"
)

// StudentUnitRepository reads a student's unit attempts.
type StudentUnitRepository struct {
	db *sqlx.DB
}

// NewStudentUnitRepository constructs a StudentUnitRepository.
func NewStudentUnitRepository(db *sqlx.DB) *StudentUnitRepository {
	return &StudentUnitRepository{db: db}
}

// ListByStudent returns all unit rows for a student, duplicates included, in insertion order.
func (r *StudentUnitRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentUnit, error) {
	const query = `SELECT id, student_id, unit_code, unit_name, grade, completed
        FROM student_units WHERE student_id = $1 ORDER BY id ASC`
	var rows []studentUnitRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list student units: %w", err)
	}
	units := make([]models.StudentUnit, 0, len(rows))
	for _, row := range rows {
		units = append(units, row.model())
	}
	return units, nil
}
