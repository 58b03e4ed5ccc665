package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ssps-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID fetches a student by the externally assigned student ID. NULL text columns load as empty strings
// and a NULL has_spm_bm_credit as true.
func (r *StudentRepository) FindByID(ctx context.Context, studentID string) (*models.Student, error) {
	const query = `SELECT student_id, student_name, student_email, student_course, student_major, intake_term, intake_year,
        student_type, has_spm_bm_credit, credit_point, graduation_status, created_at
        FROM students WHERE student_id = $1`
	var row studentRow
	if err := r.db.GetContext(ctx, &row, query, studentID); err != nil {
		return nil, err
	}
	return row.model(), nil
}

// UpdateGraduation overwrites the derived credit and graduation fields.
func (r *StudentRepository) UpdateGraduation(ctx context.Context, studentID string, creditPoint float64, graduationStatus bool) error {
	const query = `UPDATE students SET credit_point = $2, graduation_status = $3 WHERE student_id = $1`
	result, err := r.db.ExecContext(ctx, query, studentID, creditPoint, graduationStatus)
	if err != nil {
		return fmt.Errorf("update student graduation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student graduation rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
