package models

import (
	"strings"
	"time"
)

// StudentType drives MPU exemption rules.
type StudentType string

const (
	StudentTypeMalaysian     StudentType = "malaysian"
	StudentTypeInternational StudentType = "international"
)

// ParseStudentType defaults blank or unknown values to StudentTypeMalaysian.
func ParseStudentType(raw string) StudentType {
	if StudentType(strings.ToLower(strings.TrimSpace(raw))) == StudentTypeInternational {
		return StudentTypeInternational
	}
	return StudentTypeMalaysian
}

// Student is the student record. CreditPoint and GraduationStatus are derived by the graduation evaluator.
type Student struct {
	StudentID        string    `db:"student_id" json:"student_id"`
	StudentName      string    `db:"student_name" json:"student_name"`
	StudentEmail     string    `db:"student_email" json:"student_email"`
	StudentCourse    string    `db:"student_course" json:"student_course"`
	StudentMajor     string    `db:"student_major" json:"student_major"`
	IntakeTerm       string    `db:"intake_term" json:"intake_term"`
	IntakeYear       string    `db:"intake_year" json:"intake_year"`
	StudentType      string    `db:"student_type" json:"student_type"`
	HasSPMBMCredit   bool      `db:"has_spm_bm_credit" json:"has_spm_bm_credit"`
	CreditPoint      float64   `db:"credit_point" json:"credit_point"`
	GraduationStatus bool      `db:"graduation_status" json:"graduation_status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Type returns the normalised student type.
func (s Student) Type() StudentType {
	return ParseStudentType(s.StudentType)
}

// StudentUnit records a unit attempt by a student.
type StudentUnit struct {
	ID        int64   `db:"id" json:"id"`
	StudentID string  `db:"student_id" json:"student_id"`
	UnitCode  *string `db:"unit_code" json:"unit_code"`
	UnitName  string  `db:"unit_name" json:"unit_name"`
	Grade     *string `db:"grade" json:"grade"`
	Completed bool    `db:"completed" json:"completed"`
}

// FailingGrade is the literal grade that voids a completion.
const FailingGrade = "F"

// Passed reports whether the attempt counts towards graduation.
func (u StudentUnit) Passed() bool {
	if !u.Completed {
		return false
	}
	return u.Grade == nil || *u.Grade != FailingGrade
}

// Code returns the raw unit code or an empty string for null codes.
func (u StudentUnit) Code() string {
	if u.UnitCode == nil {
		return ""
	}
	return *u.UnitCode
}
