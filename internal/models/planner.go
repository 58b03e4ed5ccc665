package models

import (
	"strings"
	"time"
)

// Semester identifies the teaching period a planner unit is scheduled in.
type Semester string

const (
	SemesterOne    Semester = "1"
	SemesterTwo    Semester = "2"
	SemesterSummer Semester = "summer"
	SemesterWinter Semester = "winter"
)

// ParseSemester normalises free-text semester labels. The second result reports whether the value is recognised.
func ParseSemester(raw string) (Semester, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	value = strings.TrimSpace(strings.TrimPrefix(value, "semester"))
	switch Semester(value) {
	case SemesterOne, SemesterTwo, SemesterSummer, SemesterWinter:
		return Semester(value), true
	}
	return Semester(value), false
}

// UnitType classifies a planner slot.
type UnitType string

const (
	UnitTypeCore     UnitType = "core"
	UnitTypeMajor    UnitType = "major"
	UnitTypeElective UnitType = "elective"
	UnitTypeMPU      UnitType = "mpu"
	UnitTypeWIL      UnitType = "wil"
	UnitTypeOther    UnitType = "other"
)

// ParseUnitType case-folds raw unit types; anything unrecognised lands in UnitTypeOther.
func ParseUnitType(raw string) UnitType {
	switch t := UnitType(strings.ToLower(strings.TrimSpace(raw))); t {
	case UnitTypeCore, UnitTypeMajor, UnitTypeElective, UnitTypeMPU, UnitTypeWIL:
		return t
	}
	return UnitTypeOther
}

// StudyPlanner identifies a curriculum for a program, major and intake.
type StudyPlanner struct {
	ID             string    `db:"id" json:"id"`
	Program        string    `db:"program" json:"program"`
	ProgramCode    *string   `db:"program_code" json:"program_code,omitempty"`
	Major          string    `db:"major" json:"major"`
	IntakeYear     int       `db:"intake_year" json:"intake_year"`
	IntakeSemester string    `db:"intake_semester" json:"intake_semester"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// PlannerUnit is a required or elective slot inside a planner.
type PlannerUnit struct {
	ID            string  `db:"id" json:"id"`
	PlannerID     string  `db:"planner_id" json:"planner_id"`
	Year          int     `db:"year" json:"year"`
	Semester      string  `db:"semester" json:"semester"`
	UnitCode      *string `db:"unit_code" json:"unit_code"`
	UnitName      string  `db:"unit_name" json:"unit_name"`
	Prerequisites *string `db:"prerequisites" json:"prerequisites,omitempty"`
	UnitType      string  `db:"unit_type" json:"unit_type"`
	RowIndex      int     `db:"row_index" json:"row_index"`
}

// Code returns the raw unit code or an empty string for null codes.
func (u PlannerUnit) Code() string {
	if u.UnitCode == nil {
		return ""
	}
	return *u.UnitCode
}

// PlannerFilter narrows planner lookups. Values are compared trimmed and case-folded; empty fields are ignored.
type PlannerFilter struct {
	Program        string
	Major          string
	IntakeYear     string
	IntakeSemester string
}
