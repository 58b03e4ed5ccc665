package service

import (
	"math"
	"strconv"
	"strings"

	"github.com/noah-isme/ssps-api/internal/models"
)

// NormalizeCode trims and upper-cases a unit code for set comparison.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// IsPlaceholderCode reports whether a unit code marks an elective slot rather than a fixed unit.
// Spreadsheet imports leave "nan" or "none" behind for empty cells.
func IsPlaceholderCode(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "nan", "none", "null":
		return true
	}
	return false
}

func normalizeText(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// normalizeYear folds "2023", " 2023 " and "2023.0" onto the same key.
func normalizeYear(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == math.Trunc(f) {
		return strconv.FormatInt(int64(f), 10)
	}
	return normalizeText(trimmed)
}

// IdentityOf returns the normalised planner identity declared on a student record.
func IdentityOf(student models.Student) models.PlannerFilter {
	return normalizeIdentity(models.PlannerFilter{
		Program:        student.StudentCourse,
		Major:          student.StudentMajor,
		IntakeYear:     student.IntakeYear,
		IntakeSemester: student.IntakeTerm,
	})
}

func normalizeIdentity(identity models.PlannerFilter) models.PlannerFilter {
	return models.PlannerFilter{
		Program:        normalizeText(identity.Program),
		Major:          normalizeText(identity.Major),
		IntakeYear:     normalizeYear(identity.IntakeYear),
		IntakeSemester: normalizeText(identity.IntakeSemester),
	}
}

func plannerIdentity(planner models.StudyPlanner) models.PlannerFilter {
	return normalizeIdentity(models.PlannerFilter{
		Program:        planner.Program,
		Major:          planner.Major,
		IntakeYear:     strconv.Itoa(planner.IntakeYear),
		IntakeSemester: planner.IntakeSemester,
	})
}

// passedCodes returns the distinct normalised codes of passed units in first-seen order.
func passedCodes(units []models.StudentUnit) []string {
	seen := make(map[string]struct{}, len(units))
	codes := make([]string, 0, len(units))
	for _, unit := range units {
		if !unit.Passed() || IsPlaceholderCode(unit.Code()) {
			continue
		}
		code := NormalizeCode(unit.Code())
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

func codeSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		set[code] = struct{}{}
	}
	return set
}

func roundCredits(v float64) float64 {
	return math.Round(v*100) / 100
}
