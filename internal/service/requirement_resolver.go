package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/ssps-api/internal/models"
)

type plannerReader interface {
	List(ctx context.Context, filter models.PlannerFilter) ([]models.StudyPlanner, error)
	ListUnits(ctx context.Context, plannerID string) ([]models.PlannerUnit, error)
}

// mpuRule limits an MPU unit family to the students it applies to.
type mpuRule struct {
	prefix  string
	applies func(student models.Student) bool
}

var mpuRules = []mpuRule{
	// Bahasa Kebangsaan A: Malaysians without an SPM Bahasa Malaysia credit.
	{prefix: "MPU321", applies: func(s models.Student) bool {
		return s.Type() == models.StudentTypeMalaysian && !s.HasSPMBMCredit
	}},
	// Penghayatan Etika dan Peradaban: Malaysians only.
	{prefix: "MPU318", applies: func(s models.Student) bool {
		return s.Type() == models.StudentTypeMalaysian
	}},
	// Malay Language Communication 2: international students only.
	{prefix: "MPU314", applies: func(s models.Student) bool {
		return s.Type() == models.StudentTypeInternational
	}},
}

// RequirementResolver maps a student to a study planner and the units that planner requires of them.
// It always reads planner state from the datastore.
type RequirementResolver struct {
	planners plannerReader
	logger   *zap.Logger
}

// NewRequirementResolver constructs a RequirementResolver.
func NewRequirementResolver(planners plannerReader, logger *zap.Logger) *RequirementResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequirementResolver{planners: planners, logger: logger}
}

// ResolvePlanner finds the planner for a program, major and intake. A nil match with a nil error means no planner
// exists. When several planners share the identity the first in stored order wins and a warning is attached.
func (r *RequirementResolver) ResolvePlanner(ctx context.Context, identity models.PlannerFilter) (*models.PlannerMatch, error) {
	identity = normalizeIdentity(identity)
	planners, err := r.planners.List(ctx, identity)
	if err != nil {
		return nil, err
	}

	var matches []models.StudyPlanner
	for _, planner := range planners {
		if plannerIdentity(planner) == identity {
			matches = append(matches, planner)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}

	match := &models.PlannerMatch{Planner: matches[0], Candidates: len(matches)}
	if len(matches) > 1 {
		ids := make([]string, 0, len(matches))
		for _, planner := range matches {
			ids = append(ids, planner.ID)
		}
		match.Warnings = append(match.Warnings, fmt.Sprintf("%d study planners match %s; using planner %s", len(matches), describeIdentity(identity), matches[0].ID))
		r.logger.Warn("ambiguous study planner identity",
			zap.String("program", identity.Program),
			zap.String("major", identity.Major),
			zap.String("intake_year", identity.IntakeYear),
			zap.String("intake_semester", identity.IntakeSemester),
			zap.Strings("planner_ids", ids),
		)
	}
	return match, nil
}

// EffectiveRequirements loads the planner's units, drops MPU units the student is exempt from and fills elective
// placeholders with passed units the planner does not already name. studentUnits is only read.
func (r *RequirementResolver) EffectiveRequirements(ctx context.Context, match *models.PlannerMatch, student models.Student, studentUnits []models.StudentUnit) ([]models.Requirement, error) {
	if match == nil {
		return nil, nil
	}
	units, err := r.planners.ListUnits(ctx, match.Planner.ID)
	if err != nil {
		return nil, err
	}

	claimed := make(map[string]struct{}, len(units))
	for _, unit := range units {
		if !IsPlaceholderCode(unit.Code()) {
			claimed[NormalizeCode(unit.Code())] = struct{}{}
		}
	}
	pool := electivePool(studentUnits, claimed)

	requirements := make([]models.Requirement, 0, len(units))
	for i, unit := range units {
		unitType := models.ParseUnitType(unit.UnitType)
		if !IsPlaceholderCode(unit.Code()) {
			code := NormalizeCode(unit.Code())
			if !mpuRequired(code, student) {
				continue
			}
			requirements = append(requirements, models.Requirement{
				PlannerUnit: unit,
				Key:         code,
				Type:        unitType,
				DisplayName: unit.UnitName,
			})
			continue
		}

		req := models.Requirement{PlannerUnit: unit, Type: unitType, Placeholder: true}
		slot := slotLabel(unit)
		if len(pool) > 0 {
			filler := pool[0]
			pool = pool[1:]
			req.Key = NormalizeCode(filler.Code())
			req.FilledBy = &filler
			req.DisplayName = fmt.Sprintf("%s: %s %s", slot, req.Key, strings.TrimSpace(filler.UnitName))
		} else {
			req.Key = fmt.Sprintf("ELECTIVE#%d", i)
			req.DisplayName = slot
		}
		requirements = append(requirements, req)
	}
	return requirements, nil
}

func mpuRequired(code string, student models.Student) bool {
	for _, rule := range mpuRules {
		if strings.HasPrefix(code, rule.prefix) {
			return rule.applies(student)
		}
	}
	return true
}

// electivePool lists passed units, once per code, that no explicit planner slot names.
func electivePool(units []models.StudentUnit, claimed map[string]struct{}) []models.StudentUnit {
	seen := make(map[string]struct{}, len(units))
	pool := make([]models.StudentUnit, 0, len(units))
	for _, unit := range units {
		if !unit.Passed() || IsPlaceholderCode(unit.Code()) {
			continue
		}
		code := NormalizeCode(unit.Code())
		if _, ok := claimed[code]; ok {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		pool = append(pool, unit)
	}
	return pool
}

func slotLabel(unit models.PlannerUnit) string {
	name := strings.TrimSpace(unit.UnitName)
	if IsPlaceholderCode(name) {
		name = "Elective"
	}
	semester, _ := models.ParseSemester(unit.Semester)
	return fmt.Sprintf("%s (Year %d, Semester %s)", name, unit.Year, semester)
}

func describeIdentity(identity models.PlannerFilter) string {
	return fmt.Sprintf("%s / %s (intake %s %s)", identity.Program, identity.Major, identity.IntakeSemester, identity.IntakeYear)
}
