package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ssps-api/internal/models"
	appErrors "github.com/noah-isme/ssps-api/pkg/errors"
)

type studentStore interface {
	FindByID(ctx context.Context, studentID string) (*models.Student, error)
	UpdateGraduation(ctx context.Context, studentID string, creditPoint float64, graduationStatus bool) error
}

type studentUnitReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentUnit, error)
}

type requirementSource interface {
	ResolvePlanner(ctx context.Context, identity models.PlannerFilter) (*models.PlannerMatch, error)
	EffectiveRequirements(ctx context.Context, match *models.PlannerMatch, student models.Student, studentUnits []models.StudentUnit) ([]models.Requirement, error)
}

// GraduationServiceParams groups the evaluator's collaborators.
type GraduationServiceParams struct {
	Students     studentStore
	StudentUnits studentUnitReader
	Resolver     requirementSource
	Weights      CreditWeights
	// StrictMode additionally requires MinCredits total credits before a student can graduate.
	StrictMode bool
	MinCredits float64
	Cache      *CacheService
	Metrics    *MetricsService
	Logger     *zap.Logger
}

// GraduationService evaluates graduation eligibility and owns the student's derived credit fields.
type GraduationService struct {
	students     studentStore
	studentUnits studentUnitReader
	resolver     requirementSource
	weights      CreditWeights
	strictMode   bool
	minCredits   float64
	cache        *CacheService
	metrics      *MetricsService
	logger       *zap.Logger
}

// NewGraduationService constructs a GraduationService.
func NewGraduationService(params GraduationServiceParams) *GraduationService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	weights := params.Weights
	if weights.Default <= 0 {
		weights.Default = DefaultUnitCredit
	}
	return &GraduationService{
		students:     params.Students,
		studentUnits: params.StudentUnits,
		resolver:     params.Resolver,
		weights:      weights,
		strictMode:   params.StrictMode,
		minCredits:   params.MinCredits,
		cache:        params.Cache,
		metrics:      params.Metrics,
		logger:       logger,
	}
}

// Evaluate recomputes a student's graduation eligibility and writes creditPoint and graduationStatus back.
// Only a missing student or a datastore failure produce an error; a missing planner is a negative report.
func (s *GraduationService) Evaluate(ctx context.Context, studentID string) (*models.GraduationReport, error) {
	start := time.Now()
	report, outcome, err := s.evaluate(ctx, studentID)
	s.metrics.ObserveEvaluation(outcome, time.Since(start))
	return report, err
}

func (s *GraduationService) evaluate(ctx context.Context, studentID string) (*models.GraduationReport, string, error) {
	student, units, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, outcomeOf(err), err
	}
	logger := s.logger.With(zap.String("student_id", student.StudentID))

	passed := passedCodes(units)
	report := &models.GraduationReport{
		TotalCredits:      s.weights.Sum(passed),
		MissingCoreUnits:  []string{},
		MissingMajorUnits: []string{},
		MissingOtherUnits: []string{},
		Messages:          []string{},
	}

	if len(passed) == 0 {
		report.Messages = append(report.Messages,
			"No completed units found for this student.",
			"Student is not yet eligible to graduate.")
		if err := s.persist(ctx, logger, student, report); err != nil {
			return nil, outcomeOf(err), err
		}
		return report, OutcomeNoUnits, nil
	}

	match, err := s.resolver.ResolvePlanner(ctx, IdentityOf(*student))
	if err != nil {
		err = appErrors.Unavailable(err, "failed to load study planners")
		return nil, outcomeOf(err), err
	}
	if match == nil {
		explanation := fmt.Sprintf("No study planner found for %s", describeStudent(*student))
		logger.Info("no study planner matches student",
			zap.String("program", student.StudentCourse),
			zap.String("major", student.StudentMajor),
			zap.String("intake_year", student.IntakeYear),
			zap.String("intake_term", student.IntakeTerm),
		)
		report.MissingCoreUnits = append(report.MissingCoreUnits, explanation)
		report.MissingMajorUnits = append(report.MissingMajorUnits, explanation)
		report.Messages = append(report.Messages,
			explanation+"; requirements cannot be checked.",
			fmt.Sprintf("Total credits earned: %.2f.", report.TotalCredits),
			"Student is not yet eligible to graduate.")
		if err := s.persist(ctx, logger, student, report); err != nil {
			return nil, outcomeOf(err), err
		}
		return report, OutcomeNoPlanner, nil
	}

	logger = logger.With(zap.String("planner_id", match.Planner.ID))
	info := plannerInfo(match.Planner)
	report.PlannerInfo = &info
	report.Warnings = append(report.Warnings, match.Warnings...)

	requirements, err := s.resolver.EffectiveRequirements(ctx, match, *student, units)
	if err != nil {
		err = appErrors.Unavailable(err, "failed to load planner units")
		return nil, outcomeOf(err), err
	}

	s.score(report, requirements, codeSet(passed))
	report.CanGraduate = report.RequiredCompleted == report.RequiredTotal
	belowFloor := s.strictMode && report.TotalCredits < s.minCredits
	if belowFloor {
		report.CanGraduate = false
	}
	report.Messages = s.messages(report, belowFloor)

	if err := s.persist(ctx, logger, student, report); err != nil {
		return nil, outcomeOf(err), err
	}
	if report.CanGraduate {
		return report, OutcomeEligible, nil
	}
	return report, OutcomeIneligible, nil
}

// Progress reports each effective planner unit against the student's passed units. It never writes.
func (s *GraduationService) Progress(ctx context.Context, studentID string) (*models.StudentProgress, error) {
	student, units, err := s.loadStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	progress := &models.StudentProgress{
		Student:      *student,
		PlannerUnits: []models.ProgressUnit{},
		StudentUnits: units,
	}
	if progress.StudentUnits == nil {
		progress.StudentUnits = []models.StudentUnit{}
	}

	match, err := s.resolver.ResolvePlanner(ctx, IdentityOf(*student))
	if err != nil {
		return nil, appErrors.Unavailable(err, "failed to load study planners")
	}
	if match == nil {
		progress.Warnings = append(progress.Warnings, fmt.Sprintf("No study planner found for %s", describeStudent(*student)))
		return progress, nil
	}
	info := plannerInfo(match.Planner)
	progress.PlannerInfo = &info
	progress.Warnings = append(progress.Warnings, match.Warnings...)

	requirements, err := s.resolver.EffectiveRequirements(ctx, match, *student, units)
	if err != nil {
		return nil, appErrors.Unavailable(err, "failed to load planner units")
	}

	passed := codeSet(passedCodes(units))
	counted := make(map[string]struct{}, len(requirements))
	for _, req := range requirements {
		_, done := passed[req.Key]
		unit := models.ProgressUnit{PlannerUnit: req.PlannerUnit, Category: req.Type, Completed: done}
		if req.FilledBy != nil {
			code := NormalizeCode(req.FilledBy.Code())
			name := strings.TrimSpace(req.FilledBy.UnitName)
			unit.ReplacedByCode = &code
			unit.ReplacedByName = &name
		}
		progress.PlannerUnits = append(progress.PlannerUnits, unit)

		if _, dup := counted[req.Key]; dup {
			continue
		}
		counted[req.Key] = struct{}{}
		progress.Summary.TotalRequired++
		if done {
			progress.Summary.CompletedCount++
		}
	}
	return progress, nil
}

func (s *GraduationService) loadStudent(ctx context.Context, studentID string) (*models.Student, []models.StudentUnit, error) {
	id := strings.TrimSpace(studentID)
	if id == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	student, err := s.findStudent(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	units, err := s.studentUnits.ListByStudent(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Unavailable(err, "failed to load student units")
	}
	return student, units, nil
}

func (s *GraduationService) findStudent(ctx context.Context, studentID string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrStudentNotFound, fmt.Sprintf("student %s not found", studentID))
		}
		return nil, appErrors.Unavailable(err, "failed to load student")
	}
	return student, nil
}

// score fills the per-category counters. Requirements sharing a key count once.
func (s *GraduationService) score(report *models.GraduationReport, requirements []models.Requirement, passed map[string]struct{}) {
	var coreCredits, majorCredits float64
	seen := make(map[string]struct{}, len(requirements))
	for _, req := range requirements {
		if _, dup := seen[req.Key]; dup {
			continue
		}
		seen[req.Key] = struct{}{}
		report.RequiredTotal++

		_, done := passed[req.Key]
		if done {
			report.RequiredCompleted++
		}
		switch req.Type {
		case models.UnitTypeCore:
			if done {
				report.CoreCompleted++
				coreCredits += s.weights.For(req.Key)
			} else {
				report.MissingCoreUnits = append(report.MissingCoreUnits, missingLabel(req))
			}
		case models.UnitTypeMajor:
			if done {
				report.MajorCompleted++
				majorCredits += s.weights.For(req.Key)
			} else {
				report.MissingMajorUnits = append(report.MissingMajorUnits, missingLabel(req))
			}
		default:
			if !done {
				report.MissingOtherUnits = append(report.MissingOtherUnits, missingLabel(req))
			}
		}
	}
	report.CoreCredits = roundCredits(coreCredits)
	report.MajorCredits = roundCredits(majorCredits)
}

func (s *GraduationService) messages(report *models.GraduationReport, belowFloor bool) []string {
	messages := []string{
		fmt.Sprintf("Completed %d of %d required units.", report.RequiredCompleted, report.RequiredTotal),
		fmt.Sprintf("Total credits earned: %.2f.", report.TotalCredits),
	}
	if len(report.MissingCoreUnits) == 0 {
		messages = append(messages, "All core units completed.")
	} else {
		messages = append(messages, "Missing core units: "+strings.Join(report.MissingCoreUnits, ", "))
	}
	if len(report.MissingMajorUnits) == 0 {
		messages = append(messages, "All major units completed.")
	} else {
		messages = append(messages, "Missing major units: "+strings.Join(report.MissingMajorUnits, ", "))
	}
	if len(report.MissingOtherUnits) > 0 {
		messages = append(messages, "Other missing units: "+strings.Join(report.MissingOtherUnits, ", "))
	}
	if belowFloor {
		messages = append(messages, fmt.Sprintf("At least %.2f credits are required; %.2f earned.", s.minCredits, report.TotalCredits))
	}
	if report.CanGraduate {
		messages = append(messages, "Student is eligible to graduate.")
	} else {
		messages = append(messages, "Student is not yet eligible to graduate.")
	}
	return messages
}

// persist writes the derived fields unless the stored values already equal the computed ones exactly, then reloads
// the student to verify the write.
func (s *GraduationService) persist(ctx context.Context, logger *zap.Logger, student *models.Student, report *models.GraduationReport) error {
	if student.CreditPoint == report.TotalCredits && student.GraduationStatus == report.CanGraduate {
		logger.Debug("graduation status unchanged")
		report.UpdatedStudent = *student
		return nil
	}

	if err := s.students.UpdateGraduation(ctx, student.StudentID, report.TotalCredits, report.CanGraduate); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrStudentNotFound, fmt.Sprintf("student %s not found", student.StudentID))
		}
		return appErrors.Unavailable(err, "failed to update graduation status")
	}
	updated, err := s.findStudent(ctx, student.StudentID)
	if err != nil {
		return err
	}
	if updated.CreditPoint != report.TotalCredits || updated.GraduationStatus != report.CanGraduate {
		logger.Warn("persisted graduation status differs from computed",
			zap.Float64("computed_credit_point", report.TotalCredits),
			zap.Float64("stored_credit_point", updated.CreditPoint),
			zap.Bool("computed_status", report.CanGraduate),
			zap.Bool("stored_status", updated.GraduationStatus),
		)
	}
	logger.Info("graduation status updated",
		zap.Float64("credit_point", report.TotalCredits),
		zap.Bool("graduation_status", report.CanGraduate),
	)
	report.UpdatedStudent = *updated

	_ = s.cache.Invalidate(ctx, graduationSummaryCachePattern)
	return nil
}

func missingLabel(req models.Requirement) string {
	if req.Placeholder && req.FilledBy == nil {
		return req.DisplayName
	}
	return req.Key
}

func plannerInfo(planner models.StudyPlanner) string {
	return fmt.Sprintf("%s - %s (intake %d, semester %s)",
		strings.TrimSpace(planner.Program), strings.TrimSpace(planner.Major), planner.IntakeYear, strings.TrimSpace(planner.IntakeSemester))
}

func describeStudent(student models.Student) string {
	return fmt.Sprintf("%s - %s (intake %s, semester %s)",
		strings.TrimSpace(student.StudentCourse), strings.TrimSpace(student.StudentMajor),
		strings.TrimSpace(student.IntakeYear), strings.TrimSpace(student.IntakeTerm))
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, appErrors.ErrStudentNotFound):
		return OutcomeNotFound
	case errors.Is(err, appErrors.ErrValidation):
		return OutcomeInvalid
	default:
		return OutcomeUnavailable
	}
}
