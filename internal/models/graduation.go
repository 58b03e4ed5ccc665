package models

// Requirement is a planner unit after exemption filtering and elective reconciliation.
type Requirement struct {
	PlannerUnit
	// Key is the normalised code used for set reconciliation. Unfilled placeholders get a synthetic key.
	Key         string   `json:"key"`
	Type        UnitType `json:"type"`
	Placeholder bool     `json:"placeholder"`
	// FilledBy is set when a placeholder was satisfied by an otherwise unclaimed passed unit.
	FilledBy *StudentUnit `json:"filled_by,omitempty"`
	// DisplayName carries the slot label, annotated with the filling unit for placeholders.
	DisplayName string `json:"display_name"`
}

// PlannerMatch is the result of resolving a student's identity to a study planner.
type PlannerMatch struct {
	Planner StudyPlanner `json:"planner"`
	// Candidates counts how many planners matched; anything above one is a data anomaly.
	Candidates int      `json:"candidates"`
	Warnings   []string `json:"warnings,omitempty"`
}

// GraduationReport is the outcome of a graduation evaluation.
type GraduationReport struct {
	CanGraduate       bool     `json:"can_graduate"`
	TotalCredits      float64  `json:"total_credits"`
	CoreCredits       float64  `json:"core_credits"`
	MajorCredits      float64  `json:"major_credits"`
	CoreCompleted     int      `json:"core_completed"`
	MajorCompleted    int      `json:"major_completed"`
	RequiredTotal     int      `json:"required_total"`
	RequiredCompleted int      `json:"required_completed"`
	MissingCoreUnits  []string `json:"missing_core_units"`
	MissingMajorUnits []string `json:"missing_major_units"`
	MissingOtherUnits []string `json:"missing_other_units"`
	Messages          []string `json:"messages"`
	Warnings          []string `json:"warnings,omitempty"`
	PlannerInfo       *string  `json:"planner_info"`
	UpdatedStudent    Student  `json:"updated_student"`
}

// ProgressUnit annotates a required planner slot with the student's standing.
type ProgressUnit struct {
	PlannerUnit
	Category       UnitType `json:"category"`
	Completed      bool     `json:"completed"`
	ReplacedByCode *string  `json:"replaced_by_code"`
	ReplacedByName *string  `json:"replaced_by_name"`
}

// ProgressSummary counts completed against required slots.
type ProgressSummary struct {
	CompletedCount int `json:"completed_count"`
	TotalRequired  int `json:"total_required"`
}

// StudentProgress is a read-only view of a student against their planner.
type StudentProgress struct {
	Student      Student         `json:"student"`
	PlannerInfo  *string         `json:"planner_info"`
	PlannerUnits []ProgressUnit  `json:"default_planner_units"`
	StudentUnits []StudentUnit   `json:"student_units"`
	Summary      ProgressSummary `json:"summary"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// ExportFormat selects the rendering of an exported graduation report.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// RecomputeBatch acknowledges students queued for background re-evaluation.
type RecomputeBatch struct {
	BatchID    string   `json:"batch_id"`
	StudentIDs []string `json:"student_ids"`
	Queued     int      `json:"queued"`
}
