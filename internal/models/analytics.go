package models

import "time"

// GraduationSummary aggregates derived graduation status per program and major.
type GraduationSummary struct {
	Program       string  `db:"program" json:"program"`
	Major         string  `db:"major" json:"major"`
	TotalStudents int     `db:"total_students" json:"total_students"`
	Graduated     int     `db:"graduated" json:"graduated"`
	NotGraduated  int     `db:"not_graduated" json:"not_graduated"`
	AverageCredit float64 `db:"average_credit" json:"average_credit"`
}

// GraduationSummaryFilter narrows the summary to a program.
type GraduationSummaryFilter struct {
	Program string
}

// SystemMetrics is a lightweight snapshot of process counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Evaluations              uint64    `json:"evaluations"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
