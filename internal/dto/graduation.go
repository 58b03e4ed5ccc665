package dto

import "github.com/noah-isme/ssps-api/internal/models"

// RecomputeRequest captures POST /graduation/recompute payload.
type RecomputeRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,max=500,dive,required"`
}

// RecomputeResponse is returned once the batch is queued.
type RecomputeResponse struct {
	BatchID    string   `json:"batch_id"`
	StudentIDs []string `json:"student_ids"`
	Queued     int      `json:"queued"`
}

// NewRecomputeResponse maps a queued batch to its response.
func NewRecomputeResponse(batch *models.RecomputeBatch) RecomputeResponse {
	return RecomputeResponse{BatchID: batch.BatchID, StudentIDs: batch.StudentIDs, Queued: batch.Queued}
}

// ExportQuery binds the export query string.
type ExportQuery struct {
	Format string `form:"format" validate:"omitempty,oneof=csv pdf"`
}

// GraduationSummaryQuery binds the analytics filter.
type GraduationSummaryQuery struct {
	Program string `form:"program" validate:"omitempty,max=255"`
}
