package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/ssps-api/internal/models"
	"github.com/noah-isme/ssps-api/pkg/config"
	appErrors "github.com/noah-isme/ssps-api/pkg/errors"
	"github.com/noah-isme/ssps-api/pkg/jobs"
)

const recomputeJobType = "graduation.recompute"

// RecomputeService re-evaluates students on a background worker pool, typically after a planner overwrite.
type RecomputeService struct {
	evaluator graduationEvaluator
	queue     *jobs.Queue
	metrics   *MetricsService
	logger    *zap.Logger
	enabled   bool
}

// NewRecomputeService wires the worker pool. Call Start before Enqueue.
func NewRecomputeService(evaluator graduationEvaluator, cfg config.RecomputeConfig, metrics *MetricsService, logger *zap.Logger) *RecomputeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RecomputeService{evaluator: evaluator, metrics: metrics, logger: logger, enabled: cfg.Enabled}
	s.queue = jobs.NewQueue("graduation-recompute", s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnDone:     s.done,
	})
	return s
}

// Start launches the workers when recomputation is enabled.
func (s *RecomputeService) Start(ctx context.Context) {
	if s == nil || !s.enabled {
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the worker pool, waiting for running evaluations.
func (s *RecomputeService) Stop() {
	if s == nil {
		return
	}
	s.queue.Stop()
}

// Shutdown drains the worker pool until ctx ends, then cancels running evaluations.
func (s *RecomputeService) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.queue.Shutdown(ctx)
}

// Enqueue schedules one evaluation per distinct student id.
func (s *RecomputeService) Enqueue(ctx context.Context, studentIDs []string) (*models.RecomputeBatch, error) {
	if s == nil || !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrServiceUnavailable, "batch recomputation is disabled")
	}
	ids := distinctIDs(studentIDs)
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one student id is required")
	}

	batch := &models.RecomputeBatch{BatchID: uuid.NewString(), StudentIDs: ids}
	for _, id := range ids {
		job := jobs.Job{ID: fmt.Sprintf("%s/%s", batch.BatchID, id), Type: recomputeJobType, Payload: id}
		if err := s.queue.Enqueue(ctx, job); err != nil {
			s.logger.Warn("recompute enqueue failed", zap.String("batch_id", batch.BatchID), zap.String("student_id", id), zap.Error(err))
			if batch.Queued == 0 {
				return nil, appErrors.Wrap(err, appErrors.ErrServiceUnavailable.Code, appErrors.ErrServiceUnavailable.Status, "recompute queue unavailable")
			}
			batch.StudentIDs = ids[:batch.Queued]
			break
		}
		batch.Queued++
	}
	s.logger.Info("recompute batch queued", zap.String("batch_id", batch.BatchID), zap.Int("queued", batch.Queued))
	return batch, nil
}

func (s *RecomputeService) handle(ctx context.Context, job jobs.Job) error {
	studentID, ok := job.Payload.(string)
	if !ok {
		return jobs.Permanent(fmt.Errorf("unexpected payload %T", job.Payload))
	}
	_, err := s.evaluator.Evaluate(ctx, studentID)
	if errors.Is(err, appErrors.ErrStudentNotFound) || errors.Is(err, appErrors.ErrValidation) {
		return jobs.Permanent(err)
	}
	return err
}

func (s *RecomputeService) done(job jobs.Job, err error) {
	if err != nil {
		s.metrics.ObserveRecomputeJob("failed")
		return
	}
	s.metrics.ObserveRecomputeJob("succeeded")
}

func distinctIDs(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
