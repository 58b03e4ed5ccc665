package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ssps-api/internal/models"
	appErrors "github.com/noah-isme/ssps-api/pkg/errors"
)

const (
	graduationSummaryCacheKey = "analytics:graduation"
	// graduationSummaryCachePattern matches every cached summary variant.
	graduationSummaryCachePattern = graduationSummaryCacheKey + "*"
)

// AnalyticsRepository describes the persistence layer required by AnalyticsService.
type AnalyticsRepository interface {
	GraduationSummary(ctx context.Context, filter models.GraduationSummaryFilter) ([]models.GraduationSummary, error)
}

// AnalyticsService serves cached graduation aggregates.
type AnalyticsService struct {
	repo    AnalyticsRepository
	cache   *CacheService
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewAnalyticsService constructs an analytics service. A non-positive ttl falls back to the cache default.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, ttl time.Duration, logger *zap.Logger) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, ttl: ttl, logger: logger}
}

// GraduationSummary returns graduated and not-graduated counts per program and major.
// The boolean indicates whether the data came from cache.
func (s *AnalyticsService) GraduationSummary(ctx context.Context, filter models.GraduationSummaryFilter) ([]models.GraduationSummary, bool, error) {
	cacheKey := makeAnalyticsCacheKey(filter.Program)

	var cached []models.GraduationSummary
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, true, nil
	}

	start := time.Now()
	summaries, err := s.repo.GraduationSummary(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Unavailable(err, "failed to load graduation summary")
	}
	s.metrics.ObserveDBQuery("analytics_graduation_summary", time.Since(start))
	if summaries == nil {
		summaries = []models.GraduationSummary{}
	}

	if err := s.cache.Set(ctx, cacheKey, summaries, s.ttl); err != nil {
		s.logger.Warn("cache graduation summary", zap.Error(err))
	}
	return summaries, false, nil
}

// SystemMetrics returns the instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.WriteString(graduationSummaryCacheKey)
	for _, part := range parts {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
