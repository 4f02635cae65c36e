package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openlearn/insights-api/internal/models"
	appErrors "github.com/openlearn/insights-api/pkg/errors"
)

// ProblemRepository describes the persistence layer required by ProblemService.
type ProblemRepository interface {
	AnswerDistribution(ctx context.Context, moduleID string) ([]models.ProblemFirstLastAnswerDistribution, error)
	GradeDistribution(ctx context.Context, moduleID string) ([]models.GradeDistribution, error)
	SequentialOpenDistribution(ctx context.Context, moduleID string) ([]models.SequentialOpenDistribution, error)
	TagsDistribution(ctx context.Context, moduleID string) ([]models.ProblemsAndTags, error)
}

// ProblemService serves the per-problem distribution records.
type ProblemService struct {
	repo    ProblemRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewProblemService constructs a problem service.
func NewProblemService(repo ProblemRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ProblemService {
	return &ProblemService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// AnswerDistribution lists first/last response counts per answer for a module.
func (s *ProblemService) AnswerDistribution(ctx context.Context, moduleID string) ([]models.ProblemFirstLastAnswerDistribution, bool, error) {
	return fetchDistribution(ctx, s, "answers", moduleID, s.repo.AnswerDistribution)
}

// GradeDistribution lists grade occurrence counts for a module.
func (s *ProblemService) GradeDistribution(ctx context.Context, moduleID string) ([]models.GradeDistribution, bool, error) {
	return fetchDistribution(ctx, s, "grades", moduleID, s.repo.GradeDistribution)
}

// SequentialOpen lists view counts for a sequential module.
func (s *ProblemService) SequentialOpen(ctx context.Context, moduleID string) ([]models.SequentialOpenDistribution, bool, error) {
	return fetchDistribution(ctx, s, "sequential_open", moduleID, s.repo.SequentialOpenDistribution)
}

// Tags lists per-tag submission counts for a module.
func (s *ProblemService) Tags(ctx context.Context, moduleID string) ([]models.ProblemsAndTags, bool, error) {
	return fetchDistribution(ctx, s, "tags", moduleID, s.repo.TagsDistribution)
}

// fetchDistribution wraps one distribution query with caching, DB timing
// metrics and empty-result mapping to ErrNotFound.
func fetchDistribution[T any](ctx context.Context, s *ProblemService, name, moduleID string, query func(context.Context, string) ([]T, error)) ([]T, bool, error) {
	cacheKey := makeCacheKey("problem", name, moduleID)
	var cached []T
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get problem %s cache: %w", name, err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	rows, err := query(ctx, moduleID)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("problem_"+name, time.Since(start))
	}
	if len(rows) == 0 {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "module not found")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rows, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache problem distribution", zap.String("distribution", name), zap.Error(err))
		}
	}
	return rows, false, nil
}
