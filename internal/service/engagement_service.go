package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openlearn/insights-api/internal/engagement"
	"github.com/openlearn/insights-api/internal/models"
	"github.com/openlearn/insights-api/pkg/config"
)

// EngagementRepository describes the persistence layer required by EngagementService.
type EngagementRepository interface {
	GroupedTimeline(ctx context.Context, courseID, username string) ([]models.EngagementActivity, error)
	ListByCourse(ctx context.Context, courseID string) ([]models.ModuleEngagement, error)
	ListByCourseAndUser(ctx context.Context, courseID, username string) ([]models.ModuleEngagement, error)
	AggregateByLearner(ctx context.Context, courseID string, lastWeekCutoff time.Time) ([]models.LearnerEngagement, error)
	MetricRanges(ctx context.Context, courseID string) ([]models.ModuleEngagementMetricRange, error)
}

// EngagementService serves learner timelines and per-course engagement
// aggregates with cache integration.
type EngagementService struct {
	repo    EngagementRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	cfg     config.EngagementConfig
	now     func() time.Time
}

// NewEngagementService constructs an engagement service.
func NewEngagementService(repo EngagementRepository, cache *CacheService, metrics *MetricsService, cfg config.EngagementConfig, logger *zap.Logger) *EngagementService {
	return &EngagementService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Timeline returns one learner's gapless daily engagement timeline for a
// course. Grouping runs in SQL or in process depending on configuration;
// the boolean indicates whether data originated from cache.
func (s *EngagementService) Timeline(ctx context.Context, courseID, username string) ([]engagement.TimelineEntry, bool, error) {
	cacheKey := makeCacheKey("engagement", "timeline", courseID, username)
	var cached []engagement.TimelineEntry
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get timeline cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	var activity []models.EngagementActivity
	var err error
	if s.cfg.SQLAggregation {
		activity, err = s.repo.GroupedTimeline(ctx, courseID, username)
	} else {
		var rows []models.ModuleEngagement
		rows, err = s.repo.ListByCourseAndUser(ctx, courseID, username)
		if err == nil {
			activity = engagement.Reduce(rows)
		}
	}
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("engagement_timeline", time.Since(start))
	}

	timeline := engagement.BuildTimeline(activity)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, timeline, s.cfg.CacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("cache timeline", zap.Error(err))
		}
	}
	return timeline, false, nil
}

// LearnerSummaries returns the per-learner engagement aggregates for a
// course, ordered by username. The aggregation runs in SQL or in process
// depending on configuration; both paths produce the same result.
func (s *EngagementService) LearnerSummaries(ctx context.Context, courseID string) ([]models.LearnerEngagement, bool, error) {
	cacheKey := makeCacheKey("engagement", "learners", courseID)
	var cached []models.LearnerEngagement
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get learner summary cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	cutoff := engagement.LastWeekCutoff(s.now())

	start := time.Now()
	var summaries []models.LearnerEngagement
	var err error
	if s.cfg.SQLAggregation {
		summaries, err = s.repo.AggregateByLearner(ctx, courseID, cutoff)
	} else {
		var rows []models.ModuleEngagement
		rows, err = s.repo.ListByCourse(ctx, courseID)
		if err == nil {
			summaries = engagement.AggregateLearners(rows, cutoff)
		}
	}
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("engagement_learner_summaries", time.Since(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summaries, s.cfg.CacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("cache learner summaries", zap.Error(err))
		}
	}
	return summaries, false, nil
}

// MetricRanges returns the engagement metric range partitions for a course.
func (s *EngagementService) MetricRanges(ctx context.Context, courseID string) ([]models.ModuleEngagementMetricRange, bool, error) {
	cacheKey := makeCacheKey("engagement", "ranges", courseID)
	var cached []models.ModuleEngagementMetricRange
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get metric range cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	ranges, err := s.repo.MetricRanges(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("engagement_metric_ranges", time.Since(start))
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, ranges, s.cfg.CacheTTL); err != nil && s.logger != nil {
			s.logger.Warn("cache metric ranges", zap.Error(err))
		}
	}
	return ranges, false, nil
}

func makeCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("insights")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
