package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openlearn/insights-api/internal/models"
	appErrors "github.com/openlearn/insights-api/pkg/errors"
)

// CourseRepository describes the persistence layer required by CourseService.
type CourseRepository interface {
	MostRecentActivity(ctx context.Context, courseID, activityType string) (*models.CourseActivityWeekly, error)
	MetaSummary(ctx context.Context, courseID string) ([]models.CourseMetaSummaryEnrollment, error)
	Programs(ctx context.Context, courseID string) ([]models.CourseProgramMetadata, error)
}

// CourseService serves weekly activity and catalog metadata for courses.
type CourseService struct {
	repo    CourseRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCourseService constructs a course service.
func NewCourseService(repo CourseRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *CourseService {
	return &CourseService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

var activityTypes = map[string]struct{}{
	models.ActivityTypeAny:            {},
	models.ActivityTypeAttemptProblem: {},
	models.ActivityTypePlayedVideo:    {},
	models.ActivityTypePostedForum:    {},
}

// RecentActivity returns the most recent weekly activity row for the
// requested type; an empty activityType means any activity.
func (s *CourseService) RecentActivity(ctx context.Context, courseID, activityType string) (*models.CourseActivityWeekly, bool, error) {
	if activityType == "" {
		activityType = models.ActivityTypeAny
	}
	if _, ok := activityTypes[activityType]; !ok {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown activity type %q", activityType))
	}

	cacheKey := makeCacheKey("course", "activity", courseID, activityType)
	var cached models.CourseActivityWeekly
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get course activity cache: %w", err)
		} else if hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	activity, err := s.repo.MostRecentActivity(ctx, courseID, activityType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "no activity recorded for course")
		}
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("course_activity", time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, activity, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache course activity", zap.Error(err))
		}
	}
	return activity, false, nil
}

// Summary returns the per-mode enrollment summary rows for a course.
func (s *CourseService) Summary(ctx context.Context, courseID string) ([]models.CourseMetaSummaryEnrollment, bool, error) {
	cacheKey := makeCacheKey("course", "summary", courseID)
	var cached []models.CourseMetaSummaryEnrollment
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get course summary cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	summaries, err := s.repo.MetaSummary(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("course_summary", time.Since(start))
	}
	if len(summaries) == 0 {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "course not found in summary table")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summaries, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache course summary", zap.Error(err))
		}
	}
	return summaries, false, nil
}

// Programs returns the programs a course belongs to.
func (s *CourseService) Programs(ctx context.Context, courseID string) ([]models.CourseProgramMetadata, bool, error) {
	cacheKey := makeCacheKey("course", "programs", courseID)
	var cached []models.CourseProgramMetadata
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get course programs cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	programs, err := s.repo.Programs(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("course_programs", time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, programs, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache course programs", zap.Error(err))
		}
	}
	return programs, false, nil
}
