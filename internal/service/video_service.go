package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/openlearn/insights-api/internal/models"
	appErrors "github.com/openlearn/insights-api/pkg/errors"
)

// VideoRepository describes the persistence layer required by VideoService.
type VideoRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Video, error)
	Timeline(ctx context.Context, pipelineVideoID string) ([]models.VideoTimeline, error)
}

// VideoService serves video engagement records.
type VideoService struct {
	repo    VideoRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewVideoService constructs a video service.
func NewVideoService(repo VideoRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *VideoService {
	return &VideoService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// CourseVideos lists the videos of a course.
func (s *VideoService) CourseVideos(ctx context.Context, courseID string) ([]models.Video, bool, error) {
	cacheKey := makeCacheKey("video", "course", courseID)
	var cached []models.Video
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get course videos cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	videos, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("course_videos", time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, videos, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache course videos", zap.Error(err))
		}
	}
	return videos, false, nil
}

// Timeline lists a video's per-segment viewing counts.
func (s *VideoService) Timeline(ctx context.Context, pipelineVideoID string) ([]models.VideoTimeline, bool, error) {
	cacheKey := makeCacheKey("video", "timeline", pipelineVideoID)
	var cached []models.VideoTimeline
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get video timeline cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	segments, err := s.repo.Timeline(ctx, pipelineVideoID)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("video_timeline", time.Since(start))
	}
	if len(segments) == 0 {
		return nil, false, appErrors.Clone(appErrors.ErrNotFound, "video not found")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, segments, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache video timeline", zap.Error(err))
		}
	}
	return segments, false, nil
}
