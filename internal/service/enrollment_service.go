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

// EnrollmentRepository describes the persistence layer required by EnrollmentService.
type EnrollmentRepository interface {
	LatestDate(ctx context.Context, courseID string) (models.Date, error)
	DailySeries(ctx context.Context, courseID string, start, end models.Date) ([]models.CourseEnrollmentDaily, error)
	ModesAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentModeDaily, error)
	BirthYearsAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentByBirthYear, error)
	EducationLevelsAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentByEducation, error)
	GendersAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentByGender, error)
	CountriesAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentByCountry, error)
}

// EnrollmentService serves enrollment counts and demographic breakdowns.
// Breakdown endpoints report the latest observed date unless an explicit
// range is requested.
type EnrollmentService struct {
	repo    EnrollmentRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewEnrollmentService constructs an enrollment service.
func NewEnrollmentService(repo EnrollmentRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// latest resolves the most recent enrollment date, mapping an empty course
// to ErrNotFound.
func (s *EnrollmentService) latest(ctx context.Context, courseID string) (models.Date, error) {
	date, err := s.repo.LatestDate(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Date{}, appErrors.Clone(appErrors.ErrNotFound, "no enrollment data for course")
		}
		return models.Date{}, err
	}
	return date, nil
}

// Daily returns the enrollment count series over [start, end). Zero dates
// default to the latest observed day.
func (s *EnrollmentService) Daily(ctx context.Context, courseID string, start, end models.Date) ([]models.CourseEnrollmentDaily, bool, error) {
	if start.IsZero() || end.IsZero() {
		latest, err := s.latest(ctx, courseID)
		if err != nil {
			return nil, false, err
		}
		if start.IsZero() {
			start = latest
		}
		if end.IsZero() {
			end = latest.AddDays(1)
		}
	}

	cacheKey := makeCacheKey("enrollment", "daily", courseID, start.String(), end.String())
	var cached []models.CourseEnrollmentDaily
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get enrollment cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	began := time.Now()
	series, err := s.repo.DailySeries(ctx, courseID, start, end)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("enrollment_daily", time.Since(began))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, series, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache enrollment daily", zap.Error(err))
		}
	}
	return series, false, nil
}

// Modes returns per-mode enrollment counts at the latest observed date.
func (s *EnrollmentService) Modes(ctx context.Context, courseID string) ([]models.CourseEnrollmentModeDaily, bool, error) {
	latest, err := s.latest(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	return fetchBreakdown(ctx, s, "modes", courseID, latest, s.repo.ModesAt)
}

// BirthYears returns per-birth-year enrollment counts at the latest observed date.
func (s *EnrollmentService) BirthYears(ctx context.Context, courseID string) ([]models.CourseEnrollmentByBirthYear, bool, error) {
	latest, err := s.latest(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	return fetchBreakdown(ctx, s, "birth_years", courseID, latest, s.repo.BirthYearsAt)
}

// EducationLevels returns per-education-level counts at the latest observed date.
func (s *EnrollmentService) EducationLevels(ctx context.Context, courseID string) ([]models.CourseEnrollmentByEducation, bool, error) {
	latest, err := s.latest(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	return fetchBreakdown(ctx, s, "education", courseID, latest, s.repo.EducationLevelsAt)
}

// Genders returns per-gender counts at the latest observed date.
func (s *EnrollmentService) Genders(ctx context.Context, courseID string) ([]models.CourseEnrollmentByGender, bool, error) {
	latest, err := s.latest(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	return fetchBreakdown(ctx, s, "genders", courseID, latest, s.repo.GendersAt)
}

// Countries returns per-country counts at the latest observed date.
func (s *EnrollmentService) Countries(ctx context.Context, courseID string) ([]models.CourseEnrollmentByCountry, bool, error) {
	latest, err := s.latest(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	return fetchBreakdown(ctx, s, "locations", courseID, latest, s.repo.CountriesAt)
}

// fetchBreakdown wraps one at-date breakdown query with caching and DB
// timing metrics.
func fetchBreakdown[T any](ctx context.Context, s *EnrollmentService, name, courseID string, date models.Date, query func(context.Context, string, models.Date) ([]T, error)) ([]T, bool, error) {
	cacheKey := makeCacheKey("enrollment", name, courseID, date.String())
	var cached []T
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get enrollment %s cache: %w", name, err)
		} else if hit {
			return cached, true, nil
		}
	}

	began := time.Now()
	rows, err := query(ctx, courseID, date)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("enrollment_"+name, time.Since(began))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rows, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache enrollment breakdown", zap.String("breakdown", name), zap.Error(err))
		}
	}
	return rows, false, nil
}
