package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlearn/insights-api/internal/engagement"
	"github.com/openlearn/insights-api/internal/models"
	"github.com/openlearn/insights-api/pkg/config"
	appErrors "github.com/openlearn/insights-api/pkg/errors"
)

type mockEngagementRepo struct {
	activity  []models.EngagementActivity
	rows      []models.ModuleEngagement
	sqlResult []models.LearnerEngagement
	ranges    []models.ModuleEngagementMetricRange

	groupedCalls   int
	listCalls      int
	userCalls      int
	aggregateCalls int
	rangesCalls    int

	groupedErr   error
	listErr      error
	aggregateErr error
}

func (m *mockEngagementRepo) GroupedTimeline(_ context.Context, _, _ string) ([]models.EngagementActivity, error) {
	m.groupedCalls++
	if m.groupedErr != nil {
		return nil, m.groupedErr
	}
	return m.activity, nil
}

func (m *mockEngagementRepo) ListByCourse(_ context.Context, _ string) ([]models.ModuleEngagement, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.rows, nil
}

func (m *mockEngagementRepo) ListByCourseAndUser(_ context.Context, _, username string) ([]models.ModuleEngagement, error) {
	m.userCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	filtered := make([]models.ModuleEngagement, 0, len(m.rows))
	for _, row := range m.rows {
		if row.Username == username {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

func (m *mockEngagementRepo) AggregateByLearner(_ context.Context, _ string, _ time.Time) ([]models.LearnerEngagement, error) {
	m.aggregateCalls++
	if m.aggregateErr != nil {
		return nil, m.aggregateErr
	}
	return m.sqlResult, nil
}

func (m *mockEngagementRepo) MetricRanges(_ context.Context, _ string) ([]models.ModuleEngagementMetricRange, error) {
	m.rangesCalls++
	return m.ranges, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	return nil
}

// engagementFixture is a small course: two learners, activity inside and
// outside the trailing week.
func engagementFixture(now time.Time) []models.ModuleEngagement {
	recent := now.Add(-24 * time.Hour)
	old := now.Add(-30 * 24 * time.Hour)
	row := func(username, entityType, event string, count int, created time.Time) models.ModuleEngagement {
		return models.ModuleEngagement{
			CourseID:   "course-v1:edX+DemoX+Demo",
			Username:   username,
			Date:       models.DateOf(created),
			EntityType: entityType,
			EntityID:   "entity-1",
			Event:      event,
			Count:      count,
			Created:    created,
		}
	}
	return []models.ModuleEngagement{
		row("amy", models.EntityTypeProblem, models.EventAttempted, 4, old),
		row("amy", models.EntityTypeProblem, models.EventAttempted, 2, recent),
		row("amy", models.EntityTypeProblem, models.EventCompleted, 1, recent),
		row("amy", models.EntityTypeVideo, models.EventViewed, 3, recent),
		row("amy", models.EntityTypeVideo, models.EventViewed, 2, old),
		row("ben", models.EntityTypeDiscussion, models.EventContributed, 5, recent),
	}
}

func TestEngagementServiceTimelineCaching(t *testing.T) {
	repo := &mockEngagementRepo{activity: []models.EngagementActivity{
		{Date: models.NewDate(2024, time.March, 1), EntityType: models.EntityTypeVideo, Event: models.EventViewed, TotalCount: 4, DistinctEntityCount: 2},
	}}
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewEngagementService(repo, cacheSvc, nil, config.EngagementConfig{CacheEnabled: true, CacheTTL: time.Minute, SQLAggregation: true}, zap.NewNop())

	ctx := context.Background()
	timeline, cacheHit, err := svc.Timeline(ctx, "course-v1:edX+DemoX+Demo", "amy")
	require.NoError(t, err)
	assert.False(t, cacheHit)
	assert.Equal(t, 1, repo.groupedCalls)
	require.Len(t, timeline, 1)
	assert.Equal(t, 2, timeline[0].VideosViewed)

	cached, cacheHit2, err := svc.Timeline(ctx, "course-v1:edX+DemoX+Demo", "amy")
	require.NoError(t, err)
	assert.True(t, cacheHit2)
	assert.Equal(t, 1, repo.groupedCalls)
	assert.Equal(t, timeline, cached)
}

func TestEngagementServiceTimelineErrorPassthrough(t *testing.T) {
	repo := &mockEngagementRepo{groupedErr: assert.AnError}
	svc := NewEngagementService(repo, nil, nil, config.EngagementConfig{SQLAggregation: true}, zap.NewNop())

	_, _, err := svc.Timeline(context.Background(), "course-v1:edX+DemoX+Demo", "amy")
	assert.ErrorIs(t, err, assert.AnError)
}

// The grouped SQL path and the raw-row in-process path must produce the
// same timeline.
func TestEngagementServiceTimelinePathsAgree(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	rows := engagementFixture(now)
	var amyRows []models.ModuleEngagement
	for _, row := range rows {
		if row.Username == "amy" {
			amyRows = append(amyRows, row)
		}
	}
	repo := &mockEngagementRepo{rows: rows, activity: engagement.Reduce(amyRows)}

	sqlSvc := NewEngagementService(repo, nil, nil, config.EngagementConfig{SQLAggregation: true}, zap.NewNop())
	fromSQL, _, err := sqlSvc.Timeline(context.Background(), "course-v1:edX+DemoX+Demo", "amy")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.groupedCalls)

	inProcSvc := NewEngagementService(repo, nil, nil, config.EngagementConfig{SQLAggregation: false}, zap.NewNop())
	fromRows, _, err := inProcSvc.Timeline(context.Background(), "course-v1:edX+DemoX+Demo", "amy")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.userCalls)

	assert.Equal(t, fromSQL, fromRows)
	assert.NotEmpty(t, fromSQL)
}

// The SQL CASE path and the in-process path must agree. The mock's SQL
// result is computed by hand from the fixture; the in-process path reduces
// the same raw rows.
func TestEngagementServiceLearnerSummaryPathsAgree(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-24 * time.Hour)
	rows := engagementFixture(now)

	expected := []models.LearnerEngagement{
		{
			Username:                 "amy",
			VideosOverall:            5,
			VideosLastWeek:           1,
			ProblemsOverall:          7,
			ProblemsLastWeek:         3,
			CorrectProblemsOverall:   1,
			CorrectProblemsLastWeek:  1,
			ProblemsAttemptsOverall:  6,
			ProblemsAttemptsLastWeek: 2,
			DateLastActive:           recent,
		},
		{
			Username:           "ben",
			ForumPostsOverall:  5,
			ForumPostsLastWeek: 5,
			DateLastActive:     recent,
		},
	}

	repo := &mockEngagementRepo{rows: rows, sqlResult: expected}

	sqlSvc := NewEngagementService(repo, nil, nil, config.EngagementConfig{SQLAggregation: true}, zap.NewNop())
	sqlSvc.now = func() time.Time { return now }
	fromSQL, _, err := sqlSvc.LearnerSummaries(context.Background(), "course-v1:edX+DemoX+Demo")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.aggregateCalls)

	inProcSvc := NewEngagementService(repo, nil, nil, config.EngagementConfig{SQLAggregation: false}, zap.NewNop())
	inProcSvc.now = func() time.Time { return now }
	fromRows, _, err := inProcSvc.LearnerSummaries(context.Background(), "course-v1:edX+DemoX+Demo")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	assert.Equal(t, expected, fromSQL)
	assert.Equal(t, expected, fromRows)

	direct := engagement.AggregateLearners(rows, engagement.LastWeekCutoff(now))
	assert.Equal(t, expected, direct)
}

func TestEngagementServiceLearnerSummariesCached(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	repo := &mockEngagementRepo{sqlResult: []models.LearnerEngagement{{Username: "amy"}}}
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewEngagementService(repo, cacheSvc, nil, config.EngagementConfig{SQLAggregation: true, CacheTTL: time.Minute}, zap.NewNop())
	svc.now = func() time.Time { return now }

	ctx := context.Background()
	_, hit, err := svc.LearnerSummaries(ctx, "course-v1:edX+DemoX+Demo")
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = svc.LearnerSummaries(ctx, "course-v1:edX+DemoX+Demo")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, repo.aggregateCalls)
}

func TestEngagementServiceMetricRanges(t *testing.T) {
	repo := &mockEngagementRepo{ranges: []models.ModuleEngagementMetricRange{
		{CourseID: "course-v1:edX+DemoX+Demo", Metric: "problems_attempted", RangeType: "low", LowValue: 0, HighValue: 2.5},
	}}
	svc := NewEngagementService(repo, nil, nil, config.EngagementConfig{}, zap.NewNop())

	ranges, hit, err := svc.MetricRanges(context.Background(), "course-v1:edX+DemoX+Demo")
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, ranges, 1)
	assert.Equal(t, 1, repo.rangesCalls)
}
