package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/openlearn/insights-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEngagementRepositoryGroupedTimeline(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEngagementRepository(db)

	rows := sqlmock.NewRows([]string{"date", "entity_type", "event", "total_count", "distinct_entity_count"}).
		AddRow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "problem", "attempted", 6, 2).
		AddRow(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "video", "viewed", 5, 1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT date, entity_type, event")).
		WithArgs("course-v1:edX+DemoX+Demo", "learner").
		WillReturnRows(rows)

	activity, err := repo.GroupedTimeline(context.Background(), "course-v1:edX+DemoX+Demo", "learner")
	require.NoError(t, err)
	require.Len(t, activity, 2)
	require.Equal(t, models.NewDate(2024, time.January, 1), activity[0].Date)
	require.Equal(t, 6, activity[0].TotalCount)
	require.Equal(t, 2, activity[0].DistinctEntityCount)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepositoryAggregateByLearner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEngagementRepository(db)

	lastActive := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
	cutoff := time.Date(2024, 6, 8, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"username", "videos_overall", "videos_last_week", "problems_overall", "problems_last_week",
		"correct_problems_overall", "correct_problems_last_week", "problems_attempts_overall",
		"problems_attempts_last_week", "forum_posts_overall", "forum_posts_last_week", "date_last_active",
	}).AddRow("amy", 0, 0, 7, 3, 1, 1, 6, 2, 3, 0, lastActive)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT username,")).
		WithArgs("course-v1:edX+DemoX+Demo", cutoff).
		WillReturnRows(rows)

	summaries, err := repo.AggregateByLearner(context.Background(), "course-v1:edX+DemoX+Demo", cutoff)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "amy", summaries[0].Username)
	require.Equal(t, 7, summaries[0].ProblemsOverall)
	require.Equal(t, lastActive, summaries[0].DateLastActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEngagementRepositoryMetricRanges(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEngagementRepository(db)

	rows := sqlmock.NewRows([]string{"course_id", "start_date", "end_date", "metric", "range_type", "low_value", "high_value", "created"}).
		AddRow("course-v1:edX+DemoX+Demo", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "problems_attempted", "low", 0.0, 2.5, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM module_engagement_metric_ranges")).
		WithArgs("course-v1:edX+DemoX+Demo").
		WillReturnRows(rows)

	ranges, err := repo.MetricRanges(context.Background(), "course-v1:edX+DemoX+Demo")
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	require.True(t, ranges[0].Contains(2.4))
	require.False(t, ranges[0].Contains(2.5))
	require.NoError(t, mock.ExpectationsWereMet())
}
