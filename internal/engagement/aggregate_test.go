package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlearn/insights-api/internal/models"
)

func aggregateRow(username, entityType, event string, count int, created time.Time) models.ModuleEngagement {
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

func TestAggregateLearnersEmptyInput(t *testing.T) {
	assert.Empty(t, AggregateLearners(nil, time.Now()))
}

func TestAggregateLearnersTotalsAndWindow(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	cutoff := LastWeekCutoff(now)
	recent := now.Add(-24 * time.Hour)
	old := now.Add(-30 * 24 * time.Hour)

	rows := []models.ModuleEngagement{
		aggregateRow("amy", models.EntityTypeProblem, models.EventAttempted, 4, old),
		aggregateRow("amy", models.EntityTypeProblem, models.EventAttempted, 2, recent),
		aggregateRow("amy", models.EntityTypeProblem, models.EventCompleted, 1, recent),
		aggregateRow("amy", models.EntityTypeDiscussion, models.EventContributed, 3, old),
		aggregateRow("ben", models.EntityTypeVideo, models.EventViewed, 7, recent),
	}

	summaries := AggregateLearners(rows, cutoff)
	require.Len(t, summaries, 2)

	amy := summaries[0]
	assert.Equal(t, "amy", amy.Username)
	assert.Equal(t, 7, amy.ProblemsOverall)
	assert.Equal(t, 3, amy.ProblemsLastWeek)
	assert.Equal(t, 6, amy.ProblemsAttemptsOverall)
	assert.Equal(t, 2, amy.ProblemsAttemptsLastWeek)
	assert.Equal(t, 1, amy.CorrectProblemsOverall)
	assert.Equal(t, 1, amy.CorrectProblemsLastWeek)
	assert.Equal(t, 3, amy.ForumPostsOverall)
	assert.Zero(t, amy.ForumPostsLastWeek)
	assert.Zero(t, amy.VideosOverall)
	assert.Equal(t, recent, amy.DateLastActive)

	ben := summaries[1]
	assert.Equal(t, "ben", ben.Username)
	assert.Equal(t, 7, ben.VideosOverall)
	assert.Equal(t, recent, ben.DateLastActive)
}

func TestAggregateLearnersVideoLastWeekCountsRows(t *testing.T) {
	// Video last-week totals count matching rows, not summed event
	// counts; problem last-week totals sum count. The asymmetry is part
	// of the contract.
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	cutoff := LastWeekCutoff(now)
	recent := now.Add(-48 * time.Hour)

	rows := []models.ModuleEngagement{
		aggregateRow("cal", models.EntityTypeVideo, models.EventViewed, 5, recent),
		aggregateRow("cal", models.EntityTypeVideo, models.EventViewed, 3, recent),
		aggregateRow("cal", models.EntityTypeProblem, models.EventAttempted, 5, recent),
	}

	summaries := AggregateLearners(rows, cutoff)
	require.Len(t, summaries, 1)

	cal := summaries[0]
	assert.Equal(t, 8, cal.VideosOverall)
	assert.Equal(t, 2, cal.VideosLastWeek)
	assert.Equal(t, 5, cal.ProblemsLastWeek)
}

func TestAggregateLearnersCutoffIsExclusive(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)
	cutoff := LastWeekCutoff(now)

	rows := []models.ModuleEngagement{
		aggregateRow("dee", models.EntityTypeProblem, models.EventAttempted, 2, cutoff),
		aggregateRow("dee", models.EntityTypeProblem, models.EventAttempted, 3, cutoff.Add(time.Second)),
	}

	summaries := AggregateLearners(rows, cutoff)
	require.Len(t, summaries, 1)
	assert.Equal(t, 5, summaries[0].ProblemsOverall)
	assert.Equal(t, 3, summaries[0].ProblemsLastWeek)
}

func TestAggregateLearnersOrderedByUsername(t *testing.T) {
	now := time.Now().UTC()
	rows := []models.ModuleEngagement{
		aggregateRow("zoe", models.EntityTypeVideo, models.EventViewed, 1, now),
		aggregateRow("abe", models.EntityTypeVideo, models.EventViewed, 1, now),
		aggregateRow("mia", models.EntityTypeVideo, models.EventViewed, 1, now),
	}

	summaries := AggregateLearners(rows, LastWeekCutoff(now))
	require.Len(t, summaries, 3)
	assert.Equal(t, "abe", summaries[0].Username)
	assert.Equal(t, "mia", summaries[1].Username)
	assert.Equal(t, "zoe", summaries[2].Username)
}
