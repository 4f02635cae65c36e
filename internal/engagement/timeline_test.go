package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openlearn/insights-api/internal/models"
)

func engagementRow(day int, entityType, event, entityID string, count int) models.ModuleEngagement {
	return models.ModuleEngagement{
		CourseID:   "course-v1:edX+DemoX+Demo",
		Username:   "learner",
		Date:       models.NewDate(2024, time.January, day),
		EntityType: entityType,
		EntityID:   entityID,
		Event:      event,
		Count:      count,
	}
}

func TestReduceGroupsByDateEntityTypeAndEvent(t *testing.T) {
	rows := []models.ModuleEngagement{
		engagementRow(1, models.EntityTypeProblem, models.EventAttempted, "block-a", 3),
		engagementRow(1, models.EntityTypeProblem, models.EventAttempted, "block-b", 2),
		engagementRow(1, models.EntityTypeProblem, models.EventAttempted, "block-a", 1),
		engagementRow(2, models.EntityTypeVideo, models.EventViewed, "video-1", 5),
	}

	activity := Reduce(rows)
	require.Len(t, activity, 2)

	assert.Equal(t, models.NewDate(2024, time.January, 1), activity[0].Date)
	assert.Equal(t, models.EntityTypeProblem, activity[0].EntityType)
	assert.Equal(t, models.EventAttempted, activity[0].Event)
	assert.Equal(t, 6, activity[0].TotalCount)
	assert.Equal(t, 2, activity[0].DistinctEntityCount)

	assert.Equal(t, models.NewDate(2024, time.January, 2), activity[1].Date)
	assert.Equal(t, 5, activity[1].TotalCount)
	assert.Equal(t, 1, activity[1].DistinctEntityCount)
}

func TestBuildTimelineEmptyInput(t *testing.T) {
	assert.Empty(t, BuildTimeline(nil))
	assert.Empty(t, BuildTimeline([]models.EngagementActivity{}))
}

func TestBuildTimelineSingleDay(t *testing.T) {
	timeline := BuildTimeline([]models.EngagementActivity{
		{Date: models.NewDate(2024, time.March, 10), EntityType: models.EntityTypeVideo, Event: models.EventViewed, TotalCount: 4, DistinctEntityCount: 2},
	})

	require.Len(t, timeline, 1)
	assert.Equal(t, models.NewDate(2024, time.March, 10), timeline[0].Date)
	assert.Equal(t, 2, timeline[0].VideosViewed)
	assert.Zero(t, timeline[0].ProblemsAttempted)
	assert.Zero(t, timeline[0].ProblemsCompleted)
	assert.Zero(t, timeline[0].DiscussionContributions)
}

func TestBuildTimelineFillsGaps(t *testing.T) {
	rows := []models.ModuleEngagement{
		engagementRow(1, models.EntityTypeProblem, models.EventAttempted, "block-a", 3),
		engagementRow(1, models.EntityTypeProblem, models.EventAttempted, "block-b", 2),
		engagementRow(4, models.EntityTypeVideo, models.EventViewed, "video-1", 1),
	}

	timeline := BuildTimeline(Reduce(rows))
	require.Len(t, timeline, 4)

	// Jan 1: attempts are counted by distinct entity, so 2 not 5.
	assert.Equal(t, models.NewDate(2024, time.January, 1), timeline[0].Date)
	assert.Equal(t, 2, timeline[0].ProblemsAttempted)

	// Jan 2 and Jan 3 are synthesized with every metric at zero.
	for i, day := range []int{2, 3} {
		entry := timeline[i+1]
		assert.Equal(t, models.NewDate(2024, time.January, day), entry.Date)
		assert.Zero(t, entry.ProblemsAttempted)
		assert.Zero(t, entry.ProblemsCompleted)
		assert.Zero(t, entry.VideosViewed)
		assert.Zero(t, entry.DiscussionContributions)
	}

	assert.Equal(t, models.NewDate(2024, time.January, 4), timeline[3].Date)
	assert.Equal(t, 1, timeline[3].VideosViewed)
}

func TestBuildTimelineNoGapProperty(t *testing.T) {
	rows := []models.ModuleEngagement{
		engagementRow(3, models.EntityTypeDiscussion, models.EventContributed, "topic-1", 1),
		engagementRow(17, models.EntityTypeProblem, models.EventCompleted, "block-a", 1),
		engagementRow(9, models.EntityTypeVideo, models.EventViewed, "video-1", 2),
	}

	timeline := BuildTimeline(Reduce(rows))
	require.Len(t, timeline, 15)

	expected := models.NewDate(2024, time.January, 3)
	for _, entry := range timeline {
		assert.Equal(t, expected, entry.Date)
		expected = expected.AddDays(1)
	}
}

func TestBuildTimelineDoesNotExtendBeyondObservedSpan(t *testing.T) {
	timeline := BuildTimeline(Reduce([]models.ModuleEngagement{
		engagementRow(5, models.EntityTypeVideo, models.EventViewed, "video-1", 1),
		engagementRow(6, models.EntityTypeVideo, models.EventViewed, "video-2", 1),
	}))

	require.Len(t, timeline, 2)
	assert.Equal(t, models.NewDate(2024, time.January, 5), timeline[0].Date)
	assert.Equal(t, models.NewDate(2024, time.January, 6), timeline[1].Date)
}

func TestBuildTimelineSumsContributionsToSameMetric(t *testing.T) {
	// Two groups on the same day both map to discussion_contributions,
	// which is counted by event count; contributions add.
	activity := []models.EngagementActivity{
		{Date: models.NewDate(2024, time.May, 1), EntityType: models.EntityTypeDiscussion, Event: models.EventContributed, TotalCount: 3, DistinctEntityCount: 1},
		{Date: models.NewDate(2024, time.May, 1), EntityType: models.EntityTypeDiscussion, Event: models.EventContributed, TotalCount: 2, DistinctEntityCount: 2},
	}

	timeline := BuildTimeline(activity)
	require.Len(t, timeline, 1)
	assert.Equal(t, 5, timeline[0].DiscussionContributions)
}

func TestBuildTimelineSkipsUnknownPairs(t *testing.T) {
	activity := []models.EngagementActivity{
		{Date: models.NewDate(2024, time.May, 1), EntityType: models.EntityTypeVideo, Event: models.EventViewed, TotalCount: 9, DistinctEntityCount: 3},
		{Date: models.NewDate(2024, time.May, 1), EntityType: models.EntityTypeVideo, Event: "paused", TotalCount: 4, DistinctEntityCount: 4},
	}

	timeline := BuildTimeline(activity)
	require.Len(t, timeline, 1)
	assert.Equal(t, 3, timeline[0].VideosViewed)
	assert.Zero(t, timeline[0].ProblemsAttempted)
}

func TestBuildTimelineIdempotent(t *testing.T) {
	rows := []models.ModuleEngagement{
		engagementRow(1, models.EntityTypeProblem, models.EventAttempted, "block-a", 3),
		engagementRow(4, models.EntityTypeVideo, models.EventViewed, "video-1", 1),
		engagementRow(2, models.EntityTypeDiscussion, models.EventContributed, "topic-1", 2),
	}

	first := BuildTimeline(Reduce(rows))
	second := BuildTimeline(Reduce(rows))
	assert.Equal(t, first, second)
}
