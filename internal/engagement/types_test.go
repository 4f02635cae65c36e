package engagement

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openlearn/insights-api/internal/models"
)

func TestClassifyKnownPairs(t *testing.T) {
	cases := []struct {
		entityType    string
		event         string
		metric        Metric
		countByEntity bool
	}{
		{models.EntityTypeProblem, models.EventAttempted, MetricProblemsAttempted, true},
		{models.EntityTypeProblem, models.EventCompleted, MetricProblemsCompleted, true},
		{models.EntityTypeVideo, models.EventViewed, MetricVideosViewed, true},
		{models.EntityTypeDiscussion, models.EventContributed, MetricDiscussionContributions, false},
	}

	for _, tc := range cases {
		metric, countByEntity, ok := Classify(tc.entityType, tc.event)
		assert.True(t, ok, "%s/%s", tc.entityType, tc.event)
		assert.Equal(t, tc.metric, metric)
		assert.Equal(t, tc.countByEntity, countByEntity)
	}
}

func TestClassifyUnknownPairs(t *testing.T) {
	for _, pair := range [][2]string{
		{models.EntityTypeProblem, models.EventViewed},
		{models.EntityTypeVideo, "paused"},
		{models.EntityTypeDiscussion, models.EventCompleted},
		{"exam", models.EventAttempted},
	} {
		_, _, ok := Classify(pair[0], pair[1])
		assert.False(t, ok, "%s/%s", pair[0], pair[1])
	}
}

func TestAllMetricsClosedSet(t *testing.T) {
	assert.Equal(t, []Metric{
		MetricProblemsAttempted,
		MetricProblemsCompleted,
		MetricVideosViewed,
		MetricDiscussionContributions,
	}, AllMetrics)
}
