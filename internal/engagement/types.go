// Package engagement holds the pure reductions behind the learner
// engagement endpoints: classifying raw (entity_type, event) pairs into
// named metrics, building gapless daily timelines, and aggregating
// per-learner activity summaries.
package engagement

import "github.com/openlearn/insights-api/internal/models"

// Metric is a named engagement quantity derived from raw event rows.
type Metric string

const (
	MetricProblemsAttempted       Metric = "problems_attempted"
	MetricProblemsCompleted       Metric = "problems_completed"
	MetricVideosViewed            Metric = "videos_viewed"
	MetricDiscussionContributions Metric = "discussion_contributions"
)

// AllMetrics is the closed metric set, in output order. Every timeline
// entry carries a value for each of these, defaulting to zero.
var AllMetrics = []Metric{
	MetricProblemsAttempted,
	MetricProblemsCompleted,
	MetricVideosViewed,
	MetricDiscussionContributions,
}

// Classify maps a raw (entity_type, event) pair to its metric.
// countByEntity reports whether the metric counts distinct entity IDs
// rather than summed event counts: "how many distinct videos were viewed"
// versus "how many view events occurred". ok is false for pairs outside
// the known set; callers skip such rows rather than fail the whole
// reduction.
func Classify(entityType, event string) (metric Metric, countByEntity bool, ok bool) {
	switch entityType {
	case models.EntityTypeProblem:
		switch event {
		case models.EventAttempted:
			return MetricProblemsAttempted, true, true
		case models.EventCompleted:
			return MetricProblemsCompleted, true, true
		}
	case models.EntityTypeVideo:
		if event == models.EventViewed {
			return MetricVideosViewed, true, true
		}
	case models.EntityTypeDiscussion:
		if event == models.EventContributed {
			return MetricDiscussionContributions, false, true
		}
	}
	return "", false, false
}
