package models

import "time"

// Entity types appearing in module_engagement rows.
const (
	EntityTypeProblem    = "problem"
	EntityTypeVideo      = "video"
	EntityTypeDiscussion = "discussion"
)

// Events appearing in module_engagement rows.
const (
	EventAttempted   = "attempted"
	EventCompleted   = "completed"
	EventViewed      = "viewed"
	EventContributed = "contributed"
)

// ModuleEngagement is one immutable fact describing how many times a
// learner interacted with a courseware entity in a particular way on a
// day. Multiple rows may exist for the same (course, username, date,
// entity_type, event) and must be summed. Table module_engagement.
type ModuleEngagement struct {
	CourseID string `db:"course_id" json:"course_id"`
	Username string `db:"username" json:"username"`
	Date     Date   `db:"date" json:"date"`
	// One of "problem", "video" or "discussion".
	EntityType string `db:"entity_type" json:"entity_type"`
	// Usage key for problems, encoded module ID for videos,
	// commentable ID for discussions.
	EntityID string `db:"entity_id" json:"entity_id"`
	// What interaction occurred, e.g. "attempted" or "contributed".
	Event string `db:"event" json:"event"`
	// Times the learner interacted with this entity this way on this day.
	Count   int       `db:"count" json:"count"`
	Created time.Time `db:"created" json:"created"`
}

// EngagementActivity is one grouped query result over module_engagement:
// all rows for a (date, entity_type, event) tuple reduced to a total event
// count and a distinct entity count.
type EngagementActivity struct {
	Date                Date   `db:"date" json:"date"`
	EntityType          string `db:"entity_type" json:"entity_type"`
	Event               string `db:"event" json:"event"`
	TotalCount          int    `db:"total_count" json:"total_count"`
	DistinctEntityCount int    `db:"distinct_entity_count" json:"distinct_entity_count"`
}

// LearnerEngagement is the per-learner aggregate over a course: rolling
// all-time and trailing-7-day activity totals plus the last-active
// timestamp. Video last-week values count matching rows, not summed event
// counts; problem and forum last-week values sum count.
type LearnerEngagement struct {
	Username                 string    `db:"username" json:"username"`
	VideosOverall            int       `db:"videos_overall" json:"videos_overall"`
	VideosLastWeek           int       `db:"videos_last_week" json:"videos_last_week"`
	ProblemsOverall          int       `db:"problems_overall" json:"problems_overall"`
	ProblemsLastWeek         int       `db:"problems_last_week" json:"problems_last_week"`
	CorrectProblemsOverall   int       `db:"correct_problems_overall" json:"correct_problems_overall"`
	CorrectProblemsLastWeek  int       `db:"correct_problems_last_week" json:"correct_problems_last_week"`
	ProblemsAttemptsOverall  int       `db:"problems_attempts_overall" json:"problems_attempts_overall"`
	ProblemsAttemptsLastWeek int       `db:"problems_attempts_last_week" json:"problems_attempts_last_week"`
	ForumPostsOverall        int       `db:"forum_posts_overall" json:"forum_posts_overall"`
	ForumPostsLastWeek       int       `db:"forum_posts_last_week" json:"forum_posts_last_week"`
	DateLastActive           time.Time `db:"date_last_active" json:"date_last_active"`
}

// ModuleEngagementMetricRange partitions learners into a range_type (low,
// normal or high) for a metric. Both the date window and the value window
// are left-closed, right-open. Table module_engagement_metric_ranges.
type ModuleEngagementMetricRange struct {
	CourseID  string `db:"course_id" json:"course_id"`
	StartDate Date   `db:"start_date" json:"start_date"`
	// No data from end_date onward is included in the analysis.
	EndDate   Date    `db:"end_date" json:"end_date"`
	Metric    string  `db:"metric" json:"metric"`
	RangeType string  `db:"range_type" json:"range_type"`
	LowValue  float64 `db:"low_value" json:"low_value"`
	// A metric value equal to high_value falls outside this range.
	HighValue float64   `db:"high_value" json:"high_value"`
	Created   time.Time `db:"created" json:"created"`
}

// Contains reports whether a metric value falls in [low_value, high_value).
func (r ModuleEngagementMetricRange) Contains(value float64) bool {
	return value >= r.LowValue && value < r.HighValue
}

// CoversDate reports whether a date falls in [start_date, end_date).
func (r ModuleEngagementMetricRange) CoversDate(d Date) bool {
	return !d.Before(r.StartDate.Time) && d.Before(r.EndDate.Time)
}
