package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/openlearn/insights-api/internal/models"
)

// EngagementRepository exposes read-optimised queries over the
// module_engagement result store tables.
type EngagementRepository struct {
	db *sqlx.DB
}

// NewEngagementRepository instantiates the repository.
func NewEngagementRepository(db *sqlx.DB) *EngagementRepository {
	return &EngagementRepository{db: db}
}

// GroupedTimeline returns one learner's engagement rows grouped by
// (date, entity_type, event) with the summed event count and the distinct
// entity count per group, ordered for timeline construction.
func (r *EngagementRepository) GroupedTimeline(ctx context.Context, courseID, username string) ([]models.EngagementActivity, error) {
	const query = `SELECT date, entity_type, event,
        SUM(count) AS total_count,
        COUNT(DISTINCT entity_id) AS distinct_entity_count
        FROM module_engagement
        WHERE course_id = $1 AND username = $2
        GROUP BY date, entity_type, event
        ORDER BY date ASC, entity_type ASC, event ASC`

	var activity []models.EngagementActivity
	if err := r.db.SelectContext(ctx, &activity, query, courseID, username); err != nil {
		return nil, fmt.Errorf("query grouped engagement timeline: %w", err)
	}
	return activity, nil
}

// ListByCourse returns every raw engagement row for a course ordered by
// username. Feeds the in-process aggregation path.
func (r *EngagementRepository) ListByCourse(ctx context.Context, courseID string) ([]models.ModuleEngagement, error) {
	const query = `SELECT course_id, username, date, entity_type, entity_id, event, count, created
        FROM module_engagement
        WHERE course_id = $1
        ORDER BY username ASC, date ASC`

	var rows []models.ModuleEngagement
	if err := r.db.SelectContext(ctx, &rows, query, courseID); err != nil {
		return nil, fmt.Errorf("query engagement rows by course: %w", err)
	}
	return rows, nil
}

// ListByCourseAndUser returns one learner's raw engagement rows.
func (r *EngagementRepository) ListByCourseAndUser(ctx context.Context, courseID, username string) ([]models.ModuleEngagement, error) {
	const query = `SELECT course_id, username, date, entity_type, entity_id, event, count, created
        FROM module_engagement
        WHERE course_id = $1 AND username = $2
        ORDER BY date ASC, entity_type ASC, event ASC`

	var rows []models.ModuleEngagement
	if err := r.db.SelectContext(ctx, &rows, query, courseID, username); err != nil {
		return nil, fmt.Errorf("query engagement rows by learner: %w", err)
	}
	return rows, nil
}

// AggregateByLearner runs the conditional aggregation in SQL: one summary
// row per learner with overall and trailing-window totals. Rows created
// strictly after lastWeekCutoff count toward the *_last_week columns. The
// video last-week column counts matching rows (constant 1 per row) while
// the problem and forum columns sum count; the in-process aggregator keeps
// the same asymmetry.
func (r *EngagementRepository) AggregateByLearner(ctx context.Context, courseID string, lastWeekCutoff time.Time) ([]models.LearnerEngagement, error) {
	const query = `SELECT username,
        COALESCE(SUM(CASE WHEN entity_type = 'video' THEN count END), 0) AS videos_overall,
        COALESCE(SUM(CASE WHEN entity_type = 'video' AND created > $2 THEN 1 END), 0) AS videos_last_week,
        COALESCE(SUM(CASE WHEN entity_type = 'problem' THEN count END), 0) AS problems_overall,
        COALESCE(SUM(CASE WHEN entity_type = 'problem' AND created > $2 THEN count END), 0) AS problems_last_week,
        COALESCE(SUM(CASE WHEN entity_type = 'problem' AND event = 'completed' THEN count END), 0) AS correct_problems_overall,
        COALESCE(SUM(CASE WHEN entity_type = 'problem' AND event = 'completed' AND created > $2 THEN count END), 0) AS correct_problems_last_week,
        COALESCE(SUM(CASE WHEN entity_type = 'problem' AND event = 'attempted' THEN count END), 0) AS problems_attempts_overall,
        COALESCE(SUM(CASE WHEN entity_type = 'problem' AND event = 'attempted' AND created > $2 THEN count END), 0) AS problems_attempts_last_week,
        COALESCE(SUM(CASE WHEN entity_type = 'discussion' THEN count END), 0) AS forum_posts_overall,
        COALESCE(SUM(CASE WHEN entity_type = 'discussion' AND created > $2 THEN count END), 0) AS forum_posts_last_week,
        MAX(created) AS date_last_active
        FROM module_engagement
        WHERE course_id = $1
        GROUP BY username
        ORDER BY username ASC`

	var summaries []models.LearnerEngagement
	if err := r.db.SelectContext(ctx, &summaries, query, courseID, lastWeekCutoff); err != nil {
		return nil, fmt.Errorf("query learner engagement aggregate: %w", err)
	}
	return summaries, nil
}

// MetricRanges returns the metric range partitions recorded for a course.
func (r *EngagementRepository) MetricRanges(ctx context.Context, courseID string) ([]models.ModuleEngagementMetricRange, error) {
	const query = `SELECT course_id, start_date, end_date, metric, range_type, low_value, high_value, created
        FROM module_engagement_metric_ranges
        WHERE course_id = $1
        ORDER BY metric ASC, range_type ASC`

	var ranges []models.ModuleEngagementMetricRange
	if err := r.db.SelectContext(ctx, &ranges, query, courseID); err != nil {
		return nil, fmt.Errorf("query engagement metric ranges: %w", err)
	}
	return ranges, nil
}
