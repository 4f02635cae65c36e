package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openlearn/insights-api/internal/models"
)

// CourseRepository reads course-level activity and catalog metadata.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository instantiates the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// MostRecentActivity returns the latest weekly activity row for a course
// and activity type. sql.ErrNoRows when none is recorded.
func (r *CourseRepository) MostRecentActivity(ctx context.Context, courseID, activityType string) (*models.CourseActivityWeekly, error) {
	const query = `SELECT course_id, interval_start, interval_end, activity_type, count, created
        FROM course_activity
        WHERE course_id = $1 AND activity_type = $2
        ORDER BY interval_end DESC LIMIT 1`

	var activity models.CourseActivityWeekly
	if err := r.db.GetContext(ctx, &activity, query, courseID, activityType); err != nil {
		return nil, fmt.Errorf("query most recent course activity: %w", err)
	}
	return &activity, nil
}

// MetaSummary lists per-mode enrollment summary rows for a course.
func (r *CourseRepository) MetaSummary(ctx context.Context, courseID string) ([]models.CourseMetaSummaryEnrollment, error) {
	const query = `SELECT course_id, catalog_course_title, catalog_course, start_time, end_time,
        pacing_type, availability, enrollment_mode, count, cumulative_count,
        count_change_7_days, passing_users, created
        FROM course_meta_summary_enrollment
        WHERE course_id = $1
        ORDER BY enrollment_mode ASC`

	var summaries []models.CourseMetaSummaryEnrollment
	if err := r.db.SelectContext(ctx, &summaries, query, courseID); err != nil {
		return nil, fmt.Errorf("query course meta summary: %w", err)
	}
	return summaries, nil
}

// Programs lists the programs a course belongs to.
func (r *CourseRepository) Programs(ctx context.Context, courseID string) ([]models.CourseProgramMetadata, error) {
	const query = `SELECT course_id, program_id, program_type, program_title, created
        FROM course_program_metadata
        WHERE course_id = $1
        ORDER BY program_id ASC`

	var programs []models.CourseProgramMetadata
	if err := r.db.SelectContext(ctx, &programs, query, courseID); err != nil {
		return nil, fmt.Errorf("query course programs: %w", err)
	}
	return programs, nil
}
