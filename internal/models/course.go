package models

import "time"

// Course activity labels computed by the ingestion pipeline.
const (
	ActivityTypeAny            = "ACTIVE"
	ActivityTypeAttemptProblem = "ATTEMPTED_PROBLEM"
	ActivityTypePlayedVideo    = "PLAYED_VIDEO"
	ActivityTypePostedForum    = "POSTED_FORUM"
)

// CourseActivityWeekly counts unique users who performed a particular
// action during a week. Table course_activity, latest by interval_end.
type CourseActivityWeekly struct {
	CourseID      string    `db:"course_id" json:"course_id"`
	IntervalStart time.Time `db:"interval_start" json:"interval_start"`
	IntervalEnd   time.Time `db:"interval_end" json:"interval_end"`
	ActivityType  string    `db:"activity_type" json:"activity_type"`
	Count         int       `db:"count" json:"count"`
	Created       time.Time `db:"created" json:"created"`
}

// CourseMetaSummaryEnrollment is one summary row per course and enrollment
// mode. Table course_meta_summary_enrollment, unique on (course_id,
// enrollment_mode).
type CourseMetaSummaryEnrollment struct {
	CourseID           string    `db:"course_id" json:"course_id"`
	CatalogCourseTitle string    `db:"catalog_course_title" json:"catalog_course_title"`
	CatalogCourse      string    `db:"catalog_course" json:"catalog_course"`
	StartTime          time.Time `db:"start_time" json:"start_time"`
	EndTime            time.Time `db:"end_time" json:"end_time"`
	PacingType         string    `db:"pacing_type" json:"pacing_type"`
	Availability       string    `db:"availability" json:"availability"`
	EnrollmentMode     string    `db:"enrollment_mode" json:"enrollment_mode"`
	Count              int       `db:"count" json:"count"`
	CumulativeCount    int       `db:"cumulative_count" json:"cumulative_count"`
	CountChange7Days   int       `db:"count_change_7_days" json:"count_change_7_days"`
	PassingUsers       int       `db:"passing_users" json:"passing_users"`
	Created            time.Time `db:"created" json:"created"`
}

// CourseProgramMetadata links a course to a program. Table
// course_program_metadata, unique on (course_id, program_id).
type CourseProgramMetadata struct {
	CourseID     string    `db:"course_id" json:"course_id"`
	ProgramID    string    `db:"program_id" json:"program_id"`
	ProgramType  string    `db:"program_type" json:"program_type"`
	ProgramTitle string    `db:"program_title" json:"program_title"`
	Created      time.Time `db:"created" json:"created"`
}
