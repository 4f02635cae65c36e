package models

import "time"

// ProblemFirstLastAnswerDistribution counts first and last attempts for a
// particular answer to a problem part. Table answer_distribution.
type ProblemFirstLastAnswerDistribution struct {
	CourseID           string    `db:"course_id" json:"course_id"`
	ModuleID           string    `db:"module_id" json:"module_id"`
	PartID             string    `db:"part_id" json:"part_id"`
	Correct            *bool     `db:"correct" json:"correct"`
	ValueID            *string   `db:"value_id" json:"value_id"`
	AnswerValue        *string   `db:"answer_value_text" json:"answer_value"`
	Variant            *int      `db:"variant" json:"variant"`
	ProblemDisplayName *string   `db:"problem_display_name" json:"problem_display_name"`
	QuestionText       *string   `db:"question_text" json:"question_text"`
	FirstResponseCount int       `db:"first_response_count" json:"first_response_count"`
	LastResponseCount  int       `db:"last_response_count" json:"last_response_count"`
	Created            time.Time `db:"created" json:"created"`
}

// ProblemsAndTags stores per-tag submission counts for a problem. Table
// tags_distribution.
type ProblemsAndTags struct {
	CourseID           string    `db:"course_id" json:"course_id"`
	ModuleID           string    `db:"module_id" json:"module_id"`
	TagName            string    `db:"tag_name" json:"tag_name"`
	TagValue           string    `db:"tag_value" json:"tag_value"`
	TotalSubmissions   int       `db:"total_submissions" json:"total_submissions"`
	CorrectSubmissions int       `db:"correct_submissions" json:"correct_submissions"`
	Created            time.Time `db:"created" json:"created"`
}

// GradeDistribution counts occurrences of a particular grade on a module.
// Table grade_distribution.
type GradeDistribution struct {
	CourseID string    `db:"course_id" json:"course_id"`
	ModuleID string    `db:"module_id" json:"module_id"`
	Grade    int       `db:"grade" json:"grade"`
	MaxGrade int       `db:"max_grade" json:"max_grade"`
	Count    int       `db:"count" json:"count"`
	Created  time.Time `db:"created" json:"created"`
}

// SequentialOpenDistribution counts views of a sequential module. Table
// sequential_open_distribution.
type SequentialOpenDistribution struct {
	CourseID string    `db:"course_id" json:"course_id"`
	ModuleID string    `db:"module_id" json:"module_id"`
	Count    int       `db:"count" json:"count"`
	Created  time.Time `db:"created" json:"created"`
}
