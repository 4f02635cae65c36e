package models

import "time"

// Video describes a video within a course. Table video.
type Video struct {
	CourseID        string    `db:"course_id" json:"course_id"`
	PipelineVideoID string    `db:"pipeline_video_id" json:"pipeline_video_id"`
	EncodedModuleID string    `db:"encoded_module_id" json:"encoded_module_id"`
	Duration        int       `db:"duration" json:"duration"`
	SegmentLength   int       `db:"segment_length" json:"segment_length"`
	UsersAtStart    int       `db:"users_at_start" json:"users_at_start"`
	UsersAtEnd      int       `db:"users_at_end" json:"users_at_end"`
	Created         time.Time `db:"created" json:"created"`
}

// VideoTimeline is one segment of a video's viewing timeline. Table
// video_timeline, ordered by segment.
type VideoTimeline struct {
	PipelineVideoID string    `db:"pipeline_video_id" json:"pipeline_video_id"`
	Segment         int       `db:"segment" json:"segment"`
	NumUsers        int       `db:"num_users" json:"num_users"`
	NumViews        int       `db:"num_views" json:"num_views"`
	Created         time.Time `db:"created" json:"created"`
}
