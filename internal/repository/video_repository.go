package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openlearn/insights-api/internal/models"
)

// VideoRepository reads the video engagement tables.
type VideoRepository struct {
	db *sqlx.DB
}

// NewVideoRepository instantiates the repository.
func NewVideoRepository(db *sqlx.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

// ListByCourse lists the videos of a course.
func (r *VideoRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Video, error) {
	const query = `SELECT course_id, pipeline_video_id, encoded_module_id, duration,
        segment_length, users_at_start, users_at_end, created
        FROM video
        WHERE course_id = $1
        ORDER BY encoded_module_id ASC`

	var videos []models.Video
	if err := r.db.SelectContext(ctx, &videos, query, courseID); err != nil {
		return nil, fmt.Errorf("query course videos: %w", err)
	}
	return videos, nil
}

// Timeline lists a video's per-segment viewing counts ordered by segment.
func (r *VideoRepository) Timeline(ctx context.Context, pipelineVideoID string) ([]models.VideoTimeline, error) {
	const query = `SELECT pipeline_video_id, segment, num_users, num_views, created
        FROM video_timeline
        WHERE pipeline_video_id = $1
        ORDER BY segment ASC`

	var segments []models.VideoTimeline
	if err := r.db.SelectContext(ctx, &segments, query, pipelineVideoID); err != nil {
		return nil, fmt.Errorf("query video timeline: %w", err)
	}
	return segments, nil
}
