package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlearn/insights-api/internal/middleware"
	"github.com/openlearn/insights-api/internal/service"
	"github.com/openlearn/insights-api/pkg/response"
)

// VideoHandler exposes video engagement endpoints.
type VideoHandler struct {
	videos *service.VideoService
}

// NewVideoHandler constructs the video handler.
func NewVideoHandler(videos *service.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

// CourseVideos godoc
// @Summary Videos of a course
// @Tags Videos
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/videos [get]
func (h *VideoHandler) CourseVideos(c *gin.Context) {
	videos, cacheHit, err := h.videos.CourseVideos(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, videos, nil, middleware.ExtractMeta(c))
}

// Timeline godoc
// @Summary Per-segment viewing counts for a video
// @Tags Videos
// @Produce json
// @Param video_id path string true "Pipeline video ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /videos/{video_id}/timeline [get]
func (h *VideoHandler) Timeline(c *gin.Context) {
	segments, cacheHit, err := h.videos.Timeline(c.Request.Context(), c.Param("video_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, segments, nil, middleware.ExtractMeta(c))
}
