package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlearn/insights-api/internal/middleware"
	"github.com/openlearn/insights-api/internal/service"
	"github.com/openlearn/insights-api/pkg/response"
)

// CourseHandler exposes course activity and catalog metadata endpoints.
type CourseHandler struct {
	courses *service.CourseService
}

// NewCourseHandler constructs the course handler.
func NewCourseHandler(courses *service.CourseService) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// Activity godoc
// @Summary Most recent weekly activity for a course
// @Tags Courses
// @Produce json
// @Param course_id path string true "Course ID"
// @Param activity_type query string false "Activity type (defaults to any)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{course_id}/activity [get]
func (h *CourseHandler) Activity(c *gin.Context) {
	activity, cacheHit, err := h.courses.RecentActivity(c.Request.Context(), c.Param("course_id"), c.Query("activity_type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, activity, nil, middleware.ExtractMeta(c))
}

// Summary godoc
// @Summary Enrollment summary rows for a course
// @Tags Courses
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/summary [get]
func (h *CourseHandler) Summary(c *gin.Context) {
	summaries, cacheHit, err := h.courses.Summary(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summaries, nil, middleware.ExtractMeta(c))
}

// Programs godoc
// @Summary Programs a course belongs to
// @Tags Courses
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/programs [get]
func (h *CourseHandler) Programs(c *gin.Context) {
	programs, cacheHit, err := h.courses.Programs(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, programs, nil, middleware.ExtractMeta(c))
}
