package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlearn/insights-api/internal/engagement"
	"github.com/openlearn/insights-api/internal/middleware"
	"github.com/openlearn/insights-api/internal/models"
	appErrors "github.com/openlearn/insights-api/pkg/errors"
	"github.com/openlearn/insights-api/pkg/response"
)

type engagementProvider interface {
	Timeline(ctx context.Context, courseID, username string) ([]engagement.TimelineEntry, bool, error)
	LearnerSummaries(ctx context.Context, courseID string) ([]models.LearnerEngagement, bool, error)
	MetricRanges(ctx context.Context, courseID string) ([]models.ModuleEngagementMetricRange, bool, error)
}

// EngagementHandler exposes learner engagement endpoints.
type EngagementHandler struct {
	engagement engagementProvider
}

// NewEngagementHandler constructs the engagement handler.
func NewEngagementHandler(engagement engagementProvider) *EngagementHandler {
	return &EngagementHandler{engagement: engagement}
}

// Timeline godoc
// @Summary Daily engagement timeline for one learner
// @Tags Engagement
// @Produce json
// @Param username path string true "Username"
// @Param course_id query string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /learners/{username}/engagement_timeline [get]
func (h *EngagementHandler) Timeline(c *gin.Context) {
	courseID := c.Query("course_id")
	if courseID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "course_id is required"))
		return
	}
	timeline, cacheHit, err := h.engagement.Timeline(c.Request.Context(), courseID, c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, timeline, nil, middleware.ExtractMeta(c))
}

// LearnerSummaries godoc
// @Summary Per-learner engagement aggregates for a course
// @Tags Engagement
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/learner_engagement [get]
func (h *EngagementHandler) LearnerSummaries(c *gin.Context) {
	summaries, cacheHit, err := h.engagement.LearnerSummaries(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summaries, nil, middleware.ExtractMeta(c))
}

// MetricRanges godoc
// @Summary Engagement metric range partitions for a course
// @Tags Engagement
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/engagement_ranges [get]
func (h *EngagementHandler) MetricRanges(c *gin.Context) {
	ranges, cacheHit, err := h.engagement.MetricRanges(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, ranges, nil, middleware.ExtractMeta(c))
}
