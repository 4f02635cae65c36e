package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlearn/insights-api/internal/middleware"
	"github.com/openlearn/insights-api/internal/service"
	"github.com/openlearn/insights-api/pkg/response"
)

// ProblemHandler exposes per-problem distribution endpoints.
type ProblemHandler struct {
	problems *service.ProblemService
}

// NewProblemHandler constructs the problem handler.
func NewProblemHandler(problems *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problems: problems}
}

// AnswerDistribution godoc
// @Summary First and last answer counts per problem part
// @Tags Problems
// @Produce json
// @Param module_id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /problems/{module_id}/answer_distribution [get]
func (h *ProblemHandler) AnswerDistribution(c *gin.Context) {
	rows, cacheHit, err := h.problems.AnswerDistribution(c.Request.Context(), c.Param("module_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// GradeDistribution godoc
// @Summary Grade occurrence counts for a module
// @Tags Problems
// @Produce json
// @Param module_id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /problems/{module_id}/grade_distribution [get]
func (h *ProblemHandler) GradeDistribution(c *gin.Context) {
	rows, cacheHit, err := h.problems.GradeDistribution(c.Request.Context(), c.Param("module_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// SequentialOpen godoc
// @Summary View counts for a sequential module
// @Tags Problems
// @Produce json
// @Param module_id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /problems/{module_id}/sequential_open [get]
func (h *ProblemHandler) SequentialOpen(c *gin.Context) {
	rows, cacheHit, err := h.problems.SequentialOpen(c.Request.Context(), c.Param("module_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// Tags godoc
// @Summary Per-tag submission counts for a module
// @Tags Problems
// @Produce json
// @Param module_id path string true "Module ID"
// @Success 200 {object} response.Envelope
// @Router /problems/{module_id}/tags [get]
func (h *ProblemHandler) Tags(c *gin.Context) {
	rows, cacheHit, err := h.problems.Tags(c.Request.Context(), c.Param("module_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}
