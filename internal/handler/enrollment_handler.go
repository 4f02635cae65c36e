package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openlearn/insights-api/internal/middleware"
	"github.com/openlearn/insights-api/internal/models"
	"github.com/openlearn/insights-api/internal/service"
	appErrors "github.com/openlearn/insights-api/pkg/errors"
	"github.com/openlearn/insights-api/pkg/response"
)

// EnrollmentHandler exposes enrollment count and breakdown endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs the enrollment handler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Daily godoc
// @Summary Daily enrollment counts for a course
// @Tags Enrollment
// @Produce json
// @Param course_id path string true "Course ID"
// @Param start_date query string false "Start date (YYYY-MM-DD, inclusive)"
// @Param end_date query string false "End date (YYYY-MM-DD, exclusive)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/{course_id}/enrollment [get]
func (h *EnrollmentHandler) Daily(c *gin.Context) {
	start, err := parseDateQuery(c, "start_date")
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDateQuery(c, "end_date")
	if err != nil {
		response.Error(c, err)
		return
	}
	series, cacheHit, err := h.enrollments.Daily(c.Request.Context(), c.Param("course_id"), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, series, nil, middleware.ExtractMeta(c))
}

// Modes godoc
// @Summary Enrollment by mode at the latest observed date
// @Tags Enrollment
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/enrollment/modes [get]
func (h *EnrollmentHandler) Modes(c *gin.Context) {
	rows, cacheHit, err := h.enrollments.Modes(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// genderBreakdown augments the stored row with its cleaned gender label.
type genderBreakdown struct {
	models.CourseEnrollmentByGender
	Gender string `json:"gender"`
}

// Genders godoc
// @Summary Enrollment by cleaned gender at the latest observed date
// @Tags Enrollment
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/enrollment/genders [get]
func (h *EnrollmentHandler) Genders(c *gin.Context) {
	rows, cacheHit, err := h.enrollments.Genders(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	cleaned := make([]genderBreakdown, 0, len(rows))
	for _, row := range rows {
		cleaned = append(cleaned, genderBreakdown{CourseEnrollmentByGender: row, Gender: row.CleanedGender()})
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, cleaned, nil, middleware.ExtractMeta(c))
}

// Education godoc
// @Summary Enrollment by education level at the latest observed date
// @Tags Enrollment
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/enrollment/education [get]
func (h *EnrollmentHandler) Education(c *gin.Context) {
	rows, cacheHit, err := h.enrollments.EducationLevels(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// BirthYears godoc
// @Summary Enrollment by birth year at the latest observed date
// @Tags Enrollment
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/enrollment/birth_years [get]
func (h *EnrollmentHandler) BirthYears(c *gin.Context) {
	rows, cacheHit, err := h.enrollments.BirthYears(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

// Locations godoc
// @Summary Enrollment by country at the latest observed date
// @Tags Enrollment
// @Produce json
// @Param course_id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{course_id}/enrollment/locations [get]
func (h *EnrollmentHandler) Locations(c *gin.Context) {
	rows, cacheHit, err := h.enrollments.Countries(c.Request.Context(), c.Param("course_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, rows, nil, middleware.ExtractMeta(c))
}

func parseDateQuery(c *gin.Context, name string) (models.Date, error) {
	raw := c.Query(name)
	if raw == "" {
		return models.Date{}, nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, appErrors.Clone(appErrors.ErrValidation, name+" must be formatted YYYY-MM-DD")
	}
	return date, nil
}
