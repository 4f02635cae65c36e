package dto

import "github.com/openlearn/insights-api/internal/models"

// ReportRequest is the payload for creating an asynchronous report job.
type ReportRequest struct {
	Type     models.ReportType   `json:"type" validate:"required"`
	CourseID string              `json:"course_id" validate:"required"`
	Username string              `json:"username"`
	Format   models.ReportFormat `json:"format" validate:"required"`
}

// ReportJobResponse acknowledges an accepted report job.
type ReportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ReportStatus `json:"status"`
}

// ReportStatusResponse exposes job progress to clients.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
