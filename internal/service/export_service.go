package service

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openlearn/insights-api/internal/engagement"
	"github.com/openlearn/insights-api/internal/models"
	"github.com/openlearn/insights-api/pkg/export"
	"github.com/openlearn/insights-api/pkg/storage"
)

type engagementReader interface {
	Timeline(ctx context.Context, courseID, username string) ([]engagement.TimelineEntry, bool, error)
	LearnerSummaries(ctx context.Context, courseID string) ([]models.LearnerEngagement, bool, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
}

// ExportService builds report datasets and persists rendered files.
type ExportService struct {
	engagement engagementReader
	storage    fileStorage
	csv        csvRenderer
	pdf        pdfRenderer
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
	cfg        ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(engagementSvc engagementReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		engagement: engagementSvc,
		storage:    store,
		csv:        csv,
		pdf:        pdf,
		signer:     signer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Generate builds the dataset according to the job definition and stores
// the rendered export.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	dataset, title, err := s.buildDataset(ctx, job)
	if err != nil {
		return nil, err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	signedURL := fmt.Sprintf("%s/reports/download?token=%s", prefix, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	coursePart := sanitizeFilename(job.Params.CourseID)
	return fmt.Sprintf("%s_%s_%s.%s", string(job.Type), coursePart, timestamp, job.Params.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "+", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func (s *ExportService) buildDataset(ctx context.Context, job *models.ReportJob) (export.Dataset, string, error) {
	switch job.Type {
	case models.ReportTypeLearnerEngagement:
		return s.buildLearnerEngagementDataset(ctx, job.Params)
	case models.ReportTypeEngagementTimeline:
		return s.buildTimelineDataset(ctx, job.Params)
	default:
		return export.Dataset{}, "", fmt.Errorf("unsupported report type %s", job.Type)
	}
}

func (s *ExportService) buildLearnerEngagementDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	summaries, _, err := s.engagement.LearnerSummaries(ctx, params.CourseID)
	if err != nil {
		return export.Dataset{}, "", err
	}

	headers := []string{
		"username",
		"videos_overall", "videos_last_week",
		"problems_overall", "problems_last_week",
		"correct_problems_overall", "correct_problems_last_week",
		"problems_attempts_overall", "problems_attempts_last_week",
		"forum_posts_overall", "forum_posts_last_week",
		"date_last_active",
	}
	rows := make([]map[string]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, map[string]string{
			"username":                    summary.Username,
			"videos_overall":              strconv.Itoa(summary.VideosOverall),
			"videos_last_week":            strconv.Itoa(summary.VideosLastWeek),
			"problems_overall":            strconv.Itoa(summary.ProblemsOverall),
			"problems_last_week":          strconv.Itoa(summary.ProblemsLastWeek),
			"correct_problems_overall":    strconv.Itoa(summary.CorrectProblemsOverall),
			"correct_problems_last_week":  strconv.Itoa(summary.CorrectProblemsLastWeek),
			"problems_attempts_overall":   strconv.Itoa(summary.ProblemsAttemptsOverall),
			"problems_attempts_last_week": strconv.Itoa(summary.ProblemsAttemptsLastWeek),
			"forum_posts_overall":         strconv.Itoa(summary.ForumPostsOverall),
			"forum_posts_last_week":       strconv.Itoa(summary.ForumPostsLastWeek),
			"date_last_active":            summary.DateLastActive.UTC().Format(time.RFC3339),
		})
	}

	title := fmt.Sprintf("Learner Engagement: %s", params.CourseID)
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}

func (s *ExportService) buildTimelineDataset(ctx context.Context, params models.ReportJobParams) (export.Dataset, string, error) {
	timeline, _, err := s.engagement.Timeline(ctx, params.CourseID, params.Username)
	if err != nil {
		return export.Dataset{}, "", err
	}

	headers := []string{"date", "problems_attempted", "problems_completed", "videos_viewed", "discussion_contributions"}
	rows := make([]map[string]string, 0, len(timeline))
	for _, entry := range timeline {
		rows = append(rows, map[string]string{
			"date":                     entry.Date.String(),
			"problems_attempted":       strconv.Itoa(entry.ProblemsAttempted),
			"problems_completed":       strconv.Itoa(entry.ProblemsCompleted),
			"videos_viewed":            strconv.Itoa(entry.VideosViewed),
			"discussion_contributions": strconv.Itoa(entry.DiscussionContributions),
		})
	}

	title := fmt.Sprintf("Engagement Timeline: %s in %s", params.Username, params.CourseID)
	return export.Dataset{Headers: headers, Rows: rows}, title, nil
}
