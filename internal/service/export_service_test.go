package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlearn/insights-api/internal/engagement"
	"github.com/openlearn/insights-api/internal/models"
	"github.com/openlearn/insights-api/pkg/storage"
)

type fakeEngagementReader struct {
	timeline  []engagement.TimelineEntry
	summaries []models.LearnerEngagement
	err       error
}

func (f *fakeEngagementReader) Timeline(_ context.Context, _, _ string) ([]engagement.TimelineEntry, bool, error) {
	return f.timeline, false, f.err
}

func (f *fakeEngagementReader) LearnerSummaries(_ context.Context, _ string) ([]models.LearnerEngagement, bool, error) {
	return f.summaries, false, f.err
}

func newExportFixture(t *testing.T, reader engagementReader) *ExportService {
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	return NewExportService(reader, store, signer, ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}, zap.NewNop(), nil, nil)
}

func TestExportServiceGenerateLearnerEngagementCSV(t *testing.T) {
	reader := &fakeEngagementReader{summaries: []models.LearnerEngagement{
		{Username: "amy", ProblemsOverall: 7, VideosOverall: 5, DateLastActive: time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)},
	}}
	svc := newExportFixture(t, reader)

	job := &models.ReportJob{
		ID:     "job-1",
		Type:   models.ReportTypeLearnerEngagement,
		Params: models.ReportJobParams{CourseID: "course-v1:edX+DemoX+Demo", Format: models.ReportFormatCSV},
	}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.Contains(t, result.URL, "/api/v1/reports/download?token=")
	assert.Equal(t, models.ReportFormatCSV, result.Format)

	file, err := svc.Open(result.RelativePath)
	require.NoError(t, err)
	defer file.Close()

	buf := make([]byte, 4096)
	n, _ := file.Read(buf)
	content := string(buf[:n])
	assert.True(t, strings.HasPrefix(content, "username,videos_overall"))
	assert.Contains(t, content, "amy")
	assert.Contains(t, content, "2024-06-14T12:00:00Z")
}

func TestExportServiceGenerateTimelinePDF(t *testing.T) {
	reader := &fakeEngagementReader{timeline: []engagement.TimelineEntry{
		{Date: models.NewDate(2024, time.January, 1), ProblemsAttempted: 2},
		{Date: models.NewDate(2024, time.January, 2)},
	}}
	svc := newExportFixture(t, reader)

	job := &models.ReportJob{
		ID:     "job-2",
		Type:   models.ReportTypeEngagementTimeline,
		Params: models.ReportJobParams{CourseID: "course-v1:edX+DemoX+Demo", Username: "amy", Format: models.ReportFormatPDF},
	}

	result, err := svc.Generate(context.Background(), job)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	assert.Equal(t, "job-2", jobID)
	assert.Equal(t, result.RelativePath, relPath)
}

func TestExportServiceGenerateUnknownType(t *testing.T) {
	svc := newExportFixture(t, &fakeEngagementReader{})
	job := &models.ReportJob{
		ID:     "job-3",
		Type:   models.ReportType("unknown"),
		Params: models.ReportJobParams{CourseID: "c", Format: models.ReportFormatCSV},
	}
	_, err := svc.Generate(context.Background(), job)
	assert.Error(t, err)
}
