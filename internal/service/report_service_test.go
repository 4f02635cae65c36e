package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/openlearn/insights-api/internal/dto"
	"github.com/openlearn/insights-api/internal/models"
	"github.com/openlearn/insights-api/internal/repository"
	appErrors "github.com/openlearn/insights-api/pkg/errors"
	"github.com/openlearn/insights-api/pkg/jobs"
)

type memoryReportStore struct {
	mu     sync.Mutex
	jobs   map[string]*models.ReportJob
	nextID int
}

func newMemoryReportStore() *memoryReportStore {
	return &memoryReportStore{jobs: make(map[string]*models.ReportJob)}
}

func (m *memoryReportStore) Create(_ context.Context, job *models.ReportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job.ID == "" {
		m.nextID++
		job.ID = "job-" + time.Now().Format("150405") + "-" + string(rune('a'+m.nextID))
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	clone := *job
	m.jobs[job.ID] = &clone
	return nil
}

func (m *memoryReportStore) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *job
	return &clone, nil
}

func (m *memoryReportStore) Update(_ context.Context, id string, params repository.UpdateReportJobParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (m *memoryReportStore) ListQueued(_ context.Context, _ int) ([]models.ReportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var queued []models.ReportJob
	for _, job := range m.jobs {
		if job.Status == models.ReportStatusQueued {
			queued = append(queued, *job)
		}
	}
	return queued, nil
}

func (m *memoryReportStore) ListFinishedBefore(_ context.Context, _ time.Time, _ int) ([]models.ReportJob, error) {
	return nil, nil
}

type recordingQueue struct {
	mu       sync.Mutex
	enqueued []jobs.Job
	err      error
}

func (q *recordingQueue) Enqueue(job jobs.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

type stubGenerator struct {
	result *ExportResult
	err    error
}

func (g *stubGenerator) Generate(_ context.Context, _ *models.ReportJob) (*ExportResult, error) {
	return g.result, g.err
}

func TestReportServiceCreateJobEnqueues(t *testing.T) {
	store := newMemoryReportStore()
	queue := &recordingQueue{}
	svc := NewReportService(store, queue, nil, nil, zap.NewNop(), ReportServiceConfig{})

	resp, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:     models.ReportTypeLearnerEngagement,
		CourseID: "course-v1:edX+DemoX+Demo",
		Format:   models.ReportFormatCSV,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, resp.ID, queue.enqueued[0].ID)
}

func TestReportServiceCreateJobValidation(t *testing.T) {
	svc := NewReportService(newMemoryReportStore(), &recordingQueue{}, nil, nil, zap.NewNop(), ReportServiceConfig{})

	cases := []dto.ReportRequest{
		{Type: models.ReportTypeLearnerEngagement, Format: models.ReportFormatCSV},
		{Type: "bogus", CourseID: "c", Format: models.ReportFormatCSV},
		{Type: models.ReportTypeLearnerEngagement, CourseID: "c", Format: "xlsx"},
		{Type: models.ReportTypeEngagementTimeline, CourseID: "c", Format: models.ReportFormatCSV},
	}
	for _, req := range cases {
		_, err := svc.CreateJob(context.Background(), req)
		var appErr *appErrors.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	}
}

func TestReportServiceCreateJobEnqueueFailureMarksFailed(t *testing.T) {
	store := newMemoryReportStore()
	queue := &recordingQueue{err: errors.New("queue closed")}
	svc := NewReportService(store, queue, nil, nil, zap.NewNop(), ReportServiceConfig{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Type:     models.ReportTypeLearnerEngagement,
		CourseID: "course-v1:edX+DemoX+Demo",
		Format:   models.ReportFormatCSV,
	})
	require.Error(t, err)

	jobsList, err := store.ListQueued(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, jobsList)
}

func TestReportServiceGetStatusNotFound(t *testing.T) {
	svc := NewReportService(newMemoryReportStore(), &recordingQueue{}, nil, nil, zap.NewNop(), ReportServiceConfig{})
	_, err := svc.GetStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReportWorkerHandleSuccess(t *testing.T) {
	store := newMemoryReportStore()
	job := &models.ReportJob{
		Type:   models.ReportTypeLearnerEngagement,
		Params: models.ReportJobParams{CourseID: "course-v1:edX+DemoX+Demo", Format: models.ReportFormatCSV},
	}
	require.NoError(t, store.Create(context.Background(), job))

	generator := &stubGenerator{result: &ExportResult{
		RelativePath: "file.csv",
		Token:        "tok",
		URL:          "/api/v1/reports/download?token=tok",
		Format:       models.ReportFormatCSV,
	}}
	worker := NewReportWorker(store, generator, 3, zap.NewNop())

	require.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID}))

	updated, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, updated.Status)
	require.NotNil(t, updated.ResultURL)
	assert.Contains(t, *updated.ResultURL, "token=tok")
	assert.NotNil(t, updated.FinishedAt)
}

func TestReportWorkerHandleFailureRequeuesThenFails(t *testing.T) {
	store := newMemoryReportStore()
	job := &models.ReportJob{
		Type:   models.ReportTypeLearnerEngagement,
		Params: models.ReportJobParams{CourseID: "course-v1:edX+DemoX+Demo", Format: models.ReportFormatCSV},
	}
	require.NoError(t, store.Create(context.Background(), job))

	generator := &stubGenerator{err: errors.New("render failed")}
	worker := NewReportWorker(store, generator, 2, zap.NewNop())

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 0}))
	mid, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, mid.Status)

	require.Error(t, worker.Handle(context.Background(), jobs.Job{ID: job.ID, Attempt: 2}))
	final, err := store.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, final.Status)
	require.NotNil(t, final.ErrorMessage)
	assert.Equal(t, "render failed", *final.ErrorMessage)
}
