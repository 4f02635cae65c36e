package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/openlearn/insights-api/internal/models"
)

func TestEnrollmentRepositoryLatestDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"date"}).
		AddRow(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT date FROM course_enrollment_daily")).
		WithArgs("course-v1:edX+DemoX+Demo").
		WillReturnRows(rows)

	latest, err := repo.LatestDate(context.Background(), "course-v1:edX+DemoX+Demo")
	require.NoError(t, err)
	require.Equal(t, models.NewDate(2024, time.May, 20), latest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryGendersAt(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	female := "f"
	date := models.NewDate(2024, time.May, 20)
	rows := sqlmock.NewRows([]string{"course_id", "date", "gender", "count", "created"}).
		AddRow("course-v1:edX+DemoX+Demo", date.Time, female, 40, time.Now()).
		AddRow("course-v1:edX+DemoX+Demo", date.Time, nil, 3, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_enrollment_gender_daily")).
		WithArgs("course-v1:edX+DemoX+Demo", date).
		WillReturnRows(rows)

	breakdown, err := repo.GendersAt(context.Background(), "course-v1:edX+DemoX+Demo", date)
	require.NoError(t, err)
	require.Len(t, breakdown, 2)
	require.Equal(t, models.GenderFemale, breakdown[0].CleanedGender())
	require.Equal(t, models.GenderUnknown, breakdown[1].CleanedGender())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDailySeries(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	start := models.NewDate(2024, time.May, 18)
	end := models.NewDate(2024, time.May, 21)
	rows := sqlmock.NewRows([]string{"course_id", "date", "count", "created"}).
		AddRow("course-v1:edX+DemoX+Demo", start.Time, 120, time.Now()).
		AddRow("course-v1:edX+DemoX+Demo", start.AddDays(1).Time, 123, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM course_enrollment_daily")).
		WithArgs("course-v1:edX+DemoX+Demo", start, end).
		WillReturnRows(rows)

	series, err := repo.DailySeries(context.Background(), "course-v1:edX+DemoX+Demo", start, end)
	require.NoError(t, err)
	require.Len(t, series, 2)
	require.Equal(t, 120, series[0].Count)
	require.NoError(t, mock.ExpectationsWereMet())
}
