package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openlearn/insights-api/internal/models"
)

// EnrollmentRepository reads the daily enrollment tables and their
// demographic breakdowns.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository instantiates the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// LatestDate returns the most recent date with enrollment data for the
// course. sql.ErrNoRows when the course has no enrollment rows at all.
func (r *EnrollmentRepository) LatestDate(ctx context.Context, courseID string) (models.Date, error) {
	const query = `SELECT date FROM course_enrollment_daily
        WHERE course_id = $1 ORDER BY date DESC LIMIT 1`

	var latest models.Date
	if err := r.db.GetContext(ctx, &latest, query, courseID); err != nil {
		return models.Date{}, fmt.Errorf("query latest enrollment date: %w", err)
	}
	return latest, nil
}

// DailySeries lists total enrollment per day over [start, end).
func (r *EnrollmentRepository) DailySeries(ctx context.Context, courseID string, start, end models.Date) ([]models.CourseEnrollmentDaily, error) {
	const query = `SELECT course_id, date, count, created
        FROM course_enrollment_daily
        WHERE course_id = $1 AND date >= $2 AND date < $3
        ORDER BY date ASC`

	var rows []models.CourseEnrollmentDaily
	if err := r.db.SelectContext(ctx, &rows, query, courseID, start, end); err != nil {
		return nil, fmt.Errorf("query daily enrollment series: %w", err)
	}
	return rows, nil
}

// ModesAt lists per-mode enrollment counts on a date.
func (r *EnrollmentRepository) ModesAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentModeDaily, error) {
	const query = `SELECT course_id, date, mode, count, cumulative_count, created
        FROM course_enrollment_mode_daily
        WHERE course_id = $1 AND date = $2
        ORDER BY mode ASC`

	var rows []models.CourseEnrollmentModeDaily
	if err := r.db.SelectContext(ctx, &rows, query, courseID, date); err != nil {
		return nil, fmt.Errorf("query enrollment by mode: %w", err)
	}
	return rows, nil
}

// BirthYearsAt lists per-birth-year enrollment counts on a date.
func (r *EnrollmentRepository) BirthYearsAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentByBirthYear, error) {
	const query = `SELECT course_id, date, birth_year, count, created
        FROM course_enrollment_birth_year_daily
        WHERE course_id = $1 AND date = $2
        ORDER BY birth_year ASC`

	var rows []models.CourseEnrollmentByBirthYear
	if err := r.db.SelectContext(ctx, &rows, query, courseID, date); err != nil {
		return nil, fmt.Errorf("query enrollment by birth year: %w", err)
	}
	return rows, nil
}

// EducationLevelsAt lists per-education-level enrollment counts on a date.
func (r *EnrollmentRepository) EducationLevelsAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentByEducation, error) {
	const query = `SELECT course_id, date, education_level, count, created
        FROM course_enrollment_education_level_daily
        WHERE course_id = $1 AND date = $2
        ORDER BY education_level ASC NULLS LAST`

	var rows []models.CourseEnrollmentByEducation
	if err := r.db.SelectContext(ctx, &rows, query, courseID, date); err != nil {
		return nil, fmt.Errorf("query enrollment by education level: %w", err)
	}
	return rows, nil
}

// GendersAt lists per-gender enrollment counts on a date. Gender cleaning
// happens on the model, not here.
func (r *EnrollmentRepository) GendersAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentByGender, error) {
	const query = `SELECT course_id, date, gender, count, created
        FROM course_enrollment_gender_daily
        WHERE course_id = $1 AND date = $2
        ORDER BY gender ASC NULLS LAST`

	var rows []models.CourseEnrollmentByGender
	if err := r.db.SelectContext(ctx, &rows, query, courseID, date); err != nil {
		return nil, fmt.Errorf("query enrollment by gender: %w", err)
	}
	return rows, nil
}

// CountriesAt lists current enrollment counts per country on a date.
func (r *EnrollmentRepository) CountriesAt(ctx context.Context, courseID string, date models.Date) ([]models.CourseEnrollmentByCountry, error) {
	const query = `SELECT course_id, date, country_code, count, created
        FROM course_enrollment_location_current
        WHERE course_id = $1 AND date = $2
        ORDER BY country_code ASC`

	var rows []models.CourseEnrollmentByCountry
	if err := r.db.SelectContext(ctx, &rows, query, courseID, date); err != nil {
		return nil, fmt.Errorf("query enrollment by country: %w", err)
	}
	return rows, nil
}
