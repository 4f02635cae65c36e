package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/openlearn/insights-api/internal/models"
)

// ProblemRepository reads the per-problem distribution tables.
type ProblemRepository struct {
	db *sqlx.DB
}

// NewProblemRepository instantiates the repository.
func NewProblemRepository(db *sqlx.DB) *ProblemRepository {
	return &ProblemRepository{db: db}
}

// AnswerDistribution lists first/last response counts per answer for a
// problem module.
func (r *ProblemRepository) AnswerDistribution(ctx context.Context, moduleID string) ([]models.ProblemFirstLastAnswerDistribution, error) {
	const query = `SELECT course_id, module_id, part_id, correct, value_id, answer_value_text,
        variant, problem_display_name, question_text, first_response_count,
        last_response_count, created
        FROM answer_distribution
        WHERE module_id = $1
        ORDER BY part_id ASC, value_id ASC`

	var rows []models.ProblemFirstLastAnswerDistribution
	if err := r.db.SelectContext(ctx, &rows, query, moduleID); err != nil {
		return nil, fmt.Errorf("query answer distribution: %w", err)
	}
	return rows, nil
}

// GradeDistribution lists grade occurrence counts for a module.
func (r *ProblemRepository) GradeDistribution(ctx context.Context, moduleID string) ([]models.GradeDistribution, error) {
	const query = `SELECT course_id, module_id, grade, max_grade, count, created
        FROM grade_distribution
        WHERE module_id = $1
        ORDER BY grade ASC`

	var rows []models.GradeDistribution
	if err := r.db.SelectContext(ctx, &rows, query, moduleID); err != nil {
		return nil, fmt.Errorf("query grade distribution: %w", err)
	}
	return rows, nil
}

// SequentialOpenDistribution lists view counts for a sequential module.
func (r *ProblemRepository) SequentialOpenDistribution(ctx context.Context, moduleID string) ([]models.SequentialOpenDistribution, error) {
	const query = `SELECT course_id, module_id, count, created
        FROM sequential_open_distribution
        WHERE module_id = $1`

	var rows []models.SequentialOpenDistribution
	if err := r.db.SelectContext(ctx, &rows, query, moduleID); err != nil {
		return nil, fmt.Errorf("query sequential open distribution: %w", err)
	}
	return rows, nil
}

// TagsDistribution lists per-tag submission counts for a module.
func (r *ProblemRepository) TagsDistribution(ctx context.Context, moduleID string) ([]models.ProblemsAndTags, error) {
	const query = `SELECT course_id, module_id, tag_name, tag_value, total_submissions,
        correct_submissions, created
        FROM tags_distribution
        WHERE module_id = $1
        ORDER BY tag_name ASC, tag_value ASC`

	var rows []models.ProblemsAndTags
	if err := r.db.SelectContext(ctx, &rows, query, moduleID); err != nil {
		return nil, fmt.Errorf("query tags distribution: %w", err)
	}
	return rows, nil
}
