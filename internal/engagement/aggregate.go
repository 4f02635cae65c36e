package engagement

import (
	"sort"
	"time"

	"github.com/openlearn/insights-api/internal/models"
)

// LastWeekCutoff returns the trailing-7-day boundary used by the
// aggregation. It is evaluated once per call, not per row, so a single
// aggregation is internally consistent.
func LastWeekCutoff(now time.Time) time.Time {
	return now.Add(-7 * 24 * time.Hour)
}

// AggregateLearners reduces a course's raw engagement rows into one
// summary per learner, ordered by username. Rows created strictly after
// lastWeekCutoff count toward the *_last_week fields.
//
// The video last-week totals intentionally differ from the problem and
// forum ones: each matching video row contributes a constant 1, while
// problem and forum rows contribute their summed count. This matches the
// result store's historical aggregation and must not be "fixed" here
// without changing the SQL path in lockstep.
func AggregateLearners(rows []models.ModuleEngagement, lastWeekCutoff time.Time) []models.LearnerEngagement {
	byUser := make(map[string]*models.LearnerEngagement)

	for _, row := range rows {
		summary, exists := byUser[row.Username]
		if !exists {
			summary = &models.LearnerEngagement{Username: row.Username}
			byUser[row.Username] = summary
		}

		inWindow := row.Created.After(lastWeekCutoff)

		switch row.EntityType {
		case models.EntityTypeVideo:
			summary.VideosOverall += row.Count
			if inWindow {
				summary.VideosLastWeek++
			}
		case models.EntityTypeProblem:
			summary.ProblemsOverall += row.Count
			if inWindow {
				summary.ProblemsLastWeek += row.Count
			}
			switch row.Event {
			case models.EventCompleted:
				summary.CorrectProblemsOverall += row.Count
				if inWindow {
					summary.CorrectProblemsLastWeek += row.Count
				}
			case models.EventAttempted:
				summary.ProblemsAttemptsOverall += row.Count
				if inWindow {
					summary.ProblemsAttemptsLastWeek += row.Count
				}
			}
		case models.EntityTypeDiscussion:
			summary.ForumPostsOverall += row.Count
			if inWindow {
				summary.ForumPostsLastWeek += row.Count
			}
		}

		if row.Created.After(summary.DateLastActive) {
			summary.DateLastActive = row.Created
		}
	}

	result := make([]models.LearnerEngagement, 0, len(byUser))
	for _, summary := range byUser {
		result = append(result, *summary)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result
}
