package engagement

import (
	"sort"

	"github.com/openlearn/insights-api/internal/models"
)

// TimelineEntry is one calendar day of a learner's engagement timeline.
// Every metric is always present; synthesized days carry zeros.
type TimelineEntry struct {
	Date                    models.Date `json:"date"`
	ProblemsAttempted       int         `json:"problems_attempted"`
	ProblemsCompleted       int         `json:"problems_completed"`
	VideosViewed            int         `json:"videos_viewed"`
	DiscussionContributions int         `json:"discussion_contributions"`
}

func (e *TimelineEntry) add(metric Metric, delta int) {
	switch metric {
	case MetricProblemsAttempted:
		e.ProblemsAttempted += delta
	case MetricProblemsCompleted:
		e.ProblemsCompleted += delta
	case MetricVideosViewed:
		e.VideosViewed += delta
	case MetricDiscussionContributions:
		e.DiscussionContributions += delta
	}
}

// Reduce groups raw engagement rows by (date, entity_type, event) and
// computes the summed event count and the distinct entity count for each
// group. The result is ordered by date, then entity type, then event. It
// mirrors the grouped query the repository runs in SQL so both paths feed
// the same downstream reductions.
func Reduce(rows []models.ModuleEngagement) []models.EngagementActivity {
	type key struct {
		date       string
		entityType string
		event      string
	}
	groups := make(map[key]*models.EngagementActivity)
	entities := make(map[key]map[string]struct{})

	for _, row := range rows {
		k := key{date: row.Date.String(), entityType: row.EntityType, event: row.Event}
		group, exists := groups[k]
		if !exists {
			group = &models.EngagementActivity{
				Date:       row.Date,
				EntityType: row.EntityType,
				Event:      row.Event,
			}
			groups[k] = group
			entities[k] = make(map[string]struct{})
		}
		group.TotalCount += row.Count
		entities[k][row.EntityID] = struct{}{}
	}

	result := make([]models.EngagementActivity, 0, len(groups))
	for k, group := range groups {
		group.DistinctEntityCount = len(entities[k])
		result = append(result, *group)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date.Time) {
			return result[i].Date.Before(result[j].Date.Time)
		}
		if result[i].EntityType != result[j].EntityType {
			return result[i].EntityType < result[j].EntityType
		}
		return result[i].Event < result[j].Event
	})
	return result
}

// BuildTimeline turns grouped per-day activity into a gapless daily
// timeline. Each observed day accumulates its groups into named metrics,
// choosing the distinct entity count or the summed event count per the
// classifier; several (entity_type, event) pairs may feed one metric and
// their contributions add. Days with no activity between the first and
// last observed dates are synthesized with all metrics at zero. Dates
// outside the observed span are never invented: no rows means an empty
// timeline and a single observed day yields exactly one entry.
func BuildTimeline(activity []models.EngagementActivity) []TimelineEntry {
	if len(activity) == 0 {
		return []TimelineEntry{}
	}

	ordered := make([]models.EngagementActivity, len(activity))
	copy(ordered, activity)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date.Time)
	})

	observed := make([]TimelineEntry, 0)
	for _, group := range ordered {
		if len(observed) == 0 || !observed[len(observed)-1].Date.Equal(group.Date.Time) {
			observed = append(observed, TimelineEntry{Date: group.Date})
		}
		entry := &observed[len(observed)-1]

		metric, countByEntity, ok := Classify(group.EntityType, group.Event)
		if !ok {
			// Pair unknown to the classifier: a pipeline data issue,
			// not a reason to fail the timeline.
			continue
		}
		if countByEntity {
			entry.add(metric, group.DistinctEntityCount)
		} else {
			entry.add(metric, group.TotalCount)
		}
	}

	// The result store holds no empty engagement rows, so days without
	// activity are absent. Walk the calendar between consecutive observed
	// days and splice in zero entries.
	full := make([]TimelineEntry, 0, len(observed))
	for i, current := range observed {
		full = append(full, current)
		if i+1 >= len(observed) {
			continue
		}
		next := observed[i+1]
		for day := current.Date.AddDays(1); day.Before(next.Date.Time); day = day.AddDays(1) {
			full = append(full, TimelineEntry{Date: day})
		}
	}

	return full
}
