package brackets

import (
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/knockout-system/models"
)

type ScheduleParams struct {
	Courts        int
	MatchDuration time.Duration
	MinRest       time.Duration
	Start         time.Time
}

func (p ScheduleParams) Validate() error {
	if p.Courts < 1 {
		return fmt.Errorf("%w: courts=%d", ErrInvalidScheduleParameters, p.Courts)
	}
	if p.MatchDuration <= 0 {
		return fmt.Errorf("%w: duration=%s", ErrInvalidScheduleParameters, p.MatchDuration)
	}
	if p.MinRest < 0 {
		return fmt.Errorf("%w: min rest=%s", ErrInvalidScheduleParameters, p.MinRest)
	}
	return nil
}

// CourtLabel returns the identifier of the n-th court, counting from 1.
func CourtLabel(n int) string {
	return fmt.Sprintf("Court-%d", n)
}

// ScheduleMatches assigns a court and a time window to every non-bye match.
//
// Matches are taken by round (stable, so input order decides within a round) and each one goes to
// the court where it can start first, given the court's availability and the rest interval of both
// players. This is a single greedy pass with no backtracking. Byes are passed through untouched.
// The input is not modified; the result is a copy in processing order.
func ScheduleMatches(matches []*models.Match, params ScheduleParams) ([]*models.Match, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	courts := make([]*models.Court, params.Courts)
	for i := range courts {
		courts[i] = &models.Court{ID: CourtLabel(i + 1), AvailableAt: params.Start}
	}
	// player id -> earliest start of the player's next match, rest already included
	playerFree := make(map[string]time.Time)

	sorted := make([]*models.Match, len(matches))
	for i, m := range matches {
		sorted[i] = m.Clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Round < sorted[j].Round
	})

	ordered := make([]*models.Court, len(courts))
	for _, m := range sorted {
		if m.IsBye() {
			continue
		}

		copy(ordered, courts)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].AvailableAt.Before(ordered[j].AvailableAt)
		})

		var chosen *models.Court
		var earliest time.Time
		for _, c := range ordered {
			start := c.AvailableAt
			if t, ok := playerFree[m.Player1ID]; ok && t.After(start) {
				start = t
			}
			if m.Player2ID != nil {
				if t, ok := playerFree[*m.Player2ID]; ok && t.After(start) {
					start = t
				}
			}
			if chosen == nil || start.Before(earliest) {
				chosen = c
				earliest = start
			}
		}

		end := earliest.Add(params.MatchDuration)
		courtID := chosen.ID
		start := earliest
		m.CourtID = &courtID
		m.StartTime = &start
		m.EndTime = &end
		m.Status = models.MatchStatusScheduled

		chosen.AvailableAt = end
		playerFree[m.Player1ID] = end.Add(params.MinRest)
		if m.Player2ID != nil {
			playerFree[*m.Player2ID] = end.Add(params.MinRest)
		}
	}

	return sorted, nil
}

// LatestEnd returns the end of the last scheduled match, zero time if nothing is scheduled.
func LatestEnd(matches []*models.Match) time.Time {
	var latest time.Time
	for _, m := range matches {
		if m.EndTime != nil && m.EndTime.After(latest) {
			latest = *m.EndTime
		}
	}
	return latest
}
