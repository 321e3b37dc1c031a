package services

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/knockout-system/brackets"
	"github.com/Dosada05/knockout-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestScheduleMatches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.addEvent(t, "Open", 15)
	club := env.addClub(t, "Red")
	env.addPlayers(t, event.ID, club.ID, "P", 8)
	_, err := env.fixtures.GenerateFixtures(ctx, event.ID)
	require.NoError(t, err)

	start := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	res, err := env.schedule.ScheduleMatches(ctx, ScheduleInput{
		EventID:   event.ID,
		NumCourts: intPtr(2),
		StartTime: start,
	})
	require.NoError(t, err)
	require.Equal(t, 4, res.TotalMatches)

	perCourt := map[string]int{}
	for _, m := range res.Scheduled {
		require.True(t, m.IsScheduled())
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
		assert.Equal(t, 30*time.Minute, m.EndTime.Sub(*m.StartTime))
		perCourt[*m.CourtID]++
	}
	assert.Equal(t, map[string]int{"Court-1": 2, "Court-2": 2}, perCourt)
	assert.Equal(t, start.Add(time.Hour), brackets.LatestEnd(res.Scheduled))

	for _, m := range env.matchRepo.round(event.ID, 1) {
		assert.Equal(t, models.MatchStatusScheduled, m.Status)
	}
	assert.Contains(t, env.notifier.types(), brackets.MessageMatchesScheduled)

	_, err = env.schedule.ScheduleMatches(ctx, ScheduleInput{EventID: event.ID, StartTime: start})
	assert.ErrorIs(t, err, ErrNoPendingMatches)
}

func TestScheduleMatches_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.addEvent(t, "Open", 10)
	start := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

	_, err := env.schedule.ScheduleMatches(ctx, ScheduleInput{EventID: event.ID, NumCourts: intPtr(0), StartTime: start})
	assert.ErrorIs(t, err, ErrInvalidScheduleInput)

	_, err = env.schedule.ScheduleMatches(ctx, ScheduleInput{EventID: event.ID, MatchDurationMinutes: intPtr(-30), StartTime: start})
	assert.ErrorIs(t, err, ErrInvalidScheduleInput)

	_, err = env.schedule.ScheduleMatches(ctx, ScheduleInput{EventID: event.ID})
	assert.ErrorIs(t, err, ErrInvalidScheduleInput)

	_, err = env.schedule.ScheduleMatches(ctx, ScheduleInput{EventID: missingID, StartTime: start})
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = env.schedule.ScheduleMatches(ctx, ScheduleInput{EventID: event.ID, StartTime: start})
	assert.ErrorIs(t, err, ErrNoPendingMatches)
	assert.Empty(t, env.notifier.types())
}

func TestGetCourtSchedule(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.addEvent(t, "Open", 10)
	club := env.addClub(t, "Red")
	env.addPlayers(t, event.ID, club.ID, "P", 8)
	_, err := env.fixtures.GenerateFixtures(ctx, event.ID)
	require.NoError(t, err)

	start := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	_, err = env.schedule.ScheduleMatches(ctx, ScheduleInput{EventID: event.ID, NumCourts: intPtr(1), StartTime: start})
	require.NoError(t, err)

	court, err := env.schedule.GetCourtSchedule(ctx, "Court-1", event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Court-1", court.CourtID)
	require.Len(t, court.Matches, 4)
	for i := 1; i < len(court.Matches); i++ {
		assert.False(t, court.Matches[i].StartTime.Before(*court.Matches[i-1].StartTime))
	}

	empty, err := env.schedule.GetCourtSchedule(ctx, "Court-9", "")
	require.NoError(t, err)
	assert.Empty(t, empty.Matches)
}

func TestScheduleMatches_FollowsBracketPosition(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	event := env.addEvent(t, "Open", 10)

	p := []string{"a", "b", "c", "d", "e", "f"}
	pair := func(i int) *string { return &p[i] }
	first := &models.Match{ID: "00000000-0000-0000-0000-000000000003", EventID: event.ID, Round: 1, Position: 0, Player1ID: p[0], Player2ID: pair(1), Status: models.MatchStatusPending}
	second := &models.Match{ID: "00000000-0000-0000-0000-000000000001", EventID: event.ID, Round: 1, Position: 1, Player1ID: p[2], Player2ID: pair(3), Status: models.MatchStatusPending}
	third := &models.Match{ID: "00000000-0000-0000-0000-000000000002", EventID: event.ID, Round: 1, Position: 2, Player1ID: p[4], Player2ID: pair(5), Status: models.MatchStatusPending}
	require.NoError(t, env.matchRepo.CreateMany(ctx, nil, []*models.Match{third, first, second}))

	start := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	res, err := env.schedule.ScheduleMatches(ctx, ScheduleInput{EventID: event.ID, NumCourts: intPtr(1), StartTime: start})
	require.NoError(t, err)

	starts := map[string]time.Time{}
	for _, m := range res.Scheduled {
		starts[m.ID] = *m.StartTime
	}
	assert.Equal(t, start, starts[first.ID])
	assert.Equal(t, start.Add(30*time.Minute), starts[second.ID])
	assert.Equal(t, start.Add(time.Hour), starts[third.ID])
}
