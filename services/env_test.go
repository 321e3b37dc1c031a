package services

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/Dosada05/knockout-system/brackets"
	"github.com/Dosada05/knockout-system/cache"
	"github.com/Dosada05/knockout-system/metrics"
	"github.com/Dosada05/knockout-system/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	clubRepo   *fakeClubRepo
	eventRepo  *fakeEventRepo
	playerRepo *fakePlayerRepo
	matchRepo  *fakeMatchRepo
	scoreRepo  *fakeScoreRepo
	codeRepo   *fakeMatchCodeRepo
	locker     *fakeLocker
	notifier   *fakeNotifier
	uploader   *fakeUploader
	cache      *cache.Memory
	metrics    *metrics.Metrics

	clubs       ClubService
	events      EventService
	players     PlayerService
	fixtures    FixtureService
	schedule    ScheduleService
	results     ResultService
	codes       MatchCodeService
	leaderboard LeaderboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		clubRepo:   &fakeClubRepo{},
		eventRepo:  &fakeEventRepo{},
		playerRepo: &fakePlayerRepo{},
		matchRepo:  &fakeMatchRepo{},
		scoreRepo:  &fakeScoreRepo{},
		codeRepo:   &fakeMatchCodeRepo{},
		locker:     &fakeLocker{},
		notifier:   &fakeNotifier{},
		uploader:   &fakeUploader{},
		cache:      cache.NewMemory(),
		metrics:    metrics.New(),
	}
	logger := discardLogger()
	generator := brackets.NewSingleEliminationGenerator(brackets.DeclashGrouped, rand.New(rand.NewSource(7)))

	env.clubs = NewClubService(env.clubRepo)
	env.events = NewEventService(env.eventRepo)
	env.players = NewPlayerService(env.playerRepo, env.clubRepo, env.eventRepo, env.uploader, env.metrics, logger)
	env.fixtures = NewFixtureService(env.eventRepo, env.playerRepo, env.matchRepo, env.locker, generator,
		env.cache, time.Minute, env.notifier, env.metrics, logger)
	env.schedule = NewScheduleService(env.eventRepo, env.matchRepo, env.locker, env.cache, env.notifier, env.metrics, logger)
	env.results = NewResultService(env.matchRepo, env.scoreRepo, env.locker, brackets.NewRoundAdvancer(),
		env.cache, env.notifier, env.metrics, logger)
	env.codes = NewMatchCodeService(env.codeRepo, env.matchRepo, 24*time.Hour, []byte("test-secret"), env.metrics, logger)
	env.leaderboard = NewLeaderboardService(env.eventRepo, env.matchRepo, env.scoreRepo, env.playerRepo,
		env.cache, time.Minute, logger)
	return env
}

func (env *testEnv) addClub(t *testing.T, name string) *models.Club {
	t.Helper()
	club, err := env.clubs.CreateClub(context.Background(), CreateClubInput{Name: name})
	require.NoError(t, err)
	return club
}

func (env *testEnv) addEvent(t *testing.T, name string, minRest int) *models.Event {
	t.Helper()
	event, err := env.events.CreateEvent(context.Background(), CreateEventInput{Name: name, MinRest: &minRest})
	require.NoError(t, err)
	return event
}

// addPlayers registers n players of one club in the event, named "<prefix> 1".."<prefix> n".
func (env *testEnv) addPlayers(t *testing.T, eventID, clubID, prefix string, n int) []*models.Player {
	t.Helper()
	players := make([]*models.Player, 0, n)
	for i := 1; i <= n; i++ {
		p, err := env.players.CreatePlayer(context.Background(), CreatePlayerInput{
			Name:     fmt.Sprintf("%s %d", prefix, i),
			Age:      20 + i,
			Phone:    fmt.Sprintf("+1555000%04d", i),
			ClubID:   clubID,
			EventIDs: []string{eventID},
		})
		require.NoError(t, err)
		players = append(players, p)
	}
	return players
}

// playRound scores every open match of the round with player 1 winning 3-1 and returns the last outcome.
func (env *testEnv) playRound(t *testing.T, eventID string, round int) *ResultOutcome {
	t.Helper()
	var last *ResultOutcome
	for _, m := range env.matchRepo.round(eventID, round) {
		if m.IsBye() || m.Status == models.MatchStatusCompleted {
			continue
		}
		out, err := env.results.UpdateScore(context.Background(), ScoreInput{MatchID: m.ID, Player1Score: 3, Player2Score: 1})
		require.NoError(t, err)
		last = out
	}
	require.NotNil(t, last, "round %d had no open match", round)
	return last
}

var missingID = uuid.NewString()
