package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/knockout-system/brackets"
	"github.com/Dosada05/knockout-system/cache"
	"github.com/Dosada05/knockout-system/metrics"
	"github.com/Dosada05/knockout-system/models"
	"github.com/Dosada05/knockout-system/repositories"
	"golang.org/x/sync/errgroup"
)

type FixtureService interface {
	GenerateFixtures(ctx context.Context, eventID string) (*GeneratedFixtures, error)
	GetFixtures(ctx context.Context, eventID string) (*Fixtures, error)
}

type GeneratedFixtures struct {
	EventID      string          `json:"event_id"`
	TotalPlayers int             `json:"total_players"`
	TotalMatches int             `json:"total_matches"`
	Matches      []*models.Match `json:"matches"`
}

// Fixtures groups every match of an event by round number.
type Fixtures struct {
	EventID   string                  `json:"event_id"`
	EventName string                  `json:"event_name"`
	Rounds    map[int][]*models.Match `json:"fixtures"`
}

type fixtureService struct {
	eventRepo  repositories.EventRepository
	playerRepo repositories.PlayerRepository
	matchRepo  repositories.MatchRepository
	locker     repositories.EventLocker
	generator  brackets.BracketGenerator
	cache      cache.Cache
	cacheTTL   time.Duration
	notifier   brackets.Notifier
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewFixtureService(
	eventRepo repositories.EventRepository,
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	locker repositories.EventLocker,
	generator brackets.BracketGenerator,
	c cache.Cache,
	cacheTTL time.Duration,
	notifier brackets.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) FixtureService {
	return &fixtureService{
		eventRepo:  eventRepo,
		playerRepo: playerRepo,
		matchRepo:  matchRepo,
		locker:     locker,
		generator:  generator,
		cache:      c,
		cacheTTL:   cacheTTL,
		notifier:   notifier,
		metrics:    m,
		logger:     logger,
	}
}

func (s *fixtureService) GenerateFixtures(ctx context.Context, eventID string) (*GeneratedFixtures, error) {
	if _, err := getEvent(ctx, s.eventRepo, eventID); err != nil {
		return nil, err
	}

	var result *GeneratedFixtures
	err := s.locker.WithEventLock(ctx, eventID, func(exec repositories.SQLExecutor) error {
		existing, err := s.matchRepo.CountByEventRound(ctx, exec, eventID, 1)
		if err != nil {
			return err
		}
		if existing > 0 {
			return ErrFixturesAlreadyGenerated
		}

		players, err := s.playerRepo.ListByEvent(ctx, exec, eventID)
		if err != nil {
			return err
		}

		matches, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
			EventID: eventID,
			Players: players,
		})
		if err != nil {
			if errors.Is(err, brackets.ErrInsufficientEntrants) {
				return fmt.Errorf("%w (found %d)", ErrInsufficientPlayers, len(players))
			}
			return fmt.Errorf("failed to generate bracket: %w", err)
		}

		if err := s.matchRepo.CreateMany(ctx, exec, matches); err != nil {
			if errors.Is(err, repositories.ErrMatchConflict) {
				return ErrFixturesAlreadyGenerated
			}
			return fmt.Errorf("failed to save fixtures: %w", err)
		}

		result = &GeneratedFixtures{
			EventID:      eventID,
			TotalPlayers: len(players),
			TotalMatches: len(matches),
			Matches:      matches,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	byes := 0
	for _, m := range result.Matches {
		if m.IsBye() {
			byes++
		}
	}
	s.metrics.FixturesGenerated(result.TotalMatches, byes)
	invalidateEventCaches(ctx, s.cache, s.logger, eventID)
	broadcast(s.notifier, eventID, brackets.MessageFixturesGenerated, result)

	s.logger.InfoContext(ctx, "fixtures generated",
		slog.String("event_id", eventID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("players", result.TotalPlayers),
		slog.Int("matches", result.TotalMatches),
		slog.Int("byes", byes))
	return result, nil
}

func (s *fixtureService) GetFixtures(ctx context.Context, eventID string) (*Fixtures, error) {
	key := fixturesCachePrefix + eventID
	var cached Fixtures
	if readCache(ctx, s.cache, s.logger, key, &cached) {
		return &cached, nil
	}

	var (
		event   *models.Event
		matches []*models.Match
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = getEvent(gctx, s.eventRepo, eventID)
		return err
	})
	g.Go(func() error {
		if !isUUID(eventID) {
			return nil
		}
		var err error
		matches, err = s.matchRepo.List(gctx, nil, repositories.MatchFilter{EventID: &eventID})
		if err != nil {
			return fmt.Errorf("failed to list matches of event %s: %w", eventID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	fixtures := &Fixtures{
		EventID:   event.ID,
		EventName: event.Name,
		Rounds:    make(map[int][]*models.Match),
	}
	for _, m := range matches {
		fixtures.Rounds[m.Round] = append(fixtures.Rounds[m.Round], m)
	}

	writeCache(ctx, s.cache, s.logger, key, fixtures, s.cacheTTL)
	return fixtures, nil
}
