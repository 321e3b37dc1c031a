package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/knockout-system/cache"
	"github.com/Dosada05/knockout-system/models"
	"github.com/Dosada05/knockout-system/repositories"
	"golang.org/x/sync/errgroup"
)

const unknownPlayerName = "Unknown"

type LeaderboardService interface {
	// Leaderboard ranks the players of eventID, or of the most recently created event when eventID is empty.
	Leaderboard(ctx context.Context, eventID string) (*models.Leaderboard, error)
}

type leaderboardService struct {
	eventRepo  repositories.EventRepository
	matchRepo  repositories.MatchRepository
	scoreRepo  repositories.ScoreRepository
	playerRepo repositories.PlayerRepository
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
}

func NewLeaderboardService(
	eventRepo repositories.EventRepository,
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.ScoreRepository,
	playerRepo repositories.PlayerRepository,
	c cache.Cache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		eventRepo:  eventRepo,
		matchRepo:  matchRepo,
		scoreRepo:  scoreRepo,
		playerRepo: playerRepo,
		cache:      c,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

func (s *leaderboardService) Leaderboard(ctx context.Context, eventID string) (*models.Leaderboard, error) {
	key := leaderboardCachePrefix + eventID
	if eventID == "" {
		key = leaderboardCachePrefix + "latest"
	}
	var cached models.Leaderboard
	if readCache(ctx, s.cache, s.logger, key, &cached) {
		return &cached, nil
	}

	event, err := s.resolveEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var (
		matches []*models.Match
		players []*models.Player
	)
	completed := models.MatchStatusCompleted
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.List(gctx, nil, repositories.MatchFilter{EventID: &event.ID, Status: &completed})
		return err
	})
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.ListByEvent(gctx, nil, event.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load results of event %s: %w", event.ID, err)
	}

	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	scores, err := s.scoreRepo.ListByMatchIDs(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores of event %s: %w", event.ID, err)
	}

	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}

	board := &models.Leaderboard{
		EventID:   event.ID,
		EventName: event.Name,
		Entries:   RankPlayers(matches, scores, names),
	}
	writeCache(ctx, s.cache, s.logger, key, board, s.cacheTTL)
	return board, nil
}

func (s *leaderboardService) resolveEvent(ctx context.Context, eventID string) (*models.Event, error) {
	if eventID != "" {
		return getEvent(ctx, s.eventRepo, eventID)
	}
	event, err := s.eventRepo.Latest(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrNoEvents
		}
		return nil, fmt.Errorf("failed to get latest event: %w", err)
	}
	return event, nil
}

// RankPlayers tallies completed head-to-head matches that have a score. Points are wins*3 plus
// sets won. Entries are sorted by wins, then sets won, then points, all descending; remaining
// ties keep first-appearance order.
func RankPlayers(matches []*models.Match, scores map[string]*models.Score, names map[string]string) []models.LeaderboardEntry {
	index := make(map[string]int)
	entries := make([]models.LeaderboardEntry, 0)
	// entry returns an index, appends may move the backing array
	entry := func(playerID string) int {
		i, ok := index[playerID]
		if !ok {
			name, known := names[playerID]
			if !known {
				name = unknownPlayerName
			}
			i = len(entries)
			index[playerID] = i
			entries = append(entries, models.LeaderboardEntry{PlayerID: playerID, PlayerName: name})
		}
		return i
	}

	for _, m := range matches {
		score, ok := scores[m.ID]
		if !ok || m.Status != models.MatchStatusCompleted || m.Player2ID == nil {
			continue
		}
		i1, i2 := entry(m.Player1ID), entry(*m.Player2ID)
		p1, p2 := &entries[i1], &entries[i2]
		if score.Player1Score > score.Player2Score {
			p1.Wins++
			p2.Losses++
		} else {
			p2.Wins++
			p1.Losses++
		}
		p1.SetsWon += score.Player1Score
		p1.SetsLost += score.Player2Score
		p2.SetsWon += score.Player2Score
		p2.SetsLost += score.Player1Score
	}

	for i := range entries {
		entries[i].Points = entries[i].Wins*3 + entries[i].SetsWon
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.SetsWon != b.SetsWon {
			return a.SetsWon > b.SetsWon
		}
		return a.Points > b.Points
	})
	return entries
}
