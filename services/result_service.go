package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/knockout-system/brackets"
	"github.com/Dosada05/knockout-system/cache"
	"github.com/Dosada05/knockout-system/metrics"
	"github.com/Dosada05/knockout-system/models"
	"github.com/Dosada05/knockout-system/repositories"
)

type ResultService interface {
	// UpdateScore records the score of a match and advances the bracket once its round is complete.
	UpdateScore(ctx context.Context, input ScoreInput) (*ResultOutcome, error)
}

type ScoreInput struct {
	MatchID      string `json:"match_id"`
	Player1Score int    `json:"player1_score"`
	Player2Score int    `json:"player2_score"`
}

type ResultOutcome struct {
	MatchID          string          `json:"match_id"`
	WinnerID         string          `json:"winner_id"`
	MatchCompleted   bool            `json:"match_completed"`
	NextRoundCreated bool            `json:"next_round_created"`
	NextRoundMatches []*models.Match `json:"next_round_matches,omitempty"`
	ChampionID       *string         `json:"champion_id,omitempty"`
	UnpairedID       *string         `json:"unpaired_id,omitempty"`
}

type resultService struct {
	matchRepo repositories.MatchRepository
	scoreRepo repositories.ScoreRepository
	locker    repositories.EventLocker
	advancer  *brackets.RoundAdvancer
	cache     cache.Cache
	notifier  brackets.Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewResultService(
	matchRepo repositories.MatchRepository,
	scoreRepo repositories.ScoreRepository,
	locker repositories.EventLocker,
	advancer *brackets.RoundAdvancer,
	c cache.Cache,
	notifier brackets.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) ResultService {
	return &resultService{
		matchRepo: matchRepo,
		scoreRepo: scoreRepo,
		locker:    locker,
		advancer:  advancer,
		cache:     c,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
	}
}

func (s *resultService) UpdateScore(ctx context.Context, input ScoreInput) (*ResultOutcome, error) {
	if err := brackets.ValidateScore(input.Player1Score, input.Player2Score); err != nil {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidScore, input.Player1Score, input.Player2Score)
	}

	match, err := s.getMatch(ctx, nil, input.MatchID)
	if err != nil {
		return nil, err
	}
	if match.IsBye() {
		return nil, ErrMatchIsBye
	}

	var outcome *ResultOutcome
	err = s.locker.WithEventLock(ctx, match.EventID, func(exec repositories.SQLExecutor) error {
		// re-read under the lock, another request may have changed the bracket meanwhile
		match, err := s.getMatch(ctx, exec, input.MatchID)
		if err != nil {
			return err
		}

		next, err := s.matchRepo.CountByEventRound(ctx, exec, match.EventID, match.Round+1)
		if err != nil {
			return err
		}
		if next > 0 {
			return ErrRoundAlreadyAdvanced
		}

		score := &models.Score{
			MatchID:      match.ID,
			Player1Score: input.Player1Score,
			Player2Score: input.Player2Score,
		}
		if err := s.scoreRepo.Upsert(ctx, exec, score); err != nil {
			return fmt.Errorf("failed to save score of match %s: %w", match.ID, err)
		}
		if err := s.matchRepo.UpdateStatus(ctx, exec, match.ID, models.MatchStatusCompleted); err != nil {
			return fmt.Errorf("failed to complete match %s: %w", match.ID, err)
		}
		match.Status = models.MatchStatusCompleted

		winner, err := brackets.Winner(match, score)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidScore, err)
		}
		outcome = &ResultOutcome{MatchID: match.ID, WinnerID: winner, MatchCompleted: true}

		return s.advance(ctx, exec, match, outcome)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, match.EventID, outcome)
	return outcome, nil
}

// advance builds round r+1 when every match of round r is decided. An incomplete round is not an error.
func (s *resultService) advance(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, outcome *ResultOutcome) error {
	round := match.Round
	roundMatches, err := s.matchRepo.List(ctx, exec, repositories.MatchFilter{EventID: &match.EventID, Round: &round})
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(roundMatches))
	for _, m := range roundMatches {
		ids = append(ids, m.ID)
	}
	scores, err := s.scoreRepo.ListByMatchIDs(ctx, exec, ids)
	if err != nil {
		return err
	}

	adv, err := s.advancer.AdvanceRound(roundMatches, scores)
	switch {
	case errors.Is(err, brackets.ErrRoundIncomplete):
		return nil
	case errors.Is(err, brackets.ErrOddAdvancement):
		s.logger.WarnContext(ctx, "odd number of players advanced",
			slog.String("event_id", match.EventID),
			slog.Int("round", round),
			slog.String("unpaired_id", derefString(adv.UnpairedID)))
		outcome.UnpairedID = adv.UnpairedID
	case err != nil:
		return fmt.Errorf("failed to advance round %d of event %s: %w", round, match.EventID, err)
	}

	if adv.IsFinal() {
		outcome.ChampionID = adv.ChampionID
		return nil
	}
	if len(adv.NextRound) == 0 {
		return nil
	}
	if err := s.matchRepo.CreateMany(ctx, exec, adv.NextRound); err != nil {
		return fmt.Errorf("failed to save round %d of event %s: %w", round+1, match.EventID, err)
	}
	outcome.NextRoundCreated = true
	outcome.NextRoundMatches = adv.NextRound
	return nil
}

func (s *resultService) publish(ctx context.Context, eventID string, outcome *ResultOutcome) {
	s.metrics.ScoreRecorded()
	invalidateEventCaches(ctx, s.cache, s.logger, eventID)
	broadcast(s.notifier, eventID, brackets.MessageMatchCompleted, outcome)

	logAttrs := []interface{}{
		slog.String("event_id", eventID),
		slog.String("match_id", outcome.MatchID),
		slog.String("winner_id", outcome.WinnerID),
	}
	if outcome.NextRoundCreated {
		s.metrics.RoundCreated()
		broadcast(s.notifier, eventID, brackets.MessageRoundCreated, outcome.NextRoundMatches)
		logAttrs = append(logAttrs, slog.Int("next_round_matches", len(outcome.NextRoundMatches)))
	}
	if outcome.ChampionID != nil {
		s.metrics.ChampionDetermined()
		broadcast(s.notifier, eventID, brackets.MessageChampionDetermined, jsonPayload{"champion_id": *outcome.ChampionID})
		logAttrs = append(logAttrs, slog.String("champion_id", *outcome.ChampionID))
	}
	s.logger.InfoContext(ctx, "match result recorded", logAttrs...)
}

func (s *resultService) getMatch(ctx context.Context, exec repositories.SQLExecutor, id string) (*models.Match, error) {
	if !isUUID(id) {
		return nil, ErrMatchNotFound
	}
	match, err := s.matchRepo.GetByID(ctx, exec, id)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return match, nil
}
