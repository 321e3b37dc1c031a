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
)

const (
	DefaultNumCourts            = 4
	DefaultMatchDurationMinutes = 30
)

type ScheduleService interface {
	ScheduleMatches(ctx context.Context, input ScheduleInput) (*ScheduleResult, error)
	// GetCourtSchedule lists the matches of one court by start time; eventID is optional.
	GetCourtSchedule(ctx context.Context, courtID, eventID string) (*CourtSchedule, error)
}

// ScheduleInput: nil NumCourts and MatchDurationMinutes fall back to 4 courts and 30 minutes.
type ScheduleInput struct {
	EventID              string    `json:"event_id"`
	NumCourts            *int      `json:"num_courts"`
	MatchDurationMinutes *int      `json:"match_duration_minutes"`
	StartTime            time.Time `json:"start_time"`
}

type ScheduleResult struct {
	EventID      string          `json:"event_id"`
	TotalMatches int             `json:"total_matches"`
	Scheduled    []*models.Match `json:"scheduled"`
}

type CourtSchedule struct {
	CourtID string          `json:"court_id"`
	Matches []*models.Match `json:"matches"`
}

type scheduleService struct {
	eventRepo repositories.EventRepository
	matchRepo repositories.MatchRepository
	locker    repositories.EventLocker
	cache     cache.Cache
	notifier  brackets.Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewScheduleService(
	eventRepo repositories.EventRepository,
	matchRepo repositories.MatchRepository,
	locker repositories.EventLocker,
	c cache.Cache,
	notifier brackets.Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) ScheduleService {
	return &scheduleService{
		eventRepo: eventRepo,
		matchRepo: matchRepo,
		locker:    locker,
		cache:     c,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
	}
}

func (s *scheduleService) ScheduleMatches(ctx context.Context, input ScheduleInput) (*ScheduleResult, error) {
	courts, duration := DefaultNumCourts, DefaultMatchDurationMinutes
	if input.NumCourts != nil {
		courts = *input.NumCourts
	}
	if input.MatchDurationMinutes != nil {
		duration = *input.MatchDurationMinutes
	}
	if input.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start_time is required", ErrInvalidScheduleInput)
	}

	event, err := getEvent(ctx, s.eventRepo, input.EventID)
	if err != nil {
		return nil, err
	}

	params := brackets.ScheduleParams{
		Courts:        courts,
		MatchDuration: time.Duration(duration) * time.Minute,
		MinRest:       event.MinRest(),
		Start:         input.StartTime,
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScheduleInput, err)
	}

	var scheduled []*models.Match
	err = s.locker.WithEventLock(ctx, event.ID, func(exec repositories.SQLExecutor) error {
		pendingStatus := models.MatchStatusPending
		pending, err := s.matchRepo.List(ctx, exec, repositories.MatchFilter{EventID: &event.ID, Status: &pendingStatus})
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return ErrNoPendingMatches
		}

		scheduled, err = brackets.ScheduleMatches(pending, params)
		if err != nil {
			if errors.Is(err, brackets.ErrInvalidScheduleParameters) {
				return fmt.Errorf("%w: %v", ErrInvalidScheduleInput, err)
			}
			return err
		}

		for _, m := range scheduled {
			if !m.IsScheduled() {
				continue
			}
			if err := s.matchRepo.UpdateSchedule(ctx, exec, m.ID, *m.CourtID, *m.StartTime, *m.EndTime); err != nil {
				return fmt.Errorf("failed to save schedule of match %s: %w", m.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ScheduleResult{
		EventID:      event.ID,
		TotalMatches: len(scheduled),
		Scheduled:    scheduled,
	}
	s.metrics.MatchesScheduled(len(scheduled))
	invalidateEventCaches(ctx, s.cache, s.logger, event.ID)
	broadcast(s.notifier, event.ID, brackets.MessageMatchesScheduled, result)

	s.logger.InfoContext(ctx, "matches scheduled",
		slog.String("event_id", event.ID),
		slog.Int("matches", len(scheduled)),
		slog.Int("courts", courts),
		slog.Time("last_end", brackets.LatestEnd(scheduled)))
	return result, nil
}

func (s *scheduleService) GetCourtSchedule(ctx context.Context, courtID, eventID string) (*CourtSchedule, error) {
	result := &CourtSchedule{CourtID: courtID, Matches: []*models.Match{}}
	filter := repositories.MatchFilter{CourtID: &courtID}
	if eventID != "" {
		if !isUUID(eventID) {
			return result, nil
		}
		filter.EventID = &eventID
	}

	matches, err := s.matchRepo.List(ctx, nil, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of court %s: %w", courtID, err)
	}
	sortByStartTime(matches)
	result.Matches = matches
	return result, nil
}
