package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/knockout-system/models"
	"github.com/Dosada05/knockout-system/repositories"
	"github.com/google/uuid"
)

type EventService interface {
	CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error)
	ListEvents(ctx context.Context) ([]*models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
}

// CreateEventInput: Type defaults to knockout and MinRest to 10 minutes when omitted.
type CreateEventInput struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	MinRest *int   `json:"min_rest"`
}

type eventService struct {
	eventRepo repositories.EventRepository
}

func NewEventService(eventRepo repositories.EventRepository) EventService {
	return &eventService{eventRepo: eventRepo}
}

func (s *eventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEventNameRequired
	}

	eventType := strings.ToLower(strings.TrimSpace(input.Type))
	if eventType == "" {
		eventType = models.EventTypeKnockout
	}
	if eventType != models.EventTypeKnockout {
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedEventType, input.Type)
	}

	minRest := models.DefaultMinRestMinutes
	if input.MinRest != nil {
		minRest = *input.MinRest
	}
	if minRest < 0 {
		return nil, ErrInvalidMinRest
	}

	event := &models.Event{
		ID:             uuid.NewString(),
		Name:           name,
		Type:           eventType,
		MinRestMinutes: minRest,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		if errors.Is(err, repositories.ErrEventNameConflict) {
			return nil, fmt.Errorf("%w: %q", ErrEventNameConflict, name)
		}
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*models.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return getEvent(ctx, s.eventRepo, id)
}

// getEvent maps malformed ids and missing rows to ErrEventNotFound.
func getEvent(ctx context.Context, repo repositories.EventRepository, id string) (*models.Event, error) {
	if !isUUID(id) {
		return nil, ErrEventNotFound
	}
	event, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrEventNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event %s: %w", id, err)
	}
	return event, nil
}
