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

type ClubService interface {
	CreateClub(ctx context.Context, input CreateClubInput) (*models.Club, error)
	ListClubs(ctx context.Context) ([]*models.Club, error)
}

type CreateClubInput struct {
	Name string `json:"name"`
}

type clubService struct {
	clubRepo repositories.ClubRepository
}

func NewClubService(clubRepo repositories.ClubRepository) ClubService {
	return &clubService{clubRepo: clubRepo}
}

func (s *clubService) CreateClub(ctx context.Context, input CreateClubInput) (*models.Club, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrClubNameRequired
	}

	_, err := s.clubRepo.GetByName(ctx, name)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %q", ErrClubNameConflict, name)
	case !errors.Is(err, repositories.ErrClubNotFound):
		return nil, fmt.Errorf("failed to check club name %q: %w", name, err)
	}

	club := &models.Club{ID: uuid.NewString(), Name: name}
	if err := s.clubRepo.Create(ctx, club); err != nil {
		if errors.Is(err, repositories.ErrClubNameConflict) {
			return nil, fmt.Errorf("%w: %q", ErrClubNameConflict, name)
		}
		return nil, fmt.Errorf("failed to create club: %w", err)
	}
	return club, nil
}

func (s *clubService) ListClubs(ctx context.Context) ([]*models.Club, error) {
	clubs, err := s.clubRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clubs: %w", err)
	}
	return clubs, nil
}
