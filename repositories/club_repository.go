package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/knockout-system/models"
)

var (
	ErrClubNotFound     = errors.New("club not found")
	ErrClubNameConflict = errors.New("club name already exists")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id string) (*models.Club, error)
	GetByName(ctx context.Context, name string) (*models.Club, error)
	List(ctx context.Context) ([]*models.Club, error)
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `INSERT INTO clubs (id, name) VALUES ($1, $2) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, club.ID, club.Name).Scan(&club.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pgUniqueViolation {
			return ErrClubNameConflict
		}
		return fmt.Errorf("failed to create club: %w", err)
	}
	return nil
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id string) (*models.Club, error) {
	query := `SELECT id, name, created_at FROM clubs WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByName matches case-insensitively, like the unique index on lower(name).
func (r *postgresClubRepository) GetByName(ctx context.Context, name string) (*models.Club, error) {
	query := `SELECT id, name, created_at FROM clubs WHERE lower(name) = lower($1)`
	return r.getOne(ctx, query, name)
}

func (r *postgresClubRepository) getOne(ctx context.Context, query string, arg string) (*models.Club, error) {
	club := &models.Club{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&club.ID, &club.Name, &club.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to scan club %q: %w", arg, err)
	}
	return club, nil
}

func (r *postgresClubRepository) List(ctx context.Context) ([]*models.Club, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at FROM clubs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	clubs := make([]*models.Club, 0)
	for rows.Next() {
		club := &models.Club{}
		if err := rows.Scan(&club.ID, &club.Name, &club.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan club row: %w", err)
		}
		clubs = append(clubs, club)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during club rows iteration: %w", err)
	}
	return clubs, nil
}
