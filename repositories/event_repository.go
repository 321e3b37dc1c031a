package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/knockout-system/models"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventNameConflict = errors.New("event name already exists")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetByName(ctx context.Context, name string) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
	// Latest returns the most recently created event.
	Latest(ctx context.Context) (*models.Event, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const eventColumns = `id, name, type, min_rest, created_at`

func scanEvent(row interface{ Scan(...interface{}) error }) (*models.Event, error) {
	e := &models.Event{}
	if err := row.Scan(&e.ID, &e.Name, &e.Type, &e.MinRestMinutes, &e.CreatedAt); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `INSERT INTO events (id, name, type, min_rest) VALUES ($1, $2, $3, $4) RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, event.ID, event.Name, event.Type, event.MinRestMinutes).Scan(&event.CreatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pgUniqueViolation {
			return ErrEventNameConflict
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	event, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by id %s: %w", id, err)
	}
	return event, nil
}

func (r *postgresEventRepository) GetByName(ctx context.Context, name string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE lower(name) = lower($1)`
	event, err := scanEvent(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event by name %q: %w", name, err)
	}
	return event, nil
}

func (r *postgresEventRepository) Latest(ctx context.Context) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY created_at DESC LIMIT 1`
	event, err := scanEvent(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan latest event: %w", err)
	}
	return event, nil
}

func (r *postgresEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during event rows iteration: %w", err)
	}
	return events, nil
}
