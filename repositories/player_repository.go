package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/knockout-system/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerClubInvalid  = errors.New("player club reference is invalid")
	ErrPlayerEventInvalid = errors.New("player event reference is invalid")
)

type PlayerRepository interface {
	// Create inserts the player and one player_events row per entry of EventIDs.
	Create(ctx context.Context, exec SQLExecutor, player *models.Player) error
	List(ctx context.Context) ([]*models.Player, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, eventID string) ([]*models.Player, error)
	ExistsByNameInEvent(ctx context.Context, name, eventID string) (bool, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerSelect = `
	SELECT p.id, p.name, p.age, p.phone, p.club_id, p.created_at,
	       COALESCE(array_agg(pe.event_id::text) FILTER (WHERE pe.event_id IS NOT NULL), '{}')
	FROM players p
	LEFT JOIN player_events pe ON pe.player_id = p.id`

func (r *postgresPlayerRepository) Create(ctx context.Context, exec SQLExecutor, player *models.Player) error {
	executor := getExecutor(exec, r.db)

	query := `INSERT INTO players (id, name, age, phone, club_id) VALUES ($1, $2, $3, $4, $5) RETURNING created_at`
	err := executor.QueryRowContext(ctx, query, player.ID, player.Name, player.Age, player.Phone, player.ClubID).Scan(&player.CreatedAt)
	if err != nil {
		return r.handlePlayerError(err)
	}

	if len(player.EventIDs) == 0 {
		return nil
	}
	linkQuery := `INSERT INTO player_events (player_id, event_id) SELECT $1, unnest($2::uuid[]) ON CONFLICT DO NOTHING`
	if _, err := executor.ExecContext(ctx, linkQuery, player.ID, pq.Array(player.EventIDs)); err != nil {
		return r.handlePlayerError(err)
	}
	return nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	return r.query(ctx, r.db, playerSelect+` GROUP BY p.id ORDER BY p.created_at ASC, p.id ASC`)
}

func (r *postgresPlayerRepository) ListByEvent(ctx context.Context, exec SQLExecutor, eventID string) ([]*models.Player, error) {
	query := playerSelect + `
	WHERE p.id IN (SELECT player_id FROM player_events WHERE event_id = $1)
	GROUP BY p.id
	ORDER BY p.created_at ASC, p.id ASC`
	return r.query(ctx, getExecutor(exec, r.db), query, eventID)
}

// ExistsByNameInEvent compares trimmed, lower-cased names.
func (r *postgresPlayerRepository) ExistsByNameInEvent(ctx context.Context, name, eventID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM players p
			JOIN player_events pe ON pe.player_id = p.id
			WHERE pe.event_id = $1 AND lower(trim(p.name)) = lower(trim($2))
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, eventID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check player name %q in event %s: %w", name, eventID, err)
	}
	return exists, nil
}

func (r *postgresPlayerRepository) query(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p := &models.Player{}
		var eventIDs pq.StringArray
		if err := rows.Scan(&p.ID, &p.Name, &p.Age, &p.Phone, &p.ClubID, &p.CreatedAt, &eventIDs); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		p.EventIDs = []string(eventIDs)
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if pqErr, ok := asPQError(err); ok && pqErr.Code == pgForeignKeyViolation {
		switch pqErr.Constraint {
		case "players_club_id_fkey":
			return ErrPlayerClubInvalid
		case "player_events_event_id_fkey":
			return ErrPlayerEventInvalid
		}
	}
	return err
}
