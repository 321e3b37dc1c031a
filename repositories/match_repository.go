package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/knockout-system/models"
	sq "github.com/Masterminds/squirrel"
)

var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrMatchConflict      = errors.New("match already exists for this event round and player")
	ErrMatchEventInvalid  = errors.New("match event reference is invalid")
	ErrMatchPlayerInvalid = errors.New("match player reference is invalid")
	ErrMatchStatusInvalid = errors.New("match status rejected by database")
)

// MatchFilter narrows List. Nil fields are ignored.
type MatchFilter struct {
	EventID *string
	Round   *int
	Status  *models.MatchStatus
	CourtID *string
}

type MatchRepository interface {
	CreateMany(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error)
	UpdateSchedule(ctx context.Context, exec SQLExecutor, id, courtID string, start, end time.Time) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.MatchStatus) error
	CountByEventRound(ctx context.Context, exec SQLExecutor, eventID string, round int) (int, error)
}

type postgresMatchRepository struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var matchColumns = []string{
	"id", "event_id", "round", "position", "player1_id", "player2_id", "status",
	"court_id", "start_time", "end_time", "created_at",
}

func (r *postgresMatchRepository) CreateMany(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	insert := r.sb.Insert("matches").
		Columns("id", "event_id", "round", "position", "player1_id", "player2_id", "status", "court_id", "start_time", "end_time")
	for _, m := range matches {
		insert = insert.Values(m.ID, m.EventID, m.Round, m.Position, m.Player1ID, m.Player2ID, m.Status, m.CourtID, m.StartTime, m.EndTime)
	}
	query, args, err := insert.Suffix("RETURNING id, created_at").ToSql()
	if err != nil {
		return fmt.Errorf("failed to build match insert: %w", err)
	}

	rows, err := getExecutor(exec, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return r.handleMatchError(err)
	}
	defer rows.Close()

	created := make(map[string]time.Time, len(matches))
	for rows.Next() {
		var id string
		var createdAt time.Time
		if err := rows.Scan(&id, &createdAt); err != nil {
			return fmt.Errorf("failed to scan created match: %w", err)
		}
		created[id] = createdAt
	}
	if err := rows.Err(); err != nil {
		return r.handleMatchError(err)
	}
	for _, m := range matches {
		m.CreatedAt = created[m.ID]
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query, args, err := r.sb.Select(matchColumns...).From("matches").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build match query: %w", err)
	}
	m, err := scanMatch(getExecutor(exec, r.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %s: %w", id, err)
	}
	return m, nil
}

// List returns matches in bracket order: by round, then by position within the round.
func (r *postgresMatchRepository) List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error) {
	query, args, err := r.listQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to build match list query: %w", err)
	}

	rows, err := getExecutor(exec, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) listQuery(filter MatchFilter) (string, []interface{}, error) {
	q := r.sb.Select(matchColumns...).From("matches")
	if filter.EventID != nil {
		q = q.Where(sq.Eq{"event_id": *filter.EventID})
	}
	if filter.Round != nil {
		q = q.Where(sq.Eq{"round": *filter.Round})
	}
	if filter.Status != nil {
		q = q.Where(sq.Eq{"status": string(*filter.Status)})
	}
	if filter.CourtID != nil {
		q = q.Where(sq.Eq{"court_id": *filter.CourtID})
	}
	// rows of one CreateMany share created_at
	return q.OrderBy("round ASC", "position ASC", "id ASC").ToSql()
}

func (r *postgresMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, id, courtID string, start, end time.Time) error {
	query, args, err := r.sb.Update("matches").
		Set("court_id", courtID).
		Set("start_time", start).
		Set("end_time", end).
		Set("status", string(models.MatchStatusScheduled)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build schedule update: %w", err)
	}
	result, err := getExecutor(exec, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("UpdateSchedule: failed to execute query for match %s: %w", id, r.handleMatchError(err))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id string, status models.MatchStatus) error {
	result, err := getExecutor(exec, r.db).ExecContext(ctx, `UPDATE matches SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("UpdateStatus: failed to execute query for match %s: %w", id, r.handleMatchError(err))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) CountByEventRound(ctx context.Context, exec SQLExecutor, eventID string, round int) (int, error) {
	var count int
	err := getExecutor(exec, r.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM matches WHERE event_id = $1 AND round = $2`, eventID, round).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count matches of event %s round %d: %w", eventID, round, err)
	}
	return count, nil
}

func scanMatch(row interface{ Scan(...interface{}) error }) (*models.Match, error) {
	m := &models.Match{}
	var (
		player2   sql.NullString
		court     sql.NullString
		startTime sql.NullTime
		endTime   sql.NullTime
	)
	err := row.Scan(&m.ID, &m.EventID, &m.Round, &m.Position, &m.Player1ID, &player2, &m.Status,
		&court, &startTime, &endTime, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if player2.Valid {
		m.Player2ID = &player2.String
	}
	if court.Valid {
		m.CourtID = &court.String
	}
	if startTime.Valid {
		t := startTime.Time
		m.StartTime = &t
	}
	if endTime.Valid {
		t := endTime.Time
		m.EndTime = &t
	}
	return m, nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	pqErr, ok := asPQError(err)
	if !ok {
		return err
	}
	switch pqErr.Code {
	case pgUniqueViolation:
		return ErrMatchConflict
	case pgCheckViolation:
		if pqErr.Constraint == "matches_status_check" {
			return ErrMatchStatusInvalid
		}
	case pgForeignKeyViolation:
		switch pqErr.Constraint {
		case "matches_event_id_fkey":
			return ErrMatchEventInvalid
		case "matches_player1_id_fkey", "matches_player2_id_fkey":
			return ErrMatchPlayerInvalid
		}
	}
	return err
}
