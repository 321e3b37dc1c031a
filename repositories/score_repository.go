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
	ErrScoreNotFound     = errors.New("score not found")
	ErrScoreMatchInvalid = errors.New("score match reference is invalid")
)

type ScoreRepository interface {
	// Upsert keeps one score row per match, the latest submission wins.
	Upsert(ctx context.Context, exec SQLExecutor, score *models.Score) error
	GetByMatchID(ctx context.Context, exec SQLExecutor, matchID string) (*models.Score, error)
	ListByMatchIDs(ctx context.Context, exec SQLExecutor, matchIDs []string) (map[string]*models.Score, error)
}

type postgresScoreRepository struct {
	db *sql.DB
}

func NewPostgresScoreRepository(db *sql.DB) ScoreRepository {
	return &postgresScoreRepository{db: db}
}

func (r *postgresScoreRepository) Upsert(ctx context.Context, exec SQLExecutor, score *models.Score) error {
	query := `
		INSERT INTO scores (match_id, player1_score, player2_score)
		VALUES ($1, $2, $3)
		ON CONFLICT (match_id) DO UPDATE
		SET player1_score = EXCLUDED.player1_score,
		    player2_score = EXCLUDED.player2_score,
		    updated_at = now()
		RETURNING updated_at`

	err := getExecutor(exec, r.db).QueryRowContext(ctx, query, score.MatchID, score.Player1Score, score.Player2Score).Scan(&score.UpdatedAt)
	if err != nil {
		if pqErr, ok := asPQError(err); ok && pqErr.Code == pgForeignKeyViolation {
			return ErrScoreMatchInvalid
		}
		return fmt.Errorf("failed to upsert score for match %s: %w", score.MatchID, err)
	}
	return nil
}

func (r *postgresScoreRepository) GetByMatchID(ctx context.Context, exec SQLExecutor, matchID string) (*models.Score, error) {
	query := `SELECT match_id, player1_score, player2_score, updated_at FROM scores WHERE match_id = $1`
	s := &models.Score{}
	err := getExecutor(exec, r.db).QueryRowContext(ctx, query, matchID).Scan(&s.MatchID, &s.Player1Score, &s.Player2Score, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScoreNotFound
		}
		return nil, fmt.Errorf("failed to scan score for match %s: %w", matchID, err)
	}
	return s, nil
}

func (r *postgresScoreRepository) ListByMatchIDs(ctx context.Context, exec SQLExecutor, matchIDs []string) (map[string]*models.Score, error) {
	scores := make(map[string]*models.Score, len(matchIDs))
	if len(matchIDs) == 0 {
		return scores, nil
	}

	query := `SELECT match_id, player1_score, player2_score, updated_at FROM scores WHERE match_id = ANY($1::uuid[])`
	rows, err := getExecutor(exec, r.db).QueryContext(ctx, query, pq.Array(matchIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := &models.Score{}
		if err := rows.Scan(&s.MatchID, &s.Player1Score, &s.Player2Score, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		scores[s.MatchID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during score rows iteration: %w", err)
	}
	return scores, nil
}
