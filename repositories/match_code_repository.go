package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/knockout-system/models"
)

var (
	ErrMatchCodeNotFound     = errors.New("match code not found")
	ErrMatchCodeExists       = errors.New("match code already exists for this match")
	ErrMatchCodeMatchInvalid = errors.New("match code match reference is invalid")
)

type MatchCodeRepository interface {
	Create(ctx context.Context, code *models.MatchCode) error
	GetByMatchID(ctx context.Context, matchID string) (*models.MatchCode, error)
	// ReplaceExpired overwrites a stored code only if it has expired at now.
	ReplaceExpired(ctx context.Context, code *models.MatchCode, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type postgresMatchCodeRepository struct {
	db *sql.DB
}

func NewPostgresMatchCodeRepository(db *sql.DB) MatchCodeRepository {
	return &postgresMatchCodeRepository{db: db}
}

func (r *postgresMatchCodeRepository) Create(ctx context.Context, code *models.MatchCode) error {
	query := `
		INSERT INTO match_codes (match_id, code_hash, assigned_umpire, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, code.MatchID, code.CodeHash, code.AssignedUmpire, code.ExpiresAt).Scan(&code.CreatedAt)
	return r.handleMatchCodeError(err)
}

func (r *postgresMatchCodeRepository) GetByMatchID(ctx context.Context, matchID string) (*models.MatchCode, error) {
	query := `SELECT match_id, code_hash, assigned_umpire, expires_at, created_at FROM match_codes WHERE match_id = $1`
	c := &models.MatchCode{}
	err := r.db.QueryRowContext(ctx, query, matchID).Scan(&c.MatchID, &c.CodeHash, &c.AssignedUmpire, &c.ExpiresAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchCodeNotFound
		}
		return nil, fmt.Errorf("failed to scan match code for match %s: %w", matchID, err)
	}
	return c, nil
}

func (r *postgresMatchCodeRepository) ReplaceExpired(ctx context.Context, code *models.MatchCode, now time.Time) error {
	query := `
		UPDATE match_codes
		SET code_hash = $1, assigned_umpire = $2, expires_at = $3, created_at = now()
		WHERE match_id = $4 AND expires_at < $5`

	result, err := r.db.ExecContext(ctx, query, code.CodeHash, code.AssignedUmpire, code.ExpiresAt, code.MatchID, now)
	if err != nil {
		return fmt.Errorf("failed to replace match code for match %s: %w", code.MatchID, err)
	}
	// no row: the code is still valid or already gone
	return checkAffectedRows(result, ErrMatchCodeExists)
}

func (r *postgresMatchCodeRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM match_codes WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired match codes: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}

func (r *postgresMatchCodeRepository) handleMatchCodeError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := asPQError(err); ok {
		switch pqErr.Code {
		case pgUniqueViolation:
			return ErrMatchCodeExists
		case pgForeignKeyViolation:
			return ErrMatchCodeMatchInvalid
		}
	}
	return fmt.Errorf("failed to create match code: %w", err)
}
