package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/knockout-system/metrics"
	"github.com/Dosada05/knockout-system/models"
	"github.com/Dosada05/knockout-system/repositories"
	"github.com/Dosada05/knockout-system/utils"
)

type MatchCodeService interface {
	// Generate issues the umpire code of a match. A still valid code is never re-issued:
	// the result then reports AlreadyExists and carries no plaintext.
	Generate(ctx context.Context, input GenerateCodeInput) (*GeneratedCode, error)
	Verify(ctx context.Context, input VerifyCodeInput) (*VerifiedCode, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type GenerateCodeInput struct {
	MatchID        string `json:"match_id"`
	AssignedUmpire string `json:"assigned_umpire"`
}

type VerifyCodeInput struct {
	MatchID string `json:"match_id"`
	Code    string `json:"code"`
}

type GeneratedCode struct {
	MatchID        string    `json:"match_id"`
	Code           string    `json:"code,omitempty"`
	AssignedUmpire string    `json:"assigned_umpire"`
	ExpiresAt      time.Time `json:"expires_at"`
	AlreadyExists  bool      `json:"already_exists"`
}

type VerifiedCode struct {
	Valid          bool      `json:"valid"`
	MatchID        string    `json:"match_id"`
	AssignedUmpire string    `json:"assigned_umpire"`
	Token          string    `json:"token,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type matchCodeService struct {
	codeRepo  repositories.MatchCodeRepository
	matchRepo repositories.MatchRepository
	ttl       time.Duration
	secret    []byte
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewMatchCodeService: with an empty secret Verify still works but issues no umpire token.
func NewMatchCodeService(
	codeRepo repositories.MatchCodeRepository,
	matchRepo repositories.MatchRepository,
	ttl time.Duration,
	secret []byte,
	m *metrics.Metrics,
	logger *slog.Logger,
) MatchCodeService {
	return &matchCodeService{
		codeRepo:  codeRepo,
		matchRepo: matchRepo,
		ttl:       ttl,
		secret:    secret,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *matchCodeService) Generate(ctx context.Context, input GenerateCodeInput) (*GeneratedCode, error) {
	umpire := strings.TrimSpace(input.AssignedUmpire)
	if umpire == "" {
		return nil, ErrUmpireRequired
	}
	if !isUUID(input.MatchID) {
		return nil, ErrMatchNotFound
	}
	if _, err := s.matchRepo.GetByID(ctx, nil, input.MatchID); err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", input.MatchID, err)
	}

	now := s.now()
	existing, err := s.codeRepo.GetByMatchID(ctx, input.MatchID)
	switch {
	case err == nil && !existing.Expired(now):
		s.metrics.MatchCode("generate", "exists")
		return existingCode(existing), nil
	case err != nil && !errors.Is(err, repositories.ErrMatchCodeNotFound):
		return nil, fmt.Errorf("failed to get match code of match %s: %w", input.MatchID, err)
	}

	plain, err := utils.GenerateMatchCode()
	if err != nil {
		return nil, err
	}
	hash, err := utils.HashCode(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to hash match code: %w", err)
	}
	code := &models.MatchCode{
		MatchID:        input.MatchID,
		CodeHash:       hash,
		AssignedUmpire: umpire,
		ExpiresAt:      now.Add(s.ttl).UTC(),
	}

	outcome := "created"
	if existing != nil {
		outcome = "replaced"
		err = s.codeRepo.ReplaceExpired(ctx, code, now)
	} else {
		err = s.codeRepo.Create(ctx, code)
	}
	if err != nil {
		if errors.Is(err, repositories.ErrMatchCodeExists) {
			// a concurrent request issued a code first
			current, getErr := s.codeRepo.GetByMatchID(ctx, input.MatchID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to reload match code of match %s: %w", input.MatchID, getErr)
			}
			s.metrics.MatchCode("generate", "exists")
			return existingCode(current), nil
		}
		if errors.Is(err, repositories.ErrMatchCodeMatchInvalid) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to save match code: %w", err)
	}

	s.metrics.MatchCode("generate", outcome)
	s.logger.InfoContext(ctx, "match code issued",
		slog.String("match_id", code.MatchID),
		slog.String("umpire", code.AssignedUmpire),
		slog.Time("expires_at", code.ExpiresAt))
	return &GeneratedCode{
		MatchID:        code.MatchID,
		Code:           plain,
		AssignedUmpire: code.AssignedUmpire,
		ExpiresAt:      code.ExpiresAt,
	}, nil
}

func existingCode(c *models.MatchCode) *GeneratedCode {
	return &GeneratedCode{
		MatchID:        c.MatchID,
		AssignedUmpire: c.AssignedUmpire,
		ExpiresAt:      c.ExpiresAt,
		AlreadyExists:  true,
	}
}

func (s *matchCodeService) Verify(ctx context.Context, input VerifyCodeInput) (*VerifiedCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" || !isUUID(input.MatchID) {
		s.metrics.MatchCode("verify", "invalid")
		return nil, ErrInvalidMatchCode
	}

	stored, err := s.codeRepo.GetByMatchID(ctx, input.MatchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchCodeNotFound) {
			s.metrics.MatchCode("verify", "invalid")
			return nil, ErrInvalidMatchCode
		}
		return nil, fmt.Errorf("failed to get match code of match %s: %w", input.MatchID, err)
	}
	if !utils.CheckCodeHash(code, stored.CodeHash) {
		s.metrics.MatchCode("verify", "invalid")
		return nil, ErrInvalidMatchCode
	}
	if stored.Expired(s.now()) {
		s.metrics.MatchCode("verify", "expired")
		return nil, ErrMatchCodeExpired
	}

	result := &VerifiedCode{
		Valid:          true,
		MatchID:        stored.MatchID,
		AssignedUmpire: stored.AssignedUmpire,
		ExpiresAt:      stored.ExpiresAt,
	}
	if len(s.secret) > 0 {
		token, err := utils.GenerateUmpireToken(s.secret, stored.MatchID, stored.AssignedUmpire, stored.ExpiresAt)
		if err != nil {
			return nil, fmt.Errorf("failed to sign umpire token: %w", err)
		}
		result.Token = token
	}

	s.metrics.MatchCode("verify", "valid")
	return result, nil
}

func (s *matchCodeService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.codeRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired match codes: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired match codes purged", slog.Int64("deleted", n))
	}
	return n, nil
}
