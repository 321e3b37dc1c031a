package brackets

import (
	"context"
	"errors"

	"github.com/Dosada05/knockout-system/models"
)

var (
	ErrInsufficientEntrants      = errors.New("at least 2 players required for tournament")
	ErrRoundIncomplete           = errors.New("round has matches that are not completed yet")
	ErrOddAdvancement            = errors.New("odd number of players advanced, one player left unpaired")
	ErrInvalidScore              = errors.New("scores must be non-negative and must not be equal")
	ErrMissingScore              = errors.New("completed match has no score")
	ErrInvalidScheduleParameters = errors.New("court count must be at least 1 and match duration positive")
	ErrUnknownDeclashStrategy    = errors.New("unknown declash strategy")
	ErrEmptyRound                = errors.New("round has no matches")
	ErrMixedRounds               = errors.New("matches belong to different rounds or events")
)

type GenerateBracketParams struct {
	EventID string
	Players []*models.Player
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}
