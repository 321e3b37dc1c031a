package middleware

import (
	"context"
	"errors"

	"github.com/Dosada05/knockout-system/utils"
)

var ErrNoUmpireClaims = errors.New("umpire claims not found in context")

// UmpireFromContext returns the claims put there by UmpireAuthenticator.
func UmpireFromContext(ctx context.Context) (*utils.UmpireClaims, error) {
	claims, ok := ctx.Value(umpireContextKey).(*utils.UmpireClaims)
	if !ok || claims == nil {
		return nil, ErrNoUmpireClaims
	}
	return claims, nil
}
