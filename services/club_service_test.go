package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClub(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	club, err := env.clubs.CreateClub(ctx, CreateClubInput{Name: "  Smash Club "})
	require.NoError(t, err)
	assert.Equal(t, "Smash Club", club.Name)
	assert.True(t, isUUID(club.ID))

	_, err = env.clubs.CreateClub(ctx, CreateClubInput{Name: "smash club"})
	assert.ErrorIs(t, err, ErrClubNameConflict)

	_, err = env.clubs.CreateClub(ctx, CreateClubInput{Name: "   "})
	assert.ErrorIs(t, err, ErrClubNameRequired)

	clubs, err := env.clubs.ListClubs(ctx)
	require.NoError(t, err)
	assert.Len(t, clubs, 1)
}
