package brackets

import (
	"testing"

	"github.com/Dosada05/knockout-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func played(id string, round int, p1, p2 string) *models.Match {
	return &models.Match{ID: id, EventID: "ev", Round: round, Player1ID: p1, Player2ID: strPtr(p2), Status: models.MatchStatusCompleted}
}

func bye(id string, round int, p string) *models.Match {
	return &models.Match{ID: id, EventID: "ev", Round: round, Player1ID: p, Status: models.MatchStatusBye}
}

func score(matchID string, p1, p2 int) *models.Score {
	return &models.Score{MatchID: matchID, Player1Score: p1, Player2Score: p2}
}

func scoresOf(list ...*models.Score) map[string]*models.Score {
	out := make(map[string]*models.Score, len(list))
	for _, s := range list {
		out[s.MatchID] = s
	}
	return out
}

func TestAdvanceRound_PairsWinnersInMatchOrder(t *testing.T) {
	round := []*models.Match{
		played("m1", 1, "p1", "p2"),
		played("m2", 1, "p3", "p4"),
	}
	adv, err := NewRoundAdvancer().AdvanceRound(round, scoresOf(score("m1", 2, 1), score("m2", 0, 2)))
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p4"}, adv.Winners)
	assert.Nil(t, adv.ChampionID)
	require.Len(t, adv.NextRound, 1)
	next := adv.NextRound[0]
	assert.Equal(t, 2, next.Round)
	assert.Equal(t, 0, next.Position)
	assert.Equal(t, "ev", next.EventID)
	assert.Equal(t, "p1", next.Player1ID)
	require.NotNil(t, next.Player2ID)
	assert.Equal(t, "p4", *next.Player2ID)
	assert.Equal(t, models.MatchStatusPending, next.Status)
	assert.NotEmpty(t, next.ID)
}

func TestAdvanceRound_ByePlayersFollowWinners(t *testing.T) {
	round := []*models.Match{
		bye("b1", 1, "p1"),
		bye("b2", 1, "p2"),
		bye("b3", 1, "p3"),
		played("m1", 1, "p4", "p5"),
	}
	adv, err := NewRoundAdvancer().AdvanceRound(round, scoresOf(score("m1", 1, 3)))
	require.NoError(t, err)

	assert.Equal(t, []string{"p5", "p1", "p2", "p3"}, adv.Winners)
	require.Len(t, adv.NextRound, 2)
	assert.Equal(t, "p5", adv.NextRound[0].Player1ID)
	assert.Equal(t, "p1", *adv.NextRound[0].Player2ID)
	assert.Equal(t, "p2", adv.NextRound[1].Player1ID)
	assert.Equal(t, "p3", *adv.NextRound[1].Player2ID)
	assert.Equal(t, 1, adv.NextRound[1].Position)
}

func TestAdvanceRound_Incomplete(t *testing.T) {
	for _, status := range []models.MatchStatus{models.MatchStatusPending, models.MatchStatusScheduled} {
		round := []*models.Match{
			played("m1", 1, "p1", "p2"),
			played("m2", 1, "p3", "p4"),
		}
		round[1].Status = status

		adv, err := NewRoundAdvancer().AdvanceRound(round, scoresOf(score("m1", 2, 0)))
		assert.ErrorIs(t, err, ErrRoundIncomplete)
		assert.Nil(t, adv)
	}
}

func TestAdvanceRound_Champion(t *testing.T) {
	adv, err := NewRoundAdvancer().AdvanceRound([]*models.Match{played("final", 3, "p1", "p2")}, scoresOf(score("final", 1, 2)))
	require.NoError(t, err)
	require.NotNil(t, adv.ChampionID)
	assert.Equal(t, "p2", *adv.ChampionID)
	assert.True(t, adv.IsFinal())
	assert.Empty(t, adv.NextRound)
}

func TestAdvanceRound_ChampionByBye(t *testing.T) {
	adv, err := NewRoundAdvancer().AdvanceRound([]*models.Match{bye("b1", 2, "p7")}, nil)
	require.NoError(t, err)
	require.NotNil(t, adv.ChampionID)
	assert.Equal(t, "p7", *adv.ChampionID)
}

func TestAdvanceRound_OddWinnersReportUnpaired(t *testing.T) {
	round := []*models.Match{
		played("m1", 1, "p1", "p2"),
		bye("b1", 1, "p3"),
		bye("b2", 1, "p4"),
	}
	adv, err := NewRoundAdvancer().AdvanceRound(round, scoresOf(score("m1", 3, 0)))
	assert.ErrorIs(t, err, ErrOddAdvancement)
	require.NotNil(t, adv)
	require.Len(t, adv.NextRound, 1)
	assert.Equal(t, "p1", adv.NextRound[0].Player1ID)
	assert.Equal(t, "p3", *adv.NextRound[0].Player2ID)
	require.NotNil(t, adv.UnpairedID)
	assert.Equal(t, "p4", *adv.UnpairedID)
}

func TestAdvanceRound_InvalidInput(t *testing.T) {
	advancer := NewRoundAdvancer()

	_, err := advancer.AdvanceRound(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyRound)

	_, err = advancer.AdvanceRound([]*models.Match{played("m1", 1, "p1", "p2")}, scoresOf(score("m1", 2, 2)))
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = advancer.AdvanceRound([]*models.Match{played("m1", 1, "p1", "p2")}, nil)
	assert.ErrorIs(t, err, ErrMissingScore)

	_, err = advancer.AdvanceRound([]*models.Match{played("m1", 1, "p1", "p2"), played("m2", 2, "p3", "p4")},
		scoresOf(score("m1", 1, 0), score("m2", 1, 0)))
	assert.ErrorIs(t, err, ErrMixedRounds)
}

func TestValidateScore(t *testing.T) {
	assert.NoError(t, ValidateScore(2, 1))
	assert.NoError(t, ValidateScore(0, 3))
	assert.ErrorIs(t, ValidateScore(1, 1), ErrInvalidScore)
	assert.ErrorIs(t, ValidateScore(-1, 2), ErrInvalidScore)
}
