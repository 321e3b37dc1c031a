package brackets

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/Dosada05/knockout-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// roster builds players p1..pN, the i-th player belonging to clubs[i].
func roster(clubs ...string) []*models.Player {
	players := make([]*models.Player, len(clubs))
	for i, club := range clubs {
		players[i] = &models.Player{ID: fmt.Sprintf("p%d", i+1), ClubID: club}
	}
	return players
}

func distinctClubs(n int) []*models.Player {
	clubs := make([]string, n)
	for i := range clubs {
		clubs[i] = fmt.Sprintf("c%d", i+1)
	}
	return roster(clubs...)
}

func newTestGenerator(strategy DeclashStrategy, seed int64) *SingleEliminationGenerator {
	return NewSingleEliminationGenerator(strategy, rand.New(rand.NewSource(seed)))
}

func countByes(matches []*models.Match) int {
	byes := 0
	for _, m := range matches {
		if m.IsBye() {
			byes++
		}
	}
	return byes
}

func samePairs(matches []*models.Match, players []*models.Player) int {
	clubOf := make(map[string]string, len(players))
	for _, p := range players {
		clubOf[p.ID] = p.ClubID
	}
	same := 0
	for _, m := range matches {
		if m.Player2ID != nil && clubOf[m.Player1ID] == clubOf[*m.Player2ID] {
			same++
		}
	}
	return same
}

func TestGenerateBracket_SizesAndByes(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, strategy := range []DeclashStrategy{DeclashGrouped, DeclashBalanced} {
		for n := 2; n <= 40; n++ {
			clubs := make([]string, n)
			for i := range clubs {
				clubs[i] = fmt.Sprintf("c%d", rng.Intn(5))
			}
			players := roster(clubs...)

			matches, err := newTestGenerator(strategy, int64(n)).GenerateBracket(context.Background(), GenerateBracketParams{
				EventID: "ev-1",
				Players: players,
			})
			require.NoError(t, err, "n=%d strategy=%s", n, strategy)

			target := nextPowerOfTwo(n)
			assert.Len(t, matches, target/2, "n=%d", n)
			assert.Equal(t, target-n, countByes(matches), "n=%d", n)

			seen := make(map[string]int)
			for i, m := range matches {
				assert.Equal(t, i, m.Position, "n=%d", n)
				assert.Equal(t, 1, m.Round)
				assert.Equal(t, "ev-1", m.EventID)
				assert.NotEmpty(t, m.ID)
				assert.Nil(t, m.CourtID)
				assert.Nil(t, m.StartTime)
				assert.Nil(t, m.EndTime)
				seen[m.Player1ID]++
				if m.IsBye() {
					assert.Nil(t, m.Player2ID)
				} else {
					require.NotNil(t, m.Player2ID)
					assert.Equal(t, models.MatchStatusPending, m.Status)
					seen[*m.Player2ID]++
				}
			}
			assert.Len(t, seen, n)
			for id, count := range seen {
				assert.Equal(t, 1, count, "player %s appears %d times", id, count)
			}
		}
	}
}

func TestGenerateBracket_InsufficientEntrants(t *testing.T) {
	g := newTestGenerator(DeclashGrouped, 1)
	for _, players := range [][]*models.Player{nil, distinctClubs(1)} {
		matches, err := g.GenerateBracket(context.Background(), GenerateBracketParams{EventID: "ev", Players: players})
		assert.ErrorIs(t, err, ErrInsufficientEntrants)
		assert.Nil(t, matches)
	}
}

func TestGenerateBracket_FivePlayers(t *testing.T) {
	matches, err := newTestGenerator(DeclashGrouped, 3).GenerateBracket(context.Background(), GenerateBracketParams{
		EventID: "ev",
		Players: distinctClubs(5),
	})
	require.NoError(t, err)
	require.Len(t, matches, 4)
	assert.Equal(t, 3, countByes(matches))
	// byes come first, the real match last
	for _, m := range matches[:3] {
		assert.Equal(t, models.MatchStatusBye, m.Status)
	}
	assert.Equal(t, models.MatchStatusPending, matches[3].Status)
}

func TestGenerateBracket_DoesNotReorderInput(t *testing.T) {
	players := distinctClubs(6)
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	_, err := newTestGenerator(DeclashGrouped, 11).GenerateBracket(context.Background(), GenerateBracketParams{EventID: "ev", Players: players})
	require.NoError(t, err)
	for i, p := range players {
		assert.Equal(t, ids[i], p.ID)
	}
}

func TestArrangeGrouped_SinglesFirstThenClubBlocks(t *testing.T) {
	players := roster("a", "b", "a", "c", "b", "d")
	arranged := arrangeGrouped(players)

	got := make([]string, len(arranged))
	for i, p := range arranged {
		got[i] = p.ID
	}
	// singles c(p4), d(p6) first, then club a (p1, p3) and club b (p2, p5) in first-seen order
	assert.Equal(t, []string{"p4", "p6", "p1", "p3", "p2", "p5"}, got)
}

func TestArrangeBalanced_AvoidsSameClubPairs(t *testing.T) {
	cases := []struct {
		name  string
		clubs []string
	}{
		{"two clubs of three", []string{"a", "a", "a", "b", "b", "b"}},
		{"one dominant club", []string{"a", "a", "a", "a", "b", "b", "c", "c"}},
		{"uneven with byes", []string{"a", "a", "a", "a", "a", "b", "b", "c", "d", "e", "f"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			players := roster(tc.clubs...)
			for seed := int64(0); seed < 20; seed++ {
				matches, err := newTestGenerator(DeclashBalanced, seed).GenerateBracket(context.Background(), GenerateBracketParams{
					EventID: "ev",
					Players: players,
				})
				require.NoError(t, err)
				assert.Zero(t, samePairs(matches, players), "seed %d", seed)
			}
		})
	}
}

func TestArrangeBalanced_ByesGoToLargestClub(t *testing.T) {
	players := roster("a", "b", "a", "a", "c")
	matches, err := newTestGenerator(DeclashBalanced, 5).GenerateBracket(context.Background(), GenerateBracketParams{
		EventID: "ev",
		Players: players,
	})
	require.NoError(t, err)

	clubOf := map[string]string{}
	for _, p := range players {
		clubOf[p.ID] = p.ClubID
	}
	byeClubs := map[string]int{}
	for _, m := range matches {
		if m.IsBye() {
			byeClubs[clubOf[m.Player1ID]]++
		}
	}
	// 3 byes: club a has 3 players, first two byes go to a, then the tie a/b/c resolves to first seen
	assert.Equal(t, 3, countByes(matches))
	assert.GreaterOrEqual(t, byeClubs["a"], 2)
	assert.Zero(t, samePairs(matches, players))
}

func TestArrangeBalanced_SingleClubStillPairsEveryone(t *testing.T) {
	players := roster("a", "a", "a", "a")
	matches, err := newTestGenerator(DeclashBalanced, 1).GenerateBracket(context.Background(), GenerateBracketParams{
		EventID: "ev",
		Players: players,
	})
	require.NoError(t, err)
	assert.Len(t, matches, 2)
	assert.Equal(t, 2, samePairs(matches, players))
}

func TestParseDeclashStrategy(t *testing.T) {
	s, err := ParseDeclashStrategy("")
	require.NoError(t, err)
	assert.Equal(t, DeclashGrouped, s)

	s, err = ParseDeclashStrategy(" Balanced ")
	require.NoError(t, err)
	assert.Equal(t, DeclashBalanced, s)

	_, err = ParseDeclashStrategy("snake")
	assert.ErrorIs(t, err, ErrUnknownDeclashStrategy)
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 8: 8, 9: 16, 33: 64}
	for n, want := range cases {
		assert.Equal(t, want, nextPowerOfTwo(n), "n=%d", n)
	}
}
