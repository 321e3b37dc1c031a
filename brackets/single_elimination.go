package brackets

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/knockout-system/models"
	"github.com/google/uuid"
)

// DeclashStrategy decides how players of the same club are spread over the first round.
type DeclashStrategy string

const (
	// DeclashGrouped places single-representative clubs first and then appends every other
	// club as a contiguous block. Best effort only: two members of a big club can still meet.
	DeclashGrouped DeclashStrategy = "grouped"
	// DeclashBalanced hands byes to the largest clubs and pairs the two largest remaining
	// clubs against each other, so no same-club pair is produced while one can be avoided.
	DeclashBalanced DeclashStrategy = "balanced"
)

func ParseDeclashStrategy(s string) (DeclashStrategy, error) {
	switch DeclashStrategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeclashGrouped:
		return DeclashGrouped, nil
	case DeclashBalanced:
		return DeclashBalanced, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDeclashStrategy, s)
	}
}

type SingleEliminationGenerator struct {
	strategy DeclashStrategy
	newID    func() string

	mu  sync.Mutex // guards rng, *rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

// NewSingleEliminationGenerator returns a round-1 builder. A nil rng is seeded from the clock.
func NewSingleEliminationGenerator(strategy DeclashStrategy, rng *rand.Rand) *SingleEliminationGenerator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if strategy == "" {
		strategy = DeclashGrouped
	}
	return &SingleEliminationGenerator{
		strategy: strategy,
		newID:    uuid.NewString,
		rng:      rng,
	}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds round 1 only. Later rounds are derived from results by AdvanceRound.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error) {
	n := len(params.Players)
	if n < 2 {
		return nil, fmt.Errorf("%w (found %d)", ErrInsufficientEntrants, n)
	}

	sizeOfFullBracket := nextPowerOfTwo(n)
	numByes := sizeOfFullBracket - n

	shuffled := make([]*models.Player, n)
	copy(shuffled, params.Players)
	g.mu.Lock()
	g.rng.Shuffle(n, func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	g.mu.Unlock()

	var arranged []*models.Player
	switch g.strategy {
	case DeclashGrouped:
		arranged = arrangeGrouped(shuffled)
	case DeclashBalanced:
		arranged = arrangeBalanced(shuffled, numByes)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDeclashStrategy, g.strategy)
	}

	matches := make([]*models.Match, 0, sizeOfFullBracket/2)
	for _, p := range arranged[:numByes] {
		matches = append(matches, &models.Match{
			ID:        g.newID(),
			EventID:   params.EventID,
			Round:     1,
			Position:  len(matches),
			Player1ID: p.ID,
			Status:    models.MatchStatusBye,
		})
	}

	rest := arranged[numByes:]
	for i := 0; i+1 < len(rest); i += 2 {
		p2 := rest[i+1].ID
		matches = append(matches, &models.Match{
			ID:        g.newID(),
			EventID:   params.EventID,
			Round:     1,
			Position:  len(matches),
			Player1ID: rest[i].ID,
			Player2ID: &p2,
			Status:    models.MatchStatusPending,
		})
	}

	return matches, nil
}

func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

type clubBucket struct {
	clubID  string
	players []*models.Player
}

// groupByClub keeps clubs in first-seen order of the (already shuffled) roster.
func groupByClub(players []*models.Player) []*clubBucket {
	index := make(map[string]*clubBucket)
	buckets := make([]*clubBucket, 0)
	for _, p := range players {
		b, ok := index[p.ClubID]
		if !ok {
			b = &clubBucket{clubID: p.ClubID}
			index[p.ClubID] = b
			buckets = append(buckets, b)
		}
		b.players = append(b.players, p)
	}
	return buckets
}

func arrangeGrouped(players []*models.Player) []*models.Player {
	buckets := groupByClub(players)
	arranged := make([]*models.Player, 0, len(players))

	for _, b := range buckets {
		if len(b.players) == 1 {
			arranged = append(arranged, b.players[0])
		}
	}
	for _, b := range buckets {
		if len(b.players) > 1 {
			arranged = append(arranged, b.players...)
		}
	}
	return arranged
}

func arrangeBalanced(players []*models.Player, numByes int) []*models.Player {
	buckets := groupByClub(players)
	arranged := make([]*models.Player, 0, len(players))

	// largest returns the bucket with most players left, skipping skip; ties keep first-seen order.
	largest := func(skip *clubBucket) *clubBucket {
		var best *clubBucket
		for _, b := range buckets {
			if b == skip || len(b.players) == 0 {
				continue
			}
			if best == nil || len(b.players) > len(best.players) {
				best = b
			}
		}
		return best
	}
	pop := func(b *clubBucket) *models.Player {
		p := b.players[0]
		b.players = b.players[1:]
		return p
	}

	for i := 0; i < numByes; i++ {
		arranged = append(arranged, pop(largest(nil)))
	}

	for len(arranged) < len(players) {
		first := largest(nil)
		p1 := pop(first)
		second := largest(first)
		if second == nil {
			// only one club left, a same-club pair cannot be avoided
			second = first
		}
		arranged = append(arranged, p1, pop(second))
	}
	return arranged
}
