package brackets

import (
	"fmt"

	"github.com/Dosada05/knockout-system/models"
	"github.com/google/uuid"
)

// Advancement is the outcome of evaluating one finished round.
type Advancement struct {
	EventID    string          `json:"event_id"`
	Round      int             `json:"round"`
	Winners    []string        `json:"winners"`
	NextRound  []*models.Match `json:"next_round"`
	ChampionID *string         `json:"champion_id,omitempty"`
	UnpairedID *string         `json:"unpaired_id,omitempty"`
}

func (a *Advancement) IsFinal() bool {
	return a.ChampionID != nil
}

type RoundAdvancer struct {
	newID func() string
}

func NewRoundAdvancer() *RoundAdvancer {
	return &RoundAdvancer{newID: uuid.NewString}
}

// Winner returns the player with the strictly greater set count.
func Winner(match *models.Match, score *models.Score) (string, error) {
	if score == nil {
		return "", fmt.Errorf("%w: match %s", ErrMissingScore, match.ID)
	}
	if err := ValidateScore(score.Player1Score, score.Player2Score); err != nil {
		return "", fmt.Errorf("match %s: %w", match.ID, err)
	}
	if match.Player2ID == nil {
		return "", fmt.Errorf("%w: match %s has no second player", ErrInvalidScore, match.ID)
	}
	if score.Player1Score > score.Player2Score {
		return match.Player1ID, nil
	}
	return *match.Player2ID, nil
}

// ValidateScore rejects negative set counts and draws; a knockout match always has a winner.
func ValidateScore(p1, p2 int) error {
	if p1 < 0 || p2 < 0 {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidScore, p1, p2)
	}
	if p1 == p2 {
		return fmt.Errorf("%w: tie %d-%d", ErrInvalidScore, p1, p2)
	}
	return nil
}

// AdvanceRound derives the next round from the matches of one round and their scores (keyed by match id).
//
// Head-to-head winners come first in match order, then bye players in match order; the list is
// paired 0-1, 2-3 and so on. When a single player is left the advancement carries ChampionID and
// no matches. When the winners list is odd the trailing player is reported in UnpairedID and the
// advancement is returned together with ErrOddAdvancement, which callers treat as a warning.
func (a *RoundAdvancer) AdvanceRound(round []*models.Match, scores map[string]*models.Score) (*Advancement, error) {
	if len(round) == 0 {
		return nil, ErrEmptyRound
	}

	eventID, roundNum := round[0].EventID, round[0].Round
	for _, m := range round {
		if m.EventID != eventID || m.Round != roundNum {
			return nil, fmt.Errorf("%w: match %s is round %d of event %s, expected round %d of event %s",
				ErrMixedRounds, m.ID, m.Round, m.EventID, roundNum, eventID)
		}
		if !m.IsBye() && m.Status != models.MatchStatusCompleted {
			return nil, fmt.Errorf("%w: match %s is %s", ErrRoundIncomplete, m.ID, m.Status)
		}
	}

	winners := make([]string, 0, len(round))
	byePlayers := make([]string, 0)
	for _, m := range round {
		if m.IsBye() {
			byePlayers = append(byePlayers, m.Player1ID)
			continue
		}
		w, err := Winner(m, scores[m.ID])
		if err != nil {
			return nil, err
		}
		winners = append(winners, w)
	}
	winners = append(winners, byePlayers...)

	adv := &Advancement{
		EventID: eventID,
		Round:   roundNum,
		Winners: winners,
	}

	if len(winners) == 1 {
		champion := winners[0]
		adv.ChampionID = &champion
		return adv, nil
	}

	nextRound := roundNum + 1
	adv.NextRound = make([]*models.Match, 0, len(winners)/2)
	for i := 0; i+1 < len(winners); i += 2 {
		p2 := winners[i+1]
		adv.NextRound = append(adv.NextRound, &models.Match{
			ID:        a.newID(),
			EventID:   eventID,
			Round:     nextRound,
			Position:  len(adv.NextRound),
			Player1ID: winners[i],
			Player2ID: &p2,
			Status:    models.MatchStatusPending,
		})
	}

	if len(winners)%2 == 1 {
		unpaired := winners[len(winners)-1]
		adv.UnpairedID = &unpaired
		return adv, fmt.Errorf("%w: player %s after round %d", ErrOddAdvancement, unpaired, roundNum)
	}
	return adv, nil
}
