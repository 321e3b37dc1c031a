package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MatchStatus mirrors the matches_status_check constraint.
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusBye       MatchStatus = "bye"
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusPending, MatchStatusBye, MatchStatusScheduled, MatchStatusCompleted:
		return true
	}
	return false
}

func (s *MatchStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	status := MatchStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("invalid match status %q", raw)
	}
	*s = status
	return nil
}

// Scan allows reading the status column straight into a MatchStatus.
func (s *MatchStatus) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into MatchStatus", src)
	}
	status := MatchStatus(raw)
	if !status.Valid() {
		return fmt.Errorf("invalid match status %q in database", raw)
	}
	*s = status
	return nil
}

func (s MatchStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid match status %q", string(s))
	}
	return string(s), nil
}

// Match is one slot of a knockout round. Player2ID is nil for a bye.
// CourtID, StartTime and EndTime are set together by the scheduler.
type Match struct {
	ID        string      `json:"id" db:"id"`
	EventID   string      `json:"event_id" db:"event_id"`
	Round     int         `json:"round" db:"round"`
	// Position is the zero-based place of the match within its round, in bracket order.
	Position  int         `json:"position" db:"position"`
	Player1ID string      `json:"player1_id" db:"player1_id"`
	Player2ID *string     `json:"player2_id" db:"player2_id"`
	Status    MatchStatus `json:"status" db:"status"`
	CourtID   *string     `json:"court_id" db:"court_id"`
	StartTime *time.Time  `json:"start_time" db:"start_time"`
	EndTime   *time.Time  `json:"end_time" db:"end_time"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

func (m *Match) IsBye() bool {
	return m.Status == MatchStatusBye
}

func (m *Match) IsScheduled() bool {
	return m.CourtID != nil && m.StartTime != nil && m.EndTime != nil
}

// HasPlayer reports whether playerID takes part in the match.
func (m *Match) HasPlayer(playerID string) bool {
	if m.Player1ID == playerID {
		return true
	}
	return m.Player2ID != nil && *m.Player2ID == playerID
}

// Clone returns a deep copy, so algorithms can annotate matches without touching the caller's slice.
func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	if m.Player2ID != nil {
		p2 := *m.Player2ID
		c.Player2ID = &p2
	}
	if m.CourtID != nil {
		court := *m.CourtID
		c.CourtID = &court
	}
	if m.StartTime != nil {
		start := *m.StartTime
		c.StartTime = &start
	}
	if m.EndTime != nil {
		end := *m.EndTime
		c.EndTime = &end
	}
	return &c
}

// Score holds set counts, one row per match.
type Score struct {
	MatchID      string    `json:"match_id" db:"match_id"`
	Player1Score int       `json:"player1_score" db:"player1_score"`
	Player2Score int       `json:"player2_score" db:"player2_score"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Court is transient: rebuilt for every scheduling run from the requested court count.
type Court struct {
	ID          string
	AvailableAt time.Time
}
