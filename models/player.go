package models

import "time"

// Player is a registered player. EventIDs is filled from player_events.
type Player struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Age       int       `json:"age" db:"age"`
	Phone     string    `json:"phone" db:"phone"`
	ClubID    string    `json:"club_id" db:"club_id"`
	EventIDs  []string  `json:"event_ids" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
