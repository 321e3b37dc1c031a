package models

import "time"

const (
	EventTypeKnockout     = "knockout"
	DefaultMinRestMinutes = 10
)

type Event struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Type           string    `json:"type" db:"type"`
	MinRestMinutes int       `json:"min_rest" db:"min_rest"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// MinRest is the minimum gap a player gets between two matches of this event.
func (e *Event) MinRest() time.Duration {
	return time.Duration(e.MinRestMinutes) * time.Minute
}
