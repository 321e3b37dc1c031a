package models

import "time"

// MatchCode authorises an umpire to submit a result. Only the bcrypt hash is persisted.
type MatchCode struct {
	MatchID        string    `json:"match_id" db:"match_id"`
	CodeHash       string    `json:"-" db:"code_hash"`
	AssignedUmpire string    `json:"assigned_umpire" db:"assigned_umpire"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

func (c *MatchCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
