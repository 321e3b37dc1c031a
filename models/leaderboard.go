package models

type LeaderboardEntry struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
	SetsWon    int    `json:"sets_won"`
	SetsLost   int    `json:"sets_lost"`
	Points     int    `json:"points"`
}

type Leaderboard struct {
	EventID   string             `json:"event_id"`
	EventName string             `json:"event_name"`
	Entries   []LeaderboardEntry `json:"leaderboard"`
}
