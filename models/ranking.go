package models

// RankedPlayer is one entry of a ranking snapshot. SBScore is recomputed on every request.
type RankedPlayer struct {
	Player
	Position int `json:"position"`
	SBScore  int `json:"sb_score"`
	WinRate  int `json:"win_rate"`
}

// Standing is a player's line in a single selective's table.
type Standing struct {
	Position int    `json:"position"`
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Nickname string `json:"nickname,omitempty"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Points   int    `json:"points"`
}

type GlobalStats struct {
	TotalPlayers      int     `json:"total_players"`
	TotalMatches      int     `json:"total_matches"`
	BestStreak        int     `json:"best_streak"`
	BestStreakPlayer  *Player `json:"best_streak_player,omitempty"`
	BestWinRate       int     `json:"best_win_rate"`
	BestWinRatePlayer *Player `json:"best_win_rate_player,omitempty"`
}
