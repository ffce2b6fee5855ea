package models

import "time"

const DefaultEloRating = 1000

// Player представляет игрока лиги.
type Player struct {
	ID            string               `json:"id" db:"id"`
	Name          string               `json:"name" db:"name"`
	Nickname      string               `json:"nickname" db:"nickname"`
	Photo         string               `json:"photo,omitempty" db:"photo"`
	EloRating     int                  `json:"elo_rating" db:"elo_rating"`
	Points        int                  `json:"points" db:"points"`
	Wins          int                  `json:"wins" db:"wins"`
	Losses        int                  `json:"losses" db:"losses"`
	Streak        int                  `json:"streak" db:"streak"`
	BestStreak    int                  `json:"best_streak" db:"best_streak"`
	Badges        []string             `json:"badges" db:"badges"`
	PointsHistory []PointsHistoryEntry `json:"points_history,omitempty" db:"points_history"`
	CreatedAt     time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at" db:"updated_at"`
}

// PlayerStats is the part of a player the rating engine reads and writes.
type PlayerStats struct {
	Points     int `json:"points"`
	Wins       int `json:"wins"`
	Losses     int `json:"losses"`
	EloRating  int `json:"elo_rating"`
	Streak     int `json:"streak"`
	BestStreak int `json:"best_streak"`
}

// PlayerStatsUpdate pairs a player id with the stats to persist for it.
type PlayerStatsUpdate struct {
	PlayerID string
	Stats    PlayerStats
}

// PointsHistoryEntry is a snapshot of a player's score taken when a selective is completed.
type PointsHistoryEntry struct {
	EventName string    `json:"event_name"`
	Points    int       `json:"points"`
	EloRating int       `json:"elo_rating"`
	Date      time.Time `json:"date"`
}

func (p *Player) Stats() PlayerStats {
	rating := p.EloRating
	if rating == 0 {
		rating = DefaultEloRating
	}
	return PlayerStats{
		Points:     p.Points,
		Wins:       p.Wins,
		Losses:     p.Losses,
		EloRating:  rating,
		Streak:     p.Streak,
		BestStreak: p.BestStreak,
	}
}

func (p *Player) SetStats(s PlayerStats) {
	p.Points = s.Points
	p.Wins = s.Wins
	p.Losses = s.Losses
	p.EloRating = s.EloRating
	p.Streak = s.Streak
	p.BestStreak = s.BestStreak
}

// DisplayName returns the nickname when present, the full name otherwise.
func (p *Player) DisplayName() string {
	if p == nil {
		return "Unknown Player"
	}
	if p.Nickname != "" {
		return p.Nickname
	}
	return p.Name
}
