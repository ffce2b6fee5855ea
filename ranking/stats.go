package ranking

import "github.com/Dosada05/selective-league/models"

// minGamesForWinRate is the number of games a player needs before counting as win-rate leader.
const minGamesForWinRate = 3

// GlobalStats summarises the league for the dashboard.
func GlobalStats(players []*models.Player) models.GlobalStats {
	stats := models.GlobalStats{TotalPlayers: len(players)}
	for _, p := range players {
		stats.TotalMatches += p.Wins

		if p.BestStreak > stats.BestStreak {
			stats.BestStreak = p.BestStreak
			stats.BestStreakPlayer = p
		}
		rate := WinRate(p)
		if p.Wins+p.Losses >= minGamesForWinRate && rate > stats.BestWinRate {
			stats.BestWinRate = rate
			stats.BestWinRatePlayer = p
		}
	}
	return stats
}
