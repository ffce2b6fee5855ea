package ranking

import "github.com/Dosada05/selective-league/models"

// ApplyResult applies a decided match to both players under both rating models at once.
// New values are derived from the given pre-match snapshots only.
func ApplyResult(winner, loser models.PlayerStats, cfg models.SelectiveConfig) (models.PlayerStats, models.PlayerStats, models.EloDelta) {
	winner = withDefaultRating(winner)
	loser = withDefaultRating(loser)

	newWinnerRating, newLoserRating := ApplyElo(winner.EloRating, loser.EloRating)
	delta := models.EloDelta{
		WinnerGain: newWinnerRating - winner.EloRating,
		LoserLoss:  loser.EloRating - newLoserRating,
	}

	streak := max(0, winner.Streak) + 1
	w := winner
	w.Wins++
	w.Points += cfg.WinPoints()
	w.EloRating = newWinnerRating
	w.Streak = streak
	w.BestStreak = max(winner.BestStreak, streak)

	l := loser
	l.Losses++
	l.Points += cfg.LossPoints()
	l.EloRating = newLoserRating
	l.Streak = 0

	return w, l, delta
}

// ReverseResult undoes ApplyResult. Ratings are recomputed from the current ones (see
// ReverseElo) unless recorded is given, in which case that exact change is reverted.
// Counters and points floor at zero and both streaks are zeroed, since a streak cannot
// be reconstructed.
func ReverseResult(winner, loser models.PlayerStats, cfg models.SelectiveConfig, recorded *models.EloDelta) (models.PlayerStats, models.PlayerStats) {
	winner = withDefaultRating(winner)
	loser = withDefaultRating(loser)

	var winnerRating, loserRating int
	if recorded != nil {
		winnerRating, loserRating = UndoElo(winner.EloRating, loser.EloRating, recorded.WinnerGain, recorded.LoserLoss)
	} else {
		winnerRating, loserRating = ReverseElo(winner.EloRating, loser.EloRating)
	}

	w := winner
	w.Wins = max(0, winner.Wins-1)
	w.Points = max(0, winner.Points-cfg.WinPoints())
	w.EloRating = winnerRating
	w.Streak = 0

	l := loser
	l.Losses = max(0, loser.Losses-1)
	l.Points = max(0, loser.Points-cfg.LossPoints())
	l.EloRating = loserRating
	l.Streak = 0

	return w, l
}

func withDefaultRating(s models.PlayerStats) models.PlayerStats {
	if s.EloRating == 0 {
		s.EloRating = DefaultRating
	}
	return s
}
