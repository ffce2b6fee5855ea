package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/selective-league/models"
)

func TestExpected(t *testing.T) {
	assert.InDelta(t, 0.5, Expected(1000, 1000), 1e-9)
	assert.InDelta(t, 1.0, Expected(1400, 1000)+Expected(1000, 1400), 1e-9)
	assert.Greater(t, Expected(1200, 1000), 0.5)
}

func TestApplyElo(t *testing.T) {
	tests := []struct {
		name          string
		winner, loser int
		wantW, wantL  int
	}{
		{"equal ratings", 1000, 1000, 1016, 984},
		{"favourite wins", 1400, 1000, 1403, 997},
		{"loser at floor", 1000, 100, 1000, 100},
		{"loser clamped", 110, 110, 126, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, l := ApplyElo(tt.winner, tt.loser)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantL, l)
			assert.GreaterOrEqual(t, l, RatingFloor)
		})
	}
}

func TestUndoEloRestoresRecordedChange(t *testing.T) {
	for w := 100; w <= 2000; w += 37 {
		for l := 100; l <= 2000; l += 41 {
			nw, nl := ApplyElo(w, l)
			pw, pl := UndoElo(nw, nl, nw-w, l-nl)
			require.Equal(t, w, pw, "winner %d loser %d", w, l)
			require.Equal(t, l, pl, "winner %d loser %d", w, l)
		}
	}
}

func TestUndoEloClampsAtFloor(t *testing.T) {
	w, l := UndoElo(110, 900, 20, 5)
	assert.Equal(t, RatingFloor, w)
	assert.Equal(t, 905, l)
}

func TestReverseEloFindsPreimage(t *testing.T) {
	for w := 500; w <= 1500; w += 13 {
		for l := 500; l <= 1500; l += 17 {
			nw, nl := ApplyElo(w, l)
			pw, pl := ReverseElo(nw, nl)
			rw, rl := ApplyElo(pw, pl)
			require.Equal(t, nw, rw, "pre %d/%d", w, l)
			require.Equal(t, nl, rl, "pre %d/%d", w, l)
		}
	}
}

func TestReverseEloEqualRatings(t *testing.T) {
	w, l := ReverseElo(1016, 984)
	assert.Equal(t, 1000, w)
	assert.Equal(t, 1000, l)
}

func TestReverseEloFloorsWinner(t *testing.T) {
	w, l := ReverseElo(105, 100)
	assert.Equal(t, RatingFloor, w)
	assert.Equal(t, 116, l)

	for _, pair := range [][2]int{{100, 100}, {101, 100}, {110, 130}, {120, 100}} {
		w, l := ReverseElo(pair[0], pair[1])
		assert.GreaterOrEqual(t, w, RatingFloor, "%v", pair)
		assert.GreaterOrEqual(t, l, RatingFloor, "%v", pair)
	}
}

func TestApplyResult(t *testing.T) {
	cfg := models.SelectiveConfig{}.Normalize()
	winner := models.PlayerStats{EloRating: 1000, Streak: 2, BestStreak: 2}
	loser := models.PlayerStats{EloRating: 1000, Streak: 4, BestStreak: 5, Points: 9}

	w, l, delta := ApplyResult(winner, loser, cfg)

	assert.Equal(t, models.PlayerStats{Points: 3, Wins: 1, EloRating: 1016, Streak: 3, BestStreak: 3}, w)
	assert.Equal(t, models.PlayerStats{Points: 9, Losses: 1, EloRating: 984, Streak: 0, BestStreak: 5}, l)
	assert.Equal(t, models.EloDelta{WinnerGain: 16, LoserLoss: 16}, delta)
}

func TestApplyResultUsesConfiguredPoints(t *testing.T) {
	cfg := models.SelectiveConfig{PointsPerWin: models.IntPtr(2), PointsPerLoss: models.IntPtr(1)}.Normalize()

	w, l, _ := ApplyResult(models.PlayerStats{}, models.PlayerStats{}, cfg)

	assert.Equal(t, 2, w.Points)
	assert.Equal(t, 1, l.Points)
	assert.Equal(t, 1016, w.EloRating, "zero rating is treated as the default")
}

func TestReverseResultRoundTrip(t *testing.T) {
	cfg := models.SelectiveConfig{PointsPerLoss: models.IntPtr(1)}.Normalize()
	winner := models.PlayerStats{Points: 12, Wins: 4, Losses: 1, EloRating: 1130, Streak: 1, BestStreak: 3}
	loser := models.PlayerStats{Points: 5, Wins: 1, Losses: 3, EloRating: 940}

	w, l, delta := ApplyResult(winner, loser, cfg)
	rw, rl := ReverseResult(w, l, cfg, &delta)

	assert.Equal(t, winner.Points, rw.Points)
	assert.Equal(t, winner.Wins, rw.Wins)
	assert.Equal(t, winner.EloRating, rw.EloRating)
	assert.Equal(t, 0, rw.Streak)
	assert.Equal(t, 3, rw.BestStreak)

	assert.Equal(t, loser.Points, rl.Points)
	assert.Equal(t, loser.Losses, rl.Losses)
	assert.Equal(t, loser.EloRating, rl.EloRating)
}

func TestReverseResultFloorsCounters(t *testing.T) {
	cfg := models.SelectiveConfig{}.Normalize()
	w, l := ReverseResult(models.PlayerStats{Points: 1, EloRating: 1016}, models.PlayerStats{EloRating: 984}, cfg, nil)

	assert.Equal(t, 0, w.Points)
	assert.Equal(t, 0, w.Wins)
	assert.Equal(t, 0, l.Losses)
	assert.Equal(t, 1000, w.EloRating)
	assert.Equal(t, 1000, l.EloRating)
}

func TestReverseResultRecomputesFromCurrentRatings(t *testing.T) {
	cfg := models.SelectiveConfig{}.Normalize()
	// A beat B (1000/1000 -> 1016/984), then beat C (1016 -> 1031).
	a := models.PlayerStats{Points: 6, Wins: 2, EloRating: 1031, Streak: 2, BestStreak: 2}
	b := models.PlayerStats{Losses: 1, EloRating: 984}

	w, l := ReverseResult(a, b, cfg, nil)
	assert.Equal(t, 1016, w.EloRating)
	assert.Equal(t, 999, l.EloRating)
	assert.Equal(t, 3, w.Points)
	assert.Equal(t, 1, w.Wins)

	w, l = ReverseResult(a, b, cfg, &models.EloDelta{WinnerGain: 16, LoserLoss: 16})
	assert.Equal(t, 1015, w.EloRating)
	assert.Equal(t, 1000, l.EloRating)
}
