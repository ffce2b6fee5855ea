// Package ranking holds the rating models and the ranking composer.
// Everything here is pure: callers load and persist players themselves.
package ranking

import "math"

const (
	KFactor       = 32
	DefaultRating = 1000
	RatingFloor   = 100
)

// Expected is the probability of a beating b under the Elo model.
func Expected(a, b int) float64 {
	return 1 / (1 + math.Pow(10, float64(b-a)/400))
}

// ApplyElo returns the post-match ratings of winner and loser. The loser never drops below RatingFloor.
func ApplyElo(winner, loser int) (int, int) {
	newWinner := int(math.Round(float64(winner) + KFactor*(1-Expected(winner, loser))))
	newLoser := int(math.Round(float64(loser) + KFactor*(0-Expected(loser, winner))))
	return newWinner, max(RatingFloor, newLoser)
}

// ReverseElo recomputes pre-match ratings from the current ones. When the pair is a
// direct ApplyElo output it returns a pre-image, preferring the one nearest to the
// approximate inverse. Other pairs fall back to the approximation. Neither side is
// returned below RatingFloor.
func ReverseElo(winner, loser int) (int, int) {
	estWinner, estLoser := approximateReverse(winner, loser)

	found := false
	var bestWinner, bestLoser, bestDist int
	for w := winner - KFactor; w <= winner; w++ {
		for l := loser; l <= loser+KFactor; l++ {
			nw, nl := ApplyElo(w, l)
			if nw != winner || nl != loser {
				continue
			}
			dist := abs(w-estWinner) + abs(l-estLoser)
			if !found || dist < bestDist {
				found = true
				bestWinner, bestLoser, bestDist = w, l, dist
			}
		}
	}
	if found {
		return max(RatingFloor, bestWinner), max(RatingFloor, bestLoser)
	}
	return estWinner, estLoser
}

// UndoElo reverts a recorded rating change. Neither side is restored below RatingFloor.
func UndoElo(winner, loser, winnerGain, loserLoss int) (int, int) {
	return max(RatingFloor, winner-winnerGain), max(RatingFloor, loser+loserLoss)
}

func approximateReverse(winner, loser int) (int, int) {
	expected := Expected(winner, loser)
	winnerDelta := int(math.Round(KFactor * (1 - expected)))
	loserDelta := int(math.Round(KFactor * expected))
	return max(RatingFloor, winner-winnerDelta), loser + loserDelta
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
