package brackets

import "github.com/Dosada05/selective-league/models"

type RoundRobinResult struct {
	Matches     []*models.Match
	TotalRounds int
}

// GenerateRoundRobin creates every round of a round-robin using the circle method.
// numRounds is the number of full cycles; each cycle repeats the same pairings.
// For an odd field a bye is added and pairings against it produce no match.
func GenerateRoundRobin(playerIDs []string, numRounds int) RoundRobinResult {
	if numRounds < 1 {
		numRounds = 1
	}
	if len(playerIDs) < 2 {
		return RoundRobinResult{}
	}

	players := make([]string, len(playerIDs), len(playerIDs)+1)
	copy(players, playerIDs)
	if len(players)%2 != 0 {
		players = append(players, "") // bye
	}

	n := len(players)
	roundsPerCycle := n - 1
	matches := make([]*models.Match, 0, numRounds*len(playerIDs)*(len(playerIDs)-1)/2)

	for cycle := 0; cycle < numRounds; cycle++ {
		rotating := make([]string, n)
		copy(rotating, players)

		for r := 0; r < roundsPerCycle; r++ {
			roundNumber := cycle*roundsPerCycle + r + 1

			for i := 0; i < n/2; i++ {
				p1, p2 := rotating[i], rotating[n-1-i]
				if p1 == "" || p2 == "" {
					continue
				}
				matches = append(matches, &models.Match{
					Round:   roundNumber,
					Player1: models.Filled(p1),
					Player2: models.Filled(p2),
					Status:  models.MatchPending,
				})
			}

			rotate(rotating)
		}
	}

	return RoundRobinResult{Matches: matches, TotalRounds: roundsPerCycle * numRounds}
}

// rotate keeps position 0 fixed and moves the rest one step clockwise.
func rotate(players []string) {
	n := len(players)
	if n < 3 {
		return
	}
	last := players[n-1]
	copy(players[2:], players[1:n-1])
	players[1] = last
}
