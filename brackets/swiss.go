package brackets

import (
	"sort"

	"github.com/Dosada05/selective-league/models"
)

type SwissResult struct {
	Matches []*models.Match
	// SittingOut is the participant left without an opponent in an odd field.
	SittingOut string
}

// GenerateSwissRound pairs one swiss round.
//
// Participants are seeded by their index in ranking (unranked last, original order kept).
// Each unpaired participant takes the first later unpaired participant it has not met in
// previous. Whoever is left is paired in seed order, rematches allowed.
func GenerateSwissRound(playerIDs []string, ranking []string, round int, previous []*models.Match) SwissResult {
	if len(playerIDs) < 2 {
		res := SwissResult{}
		if len(playerIDs) == 1 {
			res.SittingOut = playerIDs[0]
		}
		return res
	}

	seed := make(map[string]int, len(ranking))
	for i, id := range ranking {
		if _, ok := seed[id]; !ok {
			seed[id] = i
		}
	}
	unranked := len(ranking)
	seedOf := func(id string) int {
		if s, ok := seed[id]; ok {
			return s
		}
		return unranked
	}

	sorted := make([]string, len(playerIDs))
	copy(sorted, playerIDs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return seedOf(sorted[i]) < seedOf(sorted[j])
	})

	played := playedAgainst(previous)
	paired := make(map[string]bool, len(sorted))
	matches := make([]*models.Match, 0, len(sorted)/2)

	for i, a := range sorted {
		if paired[a] {
			continue
		}
		for _, b := range sorted[i+1:] {
			if paired[b] || played[a][b] {
				continue
			}
			matches = append(matches, swissMatch(round, a, b))
			paired[a] = true
			paired[b] = true
			break
		}
	}

	var leftover []string
	for _, id := range sorted {
		if !paired[id] {
			leftover = append(leftover, id)
		}
	}

	res := SwissResult{}
	for i := 0; i+1 < len(leftover); i += 2 {
		matches = append(matches, swissMatch(round, leftover[i], leftover[i+1]))
	}
	if len(leftover)%2 == 1 {
		res.SittingOut = leftover[len(leftover)-1]
	}
	res.Matches = matches
	return res
}

func swissMatch(round int, p1, p2 string) *models.Match {
	return &models.Match{
		Round:   round,
		Player1: models.Filled(p1),
		Player2: models.Filled(p2),
		Status:  models.MatchPending,
	}
}

func playedAgainst(matches []*models.Match) map[string]map[string]bool {
	played := make(map[string]map[string]bool)
	mark := func(a, b string) {
		if played[a] == nil {
			played[a] = make(map[string]bool)
		}
		played[a][b] = true
	}
	for _, m := range matches {
		if m == nil || !m.IsReal() {
			continue
		}
		mark(m.Player1.PlayerID, m.Player2.PlayerID)
		mark(m.Player2.PlayerID, m.Player1.PlayerID)
	}
	return played
}

// SwissRoundComplete reports whether round is fully decided, the round cap is not
// reached yet, and round+1 has not been generated.
func SwissRoundComplete(matches []*models.Match, round, maxRounds int) bool {
	if round >= maxRounds {
		return false
	}
	found := false
	for _, m := range matches {
		switch m.Round {
		case round:
			found = true
			if !m.IsCompleted() {
				return false
			}
		case round + 1:
			return false
		}
	}
	return found
}

// ProvisionalSwissRanking orders playerIDs by provisional points earned in completed
// matches, keeping the given order between equal totals. No tiebreakers are applied.
func ProvisionalSwissRanking(playerIDs []string, matches []*models.Match, cfg models.SelectiveConfig) []string {
	points := make(map[string]int, len(playerIDs))
	for _, m := range matches {
		if !m.Decided() {
			continue
		}
		points[m.WinnerID] += cfg.WinPoints()
		if loser := m.LoserID(); loser != "" {
			points[loser] += cfg.LossPoints()
		}
	}

	ranking := make([]string, len(playerIDs))
	copy(ranking, playerIDs)
	sort.SliceStable(ranking, func(i, j int) bool {
		return points[ranking[i]] > points[ranking[j]]
	})
	return ranking
}
