package brackets

import "github.com/Dosada05/selective-league/models"

type EliminationResult struct {
	Matches     []*models.Match
	TotalRounds int
	BracketSize int
}

// GenerateEliminationBracket builds every round of a single-elimination bracket.
//
// Participants are shuffled, then paired consecutively. An odd participant out gets a
// structural bye which is completed immediately. Each later round is derived from the
// previous round's positions {2k, 2k+1}; a position without a sibling becomes a bye
// slot, auto-completed when its feeder winner is already known.
func GenerateEliminationBracket(playerIDs []string, opts ...Option) EliminationResult {
	n := len(playerIDs)
	result := EliminationResult{BracketSize: n}
	if n < 2 {
		return result
	}

	o := buildOptions(opts)
	shuffled := shuffle(playerIDs, o.rng)

	prev := make([]*models.Match, 0, (n+1)/2)
	for i := 0; i < n; i += 2 {
		m := &models.Match{
			Round:           1,
			BracketPosition: models.IntPtr(i / 2),
			Player1:         models.Filled(shuffled[i]),
			Status:          models.MatchPending,
		}
		if i+1 < n {
			m.Player2 = models.Filled(shuffled[i+1])
		} else {
			m.Player2 = models.Bye()
			m.Complete(shuffled[i])
		}
		prev = append(prev, m)
	}

	all := make([]*models.Match, 0, n)
	all = append(all, prev...)
	round := 1

	for len(prev) > 1 {
		round++
		count := (len(prev) + 1) / 2
		next := make([]*models.Match, 0, count)
		for k := 0; k < count; k++ {
			left, right := FeederPositions(k)
			m := &models.Match{
				Round:           round,
				BracketPosition: models.IntPtr(k),
				Player1:         models.SlotOf(prev[left].WinnerID),
				Status:          models.MatchPending,
			}
			if right < len(prev) {
				m.Player2 = models.SlotOf(prev[right].WinnerID)
			} else {
				m.Player2 = models.Bye()
				if m.Player1.IsFilled() {
					m.Complete(m.Player1.PlayerID)
				}
			}
			next = append(next, m)
		}
		all = append(all, next...)
		prev = next
	}

	result.Matches = all
	result.TotalRounds = round
	return result
}
