package ranking

import (
	"sort"

	"github.com/Dosada05/selective-league/models"
)

// HeadToHead compares a and b over their completed direct meetings:
// 1 if a won more, -1 if b won more, 0 otherwise.
func HeadToHead(a, b string, matches []*models.Match) int {
	aWins, bWins := 0, 0
	for _, m := range matches {
		if !m.Decided() || !m.IsReal() {
			continue
		}
		p1, p2 := m.Player1.PlayerID, m.Player2.PlayerID
		if !(p1 == a && p2 == b) && !(p1 == b && p2 == a) {
			continue
		}
		switch m.WinnerID {
		case a:
			aWins++
		case b:
			bWins++
		}
	}
	switch {
	case aWins > bWins:
		return 1
	case bWins > aWins:
		return -1
	}
	return 0
}

// SBScores computes, for every player, the sum of the current points of each opponent
// they defeated in any completed match.
func SBScores(players []*models.Player, matches []*models.Match) map[string]int {
	points := make(map[string]int, len(players))
	for _, p := range players {
		points[p.ID] = p.Points
	}
	scores := make(map[string]int, len(players))
	for _, m := range matches {
		if !m.Decided() {
			continue
		}
		loser := m.LoserID()
		if loser == "" {
			continue
		}
		if _, ok := points[m.WinnerID]; !ok {
			continue
		}
		scores[m.WinnerID] += points[loser]
	}
	return scores
}

func winRatio(p *models.Player) float64 {
	return float64(p.Wins) / float64(max(1, p.Wins+p.Losses))
}

// WinRate is the rounded win percentage, 0 for a player without games.
func WinRate(p *models.Player) int {
	total := p.Wins + p.Losses
	if total == 0 {
		return 0
	}
	return int(float64(p.Wins)/float64(total)*100 + 0.5)
}

// Score is the value a player is ranked by under mode.
func Score(p *models.Player, mode models.RankingMode) int {
	if mode == models.RankingElo {
		if p.EloRating == 0 {
			return DefaultRating
		}
		return p.EloRating
	}
	return p.Points
}

// Compose orders all players for display.
//
// Elo mode sorts by rating only, keeping input order between equal ratings. Points mode
// applies points, head-to-head, SB score, win rate and wins, in that order.
func Compose(players []*models.Player, matches []*models.Match, mode models.RankingMode) []models.RankedPlayer {
	sb := SBScores(players, matches)

	ordered := make([]*models.Player, len(players))
	copy(ordered, players)

	if mode == models.RankingElo {
		sort.SliceStable(ordered, func(i, j int) bool {
			return Score(ordered[i], mode) > Score(ordered[j], mode)
		})
	} else {
		sort.SliceStable(ordered, func(i, j int) bool {
			return comparePoints(ordered[i], ordered[j], sb, matches) < 0
		})
	}

	out := make([]models.RankedPlayer, len(ordered))
	for i, p := range ordered {
		out[i] = models.RankedPlayer{
			Player:   *p,
			Position: i + 1,
			SBScore:  sb[p.ID],
			WinRate:  WinRate(p),
		}
	}
	return out
}

// comparePoints returns a negative value when a ranks above b.
func comparePoints(a, b *models.Player, sb map[string]int, matches []*models.Match) int {
	if a.Points != b.Points {
		return b.Points - a.Points
	}
	if h2h := HeadToHead(a.ID, b.ID, matches); h2h != 0 {
		return -h2h
	}
	if sb[a.ID] != sb[b.ID] {
		return sb[b.ID] - sb[a.ID]
	}
	if ra, rb := winRatio(a), winRatio(b); ra != rb {
		if rb > ra {
			return 1
		}
		return -1
	}
	return b.Wins - a.Wins
}
