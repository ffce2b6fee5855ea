package ranking

import (
	"sort"

	"github.com/Dosada05/selective-league/models"
)

// SelectiveStandings builds the table of a single selective from its own matches.
// Rows are ordered by points, the selective's configured tiebreaker, then head-to-head,
// wins and fewest losses.
func SelectiveStandings(sel *models.Selective, players map[string]*models.Player, matches []*models.Match) []models.Standing {
	cfg := sel.Config.Normalize()

	rows := make([]*models.Standing, 0, len(sel.PlayerIDs))
	byID := make(map[string]*models.Standing, len(sel.PlayerIDs))
	for _, id := range sel.PlayerIDs {
		row := &models.Standing{PlayerID: id, Name: "?"}
		if p, ok := players[id]; ok {
			row.Name = p.Name
			row.Nickname = p.Nickname
		}
		rows = append(rows, row)
		byID[id] = row
	}

	decided := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		if !m.Decided() || !m.IsReal() {
			continue
		}
		decided = append(decided, m)
		if row, ok := byID[m.WinnerID]; ok {
			row.Wins++
			row.Points += cfg.WinPoints()
		}
		if row, ok := byID[m.LoserID()]; ok {
			row.Losses++
			row.Points += cfg.LossPoints()
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return compareStanding(rows[i], rows[j], cfg.Tiebreaker, decided) < 0
	})

	out := make([]models.Standing, len(rows))
	for i, row := range rows {
		row.Position = i + 1
		out[i] = *row
	}
	return out
}

func compareStanding(a, b *models.Standing, tiebreaker models.Tiebreaker, matches []*models.Match) int {
	if a.Points != b.Points {
		return b.Points - a.Points
	}
	switch tiebreaker {
	case models.TiebreakerWinRate:
		ra := float64(a.Wins) / float64(max(1, a.Wins+a.Losses))
		rb := float64(b.Wins) / float64(max(1, b.Wins+b.Losses))
		if ra != rb {
			if rb > ra {
				return 1
			}
			return -1
		}
	case models.TiebreakerWins:
		if a.Wins != b.Wins {
			return b.Wins - a.Wins
		}
	}
	if h2h := HeadToHead(a.PlayerID, b.PlayerID, matches); h2h != 0 {
		return -h2h
	}
	if a.Wins != b.Wins {
		return b.Wins - a.Wins
	}
	return a.Losses - b.Losses
}
