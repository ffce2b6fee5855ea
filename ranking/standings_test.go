package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/selective-league/models"
)

func standingIDs(rows []models.Standing) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.PlayerID
	}
	return out
}

func TestSelectiveStandings(t *testing.T) {
	sel := &models.Selective{
		Mode:      models.ModeRoundRobin,
		PlayerIDs: []string{"a", "b", "c"},
		Config:    models.SelectiveConfig{PointsPerLoss: models.IntPtr(1)},
	}
	players := map[string]*models.Player{
		"a": {ID: "a", Name: "Anna"},
		"b": {ID: "b", Name: "Boris", Nickname: "bb"},
	}
	matches := []*models.Match{
		decided("a", "b", "b"),
		decided("b", "c", "c"),
		decided("a", "c", "a"),
		{Player1: models.Filled("a"), Player2: models.Filled("b")},
	}

	rows := SelectiveStandings(sel, players, matches)
	require.Len(t, rows, 3)

	for i, row := range rows {
		assert.Equal(t, i+1, row.Position)
		assert.Equal(t, 4, row.Points)
		assert.Equal(t, 1, row.Wins)
		assert.Equal(t, 1, row.Losses)
	}
	assert.Equal(t, "bb", rows[standingIndex(rows, "b")].Nickname)
	assert.Equal(t, "?", rows[standingIndex(rows, "c")].Name)
}

func TestSelectiveStandingsTiebreakers(t *testing.T) {
	matches := []*models.Match{
		decided("a", "b", "b"),
		decided("a", "c", "a"),
		decided("a", "d", "a"),
		decided("b", "c", "c"),
	}

	t.Run("head to head", func(t *testing.T) {
		sel := &models.Selective{PlayerIDs: []string{"b", "a"}}
		rows := SelectiveStandings(sel, nil, []*models.Match{decided("a", "b", "a"), decided("a", "x", "x"), decided("b", "y", "b")})
		assert.Equal(t, []string{"a", "b"}, standingIDs(rows))
	})

	t.Run("wins", func(t *testing.T) {
		sel := &models.Selective{
			PlayerIDs: []string{"c", "a"},
			Config:    models.SelectiveConfig{PointsPerWin: models.IntPtr(0), Tiebreaker: models.TiebreakerWins},
		}
		rows := SelectiveStandings(sel, nil, matches)
		assert.Equal(t, []string{"a", "c"}, standingIDs(rows))
	})

	t.Run("win rate", func(t *testing.T) {
		sel := &models.Selective{
			PlayerIDs: []string{"a", "c"},
			Config:    models.SelectiveConfig{PointsPerWin: models.IntPtr(0), Tiebreaker: models.TiebreakerWinRate},
		}
		rows := SelectiveStandings(sel, nil, matches)
		assert.Equal(t, []string{"a", "c"}, standingIDs(rows))
	})

	t.Run("fewest losses", func(t *testing.T) {
		sel := &models.Selective{PlayerIDs: []string{"c", "d"}, Config: models.SelectiveConfig{PointsPerWin: models.IntPtr(0)}}
		rows := SelectiveStandings(sel, nil, []*models.Match{decided("c", "x", "c"), decided("d", "x", "d"), decided("c", "y", "y")})
		assert.Equal(t, []string{"d", "c"}, standingIDs(rows))
	})
}

func standingIndex(rows []models.Standing, id string) int {
	for i, r := range rows {
		if r.PlayerID == id {
			return i
		}
	}
	return -1
}
