package brackets

import (
	"testing"

	"github.com/Dosada05/selective-league/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func played(round int, p1, p2, winner string) *models.Match {
	m := &models.Match{Round: round, Player1: models.Filled(p1), Player2: models.Filled(p2), Status: models.MatchPending}
	if winner != "" {
		m.Complete(winner)
	}
	return m
}

func pairs(ms []*models.Match) [][2]string {
	out := make([][2]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, [2]string{m.Player1.PlayerID, m.Player2.PlayerID})
	}
	return out
}

func TestGenerateSwissRound_SeedsByRanking(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	res := GenerateSwissRound(ids, []string{"d", "c", "b", "a"}, 2, nil)

	assert.Equal(t, [][2]string{{"d", "c"}, {"b", "a"}}, pairs(res.Matches))
	for _, m := range res.Matches {
		assert.Equal(t, 2, m.Round)
		assert.Equal(t, models.MatchPending, m.Status)
	}
	assert.Empty(t, res.SittingOut)
}

func TestGenerateSwissRound_UnrankedSortLastStably(t *testing.T) {
	ids := []string{"a", "b", "c", "d", "e", "f"}
	res := GenerateSwissRound(ids, []string{"e", "b"}, 1, nil)

	assert.Equal(t, [][2]string{{"e", "b"}, {"a", "c"}, {"d", "f"}}, pairs(res.Matches))
}

func TestGenerateSwissRound_AvoidsRematch(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	prev := []*models.Match{played(1, "a", "b", "a"), played(1, "c", "d", "c")}

	res := GenerateSwissRound(ids, []string{"a", "c", "b", "d"}, 2, prev)

	assert.Equal(t, [][2]string{{"a", "c"}, {"b", "d"}}, pairs(res.Matches))
}

func TestGenerateSwissRound_RematchAsLastResort(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	prev := []*models.Match{
		played(1, "a", "b", "a"), played(1, "c", "d", "c"),
		played(2, "a", "c", "a"), played(2, "b", "d", "b"),
		played(3, "a", "d", "a"),
	}

	res := GenerateSwissRound(ids, []string{"a", "b", "c", "d"}, 4, prev)

	// b-c is the only fresh pairing left; a and d already met and must rematch.
	require.Len(t, res.Matches, 2)
	assert.Equal(t, [][2]string{{"b", "c"}, {"a", "d"}}, pairs(res.Matches))
}

func TestGenerateSwissRound_OddFieldSitsOut(t *testing.T) {
	res := GenerateSwissRound([]string{"a", "b", "c"}, nil, 1, nil)

	assert.Equal(t, [][2]string{{"a", "b"}}, pairs(res.Matches))
	assert.Equal(t, "c", res.SittingOut)

	res = GenerateSwissRound([]string{"a"}, nil, 1, nil)
	assert.Empty(t, res.Matches)
	assert.Equal(t, "a", res.SittingOut)

	assert.Empty(t, GenerateSwissRound(nil, nil, 1, nil).Matches)
}

func TestSwissRoundComplete(t *testing.T) {
	round1 := []*models.Match{played(1, "a", "b", "a"), played(1, "c", "d", "")}
	assert.False(t, SwissRoundComplete(round1, 1, 3), "pending match in round")

	round1[1].Complete("d")
	assert.True(t, SwissRoundComplete(round1, 1, 3))
	assert.False(t, SwissRoundComplete(round1, 1, 1), "round cap reached")

	withNext := append(round1, played(2, "a", "d", ""))
	assert.False(t, SwissRoundComplete(withNext, 1, 3), "next round already exists")

	assert.False(t, SwissRoundComplete(nil, 1, 3))
}

func TestProvisionalSwissRanking(t *testing.T) {
	cfg := models.SelectiveConfig{PointsPerWin: models.IntPtr(3), PointsPerLoss: models.IntPtr(1)}
	matches := []*models.Match{played(1, "a", "b", "b"), played(1, "c", "d", "d"), played(1, "e", "f", "")}

	ranking := ProvisionalSwissRanking([]string{"a", "b", "c", "d", "e", "f"}, matches, cfg)

	assert.Equal(t, []string{"b", "d", "a", "c", "e", "f"}, ranking)
}
