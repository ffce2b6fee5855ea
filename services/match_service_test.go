package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/repositories"
)

func TestSetWinner_AppliesBothRatingModels(t *testing.T) {
	env := newTestEnv(t)
	ids := env.createPlayers(t, 2)
	sel := env.createSelective(t, models.ModeRoundRobin, ids, models.SelectiveConfig{})

	matches := env.matchesOf(t, sel.ID)
	require.Len(t, matches, 1)

	update := env.decide(t, matches[0], ids[0])
	assert.True(t, update.Match.Decided())
	assert.Equal(t, &models.EloDelta{WinnerGain: 16, LoserLoss: 16}, update.Match.EloDelta)

	winner, loser := env.player(t, ids[0]), env.player(t, ids[1])
	assert.Equal(t, 3, winner.Points)
	assert.Equal(t, 1016, winner.EloRating)
	assert.Equal(t, 1, winner.Streak)
	assert.Equal(t, 0, loser.Points)
	assert.Equal(t, 984, loser.EloRating)
	assert.Equal(t, 1, loser.Losses)

	assert.Contains(t, env.notifier.types(), brackets.EventMatchUpdated)
	assert.Contains(t, env.notifier.types(), brackets.EventRankingChanged)
}

func TestSetWinner_Validation(t *testing.T) {
	env := newTestEnv(t)
	ids := env.createPlayers(t, 3)
	sel := env.createSelective(t, models.ModeElimination, ids, models.SelectiveConfig{})
	matches := env.matchesOf(t, sel.ID)

	var real, bye *models.Match
	for _, m := range inRound(matches, 1) {
		if m.IsReal() {
			real = m
		} else {
			bye = m
		}
	}
	require.NotNil(t, real)
	require.NotNil(t, bye)
	final := matchAt(matches, 2, 0)
	require.NotNil(t, final)

	_, err := env.matches.SetWinner(env.ctx, real.ID, "stranger")
	assert.ErrorIs(t, err, ErrInvalidWinner)

	_, err = env.matches.SetWinner(env.ctx, final.ID, bye.WinnerID)
	assert.ErrorIs(t, err, ErrMatchNotPlayable)

	_, err = env.matches.SetWinner(env.ctx, bye.ID, bye.WinnerID)
	assert.ErrorIs(t, err, ErrMatchAlreadyDecided)

	_, err = env.matches.UndoResult(env.ctx, bye.ID)
	assert.ErrorIs(t, err, ErrByeMatchUndo)

	_, err = env.matches.UndoResult(env.ctx, real.ID)
	assert.ErrorIs(t, err, ErrMatchNotDecided)

	_, err = env.matches.SetWinner(env.ctx, "missing", ids[0])
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestElimination_ByeWinnerWaitsInFinal(t *testing.T) {
	env := newTestEnv(t)
	ids := env.createPlayers(t, 3)
	sel := env.createSelective(t, models.ModeElimination, ids, models.SelectiveConfig{})
	assert.Equal(t, 2, sel.TotalRounds)

	matches := env.matchesOf(t, sel.ID)
	real := matchAt(matches, 1, 0)
	bye := matchAt(matches, 1, 1)
	final := matchAt(matches, 2, 0)
	require.True(t, real.IsReal())
	require.True(t, bye.IsBye())
	assert.True(t, final.Player2.IsFilled())
	assert.Equal(t, bye.WinnerID, final.Player2.PlayerID)

	update := env.decide(t, real, real.Player1.PlayerID)
	require.Len(t, update.Changed, 1)
	assert.Equal(t, final.ID, update.Changed[0].ID)

	final, err := env.matches.GetByID(env.ctx, final.ID)
	require.NoError(t, err)
	assert.True(t, final.IsReal())
	assert.Equal(t, real.Player1.PlayerID, final.Player1.PlayerID)
}

func TestElimination_UndoOrdering(t *testing.T) {
	env := newTestEnv(t)
	ids := env.createPlayers(t, 4)
	sel := env.createSelective(t, models.ModeElimination, ids, models.SelectiveConfig{})

	matches := env.matchesOf(t, sel.ID)
	semi1, semi2 := matchAt(matches, 1, 0), matchAt(matches, 1, 1)
	env.decide(t, semi1, semi1.Player1.PlayerID)
	env.decide(t, semi2, semi2.Player2.PlayerID)

	final, err := env.matches.GetByID(env.ctx, matchAt(matches, 2, 0).ID)
	require.NoError(t, err)
	require.True(t, final.IsReal())
	assert.Equal(t, semi1.Player1.PlayerID, final.Player1.PlayerID)
	assert.Equal(t, semi2.Player2.PlayerID, final.Player2.PlayerID)

	env.decide(t, final, final.Player1.PlayerID)

	_, err = env.matches.UndoResult(env.ctx, semi1.ID)
	assert.ErrorIs(t, err, ErrDownstreamDecided)

	_, err = env.matches.UndoResult(env.ctx, final.ID)
	require.NoError(t, err)

	update, err := env.matches.UndoResult(env.ctx, semi1.ID)
	require.NoError(t, err)
	require.Len(t, update.Changed, 1)
	assert.Equal(t, models.SlotPending, update.Changed[0].Player1.State)

	champion := env.player(t, semi1.Player1.PlayerID)
	assert.Equal(t, 0, champion.Points)
	assert.Equal(t, 0, champion.Wins)
	assert.Equal(t, models.DefaultEloRating, champion.EloRating)
}

func TestSwiss_GeneratesNextRoundWithoutRematches(t *testing.T) {
	env := newTestEnv(t)
	ids := env.createPlayers(t, 4)
	sel := env.createSelective(t, models.ModeSwiss, ids, models.SelectiveConfig{Rounds: 2})
	assert.Equal(t, 2, sel.TotalRounds)

	round1 := inRound(env.matchesOf(t, sel.ID), 1)
	require.Len(t, round1, 2)

	first := env.decide(t, round1[0], round1[0].Player1.PlayerID)
	assert.Empty(t, first.NextRound)

	second := env.decide(t, round1[1], round1[1].Player1.PlayerID)
	require.Len(t, second.NextRound, 2)
	assert.Contains(t, env.notifier.types(), brackets.EventRoundGenerated)

	met := map[[2]string]bool{}
	for _, m := range round1 {
		met[[2]string{m.Player1.PlayerID, m.Player2.PlayerID}] = true
		met[[2]string{m.Player2.PlayerID, m.Player1.PlayerID}] = true
	}
	for _, m := range second.NextRound {
		assert.Equal(t, 2, m.Round)
		assert.False(t, met[[2]string{m.Player1.PlayerID, m.Player2.PlayerID}], "rematch in round 2")
	}

	// Победители первого тура играют между собой.
	winners := map[string]bool{first.Match.WinnerID: true, second.Match.WinnerID: true}
	require.Len(t, winners, 2)
	top := second.NextRound[0]
	assert.True(t, winners[top.Player1.PlayerID] && winners[top.Player2.PlayerID])

	round2 := inRound(env.matchesOf(t, sel.ID), 2)
	require.Len(t, round2, 2)
	env.decide(t, round2[0], round2[0].Player1.PlayerID)
	last := env.decide(t, round2[1], round2[1].Player2.PlayerID)
	assert.Empty(t, last.NextRound, "round cap reached")
	assert.Len(t, env.matchesOf(t, sel.ID), 4)
}

func TestSwiss_OddFieldSitsOut(t *testing.T) {
	env := newTestEnv(t)
	ids := env.createPlayers(t, 5)
	sel := env.createSelective(t, models.ModeSwiss, ids, models.SelectiveConfig{Rounds: 3})

	round1 := inRound(env.matchesOf(t, sel.ID), 1)
	require.Len(t, round1, 2)

	env.decide(t, round1[0], round1[0].Player1.PlayerID)
	update := env.decide(t, round1[1], round1[1].Player1.PlayerID)
	require.Len(t, update.NextRound, 2)
	assert.NotEmpty(t, update.SittingOut)
	for _, m := range update.NextRound {
		assert.False(t, m.HasPlayer(update.SittingOut))
	}
}

func TestSetWinner_MissingPlayerIsSkipped(t *testing.T) {
	env := newTestEnv(t)
	ids := env.createPlayers(t, 2)
	sel := env.createSelective(t, models.ModeRoundRobin, ids, models.SelectiveConfig{})
	require.NoError(t, env.store.Players().Delete(env.ctx, ids[1]))

	m := env.matchesOf(t, sel.ID)[0]
	update := env.decide(t, m, ids[0])
	assert.True(t, update.Match.Decided())
	assert.Nil(t, update.Match.EloDelta)

	p := env.player(t, ids[0])
	assert.Equal(t, 0, p.Points)
	assert.Equal(t, models.DefaultEloRating, p.EloRating)

	_, err := env.matches.UndoResult(env.ctx, m.ID)
	require.NoError(t, err)
}

// twoDuels plays a over b, then a over c, in two separate two-player brackets,
// and returns the first match.
func (e *testEnv) twoDuels(t *testing.T) (first *models.Match, a, b, c string) {
	t.Helper()
	ids := e.createPlayers(t, 3)
	a, b, c = ids[0], ids[1], ids[2]

	sel1 := e.createSelective(t, models.ModeElimination, []string{a, b}, models.SelectiveConfig{})
	sel2 := e.createSelective(t, models.ModeElimination, []string{a, c}, models.SelectiveConfig{})
	first = e.decide(t, e.matchesOf(t, sel1.ID)[0], a).Match
	e.decide(t, e.matchesOf(t, sel2.ID)[0], a)

	require.Equal(t, 1031, e.player(t, a).EloRating)
	require.Equal(t, 984, e.player(t, b).EloRating)
	return first, a, b, c
}

func TestUndo_RecomputesEloFromCurrentRatings(t *testing.T) {
	env := newTestEnv(t)
	first, a, b, _ := env.twoDuels(t)

	_, err := env.matches.UndoResult(env.ctx, first.ID)
	require.NoError(t, err)

	// 1031/984 is itself an ApplyElo output of 1016/999, not of 1015/1000.
	assert.Equal(t, 1016, env.player(t, a).EloRating)
	assert.Equal(t, 999, env.player(t, b).EloRating)
	assert.Equal(t, 1, env.player(t, a).Wins)
	assert.Equal(t, 0, env.player(t, b).Losses)
}

func TestUndo_RecordedEloUndoOption(t *testing.T) {
	env := newTestEnvWith(t, WithRecordedEloUndo(true))
	first, a, b, _ := env.twoDuels(t)

	_, err := env.matches.UndoResult(env.ctx, first.ID)
	require.NoError(t, err)

	assert.Equal(t, 1015, env.player(t, a).EloRating)
	assert.Equal(t, models.DefaultEloRating, env.player(t, b).EloRating)
}

type flakyMatchRepo struct {
	repositories.MatchRepository
	failUpdates bool
}

func (r *flakyMatchRepo) UpdateBatch(ctx context.Context, matches []*models.Match) error {
	if r.failUpdates {
		return errors.New("connection reset by peer")
	}
	return r.MatchRepository.UpdateBatch(ctx, matches)
}

func TestRatingsFollowStoredMatchWhenSaveFails(t *testing.T) {
	env := newTestEnv(t)
	ids := env.createPlayers(t, 2)
	sel := env.createSelective(t, models.ModeRoundRobin, ids, models.SelectiveConfig{})
	m := env.matchesOf(t, sel.ID)[0]

	repo := &flakyMatchRepo{MatchRepository: env.store.Matches()}
	ratings := NewRatingService(env.store.Players(), nil, nil)
	svc := NewMatchService(repo, env.store.Selectives(), ratings, nil, nil, nil)

	repo.failUpdates = true
	_, err := svc.SetWinner(env.ctx, m.ID, ids[0])
	require.Error(t, err)
	assert.Equal(t, 0, env.player(t, ids[0]).Wins)
	assert.Equal(t, models.DefaultEloRating, env.player(t, ids[0]).EloRating)

	repo.failUpdates = false
	_, err = svc.SetWinner(env.ctx, m.ID, ids[0])
	require.NoError(t, err)

	repo.failUpdates = true
	_, err = svc.UndoResult(env.ctx, m.ID)
	require.Error(t, err)

	stored, err := env.matches.GetByID(env.ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, stored.Decided())

	winner, loser := env.player(t, ids[0]), env.player(t, ids[1])
	assert.Equal(t, 1, winner.Wins)
	assert.Equal(t, 3, winner.Points)
	assert.Equal(t, 1016, winner.EloRating)
	assert.Equal(t, 1, loser.Losses)
	assert.Equal(t, 984, loser.EloRating)
}
