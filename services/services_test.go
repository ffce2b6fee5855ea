package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/repositories"
	"github.com/Dosada05/selective-league/storage"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (n *recordingNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		n.messages = append(n.messages, msg)
	}
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.messages))
	for i, m := range n.messages {
		out[i] = m.Type
	}
	return out
}

type testEnv struct {
	ctx        context.Context
	store      *repositories.MemoryStore
	notifier   *recordingNotifier
	uploader   *storage.MemoryUploader
	players    PlayerService
	selectives SelectiveService
	matches    MatchService
	rankings   RankingService
	settings   SettingsService
}

var fixedNow = time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWith(t)
}

func newTestEnvWith(t *testing.T, ratingOpts ...RatingServiceOption) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore(models.RankingPoints)
	notifier := &recordingNotifier{}
	uploader := storage.NewMemoryUploader("https://cdn.example.com")

	ratings := NewRatingService(store.Players(), nil, logger, ratingOpts...)
	return &testEnv{
		ctx:      context.Background(),
		store:    store,
		notifier: notifier,
		uploader: uploader,
		players:  NewPlayerService(store.Players(), logger),
		selectives: NewSelectiveService(store.Selectives(), store.Matches(), store.Players(), ratings, notifier, nil, logger,
			WithBracketOptions(brackets.WithRand(rand.New(rand.NewSource(7)))),
			WithStandingsExport(uploader),
			WithClock(func() time.Time { return fixedNow }),
		),
		matches:  NewMatchService(store.Matches(), store.Selectives(), ratings, notifier, nil, logger),
		rankings: NewRankingService(store.Players(), store.Matches(), store.Settings(), notifier, nil, logger),
		settings: NewSettingsService(store.Settings(), notifier),
	}
}

func (e *testEnv) createPlayers(t *testing.T, n int) []string {
	t.Helper()
	ids := make([]string, n)
	for i := range ids {
		p, err := e.players.Create(e.ctx, CreatePlayerInput{Name: fmt.Sprintf("Player %d", i+1)})
		require.NoError(t, err)
		ids[i] = p.ID
	}
	return ids
}

func (e *testEnv) createSelective(t *testing.T, mode models.SelectiveMode, ids []string, cfg models.SelectiveConfig) *models.Selective {
	t.Helper()
	sel, err := e.selectives.Create(e.ctx, CreateSelectiveInput{Name: "Cup " + string(mode), Mode: mode, PlayerIDs: ids, Config: cfg})
	require.NoError(t, err)
	return sel
}

func (e *testEnv) matchesOf(t *testing.T, selectiveID string) []*models.Match {
	t.Helper()
	matches, err := e.matches.ListBySelective(e.ctx, selectiveID)
	require.NoError(t, err)
	return matches
}

func (e *testEnv) player(t *testing.T, id string) *models.Player {
	t.Helper()
	p, err := e.players.GetByID(e.ctx, id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) decide(t *testing.T, m *models.Match, winner string) *MatchUpdate {
	t.Helper()
	update, err := e.matches.SetWinner(e.ctx, m.ID, winner)
	require.NoError(t, err)
	return update
}

func matchAt(matches []*models.Match, round, pos int) *models.Match {
	for _, m := range matches {
		if m.Round == round && m.BracketPosition != nil && *m.BracketPosition == pos {
			return m
		}
	}
	return nil
}

func inRound(matches []*models.Match, round int) []*models.Match {
	var out []*models.Match
	for _, m := range matches {
		if m.Round == round {
			out = append(out, m)
		}
	}
	return out
}
