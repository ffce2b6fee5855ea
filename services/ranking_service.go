package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/metrics"
	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/ranking"
	"github.com/Dosada05/selective-league/repositories"
)

// RankingView is the ordered league table together with the mode it was built for.
type RankingView struct {
	Mode    models.RankingMode    `json:"mode"`
	Players []models.RankedPlayer `json:"players"`
}

type HeadToHeadSummary struct {
	PlayerA string `json:"player_a"`
	PlayerB string `json:"player_b"`
	WinsA   int    `json:"wins_a"`
	WinsB   int    `json:"wins_b"`
	// Result is 1 when A leads, -1 when B leads, 0 when level.
	Result int `json:"result"`
}

type RankingService interface {
	// GetRankings orders all players. A nil mode uses the stored ranking mode.
	GetRankings(ctx context.Context, mode *models.RankingMode) (*RankingView, error)
	GetHeadToHead(ctx context.Context, playerA, playerB string) (*HeadToHeadSummary, error)
	GlobalStats(ctx context.Context) (*models.GlobalStats, error)
	// ResetCurrentRanking starts a new season: points, rating and counters go back to defaults.
	ResetCurrentRanking(ctx context.Context) error
}

type rankingService struct {
	playerRepo   repositories.PlayerRepository
	matchRepo    repositories.MatchRepository
	settingsRepo repositories.SettingsRepository
	notifier     Notifier
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewRankingService(
	playerRepo repositories.PlayerRepository,
	matchRepo repositories.MatchRepository,
	settingsRepo repositories.SettingsRepository,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) RankingService {
	return &rankingService{
		playerRepo:   playerRepo,
		matchRepo:    matchRepo,
		settingsRepo: settingsRepo,
		notifier:     notifierOrNoop(notifier),
		metrics:      m,
		logger:       loggerOrDefault(logger),
	}
}

func (s *rankingService) GetRankings(ctx context.Context, mode *models.RankingMode) (*RankingView, error) {
	started := time.Now()
	if mode != nil && !mode.Valid() {
		return nil, ErrInvalidMode
	}

	var (
		players  []*models.Player
		matches  []*models.Match
		settings *models.Settings
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		players, err = s.playerRepo.List(gctx)
		return handleRepositoryError(err, "list players")
	})
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.List(gctx)
		return handleRepositoryError(err, "list matches")
	})
	if mode == nil {
		g.Go(func() error {
			var err error
			settings, err = s.settingsRepo.Get(gctx)
			return handleRepositoryError(err, "get settings")
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	effective := models.RankingPoints
	switch {
	case mode != nil:
		effective = *mode
	case settings != nil && settings.RankingMode.Valid():
		effective = settings.RankingMode
	}

	view := &RankingView{
		Mode:    effective,
		Players: ranking.Compose(players, matches, effective),
	}
	s.metrics.ObserveRanking(string(effective), started)
	return view, nil
}

func (s *rankingService) GetHeadToHead(ctx context.Context, playerA, playerB string) (*HeadToHeadSummary, error) {
	for _, id := range []string{playerA, playerB} {
		if _, err := s.playerRepo.GetByID(ctx, id); err != nil {
			return nil, handleRepositoryError(err, "get player")
		}
	}
	matches, err := s.matchRepo.List(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list matches")
	}

	summary := &HeadToHeadSummary{
		PlayerA: playerA,
		PlayerB: playerB,
		Result:  ranking.HeadToHead(playerA, playerB, matches),
	}
	for _, m := range matches {
		if !m.Decided() || !m.HasPlayer(playerA) || !m.HasPlayer(playerB) {
			continue
		}
		switch m.WinnerID {
		case playerA:
			summary.WinsA++
		case playerB:
			summary.WinsB++
		}
	}
	return summary, nil
}

func (s *rankingService) GlobalStats(ctx context.Context) (*models.GlobalStats, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	stats := ranking.GlobalStats(players)
	return &stats, nil
}

func (s *rankingService) ResetCurrentRanking(ctx context.Context) error {
	if err := s.playerRepo.ResetStats(ctx); err != nil {
		return handleRepositoryError(err, "reset ranking")
	}
	s.logger.InfoContext(ctx, "current ranking reset")
	broadcast(s.notifier, brackets.RankingRoom, brackets.EventRankingChanged, map[string]bool{"reset": true})
	return nil
}
