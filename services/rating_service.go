package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/selective-league/metrics"
	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/ranking"
	"github.com/Dosada05/selective-league/repositories"
)

// RatingService applies and reverses match results on the stored player stats.
// Both rating models are updated on every call, whichever one is displayed.
type RatingService interface {
	// ApplyMatchResult returns the Elo change it applied, or nil when a player is missing.
	ApplyMatchResult(ctx context.Context, winnerID, loserID string, cfg models.SelectiveConfig) (*models.EloDelta, error)
	// ReverseMatchResult recomputes ratings from the current ones; recorded is used only
	// when the service was built WithRecordedEloUndo.
	ReverseMatchResult(ctx context.Context, winnerID, loserID string, cfg models.SelectiveConfig, recorded *models.EloDelta) error
}

type ratingService struct {
	playerRepo repositories.PlayerRepository
	metrics    *metrics.Metrics
	logger     *slog.Logger
	exactUndo  bool
}

type RatingServiceOption func(*ratingService)

// WithRecordedEloUndo makes reverse restore the Elo change stored on the match instead
// of recomputing it from the current ratings. Off by default.
func WithRecordedEloUndo(enabled bool) RatingServiceOption {
	return func(s *ratingService) { s.exactUndo = enabled }
}

func NewRatingService(playerRepo repositories.PlayerRepository, m *metrics.Metrics, logger *slog.Logger, opts ...RatingServiceOption) RatingService {
	s := &ratingService{
		playerRepo: playerRepo,
		metrics:    m,
		logger:     loggerOrDefault(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ratingService) loadPair(ctx context.Context, op, winnerID, loserID string) (*models.Player, *models.Player, error) {
	winner, err := s.playerRepo.GetByID(ctx, winnerID)
	if err == nil {
		var loser *models.Player
		loser, err = s.playerRepo.GetByID(ctx, loserID)
		if err == nil {
			return winner, loser, nil
		}
	}
	if errors.Is(err, repositories.ErrPlayerNotFound) {
		s.metrics.PlayerMissing()
		s.logger.WarnContext(ctx, "rating update skipped: player not found",
			slog.String("operation", op),
			slog.String("winner_id", winnerID),
			slog.String("loser_id", loserID),
		)
		return nil, nil, nil
	}
	return nil, nil, handleRepositoryError(err, op)
}

func (s *ratingService) ApplyMatchResult(ctx context.Context, winnerID, loserID string, cfg models.SelectiveConfig) (*models.EloDelta, error) {
	winner, loser, err := s.loadPair(ctx, "apply match result", winnerID, loserID)
	if err != nil || winner == nil {
		return nil, err
	}

	w, l, delta := ranking.ApplyResult(winner.Stats(), loser.Stats(), cfg.Normalize())
	err = s.playerRepo.UpdateStatsPair(ctx,
		models.PlayerStatsUpdate{PlayerID: winner.ID, Stats: w},
		models.PlayerStatsUpdate{PlayerID: loser.ID, Stats: l},
	)
	if err != nil {
		return nil, handleRepositoryError(err, "apply match result")
	}

	s.logger.DebugContext(ctx, "match result applied",
		slog.String("winner_id", winnerID),
		slog.String("loser_id", loserID),
		slog.Int("winner_elo", w.EloRating),
		slog.Int("loser_elo", l.EloRating),
	)
	return &delta, nil
}

func (s *ratingService) ReverseMatchResult(ctx context.Context, winnerID, loserID string, cfg models.SelectiveConfig, recorded *models.EloDelta) error {
	winner, loser, err := s.loadPair(ctx, "reverse match result", winnerID, loserID)
	if err != nil || winner == nil {
		return err
	}

	if !s.exactUndo {
		recorded = nil
	}
	w, l := ranking.ReverseResult(winner.Stats(), loser.Stats(), cfg.Normalize(), recorded)
	err = s.playerRepo.UpdateStatsPair(ctx,
		models.PlayerStatsUpdate{PlayerID: winner.ID, Stats: w},
		models.PlayerStatsUpdate{PlayerID: loser.ID, Stats: l},
	)
	if err != nil {
		return handleRepositoryError(err, "reverse match result")
	}
	return nil
}
