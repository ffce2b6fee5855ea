package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/metrics"
	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/repositories"
)

// MatchUpdate is what a result entry or undo changed.
type MatchUpdate struct {
	Match *models.Match `json:"match"`
	// Changed holds the other matches rewritten by bracket progression.
	Changed []*models.Match `json:"changed,omitempty"`
	// NextRound holds the swiss round generated by this decision, if any.
	NextRound []*models.Match `json:"next_round,omitempty"`
	// SittingOut is the player without an opponent in NextRound.
	SittingOut string `json:"sitting_out,omitempty"`
}

type MatchService interface {
	ListBySelective(ctx context.Context, selectiveID string) ([]*models.Match, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
	SetWinner(ctx context.Context, matchID, winnerID string) (*MatchUpdate, error)
	UndoResult(ctx context.Context, matchID string) (*MatchUpdate, error)
}

type matchService struct {
	matchRepo     repositories.MatchRepository
	selectiveRepo repositories.SelectiveRepository
	ratings       RatingService
	notifier      Notifier
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewMatchService(
	matchRepo repositories.MatchRepository,
	selectiveRepo repositories.SelectiveRepository,
	ratings RatingService,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matchRepo:     matchRepo,
		selectiveRepo: selectiveRepo,
		ratings:       ratings,
		notifier:      notifierOrNoop(notifier),
		metrics:       m,
		logger:        loggerOrDefault(logger),
	}
}

func (s *matchService) ListBySelective(ctx context.Context, selectiveID string) ([]*models.Match, error) {
	if _, err := s.selectiveRepo.GetByID(ctx, selectiveID); err != nil {
		return nil, handleRepositoryError(err, "get selective")
	}
	matches, err := s.matchRepo.ListBySelective(ctx, selectiveID)
	if err != nil {
		return nil, handleRepositoryError(err, "list matches")
	}
	return matches, nil
}

func (s *matchService) GetByID(ctx context.Context, id string) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get match")
	}
	return m, nil
}

func (s *matchService) load(ctx context.Context, matchID string) (*models.Match, *models.Selective, error) {
	m, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return nil, nil, handleRepositoryError(err, "get match")
	}
	sel, err := s.selectiveRepo.GetByID(ctx, m.SelectiveID)
	if err != nil {
		return nil, nil, handleRepositoryError(err, "get selective")
	}
	if sel.Status == models.SelectiveCompleted {
		return nil, nil, ErrSelectiveCompleted
	}
	return m, sel, nil
}

// SetWinner records winnerID as the winner of a playable match, updates both players'
// ratings, moves the winner along an elimination bracket and, for swiss, generates the
// next round once the current one is fully decided.
func (s *matchService) SetWinner(ctx context.Context, matchID, winnerID string) (*MatchUpdate, error) {
	m, sel, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if m.IsCompleted() {
		return nil, ErrMatchAlreadyDecided
	}
	if !m.IsReal() {
		return nil, ErrMatchNotPlayable
	}
	if !m.HasPlayer(winnerID) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidWinner, winnerID)
	}

	cfg := sel.Config.Normalize()
	m.Complete(winnerID)
	loserID := m.LoserID()

	delta, err := s.ratings.ApplyMatchResult(ctx, winnerID, loserID, cfg)
	if err != nil {
		return nil, err
	}
	m.EloDelta = delta

	update := &MatchUpdate{Match: m}
	var all []*models.Match
	if sel.Mode == models.ModeElimination || sel.Mode == models.ModeSwiss {
		if all, err = s.matchRepo.ListBySelective(ctx, sel.ID); err != nil {
			s.compensateApply(ctx, m, cfg)
			return nil, handleRepositoryError(err, "list matches")
		}
		all = replaceMatch(all, m)
	}

	if sel.Mode == models.ModeElimination && m.BracketPosition != nil {
		changed, advErr := brackets.Advance(all, m)
		if advErr != nil {
			s.compensateApply(ctx, m, cfg)
			return nil, fmt.Errorf("advance winner: %w", advErr)
		}
		update.Changed = changed
	}

	if err = s.matchRepo.UpdateBatch(ctx, append([]*models.Match{m}, update.Changed...)); err != nil {
		s.compensateApply(ctx, m, cfg)
		return nil, handleRepositoryError(err, "save match result")
	}

	s.metrics.MatchDecided(string(sel.Mode))
	s.logger.InfoContext(ctx, "match decided",
		slog.String("selective_id", sel.ID),
		slog.String("match_id", m.ID),
		slog.Int("round", m.Round),
		slog.String("winner_id", winnerID),
	)

	if sel.Mode == models.ModeSwiss && brackets.SwissRoundComplete(all, m.Round, cfg.Rounds) {
		if err = s.generateNextSwissRound(ctx, sel, cfg, m.Round, all, update); err != nil {
			return nil, err
		}
	}

	room := brackets.RoomForSelective(sel.ID)
	broadcast(s.notifier, room, brackets.EventMatchUpdated, update)
	if len(update.NextRound) > 0 {
		broadcast(s.notifier, room, brackets.EventRoundGenerated, update.NextRound)
	}
	broadcast(s.notifier, brackets.RankingRoom, brackets.EventRankingChanged, map[string]string{"selective_id": sel.ID})
	return update, nil
}

func (s *matchService) generateNextSwissRound(ctx context.Context, sel *models.Selective, cfg models.SelectiveConfig, round int, all []*models.Match, update *MatchUpdate) error {
	standings := brackets.ProvisionalSwissRanking(sel.PlayerIDs, all, cfg)
	res := brackets.GenerateSwissRound(sel.PlayerIDs, standings, round+1, all)
	for _, nm := range res.Matches {
		nm.SelectiveID = sel.ID
	}
	if err := s.matchRepo.CreateBatch(ctx, res.Matches); err != nil {
		// Результат уже сохранен; раунд можно догенерировать повторным решением после undo.
		return handleRepositoryError(err, "create next swiss round")
	}

	s.metrics.MatchesGenerated(string(sel.Mode), len(res.Matches))
	s.logger.InfoContext(ctx, "swiss round generated",
		slog.String("selective_id", sel.ID),
		slog.Int("round", round+1),
		slog.Int("matches", len(res.Matches)),
		slog.String("sitting_out", res.SittingOut),
	)
	update.NextRound = res.Matches
	update.SittingOut = res.SittingOut
	return nil
}

// compensateApply reverts the rating change of a decision that could not be saved.
func (s *matchService) compensateApply(ctx context.Context, m *models.Match, cfg models.SelectiveConfig) {
	if m.EloDelta == nil {
		return
	}
	if err := s.ratings.ReverseMatchResult(ctx, m.WinnerID, m.LoserID(), cfg, m.EloDelta); err != nil {
		s.logger.ErrorContext(ctx, "failed to revert ratings after a failed match update; undo manually",
			slog.String("match_id", m.ID),
			slog.Any("error", err),
		)
	}
}

// compensateReverse re-applies a result whose undo could not be saved, so the ratings
// agree with the match that is still stored as completed.
func (s *matchService) compensateReverse(ctx context.Context, matchID, winnerID, loserID string, cfg models.SelectiveConfig) {
	if _, err := s.ratings.ApplyMatchResult(ctx, winnerID, loserID, cfg); err != nil {
		s.logger.ErrorContext(ctx, "failed to re-apply ratings after a failed undo; decide the match again manually",
			slog.String("match_id", matchID),
			slog.Any("error", err),
		)
	}
}

// UndoResult returns a decided match to pending and reverses its rating effect. In an
// elimination bracket the winner is withdrawn from the next match first, which is refused
// once that match has been played.
func (s *matchService) UndoResult(ctx context.Context, matchID string) (*MatchUpdate, error) {
	m, sel, err := s.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !m.IsCompleted() {
		return nil, ErrMatchNotDecided
	}
	if m.IsBye() {
		return nil, ErrByeMatchUndo
	}

	update := &MatchUpdate{Match: m}
	if sel.Mode == models.ModeElimination && m.BracketPosition != nil {
		all, listErr := s.matchRepo.ListBySelective(ctx, sel.ID)
		if listErr != nil {
			return nil, handleRepositoryError(listErr, "list matches")
		}
		all = replaceMatch(all, m)

		changed, retractErr := brackets.Retract(all, m)
		if retractErr != nil {
			if errors.Is(retractErr, brackets.ErrDownstreamDecided) {
				return nil, ErrDownstreamDecided
			}
			return nil, fmt.Errorf("retract winner: %w", retractErr)
		}
		update.Changed = changed
	}

	cfg := sel.Config.Normalize()
	winnerID, loserID := m.WinnerID, m.LoserID()
	reversed := false
	if m.IsReal() {
		if err = s.ratings.ReverseMatchResult(ctx, winnerID, loserID, cfg, m.EloDelta); err != nil {
			return nil, err
		}
		reversed = true
	}

	m.Reset()
	if err = s.matchRepo.UpdateBatch(ctx, append([]*models.Match{m}, update.Changed...)); err != nil {
		if reversed {
			s.compensateReverse(ctx, m.ID, winnerID, loserID, cfg)
		}
		return nil, handleRepositoryError(err, "save undone match")
	}

	s.metrics.MatchUndone(string(sel.Mode))
	s.logger.InfoContext(ctx, "match result undone",
		slog.String("selective_id", sel.ID),
		slog.String("match_id", m.ID),
	)

	broadcast(s.notifier, brackets.RoomForSelective(sel.ID), brackets.EventMatchUpdated, update)
	broadcast(s.notifier, brackets.RankingRoom, brackets.EventRankingChanged, map[string]string{"selective_id": sel.ID})
	return update, nil
}
