package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/metrics"
	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/ranking"
	"github.com/Dosada05/selective-league/repositories"
	"github.com/Dosada05/selective-league/storage"
)

type CreateSelectiveInput struct {
	Name      string                 `json:"name"`
	Mode      models.SelectiveMode   `json:"mode"`
	PlayerIDs []string               `json:"player_ids"`
	Config    models.SelectiveConfig `json:"config"`
}

type SelectiveService interface {
	Create(ctx context.Context, input CreateSelectiveInput) (*models.Selective, error)
	GetByID(ctx context.Context, id string) (*models.Selective, error)
	List(ctx context.Context) ([]*models.Selective, error)
	Complete(ctx context.Context, id string) (*models.Selective, error)
	Delete(ctx context.Context, id string) error
	Standings(ctx context.Context, id string) ([]models.Standing, error)
}

type selectiveService struct {
	selectiveRepo repositories.SelectiveRepository
	matchRepo     repositories.MatchRepository
	playerRepo    repositories.PlayerRepository
	ratings       RatingService
	uploader      storage.FileUploader
	notifier      Notifier
	metrics       *metrics.Metrics
	logger        *slog.Logger
	genOpts       []brackets.Option
	now           func() time.Time
}

type SelectiveServiceOption func(*selectiveService)

// WithBracketOptions passes generator options (e.g. a seeded shuffle) to every bracket build.
func WithBracketOptions(opts ...brackets.Option) SelectiveServiceOption {
	return func(s *selectiveService) { s.genOpts = append(s.genOpts, opts...) }
}

// WithStandingsExport uploads final standings to uploader when a selective is completed.
func WithStandingsExport(uploader storage.FileUploader) SelectiveServiceOption {
	return func(s *selectiveService) { s.uploader = uploader }
}

func WithClock(now func() time.Time) SelectiveServiceOption {
	return func(s *selectiveService) { s.now = now }
}

func NewSelectiveService(
	selectiveRepo repositories.SelectiveRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	ratings RatingService,
	notifier Notifier,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...SelectiveServiceOption,
) SelectiveService {
	s := &selectiveService{
		selectiveRepo: selectiveRepo,
		matchRepo:     matchRepo,
		playerRepo:    playerRepo,
		ratings:       ratings,
		notifier:      notifierOrNoop(notifier),
		metrics:       m,
		logger:        loggerOrDefault(logger),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *selectiveService) validate(ctx context.Context, input *CreateSelectiveInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if !input.Mode.Valid() {
		return fmt.Errorf("%w: unknown mode %q", ErrValidationFailed, input.Mode)
	}
	if len(input.PlayerIDs) < 2 {
		return fmt.Errorf("%w: at least 2 players are required", ErrValidationFailed)
	}
	if err := input.Config.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	seen := make(map[string]bool, len(input.PlayerIDs))
	for _, id := range input.PlayerIDs {
		if seen[id] {
			return fmt.Errorf("%w: player %s listed twice", ErrValidationFailed, id)
		}
		seen[id] = true
	}

	players, err := loadPlayerMap(ctx, s.playerRepo)
	if err != nil {
		return err
	}
	for _, id := range input.PlayerIDs {
		if _, ok := players[id]; !ok {
			return fmt.Errorf("%w: unknown player %s", ErrValidationFailed, id)
		}
	}
	return nil
}

// Create validates the input and persists the selective with every match shell known up
// front: the whole bracket, every round-robin round, or the first swiss round.
func (s *selectiveService) Create(ctx context.Context, input CreateSelectiveInput) (*models.Selective, error) {
	if err := s.validate(ctx, &input); err != nil {
		return nil, err
	}

	sel := &models.Selective{
		Name:      input.Name,
		Mode:      input.Mode,
		PlayerIDs: append([]string(nil), input.PlayerIDs...),
		Config:    input.Config.Normalize(),
		Status:    models.SelectiveActive,
	}

	res, err := brackets.GenerateForSelective(sel, s.genOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	sel.Matches = res.Matches
	sel.TotalRounds = res.TotalRounds
	sel.BracketSize = res.BracketSize

	if err = s.selectiveRepo.Create(ctx, sel); err != nil {
		return nil, handleRepositoryError(err, "create selective")
	}

	s.metrics.MatchesGenerated(string(sel.Mode), len(sel.Matches))
	s.logger.InfoContext(ctx, "selective created",
		slog.String("selective_id", sel.ID),
		slog.String("mode", string(sel.Mode)),
		slog.Int("players", len(sel.PlayerIDs)),
		slog.Int("matches", len(sel.Matches)),
	)
	return sel, nil
}

func (s *selectiveService) GetByID(ctx context.Context, id string) (*models.Selective, error) {
	sel, err := s.selectiveRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get selective")
	}
	if sel.Matches, err = s.matchRepo.ListBySelective(ctx, id); err != nil {
		return nil, handleRepositoryError(err, "list matches")
	}
	return sel, nil
}

func (s *selectiveService) List(ctx context.Context) ([]*models.Selective, error) {
	selectives, err := s.selectiveRepo.List(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list selectives")
	}
	return selectives, nil
}

// Complete closes a selective. Elimination and round-robin require every match to be
// decided; swiss may be closed at any time. Every player gets a points history entry.
func (s *selectiveService) Complete(ctx context.Context, id string) (*models.Selective, error) {
	sel, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sel.Status == models.SelectiveCompleted {
		return nil, ErrSelectiveCompleted
	}
	if sel.Mode != models.ModeSwiss {
		for _, m := range sel.Matches {
			if !m.IsCompleted() {
				return nil, ErrSelectiveNotFinished
			}
		}
	}

	completedAt := s.now().UTC()
	if err = s.playerRepo.AppendPointsHistory(ctx, sel.Name, completedAt); err != nil {
		return nil, handleRepositoryError(err, "append points history")
	}
	if err = s.selectiveRepo.UpdateStatus(ctx, id, models.SelectiveCompleted); err != nil {
		return nil, handleRepositoryError(err, "complete selective")
	}
	sel.Status = models.SelectiveCompleted

	s.logger.InfoContext(ctx, "selective completed", slog.String("selective_id", id))
	s.export(ctx, sel, completedAt)

	broadcast(s.notifier, brackets.RoomForSelective(id), brackets.EventSelectiveCompleted, sel)
	return sel, nil
}

// export is best effort: a failed upload is logged and does not undo the completion.
func (s *selectiveService) export(ctx context.Context, sel *models.Selective, completedAt time.Time) {
	if s.uploader == nil {
		return
	}
	standings, err := s.standingsFor(ctx, sel)
	if err == nil {
		var res *storage.UploadResult
		res, err = storage.ExportStandings(ctx, s.uploader, storage.StandingsExport{
			SelectiveID: sel.ID,
			Name:        sel.Name,
			Mode:        sel.Mode,
			CompletedAt: completedAt,
			Standings:   standings,
			Matches:     sel.Matches,
		})
		if err == nil {
			s.logger.InfoContext(ctx, "standings exported",
				slog.String("selective_id", sel.ID),
				slog.String("location", res.Location),
				slog.Int64("bytes", res.Size),
			)
			return
		}
	}
	s.logger.ErrorContext(ctx, "failed to export standings",
		slog.String("selective_id", sel.ID),
		slog.Any("error", err),
	)
}

// Delete reverses the rating effect of every decided match, then removes the selective
// together with its matches.
func (s *selectiveService) Delete(ctx context.Context, id string) error {
	sel, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	cfg := sel.Config.Normalize()
	reversed := 0
	for _, m := range sel.Matches {
		if !m.Decided() || !m.IsReal() {
			continue
		}
		if err = s.ratings.ReverseMatchResult(ctx, m.WinnerID, m.LoserID(), cfg, m.EloDelta); err != nil {
			return fmt.Errorf("reverse match %s: %w", m.ID, err)
		}
		reversed++
	}

	if err = s.selectiveRepo.Delete(ctx, id); err != nil {
		return handleRepositoryError(err, "delete selective")
	}

	s.logger.InfoContext(ctx, "selective deleted",
		slog.String("selective_id", id),
		slog.Int("reversed_matches", reversed),
	)
	if s.uploader != nil && sel.Status == models.SelectiveCompleted {
		if err = storage.RemoveStandings(ctx, s.uploader, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to remove exported standings", slog.String("selective_id", id), slog.Any("error", err))
		}
	}
	broadcast(s.notifier, brackets.RoomForSelective(id), brackets.EventSelectiveDeleted, map[string]string{"selective_id": id})
	broadcast(s.notifier, brackets.RankingRoom, brackets.EventRankingChanged, map[string]string{"selective_id": id})
	return nil
}

func (s *selectiveService) Standings(ctx context.Context, id string) ([]models.Standing, error) {
	sel, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.standingsFor(ctx, sel)
}

func (s *selectiveService) standingsFor(ctx context.Context, sel *models.Selective) ([]models.Standing, error) {
	players, err := loadPlayerMap(ctx, s.playerRepo)
	if err != nil {
		return nil, err
	}
	return ranking.SelectiveStandings(sel, players, sel.Matches), nil
}
