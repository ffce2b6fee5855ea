package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/repositories"
)

type CreatePlayerInput struct {
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
	Photo    string   `json:"photo"`
	Badges   []string `json:"badges"`
}

// UpdatePlayerInput changes only the fields that are set.
type UpdatePlayerInput struct {
	Name     *string   `json:"name"`
	Nickname *string   `json:"nickname"`
	Photo    *string   `json:"photo"`
	Badges   *[]string `json:"badges"`
}

type PlayerService interface {
	Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	GetByID(ctx context.Context, id string) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	UpdateProfile(ctx context.Context, id string, input UpdatePlayerInput) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, logger *slog.Logger) PlayerService {
	return &playerService{playerRepo: playerRepo, logger: loggerOrDefault(logger)}
}

func (s *playerService) Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}

	player := &models.Player{
		Name:      name,
		Nickname:  strings.TrimSpace(input.Nickname),
		Photo:     input.Photo,
		Badges:    input.Badges,
		EloRating: models.DefaultEloRating,
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, handleRepositoryError(err, "create player")
	}
	s.logger.InfoContext(ctx, "player created", slog.String("player_id", player.ID))
	return player, nil
}

func (s *playerService) GetByID(ctx context.Context, id string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, handleRepositoryError(err, "get player")
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "list players")
	}
	return players, nil
}

func (s *playerService) UpdateProfile(ctx context.Context, id string, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidationFailed)
		}
		player.Name = name
	}
	if input.Nickname != nil {
		player.Nickname = strings.TrimSpace(*input.Nickname)
	}
	if input.Photo != nil {
		player.Photo = *input.Photo
	}
	if input.Badges != nil {
		player.Badges = *input.Badges
	}

	if err = s.playerRepo.UpdateProfile(ctx, player); err != nil {
		return nil, handleRepositoryError(err, "update player")
	}
	return player, nil
}
