package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/selective-league/brackets"
	"github.com/Dosada05/selective-league/models"
	"github.com/Dosada05/selective-league/repositories"
)

type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	SetRankingMode(ctx context.Context, mode models.RankingMode) (*models.Settings, error)
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
	notifier     Notifier
}

func NewSettingsService(settingsRepo repositories.SettingsRepository, notifier Notifier) SettingsService {
	return &settingsService{settingsRepo: settingsRepo, notifier: notifierOrNoop(notifier)}
}

func (s *settingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, handleRepositoryError(err, "get settings")
	}
	return settings, nil
}

func (s *settingsService) SetRankingMode(ctx context.Context, mode models.RankingMode) (*models.Settings, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	settings := &models.Settings{RankingMode: mode}
	if err := s.settingsRepo.Update(ctx, settings); err != nil {
		return nil, handleRepositoryError(err, "update settings")
	}
	broadcast(s.notifier, brackets.RankingRoom, brackets.EventRankingChanged, settings)
	return settings, nil
}
