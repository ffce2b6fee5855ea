package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/selective-league/models"
)

type SettingsRepository interface {
	// Get returns the stored settings, or defaultMode when nothing is stored yet.
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}

type postgresSettingsRepository struct {
	db          *sql.DB
	defaultMode models.RankingMode
}

func NewPostgresSettingsRepository(db *sql.DB, defaultMode models.RankingMode) SettingsRepository {
	return &postgresSettingsRepository{db: db, defaultMode: defaultMode}
}

func (r *postgresSettingsRepository) Get(ctx context.Context) (*models.Settings, error) {
	settings := &models.Settings{}
	err := r.db.QueryRowContext(ctx, `SELECT ranking_mode FROM settings WHERE id = 1`).Scan(&settings.RankingMode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.Settings{RankingMode: r.defaultMode}, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return settings, nil
}

func (r *postgresSettingsRepository) Update(ctx context.Context, settings *models.Settings) error {
	query := `
		INSERT INTO settings (id, ranking_mode) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET ranking_mode = EXCLUDED.ranking_mode`

	if _, err := r.db.ExecContext(ctx, query, settings.RankingMode); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}
