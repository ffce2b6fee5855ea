package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/selective-league/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound = errors.New("player not found")
)

type PlayerRepository interface {
	List(ctx context.Context) ([]*models.Player, error)
	GetByID(ctx context.Context, id string) (*models.Player, error)
	Create(ctx context.Context, player *models.Player) error
	// UpdateProfile пишет только name, nickname, photo и badges.
	UpdateProfile(ctx context.Context, player *models.Player) error
	UpdateStats(ctx context.Context, id string, stats models.PlayerStats) error
	// UpdateStatsPair persists both sides of a match result atomically.
	UpdateStatsPair(ctx context.Context, a, b models.PlayerStatsUpdate) error
	// AppendPointsHistory snapshots the current points and rating of every player.
	AppendPointsHistory(ctx context.Context, eventName string, date time.Time) error
	ResetStats(ctx context.Context) error
	Delete(ctx context.Context, id string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

const playerColumns = `id, name, nickname, photo, elo_rating, points, wins, losses, streak, best_streak,
		badges, points_history, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row rowScanner) (*models.Player, error) {
	var p models.Player
	var badges pq.StringArray
	var history []byte
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Nickname,
		&p.Photo,
		&p.EloRating,
		&p.Points,
		&p.Wins,
		&p.Losses,
		&p.Streak,
		&p.BestStreak,
		&badges,
		&history,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.Badges = []string(badges)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.PointsHistory); err != nil {
			return nil, fmt.Errorf("failed to decode points history of player %s: %w", p.ID, err)
		}
	}
	return &p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		p, scanErr := scanPlayer(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %s: %w", id, err)
	}
	return p, nil
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	ensureID(&player.ID)
	if player.EloRating == 0 {
		player.EloRating = models.DefaultEloRating
	}
	history, err := json.Marshal(historyOrEmpty(player.PointsHistory))
	if err != nil {
		return fmt.Errorf("failed to encode points history: %w", err)
	}

	query := `
		INSERT INTO players
			(id, name, nickname, photo, elo_rating, points, wins, losses, streak, best_streak, badges, points_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		player.ID,
		player.Name,
		player.Nickname,
		player.Photo,
		player.EloRating,
		player.Points,
		player.Wins,
		player.Losses,
		player.Streak,
		player.BestStreak,
		pq.Array(badgesOrEmpty(player.Badges)),
		history,
	).Scan(&player.CreatedAt, &player.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) UpdateProfile(ctx context.Context, player *models.Player) error {
	query := `
		UPDATE players
		SET name = $1, nickname = $2, photo = $3, badges = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		player.Name,
		player.Nickname,
		player.Photo,
		pq.Array(badgesOrEmpty(player.Badges)),
		player.ID,
	).Scan(&player.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPlayerNotFound
		}
		return fmt.Errorf("failed to update player %s: %w", player.ID, err)
	}
	return nil
}

func (r *postgresPlayerRepository) UpdateStats(ctx context.Context, id string, stats models.PlayerStats) error {
	return updateStats(ctx, r.db, id, stats)
}

func (r *postgresPlayerRepository) UpdateStatsPair(ctx context.Context, a, b models.PlayerStatsUpdate) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := updateStats(ctx, tx, a.PlayerID, a.Stats); err != nil {
			return err
		}
		return updateStats(ctx, tx, b.PlayerID, b.Stats)
	})
}

func updateStats(ctx context.Context, exec SQLExecutor, id string, stats models.PlayerStats) error {
	query := `
		UPDATE players
		SET points = $1, wins = $2, losses = $3, elo_rating = $4, streak = $5, best_streak = $6, updated_at = NOW()
		WHERE id = $7`

	result, err := exec.ExecContext(ctx, query,
		stats.Points,
		stats.Wins,
		stats.Losses,
		stats.EloRating,
		stats.Streak,
		stats.BestStreak,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update stats of player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) AppendPointsHistory(ctx context.Context, eventName string, date time.Time) error {
	query := `
		UPDATE players
		SET points_history = points_history || jsonb_build_array(jsonb_build_object(
				'event_name', $1::text,
				'points', points,
				'elo_rating', elo_rating,
				'date', $2::timestamptz)),
			updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, eventName, date.UTC()); err != nil {
		return fmt.Errorf("failed to append points history: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) ResetStats(ctx context.Context) error {
	query := `
		UPDATE players
		SET points = 0, elo_rating = $1, wins = 0, losses = 0, streak = 0, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, query, models.DefaultEloRating); err != nil {
		return fmt.Errorf("failed to reset player stats: %w", err)
	}
	return nil
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete player %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func badgesOrEmpty(b []string) []string {
	if b == nil {
		return []string{}
	}
	return b
}

func historyOrEmpty(h []models.PointsHistoryEntry) []models.PointsHistoryEntry {
	if h == nil {
		return []models.PointsHistoryEntry{}
	}
	return h
}
