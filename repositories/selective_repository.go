package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/selective-league/models"
	"github.com/lib/pq"
)

var (
	ErrSelectiveNotFound = errors.New("selective not found")
)

type SelectiveRepository interface {
	// Create сохраняет селективу вместе с selective.Matches в одной транзакции.
	Create(ctx context.Context, selective *models.Selective) error
	GetByID(ctx context.Context, id string) (*models.Selective, error)
	List(ctx context.Context) ([]*models.Selective, error)
	UpdateStatus(ctx context.Context, id string, status models.SelectiveStatus) error
	// Delete removes the selective and all of its matches.
	Delete(ctx context.Context, id string) error
}

type postgresSelectiveRepository struct {
	db *sql.DB
}

func NewPostgresSelectiveRepository(db *sql.DB) SelectiveRepository {
	return &postgresSelectiveRepository{db: db}
}

const selectiveColumns = `id, name, mode, player_ids, config, status, total_rounds, bracket_size, created_at, updated_at`

func scanSelective(row rowScanner) (*models.Selective, error) {
	var s models.Selective
	var playerIDs pq.StringArray
	var config []byte
	if err := row.Scan(
		&s.ID,
		&s.Name,
		&s.Mode,
		&playerIDs,
		&config,
		&s.Status,
		&s.TotalRounds,
		&s.BracketSize,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.PlayerIDs = []string(playerIDs)
	if len(config) > 0 {
		if err := json.Unmarshal(config, &s.Config); err != nil {
			return nil, fmt.Errorf("failed to decode config of selective %s: %w", s.ID, err)
		}
	}
	return &s, nil
}

func (r *postgresSelectiveRepository) Create(ctx context.Context, selective *models.Selective) error {
	ensureID(&selective.ID)
	if selective.Status == "" {
		selective.Status = models.SelectiveActive
	}
	config, err := json.Marshal(selective.Config)
	if err != nil {
		return fmt.Errorf("failed to encode selective config: %w", err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO selectives (id, name, mode, player_ids, config, status, total_rounds, bracket_size)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at`

		err := tx.QueryRowContext(ctx, query,
			selective.ID,
			selective.Name,
			selective.Mode,
			pq.Array(selective.PlayerIDs),
			config,
			selective.Status,
			selective.TotalRounds,
			selective.BracketSize,
		).Scan(&selective.CreatedAt, &selective.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert selective: %w", err)
		}

		for _, m := range selective.Matches {
			m.SelectiveID = selective.ID
			if err := insertMatch(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postgresSelectiveRepository) GetByID(ctx context.Context, id string) (*models.Selective, error) {
	query := `SELECT ` + selectiveColumns + ` FROM selectives WHERE id = $1`

	s, err := scanSelective(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSelectiveNotFound
		}
		return nil, fmt.Errorf("failed to scan selective by id %s: %w", id, err)
	}
	return s, nil
}

func (r *postgresSelectiveRepository) List(ctx context.Context) ([]*models.Selective, error) {
	query := `SELECT ` + selectiveColumns + ` FROM selectives ORDER BY created_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query selectives: %w", err)
	}
	defer rows.Close()

	selectives := make([]*models.Selective, 0)
	for rows.Next() {
		s, scanErr := scanSelective(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan selective row: %w", scanErr)
		}
		selectives = append(selectives, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during selective rows iteration: %w", err)
	}
	return selectives, nil
}

func (r *postgresSelectiveRepository) UpdateStatus(ctx context.Context, id string, status models.SelectiveStatus) error {
	query := `UPDATE selectives SET status = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status of selective %s: %w", id, err)
	}
	return checkAffectedRows(result, ErrSelectiveNotFound)
}

func (r *postgresSelectiveRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE selective_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete matches of selective %s: %w", id, err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM selectives WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete selective %s: %w", id, err)
		}
		return checkAffectedRows(result, ErrSelectiveNotFound)
	})
}
