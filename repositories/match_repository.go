package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/selective-league/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound         = errors.New("match not found")
	ErrMatchSelectiveInvalid = errors.New("match selective conflict or invalid")
)

type MatchRepository interface {
	List(ctx context.Context) ([]*models.Match, error)
	ListBySelective(ctx context.Context, selectiveID string) ([]*models.Match, error)
	GetByID(ctx context.Context, id string) (*models.Match, error)
	Create(ctx context.Context, match *models.Match) error
	CreateBatch(ctx context.Context, matches []*models.Match) error
	Update(ctx context.Context, match *models.Match) error
	// UpdateBatch сохраняет несколько матчей атомарно (продвижение по сетке).
	UpdateBatch(ctx context.Context, matches []*models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, selective_id, round, bracket_position, player1_state, player1_id, player2_state, player2_id,
		status, winner_id, score1, score2, elo_winner_gain, elo_loser_loss, created_at, updated_at`

func scanMatch(row rowScanner) (*models.Match, error) {
	var m models.Match
	var position, score1, score2, gain, loss sql.NullInt64
	var p1, p2, winner sql.NullString
	if err := row.Scan(
		&m.ID,
		&m.SelectiveID,
		&m.Round,
		&position,
		&m.Player1.State,
		&p1,
		&m.Player2.State,
		&p2,
		&m.Status,
		&winner,
		&score1,
		&score2,
		&gain,
		&loss,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	m.BracketPosition = intPtrFromNull(position)
	m.Player1.PlayerID = p1.String
	m.Player2.PlayerID = p2.String
	m.WinnerID = winner.String
	m.Score1 = intPtrFromNull(score1)
	m.Score2 = intPtrFromNull(score2)
	if gain.Valid && loss.Valid {
		m.EloDelta = &models.EloDelta{WinnerGain: int(gain.Int64), LoserLoss: int(loss.Int64)}
	}
	return &m, nil
}

func eloColumns(m *models.Match) (sql.NullInt64, sql.NullInt64) {
	if m.EloDelta == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(m.EloDelta.WinnerGain), Valid: true},
		sql.NullInt64{Int64: int64(m.EloDelta.LoserLoss), Valid: true}
}

func insertMatch(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	ensureID(&m.ID)
	if m.Status == "" {
		m.Status = models.MatchPending
	}
	gain, loss := eloColumns(m)

	query := `
		INSERT INTO matches
			(id, selective_id, round, bracket_position, player1_state, player1_id, player2_state, player2_id,
			 status, winner_id, score1, score2, elo_winner_gain, elo_loser_loss)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`

	err := exec.QueryRowContext(ctx, query,
		m.ID,
		m.SelectiveID,
		m.Round,
		nullIntPtr(m.BracketPosition),
		slotState(m.Player1),
		nullString(m.Player1.PlayerID),
		slotState(m.Player2),
		nullString(m.Player2.PlayerID),
		m.Status,
		nullString(m.WinnerID),
		nullIntPtr(m.Score1),
		nullIntPtr(m.Score2),
		gain,
		loss,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	return handleMatchError(err)
}

func updateMatch(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	gain, loss := eloColumns(m)

	query := `
		UPDATE matches
		SET player1_state = $1, player1_id = $2, player2_state = $3, player2_id = $4,
			status = $5, winner_id = $6, score1 = $7, score2 = $8,
			elo_winner_gain = $9, elo_loser_loss = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at`

	err := exec.QueryRowContext(ctx, query,
		slotState(m.Player1),
		nullString(m.Player1.PlayerID),
		slotState(m.Player2),
		nullString(m.Player2.PlayerID),
		m.Status,
		nullString(m.WinnerID),
		nullIntPtr(m.Score1),
		nullIntPtr(m.Score2),
		gain,
		loss,
		m.ID,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update match %s: %w", m.ID, err)
	}
	return nil
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, query string, args ...interface{}) ([]*models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		m, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) List(ctx context.Context) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches ORDER BY created_at ASC, round ASC, bracket_position ASC NULLS LAST, id ASC`
	return r.queryMatches(ctx, query)
}

func (r *postgresMatchRepository) ListBySelective(ctx context.Context, selectiveID string) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE selective_id = $1
		ORDER BY round ASC, bracket_position ASC NULLS LAST, created_at ASC, id ASC`
	return r.queryMatches(ctx, query, selectiveID)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %s: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) Create(ctx context.Context, match *models.Match) error {
	return insertMatch(ctx, r.db, match)
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, m := range matches {
			if err := insertMatch(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *postgresMatchRepository) Update(ctx context.Context, match *models.Match) error {
	return updateMatch(ctx, r.db, match)
}

func (r *postgresMatchRepository) UpdateBatch(ctx context.Context, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, m := range matches {
			if err := updateMatch(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

func slotState(s models.Slot) models.SlotState {
	if s.State == "" {
		return models.SlotPending
	}
	return s.State
}

func handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		// "23503": foreign_key_violation
		if pqErr.Code == "23503" && pqErr.Constraint == "matches_selective_id_fkey" {
			return ErrMatchSelectiveInvalid
		}
	}
	return fmt.Errorf("failed to insert match: %w", err)
}
