package models

import (
	"errors"
	"fmt"
	"time"
)

type SelectiveMode string

const (
	ModeElimination SelectiveMode = "elimination"
	ModeRoundRobin  SelectiveMode = "round-robin"
	ModeSwiss       SelectiveMode = "swiss"
)

func (m SelectiveMode) Valid() bool {
	switch m {
	case ModeElimination, ModeRoundRobin, ModeSwiss:
		return true
	}
	return false
}

// SelectiveStatus represents the lifecycle of a selective. It only moves active -> completed.
type SelectiveStatus string

const (
	SelectiveActive    SelectiveStatus = "active"
	SelectiveCompleted SelectiveStatus = "completed"
)

type Tiebreaker string

const (
	TiebreakerHeadToHead Tiebreaker = "head-to-head"
	TiebreakerWinRate    Tiebreaker = "win-rate"
	TiebreakerWins       Tiebreaker = "wins"
)

const (
	DefaultRounds        = 1
	DefaultPointsPerWin  = 3
	DefaultPointsPerLoss = 0
)

var ErrInvalidSelectiveConfig = errors.New("invalid selective config")

// SelectiveConfig holds the per-selective pairing and scoring options.
// Rounds is the round-robin cycle count or the swiss round cap.
type SelectiveConfig struct {
	Rounds        int        `json:"rounds"`
	PointsPerWin  *int       `json:"points_per_win,omitempty"`
	PointsPerLoss *int       `json:"points_per_loss,omitempty"`
	Tiebreaker    Tiebreaker `json:"tiebreaker"`
}

// Normalize fills in defaults for missing values.
func (c SelectiveConfig) Normalize() SelectiveConfig {
	if c.Rounds < 1 {
		c.Rounds = DefaultRounds
	}
	if c.PointsPerWin == nil {
		v := DefaultPointsPerWin
		c.PointsPerWin = &v
	}
	if c.PointsPerLoss == nil {
		v := DefaultPointsPerLoss
		c.PointsPerLoss = &v
	}
	if c.Tiebreaker == "" {
		c.Tiebreaker = TiebreakerHeadToHead
	}
	return c
}

func (c SelectiveConfig) Validate() error {
	if c.PointsPerWin != nil && *c.PointsPerWin < 0 {
		return fmt.Errorf("%w: points_per_win must not be negative", ErrInvalidSelectiveConfig)
	}
	if c.PointsPerLoss != nil && *c.PointsPerLoss < 0 {
		return fmt.Errorf("%w: points_per_loss must not be negative", ErrInvalidSelectiveConfig)
	}
	switch c.Tiebreaker {
	case "", TiebreakerHeadToHead, TiebreakerWinRate, TiebreakerWins:
	default:
		return fmt.Errorf("%w: unknown tiebreaker %q", ErrInvalidSelectiveConfig, c.Tiebreaker)
	}
	return nil
}

func (c SelectiveConfig) WinPoints() int {
	if c.PointsPerWin == nil {
		return DefaultPointsPerWin
	}
	return *c.PointsPerWin
}

func (c SelectiveConfig) LossPoints() int {
	if c.PointsPerLoss == nil {
		return DefaultPointsPerLoss
	}
	return *c.PointsPerLoss
}

// Selective представляет турнир (селективу).
type Selective struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Mode        SelectiveMode   `json:"mode" db:"mode"`
	PlayerIDs   []string        `json:"player_ids" db:"player_ids"`
	Config      SelectiveConfig `json:"config" db:"config"`
	Status      SelectiveStatus `json:"status" db:"status"`
	TotalRounds int             `json:"total_rounds" db:"total_rounds"`
	BracketSize int             `json:"bracket_size,omitempty" db:"bracket_size"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`

	Matches []*Match `json:"matches,omitempty" db:"-"`
}
