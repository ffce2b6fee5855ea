package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchCompleted MatchStatus = "completed"
)

type SlotState string

const (
	// SlotPending waits for the winner of an earlier match.
	SlotPending SlotState = "pending"
	// SlotBye is a structural bye: no opponent will ever arrive.
	SlotBye    SlotState = "bye"
	SlotFilled SlotState = "filled"
)

// Slot is one player position of a match.
type Slot struct {
	State    SlotState
	PlayerID string
}

func Pending() Slot { return Slot{State: SlotPending} }
func Bye() Slot { return Slot{State: SlotBye} }
func Filled(playerID string) Slot { return Slot{State: SlotFilled, PlayerID: playerID} }

// SlotOf returns Filled(id) for a non-empty id and Pending otherwise.
func SlotOf(playerID string) Slot {
	if playerID == "" {
		return Pending()
	}
	return Filled(playerID)
}

func (s Slot) IsFilled() bool { return s.State == SlotFilled && s.PlayerID != "" }
func (s Slot) IsBye() bool { return s.State == SlotBye }

type slotJSON struct {
	State    SlotState `json:"state"`
	PlayerID *string   `json:"player_id"`
}

func (s Slot) MarshalJSON() ([]byte, error) {
	out := slotJSON{State: s.State}
	if out.State == "" {
		out.State = SlotPending
	}
	if s.IsFilled() {
		id := s.PlayerID
		out.PlayerID = &id
	}
	return json.Marshal(out)
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	var in slotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.State {
	case SlotFilled:
		if in.PlayerID == nil || *in.PlayerID == "" {
			return fmt.Errorf("filled slot requires player_id")
		}
		*s = Filled(*in.PlayerID)
	case SlotBye:
		*s = Bye()
	case SlotPending, "":
		*s = Pending()
	default:
		return fmt.Errorf("unknown slot state %q", in.State)
	}
	return nil
}

// Match is a single pairing within a selective. BracketPosition is set for elimination only.
type Match struct {
	ID              string      `json:"id" db:"id"`
	SelectiveID     string      `json:"selective_id" db:"selective_id"`
	Round           int         `json:"round" db:"round"`
	BracketPosition *int        `json:"bracket_position,omitempty" db:"bracket_position"`
	Player1         Slot        `json:"player1" db:"-"`
	Player2         Slot        `json:"player2" db:"-"`
	Status          MatchStatus `json:"status" db:"status"`
	WinnerID        string      `json:"winner_id,omitempty" db:"winner_id"`
	Score1          *int        `json:"score1,omitempty" db:"score1"`
	Score2          *int        `json:"score2,omitempty" db:"score2"`
	EloDelta        *EloDelta   `json:"elo_delta,omitempty" db:"elo_delta"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// EloDelta records the rating change applied when the match was decided, so that an
// undo can restore the exact pre-match ratings.
type EloDelta struct {
	WinnerGain int `json:"winner_gain"`
	LoserLoss  int `json:"loser_loss"`
}

// IsReal reports whether both slots hold players, i.e. the match is a real decision point.
func (m *Match) IsReal() bool {
	return m.Player1.IsFilled() && m.Player2.IsFilled()
}

func (m *Match) IsBye() bool {
	return m.Player1.IsBye() || m.Player2.IsBye()
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchCompleted
}

// Decided reports whether the match is completed with a winner.
func (m *Match) Decided() bool {
	return m.Status == MatchCompleted && m.WinnerID != ""
}

func (m *Match) HasPlayer(playerID string) bool {
	return playerID != "" && (m.Player1.PlayerID == playerID || m.Player2.PlayerID == playerID)
}

// LoserID returns the opponent of the winner, or "" when undecided or a bye.
func (m *Match) LoserID() string {
	if m.WinnerID == "" || !m.IsReal() {
		return ""
	}
	if m.WinnerID == m.Player1.PlayerID {
		return m.Player2.PlayerID
	}
	return m.Player1.PlayerID
}

// Complete marks the match as won by winnerID with a 1-0 score on the winner's side.
func (m *Match) Complete(winnerID string) {
	s1, s2 := 0, 0
	if winnerID == m.Player1.PlayerID {
		s1 = 1
	} else {
		s2 = 1
	}
	m.WinnerID = winnerID
	m.Score1 = &s1
	m.Score2 = &s2
	m.Status = MatchCompleted
}

// Reset returns the match to pending without touching its slots.
func (m *Match) Reset() {
	m.WinnerID = ""
	m.EloDelta = nil
	m.Score1 = nil
	m.Score2 = nil
	m.Status = MatchPending
}

func (m *Match) Clone() *Match {
	if m == nil {
		return nil
	}
	c := *m
	if m.BracketPosition != nil {
		pos := *m.BracketPosition
		c.BracketPosition = &pos
	}
	if m.Score1 != nil {
		v := *m.Score1
		c.Score1 = &v
	}
	if m.Score2 != nil {
		v := *m.Score2
		c.Score2 = &v
	}
	if m.EloDelta != nil {
		d := *m.EloDelta
		c.EloDelta = &d
	}
	return &c
}

func IntPtr(v int) *int { return &v }
