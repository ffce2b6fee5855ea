package brackets

import "github.com/Dosada05/selective-league/models"

// ChildPosition is the bracket position in round r+1 fed by position pos of round r.
func ChildPosition(pos int) int {
	return pos / 2
}

// FeederPositions returns the two round r-1 positions that feed position k of round r.
func FeederPositions(k int) (int, int) {
	return 2 * k, 2*k + 1
}

type SlotSide int

const (
	SidePlayer1 SlotSide = iota + 1
	SidePlayer2
)

// TargetSide tells which slot of the child match receives the winner of pos:
// even positions fill player1, odd positions fill player2.
func TargetSide(pos int) SlotSide {
	if pos%2 == 0 {
		return SidePlayer1
	}
	return SidePlayer2
}

func slotOf(m *models.Match, side SlotSide) *models.Slot {
	if side == SidePlayer1 {
		return &m.Player1
	}
	return &m.Player2
}

func otherSide(side SlotSide) SlotSide {
	if side == SidePlayer1 {
		return SidePlayer2
	}
	return SidePlayer1
}
