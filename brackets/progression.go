package brackets

import (
	"errors"

	"github.com/Dosada05/selective-league/models"
)

var (
	ErrDownstreamDecided = errors.New("next bracket match has already been played; undo it first")
	ErrNoBracketPosition = errors.New("match has no bracket position")
	ErrSourceNotDecided  = errors.New("match has no winner to advance")
)

// FindNextMatch returns the round r+1 match fed by source, or nil for the final.
func FindNextMatch(matches []*models.Match, source *models.Match) *models.Match {
	if source == nil || source.BracketPosition == nil {
		return nil
	}
	target := ChildPosition(*source.BracketPosition)
	for _, m := range matches {
		if m.Round == source.Round+1 && m.BracketPosition != nil && *m.BracketPosition == target {
			return m
		}
	}
	return nil
}

// Advance writes source's winner into its slot of the next match. When the next match's
// other slot is a bye, that match is completed for the winner and the cascade continues.
// matches is modified in place; every modified match is returned.
func Advance(matches []*models.Match, source *models.Match) ([]*models.Match, error) {
	if source.BracketPosition == nil {
		return nil, ErrNoBracketPosition
	}
	if !source.Decided() {
		return nil, ErrSourceNotDecided
	}

	next := FindNextMatch(matches, source)
	if next == nil {
		return nil, nil
	}

	side := TargetSide(*source.BracketPosition)
	*slotOf(next, side) = models.Filled(source.WinnerID)
	changed := []*models.Match{next}

	if slotOf(next, otherSide(side)).IsBye() {
		next.Complete(source.WinnerID)
		more, err := Advance(matches, next)
		if err != nil {
			return nil, err
		}
		changed = append(changed, more...)
	}
	return changed, nil
}

// Retract is the undo side of Advance. It refuses with ErrDownstreamDecided when the next
// match was decided by a player; bye auto-advances are rolled back along the way.
func Retract(matches []*models.Match, source *models.Match) ([]*models.Match, error) {
	if source.BracketPosition == nil {
		return nil, ErrNoBracketPosition
	}

	next := FindNextMatch(matches, source)
	if next == nil {
		return nil, nil
	}

	var changed []*models.Match
	if next.IsCompleted() {
		if !next.IsBye() {
			return nil, ErrDownstreamDecided
		}
		more, err := Retract(matches, next)
		if err != nil {
			return nil, err
		}
		changed = append(changed, more...)
		next.Reset()
	}

	*slotOf(next, TargetSide(*source.BracketPosition)) = models.Pending()
	changed = append(changed, next)
	return changed, nil
}
