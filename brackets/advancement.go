package brackets

import (
	"errors"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
)

var (
	ErrTiedEliminationMatch = errors.New("elimination match cannot end in a tie")
	ErrMatchNotDecided      = errors.New("match has no complete result or is missing a team")
	ErrInvalidSlot          = errors.New("next slot must be 1 or 2")
	ErrSlotOccupied         = errors.New("next match slot already holds a different team")
	ErrTeamAlreadyInRound   = errors.New("team already occupies the other slot of the next match")
)

// DetermineWinner returns the team with the strictly higher score.
func DetermineWinner(m *models.Match) (int, error) {
	if m == nil || !m.HasResult() || m.Couple1ID == nil || m.Couple2ID == nil {
		return 0, ErrMatchNotDecided
	}
	switch {
	case *m.Result1 > *m.Result2:
		return *m.Couple1ID, nil
	case *m.Result2 > *m.Result1:
		return *m.Couple2ID, nil
	default:
		return 0, fmt.Errorf("%w: match %d %d-%d", ErrTiedEliminationMatch, m.ID, *m.Result1, *m.Result2)
	}
}

// PlaceWinner writes the winner into the given slot of next. It reports
// whether next changed. Placing the same team twice is a no-op; a slot that
// already holds another team is never overwritten.
func PlaceWinner(next *models.Match, slot int, winnerID int) (bool, error) {
	if slot != 1 && slot != 2 {
		return false, fmt.Errorf("%w: got %d", ErrInvalidSlot, slot)
	}

	current := next.SlotCouple(slot)
	if current != nil {
		if *current == winnerID {
			return false, nil
		}
		return false, fmt.Errorf("%w: match %d slot %d has team %d, refusing team %d",
			ErrSlotOccupied, next.ID, slot, *current, winnerID)
	}

	other := next.SlotCouple(3 - slot)
	if other != nil && *other == winnerID {
		return false, fmt.Errorf("%w: match %d team %d", ErrTeamAlreadyInRound, next.ID, winnerID)
	}

	w := winnerID
	if slot == 1 {
		next.Couple1ID = &w
	} else {
		next.Couple2ID = &w
	}
	return true, nil
}
