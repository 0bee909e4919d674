package brackets

import (
	"context"
	"fmt"
)

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds every round of the bracket. Byes go to the top seeds
// and are returned as IsBye entries whose team is already placed in the
// next-round match. Later rounds have empty slots for the winners.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	teams := params.Teams
	n := len(teams)

	if n < 2 {
		return nil, ErrNotEnoughTeams
	}
	if n > MaxBracketSize {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrTooManyQualifiers, n, MaxBracketSize)
	}
	seen := make(map[int]struct{}, n)
	for _, id := range teams {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: team %d", ErrDuplicateQualifier, id)
		}
		seen[id] = struct{}{}
	}

	size := BracketSize(n)
	rounds := RoundsForSize(size)
	order := seedOrder(size)

	all := make([]*BracketMatch, 0, size-1)
	prev := make([]*BracketMatch, 0, size/2)

	for i := 0; i < size/2; i++ {
		seedA, seedB := order[2*i], order[2*i+1]
		p1 := teams[seedA-1]
		bm := &BracketMatch{
			UID:            fmt.Sprintf("R1M%d", i+1),
			Round:          rounds[0],
			RoundNumber:    1,
			OrderInRound:   i + 1,
			Participant1ID: &p1,
		}
		if seedB > n {
			bm.IsBye = true
			bm.ByeParticipantID = &p1
		} else {
			p2 := teams[seedB-1]
			bm.Participant2ID = &p2
		}
		prev = append(prev, bm)
		all = append(all, bm)
	}

	for r := 1; r < len(rounds); r++ {
		current := make([]*BracketMatch, 0, len(prev)/2)
		for i := 0; i < len(prev); i += 2 {
			bm := &BracketMatch{
				UID:          fmt.Sprintf("R%dM%d", r+1, i/2+1),
				Round:        rounds[r],
				RoundNumber:  r + 1,
				OrderInRound: i/2 + 1,
			}
			feed(prev[i], bm, 1)
			feed(prev[i+1], bm, 2)
			current = append(current, bm)
			all = append(all, bm)
		}
		prev = current
	}

	return all, nil
}

// feed links a source match to its slot in the next round. A bye puts its
// team straight into the slot instead of leaving it for a winner.
func feed(src, next *BracketMatch, slot int) {
	uid := next.UID
	src.NextMatchUID = &uid
	src.NextSlot = slot

	if src.IsBye {
		team := *src.ByeParticipantID
		if slot == 1 {
			next.Participant1ID = &team
		} else {
			next.Participant2ID = &team
		}
		return
	}
	srcUID := src.UID
	if slot == 1 {
		next.SourceMatch1UID = &srcUID
	} else {
		next.SourceMatch2UID = &srcUID
	}
}
