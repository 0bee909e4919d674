package brackets

import (
	"context"
	"errors"

	"github.com/Dosada05/padel-manager/models"
)

var (
	ErrNotEnoughTeams     = errors.New("not enough teams to generate matches (minimum 2)")
	ErrTooManyQualifiers  = errors.New("too many qualifiers for a single elimination bracket")
	ErrDuplicateQualifier = errors.New("team appears more than once in the qualifier list")
)

type GenerateBracketParams struct {
	TournamentID int
	// Zone is only used by the round-robin generator.
	Zone string
	// Teams is ordered by seed: index 0 is the top seed.
	Teams []int
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

// BracketMatch is a match produced by a generator before it gets a DB id.
// UIDs link matches to each other; the service turns them into next_match_id.
type BracketMatch struct {
	UID          string
	Round        models.Round
	RoundNumber  int
	OrderInRound int
	Zone         *string

	Participant1ID *int
	Participant2ID *int

	SourceMatch1UID *string
	SourceMatch2UID *string

	NextMatchUID *string
	NextSlot     int

	IsBye            bool
	ByeParticipantID *int
}
