package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/padel-manager/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates the zone matches: every couple of the zone plays
// every other couple once.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	teams := params.Teams
	if len(teams) < 2 {
		return nil, fmt.Errorf("RoundRobinGenerator: zone %s: %w (found %d)", params.Zone, ErrNotEnoughTeams, len(teams))
	}

	zone := params.Zone
	matches := make([]*BracketMatch, 0, len(teams)*(len(teams)-1)/2)
	matchOrder := 0

	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			t1, t2 := teams[i], teams[j]
			matchOrder++
			matches = append(matches, &BracketMatch{
				UID:            fmt.Sprintf("T%d_Z%s_M%d", params.TournamentID, zone, matchOrder),
				Round:          models.RoundZone,
				OrderInRound:   matchOrder,
				Zone:           &zone,
				Participant1ID: &t1,
				Participant2ID: &t2,
			})
		}
	}
	return matches, nil
}
