package brackets

import (
	"context"
	"testing"

	"github.com/Dosada05/padel-manager/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignZones(t *testing.T) {
	for n := 2; n <= 40; n++ {
		zones, err := AssignZones(teams(n), 3)
		require.NoError(t, err)

		total := 0
		min, max := n, 0
		for _, z := range zones {
			total += len(z.Teams)
			if len(z.Teams) < min {
				min = len(z.Teams)
			}
			if len(z.Teams) > max {
				max = len(z.Teams)
			}
		}
		assert.Equal(t, n, total, "n=%d", n)
		assert.GreaterOrEqual(t, min, 2, "n=%d", n)
		assert.LessOrEqual(t, max-min, 1, "n=%d", n)
	}
}

func TestAssignZones_Names(t *testing.T) {
	zones, err := AssignZones(teams(7), 3)
	require.NoError(t, err)
	require.Len(t, zones, 3)
	assert.Equal(t, "A", zones[0].Name)
	assert.Equal(t, []int{101, 104, 107}, zones[0].Teams)
	assert.Equal(t, "C", zones[2].Name)
	assert.Equal(t, "A1", ZoneName(26))
}

func TestAssignZones_Errors(t *testing.T) {
	_, err := AssignZones(teams(6), 2)
	assert.ErrorIs(t, err, ErrInvalidZoneSize)
	_, err = AssignZones(teams(1), 3)
	assert.ErrorIs(t, err, ErrNotEnoughTeams)
}

func TestRoundRobinGenerator(t *testing.T) {
	g := NewRoundRobinGenerator()
	matches, err := g.GenerateBracket(context.Background(), GenerateBracketParams{TournamentID: 3, Zone: "B", Teams: []int{1, 2, 3, 4}})
	require.NoError(t, err)
	require.Len(t, matches, 6)

	pairs := make(map[[2]int]bool)
	for _, m := range matches {
		assert.Equal(t, models.RoundZone, m.Round)
		require.NotNil(t, m.Zone)
		assert.Equal(t, "B", *m.Zone)
		pairs[[2]int{*m.Participant1ID, *m.Participant2ID}] = true
	}
	assert.Len(t, pairs, 6)

	_, err = g.GenerateBracket(context.Background(), GenerateBracketParams{Zone: "C", Teams: []int{1}})
	assert.ErrorIs(t, err, ErrNotEnoughTeams)
}
