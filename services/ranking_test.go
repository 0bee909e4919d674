package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-manager/models"
)

func TestRankingAwards(t *testing.T) {
	matches := []*models.Match{
		{Round: models.RoundZone, Couple1ID: intPtr(1), Couple2ID: intPtr(2)},
		{Round: models.RoundZone, Couple1ID: intPtr(3), Couple2ID: intPtr(9)},
		{Round: models.RoundQuarter, Couple1ID: intPtr(1), Couple2ID: intPtr(3)},
		{Round: models.RoundQuarter, Couple1ID: intPtr(4), Couple2ID: intPtr(5)},
		{Round: models.RoundSemifinal, Couple1ID: intPtr(1), Couple2ID: intPtr(4)},
		{Round: models.RoundSemifinal, Couple1ID: intPtr(6), Couple2ID: nil},
		{Round: models.RoundFinal, Couple1ID: intPtr(1), Couple2ID: intPtr(6)},
		nil,
	}

	awards := RankingAwards(matches, 1)
	assert.Equal(t, map[int]int{
		1: ChampionPoints,
		6: 60,
		4: 40,
		3: 20,
		5: 20,
		2: ZoneOnlyPoints,
		9: ZoneOnlyPoints,
	}, awards)
}

func TestRankingAwards_Empty(t *testing.T) {
	assert.Empty(t, RankingAwards(nil, 1))
}

func TestPlayerRanking_TiesSharePosition(t *testing.T) {
	st := newStore()
	for id, points := range map[int]int{1: 100, 2: 60, 3: 60, 4: 5} {
		st.addPlayer(id, id).RankingPoints = points
	}

	entries, err := NewPlayerService(fakePlayerRepo{st}).Ranking(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	positions := make([]int, len(entries))
	for i, e := range entries {
		positions[i] = e.Position
	}
	assert.Equal(t, []int{1, 2, 2, 4}, positions)
	assert.Equal(t, 1, entries[0].Player.ID)
}

func TestPermissions(t *testing.T) {
	assert.True(t, HasPermission(models.RolePlayer, PermInscriptionCreate))
	assert.False(t, HasPermission(models.RolePlayer, PermMatchResult))
	assert.True(t, HasPermission(models.RoleClub, PermBracketGenerate))
	assert.False(t, HasPermission(models.RoleClub, PermInscriptionCreate))
	assert.False(t, HasPermission(models.RoleCoach, PermTournamentCreate))
	assert.True(t, HasPermission(models.RoleAdmin, PermInscriptionCreate))
	assert.False(t, HasPermission(models.UserRole("guest"), PermStandingsView))

	assert.Equal(t, []Permission{PermInscriptionCreate, PermStandingsView}, PermissionsFor(models.RolePlayer))

	admin := PermissionsFor(models.RoleAdmin)
	assert.Len(t, admin, 10)
	assert.Equal(t, PermInscriptionCreate, admin[0])
	assert.Equal(t, admin, PermissionsFor(models.RoleAdmin))
}
