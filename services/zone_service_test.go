package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/models"
)

var organizer = &Actor{UserID: organizerUserID, Role: models.RoleClub}

func TestStartZonePhase(t *testing.T) {
	st := newStore()
	st.addClub(clubID, organizerUserID)
	st.addTournament(tournamentID, clubID, models.StatusPairing, 8)
	for i := 0; i < 6; i++ {
		st.addCouple(201+i, 2*i+1, 2*i+2)
		st.addInscription(tournamentID, nil, intPtr(201+i))
	}
	st.addInscription(tournamentID, intPtr(50), nil)

	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	hub := &recordingHub{}
	svc := NewZoneService(db, fakeTournamentRepo{st}, fakeClubRepo{st}, fakeInscriptionRepo{st},
		fakeZoneRepo{st}, fakeMatchRepo{st}, hub, 3, discardLogger())

	phase, err := svc.StartZonePhase(context.Background(), organizer, tournamentID)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, phase.Zones, 2)
	assert.Equal(t, "A", phase.Zones[0].Name)
	assert.Equal(t, []int{201, 203, 205}, phase.Zones[0].CoupleIDs)
	assert.Equal(t, []int{202, 204, 206}, phase.Zones[1].CoupleIDs)
	assert.Len(t, phase.Matches, 6)
	for _, m := range phase.Matches {
		assert.Equal(t, models.RoundZone, m.Round)
		assert.Equal(t, models.MatchPending, m.Status)
		require.NotNil(t, m.ZoneID)
		assert.False(t, m.HasResult())
	}
	assert.Equal(t, models.StatusZonePhase, st.tournaments[tournamentID].Status)
	assert.Equal(t, []string{brackets.MessageZonesCreated}, hub.messages)
}

func TestStartZonePhase_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("already started", func(t *testing.T) {
		st := newStore()
		st.addClub(clubID, organizerUserID)
		st.addTournament(tournamentID, clubID, models.StatusZonePhase, 8)
		db, _ := newTxDB(t)
		svc := NewZoneService(db, fakeTournamentRepo{st}, fakeClubRepo{st}, fakeInscriptionRepo{st},
			fakeZoneRepo{st}, fakeMatchRepo{st}, nil, 4, discardLogger())
		_, err := svc.StartZonePhase(ctx, organizer, tournamentID)
		assert.ErrorIs(t, err, ErrTournamentInvalidStatusTransition)
	})

	t.Run("only one couple", func(t *testing.T) {
		st := newStore()
		st.addClub(clubID, organizerUserID)
		st.addTournament(tournamentID, clubID, models.StatusNotStarted, 8)
		st.addCouple(201, 1, 2)
		st.addInscription(tournamentID, nil, intPtr(201))
		st.addInscription(tournamentID, intPtr(3), nil)
		db, _ := newTxDB(t)
		svc := NewZoneService(db, fakeTournamentRepo{st}, fakeClubRepo{st}, fakeInscriptionRepo{st},
			fakeZoneRepo{st}, fakeMatchRepo{st}, nil, 4, discardLogger())
		_, err := svc.StartZonePhase(ctx, organizer, tournamentID)
		assert.ErrorIs(t, err, ErrNotEnoughCouples)
	})

	t.Run("other club", func(t *testing.T) {
		st := newStore()
		st.addClub(clubID, organizerUserID)
		st.addClub(clubID+1, 2)
		st.addTournament(tournamentID, clubID, models.StatusNotStarted, 8)
		db, _ := newTxDB(t)
		svc := NewZoneService(db, fakeTournamentRepo{st}, fakeClubRepo{st}, fakeInscriptionRepo{st},
			fakeZoneRepo{st}, fakeMatchRepo{st}, nil, 4, discardLogger())
		_, err := svc.StartZonePhase(ctx, &Actor{UserID: 2, Role: models.RoleClub}, tournamentID)
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})
}

// playZone stores a zone whose couples finish in the given order: every
// couple beats all couples listed after it.
func playZone(st *store, tournamentID int, name string, couples []int) *models.Zone {
	zone := &models.Zone{ID: st.id(), TournamentID: tournamentID, Name: name, CoupleIDs: couples}
	st.zones[zone.ID] = zone
	for i := 0; i < len(couples); i++ {
		for j := i + 1; j < len(couples); j++ {
			zoneID := zone.ID
			m := &models.Match{
				ID: st.id(), TournamentID: tournamentID, Round: models.RoundZone, ZoneID: &zoneID,
				Couple1ID: intPtr(couples[i]), Couple2ID: intPtr(couples[j]),
				Result1: intPtr(6), Result2: intPtr(3), Status: models.MatchFinished,
				WinnerID: intPtr(couples[i]),
			}
			st.matches[m.ID] = m
		}
	}
	return zone
}

func TestZoneStandings(t *testing.T) {
	st := newStore()
	st.addTournament(tournamentID, clubID, models.StatusZonePhase, 8)
	playZone(st, tournamentID, "A", []int{203, 201, 202})
	playZone(st, tournamentID, "B", []int{204, 205, 206})

	svc := NewZoneService(nil, fakeTournamentRepo{st}, fakeClubRepo{st}, fakeInscriptionRepo{st},
		fakeZoneRepo{st}, fakeMatchRepo{st}, nil, 3, discardLogger())
	tables, err := svc.Standings(context.Background(), tournamentID)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "A", tables[0].Zone)
	require.Len(t, tables[0].Rows, 3)
	assert.Equal(t, 203, tables[0].Rows[0].TeamID)
	assert.Equal(t, 6, tables[0].Rows[0].Points)
	assert.Equal(t, 202, tables[0].Rows[2].TeamID)
	assert.Equal(t, 204, tables[1].Rows[0].TeamID)

	_, err = svc.Standings(context.Background(), 999)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
