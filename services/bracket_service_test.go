package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/models"
)

// zonePhaseStore has one finished zone of three couples per name.
func zonePhaseStore(zoneNames ...string) *store {
	st := newStore()
	st.addClub(clubID, organizerUserID)
	st.addTournament(tournamentID, clubID, models.StatusZonePhase, 16)
	next := 201
	for _, name := range zoneNames {
		couples := []int{next, next + 1, next + 2}
		for _, c := range couples {
			st.addCouple(c, 2*c, 2*c+1)
			st.addInscription(tournamentID, nil, intPtr(c))
		}
		playZone(st, tournamentID, name, couples)
		next += 3
	}
	return st
}

func newBracketService(t *testing.T, st *store, hub brackets.Broadcaster, expectTx bool) BracketService {
	t.Helper()
	db, mock := newTxDB(t)
	if expectTx {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}
	return NewBracketService(db, fakeTournamentRepo{st}, fakeClubRepo{st}, fakeInscriptionRepo{st},
		fakeZoneRepo{st}, fakeMatchRepo{st}, hub, 2, discardLogger())
}

func eliminationMatches(st *store) []*models.Match {
	out := make([]*models.Match, 0)
	for _, id := range sortedKeys(st.matches) {
		if m := st.matches[id]; m.IsElimination() {
			out = append(out, m)
		}
	}
	return out
}

func TestGenerateAndSaveBracket_FourQualifiers(t *testing.T) {
	st := zonePhaseStore("A", "B")
	hub := &recordingHub{}
	svc := newBracketService(t, st, hub, true)

	bracket, err := svc.GenerateAndSaveBracket(context.Background(), organizer, tournamentID)
	require.NoError(t, err)

	// Winners first, then runners-up: A1, B1, A2, B2.
	assert.Equal(t, []int{201, 204, 202, 205}, bracket.Qualifiers)
	assert.Empty(t, bracket.Byes)
	require.Len(t, bracket.Matches, 3)

	semis := bracket.Matches[:2]
	final := bracket.Matches[2]
	assert.Equal(t, models.RoundFinal, final.Round)
	for i, semi := range semis {
		assert.Equal(t, models.RoundSemifinal, semi.Round)
		assert.Equal(t, models.MatchPending, semi.Status)
		require.NotNil(t, semi.NextMatchID)
		assert.Equal(t, final.ID, *semi.NextMatchID)
		assert.Equal(t, i+1, *semi.NextSlot)
	}
	// 1 v 4, 2 v 3.
	assert.Equal(t, 201, *semis[0].Couple1ID)
	assert.Equal(t, 205, *semis[0].Couple2ID)
	assert.Equal(t, 204, *semis[1].Couple1ID)
	assert.Equal(t, 202, *semis[1].Couple2ID)
	assert.Nil(t, final.Couple1ID)
	assert.Nil(t, final.NextMatchID)

	stored := st.matches[semis[0].ID]
	require.NotNil(t, stored.NextMatchID)
	assert.Equal(t, final.ID, *stored.NextMatchID)
	assert.Equal(t, models.StatusBracketPhase, st.tournaments[tournamentID].Status)
	assert.Equal(t, []string{brackets.MessageBracketGenerated}, hub.messages)
}

func TestGenerateAndSaveBracket_SixQualifiersGetTwoByes(t *testing.T) {
	st := zonePhaseStore("A", "B", "C")
	svc := newBracketService(t, st, nil, true)

	bracket, err := svc.GenerateAndSaveBracket(context.Background(), organizer, tournamentID)
	require.NoError(t, err)

	assert.Equal(t, []int{201, 204, 207, 202, 205, 208}, bracket.Qualifiers)
	assert.ElementsMatch(t, []int{201, 204}, bracket.Byes)

	counts := map[models.Round]int{}
	for _, m := range bracket.Matches {
		counts[m.Round]++
	}
	assert.Equal(t, map[models.Round]int{
		models.RoundQuarter:   2,
		models.RoundSemifinal: 2,
		models.RoundFinal:     1,
	}, counts)

	// Byes are already waiting in the semifinals.
	seated := map[int]bool{}
	for _, m := range bracket.Matches {
		if m.Round != models.RoundSemifinal {
			continue
		}
		for _, c := range []*int{m.Couple1ID, m.Couple2ID} {
			if c != nil {
				seated[*c] = true
			}
		}
	}
	assert.Equal(t, map[int]bool{201: true, 204: true}, seated)

	for _, m := range bracket.Matches {
		if m.Round == models.RoundQuarter {
			assert.NotNil(t, m.Couple1ID)
			assert.NotNil(t, m.Couple2ID)
		}
	}
}

func TestGenerateAndSaveBracket_SkipsCouplesMissingFromRoster(t *testing.T) {
	st := zonePhaseStore("A", "B")
	for id, i := range st.inscriptions {
		if i.CoupleID != nil && *i.CoupleID == 201 {
			delete(st.inscriptions, id)
		}
	}
	svc := newBracketService(t, st, nil, true)

	bracket, err := svc.GenerateAndSaveBracket(context.Background(), organizer, tournamentID)
	require.NoError(t, err)
	assert.Equal(t, []int{202, 204, 203, 205}, bracket.Qualifiers)
}

func TestGenerateAndSaveBracket_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("zone match still pending", func(t *testing.T) {
		st := zonePhaseStore("A", "B")
		for _, id := range sortedKeys(st.matches) {
			m := st.matches[id]
			m.Result1, m.Result2, m.WinnerID = nil, nil, nil
			m.Status = models.MatchPending
			break
		}
		_, err := newBracketService(t, st, nil, false).GenerateAndSaveBracket(ctx, organizer, tournamentID)
		assert.ErrorIs(t, err, ErrZonePhaseIncomplete)
		assert.Empty(t, eliminationMatches(st))
	})

	t.Run("canceled zone matches do not block", func(t *testing.T) {
		st := zonePhaseStore("A", "B")
		for _, id := range sortedKeys(st.matches) {
			m := st.matches[id]
			m.Result1, m.Result2, m.WinnerID = nil, nil, nil
			m.Status = models.MatchCanceled
			break
		}
		_, err := newBracketService(t, st, nil, true).GenerateAndSaveBracket(ctx, organizer, tournamentID)
		assert.NoError(t, err)
	})

	t.Run("not in zone phase", func(t *testing.T) {
		st := zonePhaseStore("A", "B")
		st.tournaments[tournamentID].Status = models.StatusPairing
		_, err := newBracketService(t, st, nil, false).GenerateAndSaveBracket(ctx, organizer, tournamentID)
		assert.ErrorIs(t, err, ErrZonePhaseNotActive)
	})

	t.Run("bracket already exists", func(t *testing.T) {
		st := zonePhaseStore("A", "B")
		m := &models.Match{ID: st.id(), TournamentID: tournamentID, Round: models.RoundFinal, Status: models.MatchPending}
		st.matches[m.ID] = m
		_, err := newBracketService(t, st, nil, false).GenerateAndSaveBracket(ctx, organizer, tournamentID)
		assert.ErrorIs(t, err, ErrBracketAlreadyExists)
	})

	t.Run("not the organizer", func(t *testing.T) {
		st := zonePhaseStore("A", "B")
		_, err := newBracketService(t, st, nil, false).GenerateAndSaveBracket(ctx, playerActor(1), tournamentID)
		assert.ErrorIs(t, err, ErrForbiddenOperation)
	})
}
