package repositories

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-manager/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUserRepository_CreateEmailConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("ana@club.com", "hash", "Ana", "Lopez", models.RolePlayer).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := repo.Create(context.Background(), nil, &models.User{
		Email: "ana@club.com", PasswordHash: "hash", FirstName: "Ana", LastName: "Lopez", Role: models.RolePlayer,
	})
	assert.ErrorIs(t, err, ErrUserEmailConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@club.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), nil, "nobody@club.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPlayerRepository_AddRankingPoints(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPlayerRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE players SET ranking_points = ranking_points + $1")).
		WithArgs(40, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE players SET ranking_points = ranking_points + $1")).
		WithArgs(40, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.AddRankingPoints(context.Background(), nil, 7, 40))
	assert.ErrorIs(t, repo.AddRankingPoints(context.Background(), nil, 99, 40), ErrPlayerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayerRepository_ListByIDsEmptySkipsQuery(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresPlayerRepository(db)

	players, err := repo.ListByIDs(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, players)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCoupleRepository_CreateSamePlayer(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresCoupleRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO couples")).
		WithArgs(3, 3).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "chk_couple_distinct_players"})

	err := repo.Create(context.Background(), nil, &models.Couple{Player1ID: 3, Player2ID: 3})
	assert.ErrorIs(t, err, ErrCoupleSamePlayer)
}

func TestTournamentRepository_ListBuildsFilter(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresTournamentRepository(db)

	clubID := 4
	status := models.StatusNotStarted
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "club_id", "name", "description", "category", "start_date", "end_date",
		"status", "max_couples", "winner_couple_id", "logo_key", "created_at",
	}).AddRow(1, 4, "Open de Primavera", nil, "4ta", now, now, "NOT_STARTED", 16, nil, nil, now)

	mock.ExpectQuery(regexp.QuoteMeta("AND club_id = $1 AND status = $2 ORDER BY start_date DESC, id DESC LIMIT $3")).
		WithArgs(4, status, 10).
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), nil, ListTournamentsFilter{ClubID: &clubID, Status: &status, Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Open de Primavera", list[0].Name)
	assert.Equal(t, models.StatusNotStarted, list[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInscriptionRepository_CreateConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresInscriptionRepository(db)

	playerID := 5
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO inscriptions")).
		WithArgs(1, &playerID, nil).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "inscriptions_player_id_tournament_id_key"})

	err := repo.Create(context.Background(), nil, &models.Inscription{TournamentID: 1, PlayerID: &playerID})
	assert.ErrorIs(t, err, ErrInscriptionConflict)
}

func TestInscriptionRepository_FindForPlayerNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresInscriptionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN couples c ON c.id = i.couple_id")).
		WithArgs(1, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tournament_id", "player_id", "couple_id", "created_at"}))

	_, err := repo.FindForPlayer(context.Background(), nil, 1, 5)
	assert.ErrorIs(t, err, ErrInscriptionNotFound)
}

func TestZoneRepository_CreateInsideTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresZoneRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO zones")).
		WithArgs(1, "A").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	for pos, couple := range []int{21, 22, 23} {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO zone_couples")).
			WithArgs(11, couple, pos+1).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	zone := &models.Zone{TournamentID: 1, Name: "A", CoupleIDs: []int{21, 22, 23}}
	require.NoError(t, repo.Create(context.Background(), tx, zone))
	require.NoError(t, tx.Commit())

	assert.Equal(t, 11, zone.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestZoneRepository_ListByTournament(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresZoneRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM zones z")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tournament_id", "name", "couples"}).
			AddRow(11, 1, "A", "{21,22,23}").
			AddRow(12, 1, "B", "{}"))

	zones, err := repo.ListByTournament(context.Background(), nil, 1)
	require.NoError(t, err)
	require.Len(t, zones, 2)
	assert.Equal(t, []int{21, 22, 23}, zones[0].CoupleIDs)
	assert.Empty(t, zones[1].CoupleIDs)
}

func TestMatchRepository_ListAndUpdate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresMatchRepository(db)
	now := time.Now()

	cols := []string{
		"id", "tournament_id", "round", "zone_id", "name", "couple1_id", "couple2_id",
		"result_couple1", "result_couple2", "status", "court", "winner_id",
		"order_in_round", "bracket_uid", "next_match_id", "next_slot", "created_at",
	}
	round := models.RoundFinal
	mock.ExpectQuery(regexp.QuoteMeta("AND m.round = $2")).
		WithArgs(1, round).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(30, 1, "FINAL", nil, nil, 21, 24, nil, nil, "PENDING", nil, nil, 1, "R2M1", nil, nil, now))

	matches, err := repo.ListByTournament(context.Background(), nil, 1, ListMatchesFilter{Round: &round})
	require.NoError(t, err)
	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, models.RoundFinal, m.Round)
	assert.Nil(t, m.Zone)
	assert.False(t, m.HasResult())

	s1, s2, winner := 6, 3, 21
	m.Result1, m.Result2, m.WinnerID, m.Status = &s1, &s2, &winner, models.MatchFinished
	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET result_couple1 = $1")).
		WithArgs(&s1, &s2, models.MatchFinished, &winner, 30).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateResult(context.Background(), nil, m))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE matches SET result_couple1 = $1")).
		WillReturnError(&pq.Error{Code: "23514", Constraint: "chk_match_result_pair"})
	err = repo.UpdateResult(context.Background(), nil, m)
	assert.True(t, errors.Is(err, ErrMatchInvalidResult))

	assert.NoError(t, mock.ExpectationsWereMet())
}
