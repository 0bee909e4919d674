package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/repositories"
)

func intPtr(v int) *int { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTxDB returns a sqlmock database for services that open transactions.
func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// store is an in-memory database shared by the fake repositories.
type store struct {
	nextID       int
	users        map[int]*models.User
	players      map[int]*models.Player
	clubs        map[int]*models.Club
	coaches      map[int]*models.Coach
	couples      map[int]*models.Couple
	tournaments  map[int]*models.Tournament
	inscriptions map[int]*models.Inscription
	zones        map[int]*models.Zone
	matches      map[int]*models.Match

	// failWith makes every read return this error.
	failWith error
}

func newStore() *store {
	return &store{
		nextID:       1000,
		users:        map[int]*models.User{},
		players:      map[int]*models.Player{},
		clubs:        map[int]*models.Club{},
		coaches:      map[int]*models.Coach{},
		couples:      map[int]*models.Couple{},
		tournaments:  map[int]*models.Tournament{},
		inscriptions: map[int]*models.Inscription{},
		zones:        map[int]*models.Zone{},
		matches:      map[int]*models.Match{},
	}
}

func (s *store) id() int {
	s.nextID++
	return s.nextID
}

func sortedKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// --- fixtures ---

func (s *store) addPlayer(id, userID int) *models.Player {
	uid := userID
	p := &models.Player{ID: id, UserID: &uid, FirstName: "Player", LastName: string(rune('A' + id%26))}
	s.players[id] = p
	return p
}

func (s *store) addClub(id, ownerID int) *models.Club {
	c := &models.Club{ID: id, OwnerID: ownerID, Name: "Club"}
	s.clubs[id] = c
	return c
}

func (s *store) addTournament(id, clubID int, status models.TournamentStatus, maxCouples int) *models.Tournament {
	t := &models.Tournament{
		ID: id, ClubID: clubID, Name: "Open", Status: status, MaxCouples: maxCouples,
		StartDate: time.Date(2026, 11, 1, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 11, 3, 20, 0, 0, 0, time.UTC),
	}
	s.tournaments[id] = t
	return t
}

func (s *store) addCouple(id, p1, p2 int) *models.Couple {
	c := &models.Couple{ID: id, Player1ID: p1, Player2ID: p2}
	s.couples[id] = c
	return c
}

func (s *store) addInscription(tournamentID int, playerID, coupleID *int) *models.Inscription {
	i := &models.Inscription{ID: s.id(), TournamentID: tournamentID, PlayerID: playerID, CoupleID: coupleID}
	s.inscriptions[i.ID] = i
	return i
}

// --- users ---

type fakeUserRepo struct{ *store }

func (r fakeUserRepo) Create(_ context.Context, _ repositories.SQLExecutor, u *models.User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	u.ID = r.id()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.User, error) {
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r fakeUserRepo) GetByEmail(_ context.Context, _ repositories.SQLExecutor, email string) (*models.User, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

// --- players ---

type fakePlayerRepo struct{ *store }

func (r fakePlayerRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Player) error {
	p.ID = r.id()
	cp := *p
	r.players[p.ID] = &cp
	return nil
}

func (r fakePlayerRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Player, error) {
	if p, ok := r.players[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r fakePlayerRepo) GetByUserID(_ context.Context, _ repositories.SQLExecutor, userID int) (*models.Player, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, id := range sortedKeys(r.players) {
		p := r.players[id]
		if p.UserID != nil && *p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r fakePlayerRepo) ListByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) ([]*models.Player, error) {
	out := make([]*models.Player, 0)
	for _, id := range ids {
		if p, ok := r.players[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakePlayerRepo) List(_ context.Context, _ repositories.SQLExecutor, limit, offset int) ([]*models.Player, error) {
	out := make([]*models.Player, 0)
	for _, id := range sortedKeys(r.players) {
		cp := *r.players[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakePlayerRepo) ListRanking(_ context.Context, _ repositories.SQLExecutor, limit, offset int) ([]*models.Player, error) {
	out := make([]*models.Player, 0)
	for _, id := range sortedKeys(r.players) {
		cp := *r.players[id]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RankingPoints > out[j].RankingPoints })
	return out, nil
}

func (r fakePlayerRepo) AddRankingPoints(_ context.Context, _ repositories.SQLExecutor, playerID, points int) error {
	p, ok := r.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.RankingPoints += points
	return nil
}

// --- clubs ---

type fakeClubRepo struct{ *store }

func (r fakeClubRepo) Create(_ context.Context, _ repositories.SQLExecutor, c *models.Club) error {
	for _, existing := range r.clubs {
		if existing.Name == c.Name {
			return repositories.ErrClubNameConflict
		}
	}
	c.ID = r.id()
	cp := *c
	r.clubs[c.ID] = &cp
	return nil
}

func (r fakeClubRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Club, error) {
	if c, ok := r.clubs[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repositories.ErrClubNotFound
}

func (r fakeClubRepo) GetByOwnerID(_ context.Context, _ repositories.SQLExecutor, ownerID int) (*models.Club, error) {
	for _, c := range r.clubs {
		if c.OwnerID == ownerID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrClubNotFound
}

func (r fakeClubRepo) List(_ context.Context, _ repositories.SQLExecutor, limit, offset int) ([]*models.Club, error) {
	out := make([]*models.Club, 0)
	for _, id := range sortedKeys(r.clubs) {
		cp := *r.clubs[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakeClubRepo) Update(_ context.Context, _ repositories.SQLExecutor, c *models.Club) error {
	if _, ok := r.clubs[c.ID]; !ok {
		return repositories.ErrClubNotFound
	}
	cp := *c
	r.clubs[c.ID] = &cp
	return nil
}

func (r fakeClubRepo) UpdateLogoKey(_ context.Context, _ repositories.SQLExecutor, clubID int, logoKey *string) error {
	c, ok := r.clubs[clubID]
	if !ok {
		return repositories.ErrClubNotFound
	}
	c.LogoKey = logoKey
	return nil
}

// --- coaches ---

type fakeCoachRepo struct{ *store }

func (r fakeCoachRepo) Create(_ context.Context, _ repositories.SQLExecutor, c *models.Coach) error {
	if c.ClubID != nil {
		if _, ok := r.clubs[*c.ClubID]; !ok {
			return repositories.ErrCoachClubNotFound
		}
	}
	c.ID = r.id()
	cp := *c
	r.coaches[c.ID] = &cp
	return nil
}

func (r fakeCoachRepo) GetByUserID(_ context.Context, _ repositories.SQLExecutor, userID int) (*models.Coach, error) {
	for _, c := range r.coaches {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrCoachNotFound
}

// --- couples ---

type fakeCoupleRepo struct{ *store }

func (r fakeCoupleRepo) Create(_ context.Context, _ repositories.SQLExecutor, c *models.Couple) error {
	if c.Player1ID == c.Player2ID {
		return repositories.ErrCoupleSamePlayer
	}
	c.ID = r.id()
	cp := *c
	r.couples[c.ID] = &cp
	return nil
}

func (r fakeCoupleRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Couple, error) {
	if c, ok := r.couples[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repositories.ErrCoupleNotFound
}

func (r fakeCoupleRepo) FindByPlayers(_ context.Context, _ repositories.SQLExecutor, p1, p2 int) (*models.Couple, error) {
	for _, id := range sortedKeys(r.couples) {
		c := r.couples[id]
		if c.HasPlayer(p1) && c.HasPlayer(p2) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrCoupleNotFound
}

func (r fakeCoupleRepo) ListByIDs(_ context.Context, _ repositories.SQLExecutor, ids []int) ([]*models.Couple, error) {
	out := make([]*models.Couple, 0)
	for _, id := range ids {
		if c, ok := r.couples[id]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- tournaments ---

type fakeTournamentRepo struct{ *store }

func (r fakeTournamentRepo) Create(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	t.ID = r.id()
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Tournament, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	if t, ok := r.tournaments[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r fakeTournamentRepo) List(_ context.Context, _ repositories.SQLExecutor, f repositories.ListTournamentsFilter) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0)
	for _, id := range sortedKeys(r.tournaments) {
		t := r.tournaments[id]
		if f.ClubID != nil && t.ClubID != *f.ClubID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakeTournamentRepo) Update(_ context.Context, _ repositories.SQLExecutor, t *models.Tournament) error {
	if _, ok := r.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	cp := *t
	r.tournaments[t.ID] = &cp
	return nil
}

func (r fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r fakeTournamentRepo) SetWinner(_ context.Context, _ repositories.SQLExecutor, id int, winner int) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.WinnerCoupleID = &winner
	t.Status = models.StatusFinished
	return nil
}

func (r fakeTournamentRepo) UpdateLogoKey(_ context.Context, _ repositories.SQLExecutor, id int, key *string) error {
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = key
	return nil
}

func (r fakeTournamentRepo) ListExpiredNotStarted(_ context.Context, _ repositories.SQLExecutor, now time.Time) ([]*models.Tournament, error) {
	out := make([]*models.Tournament, 0)
	for _, id := range sortedKeys(r.tournaments) {
		t := r.tournaments[id]
		if t.Status == models.StatusNotStarted && !t.EndDate.After(now) {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- inscriptions ---

type fakeInscriptionRepo struct{ *store }

func (r fakeInscriptionRepo) Create(_ context.Context, _ repositories.SQLExecutor, i *models.Inscription) error {
	for _, existing := range r.inscriptions {
		if existing.TournamentID != i.TournamentID {
			continue
		}
		if (i.PlayerID != nil && existing.PlayerID != nil && *i.PlayerID == *existing.PlayerID) ||
			(i.CoupleID != nil && existing.CoupleID != nil && *i.CoupleID == *existing.CoupleID) {
			return repositories.ErrInscriptionConflict
		}
	}
	i.ID = r.id()
	cp := *i
	r.inscriptions[i.ID] = &cp
	return nil
}

func (r fakeInscriptionRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Inscription, error) {
	if i, ok := r.inscriptions[id]; ok {
		cp := *i
		return &cp, nil
	}
	return nil, repositories.ErrInscriptionNotFound
}

func (r fakeInscriptionRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id int) error {
	if _, ok := r.inscriptions[id]; !ok {
		return repositories.ErrInscriptionNotFound
	}
	delete(r.inscriptions, id)
	return nil
}

func (r fakeInscriptionRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Inscription, error) {
	out := make([]*models.Inscription, 0)
	for _, id := range sortedKeys(r.inscriptions) {
		i := r.inscriptions[id]
		if i.TournamentID == tournamentID {
			cp := *i
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeInscriptionRepo) FindForPlayer(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID int) (*models.Inscription, error) {
	for _, id := range sortedKeys(r.inscriptions) {
		i := r.inscriptions[id]
		if i.TournamentID != tournamentID {
			continue
		}
		if i.PlayerID != nil && *i.PlayerID == playerID {
			cp := *i
			return &cp, nil
		}
		if i.CoupleID != nil && r.couples[*i.CoupleID].HasPlayer(playerID) {
			cp := *i
			return &cp, nil
		}
	}
	return nil, repositories.ErrInscriptionNotFound
}

func (r fakeInscriptionRepo) CountPlayers(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	n := 0
	for _, i := range r.inscriptions {
		if i.TournamentID != tournamentID {
			continue
		}
		if i.CoupleID != nil {
			n += 2
		} else {
			n++
		}
	}
	return n, nil
}

// --- zones ---

type fakeZoneRepo struct{ *store }

func (r fakeZoneRepo) Create(_ context.Context, _ repositories.SQLExecutor, z *models.Zone) error {
	z.ID = r.id()
	cp := *z
	cp.CoupleIDs = append([]int(nil), z.CoupleIDs...)
	r.zones[z.ID] = &cp
	return nil
}

func (r fakeZoneRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int) ([]*models.Zone, error) {
	out := make([]*models.Zone, 0)
	for _, id := range sortedKeys(r.zones) {
		z := r.zones[id]
		if z.TournamentID == tournamentID {
			cp := *z
			out = append(out, &cp)
		}
	}
	return out, nil
}

// --- matches ---

type fakeMatchRepo struct{ *store }

func (r fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	m.ID = r.id()
	cp := *m
	r.matches[m.ID] = &cp
	return nil
}

func (r fakeMatchRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.Match, error) {
	if m, ok := r.matches[id]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, repositories.ErrMatchNotFound
}

func (r fakeMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID int, f repositories.ListMatchesFilter) ([]*models.Match, error) {
	out := make([]*models.Match, 0)
	for _, id := range sortedKeys(r.matches) {
		m := r.matches[id]
		if m.TournamentID != tournamentID {
			continue
		}
		if f.Round != nil && m.Round != *f.Round {
			continue
		}
		if f.ZoneID != nil && (m.ZoneID == nil || *m.ZoneID != *f.ZoneID) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r fakeMatchRepo) UpdateResult(_ context.Context, _ repositories.SQLExecutor, m *models.Match) error {
	stored, ok := r.matches[m.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Result1, stored.Result2, stored.Status, stored.WinnerID = m.Result1, m.Result2, m.Status, m.WinnerID
	return nil
}

func (r fakeMatchRepo) UpdateCouples(_ context.Context, _ repositories.SQLExecutor, id int, c1, c2 *int) error {
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Couple1ID, stored.Couple2ID = c1, c2
	return nil
}

func (r fakeMatchRepo) UpdateNextMatch(_ context.Context, _ repositories.SQLExecutor, id int, next, slot *int) error {
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.NextMatchID, stored.NextSlot = next, slot
	return nil
}

func (r fakeMatchRepo) UpdateStatusAndCourt(_ context.Context, _ repositories.SQLExecutor, id int, status models.MatchStatus, court *int) error {
	stored, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	stored.Status, stored.Court = status, court
	return nil
}

func (r fakeMatchRepo) CountElimination(_ context.Context, _ repositories.SQLExecutor, tournamentID int) (int, error) {
	n := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Round != models.RoundZone {
			n++
		}
	}
	return n, nil
}

// recordingHub captures broadcast message types.
type recordingHub struct {
	rooms    []string
	messages []string
}

func (h *recordingHub) BroadcastToRoom(roomID string, message interface{}) {
	h.rooms = append(h.rooms, roomID)
	if m, ok := message.(brackets.WebSocketMessage); ok {
		h.messages = append(h.messages, m.Type)
	}
}
