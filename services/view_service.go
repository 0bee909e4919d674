package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/repositories"
)

// ViewService builds the tournament page for the caller's role.
type ViewService interface {
	TournamentView(ctx context.Context, actor *Actor, tournamentID int) (interface{}, error)
}

type PublicTournamentView struct {
	View       string                   `json:"view"`
	Tournament *models.Tournament       `json:"tournament"`
	Standings  []brackets.ZoneStandings `json:"standings"`
}

type PlayerTournamentView struct {
	PublicTournamentView
	PlayerID    int                 `json:"player_id"`
	Inscription *models.Inscription `json:"inscription,omitempty"`
	MyMatches   []models.Match      `json:"my_matches"`
	CanRegister bool                `json:"can_register"`
}

type ClubTournamentView struct {
	PublicTournamentView
	CanStartZones      bool `json:"can_start_zones"`
	CanGenerateBracket bool `json:"can_generate_bracket"`
	PendingMatches     int  `json:"pending_matches"`
}

type CoachTournamentView struct {
	PublicTournamentView
	CoachID int `json:"coach_id"`
}

type viewService struct {
	tournaments TournamentService
	clubRepo    repositories.ClubRepository
	playerRepo  repositories.PlayerRepository
	coachRepo   repositories.CoachRepository
	coupleRepo  repositories.CoupleRepository
}

func NewViewService(
	tournaments TournamentService,
	clubRepo repositories.ClubRepository,
	playerRepo repositories.PlayerRepository,
	coachRepo repositories.CoachRepository,
	coupleRepo repositories.CoupleRepository,
) ViewService {
	return &viewService{
		tournaments: tournaments,
		clubRepo:    clubRepo,
		playerRepo:  playerRepo,
		coachRepo:   coachRepo,
		coupleRepo:  coupleRepo,
	}
}

func (s *viewService) TournamentView(ctx context.Context, actor *Actor, tournamentID int) (interface{}, error) {
	t, err := s.tournaments.GetFullTournamentData(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	zones := make([]*models.Zone, len(t.Zones))
	for i := range t.Zones {
		zones[i] = &t.Zones[i]
	}
	matches := make([]*models.Match, len(t.Matches))
	for i := range t.Matches {
		matches[i] = &t.Matches[i]
	}
	public := PublicTournamentView{View: "public", Tournament: t, Standings: zoneStandings(zones, matches)}

	if actor == nil {
		return public, nil
	}

	switch actor.Role {
	case models.RolePlayer:
		return s.playerView(ctx, actor, public)
	case models.RoleClub, models.RoleAdmin:
		err := ensureTournamentOwner(ctx, s.clubRepo, actor, t)
		if errors.Is(err, ErrForbiddenOperation) {
			return public, nil
		}
		if err != nil {
			return nil, err
		}
		return clubView(public), nil
	case models.RoleCoach:
		coach, err := s.coachRepo.GetByUserID(ctx, nil, actor.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrCoachNotFound) {
				return public, nil
			}
			return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
		}
		public.View = "coach"
		return CoachTournamentView{PublicTournamentView: public, CoachID: coach.ID}, nil
	}
	return public, nil
}

func (s *viewService) playerView(ctx context.Context, actor *Actor, public PublicTournamentView) (interface{}, error) {
	player, err := s.playerRepo.GetByUserID(ctx, nil, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return public, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}

	t := public.Tournament
	view := PlayerTournamentView{PlayerID: player.ID, MyMatches: make([]models.Match, 0)}

	coupleIDs := make([]int, 0)
	for i := range t.Inscriptions {
		if t.Inscriptions[i].CoupleID != nil {
			coupleIDs = append(coupleIDs, *t.Inscriptions[i].CoupleID)
		}
	}
	couples, err := s.coupleRepo.ListByIDs(ctx, nil, coupleIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	myCouple := 0
	for _, c := range couples {
		if c.HasPlayer(player.ID) {
			myCouple = c.ID
			break
		}
	}

	for i := range t.Inscriptions {
		ins := &t.Inscriptions[i]
		if (ins.PlayerID != nil && *ins.PlayerID == player.ID) || (ins.CoupleID != nil && *ins.CoupleID == myCouple) {
			view.Inscription = ins
			break
		}
	}
	if myCouple != 0 {
		for _, m := range t.Matches {
			if (m.Couple1ID != nil && *m.Couple1ID == myCouple) || (m.Couple2ID != nil && *m.Couple2ID == myCouple) {
				view.MyMatches = append(view.MyMatches, m)
			}
		}
	}

	view.CanRegister = view.Inscription == nil && t.Status.AcceptsInscriptions()
	public.View = "player"
	view.PublicTournamentView = public
	return view, nil
}

func clubView(public PublicTournamentView) ClubTournamentView {
	t := public.Tournament
	view := ClubTournamentView{}

	zonePending := 0
	bracketStarted := false
	for _, m := range t.Matches {
		if m.Status == models.MatchPending || m.Status == models.MatchInProgress {
			view.PendingMatches++
			if m.Round == models.RoundZone {
				zonePending++
			}
		}
		if m.IsElimination() {
			bracketStarted = true
		}
	}

	view.CanStartZones = t.Status == models.StatusNotStarted || t.Status == models.StatusPairing
	view.CanGenerateBracket = t.Status == models.StatusZonePhase && zonePending == 0 && !bracketStarted
	public.View = "club"
	view.PublicTournamentView = public
	return view
}
