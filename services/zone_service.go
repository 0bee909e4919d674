package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/repositories"
)

type ZoneService interface {
	StartZonePhase(ctx context.Context, actor *Actor, tournamentID int) (*ZonePhase, error)
	Standings(ctx context.Context, tournamentID int) ([]brackets.ZoneStandings, error)
}

// ZonePhase is what StartZonePhase created.
type ZonePhase struct {
	Zones   []*models.Zone  `json:"zones"`
	Matches []*models.Match `json:"matches"`
}

type zoneService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	clubRepo        repositories.ClubRepository
	inscriptionRepo repositories.InscriptionRepository
	zoneRepo        repositories.ZoneRepository
	matchRepo       repositories.MatchRepository
	generator       brackets.BracketGenerator
	hub             brackets.Broadcaster
	zoneSize        int
	logger          *slog.Logger
}

func NewZoneService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	clubRepo repositories.ClubRepository,
	inscriptionRepo repositories.InscriptionRepository,
	zoneRepo repositories.ZoneRepository,
	matchRepo repositories.MatchRepository,
	hub brackets.Broadcaster,
	zoneSize int,
	logger *slog.Logger,
) ZoneService {
	if zoneSize < brackets.MinZoneSize {
		zoneSize = brackets.MinZoneSize
	}
	return &zoneService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		clubRepo:        clubRepo,
		inscriptionRepo: inscriptionRepo,
		zoneRepo:        zoneRepo,
		matchRepo:       matchRepo,
		generator:       brackets.NewRoundRobinGenerator(),
		hub:             hub,
		zoneSize:        zoneSize,
		logger:          logger,
	}
}

// StartZonePhase closes registration, deals the registered couples into
// zones and creates every zone match. Individual inscriptions that were
// never paired do not play.
func (s *zoneService) StartZonePhase(ctx context.Context, actor *Actor, tournamentID int) (*ZonePhase, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	if err := ensureTournamentOwner(ctx, s.clubRepo, actor, tournament); err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusNotStarted && tournament.Status != models.StatusPairing {
		return nil, fmt.Errorf("%w: from %s to %s", ErrTournamentInvalidStatusTransition, tournament.Status, models.StatusZonePhase)
	}

	inscriptions, err := s.inscriptionRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	couples := make([]int, 0, len(inscriptions))
	unpaired := 0
	for _, i := range inscriptions {
		if i.CoupleID != nil {
			couples = append(couples, *i.CoupleID)
		} else {
			unpaired++
		}
	}
	if unpaired > 0 {
		s.logger.WarnContext(ctx, "unpaired players left out of the zone phase",
			slog.Int("tournament_id", tournamentID), slog.Int("unpaired", unpaired))
	}

	assignments, err := brackets.AssignZones(couples, s.zoneSize)
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, ErrNotEnoughCouples
		}
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	phase := &ZonePhase{
		Zones:   make([]*models.Zone, 0, len(assignments)),
		Matches: make([]*models.Match, 0),
	}

	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		for _, a := range assignments {
			zone := &models.Zone{TournamentID: tournamentID, Name: a.Name, CoupleIDs: a.Teams}
			if err := s.zoneRepo.Create(ctx, tx, zone); err != nil {
				return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
			}
			phase.Zones = append(phase.Zones, zone)

			generated, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
				TournamentID: tournamentID,
				Zone:         a.Name,
				Teams:        a.Teams,
			})
			if err != nil {
				return fmt.Errorf("%w: %w", ErrValidationFailed, err)
			}
			for _, bm := range generated {
				uid := bm.UID
				zoneID := zone.ID
				zoneName := zone.Name
				match := &models.Match{
					TournamentID: tournamentID,
					Round:        models.RoundZone,
					ZoneID:       &zoneID,
					Zone:         &zoneName,
					Couple1ID:    bm.Participant1ID,
					Couple2ID:    bm.Participant2ID,
					Status:       models.MatchPending,
					OrderInRound: bm.OrderInRound,
					BracketUID:   &uid,
				}
				if err := s.matchRepo.Create(ctx, tx, match); err != nil {
					return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
				}
				phase.Matches = append(phase.Matches, match)
			}
		}
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusZonePhase); err != nil {
			return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "zone phase started",
		slog.Int("tournament_id", tournamentID),
		slog.Int("zones", len(phase.Zones)),
		slog.Int("matches", len(phase.Matches)))
	broadcast(s.hub, tournamentID, brackets.MessageZonesCreated, phase)
	return phase, nil
}

func (s *zoneService) Standings(ctx context.Context, tournamentID int) ([]brackets.ZoneStandings, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	zones, err := s.zoneRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	round := models.RoundZone
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, repositories.ListMatchesFilter{Round: &round})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	return zoneStandings(zones, matches), nil
}

// zoneStandings computes the table of every zone, in zone order.
func zoneStandings(zones []*models.Zone, matches []*models.Match) []brackets.ZoneStandings {
	byZone := make(map[int][]*models.Match)
	for _, m := range matches {
		if m.ZoneID != nil {
			byZone[*m.ZoneID] = append(byZone[*m.ZoneID], m)
		}
	}
	result := make([]brackets.ZoneStandings, 0, len(zones))
	for _, z := range zones {
		result = append(result, brackets.ZoneStandings{
			Zone: z.Name,
			Rows: brackets.CalculateStandings(z.Name, byZone[z.ID]),
		})
	}
	return result
}
