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

type BracketService interface {
	// GenerateAndSaveBracket seeds the zone qualifiers into a single
	// elimination bracket and persists it.
	GenerateAndSaveBracket(ctx context.Context, actor *Actor, tournamentID int) (*Bracket, error)
}

// Bracket is the persisted bracket plus the seeding it came from.
type Bracket struct {
	Qualifiers []int           `json:"qualifiers"`
	Byes       []int           `json:"byes"`
	Matches    []*models.Match `json:"matches"`
}

type bracketService struct {
	db              *sql.DB
	tournamentRepo  repositories.TournamentRepository
	clubRepo        repositories.ClubRepository
	inscriptionRepo repositories.InscriptionRepository
	zoneRepo        repositories.ZoneRepository
	matchRepo       repositories.MatchRepository
	generator       brackets.BracketGenerator
	hub             brackets.Broadcaster
	perZone         int
	logger          *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	clubRepo repositories.ClubRepository,
	inscriptionRepo repositories.InscriptionRepository,
	zoneRepo repositories.ZoneRepository,
	matchRepo repositories.MatchRepository,
	hub brackets.Broadcaster,
	qualifiersPerZone int,
	logger *slog.Logger,
) BracketService {
	if qualifiersPerZone < 1 {
		qualifiersPerZone = 2
	}
	return &bracketService{
		db:              db,
		tournamentRepo:  tournamentRepo,
		clubRepo:        clubRepo,
		inscriptionRepo: inscriptionRepo,
		zoneRepo:        zoneRepo,
		matchRepo:       matchRepo,
		generator:       brackets.NewSingleEliminationGenerator(),
		hub:             hub,
		perZone:         qualifiersPerZone,
		logger:          logger,
	}
}

func (s *bracketService) GenerateAndSaveBracket(ctx context.Context, actor *Actor, tournamentID int) (*Bracket, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	if err := ensureTournamentOwner(ctx, s.clubRepo, actor, tournament); err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusZonePhase {
		return nil, ErrZonePhaseNotActive
	}

	existing, err := s.matchRepo.CountElimination(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	if existing > 0 {
		return nil, ErrBracketAlreadyExists
	}

	qualifiers, err := s.qualifiers(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	generated, err := s.generator.GenerateBracket(ctx, brackets.GenerateBracketParams{
		TournamentID: tournamentID,
		Teams:        qualifiers,
	})
	if err != nil {
		if errors.Is(err, brackets.ErrNotEnoughTeams) {
			return nil, ErrNotEnoughCouples
		}
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	s.logger.InfoContext(ctx, "bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("generator", s.generator.GetName()),
		slog.Int("qualifiers", len(qualifiers)),
		slog.Int("bracket_size", brackets.BracketSize(len(qualifiers))))

	result := &Bracket{Qualifiers: qualifiers, Byes: make([]int, 0)}
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		matches, err := s.persist(ctx, tx, tournamentID, generated)
		if err != nil {
			return err
		}
		result.Matches = matches
		if err := s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.StatusBracketPhase); err != nil {
			return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, bm := range generated {
		if bm.IsBye && bm.ByeParticipantID != nil {
			result.Byes = append(result.Byes, *bm.ByeParticipantID)
		}
	}

	broadcast(s.hub, tournamentID, brackets.MessageBracketGenerated, result)
	return result, nil
}

// qualifiers checks that zone play is over and returns the seeded list of
// couples advancing to the bracket.
func (s *bracketService) qualifiers(ctx context.Context, tournamentID int) ([]int, error) {
	zones, err := s.zoneRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	round := models.RoundZone
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, repositories.ListMatchesFilter{Round: &round})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	for _, m := range matches {
		if m.Status != models.MatchFinished && m.Status != models.MatchCanceled {
			return nil, ErrZonePhaseIncomplete
		}
	}

	inscriptions, err := s.inscriptionRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	roster := make(map[int]bool, len(inscriptions))
	for _, i := range inscriptions {
		if i.CoupleID != nil {
			roster[*i.CoupleID] = true
		}
	}

	tables := zoneStandings(zones, matches)
	for zi := range tables {
		rows := make([]models.Standing, 0, len(tables[zi].Rows))
		for _, row := range tables[zi].Rows {
			if !roster[row.TeamID] {
				s.logger.WarnContext(ctx, "standings row references a couple missing from the roster, skipping",
					slog.Int("tournament_id", tournamentID),
					slog.String("zone", row.Zone),
					slog.Int("couple_id", row.TeamID))
				continue
			}
			rows = append(rows, row)
		}
		tables[zi].Rows = rows
	}

	return brackets.SelectQualifiers(tables, s.perZone), nil
}

// persist writes the bracket in two passes: create every real match, then
// link each one to the match its winner feeds. Byes get no row; their team
// is already in the next-round slot.
func (s *bracketService) persist(ctx context.Context, tx *sql.Tx, tournamentID int, generated []*brackets.BracketMatch) ([]*models.Match, error) {
	dbIDs := make(map[string]int, len(generated))
	created := make([]*models.Match, 0, len(generated))

	for _, bm := range generated {
		if bm.IsBye {
			s.logger.DebugContext(ctx, "bye, no match row created",
				slog.Int("tournament_id", tournamentID),
				slog.String("uid", bm.UID),
				slog.Int("couple_id", *bm.ByeParticipantID))
			continue
		}
		uid := bm.UID
		match := &models.Match{
			TournamentID: tournamentID,
			Round:        bm.Round,
			Couple1ID:    bm.Participant1ID,
			Couple2ID:    bm.Participant2ID,
			Status:       models.MatchPending,
			OrderInRound: bm.OrderInRound,
			BracketUID:   &uid,
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
		}
		dbIDs[bm.UID] = match.ID
		created = append(created, match)
	}

	byUID := make(map[string]*models.Match, len(created))
	for _, m := range created {
		byUID[*m.BracketUID] = m
	}

	for _, bm := range generated {
		if bm.IsBye || bm.NextMatchUID == nil {
			continue
		}
		nextID, ok := dbIDs[*bm.NextMatchUID]
		if !ok {
			return nil, fmt.Errorf("%w: next match %s of %s was not created", ErrCouldNotSave, *bm.NextMatchUID, bm.UID)
		}
		slot := bm.NextSlot
		if err := s.matchRepo.UpdateNextMatch(ctx, tx, dbIDs[bm.UID], &nextID, &slot); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
		}
		m := byUID[bm.UID]
		m.NextMatchID = &nextID
		m.NextSlot = &slot
	}
	return created, nil
}
