package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/repositories"
)

type InscriptionService interface {
	// Register signs the caller up, alone or with a partner as a couple.
	Register(ctx context.Context, actor *Actor, tournamentID int, input RegisterInscriptionInput) (*models.Inscription, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Inscription, error)
	Delete(ctx context.Context, actor *Actor, inscriptionID int) error
	// PairPlayers turns two individual inscriptions into one couple inscription.
	PairPlayers(ctx context.Context, actor *Actor, tournamentID int, input PairPlayersInput) (*models.Inscription, error)
}

type RegisterInscriptionInput struct {
	PartnerPlayerID *int `json:"partner_player_id,omitempty"`
}

type PairPlayersInput struct {
	Player1ID int `json:"player1_id"`
	Player2ID int `json:"player2_id"`
}

type inscriptionService struct {
	db              *sql.DB
	inscriptionRepo repositories.InscriptionRepository
	tournamentRepo  repositories.TournamentRepository
	playerRepo      repositories.PlayerRepository
	coupleRepo      repositories.CoupleRepository
	clubRepo        repositories.ClubRepository
	logger          *slog.Logger
}

func NewInscriptionService(
	db *sql.DB,
	inscriptionRepo repositories.InscriptionRepository,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	coupleRepo repositories.CoupleRepository,
	clubRepo repositories.ClubRepository,
	logger *slog.Logger,
) InscriptionService {
	return &inscriptionService{
		db:              db,
		inscriptionRepo: inscriptionRepo,
		tournamentRepo:  tournamentRepo,
		playerRepo:      playerRepo,
		coupleRepo:      coupleRepo,
		clubRepo:        clubRepo,
		logger:          logger,
	}
}

// isRegistered reports whether the player already holds a spot, alone or in a couple.
func (s *inscriptionService) isRegistered(ctx context.Context, tournamentID, playerID int) (bool, error) {
	_, err := s.inscriptionRepo.FindForPlayer(ctx, nil, tournamentID, playerID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repositories.ErrInscriptionNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
}

// Register checks, in order: authenticated, has a player profile, not yet
// registered (both members for a couple), registration open, capacity.
// The first failed check is returned.
func (s *inscriptionService) Register(ctx context.Context, actor *Actor, tournamentID int, input RegisterInscriptionInput) (*models.Inscription, error) {
	if actor == nil {
		return nil, ErrAuthenticationRequired
	}

	player, err := s.playerRepo.GetByUserID(ctx, nil, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrNoPlayerProfile
		}
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}

	var partner *models.Player
	if input.PartnerPlayerID != nil {
		if *input.PartnerPlayerID == player.ID {
			return nil, ErrPartnerIsSelf
		}
		partner, err = s.playerRepo.GetByID(ctx, nil, *input.PartnerPlayerID)
		if err != nil {
			return nil, loadError(err, map[error]error{repositories.ErrPlayerNotFound: ErrPlayerNotFound})
		}
	}

	registered, err := s.isRegistered(ctx, tournamentID, player.ID)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, ErrAlreadyRegistered
	}
	if partner != nil {
		registered, err = s.isRegistered(ctx, tournamentID, partner.ID)
		if err != nil {
			return nil, err
		}
		if registered {
			return nil, ErrPartnerRegistered
		}
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	if !tournament.Status.AcceptsInscriptions() {
		return nil, ErrRegistrationNotOpen
	}

	// Мест 2*MaxCouples игроков: пара занимает два, одиночка одно.
	needed := 1
	if partner != nil {
		needed = 2
	}
	registeredPlayers, err := s.inscriptionRepo.CountPlayers(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	if registeredPlayers+needed > 2*tournament.MaxCouples {
		return nil, ErrTournamentFull
	}

	inscription := &models.Inscription{TournamentID: tournamentID}
	if partner == nil {
		playerID := player.ID
		inscription.PlayerID = &playerID
		if err := s.inscriptionRepo.Create(ctx, nil, inscription); err != nil {
			return nil, s.mapCreateError(err)
		}
		inscription.Player = player
	} else {
		err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
			couple, err := s.findOrCreateCouple(ctx, tx, player.ID, partner.ID)
			if err != nil {
				return err
			}
			coupleID := couple.ID
			inscription.CoupleID = &coupleID
			if err := s.inscriptionRepo.Create(ctx, tx, inscription); err != nil {
				return s.mapCreateError(err)
			}
			couple.Player1, couple.Player2 = player, partner
			inscription.Couple = couple
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "inscription created",
		slog.Int("tournament_id", tournamentID),
		slog.Int("inscription_id", inscription.ID),
		slog.Int("player_id", player.ID))
	return inscription, nil
}

// findOrCreateCouple reuses an existing couple of the two players; couples
// are never modified once created.
func (s *inscriptionService) findOrCreateCouple(ctx context.Context, exec repositories.SQLExecutor, player1ID, player2ID int) (*models.Couple, error) {
	couple, err := s.coupleRepo.FindByPlayers(ctx, exec, player1ID, player2ID)
	if err == nil {
		return couple, nil
	}
	if !errors.Is(err, repositories.ErrCoupleNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	couple = &models.Couple{Player1ID: player1ID, Player2ID: player2ID}
	if err := s.coupleRepo.Create(ctx, exec, couple); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCoupleSamePlayer):
			return nil, ErrPartnerIsSelf
		case errors.Is(err, repositories.ErrCouplePlayerNotExists):
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}
	return couple, nil
}

func (s *inscriptionService) mapCreateError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrInscriptionConflict):
		return ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrInscriptionInvalidTarget):
		return ErrTournamentNotFound
	}
	return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
}

func (s *inscriptionService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Inscription, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	inscriptions, err := s.inscriptionRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	if err := s.attachPeople(ctx, inscriptions); err != nil {
		return nil, err
	}
	return inscriptions, nil
}

// attachPeople fills Player and Couple (with both players) on each inscription.
func (s *inscriptionService) attachPeople(ctx context.Context, inscriptions []*models.Inscription) error {
	coupleIDs := make([]int, 0)
	for _, i := range inscriptions {
		if i.CoupleID != nil {
			coupleIDs = append(coupleIDs, *i.CoupleID)
		}
	}
	couples, err := s.coupleRepo.ListByIDs(ctx, nil, coupleIDs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	couplesByID := make(map[int]*models.Couple, len(couples))

	playerIDs := make([]int, 0)
	for _, c := range couples {
		couplesByID[c.ID] = c
		playerIDs = append(playerIDs, c.Player1ID, c.Player2ID)
	}
	for _, i := range inscriptions {
		if i.PlayerID != nil {
			playerIDs = append(playerIDs, *i.PlayerID)
		}
	}
	players, err := s.playerRepo.ListByIDs(ctx, nil, playerIDs)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	playersByID := make(map[int]*models.Player, len(players))
	for _, p := range players {
		playersByID[p.ID] = p
	}

	for _, c := range couples {
		c.Player1 = playersByID[c.Player1ID]
		c.Player2 = playersByID[c.Player2ID]
	}
	for _, i := range inscriptions {
		if i.PlayerID != nil {
			i.Player = playersByID[*i.PlayerID]
		}
		if i.CoupleID != nil {
			i.Couple = couplesByID[*i.CoupleID]
		}
	}
	return nil
}

// Delete lets a player withdraw their own inscription, or the organizer
// remove any, while registration is still open.
func (s *inscriptionService) Delete(ctx context.Context, actor *Actor, inscriptionID int) error {
	if actor == nil {
		return ErrForbiddenOperation
	}
	inscription, err := s.inscriptionRepo.GetByID(ctx, nil, inscriptionID)
	if err != nil {
		return loadError(err, map[error]error{repositories.ErrInscriptionNotFound: ErrInscriptionNotFound})
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, inscription.TournamentID)
	if err != nil {
		return loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	if tournament.Status != models.StatusNotStarted && tournament.Status != models.StatusPairing {
		return ErrInscriptionNotRemoval
	}

	if ownerErr := ensureTournamentOwner(ctx, s.clubRepo, actor, tournament); ownerErr != nil {
		if !errors.Is(ownerErr, ErrForbiddenOperation) {
			return ownerErr
		}
		owns, err := s.playerOwnsInscription(ctx, actor, inscription)
		if err != nil {
			return err
		}
		if !owns {
			return ErrForbiddenOperation
		}
	}

	if err := s.inscriptionRepo.Delete(ctx, nil, inscription.ID); err != nil {
		return loadError(err, map[error]error{repositories.ErrInscriptionNotFound: ErrInscriptionNotFound})
	}
	s.logger.InfoContext(ctx, "inscription removed",
		slog.Int("tournament_id", tournament.ID), slog.Int("inscription_id", inscription.ID), slog.Int("user_id", actor.UserID))
	return nil
}

func (s *inscriptionService) playerOwnsInscription(ctx context.Context, actor *Actor, inscription *models.Inscription) (bool, error) {
	if actor.Role != models.RolePlayer {
		return false, nil
	}
	player, err := s.playerRepo.GetByUserID(ctx, nil, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	if inscription.PlayerID != nil {
		return *inscription.PlayerID == player.ID, nil
	}
	couple, err := s.coupleRepo.GetByID(ctx, nil, *inscription.CoupleID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	return couple.HasPlayer(player.ID), nil
}

// PairPlayers is the organizer's tool for the PAIRING phase: both players
// must hold individual inscriptions, which get replaced by one couple
// inscription in a single transaction.
func (s *inscriptionService) PairPlayers(ctx context.Context, actor *Actor, tournamentID int, input PairPlayersInput) (*models.Inscription, error) {
	if input.Player1ID == input.Player2ID {
		return nil, ErrPartnerIsSelf
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	if err := ensureTournamentOwner(ctx, s.clubRepo, actor, tournament); err != nil {
		return nil, err
	}
	if tournament.Status != models.StatusNotStarted && tournament.Status != models.StatusPairing {
		return nil, ErrRegistrationNotOpen
	}

	individual := make([]*models.Inscription, 0, 2)
	for _, playerID := range []int{input.Player1ID, input.Player2ID} {
		i, err := s.inscriptionRepo.FindForPlayer(ctx, nil, tournamentID, playerID)
		if err != nil {
			return nil, loadError(err, map[error]error{repositories.ErrInscriptionNotFound: ErrInscriptionNotFound})
		}
		if i.PlayerID == nil {
			return nil, fmt.Errorf("%w: player %d", ErrAlreadyRegistered, playerID)
		}
		individual = append(individual, i)
	}

	inscription := &models.Inscription{TournamentID: tournamentID}
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		for _, i := range individual {
			if err := s.inscriptionRepo.Delete(ctx, tx, i.ID); err != nil {
				return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
			}
		}
		couple, err := s.findOrCreateCouple(ctx, tx, input.Player1ID, input.Player2ID)
		if err != nil {
			return err
		}
		coupleID := couple.ID
		inscription.CoupleID = &coupleID
		inscription.Couple = couple
		if err := s.inscriptionRepo.Create(ctx, tx, inscription); err != nil {
			return s.mapCreateError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "players paired",
		slog.Int("tournament_id", tournamentID),
		slog.Int("couple_id", *inscription.CoupleID))
	return inscription, nil
}
