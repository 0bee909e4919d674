package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/repositories"
	"github.com/Dosada05/padel-manager/storage"
)

type TournamentService interface {
	Create(ctx context.Context, actor *Actor, input CreateTournamentInput) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsInput) ([]*models.Tournament, error)
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	Update(ctx context.Context, actor *Actor, id int, input UpdateTournamentInput) (*models.Tournament, error)
	UpdateStatus(ctx context.Context, actor *Actor, id int, status models.TournamentStatus) (*models.Tournament, error)
	UploadLogo(ctx context.Context, actor *Actor, id int, contentType string, file io.Reader) (*models.Tournament, error)
	GetFullTournamentData(ctx context.Context, id int) (*models.Tournament, error)
	AutoCancelExpired(ctx context.Context, now time.Time) (int, error)
}

type CreateTournamentInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	MaxCouples  int       `json:"max_couples"`
}

type UpdateTournamentInput struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	MaxCouples  *int       `json:"max_couples"`
}

type ListTournamentsInput struct {
	ClubID *int
	Status *models.TournamentStatus
	Limit  int
	Offset int
}

type tournamentService struct {
	tournamentRepo  repositories.TournamentRepository
	clubRepo        repositories.ClubRepository
	inscriptionRepo repositories.InscriptionRepository
	zoneRepo        repositories.ZoneRepository
	matchRepo       repositories.MatchRepository
	uploader        storage.FileUploader
	hub             brackets.Broadcaster
	logger          *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	clubRepo repositories.ClubRepository,
	inscriptionRepo repositories.InscriptionRepository,
	zoneRepo repositories.ZoneRepository,
	matchRepo repositories.MatchRepository,
	uploader storage.FileUploader,
	hub brackets.Broadcaster,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo:  tournamentRepo,
		clubRepo:        clubRepo,
		inscriptionRepo: inscriptionRepo,
		zoneRepo:        zoneRepo,
		matchRepo:       matchRepo,
		uploader:        uploader,
		hub:             hub,
		logger:          logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, actor *Actor, input CreateTournamentInput) (*models.Tournament, error) {
	if actor == nil || actor.Role != models.RoleClub {
		return nil, ErrForbiddenOperation
	}
	club, err := s.clubRepo.GetByOwnerID(ctx, nil, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrForbiddenOperation
		}
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}
	if err := validateTournamentDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.MaxCouples < 2 {
		return nil, ErrTournamentInvalidCapacity
	}

	t := &models.Tournament{
		ClubID:      club.ID,
		Name:        name,
		Description: trimmedOrNil(input.Description),
		Category:    trimmedOrNil(input.Category),
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      models.StatusNotStarted,
		MaxCouples:  input.MaxCouples,
	}
	if err := s.tournamentRepo.Create(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}

	s.logger.InfoContext(ctx, "tournament created", slog.Int("tournament_id", t.ID), slog.Int("club_id", club.ID))
	t.Club = club
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, filter ListTournamentsInput) ([]*models.Tournament, error) {
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, ErrTournamentInvalidStatus
	}
	list, err := s.tournamentRepo.List(ctx, nil, repositories.ListTournamentsFilter{
		ClubID: filter.ClubID,
		Status: filter.Status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	for _, t := range list {
		populateTournamentLogoURL(t, s.uploader)
	}
	return list, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) ownedTournament(ctx context.Context, actor *Actor, id int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	if err := ensureTournamentOwner(ctx, s.clubRepo, actor, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) Update(ctx context.Context, actor *Actor, id int, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.ownedTournament(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if t.Status != models.StatusNotStarted && t.Status != models.StatusPairing {
		return nil, ErrTournamentNotEditable
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrTournamentNameRequired
		}
		t.Name = name
	}
	if input.Description != nil {
		t.Description = trimmedOrNil(input.Description)
	}
	if input.Category != nil {
		t.Category = trimmedOrNil(input.Category)
	}
	if input.StartDate != nil {
		t.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		t.EndDate = *input.EndDate
	}
	if err := validateTournamentDates(t.StartDate, t.EndDate); err != nil {
		return nil, err
	}
	if input.MaxCouples != nil {
		registered, err := s.inscriptionRepo.CountPlayers(ctx, nil, t.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
		}
		if *input.MaxCouples < 2 || 2*(*input.MaxCouples) < registered {
			return nil, ErrTournamentInvalidCapacity
		}
		t.MaxCouples = *input.MaxCouples
	}

	if err := s.tournamentRepo.Update(ctx, nil, t); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

func (s *tournamentService) UpdateStatus(ctx context.Context, actor *Actor, id int, status models.TournamentStatus) (*models.Tournament, error) {
	if !status.Valid() {
		return nil, ErrTournamentInvalidStatus
	}
	t, err := s.ownedTournament(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(t.Status, status) {
		return nil, fmt.Errorf("%w: from %s to %s", ErrTournamentInvalidStatusTransition, t.Status, status)
	}
	if t.Status == status {
		return t, nil
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, status); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}
	s.logger.InfoContext(ctx, "tournament status changed",
		slog.Int("tournament_id", t.ID),
		slog.String("from", string(t.Status)),
		slog.String("to", string(status)))
	t.Status = status
	populateTournamentLogoURL(t, s.uploader)
	broadcast(s.hub, t.ID, brackets.MessageTournamentStatus, t)
	return t, nil
}

func (s *tournamentService) UploadLogo(ctx context.Context, actor *Actor, id int, contentType string, file io.Reader) (*models.Tournament, error) {
	t, err := s.ownedTournament(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	newKey, err := uploadLogo(ctx, s.uploader, "tournaments", t.ID, contentType, file)
	if err != nil {
		return nil, err
	}
	oldKey := t.LogoKey

	if err := s.tournamentRepo.UpdateLogoKey(ctx, nil, t.ID, &newKey); err != nil {
		if delErr := s.uploader.Delete(ctx, newKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned logo", slog.String("key", newKey), slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}
	if oldKey != nil && *oldKey != "" && *oldKey != newKey {
		if delErr := s.uploader.Delete(ctx, *oldKey); delErr != nil {
			s.logger.WarnContext(ctx, "failed to delete previous logo", slog.String("key", *oldKey), slog.Any("error", delErr))
		}
	}

	t.LogoKey = &newKey
	populateTournamentLogoURL(t, s.uploader)
	return t, nil
}

// GetFullTournamentData loads the tournament with its club, inscriptions,
// zones and matches in parallel.
func (s *tournamentService) GetFullTournamentData(ctx context.Context, id int) (*models.Tournament, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		club, err := s.clubRepo.GetByID(gCtx, nil, t.ClubID)
		if err != nil {
			s.logger.WarnContext(gCtx, "failed to load tournament club",
				slog.Int("tournament_id", id), slog.Int("club_id", t.ClubID), slog.Any("error", err))
			return nil
		}
		populateClubLogoURL(club, s.uploader)
		t.Club = club
		return nil
	})

	g.Go(func() error {
		inscriptions, err := s.inscriptionRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("inscriptions: %w", err)
		}
		t.Inscriptions = make([]models.Inscription, 0, len(inscriptions))
		for _, i := range inscriptions {
			t.Inscriptions = append(t.Inscriptions, *i)
		}
		return nil
	})

	g.Go(func() error {
		zones, err := s.zoneRepo.ListByTournament(gCtx, nil, id)
		if err != nil {
			return fmt.Errorf("zones: %w", err)
		}
		t.Zones = make([]models.Zone, 0, len(zones))
		for _, z := range zones {
			t.Zones = append(t.Zones, *z)
		}
		return nil
	})

	g.Go(func() error {
		matches, err := s.matchRepo.ListByTournament(gCtx, nil, id, repositories.ListMatchesFilter{})
		if err != nil {
			return fmt.Errorf("matches: %w", err)
		}
		t.Matches = dereferenceMatches(matches)
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "failed to load full tournament data", slog.Int("tournament_id", id), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	return t, nil
}

// AutoCancelExpired cancels tournaments still open for registration after
// their end date. Returns how many were canceled.
func (s *tournamentService) AutoCancelExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.tournamentRepo.ListExpiredNotStarted(ctx, nil, now)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}

	canceled := 0
	for _, t := range expired {
		if err := s.tournamentRepo.UpdateStatus(ctx, nil, t.ID, models.StatusCanceled); err != nil {
			s.logger.ErrorContext(ctx, "failed to auto-cancel tournament", slog.Int("tournament_id", t.ID), slog.Any("error", err))
			continue
		}
		canceled++
		s.logger.InfoContext(ctx, "tournament auto-canceled", slog.Int("tournament_id", t.ID))
	}
	return canceled, nil
}
