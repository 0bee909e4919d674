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

var ErrCannotCancelBracketMatch = errors.New("bracket matches cannot be canceled")

type MatchService interface {
	ListByTournament(ctx context.Context, tournamentID int, round *models.Round) ([]*models.Match, error)
	SubmitResult(ctx context.Context, actor *Actor, matchID int, input SubmitResultInput) (*models.Match, error)
	Update(ctx context.Context, actor *Actor, matchID int, input UpdateMatchInput) (*models.Match, error)
	Cancel(ctx context.Context, actor *Actor, matchID int) (*models.Match, error)
}

type SubmitResultInput struct {
	Score1 *int `json:"result_couple1"`
	Score2 *int `json:"result_couple2"`
}

type UpdateMatchInput struct {
	Court  *int    `json:"court"`
	Status *string `json:"status"`
}

// TournamentFinishedPayload is broadcast when the final is decided.
type TournamentFinishedPayload struct {
	TournamentID   int         `json:"tournament_id"`
	WinnerCoupleID int         `json:"winner_couple_id"`
	RankingAwards  map[int]int `json:"ranking_awards"`
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	tournamentRepo repositories.TournamentRepository
	clubRepo       repositories.ClubRepository
	coupleRepo     repositories.CoupleRepository
	playerRepo     repositories.PlayerRepository
	hub            brackets.Broadcaster
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	tournamentRepo repositories.TournamentRepository,
	clubRepo repositories.ClubRepository,
	coupleRepo repositories.CoupleRepository,
	playerRepo repositories.PlayerRepository,
	hub brackets.Broadcaster,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		tournamentRepo: tournamentRepo,
		clubRepo:       clubRepo,
		coupleRepo:     coupleRepo,
		playerRepo:     playerRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, round *models.Round) ([]*models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID, repositories.ListMatchesFilter{Round: round})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	return matches, nil
}

// loadForUpdate returns the match and its tournament once the actor is
// known to own the tournament.
func (s *matchService) loadForUpdate(ctx context.Context, actor *Actor, matchID int) (*models.Match, *models.Tournament, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, nil, loadError(err, map[error]error{repositories.ErrMatchNotFound: ErrMatchNotFound})
	}
	tournament, err := s.tournamentRepo.GetByID(ctx, nil, match.TournamentID)
	if err != nil {
		return nil, nil, loadError(err, map[error]error{repositories.ErrTournamentNotFound: ErrTournamentNotFound})
	}
	if err := ensureTournamentOwner(ctx, s.clubRepo, actor, tournament); err != nil {
		return nil, nil, err
	}
	return match, tournament, nil
}

// SubmitResult validates the scores, persists them and, for bracket
// matches, moves the winner into the next match, all in one transaction.
// A decided FINAL finishes the tournament and awards ranking points.
func (s *matchService) SubmitResult(ctx context.Context, actor *Actor, matchID int, input SubmitResultInput) (*models.Match, error) {
	if err := brackets.ValidateResult(input.Score1, input.Score2); err != nil {
		return nil, ErrMalformedResult
	}

	match, tournament, err := s.loadForUpdate(ctx, actor, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchCanceled || match.Couple1ID == nil || match.Couple2ID == nil {
		return nil, ErrMatchNotPlayable
	}

	expectedStatus := models.StatusZonePhase
	if match.IsElimination() {
		expectedStatus = models.StatusBracketPhase
	}
	if tournament.Status != expectedStatus {
		return nil, fmt.Errorf("%w: tournament is %s", ErrMatchNotPlayable, tournament.Status)
	}

	previousWinner := match.WinnerID
	match.Result1, match.Result2 = input.Score1, input.Score2
	match.Status = models.MatchFinished
	match.WinnerID = nil

	if match.IsElimination() {
		winner, err := brackets.DetermineWinner(match)
		if err != nil {
			if errors.Is(err, brackets.ErrTiedEliminationMatch) {
				return nil, ErrTiedEliminationMatch
			}
			return nil, fmt.Errorf("%w: %w", ErrMatchNotPlayable, err)
		}
		if previousWinner != nil && *previousWinner != winner {
			return nil, ErrMatchAlreadyFinished
		}
		match.WinnerID = &winner
	} else if *match.Result1 != *match.Result2 {
		winner := *match.Couple1ID
		if *match.Result2 > *match.Result1 {
			winner = *match.Couple2ID
		}
		match.WinnerID = &winner
	}

	var finished *TournamentFinishedPayload
	var advanced *models.Match

	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.matchRepo.UpdateResult(ctx, tx, match); err != nil {
			if errors.Is(err, repositories.ErrMatchInvalidResult) {
				return ErrMalformedResult
			}
			return fmt.Errorf("%w: %w", ErrCouldNotSave, err)
		}
		if !match.IsElimination() {
			return nil
		}

		if match.NextMatchID == nil {
			payload, err := s.finishTournament(ctx, tx, tournament.ID, *match.WinnerID)
			if err != nil {
				return err
			}
			finished = payload
			return nil
		}

		next, err := s.advance(ctx, tx, match)
		if err != nil {
			return err
		}
		advanced = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("match_id", match.ID),
		slog.String("round", string(match.Round)),
		slog.Int("score1", *match.Result1),
		slog.Int("score2", *match.Result2))

	broadcast(s.hub, tournament.ID, brackets.MessageMatchUpdated, match)
	if advanced != nil {
		broadcast(s.hub, tournament.ID, brackets.MessageMatchUpdated, advanced)
	}
	if finished != nil {
		s.logger.InfoContext(ctx, "tournament finished",
			slog.Int("tournament_id", tournament.ID), slog.Int("winner_couple_id", finished.WinnerCoupleID))
		broadcast(s.hub, tournament.ID, brackets.MessageTournamentFinished, finished)
	}
	return match, nil
}

// advance places the winner into its slot of the next match. Returns the
// next match when it changed.
func (s *matchService) advance(ctx context.Context, tx *sql.Tx, match *models.Match) (*models.Match, error) {
	if match.NextSlot == nil {
		return nil, fmt.Errorf("%w: match %d has a next match but no slot", ErrCouldNotSave, match.ID)
	}
	next, err := s.matchRepo.GetByID(ctx, tx, *match.NextMatchID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}

	changed, err := brackets.PlaceWinner(next, *match.NextSlot, *match.WinnerID)
	if err != nil {
		if errors.Is(err, brackets.ErrSlotOccupied) || errors.Is(err, brackets.ErrTeamAlreadyInRound) {
			return nil, fmt.Errorf("%w: %w", ErrBracketSlotConflict, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}
	if !changed {
		return nil, nil
	}
	if err := s.matchRepo.UpdateCouples(ctx, tx, next.ID, next.Couple1ID, next.Couple2ID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}
	return next, nil
}

// finishTournament records the champion and hands out ranking points to
// every player of every couple that took part.
func (s *matchService) finishTournament(ctx context.Context, tx *sql.Tx, tournamentID, winnerCoupleID int) (*TournamentFinishedPayload, error) {
	if err := s.tournamentRepo.SetWinner(ctx, tx, tournamentID, winnerCoupleID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tx, tournamentID, repositories.ListMatchesFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	awards := RankingAwards(matches, winnerCoupleID)

	coupleIDs := make([]int, 0, len(awards))
	for id := range awards {
		coupleIDs = append(coupleIDs, id)
	}
	couples, err := s.coupleRepo.ListByIDs(ctx, tx, coupleIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	for _, c := range couples {
		points := awards[c.ID]
		for _, playerID := range []int{c.Player1ID, c.Player2ID} {
			if err := s.playerRepo.AddRankingPoints(ctx, tx, playerID, points); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
			}
		}
	}

	return &TournamentFinishedPayload{
		TournamentID:   tournamentID,
		WinnerCoupleID: winnerCoupleID,
		RankingAwards:  awards,
	}, nil
}

// Update assigns a court and moves a match between PENDING and IN_PROGRESS.
func (s *matchService) Update(ctx context.Context, actor *Actor, matchID int, input UpdateMatchInput) (*models.Match, error) {
	match, _, err := s.loadForUpdate(ctx, actor, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchFinished || match.Status == models.MatchCanceled {
		return nil, ErrMatchAlreadyFinished
	}

	if input.Court != nil {
		if *input.Court <= 0 {
			return nil, ErrInvalidCourt
		}
		court := *input.Court
		match.Court = &court
	}
	if input.Status != nil {
		status, err := models.ParseMatchStatus(*input.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidMatchStatus, err)
		}
		switch status {
		case models.MatchPending:
		case models.MatchInProgress:
			if match.Couple1ID == nil || match.Couple2ID == nil {
				return nil, ErrMatchNotPlayable
			}
		default:
			return nil, fmt.Errorf("%w: %s is set by submitting a result or canceling", ErrInvalidMatchStatus, status)
		}
		match.Status = status
	}

	if err := s.matchRepo.UpdateStatusAndCourt(ctx, nil, match.ID, match.Status, match.Court); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}
	broadcast(s.hub, match.TournamentID, brackets.MessageMatchUpdated, match)
	return match, nil
}

// Cancel drops a zone match that will not be played. Canceled matches do
// not count in standings.
func (s *matchService) Cancel(ctx context.Context, actor *Actor, matchID int) (*models.Match, error) {
	match, tournament, err := s.loadForUpdate(ctx, actor, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsElimination() {
		return nil, ErrCannotCancelBracketMatch
	}
	if tournament.Status != models.StatusZonePhase {
		return nil, ErrZonePhaseNotActive
	}
	if match.Status == models.MatchCanceled {
		return match, nil
	}

	match.Result1, match.Result2, match.WinnerID = nil, nil, nil
	match.Status = models.MatchCanceled
	if err := s.matchRepo.UpdateResult(ctx, nil, match); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCouldNotSave, err)
	}

	s.logger.InfoContext(ctx, "match canceled", slog.Int("tournament_id", tournament.ID), slog.Int("match_id", match.ID))
	broadcast(s.hub, tournament.ID, brackets.MessageMatchUpdated, match)
	return match, nil
}
