package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/models"
	"github.com/Dosada05/padel-manager/repositories"
	"github.com/Dosada05/padel-manager/storage"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID int
	Role   models.UserRole
}

func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == models.RoleAdmin
}

// withTx runs fn inside a transaction. Any error rolls back, otherwise commits.
func withTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(tx *sql.Tx) error) (txErr error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrCouldNotSave, err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.ErrorContext(ctx, "transaction rollback failed",
					slog.Any("error", rbErr), slog.Any("original_error", txErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("%w: failed to commit transaction: %w", ErrCouldNotSave, cErr)
		}
	}()
	return fn(tx)
}

// loadError keeps not-found sentinels and turns anything else into ErrCouldNotLoad.
func loadError(err error, notFound map[error]error) error {
	for repoErr, svcErr := range notFound {
		if errors.Is(err, repoErr) {
			return svcErr
		}
	}
	return fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
}

// broadcast pushes a message to the tournament's websocket room.
func broadcast(hub brackets.Broadcaster, tournamentID int, msgType string, payload interface{}) {
	if hub == nil {
		return
	}
	roomID := strconv.Itoa(tournamentID)
	hub.BroadcastToRoom(roomID, brackets.WebSocketMessage{Type: msgType, Payload: payload, RoomID: roomID})
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func validateTournamentDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrTournamentDatesRequired
	}
	if end.Before(start) {
		return fmt.Errorf("%w: start date (%s), end date (%s)", ErrTournamentInvalidDateRange,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}

// Ручные переходы статуса. ZONE_PHASE, BRACKET_PHASE и FINISHED ставятся
// только операциями зон, сетки и финала.
var manualStatusTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.StatusNotStarted:   {models.StatusPairing, models.StatusCanceled},
	models.StatusPairing:      {models.StatusNotStarted, models.StatusCanceled},
	models.StatusZonePhase:    {models.StatusCanceled},
	models.StatusBracketPhase: {models.StatusCanceled},
	models.StatusFinished:     {},
	models.StatusCanceled:     {},
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	for _, allowed := range manualStatusTransitions[current] {
		if next == allowed {
			return true
		}
	}
	return false
}

// ensureTournamentOwner allows admins and the owner of the tournament's club.
func ensureTournamentOwner(ctx context.Context, clubRepo repositories.ClubRepository, actor *Actor, t *models.Tournament) error {
	if actor == nil {
		return ErrForbiddenOperation
	}
	if actor.IsAdmin() {
		return nil
	}
	if actor.Role != models.RoleClub {
		return ErrForbiddenOperation
	}
	club, err := clubRepo.GetByOwnerID(ctx, nil, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrForbiddenOperation
		}
		return fmt.Errorf("%w: %w", ErrCouldNotLoad, err)
	}
	if club.ID != t.ClubID {
		return ErrForbiddenOperation
	}
	return nil
}

func populateTournamentLogoURL(t *models.Tournament, uploader storage.FileUploader) {
	if t != nil && t.LogoKey != nil && *t.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*t.LogoKey); url != "" {
			t.LogoURL = &url
		}
	}
}

func populateClubLogoURL(c *models.Club, uploader storage.FileUploader) {
	if c != nil && c.LogoKey != nil && *c.LogoKey != "" && uploader != nil {
		if url := uploader.GetPublicURL(*c.LogoKey); url != "" {
			c.LogoURL = &url
		}
	}
}

func dereferenceMatches(slice []*models.Match) []models.Match {
	result := make([]models.Match, 0, len(slice))
	for _, m := range slice {
		if m != nil {
			result = append(result, *m)
		}
	}
	return result
}
