package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusNotStarted   TournamentStatus = "NOT_STARTED"
	StatusPairing      TournamentStatus = "PAIRING"
	StatusZonePhase    TournamentStatus = "ZONE_PHASE"
	StatusBracketPhase TournamentStatus = "BRACKET_PHASE"
	StatusFinished     TournamentStatus = "FINISHED"
	StatusCanceled     TournamentStatus = "CANCELED"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusPairing, StatusZonePhase, StatusBracketPhase, StatusFinished, StatusCanceled:
		return true
	}
	return false
}

// AcceptsInscriptions reports whether registrations are still open.
func (s TournamentStatus) AcceptsInscriptions() bool {
	return s == StatusNotStarted
}

type Tournament struct {
	ID             int              `json:"id" db:"id"`
	ClubID         int              `json:"club_id" db:"club_id"`
	Name           string           `json:"name" db:"name"`
	Description    *string          `json:"description,omitempty" db:"description"`
	Category       *string          `json:"category,omitempty" db:"category"`
	StartDate      time.Time        `json:"start_date" db:"start_date"`
	EndDate        time.Time        `json:"end_date" db:"end_date"`
	Status         TournamentStatus `json:"status" db:"status"`
	MaxCouples     int              `json:"max_couples" db:"max_couples"`
	WinnerCoupleID *int             `json:"winner_couple_id,omitempty" db:"winner_couple_id"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	LogoKey        *string          `json:"-" db:"logo_key"`
	LogoURL        *string          `json:"logo_url,omitempty" db:"-"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Club         *Club         `json:"club,omitempty" db:"-"`
	Inscriptions []Inscription `json:"inscriptions,omitempty" db:"-"`
	Zones        []Zone        `json:"zones,omitempty" db:"-"`
	Matches      []Match       `json:"matches,omitempty" db:"-"`
}
