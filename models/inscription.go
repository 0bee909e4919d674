package models

import "time"

// Inscription регистрирует игрока (индивидуально) или пару в турнире.
// Ровно одно из PlayerID / CoupleID задано.
type Inscription struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	PlayerID     *int      `json:"player_id,omitempty" db:"player_id"`
	CoupleID     *int      `json:"couple_id,omitempty" db:"couple_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Player *Player `json:"player,omitempty" db:"-"`
	Couple *Couple `json:"couple,omitempty" db:"-"`
}
