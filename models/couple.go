package models

import "time"

// Couple is the two-player team that plays padel matches. Never mutated after creation.
type Couple struct {
	ID        int       `json:"id" db:"id"`
	Player1ID int       `json:"player1_id" db:"player1_id"`
	Player2ID int       `json:"player2_id" db:"player2_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Player1 *Player `json:"player1,omitempty" db:"-"`
	Player2 *Player `json:"player2,omitempty" db:"-"`
}

func (c *Couple) HasPlayer(playerID int) bool {
	return c != nil && (c.Player1ID == playerID || c.Player2ID == playerID)
}
