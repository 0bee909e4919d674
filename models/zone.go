package models

type Zone struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Name         string `json:"name" db:"name"`
	CoupleIDs    []int  `json:"couple_ids" db:"-"`
}
