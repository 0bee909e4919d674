package models

import "time"

type Player struct {
	ID            int       `json:"id" db:"id"`
	UserID        *int      `json:"user_id,omitempty" db:"user_id"`
	FirstName     string    `json:"first_name" db:"first_name"`
	LastName      string    `json:"last_name" db:"last_name"`
	Category      *string   `json:"category,omitempty" db:"category"`
	RankingPoints int       `json:"ranking_points" db:"ranking_points"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

func (p *Player) FullName() string {
	if p == nil {
		return ""
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

type Coach struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	ClubID    *int      `json:"club_id,omitempty" db:"club_id"`
	Bio       *string   `json:"bio,omitempty" db:"bio"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
