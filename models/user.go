package models

import "time"

// UserRole определяет роль пользователя в системе.
type UserRole string

const (
	RolePlayer UserRole = "player"
	RoleClub   UserRole = "club"
	RoleCoach  UserRole = "coach"
	RoleAdmin  UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RolePlayer, RoleClub, RoleCoach, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	Role         UserRole  `json:"role" db:"role"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// CurrentUser is the resolved identity of an authenticated request:
// the role plus whichever profile the user owns.
type CurrentUser struct {
	User     *User `json:"user"`
	PlayerID *int  `json:"player_id,omitempty"`
	ClubID   *int  `json:"club_id,omitempty"`
	CoachID  *int  `json:"coach_id,omitempty"`
}
