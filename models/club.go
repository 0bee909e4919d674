package models

import "time"

type Club struct {
	ID          int       `json:"id" db:"id"`
	OwnerID     int       `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Address     *string   `json:"address,omitempty" db:"address"`
	Description *string   `json:"description,omitempty" db:"description"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LogoKey     *string   `json:"-" db:"logo_key"`
	LogoURL     *string   `json:"logo_url,omitempty" db:"-"`
}
