package models

import (
	"fmt"
	"strings"
	"time"
)

type MatchStatus string

const (
	MatchPending    MatchStatus = "PENDING"
	MatchInProgress MatchStatus = "IN_PROGRESS"
	MatchFinished   MatchStatus = "FINISHED"
	MatchCanceled   MatchStatus = "CANCELED"
)

// ParseMatchStatus accepts COMPLETED as an alias of FINISHED.
func ParseMatchStatus(s string) (MatchStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return MatchPending, nil
	case "IN_PROGRESS":
		return MatchInProgress, nil
	case "FINISHED", "COMPLETED":
		return MatchFinished, nil
	case "CANCELED", "CANCELLED":
		return MatchCanceled, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

type Round string

const (
	RoundZone      Round = "ZONE"
	Round32        Round = "32VOS"
	Round16        Round = "16VOS"
	Round8         Round = "8VOS"
	RoundQuarter   Round = "4TOS"
	RoundSemifinal Round = "SEMIFINAL"
	RoundFinal     Round = "FINAL"
)

type Match struct {
	ID           int         `json:"id" db:"id"`
	TournamentID int         `json:"tournament_id" db:"tournament_id"`
	Round        Round       `json:"round" db:"round"`
	ZoneID       *int        `json:"zone_id,omitempty" db:"zone_id"`
	Zone         *string     `json:"zone,omitempty" db:"-"`
	Couple1ID    *int        `json:"couple1_id,omitempty" db:"couple1_id"`
	Couple2ID    *int        `json:"couple2_id,omitempty" db:"couple2_id"`
	Result1      *int        `json:"result_couple1,omitempty" db:"result_couple1"`
	Result2      *int        `json:"result_couple2,omitempty" db:"result_couple2"`
	Status       MatchStatus `json:"status" db:"status"`
	Court        *int        `json:"court,omitempty" db:"court"`
	WinnerID     *int        `json:"winner_id,omitempty" db:"winner_id"`
	OrderInRound int         `json:"order_in_round" db:"order_in_round"`
	BracketUID   *string     `json:"bracket_uid,omitempty" db:"bracket_uid"`
	NextMatchID  *int        `json:"next_match_id,omitempty" db:"next_match_id"`
	NextSlot     *int        `json:"next_slot,omitempty" db:"next_slot"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
}

// HasResult reports whether both results are populated.
func (m *Match) HasResult() bool {
	return m != nil && m.Result1 != nil && m.Result2 != nil
}

func (m *Match) IsElimination() bool {
	return m != nil && m.Round != RoundZone
}

// SlotCouple returns the couple in slot 1 or 2.
func (m *Match) SlotCouple(slot int) *int {
	if slot == 1 {
		return m.Couple1ID
	}
	return m.Couple2ID
}
