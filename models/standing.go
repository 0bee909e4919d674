package models

// Standing это производная строка таблицы зоны, в БД не хранится.
type Standing struct {
	TeamID            int    `json:"team_id"`
	Zone              string `json:"zone"`
	Points            int    `json:"points"`
	Wins              int    `json:"wins"`
	Losses            int    `json:"losses"`
	Ties              int    `json:"ties"`
	MatchesPlayed     int    `json:"matches_played"`
	ScoreDifferential int    `json:"score_differential"`
}
