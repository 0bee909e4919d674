package services

import (
	"github.com/Dosada05/padel-manager/brackets"
	"github.com/Dosada05/padel-manager/models"
)

const (
	ChampionPoints = 100
	ZoneOnlyPoints = 1
)

// Очки за самый глубокий достигнутый раунд сетки.
var roundRankingPoints = map[models.Round]int{
	models.Round32:        2,
	models.Round16:        5,
	models.Round8:         10,
	models.RoundQuarter:   20,
	models.RoundSemifinal: 40,
	models.RoundFinal:     60,
}

// RankingAwards maps every couple that played the tournament to the points
// each of its players earns.
func RankingAwards(matches []*models.Match, championID int) map[int]int {
	deepest := make(map[int]models.Round)
	mark := func(coupleID *int, round models.Round) {
		if coupleID == nil {
			return
		}
		current, ok := deepest[*coupleID]
		if !ok || brackets.RoundIndex(round) > brackets.RoundIndex(current) {
			deepest[*coupleID] = round
		}
	}
	for _, m := range matches {
		if m == nil {
			continue
		}
		mark(m.Couple1ID, m.Round)
		mark(m.Couple2ID, m.Round)
	}

	awards := make(map[int]int, len(deepest))
	for coupleID, round := range deepest {
		switch {
		case coupleID == championID:
			awards[coupleID] = ChampionPoints
		case round == models.RoundZone:
			awards[coupleID] = ZoneOnlyPoints
		default:
			awards[coupleID] = roundRankingPoints[round]
		}
	}
	return awards
}
