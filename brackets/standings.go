package brackets

import (
	"errors"
	"sort"

	"github.com/Dosada05/padel-manager/models"
)

const (
	PointsWin  = 3
	PointsTie  = 1
	PointsLoss = 0
)

var ErrMalformedResult = errors.New("malformed result: both scores must be present and non-negative")

// ValidateResult checks a submitted result before anything is persisted.
func ValidateResult(score1, score2 *int) error {
	if score1 == nil || score2 == nil {
		return ErrMalformedResult
	}
	if *score1 < 0 || *score2 < 0 {
		return ErrMalformedResult
	}
	return nil
}

// CalculateStandings tallies one zone. Only matches with both results count.
// Rows come out sorted by points, then score differential; equal rows keep
// the order in which their teams first appeared.
func CalculateStandings(zone string, matches []*models.Match) []models.Standing {
	index := make(map[int]*models.Standing)
	order := make([]int, 0)

	entry := func(teamID int) *models.Standing {
		if s, ok := index[teamID]; ok {
			return s
		}
		s := &models.Standing{TeamID: teamID, Zone: zone}
		index[teamID] = s
		order = append(order, teamID)
		return s
	}

	for _, m := range matches {
		if m == nil || !m.HasResult() || m.Couple1ID == nil || m.Couple2ID == nil {
			continue
		}
		s1, s2 := *m.Result1, *m.Result2
		a := entry(*m.Couple1ID)
		b := entry(*m.Couple2ID)

		a.MatchesPlayed++
		b.MatchesPlayed++
		a.ScoreDifferential += s1 - s2
		b.ScoreDifferential += s2 - s1

		switch {
		case s1 > s2:
			a.Wins++
			a.Points += PointsWin
			b.Losses++
			b.Points += PointsLoss
		case s2 > s1:
			b.Wins++
			b.Points += PointsWin
			a.Losses++
			a.Points += PointsLoss
		default:
			a.Ties++
			b.Ties++
			a.Points += PointsTie
			b.Points += PointsTie
		}
	}

	standings := make([]models.Standing, 0, len(order))
	for _, id := range order {
		standings = append(standings, *index[id])
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].ScoreDifferential > standings[j].ScoreDifferential
	})
	return standings
}

// ZoneStandings is the computed table of one zone.
type ZoneStandings struct {
	Zone string            `json:"zone"`
	Rows []models.Standing `json:"standings"`
}

// SelectQualifiers takes the top perZone rows of each zone and orders them
// by finishing position first, then by zone order: all winners, then all
// runners-up, and so on.
func SelectQualifiers(zones []ZoneStandings, perZone int) []int {
	qualifiers := make([]int, 0, len(zones)*perZone)
	for pos := 0; pos < perZone; pos++ {
		for _, z := range zones {
			if pos < len(z.Rows) {
				qualifiers = append(qualifiers, z.Rows[pos].TeamID)
			}
		}
	}
	return qualifiers
}
