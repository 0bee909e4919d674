package brackets

import (
	"errors"
	"fmt"
	"strconv"
)

const MinZoneSize = 3

var ErrInvalidZoneSize = errors.New("zone size must be at least 3")

// ZoneAssignment is one zone and the couples dealt into it.
type ZoneAssignment struct {
	Name  string
	Teams []int
}

// AssignZones deals teams into ceil(n/zoneSize) zones in input order, so zone
// sizes differ by at most one and no zone has fewer than two teams.
func AssignZones(teams []int, zoneSize int) ([]ZoneAssignment, error) {
	if zoneSize < MinZoneSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidZoneSize, zoneSize)
	}
	if len(teams) < 2 {
		return nil, ErrNotEnoughTeams
	}

	numZones := (len(teams) + zoneSize - 1) / zoneSize
	zones := make([]ZoneAssignment, numZones)
	for i := range zones {
		zones[i].Name = ZoneName(i)
	}
	for i, team := range teams {
		z := &zones[i%numZones]
		z.Teams = append(z.Teams, team)
	}
	return zones, nil
}

// ZoneName maps 0 -> A, 25 -> Z, 26 -> A1.
func ZoneName(i int) string {
	letter := string(rune('A' + i%26))
	if i < 26 {
		return letter
	}
	return letter + strconv.Itoa(i/26)
}
