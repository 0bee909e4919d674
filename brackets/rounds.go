package brackets

import "github.com/Dosada05/padel-manager/models"

const MaxBracketSize = 64

// eliminationRounds is the fixed order of bracket rounds, deepest first.
var eliminationRounds = []models.Round{
	models.Round32,
	models.Round16,
	models.Round8,
	models.RoundQuarter,
	models.RoundSemifinal,
	models.RoundFinal,
}

// BracketSize returns the smallest power of two >= n.
func BracketSize(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}

// RoundsForSize returns the round labels a bracket of the given size plays,
// in order. 2 -> FINAL, 4 -> SEMIFINAL, FINAL, 8 -> 4TOS, SEMIFINAL, FINAL...
func RoundsForSize(size int) []models.Round {
	numRounds := 0
	for s := size; s > 1; s >>= 1 {
		numRounds++
	}
	if numRounds == 0 || numRounds > len(eliminationRounds) {
		return nil
	}
	return eliminationRounds[len(eliminationRounds)-numRounds:]
}

// RoundIndex orders rounds: ZONE is 0, FINAL is the highest.
// Unknown labels return -1.
func RoundIndex(r models.Round) int {
	if r == models.RoundZone {
		return 0
	}
	for i, er := range eliminationRounds {
		if er == r {
			return i + 1
		}
	}
	return -1
}

// seedOrder returns seeds in bracket position order so that adjacent pairs
// are first-round opponents: size 8 -> 1,8,4,5,2,7,3,6.
func seedOrder(size int) []int {
	order := []int{1}
	for n := 2; n <= size; n <<= 1 {
		next := make([]int, 0, n)
		for _, s := range order {
			next = append(next, s, n+1-s)
		}
		order = next
	}
	return order
}
