package game

import (
	"cmp"
	"slices"
	"unicode/utf8"

	"github.com/scythe504/wordsearch-backend/internal"
)

const (
	longWordLength     = 6
	longWordBonus      = 2
	veryLongWordLength = 8
	veryLongWordBonus  = 3
)

// CalculateWordScore is one point per letter, +2 from six letters and a
// further +3 from eight.
func CalculateWordScore(word string) int {
	length := utf8.RuneCountInString(word)
	score := length
	if length >= longWordLength {
		score += longWordBonus
	}
	if length >= veryLongWordLength {
		score += veryLongWordBonus
	}
	return score
}

// CalculateFinalResults ranks the room's players by score, highest first.
// Ties keep join order. Expects room.Mu to be held.
func CalculateFinalResults(room *internal.Room) []internal.PlayerResult {
	players := room.OrderedPlayers()
	results := make([]internal.PlayerResult, 0, len(players))
	for _, p := range players {
		results = append(results, p.ToResult())
	}

	slices.SortStableFunc(results, func(a, b internal.PlayerResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return results
}
